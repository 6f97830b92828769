package usecase

import (
	"encoding/json"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

func toItemResponse(it *entity.Item) *dto.ItemResponse {
	if it == nil {
		return nil
	}
	return &dto.ItemResponse{
		ID:              it.ID,
		Name:            it.Name,
		SKU:             it.SKU,
		Description:     it.Description,
		Category:        it.Category,
		Location:        it.Location,
		Quantity:        it.Quantity,
		MinimumStock:    it.MinimumStock,
		MaximumStock:    it.MaximumStock,
		UnitPrice:       it.UnitPrice,
		SupplierID:      it.SupplierID,
		Barcode:         it.Barcode,
		ExpirationDate:  it.ExpirationDate,
		LowStock:        it.IsLowStock(),
		LastMovementSeq: it.LastMovementSeq,
		CreatedBy:       it.CreatedBy,
		UpdatedBy:       it.UpdatedBy,
		CreatedAt:       it.CreatedAt,
		UpdatedAt:       it.UpdatedAt,
	}
}

func toMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:              m.ID,
		ItemID:          m.ItemID,
		Sequence:        m.Sequence,
		QuantityChanged: m.QuantityChanged,
		MovementType:    m.Type,
		Reason:          m.Reason,
		PerformedBy:     m.PerformedBy,
		CreatedAt:       m.CreatedAt,
	}
}

func toAlertResponse(a *entity.Alert) dto.AlertResponse {
	return dto.AlertResponse{
		ID:         a.ID,
		ItemID:     a.ItemID,
		AlertType:  a.Type,
		Message:    a.Message,
		Status:     a.Status,
		CreatedAt:  a.CreatedAt,
		ResolvedAt: a.ResolvedAt,
		ResolvedBy: a.ResolvedBy,
	}
}

func toAlertChanges(changes []inventory.AlertChange) []dto.AlertChangeResponse {
	out := make([]dto.AlertChangeResponse, 0, len(changes))
	for _, ch := range changes {
		out = append(out, dto.AlertChangeResponse{Decision: string(ch.Decision), Alert: toAlertResponse(ch.Alert)})
	}
	return out
}

func toAuditEntryResponse(e *entity.AuditLog) dto.AuditEntryResponse {
	before := json.RawMessage("null")
	if len(e.Before) > 0 {
		before = e.Before
	}
	after := json.RawMessage("null")
	if len(e.After) > 0 {
		after = e.After
	}
	return dto.AuditEntryResponse{
		ID:          e.ID,
		Action:      e.Action,
		PerformedBy: e.PerformedBy,
		Before:      before,
		After:       after,
		CreatedAt:   e.CreatedAt,
	}
}
