package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// itemSnapshot campos de catálogo que se guardan en la bitácora.
type itemSnapshot struct {
	Name            string          `json:"name"`
	SKU             string          `json:"sku"`
	Description     string          `json:"description"`
	Category        string          `json:"category"`
	Location        string          `json:"location"`
	Quantity        int64           `json:"quantity"`
	MinimumStock    int64           `json:"minimum_stock"`
	MaximumStock    *int64          `json:"maximum_stock"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	SupplierID      string          `json:"supplier_id"`
	Barcode         string          `json:"barcode"`
	ExpirationDate  *time.Time      `json:"expiration_date"`
	ArchivedAt      *time.Time      `json:"archived_at"`
	LastMovementSeq int64           `json:"last_movement_seq"`
}

func snapshotItem(it *entity.Item) ([]byte, error) {
	if it == nil {
		return nil, nil
	}
	return json.Marshal(itemSnapshot{
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
		ArchivedAt:      it.ArchivedAt,
		LastMovementSeq: it.LastMovementSeq,
	})
}

// writeAudit registra el cambio de catálogo dentro de la tx en curso. before es nil en create;
// after nunca es nil.
func writeAudit(ctx context.Context, auditRepo repository.AuditRepository, action, by string, before, after *entity.Item, at time.Time) error {
	b, err := snapshotItem(before)
	if err != nil {
		return fmt.Errorf("serializar estado previo: %w", err)
	}
	a, err := snapshotItem(after)
	if err != nil {
		return fmt.Errorf("serializar estado nuevo: %w", err)
	}
	return auditRepo.Create(ctx, &entity.AuditLog{
		ID:          uuid.New().String(),
		EntityType:  entity.AuditEntityItem,
		EntityID:    after.ID,
		Action:      action,
		PerformedBy: by,
		Before:      b,
		After:       a,
		CreatedAt:   at,
	})
}
