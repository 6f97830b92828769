package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
)

// StockUseCase adapta el libro de movimientos a los DTO de la API.
type StockUseCase struct {
	ledger *inventory.LedgerService
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(ledger *inventory.LedgerService) *StockUseCase {
	return &StockUseCase{ledger: ledger}
}

// RecordMovement registra el movimiento a nombre de userID (performed_by).
func (uc *StockUseCase) RecordMovement(ctx context.Context, userID string, in dto.RecordMovementRequest) (*dto.RecordMovementResponse, error) {
	res, err := uc.ledger.RecordMovement(ctx, inventory.RecordMovementInput{
		ItemID:          in.ItemID,
		QuantityChanged: in.QuantityChanged,
		MovementType:    in.MovementType,
		Reason:          in.Reason,
		PerformedBy:     userID,
	})
	if err != nil {
		return nil, err
	}
	return &dto.RecordMovementResponse{
		Item:     *toItemResponse(res.Item),
		Movement: toMovementResponse(res.Movement),
		Alerts:   toAlertChanges(res.Alerts),
	}, nil
}

// ListMovements historial del artículo; from/to en RFC3339, ambos opcionales.
func (uc *StockUseCase) ListMovements(ctx context.Context, itemID string, q dto.MovementListQuery) (*dto.MovementListResponse, error) {
	from, err := parseOptionalTime("from", q.From)
	if err != nil {
		return nil, err
	}
	to, err := parseOptionalTime("to", q.To)
	if err != nil {
		return nil, err
	}
	list, err := uc.ledger.ListMovements(ctx, itemID, from, to)
	if err != nil {
		return nil, err
	}
	out := &dto.MovementListResponse{ItemID: itemID, Movements: make([]dto.MovementResponse, 0, len(list))}
	for _, m := range list {
		out.Movements = append(out.Movements, toMovementResponse(m))
	}
	return out, nil
}

// Reconcile compara la cantidad cacheada con la proyección del libro.
func (uc *StockUseCase) Reconcile(ctx context.Context, itemID string) (*dto.ReconcileResponse, error) {
	rec, err := uc.ledger.Reconcile(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return &dto.ReconcileResponse{
		ItemID:       rec.ItemID,
		Cached:       rec.Cached,
		Projected:    rec.Projected,
		LastSequence: rec.LastSequence,
		Movements:    rec.Movements,
		Consistent:   rec.Consistent,
	}, nil
}

func parseOptionalTime(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s debe ser RFC3339", domain.ErrInvalidInput, field)
	}
	return &t, nil
}
