package memory

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*MovementRepo)(nil)

// MovementRepo libro de movimientos en memoria (solo inserción).
type MovementRepo struct {
	s *Store
	t *tx
}

func (t *tx) history(itemID string) []*entity.StockMovement {
	t.s.mu.RLock()
	committed := t.s.movements[itemID]
	out := make([]*entity.StockMovement, 0, len(committed)+len(t.movements[itemID]))
	for _, m := range committed {
		out = append(out, cloneMovement(m))
	}
	t.s.mu.RUnlock()
	for _, m := range t.movements[itemID] {
		out = append(out, cloneMovement(m))
	}
	return out
}

// Append asigna secuencia y fecha estrictamente crecientes por artículo y agrega el movimiento.
func (r *MovementRepo) Append(ctx context.Context, movement *entity.StockMovement) error {
	if err := movement.Validate(); err != nil {
		return err
	}
	return r.s.autocommit(ctx, r.t, func(t *tx) error {
		seq := int64(1)
		at := r.s.now()
		if h := t.history(movement.ItemID); len(h) > 0 {
			last := h[len(h)-1]
			seq = last.Sequence + 1
			if !at.After(last.CreatedAt) {
				at = last.CreatedAt.Add(time.Microsecond)
			}
		}
		movement.Sequence = seq
		movement.CreatedAt = at
		t.movements[movement.ItemID] = append(t.movements[movement.ItemID], cloneMovement(movement))
		return nil
	})
}

// ListByItem historial en orden de secuencia, acotado opcionalmente por fecha (inclusive).
func (r *MovementRepo) ListByItem(ctx context.Context, itemID string, from, to *time.Time) ([]*entity.StockMovement, error) {
	out := []*entity.StockMovement{}
	err := r.s.autocommit(ctx, r.t, func(t *tx) error {
		for _, m := range t.history(itemID) {
			if from != nil && m.CreatedAt.Before(*from) {
				continue
			}
			if to != nil && m.CreatedAt.After(*to) {
				continue
			}
			out = append(out, m)
		}
		return nil
	})
	return out, err
}
