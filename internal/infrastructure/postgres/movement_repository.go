package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*MovementRepo)(nil)

// MovementRepo libro de movimientos sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador del libro. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Append inserta el movimiento con sequence = último + 1 y created_at estrictamente mayor
// al del movimiento anterior del artículo. Debe ejecutarse con la fila del artículo bloqueada;
// si dos tx compiten, UNIQUE (item_id, sequence) rechaza a la segunda.
func (r *MovementRepo) Append(ctx context.Context, m *entity.StockMovement) error {
	if err := m.Validate(); err != nil {
		return err
	}
	query := `
		WITH last AS (
			SELECT COALESCE(MAX(sequence), 0) AS seq, MAX(created_at) AS at
			FROM stock_movements WHERE item_id = $2
		)
		INSERT INTO stock_movements (id, item_id, sequence, quantity_changed, movement_type, reason, performed_by, created_at)
		SELECT $1, $2, last.seq + 1, $3, $4, $5, $6,
			GREATEST(clock_timestamp(), last.at + interval '1 microsecond')
		FROM last
		RETURNING sequence, created_at`
	err := r.q.QueryRow(ctx, query,
		m.ID, m.ItemID, m.QuantityChanged, m.Type, m.Reason, m.PerformedBy,
	).Scan(&m.Sequence, &m.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) && constraintName(err) == "stock_movements_item_sequence_key" {
			return fmt.Errorf("%w: secuencia concurrente para %s", domain.ErrConflict, m.ItemID)
		}
		return fmt.Errorf("append movement: %w", err)
	}
	return nil
}

// ListByItem historial en orden de secuencia; from/to opcionales (inclusive).
func (r *MovementRepo) ListByItem(ctx context.Context, itemID string, from, to *time.Time) ([]*entity.StockMovement, error) {
	var w whereBuilder
	w.add("item_id = $%d", itemID)
	if from != nil {
		w.add("created_at >= $%d", *from)
	}
	if to != nil {
		w.add("created_at <= $%d", *to)
	}
	query := `
		SELECT id, item_id, sequence, quantity_changed, movement_type, reason, performed_by, created_at
		FROM stock_movements` + w.sql() + ` ORDER BY sequence`

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	out := []*entity.StockMovement{}
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(&m.ID, &m.ItemID, &m.Sequence, &m.QuantityChanged, &m.Type, &m.Reason, &m.PerformedBy, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	return out, nil
}
