package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// StockMovementRepository define el libro de movimientos (solo inserción).
// No existen operaciones de edición o borrado: las correcciones son movimientos compensatorios.
type StockMovementRepository interface {
	// Append valida el movimiento, asigna Sequence (último + 1) y un CreatedAt estrictamente
	// mayor al del movimiento anterior del mismo artículo, y lo persiste.
	Append(ctx context.Context, movement *entity.StockMovement) error
	// ListByItem devuelve el historial en orden ascendente de Sequence. from/to son opcionales (inclusive).
	ListByItem(ctx context.Context, itemID string, from, to *time.Time) ([]*entity.StockMovement, error)
}
