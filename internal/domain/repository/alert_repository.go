package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// AlertFilter filtros opcionales para listar alertas.
type AlertFilter struct {
	Status string
	ItemID string
	Type   string
}

// AlertRepository define el puerto de persistencia para alertas.
type AlertRepository interface {
	// Create inserta una alerta activa; ErrDuplicate si ya hay una activa del mismo tipo para el artículo.
	Create(ctx context.Context, alert *entity.Alert) error
	GetByID(ctx context.Context, id string) (*entity.Alert, error)
	// GetActive devuelve la alerta activa de (itemID, alertType) o nil.
	GetActive(ctx context.Context, itemID, alertType string) (*entity.Alert, error)
	// Resolve marca la alerta como resuelta; ErrConflict si no estaba activa.
	Resolve(ctx context.Context, id, by string, at time.Time) error
	List(ctx context.Context, filter AlertFilter, limit, offset int) ([]*entity.Alert, error)
}
