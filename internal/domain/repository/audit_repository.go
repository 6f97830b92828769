package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// AuditRepository bitácora de cambios de catálogo. Solo inserción.
type AuditRepository interface {
	Create(ctx context.Context, entry *entity.AuditLog) error
	// ListByEntity devuelve las entradas de una entidad, de la más antigua a la más reciente.
	ListByEntity(ctx context.Context, entityType, entityID string, limit, offset int) ([]*entity.AuditLog, error)
}
