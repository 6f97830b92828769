package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// ItemFilter filtros opcionales para listar artículos.
type ItemFilter struct {
	Category        string
	Location        string
	LowStockOnly    bool
	IncludeArchived bool
}

// ItemRepository define el puerto de persistencia para Item (DIP).
// GetByID, GetBySKU y GetForUpdate devuelven (nil, nil) si no existe.
type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Item, error)
	// GetForUpdate bloquea la fila del artículo hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Item, error)
	// Update persiste metadatos y umbrales; nunca toca Quantity ni el cursor del libro.
	Update(ctx context.Context, item *entity.Item) error
	// UpdateQuantity actualiza la cantidad cacheada junto con el cursor del último movimiento.
	UpdateQuantity(ctx context.Context, id string, quantity, lastSeq int64, lastAt time.Time) error
	Archive(ctx context.Context, id, by string, at time.Time) error
	List(ctx context.Context, filter ItemFilter, limit, offset int) ([]*entity.Item, error)
}
