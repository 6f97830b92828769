package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo implementación en memoria de ItemRepository.
type ItemRepo struct {
	s *Store
	t *tx
}

// getItem devuelve una copia del artículo visto por la tx (pendiente o confirmado).
func (t *tx) getItem(id string) *entity.Item {
	if it, ok := t.items[id]; ok {
		return cloneItem(it)
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	return cloneItem(t.s.items[id])
}

func (t *tx) allItems() []*entity.Item {
	t.s.mu.RLock()
	out := make([]*entity.Item, 0, len(t.s.items)+len(t.items))
	for id, it := range t.s.items {
		if _, staged := t.items[id]; !staged {
			out = append(out, cloneItem(it))
		}
	}
	t.s.mu.RUnlock()
	for _, it := range t.items {
		out = append(out, cloneItem(it))
	}
	return out
}

// Create registra un artículo nuevo; ErrDuplicate si el SKU ya existe.
func (r *ItemRepo) Create(ctx context.Context, item *entity.Item) error {
	return r.s.autocommit(ctx, r.t, func(t *tx) error {
		for _, other := range t.allItems() {
			if other.SKU == item.SKU {
				return fmt.Errorf("%w: sku %s", domain.ErrDuplicate, item.SKU)
			}
			if other.ID == item.ID {
				return fmt.Errorf("%w: id %s", domain.ErrDuplicate, item.ID)
			}
		}
		t.items[item.ID] = cloneItem(item)
		t.created[item.ID] = true
		return nil
	})
}

// GetByID obtiene un artículo por ID (nil si no existe).
func (r *ItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	var out *entity.Item
	err := r.s.autocommit(ctx, r.t, func(t *tx) error {
		out = t.getItem(id)
		return nil
	})
	return out, err
}

// GetBySKU obtiene un artículo por SKU (nil si no existe).
func (r *ItemRepo) GetBySKU(ctx context.Context, sku string) (*entity.Item, error) {
	var out *entity.Item
	err := r.s.autocommit(ctx, r.t, func(t *tx) error {
		for _, it := range t.allItems() {
			if it.SKU == sku {
				out = it
				return nil
			}
		}
		return nil
	})
	return out, err
}

// GetForUpdate bloquea la fila del artículo hasta el fin de la transacción.
func (r *ItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.Item, error) {
	var out *entity.Item
	err := r.s.autocommit(ctx, r.t, func(t *tx) error {
		if err := t.lockRow(id); err != nil {
			return err
		}
		out = t.getItem(id)
		return nil
	})
	return out, err
}

// Update persiste metadatos y umbrales sin tocar la cantidad ni el cursor del libro.
func (r *ItemRepo) Update(ctx context.Context, item *entity.Item) error {
	src := cloneItem(item)
	return r.s.autocommit(ctx, r.t, func(t *tx) error {
		return t.patchItem(item.ID, func(it *entity.Item) {
			it.Name = src.Name
			it.SKU = src.SKU
			it.Description = src.Description
			it.Category = src.Category
			it.Location = src.Location
			it.MinimumStock = src.MinimumStock
			it.MaximumStock = cloneInt(src.MaximumStock)
			it.UnitPrice = src.UnitPrice
			it.SupplierID = src.SupplierID
			it.Barcode = src.Barcode
			it.ExpirationDate = cloneTime(src.ExpirationDate)
			it.UpdatedBy = src.UpdatedBy
			it.UpdatedAt = src.UpdatedAt
		})
	})
}

// UpdateQuantity actualiza la cantidad cacheada y el cursor del último movimiento.
func (r *ItemRepo) UpdateQuantity(ctx context.Context, id string, quantity, lastSeq int64, lastAt time.Time) error {
	return r.s.autocommit(ctx, r.t, func(t *tx) error {
		return t.patchItem(id, func(it *entity.Item) {
			at := lastAt
			it.Quantity = quantity
			it.LastMovementSeq = lastSeq
			it.LastMovementAt = &at
			it.UpdatedAt = lastAt
		})
	})
}

// Archive marca el artículo como archivado (baja lógica). Archivar dos veces conserva la primera fecha.
func (r *ItemRepo) Archive(ctx context.Context, id, by string, at time.Time) error {
	return r.s.autocommit(ctx, r.t, func(t *tx) error {
		return t.patchItem(id, func(it *entity.Item) {
			if it.ArchivedAt == nil {
				archived := at
				it.ArchivedAt = &archived
			}
			it.UpdatedBy = by
			it.UpdatedAt = at
		})
	})
}

// List lista artículos ordenados por nombre y SKU.
func (r *ItemRepo) List(ctx context.Context, filter repository.ItemFilter, limit, offset int) ([]*entity.Item, error) {
	var out []*entity.Item
	err := r.s.autocommit(ctx, r.t, func(t *tx) error {
		for _, it := range t.allItems() {
			if !filter.IncludeArchived && it.IsArchived() {
				continue
			}
			if filter.Category != "" && it.Category != filter.Category {
				continue
			}
			if filter.Location != "" && it.Location != filter.Location {
				continue
			}
			if filter.LowStockOnly && !it.IsLowStock() {
				continue
			}
			out = append(out, it)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].SKU < out[j].SKU
	})
	return paginate(out, limit, offset), nil
}
