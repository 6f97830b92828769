package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

const itemColumns = `id, name, sku, description, category, location, quantity, minimum_stock, maximum_stock,
	unit_price, supplier_id, barcode, expiration_date, created_by, updated_by, created_at, updated_at,
	archived_at, last_movement_seq, last_movement_at`

// ItemRepo implementación de ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador de artículos. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

func scanItem(row pgx.Row) (*entity.Item, error) {
	var it entity.Item
	err := row.Scan(
		&it.ID, &it.Name, &it.SKU, &it.Description, &it.Category, &it.Location, &it.Quantity,
		&it.MinimumStock, &it.MaximumStock, &it.UnitPrice, &it.SupplierID, &it.Barcode,
		&it.ExpirationDate, &it.CreatedBy, &it.UpdatedBy, &it.CreatedAt, &it.UpdatedAt,
		&it.ArchivedAt, &it.LastMovementSeq, &it.LastMovementAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// Create persiste un artículo nuevo. La cantidad inicia en 0.
func (r *ItemRepo) Create(ctx context.Context, item *entity.Item) error {
	query := `
		INSERT INTO items (id, name, sku, description, category, location, quantity, minimum_stock,
			maximum_stock, unit_price, supplier_id, barcode, expiration_date, created_by, updated_by,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.Name, item.SKU, item.Description, item.Category, item.Location,
		item.MinimumStock, item.MaximumStock, item.UnitPrice, item.SupplierID, item.Barcode,
		item.ExpirationDate, item.CreatedBy, item.UpdatedBy, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: sku %s", domain.ErrDuplicate, item.SKU)
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// GetByID obtiene un artículo por ID.
func (r *ItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	it, err := scanItem(r.q.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

// GetBySKU obtiene un artículo por SKU.
func (r *ItemRepo) GetBySKU(ctx context.Context, sku string) (*entity.Item, error) {
	it, err := scanItem(r.q.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE sku = $1`, sku))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item by sku: %w", err)
	}
	return it, nil
}

// GetForUpdate obtiene el artículo y bloquea la fila hasta el fin de la tx (SELECT FOR UPDATE).
func (r *ItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.Item, error) {
	it, err := scanItem(r.q.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item for update: %w", err)
	}
	return it, nil
}

// Update actualiza metadatos y umbrales. quantity y el cursor del libro no se tocan.
func (r *ItemRepo) Update(ctx context.Context, item *entity.Item) error {
	query := `
		UPDATE items SET name = $2, sku = $3, description = $4, category = $5, location = $6,
			minimum_stock = $7, maximum_stock = $8, unit_price = $9, supplier_id = $10, barcode = $11,
			expiration_date = $12, updated_by = $13, updated_at = $14
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		item.ID, item.Name, item.SKU, item.Description, item.Category, item.Location,
		item.MinimumStock, item.MaximumStock, item.UnitPrice, item.SupplierID, item.Barcode,
		item.ExpirationDate, item.UpdatedBy, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: sku %s", domain.ErrDuplicate, item.SKU)
		}
		return fmt.Errorf("update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: artículo %s", domain.ErrNotFound, item.ID)
	}
	return nil
}

// UpdateQuantity actualiza la cantidad cacheada y el cursor del último movimiento.
func (r *ItemRepo) UpdateQuantity(ctx context.Context, id string, quantity, lastSeq int64, lastAt time.Time) error {
	query := `
		UPDATE items SET quantity = $2, last_movement_seq = $3, last_movement_at = $4, updated_at = $4
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id, quantity, lastSeq, lastAt)
	if err != nil {
		return fmt.Errorf("update item quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: artículo %s", domain.ErrNotFound, id)
	}
	return nil
}

// Archive marca el artículo como archivado. Archivar dos veces conserva la primera fecha.
func (r *ItemRepo) Archive(ctx context.Context, id, by string, at time.Time) error {
	query := `
		UPDATE items SET archived_at = COALESCE(archived_at, $3), updated_by = $2, updated_at = $3
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id, by, at)
	if err != nil {
		return fmt.Errorf("archive item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: artículo %s", domain.ErrNotFound, id)
	}
	return nil
}

// List lista artículos ordenados por nombre y SKU.
func (r *ItemRepo) List(ctx context.Context, filter repository.ItemFilter, limit, offset int) ([]*entity.Item, error) {
	var w whereBuilder
	if !filter.IncludeArchived {
		w.addRaw("archived_at IS NULL")
	}
	if filter.Category != "" {
		w.add("category = $%d", filter.Category)
	}
	if filter.Location != "" {
		w.add("location = $%d", filter.Location)
	}
	if filter.LowStockOnly {
		w.addRaw("quantity <= minimum_stock")
	}
	query := `SELECT ` + itemColumns + ` FROM items` + w.sql() + ` ORDER BY name, sku`
	query += w.page(limit, offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	out := []*entity.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return out, nil
}
