package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain"
)

// Item representa un artículo del catálogo de inventario.
// Quantity es derivada del libro de movimientos y nunca se escribe desde el cliente.
type Item struct {
	ID             string
	Name           string
	SKU            string // único dentro del catálogo
	Description    string
	Category       string
	Location       string
	Quantity       int64
	MinimumStock   int64
	MaximumStock   *int64 // nil = sin máximo
	UnitPrice      decimal.Decimal
	SupplierID     string
	Barcode        string
	ExpirationDate *time.Time
	CreatedBy      string
	UpdatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ArchivedAt     *time.Time // baja lógica; los artículos nunca se borran

	// Cursor del libro: último movimiento aplicado a Quantity.
	LastMovementSeq int64
	LastMovementAt  *time.Time
}

// IsArchived indica si el artículo fue dado de baja.
func (i *Item) IsArchived() bool {
	return i.ArchivedAt != nil
}

// IsLowStock indica si la cantidad está en o por debajo del stock mínimo.
func (i *Item) IsLowStock() bool {
	return i.Quantity <= i.MinimumStock
}

// Validate comprueba los datos de catálogo: nombre y SKU presentes, umbrales y precio no negativos
// y máximo no menor al mínimo.
func (i *Item) Validate() error {
	switch {
	case strings.TrimSpace(i.Name) == "":
		return fmt.Errorf("%w: name requerido", domain.ErrInvalidInput)
	case strings.TrimSpace(i.SKU) == "":
		return fmt.Errorf("%w: sku requerido", domain.ErrInvalidInput)
	case i.MinimumStock < 0:
		return fmt.Errorf("%w: minimum_stock no puede ser negativo", domain.ErrInvalidInput)
	case i.MaximumStock != nil && *i.MaximumStock < i.MinimumStock:
		return fmt.Errorf("%w: maximum_stock menor que minimum_stock", domain.ErrInvalidInput)
	case i.UnitPrice.IsNegative():
		return fmt.Errorf("%w: unit_price no puede ser negativo", domain.ErrInvalidInput)
	}
	return nil
}
