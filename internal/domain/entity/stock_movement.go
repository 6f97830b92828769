package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain"
)

// Tipos de movimiento de stock.
const (
	MovementTypeIn  = "in"  // entrada
	MovementTypeOut = "out" // salida
)

// StockMovement es un registro inmutable del libro de movimientos de un artículo.
// QuantityChanged es siempre una magnitud positiva; el signo lo da Type.
// Sequence y CreatedAt los asigna el almacenamiento al hacer Append.
type StockMovement struct {
	ID              string
	ItemID          string
	Sequence        int64
	QuantityChanged int64
	Type            string // in, out
	Reason          string
	PerformedBy     string // identificador opaco del actor
	CreatedAt       time.Time
}

// IsValidMovementType indica si t es un tipo de movimiento soportado.
func IsValidMovementType(t string) bool {
	return t == MovementTypeIn || t == MovementTypeOut
}

// Signed devuelve la cantidad con signo: +q para entradas, -q para salidas.
func (m *StockMovement) Signed() int64 {
	if m.Type == MovementTypeOut {
		return -m.QuantityChanged
	}
	return m.QuantityChanged
}

// Validate comprueba la forma del movimiento (sin consultar estado).
func (m *StockMovement) Validate() error {
	if strings.TrimSpace(m.ItemID) == "" {
		return fmt.Errorf("%w: item_id requerido", domain.ErrInvalidInput)
	}
	if m.QuantityChanged == 0 {
		return fmt.Errorf("%w: quantity_changed no puede ser cero", domain.ErrInvalidInput)
	}
	if m.QuantityChanged < 0 {
		return fmt.Errorf("%w: quantity_changed debe ser positivo", domain.ErrInvalidInput)
	}
	if !IsValidMovementType(m.Type) {
		return fmt.Errorf("%w: movement_type %q no soportado", domain.ErrInvalidInput, m.Type)
	}
	if strings.TrimSpace(m.Reason) == "" {
		return fmt.Errorf("%w: reason requerido", domain.ErrInvalidInput)
	}
	return nil
}
