package inventory

import (
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// ErrNegativeQuantity indica que aplicar un movimiento (o reproducir un historial) deja la cantidad
// por debajo de cero. Envuelve domain.ErrInsufficientStock.
var ErrNegativeQuantity = fmt.Errorf("%w: la cantidad resultante sería negativa", domain.ErrInsufficientStock)

// ValidateApply calcula la cantidad resultante de aplicar un movimiento sobre current, sin I/O.
// Una salida igual al stock actual es válida y deja la cantidad en cero; nunca hay cumplimiento parcial.
func ValidateApply(current int64, movementType string, quantity int64) (int64, error) {
	if quantity <= 0 {
		return current, fmt.Errorf("%w: quantity_changed debe ser positivo", domain.ErrInvalidInput)
	}
	switch movementType {
	case entity.MovementTypeIn:
		return current + quantity, nil
	case entity.MovementTypeOut:
		if quantity > current {
			return current, fmt.Errorf("%w (actual %d, salida %d)", ErrNegativeQuantity, current, quantity)
		}
		return current - quantity, nil
	default:
		return current, fmt.Errorf("%w: movement_type %q no soportado", domain.ErrInvalidInput, movementType)
	}
}

// Project reproduce el historial en orden y devuelve la cantidad final.
// Falla si algún prefijo del historial es negativo (historial corrupto).
func Project(history []*entity.StockMovement) (int64, error) {
	var qty int64
	for _, m := range history {
		next, err := ValidateApply(qty, m.Type, m.QuantityChanged)
		if err != nil {
			return qty, fmt.Errorf("reproducir seq %d: %w", m.Sequence, err)
		}
		qty = next
	}
	return qty, nil
}
