package inventory

import (
	"fmt"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// Decision resultado de evaluar las alertas de un artículo tras un cambio de cantidad.
type Decision string

const (
	DecisionNoChange        Decision = "no_change"
	DecisionRaiseLowStock   Decision = "raise_low_stock"
	DecisionResolveLowStock Decision = "resolve_low_stock"
	DecisionRaiseExpiring   Decision = "raise_expiring"
	DecisionResolveExpiring Decision = "resolve_expiring"
)

// IsRaise indica si la decisión crea una alerta.
func (d Decision) IsRaise() bool {
	return d == DecisionRaiseLowStock || d == DecisionRaiseExpiring
}

// AlertType devuelve el tipo de alerta afectado por la decisión (vacío para no_change).
func (d Decision) AlertType() string {
	switch d {
	case DecisionRaiseLowStock, DecisionResolveLowStock:
		return entity.AlertTypeLowStock
	case DecisionRaiseExpiring, DecisionResolveExpiring:
		return entity.AlertTypeExpiring
	}
	return ""
}

// EvaluateLowStock decide sobre la alerta de stock bajo. Es idempotente: con el mismo estado
// nunca levanta dos veces ni resuelve dos veces.
func EvaluateLowStock(item *entity.Item, lowStockActive bool) Decision {
	low := item.Quantity <= item.MinimumStock
	switch {
	case low && !lowStockActive:
		return DecisionRaiseLowStock
	case !low && lowStockActive:
		return DecisionResolveLowStock
	}
	return DecisionNoChange
}

// EvaluateExpiry decide sobre la alerta de vencimiento: aplica a artículos con stock cuya fecha
// de vencimiento cae antes de now+window (incluye los ya vencidos).
func EvaluateExpiry(item *entity.Item, expiringActive bool, now time.Time, window time.Duration) Decision {
	expiring := item.Quantity > 0 &&
		item.ExpirationDate != nil &&
		item.ExpirationDate.Before(now.Add(window))
	switch {
	case expiring && !expiringActive:
		return DecisionRaiseExpiring
	case !expiring && expiringActive:
		return DecisionResolveExpiring
	}
	return DecisionNoChange
}

// AlertSettings ajustes de notificación que gobiernan la evaluación.
type AlertSettings struct {
	LowStockEnabled bool
	ExpiryEnabled   bool
	ExpiryWindow    time.Duration
}

// ActiveAlerts estado actual de las alertas activas de un artículo.
type ActiveAlerts struct {
	LowStock bool
	Expiring bool
}

// AlertEvaluator combina las reglas de stock bajo y vencimiento con los ajustes.
// Sin estado entre llamadas.
type AlertEvaluator struct {
	settings AlertSettings
}

// NewAlertEvaluator construye el evaluador.
func NewAlertEvaluator(settings AlertSettings) *AlertEvaluator {
	return &AlertEvaluator{settings: settings}
}

// Settings devuelve los ajustes vigentes.
func (e *AlertEvaluator) Settings() AlertSettings {
	return e.settings
}

// Evaluate devuelve solo las decisiones que cambian algo. Con un tipo deshabilitado no se
// levantan alertas nuevas de ese tipo, pero las activas se siguen resolviendo cuando la
// condición desaparece.
func (e *AlertEvaluator) Evaluate(item *entity.Item, active ActiveAlerts, now time.Time) []Decision {
	var out []Decision
	if d := EvaluateLowStock(item, active.LowStock); d != DecisionNoChange {
		if !d.IsRaise() || e.settings.LowStockEnabled {
			out = append(out, d)
		}
	}
	if d := EvaluateExpiry(item, active.Expiring, now, e.settings.ExpiryWindow); d != DecisionNoChange {
		if !d.IsRaise() || e.settings.ExpiryEnabled {
			out = append(out, d)
		}
	}
	return out
}

// AlertMessage texto de la alerta levantada por d.
func AlertMessage(d Decision, item *entity.Item) string {
	switch d {
	case DecisionRaiseLowStock:
		return fmt.Sprintf("%s (%s) tiene %d unidades; mínimo %d", item.Name, item.SKU, item.Quantity, item.MinimumStock)
	case DecisionRaiseExpiring:
		if item.ExpirationDate != nil {
			return fmt.Sprintf("%s (%s) vence el %s", item.Name, item.SKU, item.ExpirationDate.Format("2006-01-02"))
		}
	}
	return ""
}
