package entity

import "time"

// Tipos de alerta.
const (
	AlertTypeLowStock = "low_stock"
	AlertTypeExpiring = "expiring"
	AlertTypeOther    = "other"
)

// Estados de alerta.
const (
	AlertStatusActive   = "active"
	AlertStatusResolved = "resolved"
)

// Alert representa una alerta de inventario. Como máximo una alerta activa por (ItemID, Type).
type Alert struct {
	ID         string
	ItemID     string
	Type       string
	Message    string
	Status     string
	CreatedAt  time.Time
	ResolvedAt *time.Time
	ResolvedBy string // vacío si la resolvió el sistema
}

// IsActive indica si la alerta sigue activa.
func (a *Alert) IsActive() bool {
	return a.Status == AlertStatusActive
}
