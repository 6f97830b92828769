package entity

import (
	"encoding/json"
	"time"
)

// Acciones registradas en la bitácora de catálogo.
const (
	AuditActionCreate  = "create"
	AuditActionUpdate  = "update"
	AuditActionArchive = "archive"
)

// AuditEntityItem tipo de entidad auditada para artículos.
const AuditEntityItem = "item"

// AuditLog cambio de catálogo con el estado antes y después. Before es null en create.
type AuditLog struct {
	ID          string
	EntityType  string
	EntityID    string
	Action      string
	PerformedBy string
	Before      json.RawMessage
	After       json.RawMessage
	CreatedAt   time.Time
}
