package dto

import (
	"encoding/json"
	"time"
)

// AuditListQuery paginación de la bitácora de un artículo.
type AuditListQuery struct {
	PageRequest
}

// AuditEntryResponse entrada de bitácora; before es null en create.
type AuditEntryResponse struct {
	ID          string          `json:"id"`
	Action      string          `json:"action"`
	PerformedBy string          `json:"performed_by"`
	Before      json.RawMessage `json:"before" swaggertype:"object"`
	After       json.RawMessage `json:"after" swaggertype:"object"`
	CreatedAt   time.Time       `json:"created_at"`
}

// AuditListResponse bitácora paginada de un artículo.
type AuditListResponse struct {
	ItemID  string               `json:"item_id"`
	Entries []AuditEntryResponse `json:"entries"`
	Page    PageResponse         `json:"page"`
}
