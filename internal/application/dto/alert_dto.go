package dto

import "time"

// AlertListQuery filtros del listado de alertas.
type AlertListQuery struct {
	PageRequest
	Status string `query:"status" validate:"omitempty,oneof=active resolved"`
	ItemID string `query:"item_id"`
	Type   string `query:"alert_type" validate:"omitempty,oneof=low_stock expiring other"`
}

// AlertResponse salida de una alerta.
type AlertResponse struct {
	ID         string     `json:"id"`
	ItemID     string     `json:"item_id"`
	AlertType  string     `json:"alert_type"`
	Message    string     `json:"message"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy string     `json:"resolved_by,omitempty"`
}

// AlertListResponse lista paginada de alertas.
type AlertListResponse struct {
	Alerts []AlertResponse `json:"alerts"`
	Page   PageResponse    `json:"page"`
}
