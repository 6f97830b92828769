package dto

import "time"

// RecordMovementRequest entrada para registrar un movimiento de stock.
// quantity_changed es una magnitud positiva; el sentido lo da movement_type.
type RecordMovementRequest struct {
	ItemID          string `json:"item_id" validate:"required"`
	QuantityChanged int64  `json:"quantity_changed" validate:"required,gt=0"`
	MovementType    string `json:"movement_type" validate:"required,oneof=in out"`
	Reason          string `json:"reason" validate:"required,max=500"`
}

// MovementResponse movimiento almacenado en el libro.
type MovementResponse struct {
	ID              string    `json:"id"`
	ItemID          string    `json:"item_id"`
	Sequence        int64     `json:"sequence"`
	QuantityChanged int64     `json:"quantity_changed"`
	MovementType    string    `json:"movement_type"`
	Reason          string    `json:"reason"`
	PerformedBy     string    `json:"performed_by"`
	CreatedAt       time.Time `json:"created_at"`
}

// AlertChangeResponse alerta levantada o resuelta por la operación.
type AlertChangeResponse struct {
	Decision string        `json:"decision"`
	Alert    AlertResponse `json:"alert"`
}

// RecordMovementResponse artículo tras el movimiento, movimiento almacenado y cambios de alertas.
type RecordMovementResponse struct {
	Item     ItemResponse          `json:"item"`
	Movement MovementResponse      `json:"movement"`
	Alerts   []AlertChangeResponse `json:"alerts"`
}

// MovementListQuery rango opcional (RFC3339) para el historial.
type MovementListQuery struct {
	From string `query:"from"`
	To   string `query:"to"`
}

// MovementListResponse historial de un artículo en orden de secuencia.
type MovementListResponse struct {
	ItemID    string             `json:"item_id"`
	Movements []MovementResponse `json:"movements"`
}

// ReconcileResponse comparación de la cantidad cacheada con la proyección del libro.
type ReconcileResponse struct {
	ItemID       string `json:"item_id"`
	Cached       int64  `json:"cached_quantity"`
	Projected    int64  `json:"projected_quantity"`
	LastSequence int64  `json:"last_sequence"`
	Movements    int    `json:"movements"`
	Consistent   bool   `json:"consistent"`
}
