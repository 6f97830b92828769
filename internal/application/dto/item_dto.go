package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateItemRequest entrada para registrar un artículo. La cantidad no es parte del catálogo:
// el artículo nace con 0 y solo cambia vía movimientos.
type CreateItemRequest struct {
	Name           string          `json:"name" validate:"required,min=1,max=200"`
	SKU            string          `json:"sku" validate:"required,min=1,max=100"`
	Description    string          `json:"description"`
	Category       string          `json:"category"`
	Location       string          `json:"location"`
	MinimumStock   int64           `json:"minimum_stock" validate:"gte=0"`
	MaximumStock   *int64          `json:"maximum_stock" validate:"omitempty,gte=0"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	SupplierID     string          `json:"supplier_id"`
	Barcode        string          `json:"barcode" validate:"max=64"`
	ExpirationDate *time.Time      `json:"expiration_date"`
}

// UpdateItemRequest entrada para actualizar metadatos y umbrales (nunca la cantidad).
type UpdateItemRequest struct {
	Name           *string          `json:"name" validate:"omitempty,min=1,max=200"`
	SKU            *string          `json:"sku" validate:"omitempty,min=1,max=100"`
	Description    *string          `json:"description"`
	Category       *string          `json:"category"`
	Location       *string          `json:"location"`
	MinimumStock   *int64           `json:"minimum_stock" validate:"omitempty,gte=0"`
	MaximumStock   *int64           `json:"maximum_stock" validate:"omitempty,gte=0"`
	ClearMaximum   bool             `json:"clear_maximum_stock"`
	UnitPrice      *decimal.Decimal `json:"unit_price"`
	SupplierID     *string          `json:"supplier_id"`
	Barcode        *string          `json:"barcode" validate:"omitempty,max=64"`
	ExpirationDate *time.Time       `json:"expiration_date"`
	ClearExpiry    bool             `json:"clear_expiration_date"`
}

// ItemListQuery filtros y paginación del listado.
type ItemListQuery struct {
	PageRequest
	Category string `query:"category"`
	Location string `query:"location"`
	LowStock bool   `query:"low_stock"`
}

// ItemResponse salida de un artículo.
type ItemResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	SKU             string          `json:"sku"`
	Description     string          `json:"description"`
	Category        string          `json:"category"`
	Location        string          `json:"location"`
	Quantity        int64           `json:"quantity"`
	MinimumStock    int64           `json:"minimum_stock"`
	MaximumStock    *int64          `json:"maximum_stock,omitempty"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	SupplierID      string          `json:"supplier_id,omitempty"`
	Barcode         string          `json:"barcode,omitempty"`
	ExpirationDate  *time.Time      `json:"expiration_date,omitempty"`
	LowStock        bool            `json:"low_stock"`
	LastMovementSeq int64           `json:"last_movement_seq"`
	CreatedBy       string          `json:"created_by"`
	UpdatedBy       string          `json:"updated_by"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ItemListResponse lista paginada de artículos.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
