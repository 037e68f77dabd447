package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. CurrentQuantity es el saldo inicial.
type CreateProductRequest struct {
	SKU             string          `json:"sku" validate:"required,min=1,max=100"`
	Name            string          `json:"name" validate:"required,min=1,max=200"`
	Category        string          `json:"category" validate:"max=100"`
	Supplier        string          `json:"supplier" validate:"max=100"`
	Cost            decimal.Decimal `json:"cost" validate:"min=0"`
	Price           decimal.Decimal `json:"price" validate:"min=0"`
	CurrentQuantity int64           `json:"current_quantity" validate:"min=0"`
	MinimumQuantity int64           `json:"minimum_quantity" validate:"min=0"`
}

// UpdateProductRequest entrada para actualizar un producto. Un cambio de CurrentQuantity
// se registra como movimiento de ajuste.
type UpdateProductRequest struct {
	SKU             *string          `json:"sku" validate:"omitempty,min=1,max=100"`
	Name            *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Category        *string          `json:"category" validate:"omitempty,max=100"`
	Supplier        *string          `json:"supplier" validate:"omitempty,max=100"`
	Cost            *decimal.Decimal `json:"cost" validate:"omitempty,min=0"`
	Price           *decimal.Decimal `json:"price" validate:"omitempty,min=0"`
	CurrentQuantity *int64           `json:"current_quantity" validate:"omitempty,min=0"`
	MinimumQuantity *int64           `json:"minimum_quantity" validate:"omitempty,min=0"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID              string          `json:"id"`
	SKU             string          `json:"sku"`
	Name            string          `json:"name"`
	Category        string          `json:"category"`
	Supplier        string          `json:"supplier"`
	Cost            decimal.Decimal `json:"cost"`
	Price           decimal.Decimal `json:"price"`
	CurrentQuantity int64           `json:"current_quantity"`
	MinimumQuantity int64           `json:"minimum_quantity"`
	LowStock        bool            `json:"low_stock"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ProductDetailResponse producto con su última entrada y última salida.
type ProductDetailResponse struct {
	ProductResponse
	LastInbound  *MovementResponse `json:"last_inbound"`
	LastOutbound *MovementResponse `json:"last_outbound"`
}

// ProductListResponse lista de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Total int               `json:"total"`
}
