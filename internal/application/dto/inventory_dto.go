package dto

import "time"

// ApplyMovementRequest body para POST /api/movements.
// product_id, kind y quantity los valida el ledger (códigos INVALID_KIND, INVALID_QUANTITY, PRODUCT_NOT_FOUND).
type ApplyMovementRequest struct {
	ProductID string `json:"product_id"`
	Kind      string `json:"kind"`
	Quantity  int64  `json:"quantity"`
	Note      string `json:"note" validate:"max=500"`
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID          int64     `json:"id"`
	ProductID   string    `json:"product_id"`
	ProductSKU  string    `json:"product_sku,omitempty"`
	ProductName string    `json:"product_name,omitempty"`
	Kind        string    `json:"kind"`
	Quantity    int64     `json:"quantity"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ApplyMovementResponse resultado de POST /api/movements.
type ApplyMovementResponse struct {
	MovementID  int64            `json:"movement_id"`
	NewQuantity int64            `json:"new_quantity"`
	Movement    MovementResponse `json:"movement"`
}

// MovementListResponse historial de movimientos (más recientes primero).
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Total int                `json:"total"`
}

// LowStockItemDTO producto con saldo menor o igual a su mínimo.
type LowStockItemDTO struct {
	ProductID       string `json:"product_id"`
	SKU             string `json:"sku"`
	Name            string `json:"name"`
	CurrentQuantity int64  `json:"current_quantity"`
	MinimumQuantity int64  `json:"minimum_quantity"`
	Deficit         int64  `json:"deficit"` // MinimumQuantity - CurrentQuantity
}

// LowStockResponse reporte de stock bajo.
type LowStockResponse struct {
	Total int               `json:"total"`
	Items []LowStockItemDTO `json:"items"`
}
