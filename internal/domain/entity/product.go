package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto (SKU) del inventario.
// CurrentQuantity es el saldo desnormalizado que mantiene el ledger de movimientos;
// nunca puede ser negativo.
type Product struct {
	ID              string
	SKU             string // único en todo el catálogo
	Name            string
	Category        string
	Supplier        string
	Cost            decimal.Decimal
	Price           decimal.Decimal
	CurrentQuantity int64
	MinimumQuantity int64 // umbral de stock bajo
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
