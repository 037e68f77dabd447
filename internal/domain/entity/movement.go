package entity

import "time"

// Tipos de movimiento de stock.
const (
	MovementKindInbound  = "inbound"  // entrada
	MovementKindOutbound = "outbound" // salida
)

// Movement es un registro inmutable del historial de stock. Se crea una sola vez,
// dentro de la misma transacción que actualiza el saldo del producto.
type Movement struct {
	ID        int64 // identidad creciente: orden de inserción = orden del ledger
	ProductID string
	Kind      string
	Quantity  int64 // siempre > 0; el sentido lo da Kind
	Note      string
	CreatedAt time.Time
}

// MovementView es un movimiento unido con la identidad del producto (listados y CSV).
type MovementView struct {
	Movement
	ProductSKU  string
	ProductName string
}

// IsValidMovementKind indica si kind es inbound u outbound.
func IsValidMovementKind(kind string) bool {
	return kind == MovementKindInbound || kind == MovementKindOutbound
}
