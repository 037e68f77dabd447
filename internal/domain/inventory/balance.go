package inventory

import (
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

// NextQuantity calcula el saldo candidato tras aplicar un movimiento (servicio de dominio).
// NuevoSaldo = Saldo + Cantidad (inbound) | Saldo - Cantidad (outbound)
// Devuelve ErrInsufficientStock si el saldo quedaría negativo.
func NextQuantity(current int64, kind string, quantity int64) (int64, error) {
	if !entity.IsValidMovementKind(kind) {
		return current, domain.ErrInvalidKind
	}
	if quantity <= 0 {
		return current, domain.ErrInvalidQuantity
	}
	next := current + quantity
	if kind == entity.MovementKindOutbound {
		next = current - quantity
	}
	if next < 0 {
		return current, domain.ErrInsufficientStock
	}
	return next, nil
}

// AdjustmentFor traduce un cambio directo de saldo (from -> to) al movimiento equivalente.
// ok es false cuando no hay diferencia y no corresponde registrar nada.
func AdjustmentFor(from, to int64) (kind string, quantity int64, ok bool) {
	switch {
	case to > from:
		return entity.MovementKindInbound, to - from, true
	case to < from:
		return entity.MovementKindOutbound, from - to, true
	default:
		return "", 0, false
	}
}

// IsLowStock: un producto está en stock bajo si su saldo es menor o igual al mínimo.
// Se recalcula en cada lectura; no se persiste.
func IsLowStock(current, minimum int64) bool {
	return current <= minimum
}
