package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound        = errors.New("recurso no encontrado")
	ErrInvalidInput    = errors.New("entrada inválida")
	ErrDuplicate       = errors.New("recurso duplicado")
	ErrUnauthorized    = errors.New("no autorizado")
	ErrForbidden       = errors.New("acceso denegado")
	ErrConflict        = errors.New("conflicto con el estado actual")
	ErrHasMovements    = errors.New("el producto tiene movimientos registrados")
	ErrProductNotFound = errors.New("producto no encontrado")

	// Rechazos del ledger de movimientos.
	ErrInvalidKind       = errors.New("tipo de movimiento inválido")
	ErrInvalidQuantity   = errors.New("la cantidad debe ser mayor que cero")
	ErrInsufficientStock = errors.New("salida no permitida: el stock quedaría negativo")
)

// IsValidation indica si err es un rechazo por entrada inválida (no se reintenta).
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidKind) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrInvalidInput)
}
