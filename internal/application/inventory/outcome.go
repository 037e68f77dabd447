package inventory

import (
	"errors"

	"github.com/jhoicas/estoque-api/internal/domain"
)

// Outcome clasifica el resultado de ApplyMovement para que el caller decida mensaje o reintento.
type Outcome int

const (
	OutcomeApplied       Outcome = iota // movimiento registrado
	OutcomeRejectedInput                // entrada inválida o producto inexistente; no se reintenta
	OutcomeRejectedStock                // regla de negocio: el saldo quedaría negativo
	OutcomeFailed                       // fallo de infraestructura
)

// String devuelve el nombre usado en logs.
func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeRejectedInput:
		return "rejected_input"
	case OutcomeRejectedStock:
		return "rejected_stock"
	default:
		return "failed"
	}
}

// Classify traduce el error devuelto por el ledger a un Outcome.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeApplied
	case errors.Is(err, domain.ErrInsufficientStock):
		return OutcomeRejectedStock
	case domain.IsValidation(err):
		return OutcomeRejectedInput
	default:
		return OutcomeFailed
	}
}
