package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	domaininventory "github.com/jhoicas/estoque-api/internal/domain/inventory"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

// Ledger registra movimientos de stock de forma transaccional: bloquea la fila del
// producto (SELECT FOR UPDATE), valida que el saldo no quede negativo, inserta el
// movimiento y actualiza el saldo, todo en la misma transacción (Commit/Rollback).
// No reintenta: los fallos transitorios los maneja el TxRunner.
type Ledger struct {
	txRunner TxRunner
	now      func() time.Time
}

// NewLedger construye el ledger. clock puede ser nil (usa time.Now).
func NewLedger(txRunner TxRunner, clock func() time.Time) *Ledger {
	if clock == nil {
		clock = time.Now
	}
	return &Ledger{txRunner: txRunner, now: clock}
}

// MovementInput entrada para aplicar un movimiento.
type MovementInput struct {
	ProductID string
	Kind      string
	Quantity  int64
	Note      string
}

// MovementResult resultado de un movimiento aplicado.
type MovementResult struct {
	MovementID  int64
	NewQuantity int64
	Movement    *entity.Movement
}

// Validate aplica las reglas de entrada que no requieren leer el estado.
func (in MovementInput) Validate() error {
	if !entity.IsValidMovementKind(in.Kind) {
		return domain.ErrInvalidKind
	}
	if in.Quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	if strings.TrimSpace(in.ProductID) == "" {
		return domain.ErrProductNotFound
	}
	return nil
}

// ApplyMovement valida la entrada, abre una transacción y aplica el movimiento.
// Errores posibles: ErrInvalidKind, ErrInvalidQuantity, ErrProductNotFound,
// ErrInsufficientStock o un error de infraestructura envuelto.
func (l *Ledger) ApplyMovement(ctx context.Context, in MovementInput) (*MovementResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var result *MovementResult
	err := l.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
	) error {
		res, err := l.ApplyInTx(ctx, movRepo, productRepo, in)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ApplyInTx aplica el movimiento usando los repositorios proporcionados (misma transacción del caller).
// Lo usan la edición de productos y la importación CSV para registrar ajustes junto con otros cambios.
func (l *Ledger) ApplyInTx(
	ctx context.Context,
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
	in MovementInput,
) (*MovementResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	// Bloquea la fila del producto: dos salidas concurrentes no pueden leer el mismo saldo
	product, err := productRepo.GetForUpdate(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	newQty, err := domaininventory.NextQuantity(product.CurrentQuantity, in.Kind, in.Quantity)
	if err != nil {
		return nil, err
	}

	// Con la fila bloqueada, updated_at es el instante del último cambio del producto.
	at := l.now()
	if at.Before(product.UpdatedAt) {
		at = product.UpdatedAt
	}

	mov := &entity.Movement{
		ProductID: product.ID,
		Kind:      in.Kind,
		Quantity:  in.Quantity,
		Note:      strings.TrimSpace(in.Note),
		CreatedAt: at,
	}
	id, err := movRepo.Insert(ctx, mov)
	if err != nil {
		return nil, err
	}
	if err := productRepo.UpdateQuantity(ctx, product.ID, newQty, at); err != nil {
		return nil, err
	}
	return &MovementResult{MovementID: id, NewQuantity: newQty, Movement: mov}, nil
}
