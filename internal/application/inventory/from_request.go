package inventory

import (
	"context"

	"github.com/jhoicas/estoque-api/internal/application/dto"
)

// ApplyMovementFromRequest adapta el request HTTP al ledger ApplyMovement(ctx, MovementInput)
// y arma la respuesta.
func (l *Ledger) ApplyMovementFromRequest(ctx context.Context, in dto.ApplyMovementRequest) (*dto.ApplyMovementResponse, error) {
	res, err := l.ApplyMovement(ctx, MovementInput{
		ProductID: in.ProductID,
		Kind:      in.Kind,
		Quantity:  in.Quantity,
		Note:      in.Note,
	})
	if err != nil {
		return nil, err
	}
	return &dto.ApplyMovementResponse{
		MovementID:  res.MovementID,
		NewQuantity: res.NewQuantity,
		Movement:    ToMovementResponse(res.Movement),
	}, nil
}
