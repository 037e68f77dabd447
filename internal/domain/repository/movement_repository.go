package repository

import (
	"context"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

// MovementRepository define el puerto de persistencia del historial de movimientos.
// Es de solo inserción: no existen operaciones de actualización ni borrado.
type MovementRepository interface {
	// Insert persiste el movimiento y asigna movement.ID.
	Insert(ctx context.Context, movement *entity.Movement) (int64, error)
	// ListByProduct lista los movimientos de un producto, más recientes primero.
	ListByProduct(ctx context.Context, productID string, limit int) ([]*entity.Movement, error)
	// ListAll lista todos los movimientos con SKU y nombre del producto, más recientes primero.
	ListAll(ctx context.Context, limit int) ([]*entity.MovementView, error)
	// LastByKind devuelve el movimiento más reciente de un tipo para el producto, o nil.
	LastByKind(ctx context.Context, productID, kind string) (*entity.Movement, error)
	CountByProduct(ctx context.Context, productID string) (int64, error)
}
