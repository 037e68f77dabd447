package memory

import (
	"context"
	"fmt"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

// MovementRepository historial de movimientos de solo inserción.
type MovementRepository struct {
	s  *Store
	tx *tx
}

// NewMovementRepository repositorio fuera de transacción.
func NewMovementRepository(s *Store) *MovementRepository {
	return &MovementRepository{s: s}
}

func (r *MovementRepository) do(fn func(t *tx) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}
	t := r.s.begin()
	if err := fn(t); err != nil {
		t.rollback()
		return err
	}
	return t.commit()
}

// Insert asigna el ID en el momento (los IDs de una tx revertida no se reutilizan).
func (r *MovementRepository) Insert(ctx context.Context, m *entity.Movement) (int64, error) {
	err := r.do(func(t *tx) error {
		if !entity.IsValidMovementKind(m.Kind) {
			return fmt.Errorf("insert movement: %w", domain.ErrInvalidKind)
		}
		if m.Quantity <= 0 {
			return fmt.Errorf("insert movement: %w", domain.ErrInvalidQuantity)
		}
		if t.product(m.ProductID) == nil {
			return fmt.Errorf("insert movement: %w", domain.ErrProductNotFound)
		}
		m.ID = r.s.nextMovementID()
		c := *m
		t.movements = append(t.movements, &c)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return m.ID, nil
}

// ListByProduct movimientos del producto, más recientes primero.
func (r *MovementRepository) ListByProduct(ctx context.Context, productID string, limit int) ([]*entity.Movement, error) {
	var out []*entity.Movement
	err := r.do(func(t *tx) error {
		for _, m := range t.allMovements() {
			if m.ProductID != productID {
				continue
			}
			out = append(out, m)
			if limit > 0 && len(out) == limit {
				break
			}
		}
		return nil
	})
	return out, err
}

// ListAll incluye SKU y nombre del producto; los movimientos sin producto se omiten.
func (r *MovementRepository) ListAll(ctx context.Context, limit int) ([]*entity.MovementView, error) {
	var out []*entity.MovementView
	err := r.do(func(t *tx) error {
		for _, m := range t.allMovements() {
			p := t.product(m.ProductID)
			if p == nil {
				continue
			}
			out = append(out, &entity.MovementView{Movement: *m, ProductSKU: p.SKU, ProductName: p.Name})
			if limit > 0 && len(out) == limit {
				break
			}
		}
		return nil
	})
	return out, err
}

// LastByKind último movimiento del tipo indicado, o nil.
func (r *MovementRepository) LastByKind(ctx context.Context, productID, kind string) (*entity.Movement, error) {
	var out *entity.Movement
	err := r.do(func(t *tx) error {
		for _, m := range t.allMovements() {
			if m.ProductID == productID && m.Kind == kind {
				out = m
				return nil
			}
		}
		return nil
	})
	return out, err
}

// CountByProduct cantidad de movimientos del producto.
func (r *MovementRepository) CountByProduct(ctx context.Context, productID string) (int64, error) {
	var n int64
	err := r.do(func(t *tx) error {
		for _, m := range t.allMovements() {
			if m.ProductID == productID {
				n++
			}
		}
		return nil
	})
	return n, err
}
