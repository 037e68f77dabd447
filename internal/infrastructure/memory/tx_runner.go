package memory

import (
	"context"

	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

// TxRunner implementa inventory.TxRunner sobre Store.
type TxRunner struct {
	s *Store
}

// NewTxRunner crea el runner.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// Run ejecuta fn con repositorios atados a una transacción. Error => nada queda visible.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	t := r.s.begin()
	defer t.rollback()
	if err := fn(&MovementRepository{s: r.s, tx: t}, &ProductRepository{s: r.s, tx: t}); err != nil {
		return err
	}
	return t.commit()
}
