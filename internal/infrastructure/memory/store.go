// Package memory implementa los repositorios en memoria con transacciones:
// bloqueo por fila de producto (equivalente a SELECT FOR UPDATE), escrituras
// preparadas que solo se publican en Commit y restricciones equivalentes al esquema
// PostgreSQL (SKU único, saldo >= 0, FK RESTRICT de movimientos).
// Se usa con STORAGE_DRIVER=memory y en tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

// Store estado confirmado compartido por todas las transacciones.
type Store struct {
	mu        sync.Mutex
	products  map[string]*entity.Product
	movements []*entity.Movement
	nextMovID int64
	rowLocks  map[string]chan struct{}
	visits    int64
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		products: make(map[string]*entity.Product),
		rowLocks: make(map[string]chan struct{}),
	}
}

func (s *Store) rowLock(id string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.rowLocks[id]
	if !ok {
		l = make(chan struct{}, 1)
		s.rowLocks[id] = l
	}
	return l
}

func (s *Store) begin() *tx {
	return &tx{
		s:        s,
		held:     make(map[string]chan struct{}),
		products: make(map[string]*entity.Product),
		created:  make(map[string]bool),
		deleted:  make(map[string]bool),
	}
}

// tx unidad de trabajo: lee lo confirmado más sus propias escrituras.
type tx struct {
	s         *Store
	held      map[string]chan struct{}
	products  map[string]*entity.Product
	created   map[string]bool
	deleted   map[string]bool
	movements []*entity.Movement
	done      bool
}

// lock bloquea la fila del producto hasta el fin de la transacción (reentrante).
func (t *tx) lock(ctx context.Context, id string) error {
	if _, ok := t.held[id]; ok {
		return nil
	}
	l := t.s.rowLock(id)
	select {
	case l <- struct{}{}:
		t.held[id] = l
		return nil
	case <-ctx.Done():
		return fmt.Errorf("lock product %s: %w", id, ctx.Err())
	}
}

func (t *tx) release() {
	for id, l := range t.held {
		<-l
		delete(t.held, id)
	}
	t.done = true
}

func (t *tx) rollback() {
	if !t.done {
		t.release()
	}
}

// product devuelve una copia del producto visible para la transacción.
func (t *tx) product(id string) *entity.Product {
	if t.deleted[id] {
		return nil
	}
	if p, ok := t.products[id]; ok {
		c := *p
		return &c
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if p, ok := t.s.products[id]; ok {
		c := *p
		return &c
	}
	return nil
}

// allProducts vista combinada: confirmados con las escrituras propias encima.
func (t *tx) allProducts() []*entity.Product {
	t.s.mu.Lock()
	merged := make(map[string]*entity.Product, len(t.s.products)+len(t.products))
	for id, p := range t.s.products {
		c := *p
		merged[id] = &c
	}
	t.s.mu.Unlock()
	for id, p := range t.products {
		c := *p
		merged[id] = &c
	}
	list := make([]*entity.Product, 0, len(merged))
	for id, p := range merged {
		if t.deleted[id] {
			continue
		}
		list = append(list, p)
	}
	return list
}

// allMovements vista combinada de movimientos, más recientes primero.
func (t *tx) allMovements() []*entity.Movement {
	t.s.mu.Lock()
	list := make([]*entity.Movement, 0, len(t.s.movements)+len(t.movements))
	for _, m := range t.s.movements {
		c := *m
		list = append(list, &c)
	}
	t.s.mu.Unlock()
	for _, m := range t.movements {
		c := *m
		list = append(list, &c)
	}
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
	return list
}

func (t *tx) skuTaken(sku, exceptID string) bool {
	for _, p := range t.allProducts() {
		if p.SKU == sku && p.ID != exceptID {
			return true
		}
	}
	return false
}

func (t *tx) hasMovements(productID string) bool {
	for _, m := range t.allMovements() {
		if m.ProductID == productID {
			return true
		}
	}
	return false
}

// commit valida las restricciones contra lo confirmado y publica las escrituras.
func (t *tx) commit() error {
	defer t.release()
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	// Una fila leída y modificada aquí que otra transacción borró no se resucita.
	for id, p := range t.products {
		if _, ok := t.s.products[id]; !ok && !t.created[id] {
			return fmt.Errorf("commit product %s: %w", p.SKU, domain.ErrNotFound)
		}
	}
	for _, m := range t.movements {
		if _, ok := t.s.products[m.ProductID]; !ok && !t.created[m.ProductID] {
			return fmt.Errorf("commit movement %d: %w", m.ID, domain.ErrProductNotFound)
		}
		if t.deleted[m.ProductID] {
			return fmt.Errorf("commit movement %d: %w", m.ID, domain.ErrProductNotFound)
		}
	}
	for id, p := range t.products {
		for otherID, other := range t.s.products {
			if _, staged := t.products[otherID]; staged || t.deleted[otherID] {
				continue
			}
			if otherID != id && other.SKU == p.SKU {
				return fmt.Errorf("commit product %s: %w", p.SKU, domain.ErrDuplicate)
			}
		}
	}
	for id := range t.deleted {
		for _, m := range t.s.movements {
			if m.ProductID == id {
				return fmt.Errorf("commit delete %s: %w", id, domain.ErrHasMovements)
			}
		}
	}

	for id := range t.deleted {
		delete(t.s.products, id)
	}
	for id, p := range t.products {
		c := *p
		t.s.products[id] = &c
	}
	for _, m := range t.movements {
		c := *m
		t.s.movements = append(t.s.movements, &c)
	}
	return nil
}

func (s *Store) nextMovementID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextMovID++
	return s.nextMovID
}
