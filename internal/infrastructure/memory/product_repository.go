package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

// ProductRepository implementa repository.ProductRepository sobre Store.
// Sin transacción, cada operación es su propia unidad de trabajo.
type ProductRepository struct {
	s  *Store
	tx *tx
}

// NewProductRepository repositorio fuera de transacción.
func NewProductRepository(s *Store) *ProductRepository {
	return &ProductRepository{s: s}
}

func (r *ProductRepository) do(fn func(t *tx) error) error {
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

// Create agrega el producto con su saldo inicial (SKU único, cantidades >= 0).
func (r *ProductRepository) Create(ctx context.Context, p *entity.Product) error {
	return r.do(func(t *tx) error {
		if t.product(p.ID) != nil || t.skuTaken(p.SKU, p.ID) {
			return fmt.Errorf("create product %s: %w", p.SKU, domain.ErrDuplicate)
		}
		if p.CurrentQuantity < 0 || p.MinimumQuantity < 0 {
			return fmt.Errorf("create product %s: %w", p.SKU, domain.ErrInvalidInput)
		}
		c := *p
		t.products[p.ID] = &c
		t.created[p.ID] = true
		delete(t.deleted, p.ID)
		return nil
	})
}

// GetByID devuelve (nil, nil) si no existe.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.do(func(t *tx) error {
		out = t.product(id)
		return nil
	})
	return out, err
}

// GetBySKU busca por SKU exacto.
func (r *ProductRepository) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	var out *entity.Product
	err := r.do(func(t *tx) error {
		for _, p := range t.allProducts() {
			if p.SKU == sku {
				out = p
				return nil
			}
		}
		return nil
	})
	return out, err
}

// GetForUpdate bloquea la fila hasta el fin de la transacción y devuelve la versión vigente.
func (r *ProductRepository) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.do(func(t *tx) error {
		if err := t.lock(ctx, id); err != nil {
			return err
		}
		out = t.product(id)
		return nil
	})
	return out, err
}

// Update persiste los campos de catálogo; current_quantity no se toca aquí.
// Como un UPDATE en PostgreSQL, espera el bloqueo de la fila.
func (r *ProductRepository) Update(ctx context.Context, p *entity.Product) error {
	return r.do(func(t *tx) error {
		if err := t.lock(ctx, p.ID); err != nil {
			return err
		}
		cur := t.product(p.ID)
		if cur == nil {
			return domain.ErrNotFound
		}
		if t.skuTaken(p.SKU, p.ID) {
			return fmt.Errorf("update product %s: %w", p.SKU, domain.ErrDuplicate)
		}
		if p.MinimumQuantity < 0 {
			return fmt.Errorf("update product %s: %w", p.SKU, domain.ErrInvalidInput)
		}
		next := *p
		next.CurrentQuantity = cur.CurrentQuantity
		next.CreatedAt = cur.CreatedAt
		t.products[p.ID] = &next
		return nil
	})
}

// UpdateQuantity fija saldo y updated_at; un saldo negativo se rechaza como ErrInsufficientStock.
func (r *ProductRepository) UpdateQuantity(ctx context.Context, id string, quantity int64, at time.Time) error {
	return r.do(func(t *tx) error {
		if err := t.lock(ctx, id); err != nil {
			return err
		}
		cur := t.product(id)
		if cur == nil {
			return domain.ErrNotFound
		}
		if quantity < 0 {
			return fmt.Errorf("update quantity %s: %w", id, domain.ErrInsufficientStock)
		}
		cur.CurrentQuantity = quantity
		cur.UpdatedAt = at
		t.products[id] = cur
		return nil
	})
}

// List filtra por búsqueda en nombre o SKU, categoría y proveedor; ordena por nombre.
func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.do(func(t *tx) error {
		search := strings.ToLower(strings.TrimSpace(filter.Search))
		for _, p := range t.allProducts() {
			if filter.Category != "" && !strings.EqualFold(p.Category, filter.Category) {
				continue
			}
			if filter.Supplier != "" && !strings.EqualFold(p.Supplier, filter.Supplier) {
				continue
			}
			if search != "" && !matches(p, search) {
				continue
			}
			out = append(out, p)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].SKU < out[j].SKU
	})
	return out, err
}

// ListLowStock productos con saldo <= mínimo, mayor déficit primero.
func (r *ProductRepository) ListLowStock(ctx context.Context, search string) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.do(func(t *tx) error {
		search = strings.ToLower(strings.TrimSpace(search))
		for _, p := range t.allProducts() {
			if p.CurrentQuantity > p.MinimumQuantity {
				continue
			}
			if search != "" && !matches(p, search) {
				continue
			}
			out = append(out, p)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		di := out[i].MinimumQuantity - out[i].CurrentQuantity
		dj := out[j].MinimumQuantity - out[j].CurrentQuantity
		if di != dj {
			return di > dj
		}
		return out[i].Name < out[j].Name
	})
	return out, err
}

// Delete espera el bloqueo de la fila, así un movimiento en curso termina antes y el
// borrado ve su historial (ErrHasMovements), igual que el DELETE con FK RESTRICT.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	return r.do(func(t *tx) error {
		if err := t.lock(ctx, id); err != nil {
			return err
		}
		if t.product(id) == nil {
			return domain.ErrNotFound
		}
		if t.hasMovements(id) {
			return fmt.Errorf("delete product %s: %w", id, domain.ErrHasMovements)
		}
		delete(t.products, id)
		t.deleted[id] = true
		return nil
	})
}

func matches(p *entity.Product, search string) bool {
	return strings.Contains(strings.ToLower(p.Name), search) ||
		strings.Contains(strings.ToLower(p.SKU), search)
}
