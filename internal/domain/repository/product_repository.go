package repository

import (
	"context"
	"time"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

// ProductFilter filtros de búsqueda del catálogo.
type ProductFilter struct {
	Search   string // coincide con nombre o SKU (parcial)
	Category string
	Supplier string
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// Las implementaciones devuelven (nil, nil) cuando el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	// GetForUpdate lee el producto y bloquea su fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// Update actualiza los campos descriptivos. No toca CurrentQuantity (se maneja vía ledger).
	Update(ctx context.Context, product *entity.Product) error
	// UpdateQuantity persiste el nuevo saldo y refresca updated_at. ErrNotFound si no existe.
	UpdateQuantity(ctx context.Context, id string, quantity int64, at time.Time) error
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
	// ListLowStock devuelve productos con saldo <= mínimo, mayor déficit primero y luego por nombre.
	ListLowStock(ctx context.Context, search string) ([]*entity.Product, error)
	Delete(ctx context.Context, id string) error
}
