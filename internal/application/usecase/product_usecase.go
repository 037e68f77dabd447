package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	domaininventory "github.com/jhoicas/estoque-api/internal/domain/inventory"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos.
// El saldo solo cambia vía ledger: una edición directa de la cantidad se registra como ajuste.
type ProductUseCase struct {
	repo     repository.ProductRepository
	movRepo  repository.MovementRepository
	txRunner inventory.TxRunner
	ledger   *inventory.Ledger
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	repo repository.ProductRepository,
	movRepo repository.MovementRepository,
	txRunner inventory.TxRunner,
	ledger *inventory.Ledger,
) *ProductUseCase {
	return &ProductUseCase{repo: repo, movRepo: movRepo, txRunner: txRunner, ledger: ledger}
}

// Create crea un nuevo producto con su saldo inicial explícito.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	in.SKU = strings.TrimSpace(in.SKU)
	in.Name = strings.TrimSpace(in.Name)
	if in.SKU == "" || in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.CurrentQuantity < 0 || in.MinimumQuantity < 0 {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.repo.GetBySKU(ctx, in.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	product := &entity.Product{
		ID:              uuid.New().String(),
		SKU:             in.SKU,
		Name:            in.Name,
		Category:        strings.TrimSpace(in.Category),
		Supplier:        strings.TrimSpace(in.Supplier),
		Cost:            in.Cost,
		Price:           in.Price,
		CurrentQuantity: in.CurrentQuantity,
		MinimumQuantity: in.MinimumQuantity,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// GetByID obtiene un producto con su última entrada y última salida.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductDetailResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	out := &dto.ProductDetailResponse{ProductResponse: *ToProductResponse(product)}
	lastIn, err := uc.movRepo.LastByKind(ctx, id, entity.MovementKindInbound)
	if err != nil {
		return nil, err
	}
	if lastIn != nil {
		m := inventory.ToMovementResponse(lastIn)
		out.LastInbound = &m
	}
	lastOut, err := uc.movRepo.LastByKind(ctx, id, entity.MovementKindOutbound)
	if err != nil {
		return nil, err
	}
	if lastOut != nil {
		m := inventory.ToMovementResponse(lastOut)
		out.LastOutbound = &m
	}
	return out, nil
}

// Update actualiza un producto en una sola transacción. Si cambia CurrentQuantity,
// la diferencia se registra como movimiento de ajuste a través del ledger.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if in.CurrentQuantity != nil && *in.CurrentQuantity < 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.MinimumQuantity != nil && *in.MinimumQuantity < 0 {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.Product
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
	) error {
		product, err := productRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrProductNotFound
		}
		if in.SKU != nil {
			sku := strings.TrimSpace(*in.SKU)
			if sku == "" {
				return domain.ErrInvalidInput
			}
			if sku != product.SKU {
				other, err := productRepo.GetBySKU(ctx, sku)
				if err != nil {
					return err
				}
				if other != nil && other.ID != product.ID {
					return domain.ErrDuplicate
				}
			}
			product.SKU = sku
		}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return domain.ErrInvalidInput
			}
			product.Name = name
		}
		if in.Category != nil {
			product.Category = strings.TrimSpace(*in.Category)
		}
		if in.Supplier != nil {
			product.Supplier = strings.TrimSpace(*in.Supplier)
		}
		if in.Cost != nil {
			product.Cost = *in.Cost
		}
		if in.Price != nil {
			product.Price = *in.Price
		}
		if in.MinimumQuantity != nil {
			product.MinimumQuantity = *in.MinimumQuantity
		}
		product.UpdatedAt = time.Now()
		if err := productRepo.Update(ctx, product); err != nil {
			return err
		}

		if in.CurrentQuantity != nil {
			from, to := product.CurrentQuantity, *in.CurrentQuantity
			if kind, qty, ok := domaininventory.AdjustmentFor(from, to); ok {
				res, err := uc.ledger.ApplyInTx(ctx, movRepo, productRepo, inventory.MovementInput{
					ProductID: product.ID,
					Kind:      kind,
					Quantity:  qty,
					Note:      fmt.Sprintf("ajuste manual: %d -> %d", from, to),
				})
				if err != nil {
					return err
				}
				product.CurrentQuantity = res.NewQuantity
				product.UpdatedAt = res.Movement.CreatedAt
			}
		}
		out = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ToProductResponse(out), nil
}

// List lista productos filtrando por búsqueda, categoría y proveedor, ordenados por nombre.
func (uc *ProductUseCase) List(ctx context.Context, filter repository.ProductFilter) (*dto.ProductListResponse, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Supplier = strings.TrimSpace(filter.Supplier)
	list, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *ToProductResponse(p))
	}
	return &dto.ProductListResponse{Items: items, Total: len(items)}, nil
}

// Delete elimina un producto. No se permite si tiene movimientos (el historial no queda huérfano).
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrProductNotFound
	}
	n, err := uc.movRepo.CountByProduct(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.ErrHasMovements
	}
	return uc.repo.Delete(ctx, id)
}

// ToProductResponse convierte la entidad al DTO de salida (low_stock calculado al vuelo).
func ToProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:              p.ID,
		SKU:             p.SKU,
		Name:            p.Name,
		Category:        p.Category,
		Supplier:        p.Supplier,
		Cost:            p.Cost,
		Price:           p.Price,
		CurrentQuantity: p.CurrentQuantity,
		MinimumQuantity: p.MinimumQuantity,
		LowStock:        domaininventory.IsLowStock(p.CurrentQuantity, p.MinimumQuantity),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}
