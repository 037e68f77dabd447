package inventory

import (
	"context"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

// MaxHistoryLimit tope de filas en los listados de historial.
const MaxHistoryLimit = 200

// HistoryUseCase consultas de solo lectura sobre el historial de movimientos.
type HistoryUseCase struct {
	movRepo     repository.MovementRepository
	productRepo repository.ProductRepository
}

// NewHistoryUseCase construye el caso de uso.
func NewHistoryUseCase(movRepo repository.MovementRepository, productRepo repository.ProductRepository) *HistoryUseCase {
	return &HistoryUseCase{movRepo: movRepo, productRepo: productRepo}
}

// ListAll devuelve los movimientos de todos los productos, más recientes primero.
func (uc *HistoryUseCase) ListAll(ctx context.Context, limit int) (*dto.MovementListResponse, error) {
	list, err := uc.movRepo.ListAll(ctx, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, v := range list {
		item := ToMovementResponse(&v.Movement)
		item.ProductSKU = v.ProductSKU
		item.ProductName = v.ProductName
		items = append(items, item)
	}
	return &dto.MovementListResponse{Items: items, Total: len(items)}, nil
}

// ListByProduct devuelve los movimientos de un producto, más recientes primero.
func (uc *HistoryUseCase) ListByProduct(ctx context.Context, productID string, limit int) (*dto.MovementListResponse, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	list, err := uc.movRepo.ListByProduct(ctx, productID, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		item := ToMovementResponse(m)
		item.ProductSKU = product.SKU
		item.ProductName = product.Name
		items = append(items, item)
	}
	return &dto.MovementListResponse{Items: items, Total: len(items)}, nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > MaxHistoryLimit {
		return MaxHistoryLimit
	}
	return limit
}

// ToMovementResponse convierte la entidad al DTO de salida.
func ToMovementResponse(m *entity.Movement) dto.MovementResponse {
	if m == nil {
		return dto.MovementResponse{}
	}
	return dto.MovementResponse{
		ID:        m.ID,
		ProductID: m.ProductID,
		Kind:      m.Kind,
		Quantity:  m.Quantity,
		Note:      m.Note,
		CreatedAt: m.CreatedAt,
	}
}
