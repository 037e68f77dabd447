package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

// LowStockPDFGenerator puerto para la representación en PDF del reporte de stock bajo.
type LowStockPDFGenerator interface {
	GenerateLowStockPDF(ctx context.Context, report *dto.LowStockResponse, generatedAt time.Time) ([]byte, error)
}

// LowStockUseCase genera el reporte de productos con saldo menor o igual a su mínimo.
// La condición se evalúa en cada consulta; no se guarda ninguna marca de stock bajo.
type LowStockUseCase struct {
	productRepo repository.ProductRepository
	pdf         LowStockPDFGenerator
}

// NewLowStockUseCase construye el caso de uso. pdf puede ser nil si no se expone el PDF.
func NewLowStockUseCase(productRepo repository.ProductRepository, pdf LowStockPDFGenerator) *LowStockUseCase {
	return &LowStockUseCase{productRepo: productRepo, pdf: pdf}
}

// Report devuelve los productos en stock bajo, ordenados por mayor déficit y luego por nombre.
// search filtra por nombre o SKU (vacío = todos).
func (uc *LowStockUseCase) Report(ctx context.Context, search string) (*dto.LowStockResponse, error) {
	list, err := uc.productRepo.ListLowStock(ctx, strings.TrimSpace(search))
	if err != nil {
		return nil, err
	}
	items := make([]dto.LowStockItemDTO, 0, len(list))
	for _, p := range list {
		items = append(items, dto.LowStockItemDTO{
			ProductID:       p.ID,
			SKU:             p.SKU,
			Name:            p.Name,
			CurrentQuantity: p.CurrentQuantity,
			MinimumQuantity: p.MinimumQuantity,
			Deficit:         p.MinimumQuantity - p.CurrentQuantity,
		})
	}
	return &dto.LowStockResponse{Total: len(items), Items: items}, nil
}

// ReportPDF genera el mismo reporte en PDF.
func (uc *LowStockUseCase) ReportPDF(ctx context.Context, search string) ([]byte, error) {
	if uc.pdf == nil {
		return nil, errors.New("generador de PDF no configurado")
	}
	report, err := uc.Report(ctx, search)
	if err != nil {
		return nil, err
	}
	return uc.pdf.GenerateLowStockPDF(ctx, report, time.Now())
}
