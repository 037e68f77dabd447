package pdf_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/infrastructure/pdf"
)

func TestGenerateLowStockPDF(t *testing.T) {
	gen := pdf.NewMarotoPDFGenerator("estoque-api")
	report := &dto.LowStockResponse{
		Total: 2,
		Items: []dto.LowStockItemDTO{
			{ProductID: "1", SKU: "A-1", Name: "Arandela", CurrentQuantity: 0, MinimumQuantity: 10, Deficit: 10},
			{ProductID: "2", SKU: "B-1", Name: "Bisagra", CurrentQuantity: 3, MinimumQuantity: 3, Deficit: 0},
		},
	}

	out, err := gen.GenerateLowStockPDF(context.Background(), report, time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "debe devolver un documento PDF")
}

func TestGenerateLowStockPDF_Vacio(t *testing.T) {
	out, err := pdf.NewMarotoPDFGenerator("estoque-api").GenerateLowStockPDF(context.Background(), &dto.LowStockResponse{}, time.Now())
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
