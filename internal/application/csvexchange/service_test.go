package csvexchange_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/estoque-api/internal/application/csvexchange"
	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/infrastructure/memory"
)

const header = "sku,nome,categoria,fornecedor,custo,preco,quantidade_atual,estoque_minimo\n"

func newService() (*csvexchange.Service, *memory.Store) {
	store := memory.NewStore()
	runner := memory.NewTxRunner(store)
	svc := csvexchange.NewService(
		memory.NewProductRepository(store),
		memory.NewMovementRepository(store),
		runner,
		inventory.NewLedger(runner, nil),
	)
	return svc, store
}

func TestImportProducts_CreaYActualiza(t *testing.T) {
	ctx := context.Background()
	svc, store := newService()

	report, err := svc.ImportProducts(ctx, strings.NewReader(header+
		"T-1,Tornillo,Fijaciones,Acme,\"0,50\",1.20,10,5\n"+
		"T-2,Tuerca,Fijaciones,Acme,0.30,0.80,0,2\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 2, report.Created)
	assert.Empty(t, report.Errors)

	p, err := memory.NewProductRepository(store).GetBySKU(ctx, "T-1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "0.5", p.Cost.String())

	report, err = svc.ImportProducts(ctx, strings.NewReader(header+"T-1,Tornillo 3mm,Fijaciones,Acme,0.50,1.20,4,5\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)
	assert.Empty(t, report.Errors)

	p, err = memory.NewProductRepository(store).GetBySKU(ctx, "T-1")
	require.NoError(t, err)
	assert.Equal(t, "Tornillo 3mm", p.Name)
	assert.Equal(t, int64(4), p.CurrentQuantity)

	movs, err := memory.NewMovementRepository(store).ListByProduct(ctx, p.ID, 0)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementKindOutbound, movs[0].Kind)
	assert.Equal(t, int64(6), movs[0].Quantity)
	assert.Equal(t, "importación CSV: 10 -> 4", movs[0].Note)
}

func TestImportProducts_ErroresPorLinea(t *testing.T) {
	svc, _ := newService()
	report, err := svc.ImportProducts(context.Background(), strings.NewReader(header+
		",Sin SKU,,,0,0,0,0\n"+
		"X-1,,,,0,0,0,0\n"+
		"X-2,Precio malo,,,abc,0,0,0\n"+
		"X-3,Negativo,,,0,0,-1,0\n"+
		"X-4,Correcto,,,0,0,1,0\n"))
	require.NoError(t, err)
	assert.Equal(t, 5, report.Total)
	assert.Equal(t, 1, report.Created)
	require.Len(t, report.Errors, 4)
	assert.Equal(t, csvexchange.RowError{Line: 2, Message: "SKU es obligatorio"}, report.Errors[0])
	assert.Equal(t, 3, report.Errors[1].Line)
	assert.Equal(t, 4, report.Errors[2].Line)
	assert.Equal(t, "las cantidades no pueden ser negativas", report.Errors[3].Message)
}

func TestImportProducts_FaltanColumnas(t *testing.T) {
	svc, _ := newService()
	report, err := svc.ImportProducts(context.Background(), strings.NewReader("sku,name\nA,B\n"))
	require.NoError(t, err)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, 1, report.Errors[0].Line)
	assert.Contains(t, report.Errors[0].Message, "custo")
	assert.NotContains(t, report.Errors[0].Message, "nome")
	assert.Zero(t, report.Total)
}

func TestImportProducts_EncabezadoConNombresDeLaAPI(t *testing.T) {
	ctx := context.Background()
	svc, store := newService()

	report, err := svc.ImportProducts(ctx, strings.NewReader(
		"SKU,Name,Category,Supplier,Cost,Price,Current_Quantity,Minimum_Quantity\n"+
			"E-1,Escuadra,Medición,Acme,2.10,4.00,6,1\n"))
	require.NoError(t, err)
	require.Empty(t, report.Errors)
	assert.Equal(t, 1, report.Created)

	p, err := memory.NewProductRepository(store).GetBySKU(ctx, "E-1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Escuadra", p.Name)
	assert.Equal(t, "Acme", p.Supplier)
	assert.Equal(t, int64(6), p.CurrentQuantity)
	assert.Equal(t, int64(1), p.MinimumQuantity)
}

func TestImportProducts_Windows1252YBOM(t *testing.T) {
	ctx := context.Background()
	svc, store := newService()

	latin, err := charmap.Windows1252.NewEncoder().String(header + "P-1,Pão de açúcar,,,1,2,3,4\n")
	require.NoError(t, err)
	report, err := svc.ImportProducts(ctx, strings.NewReader(latin))
	require.NoError(t, err)
	require.Empty(t, report.Errors)

	bom := append([]byte{0xEF, 0xBB, 0xBF}, []byte(header+"P-2,Maçã,,,1,2,3,4\n")...)
	report, err = svc.ImportProducts(ctx, bytes.NewReader(bom))
	require.NoError(t, err)
	require.Empty(t, report.Errors)

	p, err := memory.NewProductRepository(store).GetBySKU(ctx, "P-1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Pão de açúcar", p.Name)
	p, err = memory.NewProductRepository(store).GetBySKU(ctx, "P-2")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Maçã", p.Name)
}

func TestExport_ProductosYMovimientos(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()
	_, err := svc.ImportProducts(ctx, strings.NewReader(header+"B-1,Broca,,,1.5,3,2,1\nA-1,Alicate,,,10,20,0,1\n"))
	require.NoError(t, err)
	_, err = svc.ImportProducts(ctx, strings.NewReader(header+"B-1,Broca,,,1.5,3,7,1\n"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportProducts(ctx, &buf))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, csvexchange.ProductHeaders, rows[0])
	assert.Equal(t, []string{"A-1", "Alicate", "", "", "10.00", "20.00", "0", "1"}, rows[1])
	assert.Equal(t, "7", rows[2][6])

	buf.Reset()
	require.NoError(t, svc.ExportMovements(ctx, &buf))
	rows, err = csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, csvexchange.MovementHeaders, rows[0])
	assert.Equal(t, []string{"B-1", "Broca", entity.MovementKindInbound, "5"}, rows[1][2:6])

	buf.Reset()
	require.NoError(t, svc.WriteTemplate(&buf))
	assert.True(t, strings.HasPrefix(buf.String(), header))

	// La plantilla se puede importar tal cual.
	report, err := svc.ImportProducts(ctx, &buf)
	require.NoError(t, err)
	assert.Empty(t, report.Errors)
	assert.Equal(t, 1, report.Created)
}
