package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-api/internal/application/csvexchange"
	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/internal/application/usecase"
	"github.com/jhoicas/estoque-api/internal/infrastructure/memory"
	"github.com/jhoicas/estoque-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/estoque-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/estoque-api/pkg/jwt"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func newApp(t *testing.T, jwtSecret string) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	runner := memory.NewTxRunner(store)
	products := memory.NewProductRepository(store)
	movements := memory.NewMovementRepository(store)
	ledger := inventory.NewLedger(runner, nil)

	app := fiber.New()
	app.Use(apphttp.RequestLogger(logger.Nop()))
	apphttp.Router(app, apphttp.RouterDeps{
		ProductUC:   usecase.NewProductUseCase(products, movements, runner, ledger),
		Ledger:      ledger,
		History:     inventory.NewHistoryUseCase(movements, products),
		LowStock:    inventory.NewLowStockUseCase(products, pdf.NewMarotoPDFGenerator("estoque-api")),
		CSV:         csvexchange.NewService(products, movements, runner, ledger),
		Visits:      memory.NewVisitCounter(store),
		ServiceName: "estoque-api",
		StorageName: "memory",
		JWTSecret:   jwtSecret,
		Logger:      logger.Nop(),
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path string, body any, auth string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func createProduct(t *testing.T, app *fiber.App, sku string, qty, min int64) dto.ProductResponse {
	t.Helper()
	resp := call(t, app, http.MethodPost, "/api/products", map[string]any{
		"sku": sku, "name": "Producto " + sku, "cost": "1.10", "price": 2.5,
		"current_quantity": qty, "minimum_quantity": min,
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var out dto.ProductResponse
	decode(t, resp, &out)
	return out
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestHealthYVisitas(t *testing.T) {
	app := newApp(t, "")

	resp := call(t, app, http.MethodGet, "/health", nil, "")
	var health map[string]bool
	decode(t, resp, &health)
	assert.True(t, health["ok"])

	resp = call(t, app, http.MethodPost, "/visits", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	var status dto.StatusResponse
	decode(t, call(t, app, http.MethodGet, "/", nil, ""), &status)
	assert.Equal(t, int64(1), status.Visits)
	assert.Equal(t, "memory", status.Storage)
}

func TestMovimientos_FlujoHTTP(t *testing.T) {
	app := newApp(t, "")
	p := createProduct(t, app, "HTTP-1", 10, 3)

	resp := call(t, app, http.MethodPost, "/api/movements", map[string]any{
		"product_id": p.ID, "kind": "outbound", "quantity": 4, "note": "venta",
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var applied dto.ApplyMovementResponse
	decode(t, resp, &applied)
	assert.Equal(t, int64(6), applied.NewQuantity)

	cases := []struct {
		name   string
		body   map[string]any
		status int
		code   string
	}{
		{"stock insuficiente", map[string]any{"product_id": p.ID, "kind": "outbound", "quantity": 7}, http.StatusConflict, "INSUFFICIENT_STOCK"},
		{"cantidad cero", map[string]any{"product_id": p.ID, "kind": "inbound", "quantity": 0}, http.StatusBadRequest, "INVALID_QUANTITY"},
		{"tipo inválido", map[string]any{"product_id": p.ID, "kind": "transfer", "quantity": 1}, http.StatusBadRequest, "INVALID_KIND"},
		{"producto inexistente", map[string]any{"product_id": "nada", "kind": "inbound", "quantity": 1}, http.StatusNotFound, "PRODUCT_NOT_FOUND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := call(t, app, http.MethodPost, "/api/movements", tc.body, "")
			assert.Equal(t, tc.status, resp.StatusCode)
			var e dto.ErrorResponse
			decode(t, resp, &e)
			assert.Equal(t, tc.code, e.Code)
		})
	}

	var history dto.MovementListResponse
	decode(t, call(t, app, http.MethodGet, "/api/products/"+p.ID+"/movements", nil, ""), &history)
	require.Equal(t, 1, history.Total)
	assert.Equal(t, "venta", history.Items[0].Note)

	var all dto.MovementListResponse
	decode(t, call(t, app, http.MethodGet, "/api/movements", nil, ""), &all)
	require.Equal(t, 1, all.Total)
	assert.Equal(t, "HTTP-1", all.Items[0].ProductSKU)

	var detail dto.ProductDetailResponse
	decode(t, call(t, app, http.MethodGet, "/api/products/"+p.ID, nil, ""), &detail)
	assert.Equal(t, int64(6), detail.CurrentQuantity)
	require.NotNil(t, detail.LastOutbound)
	assert.Nil(t, detail.LastInbound)
}

func TestIDMalFormado_Responde404(t *testing.T) {
	app := newApp(t, "")
	createProduct(t, app, "ID-1", 5, 0)

	cases := []struct {
		method, path string
		body         any
	}{
		{http.MethodPost, "/api/movements", map[string]any{"product_id": "abc", "kind": "outbound", "quantity": 1}},
		{http.MethodGet, "/api/products/abc", nil},
		{http.MethodPut, "/api/products/abc", map[string]any{"name": "Nuevo"}},
		{http.MethodDelete, "/api/products/abc", nil},
		{http.MethodGet, "/api/products/abc/movements", nil},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			resp := call(t, app, tc.method, tc.path, tc.body, "")
			assert.Equal(t, http.StatusNotFound, resp.StatusCode)
			var e dto.ErrorResponse
			decode(t, resp, &e)
			assert.Equal(t, "PRODUCT_NOT_FOUND", e.Code)
		})
	}
}

func TestProductos_CRUDHTTP(t *testing.T) {
	app := newApp(t, "")
	p := createProduct(t, app, "CRUD-1", 2, 5)
	assert.True(t, p.LowStock)

	resp := call(t, app, http.MethodPost, "/api/products", map[string]any{"sku": "CRUD-1", "name": "Otro"}, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, app, http.MethodPost, "/api/products", map[string]any{"sku": "", "name": "Sin SKU", "cost": -1}, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var verr dto.ErrorResponse
	decode(t, resp, &verr)
	assert.Equal(t, "VALIDATION", verr.Code)
	assert.Contains(t, verr.Fields, "sku")
	assert.Contains(t, verr.Fields, "cost")

	resp = call(t, app, http.MethodPut, "/api/products/"+p.ID, map[string]any{"current_quantity": 8}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated dto.ProductResponse
	decode(t, resp, &updated)
	assert.Equal(t, int64(8), updated.CurrentQuantity)
	assert.False(t, updated.LowStock)

	var list dto.ProductListResponse
	decode(t, call(t, app, http.MethodGet, "/api/products?q=crud", nil, ""), &list)
	assert.Equal(t, 1, list.Total)

	// El ajuste dejó historial: no se puede borrar
	resp = call(t, app, http.MethodDelete, "/api/products/"+p.ID, nil, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	q := createProduct(t, app, "CRUD-2", 0, 0)
	resp = call(t, app, http.MethodDelete, "/api/products/"+q.ID, nil, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = call(t, app, http.MethodGet, "/api/products/"+q.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestStockBajo_JSONYPDF(t *testing.T) {
	app := newApp(t, "")
	createProduct(t, app, "LOW-1", 1, 5)
	createProduct(t, app, "OK-1", 9, 5)

	var report dto.LowStockResponse
	decode(t, call(t, app, http.MethodGet, "/api/low-stock", nil, ""), &report)
	require.Equal(t, 1, report.Total)
	assert.Equal(t, int64(4), report.Items[0].Deficit)

	resp := call(t, app, http.MethodGet, "/api/low-stock.pdf", nil, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	b, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")))
}

func TestCSV_ImportarYExportar(t *testing.T) {
	app := newApp(t, "")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "productos.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(strings.Join(csvexchange.ProductHeaders, ",") + "\nCSV-1,Cinta,,,1,2,3,4\n,Sin sku,,,0,0,0,0\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/csv/import/products", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var report csvexchange.ImportReport
	decode(t, resp, &report)
	assert.Equal(t, 1, report.Created)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, 3, report.Errors[0].Line)

	resp = call(t, app, http.MethodGet, "/api/csv/export/products.csv", nil, "")
	defer resp.Body.Close()
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	out, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(out), "CSV-1,Cinta")

	resp = call(t, app, http.MethodPost, "/api/csv/import/products", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestCSV_ImportarFormularioAnterior(t *testing.T) {
	app := newApp(t, "")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("arquivo", "produtos.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte("sku,nome,categoria,fornecedor,custo,preco,quantidade_atual,estoque_minimo\n" +
		"SKU-CSV-1,Produto CSV 1,Cat,Forn,1.00,2.00,5,1\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/csv/import/products", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var report csvexchange.ImportReport
	decode(t, resp, &report)
	assert.Equal(t, 1, report.Created)
	assert.Empty(t, report.Errors)
}

// Con JWT_SECRET las escrituras exigen token con rol admin u operator; las lecturas no.
func TestRouter_EscriturasProtegidas(t *testing.T) {
	app := newApp(t, testJWTSecret)
	newProduct := map[string]any{"sku": "AUTH-1", "name": "Protegido"}

	resp := call(t, app, http.MethodPost, "/api/products", newProduct, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, app, http.MethodPost, "/api/products", newProduct, tokenForRole(t, pkgjwt.RoleViewer))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, app, http.MethodPost, "/api/products", newProduct, tokenForRole(t, pkgjwt.RoleOperator))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, app, http.MethodGet, "/api/products", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}
