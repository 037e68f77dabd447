// Package csvexchange importa y exporta el catálogo y el historial de movimientos en CSV.
//
// La importación crea o actualiza productos por SKU, una transacción por línea, y acumula
// los errores por línea sin abortar el archivo. Un cambio de saldo en un producto
// existente se registra como movimiento de ajuste a través del ledger.
package csvexchange

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	domaininventory "github.com/jhoicas/estoque-api/internal/domain/inventory"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

// ProductHeaders columnas del CSV de productos, en orden. Son las del sistema de
// planillas existente, así sus exportaciones se importan sin cambios.
var ProductHeaders = []string{
	"sku", "nome", "categoria", "fornecedor", "custo", "preco", "quantidade_atual", "estoque_minimo",
}

// productHeaderAliases nombres alternativos aceptados al importar (nombres de campo de la API).
var productHeaderAliases = map[string]string{
	"name":             "nome",
	"category":         "categoria",
	"supplier":         "fornecedor",
	"cost":             "custo",
	"price":            "preco",
	"preço":            "preco",
	"current_quantity": "quantidade_atual",
	"minimum_quantity": "estoque_minimo",
}

// MovementHeaders columnas del CSV de movimientos, en orden.
var MovementHeaders = []string{
	"id", "criado_em", "produto_sku", "produto_nome", "tipo", "quantidade", "observacao",
}

// MaxMovementExport tope de filas del export de movimientos.
const MaxMovementExport = 2000

// RowError error de una línea del archivo importado (la línea 1 es el encabezado).
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// ImportReport resumen de una importación.
type ImportReport struct {
	Total   int        `json:"total"`
	Created int        `json:"created"`
	Updated int        `json:"updated"`
	Errors  []RowError `json:"errors"`
}

// Service casos de uso de intercambio CSV.
type Service struct {
	productRepo repository.ProductRepository
	movRepo     repository.MovementRepository
	txRunner    inventory.TxRunner
	ledger      *inventory.Ledger
}

// NewService construye el servicio.
func NewService(
	productRepo repository.ProductRepository,
	movRepo repository.MovementRepository,
	txRunner inventory.TxRunner,
	ledger *inventory.Ledger,
) *Service {
	return &Service{productRepo: productRepo, movRepo: movRepo, txRunner: txRunner, ledger: ledger}
}

// WriteTemplate escribe el encabezado y una fila de ejemplo.
func (s *Service) WriteTemplate(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ProductHeaders); err != nil {
		return err
	}
	if err := cw.Write([]string{"SKU-001", "Produto exemplo", "Categoria", "Fornecedor", "1.50", "3.00", "10", "2"}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// ExportProducts escribe todos los productos ordenados por nombre.
func (s *Service) ExportProducts(ctx context.Context, w io.Writer) error {
	list, err := s.productRepo.List(ctx, repository.ProductFilter{})
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(ProductHeaders); err != nil {
		return err
	}
	for _, p := range list {
		if err := cw.Write([]string{
			p.SKU, p.Name, p.Category, p.Supplier,
			p.Cost.StringFixed(2), p.Price.StringFixed(2),
			strconv.FormatInt(p.CurrentQuantity, 10), strconv.FormatInt(p.MinimumQuantity, 10),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportMovements escribe los movimientos más recientes primero.
func (s *Service) ExportMovements(ctx context.Context, w io.Writer) error {
	list, err := s.movRepo.ListAll(ctx, MaxMovementExport)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(MovementHeaders); err != nil {
		return err
	}
	for _, m := range list {
		if err := cw.Write([]string{
			strconv.FormatInt(m.ID, 10), m.CreatedAt.UTC().Format(time.RFC3339),
			m.ProductSKU, m.ProductName, m.Kind, strconv.FormatInt(m.Quantity, 10), m.Note,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportProducts lee el CSV y crea o actualiza productos por SKU.
// Solo devuelve error si el archivo no se puede leer; los problemas de cada línea van al reporte.
func (s *Service) ImportProducts(ctx context.Context, r io.Reader) (*ImportReport, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("leer csv: %w", err)
	}
	text, err := decodeText(raw)
	if err != nil {
		return nil, err
	}

	report := &ImportReport{Errors: []RowError{}}
	cr := csv.NewReader(strings.NewReader(text))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		report.Errors = append(report.Errors, RowError{Line: 1, Message: "CSV vacío: falta el encabezado"})
		return report, nil
	}
	if err != nil {
		report.Errors = append(report.Errors, RowError{Line: 1, Message: "CSV inválido: " + err.Error()})
		return report, nil
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		col := strings.ToLower(strings.TrimSpace(h))
		if canonical, ok := productHeaderAliases[col]; ok {
			col = canonical
		}
		if _, dup := index[col]; !dup {
			index[col] = i
		}
	}
	var missing []string
	for _, h := range ProductHeaders {
		if _, ok := index[h]; !ok {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		report.Errors = append(report.Errors, RowError{
			Line:    1,
			Message: "CSV inválido: faltan columnas obligatorias: " + strings.Join(missing, ", "),
		})
		return report, nil
	}

	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		report.Total++
		if err != nil {
			report.Errors = append(report.Errors, RowError{Line: line, Message: "línea ilegible: " + err.Error()})
			continue
		}
		get := func(col string) string {
			i := index[col]
			if i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		row, msg := parseRow(get)
		if msg != "" {
			report.Errors = append(report.Errors, RowError{Line: line, Message: msg})
			continue
		}
		created, err := s.upsert(ctx, row)
		if err != nil {
			report.Errors = append(report.Errors, RowError{Line: line, Message: rowErrorMessage(err)})
			continue
		}
		if created {
			report.Created++
		} else {
			report.Updated++
		}
	}
	return report, nil
}

type productRow struct {
	sku, name, category, supplier string
	cost, price                   decimal.Decimal
	current, minimum              int64
}

func parseRow(get func(string) string) (productRow, string) {
	row := productRow{
		sku:      get("sku"),
		name:     get("nome"),
		category: get("categoria"),
		supplier: get("fornecedor"),
	}
	if row.sku == "" {
		return row, "SKU es obligatorio"
	}
	if row.name == "" {
		return row, "nombre es obligatorio"
	}
	var err error
	if row.cost, err = parseDecimal(get("custo")); err != nil {
		return row, "campos numéricos inválidos (custo/preco/cantidades)"
	}
	if row.price, err = parseDecimal(get("preco")); err != nil {
		return row, "campos numéricos inválidos (custo/preco/cantidades)"
	}
	if row.current, err = parseInt(get("quantidade_atual")); err != nil {
		return row, "campos numéricos inválidos (custo/preco/cantidades)"
	}
	if row.minimum, err = parseInt(get("estoque_minimo")); err != nil {
		return row, "campos numéricos inválidos (custo/preco/cantidades)"
	}
	if row.current < 0 || row.minimum < 0 {
		return row, "las cantidades no pueden ser negativas"
	}
	return row, ""
}

// upsert crea o actualiza el producto en su propia transacción. Devuelve true si lo creó.
func (s *Service) upsert(ctx context.Context, row productRow) (bool, error) {
	created := false
	err := s.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
	) error {
		existing, err := productRepo.GetBySKU(ctx, row.sku)
		if err != nil {
			return err
		}
		now := time.Now()
		if existing == nil {
			created = true
			return productRepo.Create(ctx, &entity.Product{
				ID:              uuid.New().String(),
				SKU:             row.sku,
				Name:            row.name,
				Category:        row.category,
				Supplier:        row.supplier,
				Cost:            row.cost,
				Price:           row.price,
				CurrentQuantity: row.current,
				MinimumQuantity: row.minimum,
				CreatedAt:       now,
				UpdatedAt:       now,
			})
		}
		created = false
		product, err := productRepo.GetForUpdate(ctx, existing.ID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrProductNotFound
		}
		product.Name = row.name
		product.Category = row.category
		product.Supplier = row.supplier
		product.Cost = row.cost
		product.Price = row.price
		product.MinimumQuantity = row.minimum
		product.UpdatedAt = now
		if err := productRepo.Update(ctx, product); err != nil {
			return err
		}
		from, to := product.CurrentQuantity, row.current
		if kind, qty, ok := domaininventory.AdjustmentFor(from, to); ok {
			_, err := s.ledger.ApplyInTx(ctx, movRepo, productRepo, inventory.MovementInput{
				ProductID: product.ID,
				Kind:      kind,
				Quantity:  qty,
				Note:      fmt.Sprintf("importación CSV: %d -> %d", from, to),
			})
			return err
		}
		return nil
	})
	return created, err
}

func rowErrorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrDuplicate):
		return "SKU duplicado"
	case errors.Is(err, domain.ErrInsufficientStock), errors.Is(err, domain.ErrInvalidInput):
		return "datos inválidos: " + err.Error()
	default:
		return "error al guardar: " + err.Error()
	}
}

func parseInt(v string) (int64, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.ParseInt(v, 10, 64)
}

// parseDecimal acepta coma o punto como separador decimal.
func parseDecimal(v string) (decimal.Decimal, error) {
	if v == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(strings.ReplaceAll(v, ",", "."))
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeText interpreta el archivo como UTF-8 (con o sin BOM) y, si no es UTF-8 válido,
// como Windows-1252, que es lo que exportan las planillas de cálculo en la región.
func decodeText(raw []byte) (string, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	out, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), raw)
	if err != nil {
		return "", fmt.Errorf("decodificar csv: %w", err)
	}
	return string(out), nil
}
