package http

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/estoque-api/internal/application/csvexchange"
	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

// MaxImportSize tamaño máximo del CSV importado.
const MaxImportSize = 5 << 20

// CSVHandler importación y exportación CSV.
type CSVHandler struct {
	svc *csvexchange.Service
	log *logger.Logger
}

// NewCSVHandler construye el handler.
func NewCSVHandler(svc *csvexchange.Service, log *logger.Logger) *CSVHandler {
	return &CSVHandler{svc: svc, log: log}
}

func sendCSV(c *fiber.Ctx, filename string, body []byte) error {
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(body)
}

// Template godoc
// @Summary      Plantilla CSV de productos
// @Tags         csv
// @Produce      text/csv
// @Success      200  {file}  binary
// @Router       /api/csv/template/products.csv [get]
func (h *CSVHandler) Template(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.svc.WriteTemplate(&buf); err != nil {
		return writeError(c, h.log, err)
	}
	return sendCSV(c, "template-produtos.csv", buf.Bytes())
}

// ExportProducts godoc
// @Summary      Exportar productos
// @Tags         csv
// @Produce      text/csv
// @Success      200  {file}  binary
// @Router       /api/csv/export/products.csv [get]
func (h *CSVHandler) ExportProducts(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.svc.ExportProducts(c.Context(), &buf); err != nil {
		return writeError(c, h.log, err)
	}
	return sendCSV(c, "products_"+time.Now().Format("20060102")+".csv", buf.Bytes())
}

// ExportMovements godoc
// @Summary      Exportar movimientos
// @Tags         csv
// @Produce      text/csv
// @Success      200  {file}  binary
// @Router       /api/csv/export/movements.csv [get]
func (h *CSVHandler) ExportMovements(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.svc.ExportMovements(c.Context(), &buf); err != nil {
		return writeError(c, h.log, err)
	}
	return sendCSV(c, "movements_"+time.Now().Format("20060102")+".csv", buf.Bytes())
}

// ImportProducts godoc
// @Summary      Importar productos
// @Description  Crea o actualiza por SKU. Los errores se informan por línea sin abortar el archivo.
// @Tags         csv
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "CSV con encabezado sku,nome,categoria,fornecedor,custo,preco,quantidade_atual,estoque_minimo"
// @Success      200  {object}  csvexchange.ImportReport
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/csv/import/products [post]
func (h *CSVHandler) ImportProducts(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		// nombre de campo del formulario de planillas anterior
		fh, err = c.FormFile("arquivo")
	}
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_FILE", Message: "campo file requerido"})
	}
	if fh.Size > MaxImportSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(dto.ErrorResponse{Code: "FILE_TOO_LARGE", Message: "archivo demasiado grande"})
	}
	f, err := fh.Open()
	if err != nil {
		return writeError(c, h.log, err)
	}
	defer f.Close()

	report, err := h.svc.ImportProducts(c.Context(), f)
	if err != nil {
		return writeError(c, h.log, err)
	}
	h.log.Info().Int("total", report.Total).Int("created", report.Created).
		Int("updated", report.Updated).Int("errors", len(report.Errors)).Msg("importación CSV")
	return c.JSON(report)
}
