package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

// InventoryHandler movimientos de stock, historial y reporte de stock bajo.
type InventoryHandler struct {
	ledger   *inventory.Ledger
	history  *inventory.HistoryUseCase
	lowStock *inventory.LowStockUseCase
	log      *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	ledger *inventory.Ledger,
	history *inventory.HistoryUseCase,
	lowStock *inventory.LowStockUseCase,
	log *logger.Logger,
) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, history: history, lowStock: lowStock, log: log}
}

// ApplyMovement godoc
// @Summary      Registrar movimiento de stock
// @Description  kind = inbound | outbound, quantity > 0. Una salida que dejaría el saldo
// @Description  negativo se rechaza con 409 INSUFFICIENT_STOCK y no deja rastro.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ApplyMovementRequest  true  "product_id, kind, quantity, note"
// @Success      201   {object}  dto.ApplyMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movements [post]
func (h *InventoryHandler) ApplyMovement(c *fiber.Ctx) error {
	var in dto.ApplyMovementRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.ledger.ApplyMovementFromRequest(c.Context(), in)
	if err != nil {
		h.log.Debug().Err(err).Str("outcome", inventory.Classify(err).String()).
			Str("product_id", in.ProductID).Msg("movimiento no aplicado")
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Historial global de movimientos
// @Tags         movements
// @Produce      json
// @Param        limit  query  int  false  "Máximo 200"  default(200)
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/movements [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	out, err := h.history.ListAll(c.Context(), c.QueryInt("limit", inventory.MaxHistoryLimit))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// ListByProduct godoc
// @Summary      Historial de un producto
// @Tags         movements
// @Produce      json
// @Param        id     path   string  true   "ID del producto"
// @Param        limit  query  int     false  "Máximo 200"  default(200)
// @Success      200  {object}  dto.MovementListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/movements [get]
func (h *InventoryHandler) ListByProduct(c *fiber.Ctx) error {
	out, err := h.history.ListByProduct(c.Context(), c.Params("id"), c.QueryInt("limit", inventory.MaxHistoryLimit))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Productos en stock bajo
// @Description  current_quantity <= minimum_quantity, mayor déficit primero.
// @Tags         low-stock
// @Produce      json
// @Param        q  query  string  false  "Busca en nombre o SKU"
// @Success      200  {object}  dto.LowStockResponse
// @Router       /api/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	out, err := h.lowStock.Report(c.Context(), c.Query("q"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// LowStockPDF godoc
// @Summary      Reporte de stock bajo en PDF
// @Tags         low-stock
// @Produce      application/pdf
// @Param        q  query  string  false  "Busca en nombre o SKU"
// @Success      200  {file}  binary
// @Router       /api/low-stock.pdf [get]
func (h *InventoryHandler) LowStockPDF(c *fiber.Ctx) error {
	out, err := h.lowStock.ReportPDF(c.Context(), c.Query("q"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="stock-bajo.pdf"`)
	return c.Send(out)
}
