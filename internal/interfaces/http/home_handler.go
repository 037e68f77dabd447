package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

// HomeHandler estado del servicio y contador de visitas.
type HomeHandler struct {
	visits  repository.VisitCounter
	service string
	storage string
	log     *logger.Logger
}

func NewHomeHandler(visits repository.VisitCounter, service, storage string, log *logger.Logger) *HomeHandler {
	return &HomeHandler{visits: visits, service: service, storage: storage, log: log}
}

// Health godoc
// @Summary  Liveness
// @Tags     status
// @Produce  json
// @Success  200  {object}  map[string]bool
// @Router   /health [get]
func (h *HomeHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true})
}

// Index godoc
// @Summary  Estado del servicio y visitas acumuladas
// @Tags     status
// @Produce  json
// @Success  200  {object}  dto.StatusResponse
// @Router   / [get]
func (h *HomeHandler) Index(c *fiber.Ctx) error {
	n, err := h.visits.Get(c.Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(h.status(n))
}

// Increment godoc
// @Summary  Suma una visita
// @Tags     status
// @Produce  json
// @Success  200  {object}  dto.StatusResponse
// @Router   /visits [post]
func (h *HomeHandler) Increment(c *fiber.Ctx) error {
	n, err := h.visits.Increment(c.Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(h.status(n))
}

func (h *HomeHandler) status(visits int64) dto.StatusResponse {
	return dto.StatusResponse{Status: "ok", Service: h.service, Storage: h.storage, Visits: visits}
}
