package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/estoque-api/internal/application/csvexchange"
	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/internal/application/usecase"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
	"github.com/jhoicas/estoque-api/pkg/jwt"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC   *usecase.ProductUseCase
	Ledger      *inventory.Ledger
	History     *inventory.HistoryUseCase
	LowStock    *inventory.LowStockUseCase
	CSV         *csvexchange.Service
	Visits      repository.VisitCounter
	ServiceName string
	StorageName string
	JWTSecret   string // vacío = escrituras sin autenticación
	Logger      *logger.Logger
}

// Router registra las rutas. Las lecturas son públicas; las escrituras exigen
// JWT con rol admin u operator cuando hay JWTSecret.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}

	write := func(h fiber.Handler) []fiber.Handler {
		if deps.JWTSecret == "" {
			return []fiber.Handler{h}
		}
		return []fiber.Handler{AuthMiddleware(deps.JWTSecret), RequireRole(jwt.RoleAdmin, jwt.RoleOperator), h}
	}

	home := NewHomeHandler(deps.Visits, deps.ServiceName, deps.StorageName, log)
	app.Get("/health", home.Health)
	app.Get("/", home.Index)
	app.Post("/visits", home.Increment)

	api := app.Group("/api")

	productHandler := NewProductHandler(deps.ProductUC, log)
	inventoryHandler := NewInventoryHandler(deps.Ledger, deps.History, deps.LowStock, log)
	api.Get("/products", productHandler.List)
	api.Post("/products", write(productHandler.Create)...)
	api.Get("/products/:id", productHandler.GetByID)
	api.Put("/products/:id", write(productHandler.Update)...)
	api.Delete("/products/:id", write(productHandler.Delete)...)
	api.Get("/products/:id/movements", inventoryHandler.ListByProduct)

	api.Get("/movements", inventoryHandler.List)
	api.Post("/movements", write(inventoryHandler.ApplyMovement)...)

	api.Get("/low-stock", inventoryHandler.LowStock)
	api.Get("/low-stock.pdf", inventoryHandler.LowStockPDF)

	csvHandler := NewCSVHandler(deps.CSV, log)
	csvGroup := api.Group("/csv")
	csvGroup.Get("/template/products.csv", csvHandler.Template)
	csvGroup.Get("/export/products.csv", csvHandler.ExportProducts)
	csvGroup.Get("/export/movements.csv", csvHandler.ExportMovements)
	csvGroup.Post("/import/products", write(csvHandler.ImportProducts)...)
}
