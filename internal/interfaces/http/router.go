package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/warehouse-orders/internal/application/order"
	"github.com/jhoicas/warehouse-orders/internal/application/usecase"
	"github.com/jhoicas/warehouse-orders/internal/domain/entity"
	"github.com/jhoicas/warehouse-orders/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AppName     string
	OrderSvc    *order.Service
	PackingSlip *order.PackingSlipUseCase
	ProductUC   *usecase.ProductUseCase
	JWTSecret   string
	JWTIssuer   string
	Log         *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))
	staff := RequireRole(entity.RoleAdmin, entity.RoleOperator)

	// Products: lectura para cualquier rol, escritura para personal del almacén
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.Log)
	products.Get("/", productHandler.List)
	products.Get("/low-stock", staff, productHandler.LowStock)
	products.Get("/sku/:sku", productHandler.GetBySKU)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", staff, productHandler.Create)
	products.Put("/:id", staff, productHandler.Update)
	products.Patch("/:id/stock", staff, productHandler.UpdateStock)

	// Orders
	orders := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.OrderSvc, deps.PackingSlip, deps.Log)
	orders.Post("/", orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Get("/number/:number", orderHandler.GetByNumber)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Put("/:id/status", staff, orderHandler.UpdateStatus)
	orders.Delete("/:id", orderHandler.Cancel)
	orders.Get("/:id/transactions", staff, orderHandler.Transactions)
	orders.Get("/:id/packing-slip", staff, orderHandler.PackingSlip)
}
