package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/inventario-ledger/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ItemUC    *usecase.ItemUseCase
	StockUC   *usecase.StockUseCase
	AlertUC   *usecase.AlertUseCase
	JWTSecret string
}

// Router registra las rutas de la API. Todas requieren Bearer Token; las escrituras y la
// bitácora de catálogo requieren rol admin o manager.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	read := RequireRole(jwt.RoleAdmin, jwt.RoleManager, jwt.RoleUser)
	write := RequireRole(jwt.RoleAdmin, jwt.RoleManager)

	itemHandler := NewItemHandler(deps.ItemUC)
	stockHandler := NewStockHandler(deps.StockUC)
	alertHandler := NewAlertHandler(deps.AlertUC)

	// Items
	items := api.Group("/items")
	items.Get("/", read, itemHandler.List)
	items.Post("/", write, itemHandler.Create)
	items.Get("/:id", read, itemHandler.GetByID)
	items.Put("/:id", write, itemHandler.Update)
	items.Delete("/:id", write, itemHandler.Archive)
	items.Get("/:id/movements", read, stockHandler.ListMovements)
	items.Get("/:id/reconcile", read, stockHandler.Reconcile)
	items.Get("/:id/history", write, itemHandler.History)

	// Stock
	api.Post("/stock/movements", write, stockHandler.RecordMovement)

	// Alerts
	alerts := api.Group("/alerts")
	alerts.Get("/", read, alertHandler.List)
	alerts.Put("/:id/resolve", write, alertHandler.Resolve)
}
