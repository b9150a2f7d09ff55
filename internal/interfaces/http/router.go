package http

import (
	"github.com/gofiber/fiber/v2"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Movements MovementService
	Stock     StockService
	Fractions FractionService
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", ActorMiddleware())

	// Movimientos transaccionales
	invGroup := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Movements)
	invGroup.Post("/adjustments", inventoryHandler.RegisterAdjustment)
	invGroup.Post("/transfers", inventoryHandler.ApproveTransfer)
	invGroup.Post("/exchanges/:id/finalize", inventoryHandler.FinalizeExchange)
	invGroup.Post("/purchase-invoices/:id/approve", inventoryHandler.ApprovePurchaseInvoice)
	invGroup.Post("/purchase-invoices/:id/revert", inventoryHandler.RevertPurchaseInvoice)

	// Stock por depósito y fraccionamiento
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.Stock, deps.Fractions)
	products.Post("/fractions/recompute", productHandler.RecomputeAll)
	products.Post("/:id/stock/adjust", productHandler.AdjustStock)
	products.Get("/:id/deposits/:deposit_id/quantity", productHandler.GetQuantity)
	products.Put("/:id/deposits/:deposit_id/quantity", productHandler.SetQuantity)
	products.Put("/:id/fractions", productHandler.ConfigureFractions)
	products.Post("/:id/fractions/recompute", productHandler.Recompute)
	products.Get("/:id/movements", productHandler.ListMovements)
}
