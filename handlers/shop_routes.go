// handlers/shop_routes.go
package handlers

import (
	"hackathon-event-system/middleware"
	"hackathon-event-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupShopRoutes(app *fiber.App, shopService *services.ShopService) {
	app.Get("/shop/items", shopService.GetItems)

	secured := app.Group("/", middleware.UserContextMiddleware())
	secured.Post("/shop/items/:id/purchase", shopService.PurchaseItem)
	secured.Get("/shop/purchases", shopService.GetMyPurchases)

	admin := secured.Group("/admin", middleware.RequireRole("admin"))
	admin.Post("/shop/items", shopService.CreateItem)
	admin.Delete("/shop/items/:id", shopService.DeleteItem)
}
