// handlers/duel_routes.go
package handlers

import (
	"hackathon-event-system/middleware"
	"hackathon-event-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupDuelRoutes(app *fiber.App, duelService *services.DuelService) {
	// 🔐 All duel routes require user context — scores and disconnects are
	// always attributed to the authenticated participant.
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/duels", duelService.CreateDuel)
	secured.Get("/duels", duelService.GetMyDuels)
	secured.Get("/duels/:id", duelService.GetDuel)
	secured.Post("/duels/:id/updates", duelService.ProposeDuelUpdate)

	// Administrative only — abandoned/disputed matches
	admin := secured.Group("/admin", middleware.RequireRole("admin"))
	admin.Delete("/duels/:id", duelService.DeleteDuel)
}
