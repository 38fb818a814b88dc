// handlers/profile_routes.go
package handlers

import (
	"hackathon-event-system/middleware"
	"hackathon-event-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupProfileRoutes(app *fiber.App, profileService *services.ProfileService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/profile", profileService.GetMyProfile)
	secured.Get("/profile/duel-stats", profileService.GetMyDuelStats)

	admin := secured.Group("/admin", middleware.RequireRole("admin"))
	admin.Get("/profiles", profileService.GetAllProfiles)
	admin.Post("/profiles/:external_id/points", profileService.AdjustPoints)
}
