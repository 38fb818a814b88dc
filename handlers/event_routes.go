// handlers/event_routes.go
package handlers

import (
	"hackathon-event-system/middleware"
	"hackathon-event-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupEventRoutes(app *fiber.App, eventService *services.EventService) {
	// 🔓 Public routes — *no user context*, but **still require Gateway auth**
	app.Get("/events", eventService.GetPublishedEvents)
	app.Get("/events/:id", eventService.GetEventByID)

	secured := app.Group("/", middleware.UserContextMiddleware())
	admin := secured.Group("/admin", middleware.RequireRole("admin"))

	admin.Post("/events", eventService.CreateEvent)
	admin.Get("/events", eventService.GetAllEvents)
	admin.Put("/events/:id", eventService.UpdateEvent)
	admin.Patch("/events/:id", eventService.UpdateEvent)
	admin.Delete("/events/:id", eventService.DeleteEvent)

	// Publish scheduling
	admin.Post("/events/:id/publish/now", eventService.PublishNow)
	admin.Post("/events/:id/publish/schedule", eventService.SchedulePublish)
}
