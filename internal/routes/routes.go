package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/joelthomasitday/flowboard-platform-sub000/internal/handlers"
)

// SetupRoutes configures all application routes with dependencies
func SetupRoutes(
	app *fiber.App,
	healthHandler *handlers.HealthHandler,
	endpointsHandler *handlers.EndpointsHandler,
	deliveriesHandler *handlers.DeliveriesHandler,
	eventsHandler *handlers.EventsHandler,
) {
	// Health check endpoint
	app.Get("/health", healthHandler.HealthCheck)

	// API v1 routes
	api := app.Group("/api/v1")

	api.Post("/workspaces/:workspaceID/endpoints", endpointsHandler.CreateEndpoint)
	api.Get("/workspaces/:workspaceID/endpoints", endpointsHandler.ListEndpoints)
	api.Patch("/endpoints/:id", endpointsHandler.UpdateEndpoint)
	api.Delete("/endpoints/:id", endpointsHandler.DeleteEndpoint)
	api.Get("/endpoints/:id/deliveries", deliveriesHandler.GetDeliveries)

	api.Post("/events", eventsHandler.TrackEvent)
}
