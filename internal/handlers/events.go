package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/joelthomasitday/flowboard-platform-sub000/internal/models"
	"github.com/joelthomasitday/flowboard-platform-sub000/internal/tracker"
)

// EventsHandler accepts synthetic/test events and routes them through the
// event tracker, same as any internal business code path would
type EventsHandler struct {
	Tracker *tracker.Tracker
	Logger  *zap.Logger
}

func NewEventsHandler(trk *tracker.Tracker, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{
		Tracker: trk,
		Logger:  logger,
	}
}

type trackEventRequest struct {
	EventType   string                 `json:"event_type"`
	WorkspaceID string                 `json:"workspace_id"`
	UserID      *string                `json:"user_id"`
	Metadata    map[string]interface{} `json:"metadata"`
}

// TrackEvent handles POST /events
// The event is accepted immediately; webhook dispatch happens detached from
// this request's lifecycle.
func (h *EventsHandler) TrackEvent(c *fiber.Ctx) error {
	var req trackEventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	eventType, err := models.ParseEventType(req.EventType)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if req.WorkspaceID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "workspace_id is required",
		})
	}

	h.Tracker.Track(c.Context(), eventType, tracker.TrackOptions{
		WorkspaceID: req.WorkspaceID,
		UserID:      req.UserID,
		Metadata:    req.Metadata,
	})

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status":     "accepted",
		"event_type": eventType.Slug(),
	})
}
