package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joelthomasitday/flowboard-platform-sub000/internal/store"
)

// DeliveriesHandler serves delivery history for an endpoint
type DeliveriesHandler struct {
	Store  store.Store
	Logger *zap.Logger
}

func NewDeliveriesHandler(st store.Store, logger *zap.Logger) *DeliveriesHandler {
	return &DeliveriesHandler{
		Store:  st,
		Logger: logger,
	}
}

// DeliveriesResponse represents the response structure for GET /endpoints/:id/deliveries
type DeliveriesResponse struct {
	Deliveries []DeliveryDTO `json:"deliveries"`
	HasMore    bool          `json:"has_more"`
}

// DeliveryDTO represents a single delivery attempt in the response
type DeliveryDTO struct {
	ID           int64  `json:"id"`
	EventID      string `json:"event_id"`
	EventType    string `json:"event_type"`
	StatusCode   int    `json:"status_code"`
	ResponseBody string `json:"response_body"`
	Success      bool   `json:"success"`
	DurationMs   int    `json:"duration_ms"`
	Timestamp    string `json:"timestamp"` // UTC ISO 8601 format
}

// GetDeliveries handles GET /endpoints/:id/deliveries
// Query parameters:
//   - limit (optional, default 25): Number of deliveries to return
//   - offset (optional, default 0): Number of deliveries to skip
//
// Results are ordered newest first.
func (h *DeliveriesHandler) GetDeliveries(c *fiber.Ctx) error {
	endpointID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid endpoint id",
		})
	}

	limit := 25
	if limitStr := c.Query("limit"); limitStr != "" {
		parsedLimit, err := strconv.Atoi(limitStr)
		if err != nil || parsedLimit <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "limit must be a positive integer",
			})
		}
		limit = parsedLimit
	}

	offset := 0
	if offsetStr := c.Query("offset"); offsetStr != "" {
		parsedOffset, err := strconv.Atoi(offsetStr)
		if err != nil || parsedOffset < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "offset must be a non-negative integer",
			})
		}
		offset = parsedOffset
	}

	// Fetch one extra row to determine has_more
	logs, err := h.Store.ListDeliveriesByEndpoint(c.Context(), endpointID, limit+1, offset)
	if err != nil {
		h.Logger.Error("Failed to query delivery logs",
			zap.String("endpoint_id", endpointID.String()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch deliveries",
		})
	}

	hasMore := len(logs) > limit
	if hasMore {
		logs = logs[:limit]
	}

	deliveries := make([]DeliveryDTO, 0, len(logs))
	for _, log := range logs {
		deliveries = append(deliveries, DeliveryDTO{
			ID:           log.ID,
			EventID:      log.EventID.String(),
			EventType:    log.EventType,
			StatusCode:   log.StatusCode,
			ResponseBody: log.ResponseBody,
			Success:      log.Success,
			DurationMs:   log.DurationMs,
			Timestamp:    log.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(DeliveriesResponse{
		Deliveries: deliveries,
		HasMore:    hasMore,
	})
}
