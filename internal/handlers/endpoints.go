package handlers

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joelthomasitday/flowboard-platform-sub000/internal/models"
	"github.com/joelthomasitday/flowboard-platform-sub000/internal/store"
)

// EndpointsHandler handles webhook endpoint registration and management
type EndpointsHandler struct {
	Store  store.Store
	Logger *zap.Logger
}

func NewEndpointsHandler(st store.Store, logger *zap.Logger) *EndpointsHandler {
	return &EndpointsHandler{
		Store:  st,
		Logger: logger,
	}
}

type createEndpointRequest struct {
	URL    string   `json:"url"`
	Events []string `json:"events"`
	Secret string   `json:"secret"`
}

type updateEndpointRequest struct {
	URL      *string   `json:"url"`
	Events   *[]string `json:"events"`
	IsActive *bool     `json:"is_active"`
	Secret   *string   `json:"secret"`
}

// CreateEndpoint handles POST /workspaces/:workspaceID/endpoints
func (h *EndpointsHandler) CreateEndpoint(c *fiber.Ctx) error {
	workspaceID := c.Params("workspaceID")
	if workspaceID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "workspace id is required",
		})
	}

	var req createEndpointRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := validateTargetURL(req.URL); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := validateEventSlugs(req.Events); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	endpoint := &models.WebhookEndpoint{
		WorkspaceID: workspaceID,
		URL:         req.URL,
		Events:      req.Events,
		IsActive:    true,
		Secret:      req.Secret,
	}

	if err := h.Store.CreateEndpoint(c.Context(), endpoint); err != nil {
		h.Logger.Error("Failed to create webhook endpoint",
			zap.String("workspace_id", workspaceID),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create endpoint",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(endpoint)
}

// ListEndpoints handles GET /workspaces/:workspaceID/endpoints
func (h *EndpointsHandler) ListEndpoints(c *fiber.Ctx) error {
	workspaceID := c.Params("workspaceID")
	if workspaceID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "workspace id is required",
		})
	}

	endpoints, err := h.Store.ListEndpoints(c.Context(), workspaceID)
	if err != nil {
		h.Logger.Error("Failed to list webhook endpoints",
			zap.String("workspace_id", workspaceID),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list endpoints",
		})
	}

	if endpoints == nil {
		endpoints = []models.WebhookEndpoint{}
	}
	return c.JSON(fiber.Map{"endpoints": endpoints})
}

// UpdateEndpoint handles PATCH /endpoints/:id (activation toggle, event-set
// or URL/secret edit)
func (h *EndpointsHandler) UpdateEndpoint(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid endpoint id",
		})
	}

	var req updateEndpointRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	endpoint, err := h.Store.GetEndpoint(c.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "endpoint not found",
			})
		}
		h.Logger.Error("Failed to load webhook endpoint",
			zap.String("endpoint_id", id.String()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load endpoint",
		})
	}

	if req.URL != nil {
		if err := validateTargetURL(*req.URL); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		endpoint.URL = *req.URL
	}
	if req.Events != nil {
		if err := validateEventSlugs(*req.Events); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		endpoint.Events = *req.Events
	}
	if req.IsActive != nil {
		endpoint.IsActive = *req.IsActive
	}
	if req.Secret != nil {
		endpoint.Secret = *req.Secret
	}

	if err := h.Store.UpdateEndpoint(c.Context(), endpoint); err != nil {
		h.Logger.Error("Failed to update webhook endpoint",
			zap.String("endpoint_id", id.String()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update endpoint",
		})
	}

	return c.JSON(endpoint)
}

// DeleteEndpoint handles DELETE /endpoints/:id
// Delivery logs are retained: they outlive the endpoint for audit purposes
func (h *EndpointsHandler) DeleteEndpoint(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid endpoint id",
		})
	}

	if err := h.Store.DeleteEndpoint(c.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "endpoint not found",
			})
		}
		h.Logger.Error("Failed to delete webhook endpoint",
			zap.String("endpoint_id", id.String()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete endpoint",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func validateTargetURL(raw string) error {
	if raw == "" {
		return errors.New("url is required")
	}
	parsed, err := url.ParseRequestURI(raw)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return errors.New("url must be a valid http or https URL")
	}
	return nil
}

func validateEventSlugs(events []string) error {
	if len(events) == 0 {
		return errors.New("events must contain at least one event type")
	}
	for _, slug := range events {
		if !models.ValidEventSlug(slug) {
			return errors.New("unknown event type: " + slug)
		}
	}
	return nil
}
