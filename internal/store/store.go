package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/joelthomasitday/flowboard-platform-sub000/internal/models"
)

// Store is the persistence surface used by the tracker, dispatcher and API
// handlers. The dispatcher only appends delivery logs; endpoint rows are
// owned by the CRUD handlers.
type Store interface {
	CreateEndpoint(ctx context.Context, endpoint *models.WebhookEndpoint) error
	GetEndpoint(ctx context.Context, id uuid.UUID) (*models.WebhookEndpoint, error)
	ListEndpoints(ctx context.Context, workspaceID string) ([]models.WebhookEndpoint, error)
	UpdateEndpoint(ctx context.Context, endpoint *models.WebhookEndpoint) error
	DeleteEndpoint(ctx context.Context, id uuid.UUID) error

	// ResolveEndpoints returns the active endpoints of a workspace whose
	// events set contains the given event slug. The result is a snapshot:
	// later endpoint edits do not affect an in-flight dispatch.
	ResolveEndpoints(ctx context.Context, workspaceID, eventType string) ([]models.WebhookEndpoint, error)

	RecordDelivery(ctx context.Context, log *models.WebhookDeliveryLog) error
	ListDeliveriesByEndpoint(ctx context.Context, endpointID uuid.UUID, limit, offset int) ([]models.WebhookDeliveryLog, error)

	InsertAnalyticsEvent(ctx context.Context, event *models.AnalyticsEvent) error
}

// ErrNotFound is returned when a requested endpoint does not exist
var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "endpoint not found" }
