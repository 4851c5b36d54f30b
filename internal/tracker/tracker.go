package tracker

import (
	"context"

	"go.uber.org/zap"

	"github.com/joelthomasitday/flowboard-platform-sub000/internal/dispatcher"
	"github.com/joelthomasitday/flowboard-platform-sub000/internal/models"
	"github.com/joelthomasitday/flowboard-platform-sub000/internal/store"
)

// Tracker records domain events and triggers webhook fan-out. It is the
// fire-and-forget entry point business code calls after a state change:
// nothing it does can fail the caller.
type Tracker struct {
	store  store.Store
	queue  *dispatcher.Background
	logger *zap.Logger
}

// TrackOptions carries the tenant context of one event occurrence. Metadata
// is opaque pass-through data for webhook consumers.
type TrackOptions struct {
	WorkspaceID string
	UserID      *string
	Metadata    map[string]interface{}
}

func NewTracker(st store.Store, queue *dispatcher.Background, logger *zap.Logger) *Tracker {
	return &Tracker{
		store:  st,
		queue:  queue,
		logger: logger,
	}
}

// Track persists an analytics event and hands webhook dispatch to the
// background queue. Persistence and dispatch failures are logged, never
// returned: the caller's business logic must not fail due to analytics or
// webhook plumbing.
func (t *Tracker) Track(ctx context.Context, eventType models.EventType, opts TrackOptions) {
	if _, err := models.ParseEventType(string(eventType)); err != nil {
		t.logger.Error("Refusing to track unknown event type",
			zap.String("event_type", string(eventType)),
			zap.String("workspace_id", opts.WorkspaceID),
			zap.Error(err),
		)
		return
	}

	event := &models.AnalyticsEvent{
		EventType:   string(eventType),
		WorkspaceID: opts.WorkspaceID,
		UserID:      opts.UserID,
		Metadata:    opts.Metadata,
	}

	if err := t.store.InsertAnalyticsEvent(ctx, event); err != nil {
		t.logger.Error("Failed to persist analytics event",
			zap.String("event_type", string(eventType)),
			zap.String("workspace_id", opts.WorkspaceID),
			zap.Error(err),
		)
		// Still attempt dispatch: a lost analytics row should not also
		// lose the webhook notification
	}

	t.logger.Info("Tracked event",
		zap.String("event_type", string(eventType)),
		zap.String("workspace_id", opts.WorkspaceID),
	)

	t.queue.Enqueue(dispatcher.Job{
		WorkspaceID: opts.WorkspaceID,
		EventType:   eventType.Slug(),
		Data:        opts.Metadata,
	})
}
