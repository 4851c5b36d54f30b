package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joelthomasitday/flowboard-platform-sub000/internal/models"
)

// Memory is an in-memory Store used by tests and local development
type Memory struct {
	mu         sync.RWMutex
	endpoints  map[uuid.UUID]models.WebhookEndpoint
	deliveries []models.WebhookDeliveryLog
	analytics  []models.AnalyticsEvent
	nextLogID  int64
}

func NewMemory() *Memory {
	return &Memory{
		endpoints: make(map[uuid.UUID]models.WebhookEndpoint),
		nextLogID: 1,
	}
}

func (m *Memory) CreateEndpoint(ctx context.Context, endpoint *models.WebhookEndpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if endpoint.ID == uuid.Nil {
		endpoint.ID = uuid.New()
	}
	now := time.Now().UTC()
	if endpoint.CreatedAt.IsZero() {
		endpoint.CreatedAt = now
	}
	endpoint.UpdatedAt = now
	m.endpoints[endpoint.ID] = *endpoint
	return nil
}

func (m *Memory) GetEndpoint(ctx context.Context, id uuid.UUID) (*models.WebhookEndpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	endpoint, ok := m.endpoints[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := endpoint
	return &out, nil
}

func (m *Memory) ListEndpoints(ctx context.Context, workspaceID string) ([]models.WebhookEndpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.WebhookEndpoint
	for _, endpoint := range m.endpoints {
		if endpoint.WorkspaceID == workspaceID {
			out = append(out, endpoint)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) UpdateEndpoint(ctx context.Context, endpoint *models.WebhookEndpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.endpoints[endpoint.ID]
	if !ok {
		return ErrNotFound
	}
	existing.URL = endpoint.URL
	existing.Events = append([]string(nil), endpoint.Events...)
	existing.IsActive = endpoint.IsActive
	existing.Secret = endpoint.Secret
	existing.UpdatedAt = time.Now().UTC()
	m.endpoints[endpoint.ID] = existing
	return nil
}

func (m *Memory) DeleteEndpoint(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.endpoints[id]; !ok {
		return ErrNotFound
	}
	delete(m.endpoints, id)
	return nil
}

func (m *Memory) ResolveEndpoints(ctx context.Context, workspaceID, eventType string) ([]models.WebhookEndpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.WebhookEndpoint
	for _, endpoint := range m.endpoints {
		if endpoint.WorkspaceID != workspaceID || !endpoint.IsActive {
			continue
		}
		e := endpoint
		if e.SubscribedTo(eventType) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *Memory) RecordDelivery(ctx context.Context, log *models.WebhookDeliveryLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	log.ID = m.nextLogID
	m.nextLogID++
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	m.deliveries = append(m.deliveries, *log)
	return nil
}

func (m *Memory) ListDeliveriesByEndpoint(ctx context.Context, endpointID uuid.UUID, limit, offset int) ([]models.WebhookDeliveryLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.WebhookDeliveryLog
	for _, log := range m.deliveries {
		if log.EndpointID == endpointID {
			out = append(out, log)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) InsertAnalyticsEvent(ctx context.Context, event *models.AnalyticsEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	event.ID = int64(len(m.analytics) + 1)
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	m.analytics = append(m.analytics, *event)
	return nil
}

// Deliveries returns a copy of every recorded delivery log
func (m *Memory) Deliveries() []models.WebhookDeliveryLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.WebhookDeliveryLog(nil), m.deliveries...)
}

// AnalyticsEvents returns a copy of every recorded analytics event
func (m *Memory) AnalyticsEvents() []models.AnalyticsEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.AnalyticsEvent(nil), m.analytics...)
}
