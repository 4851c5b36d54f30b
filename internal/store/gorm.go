package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/joelthomasitday/flowboard-platform-sub000/internal/models"
)

// Gorm is the PostgreSQL-backed Store implementation
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (s *Gorm) CreateEndpoint(ctx context.Context, endpoint *models.WebhookEndpoint) error {
	if endpoint.ID == uuid.Nil {
		endpoint.ID = uuid.New()
	}
	return s.db.WithContext(ctx).Create(endpoint).Error
}

func (s *Gorm) GetEndpoint(ctx context.Context, id uuid.UUID) (*models.WebhookEndpoint, error) {
	var endpoint models.WebhookEndpoint
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&endpoint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &endpoint, nil
}

func (s *Gorm) ListEndpoints(ctx context.Context, workspaceID string) ([]models.WebhookEndpoint, error) {
	var endpoints []models.WebhookEndpoint
	err := s.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("created_at ASC").
		Find(&endpoints).Error
	if err != nil {
		return nil, err
	}
	return endpoints, nil
}

func (s *Gorm) UpdateEndpoint(ctx context.Context, endpoint *models.WebhookEndpoint) error {
	result := s.db.WithContext(ctx).
		Model(&models.WebhookEndpoint{}).
		Where("id = ?", endpoint.ID).
		Updates(map[string]interface{}{
			"url":       endpoint.URL,
			"events":    mustJSON(endpoint.Events),
			"is_active": endpoint.IsActive,
			"secret":    endpoint.Secret,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Gorm) DeleteEndpoint(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.WebhookEndpoint{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ResolveEndpoints filters on the jsonb events column with a containment
// query so membership is checked in the database, not in application code
func (s *Gorm) ResolveEndpoints(ctx context.Context, workspaceID, eventType string) ([]models.WebhookEndpoint, error) {
	member, err := json.Marshal([]string{eventType})
	if err != nil {
		return nil, err
	}

	var endpoints []models.WebhookEndpoint
	err = s.db.WithContext(ctx).
		Where("workspace_id = ? AND is_active = ? AND events @> ?", workspaceID, true, string(member)).
		Find(&endpoints).Error
	if err != nil {
		return nil, err
	}
	return endpoints, nil
}

func (s *Gorm) RecordDelivery(ctx context.Context, log *models.WebhookDeliveryLog) error {
	return s.db.WithContext(ctx).Create(log).Error
}

func (s *Gorm) ListDeliveriesByEndpoint(ctx context.Context, endpointID uuid.UUID, limit, offset int) ([]models.WebhookDeliveryLog, error) {
	var logs []models.WebhookDeliveryLog
	err := s.db.WithContext(ctx).
		Where("endpoint_id = ?", endpointID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (s *Gorm) InsertAnalyticsEvent(ctx context.Context, event *models.AnalyticsEvent) error {
	return s.db.WithContext(ctx).Create(event).Error
}

func mustJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}
