package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WebhookEndpoint struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	WorkspaceID string         `gorm:"not null;index" json:"workspace_id"`
	URL         string         `gorm:"not null" json:"url"`
	Events      []string       `gorm:"serializer:json" json:"events"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	Secret      string         `json:"-"` // secret for HMAC, never rendered
	CreatedAt   time.Time      `gorm:"default:now()" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"default:now()" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (WebhookEndpoint) TableName() string {
	return "webhook_endpoints"
}

// SubscribedTo reports whether the endpoint's events set contains the slug
func (e *WebhookEndpoint) SubscribedTo(eventType string) bool {
	for _, ev := range e.Events {
		if ev == eventType {
			return true
		}
	}
	return false
}
