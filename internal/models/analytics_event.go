package models

import (
	"time"
)

// AnalyticsEvent is the durable record of one tracked domain event
type AnalyticsEvent struct {
	ID          int64                  `gorm:"primary_key;autoIncrement" json:"id"`
	EventType   string                 `gorm:"not null;index" json:"event_type"`
	WorkspaceID string                 `gorm:"not null;index" json:"workspace_id"`
	UserID      *string                `json:"user_id"`
	Metadata    map[string]interface{} `gorm:"serializer:json" json:"metadata"`
	CreatedAt   time.Time              `gorm:"default:now()" json:"created_at"`
}

func (AnalyticsEvent) TableName() string {
	return "analytics_events"
}

// DomainEvent represents an incoming event published by a sibling service
type DomainEvent struct {
	EventType   string                 `json:"event_type"`
	WorkspaceID string                 `json:"workspace_id"`
	UserID      *string                `json:"user_id,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
}
