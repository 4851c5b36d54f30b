package models

import (
	"time"

	"github.com/google/uuid"
)

// WebhookDeliveryLog records the outcome of one delivery attempt against one
// endpoint. Rows are append-only: the dispatcher never mutates or deletes
// them, and they outlive their endpoint for audit purposes.
type WebhookDeliveryLog struct {
	ID           int64                  `gorm:"primary_key;autoIncrement" json:"id"`
	EndpointID   uuid.UUID              `gorm:"type:uuid;not null;index" json:"endpoint_id"`
	Endpoint     WebhookEndpoint        `gorm:"foreignKey:EndpointID" json:"endpoint,omitempty"`
	EventID      uuid.UUID              `gorm:"type:uuid;not null" json:"event_id"`
	EventType    string                 `gorm:"not null" json:"event_type"`
	Payload      map[string]interface{} `gorm:"serializer:json" json:"payload"`
	StatusCode   int                    `gorm:"not null" json:"status_code"` // 0 when the request never completed
	ResponseBody string                 `gorm:"type:text" json:"response_body"`
	Success      bool                   `gorm:"not null" json:"success"`
	DurationMs   int                    `gorm:"not null" json:"duration_ms"`
	CreatedAt    time.Time              `gorm:"default:now()" json:"created_at"`
}

func (WebhookDeliveryLog) TableName() string {
	return "webhook_delivery_logs"
}
