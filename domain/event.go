package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Engine event types written to the append-only event log.
const (
	EventRecommendationServed = "recommendation_served"
	EventFeedbackReceived     = "feedback_received"
	EventCampaignSend         = "campaign_send"
	EventCampaignEngagement   = "campaign_engagement"
)

// EngineEvent is the structured record emitted by the façades. Writes
// are best-effort: a failed write is logged, never returned.
type EngineEvent struct {
	ID        string            `gorm:"primaryKey" json:"id"`
	TenantID  string            `gorm:"column:tenant_id;not null;index" json:"tenant_id"`
	EventType string            `gorm:"column:event_type;not null" json:"event_type"`
	UserID    string            `gorm:"column:user_id" json:"user_id,omitempty"`
	Payload   datatypes.JSONMap `gorm:"column:payload;type:jsonb" json:"payload"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (EngineEvent) TableName() string {
	return "engine_events"
}
