package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"brandPulse/domain"
)

// EventRepository is the append-only engine event log.
type EventRepository struct {
	DB *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{DB: db}
}

func (r *EventRepository) SaveEvent(ctx context.Context, event domain.EngineEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(&event).Error; err != nil {
		return fmt.Errorf("failed to save engine event: %w", err)
	}

	return nil
}

// RecentEvents lists a tenant's latest events, newest first.
func (r *EventRepository) RecentEvents(ctx context.Context, tenantID string, limit int) ([]domain.EngineEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if limit <= 0 {
		limit = 50
	}

	var events []domain.EngineEvent
	err := r.DB.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query engine events: %w", err)
	}

	return events, nil
}
