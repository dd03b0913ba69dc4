package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"brandPulse/business/recommender"
	"brandPulse/domain"
)

// EngineConfigRepository persists per-tenant engine overrides.
type EngineConfigRepository struct {
	DB *gorm.DB
}

var _ recommender.ConfigRepository = (*EngineConfigRepository)(nil)

func NewEngineConfigRepository(db *gorm.DB) *EngineConfigRepository {
	return &EngineConfigRepository{DB: db}
}

func (r *EngineConfigRepository) Get(ctx context.Context, tenantID string) (*domain.EngineConfig, error) {
	var cfg domain.EngineConfig

	err := r.DB.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&cfg).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query engine config: %w", err)
	}

	if len(cfg.WeightsRaw) > 0 {
		_ = json.Unmarshal(cfg.WeightsRaw, &cfg.Weights)
	}
	return &cfg, nil
}

func (r *EngineConfigRepository) Upsert(ctx context.Context, cfg domain.EngineConfig) error {
	// serialize the weights struct when the raw column is not set
	if len(cfg.WeightsRaw) == 0 && cfg.Weights != (domain.ScoringWeights{}) {
		raw, _ := json.Marshal(cfg.Weights)
		cfg.WeightsRaw = raw
	}

	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"strategy",
				"epsilon",
				"low_stock_threshold",
				"high_stock_threshold",
				"low_stock_penalty",
				"high_stock_bonus",
				"promoted_bonus",
				"new_user_dose_ceiling",
				"anomaly_threshold",
				"ewma_alpha",
				"min_anomaly_history",
				"min_experiment_samples",
				"weights",
			}),
		}).
		Create(&cfg).Error
	if err != nil {
		return fmt.Errorf("failed to upsert engine config: %w", err)
	}

	return nil
}
