package domain

// EngineConfig is the per-tenant configuration surface. Every field has
// a default; tenants only override what they need.
type EngineConfig struct {
	TenantID string `json:"tenant_id" gorm:"column:tenant_id;primaryKey"`

	Strategy string  `json:"strategy" gorm:"column:strategy"`
	Epsilon  float64 `json:"epsilon" gorm:"column:epsilon"`

	LowStockThreshold  int     `json:"low_stock_threshold" gorm:"column:low_stock_threshold"`
	HighStockThreshold int     `json:"high_stock_threshold" gorm:"column:high_stock_threshold"`
	LowStockPenalty    float64 `json:"low_stock_penalty" gorm:"column:low_stock_penalty"`
	HighStockBonus     float64 `json:"high_stock_bonus" gorm:"column:high_stock_bonus"`
	PromotedBonus      float64 `json:"promoted_bonus" gorm:"column:promoted_bonus"`

	NewUserDoseCeiling float64 `json:"new_user_dose_ceiling" gorm:"column:new_user_dose_ceiling"`

	AnomalyThreshold     float64 `json:"anomaly_threshold" gorm:"column:anomaly_threshold"`
	EWMAAlpha            float64 `json:"ewma_alpha" gorm:"column:ewma_alpha"`
	MinAnomalyHistory    int     `json:"min_anomaly_history" gorm:"column:min_anomaly_history"`
	MinExperimentSamples int     `json:"min_experiment_samples" gorm:"column:min_experiment_samples"`

	WeightsRaw []byte         `json:"-" gorm:"column:weights"`
	Weights    ScoringWeights `json:"weights" gorm:"-"`
}

func (EngineConfig) TableName() string {
	return "engine_configs"
}
