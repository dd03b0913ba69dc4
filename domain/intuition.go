package domain

import "time"

// Maturity stages, strictly forward-only. A tenant's stage reflects how
// much local learning data it has accumulated.
const (
	StageColdStart = "cold_start"
	StageWarming   = "warming"
	StageLearned   = "learned"
	StageMature    = "mature"
)

// Insight is one cached high-confidence pattern surfaced to callers.
type Insight struct {
	Pattern     string  `json:"pattern"`
	SuccessRate float64 `json:"success_rate"`
	Pulls       int     `json:"pulls"`
}

// BrandIntuition is the per-tenant learning state. Created lazily on
// first access and retained for the process lifetime.
type BrandIntuition struct {
	TenantID         string         `json:"tenant_id"`
	LocalWeights     ScoringWeights `json:"local_weights"`
	GlobalInfluence  float64        `json:"global_influence"`
	Stage            string         `json:"stage"`
	InteractionCount int64          `json:"interaction_count"`
	TopInsights      []Insight      `json:"top_insights,omitempty"`
	// InsightsRefreshedAt is when TopInsights was last rebuilt from the
	// global priors; UpdatedAt moves on every interaction and cannot
	// drive the cache.
	InsightsRefreshedAt time.Time `json:"insights_refreshed_at,omitempty"`
	UpdatedAt           time.Time `json:"updated_at"`
}
