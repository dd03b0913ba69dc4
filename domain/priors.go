package domain

import "time"

// GlobalPrior is one cross-tenant learned pattern: a mapping of
// sub-pattern to weight plus the evidence behind it.
type GlobalPrior struct {
	Pattern     string             `json:"pattern"`
	Weights     map[string]float64 `json:"weights"`
	SampleCount int                `json:"sample_count"`
	Confidence  float64            `json:"confidence"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// PatternStat is the aggregated bandit outcome for one generalized
// arm pattern across all tenants.
type PatternStat struct {
	Pattern   string  `json:"pattern"`
	Pulls     int     `json:"pulls"`
	Successes int     `json:"successes"`
	Rate      float64 `json:"rate"`
}
