package domain

// Risk tolerance tiers used by the profile sub-score and risk penalty.
const (
	ToleranceLow    = "low"
	ToleranceMedium = "medium"
	ToleranceHigh   = "high"
)

// ScoringWeights are the four non-negative coefficients combined by the
// scoring engine. There is no sum-to-one constraint; the final score is
// clamped to [0,1] after combination.
type ScoringWeights struct {
	EffectMatch   float64 `json:"effect_match"`
	ProfileMatch  float64 `json:"profile_match"`
	BusinessScore float64 `json:"business_score"`
	RiskPenalty   float64 `json:"risk_penalty"`
}

// UserContext is the requester profile a scoring call runs against.
type UserContext struct {
	UserID           string   `json:"user_id,omitempty"`
	Intent           string   `json:"intent,omitempty"`
	PreferredEffects []string `json:"preferred_effects,omitempty"`
	RiskTolerance    string   `json:"risk_tolerance,omitempty"`
	IsNewUser        bool     `json:"is_new_user,omitempty"`
}

// CandidateItem is an immutable catalog snapshot supplied per call.
type CandidateItem struct {
	ID             string   `json:"id"`
	Effects        []string `json:"effects,omitempty"`
	THCPercent     float64  `json:"thc_percent"`
	CBDPercent     float64  `json:"cbd_percent"`
	MarginPercent  float64  `json:"margin_percent"`
	InventoryDepth int      `json:"inventory_depth"`
	Promoted       bool     `json:"promoted"`
	FormFactor     string   `json:"form_factor,omitempty"`
}

// ScoreBreakdown exposes the four weighted sub-scores for explainability.
type ScoreBreakdown struct {
	EffectMatch   float64 `json:"effect_match"`
	ProfileMatch  float64 `json:"profile_match"`
	BusinessScore float64 `json:"business_score"`
	RiskPenalty   float64 `json:"risk_penalty"`
}

// RankedCandidate is one scored item. Rank is 1-based and dense; ties
// keep input order.
type RankedCandidate struct {
	ID        string         `json:"id"`
	Score     float64        `json:"score"`
	Rank      int            `json:"rank"`
	Breakdown ScoreBreakdown `json:"breakdown"`
}
