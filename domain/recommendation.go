package domain

// RecommendationResult is the serving payload: the ranked list plus the
// bandit's pick among the top candidates.
type RecommendationResult struct {
	TenantID string            `json:"tenant_id"`
	Items    []RankedCandidate `json:"items"`
	Featured BanditSelection   `json:"featured"`
	Strategy string            `json:"strategy"`
	Weights  ScoringWeights    `json:"weights"`
}
