package domain

// Deviation directions reported by the anomaly engine.
const (
	DirectionUp     = "up"
	DirectionDown   = "down"
	DirectionStable = "stable"
)

// AnomalyResult is computed fresh per call and never persisted here.
type AnomalyResult struct {
	IsAnomaly    bool    `json:"is_anomaly"`
	DeviationPct float64 `json:"deviation_pct"`
	Direction    string  `json:"direction"`
	Baseline     float64 `json:"baseline"`
	Observed     float64 `json:"observed"`
	Threshold    float64 `json:"threshold"`
}

// ExperimentLift is the two-sample significance verdict for an A/B arm
// pair. NeedsMoreData means the minimum per-arm sample size was not met;
// that is a normal outcome, not an error.
type ExperimentLift struct {
	NeedsMoreData bool    `json:"needs_more_data"`
	Significant   bool    `json:"significant"`
	ControlRate   float64 `json:"control_rate"`
	VariantRate   float64 `json:"variant_rate"`
	LiftPct       float64 `json:"lift_pct"`
	ZScore        float64 `json:"z_score"`
	PValue        float64 `json:"p_value"`
}
