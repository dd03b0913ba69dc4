package domain

import "time"

// Campaign lifecycle statuses. Only queued campaigns are eligible for
// prioritization.
const (
	CampaignQueued    = "queued"
	CampaignRunning   = "running"
	CampaignPaused    = "paused"
	CampaignCompleted = "completed"
)

// CampaignCandidate carries the three normalized priority inputs, each
// conceptually on a 0-100 scale.
type CampaignCandidate struct {
	ID      string  `json:"id"`
	Impact  float64 `json:"impact"`
	Urgency float64 `json:"urgency"`
	Fatigue float64 `json:"fatigue"`
	Status  string  `json:"status"`
}

// PrioritizedCampaign is a candidate plus its computed priority and
// dense rank among the eligible set.
type PrioritizedCampaign struct {
	CampaignCandidate
	Priority float64 `json:"priority"`
	Rank     int     `json:"rank"`
}

// SendTimeSuggestion is the output of the send-time heuristic. The pick
// is deliberately randomized among a segment's candidate hours/days.
type SendTimeSuggestion struct {
	Hour    int          `json:"hour"`
	Weekday time.Weekday `json:"weekday"`
	SendAt  time.Time    `json:"send_at"`
}

// CampaignSelection bundles the optimizer output for one tenant call.
type CampaignSelection struct {
	Campaign  *PrioritizedCampaign `json:"campaign"`
	VariantID string               `json:"variant_id,omitempty"`
	Variant   *BanditSelection     `json:"variant_selection,omitempty"`
	SendTime  *SendTimeSuggestion  `json:"send_time,omitempty"`
}
