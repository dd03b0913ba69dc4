package domain

import "time"

// Selection strategies form a closed set; a state keeps the strategy it
// was created with. Switching strategy is a distinct admin operation.
const (
	StrategyThompson      = "thompson"
	StrategyUCB           = "ucb"
	StrategyEpsilonGreedy = "epsilon_greedy"
)

// BanditArm holds the Bernoulli counters for one selectable option.
// Pulls == Successes + Failures after every update.
type BanditArm struct {
	ID         string    `json:"id"`
	Successes  int       `json:"successes"`
	Failures   int       `json:"failures"`
	Pulls      int       `json:"pulls"`
	AddedAt    time.Time `json:"added_at"`
	LastPulled time.Time `json:"last_pulled"`
}

// SuccessRate is the empirical reward rate, guarded for unpulled arms.
func (a BanditArm) SuccessRate() float64 {
	if a.Pulls <= 0 {
		return 0
	}
	return float64(a.Successes) / float64(a.Pulls)
}

// BanditState is the full persisted state of one bandit. Arms keep
// insertion order; arm ids are unique within a state.
type BanditState struct {
	ID        string      `json:"id"`
	Arms      []BanditArm `json:"arms"`
	Strategy  string      `json:"strategy"`
	Epsilon   float64     `json:"epsilon"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Arm returns the arm with the given id, if present.
func (s *BanditState) Arm(armID string) (BanditArm, bool) {
	for _, a := range s.Arms {
		if a.ID == armID {
			return a, true
		}
	}
	return BanditArm{}, false
}

// BanditSelection reports one pick. It is ephemeral and never persisted.
// IsExploration is diagnostic only: it flags that the pick differs from
// the empirically-best arm, it never feeds back into the decision.
type BanditSelection struct {
	ArmID         string  `json:"arm_id"`
	Sample        float64 `json:"sample"`
	IsExploration bool    `json:"is_exploration"`
}

// BanditStats is an aggregate snapshot used for reporting.
type BanditStats struct {
	TotalPulls      int     `json:"total_pulls"`
	BestArmID       string  `json:"best_arm_id"`
	BestRate        float64 `json:"best_rate"`
	ExplorationRate float64 `json:"exploration_rate"`
}
