package bandit

import (
	"sort"
	"time"

	"brandPulse/domain"
	"brandPulse/pkg/logger"
)

// maxArms caps a state's arm count so churning catalogs cannot grow a
// bandit without bound. Exceeding arms evict oldest-activity first.
const maxArms = 2000

// NewState builds a fresh bandit with zeroed arms in the given order.
// Duplicate arm ids are dropped, keeping the first occurrence.
func NewState(id string, armIDs []string, strategy string, epsilon float64) domain.BanditState {
	now := time.Now()

	seen := make(map[string]struct{}, len(armIDs))
	arms := make([]domain.BanditArm, 0, len(armIDs))
	for _, armID := range armIDs {
		if _, dup := seen[armID]; dup {
			continue
		}
		seen[armID] = struct{}{}
		arms = append(arms, domain.BanditArm{ID: armID, AddedAt: now})
	}
	if len(arms) > maxArms {
		arms = arms[:maxArms]
	}

	return domain.BanditState{
		ID:        id,
		Arms:      arms,
		Strategy:  strategy,
		Epsilon:   epsilon,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// UpdateArm returns a new state with the target arm's counters bumped.
// The input is never mutated; the caller persists the result. An
// unknown arm id is logged and the state comes back unchanged.
func UpdateArm(state domain.BanditState, armID string, reward bool) domain.BanditState {
	idx := -1
	for i, arm := range state.Arms {
		if arm.ID == armID {
			idx = i
			break
		}
	}
	if idx < 0 {
		logger.Warn("bandit_update_unknown_arm",
			"bandit_id", state.ID,
			"arm_id", armID,
		)
		return state
	}

	now := time.Now()

	out := state
	out.Arms = make([]domain.BanditArm, len(state.Arms))
	copy(out.Arms, state.Arms)

	arm := &out.Arms[idx]
	if reward {
		arm.Successes++
	} else {
		arm.Failures++
	}
	arm.Pulls = arm.Successes + arm.Failures
	arm.LastPulled = now

	out.UpdatedAt = now
	return out
}

// AddArm appends a zeroed arm, ignoring ids already present. The state
// is re-capped afterwards so churn evicts stale arms instead of growing.
func AddArm(state domain.BanditState, armID string) domain.BanditState {
	if _, exists := state.Arm(armID); exists {
		return state
	}

	now := time.Now()

	out := state
	out.Arms = make([]domain.BanditArm, len(state.Arms), len(state.Arms)+1)
	copy(out.Arms, state.Arms)
	out.Arms = append(out.Arms, domain.BanditArm{ID: armID, AddedAt: now})
	out.UpdatedAt = now
	return capArms(out)
}

// capArms evicts the oldest, least-pulled arms once a state outgrows
// maxArms. Kept arms preserve their relative order.
func capArms(state domain.BanditState) domain.BanditState {
	if len(state.Arms) <= maxArms {
		return state
	}

	byActivity := make([]domain.BanditArm, len(state.Arms))
	copy(byActivity, state.Arms)
	sort.SliceStable(byActivity, func(i, j int) bool {
		ai, aj := lastActive(byActivity[i]), lastActive(byActivity[j])
		if ai.Equal(aj) {
			return byActivity[i].Pulls < byActivity[j].Pulls
		}
		return ai.Before(aj)
	})

	drop := make(map[string]struct{}, len(state.Arms)-maxArms)
	for _, arm := range byActivity[:len(state.Arms)-maxArms] {
		drop[arm.ID] = struct{}{}
	}

	out := state
	out.Arms = make([]domain.BanditArm, 0, maxArms)
	for _, arm := range state.Arms {
		if _, dropped := drop[arm.ID]; dropped {
			continue
		}
		out.Arms = append(out.Arms, arm)
	}
	out.UpdatedAt = time.Now()
	return out
}

// lastActive is an arm's most recent sign of life: its last pull, or
// its insertion time while it has never been pulled.
func lastActive(arm domain.BanditArm) time.Time {
	if arm.LastPulled.After(arm.AddedAt) {
		return arm.LastPulled
	}
	return arm.AddedAt
}

// WithStrategy is the one sanctioned way to change a state's strategy.
// It is a distinct operation, not a mutation of the original.
func WithStrategy(state domain.BanditState, strategy string, epsilon float64) domain.BanditState {
	out := state
	out.Strategy = strategy
	out.Epsilon = epsilon
	out.UpdatedAt = time.Now()
	return out
}
