package bandit

import (
	"fmt"
	"math"

	"brandPulse/domain"
)

// ucbUnpulledBonus stands in for the infinite exploration bonus UCB1
// assigns to an arm that has never been pulled. MaxFloat64 keeps the
// selection JSON-encodable while still dominating every finite score.
const ucbUnpulledBonus = math.MaxFloat64

const defaultEpsilon = 0.1

// Core runs arm selection. Selection never mutates the passed state.
type Core struct {
	sampler Sampler
}

func New(sampler Sampler) *Core {
	if sampler == nil {
		sampler = DefaultSampler()
	}
	return &Core{sampler: sampler}
}

// SelectArm dispatches on the state's strategy tag. The strategy set is
// closed; an unknown tag is a caller bug and reported as an error.
func (c *Core) SelectArm(state *domain.BanditState) (domain.BanditSelection, error) {
	if state == nil || len(state.Arms) == 0 {
		return domain.BanditSelection{}, fmt.Errorf("bandit %q has no arms", stateID(state))
	}

	var sel domain.BanditSelection

	switch state.Strategy {
	case domain.StrategyThompson:
		sel = c.selectThompson(state)
	case domain.StrategyUCB:
		sel = c.selectUCB(state)
	case domain.StrategyEpsilonGreedy:
		sel = c.selectEpsilonGreedy(state)
	default:
		return domain.BanditSelection{}, fmt.Errorf("unknown strategy %q for bandit %q", state.Strategy, state.ID)
	}

	sel.IsExploration = sel.ArmID != bestEmpiricalArm(state.Arms).ID
	return sel, nil
}

func stateID(state *domain.BanditState) string {
	if state == nil {
		return ""
	}
	return state.ID
}

// selectThompson draws one Beta(successes+1, failures+1) sample per arm
// and picks the largest. The uniform prior keeps fresh arms competitive.
func (c *Core) selectThompson(state *domain.BanditState) domain.BanditSelection {
	bestIdx := -1
	bestSample := math.Inf(-1)

	for i, arm := range state.Arms {
		sample := sampleBeta(c.sampler, float64(arm.Successes)+1, float64(arm.Failures)+1)
		if math.IsNaN(sample) || math.IsInf(sample, 0) {
			continue
		}
		if sample > bestSample {
			bestSample = sample
			bestIdx = i
		}
	}

	// Every sample non-finite should not happen; fall back to a
	// uniform pick rather than failing the serving path.
	if bestIdx < 0 {
		bestIdx = c.sampler.Intn(len(state.Arms))
		bestSample = 0
	}

	return domain.BanditSelection{
		ArmID:  state.Arms[bestIdx].ID,
		Sample: bestSample,
	}
}

// selectUCB implements UCB1. An arm with zero pulls is taken
// immediately, so every arm is tried once before exploitation begins.
func (c *Core) selectUCB(state *domain.BanditState) domain.BanditSelection {
	totalPulls := 0
	for _, arm := range state.Arms {
		totalPulls += arm.Pulls
	}

	bestIdx := -1
	bestScore := math.Inf(-1)

	for i, arm := range state.Arms {
		if arm.Pulls == 0 {
			return domain.BanditSelection{
				ArmID:  arm.ID,
				Sample: ucbUnpulledBonus,
			}
		}

		mean := arm.SuccessRate()
		bonus := math.Sqrt(2 * math.Log(float64(totalPulls)) / float64(arm.Pulls))
		if score := mean + bonus; score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}

	return domain.BanditSelection{
		ArmID:  state.Arms[bestIdx].ID,
		Sample: bestScore,
	}
}

// selectEpsilonGreedy explores uniformly with probability epsilon and
// otherwise exploits the best empirical rate.
func (c *Core) selectEpsilonGreedy(state *domain.BanditState) domain.BanditSelection {
	epsilon := state.Epsilon
	if epsilon < 0 {
		epsilon = defaultEpsilon
	}

	if c.sampler.Float64() < epsilon {
		arm := state.Arms[c.sampler.Intn(len(state.Arms))]
		return domain.BanditSelection{
			ArmID:  arm.ID,
			Sample: arm.SuccessRate(),
		}
	}

	best := state.Arms[0]
	bestRate := greedyRate(best)
	for _, arm := range state.Arms[1:] {
		if r := greedyRate(arm); r > bestRate {
			bestRate = r
			best = arm
		}
	}

	return domain.BanditSelection{
		ArmID:  best.ID,
		Sample: bestRate,
	}
}

// greedyRate divides by max(1, pulls) so unpulled arms rank at zero
// instead of blowing up.
func greedyRate(arm domain.BanditArm) float64 {
	pulls := arm.Pulls
	if pulls < 1 {
		pulls = 1
	}
	return float64(arm.Successes) / float64(pulls)
}

func bestEmpiricalArm(arms []domain.BanditArm) domain.BanditArm {
	best := arms[0]
	bestRate := best.SuccessRate()
	for _, arm := range arms[1:] {
		if r := arm.SuccessRate(); r > bestRate {
			bestRate = r
			best = arm
		}
	}
	return best
}
