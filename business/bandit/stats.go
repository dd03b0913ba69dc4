package bandit

import "brandPulse/domain"

// underExploredShare marks an arm as still exploring when it has seen
// less than this share of the average pulls per arm.
const underExploredShare = 0.1

// Stats summarizes a state for reporting dashboards.
func Stats(state *domain.BanditState) domain.BanditStats {
	if state == nil || len(state.Arms) == 0 {
		return domain.BanditStats{}
	}

	totalPulls := 0
	for _, arm := range state.Arms {
		totalPulls += arm.Pulls
	}

	best := bestEmpiricalArm(state.Arms)

	explorationRate := 0.0
	if totalPulls > 0 {
		avgPulls := float64(totalPulls) / float64(len(state.Arms))
		under := 0
		for _, arm := range state.Arms {
			if float64(arm.Pulls) < underExploredShare*avgPulls {
				under++
			}
		}
		explorationRate = float64(under) / float64(len(state.Arms))
	}

	return domain.BanditStats{
		TotalPulls:      totalPulls,
		BestArmID:       best.ID,
		BestRate:        best.SuccessRate(),
		ExplorationRate: explorationRate,
	}
}
