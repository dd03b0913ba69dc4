package priority

import (
	"math"
	"sort"

	"brandPulse/domain"
)

// ComputePriority combines impact and urgency multiplicatively and
// discounts by fatigue: (impact * urgency) / (1 + fatigue) on
// normalized inputs, rescaled back to a 0-100 reporting range.
//
// Monotone up in impact and urgency, monotone down in fatigue;
// fatigue=0 leaves the product untouched, fatigue=100 halves it.
func ComputePriority(impact, urgency, fatigue float64) float64 {
	i := normalize(impact)
	u := normalize(urgency)

	f := fatigue / 100
	if f < 0 {
		f = 0
	}

	p := (i * u) / (1 + f)
	return math.Round(p*100*100) / 100
}

func normalize(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 1
	}
	return v / 100
}

// Prioritize computes priorities for the eligible (queued) candidates,
// sorted descending with dense 1-based ranks.
func Prioritize(campaigns []domain.CampaignCandidate) []domain.PrioritizedCampaign {
	out := make([]domain.PrioritizedCampaign, 0, len(campaigns))
	for _, c := range campaigns {
		if c.Status != domain.CampaignQueued {
			continue
		}
		out = append(out, domain.PrioritizedCampaign{
			CampaignCandidate: c,
			Priority:          ComputePriority(c.Impact, c.Urgency, c.Fatigue),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	for i := range out {
		out[i].Rank = i + 1
	}

	return out
}

// SelectTop returns the highest-priority queued campaign. An empty
// eligible set is a normal outcome, reported through ok=false.
func SelectTop(campaigns []domain.CampaignCandidate) (domain.PrioritizedCampaign, bool) {
	ranked := Prioritize(campaigns)
	if len(ranked) == 0 {
		return domain.PrioritizedCampaign{}, false
	}
	return ranked[0], true
}
