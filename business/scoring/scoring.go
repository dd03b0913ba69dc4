package scoring

import (
	"math"
	"sort"
	"strings"

	"brandPulse/domain"
)

// Config carries the tenant-tunable business knobs. Everything has a
// sane default so a zero-config tenant still gets sensible scores.
type Config struct {
	LowStockThreshold  int
	HighStockThreshold int
	LowStockPenalty    float64
	HighStockBonus     float64
	PromotedBonus      float64
	NewUserDoseCeiling float64
}

const (
	defaultLowStockThreshold  = 5
	defaultHighStockThreshold = 50
	defaultLowStockPenalty    = 0.15
	defaultHighStockBonus     = 0.1
	defaultPromotedBonus      = 0.15
	defaultNewUserDoseCeiling = 20.0

	// neutral sub-score when the requester expresses no preference
	neutralEffectScore = 0.5

	// profile score below the tolerance band
	belowBandScore = 0.7
	// full credit is lost over this many potency points above the band
	excessDecayRange = 20.0
	// cap on the secondary (CBD) balancing bonus
	balanceBonusCap = 0.2

	businessBaseline = 0.5
	marginBonusCap   = 0.25

	// additive risk penalties
	penaltyOverCeiling  = 0.4
	penaltyNewUserDose  = 0.3
	penaltyNewUserForm  = 0.2
	penaltyFormTooRisky = 0.3
)

func DefaultConfig() Config {
	return Config{
		LowStockThreshold:  defaultLowStockThreshold,
		HighStockThreshold: defaultHighStockThreshold,
		LowStockPenalty:    defaultLowStockPenalty,
		HighStockBonus:     defaultHighStockBonus,
		PromotedBonus:      defaultPromotedBonus,
		NewUserDoseCeiling: defaultNewUserDoseCeiling,
	}
}

// DefaultWeights is the uniform starting point blended against the
// cross-tenant prior until a tenant has learned its own.
func DefaultWeights() domain.ScoringWeights {
	return domain.ScoringWeights{
		EffectMatch:   0.3,
		ProfileMatch:  0.25,
		BusinessScore: 0.25,
		RiskPenalty:   0.2,
	}
}

// Engine computes deterministic multi-factor scores. It holds no
// per-call state; the same inputs always produce the same output.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	if cfg.LowStockThreshold <= 0 {
		cfg.LowStockThreshold = defaultLowStockThreshold
	}
	if cfg.HighStockThreshold <= 0 {
		cfg.HighStockThreshold = defaultHighStockThreshold
	}
	if cfg.LowStockPenalty <= 0 {
		cfg.LowStockPenalty = defaultLowStockPenalty
	}
	if cfg.HighStockBonus <= 0 {
		cfg.HighStockBonus = defaultHighStockBonus
	}
	if cfg.PromotedBonus <= 0 {
		cfg.PromotedBonus = defaultPromotedBonus
	}
	if cfg.NewUserDoseCeiling <= 0 {
		cfg.NewUserDoseCeiling = defaultNewUserDoseCeiling
	}
	return &Engine{cfg: cfg}
}

// ComputeScore combines the four sub-scores under the given weights.
// Each sub-score is clamped to [0,1] before weighting and the final
// score is clamped again after the risk penalty is subtracted.
func (e *Engine) ComputeScore(
	user domain.UserContext,
	item domain.CandidateItem,
	weights domain.ScoringWeights,
) (float64, domain.ScoreBreakdown) {

	effect := clamp01(e.effectMatch(user, item))
	profile := clamp01(e.profileMatch(user, item))
	business := clamp01(e.businessScore(item))
	risk := clamp01(e.riskPenalty(user, item))

	breakdown := domain.ScoreBreakdown{
		EffectMatch:   weights.EffectMatch * effect,
		ProfileMatch:  weights.ProfileMatch * profile,
		BusinessScore: weights.BusinessScore * business,
		RiskPenalty:   weights.RiskPenalty * risk,
	}

	score := breakdown.EffectMatch +
		breakdown.ProfileMatch +
		breakdown.BusinessScore -
		breakdown.RiskPenalty

	return clamp01(score), breakdown
}

// RankCandidates scores every item, sorts descending (stable, so ties
// keep input order) and returns the top K with dense 1-based ranks.
func (e *Engine) RankCandidates(
	user domain.UserContext,
	items []domain.CandidateItem,
	weights domain.ScoringWeights,
	topK int,
) []domain.RankedCandidate {

	ranked := make([]domain.RankedCandidate, 0, len(items))
	for _, item := range items {
		score, breakdown := e.ComputeScore(user, item, weights)
		ranked = append(ranked, domain.RankedCandidate{
			ID:        item.ID,
			Score:     score,
			Breakdown: breakdown,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if topK > 0 && len(ranked) > topK {
		ranked = ranked[:topK]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	return ranked
}

// effectMatch is the keyword-overlap ratio between the requester's
// expanded intent plus preferred effects and the item's tags.
func (e *Engine) effectMatch(user domain.UserContext, item domain.CandidateItem) float64 {
	wanted := make(map[string]struct{})
	for _, kw := range expandIntent(user.Intent) {
		wanted[kw] = struct{}{}
	}
	for _, eff := range user.PreferredEffects {
		if eff = strings.ToLower(strings.TrimSpace(eff)); eff != "" {
			wanted[eff] = struct{}{}
		}
	}

	if len(wanted) == 0 {
		return neutralEffectScore
	}

	matched := 0
	for _, eff := range item.Effects {
		if _, ok := wanted[strings.ToLower(strings.TrimSpace(eff))]; ok {
			matched++
		}
	}

	return float64(matched) / float64(len(wanted))
}

// profileMatch scores THC potency against the tolerance band: full
// credit inside, a flat discount below, linear decay above. A bounded
// CBD bonus rewards balanced profiles.
func (e *Engine) profileMatch(user domain.UserContext, item domain.CandidateItem) float64 {
	band := bandFor(user.RiskTolerance)

	var score float64
	switch {
	case item.THCPercent < band.min:
		score = belowBandScore
	case item.THCPercent <= band.max:
		score = 1.0
	default:
		excess := item.THCPercent - band.max
		score = 1.0 - excess/excessDecayRange
		if score < 0 {
			score = 0
		}
	}

	bonus := item.CBDPercent * 0.02
	if bonus > balanceBonusCap {
		bonus = balanceBonusCap
	}

	return score + bonus
}

// businessScore starts at a 0.5 baseline and layers margin, inventory
// pressure and promotion on top.
func (e *Engine) businessScore(item domain.CandidateItem) float64 {
	score := businessBaseline

	margin := item.MarginPercent / 100
	if margin > 1 {
		margin = 1
	}
	if margin > 0 {
		score += marginBonusCap * margin
	}

	if item.InventoryDepth < e.cfg.LowStockThreshold {
		score -= e.cfg.LowStockPenalty
	} else if item.InventoryDepth > e.cfg.HighStockThreshold {
		score += e.cfg.HighStockBonus
	}

	if item.Promoted {
		score += e.cfg.PromotedBonus
	}

	return score
}

// riskPenalty accumulates additive penalties, capped at 1.
func (e *Engine) riskPenalty(user domain.UserContext, item domain.CandidateItem) float64 {
	penalty := 0.0

	band := bandFor(user.RiskTolerance)
	if item.THCPercent > band.max {
		penalty += penaltyOverCeiling
	}

	if user.IsNewUser {
		if item.THCPercent > e.cfg.NewUserDoseCeiling {
			penalty += penaltyNewUserDose
		}
		if formRisk(item.FormFactor) >= 2 {
			penalty += penaltyNewUserForm
		}
	}

	if formRisk(item.FormFactor) > riskCapacity(user.RiskTolerance) {
		penalty += penaltyFormTooRisky
	}

	return math.Min(penalty, 1.0)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
