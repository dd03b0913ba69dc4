package intuition

import (
	"context"
	"fmt"
	"math"
	"time"

	"brandPulse/business/priors"
	"brandPulse/domain"
)

// StateRepository persists per-tenant intuition. Update must apply the
// whole read-modify-write atomically: the closure receives the current
// state (nil on first access) and returns the full replacement.
type StateRepository interface {
	Get(ctx context.Context, tenantID string) (*domain.BrandIntuition, error)
	Update(ctx context.Context, tenantID string, fn func(current *domain.BrandIntuition) (domain.BrandIntuition, error)) (domain.BrandIntuition, error)
}

// Config holds the maturity thresholds. Zero values use the defaults.
type Config struct {
	WarmingThreshold int64
	LearnedThreshold int64
	MatureThreshold  int64
}

const (
	defaultWarmingThreshold = 50
	defaultLearnedThreshold = 500
	defaultMatureThreshold  = 5000

	maxLearningRate = 0.3

	insightLimit = 5
	insightTTL   = 10 * time.Minute
)

// blendRatios is the global-influence share per stage: the greener the
// tenant, the more the cross-tenant prior dominates.
var blendRatios = map[string]float64{
	domain.StageColdStart: 0.9,
	domain.StageWarming:   0.6,
	domain.StageLearned:   0.3,
	domain.StageMature:    0.1,
}

// stageRank orders stages so transitions can only move forward.
var stageRank = map[string]int{
	domain.StageColdStart: 0,
	domain.StageWarming:   1,
	domain.StageLearned:   2,
	domain.StageMature:    3,
}

// Engine owns the per-tenant maturity state machine and the blending
// of local weights against the global priors.
type Engine struct {
	repo           StateRepository
	priors         *priors.Store
	cfg            Config
	defaultWeights domain.ScoringWeights
}

func NewEngine(repo StateRepository, store *priors.Store, cfg Config, defaultWeights domain.ScoringWeights) *Engine {
	if cfg.WarmingThreshold <= 0 {
		cfg.WarmingThreshold = defaultWarmingThreshold
	}
	if cfg.LearnedThreshold <= cfg.WarmingThreshold {
		cfg.LearnedThreshold = defaultLearnedThreshold
	}
	if cfg.MatureThreshold <= cfg.LearnedThreshold {
		cfg.MatureThreshold = defaultMatureThreshold
	}
	return &Engine{
		repo:           repo,
		priors:         store,
		cfg:            cfg,
		defaultWeights: defaultWeights,
	}
}

func (e *Engine) newIntuition(tenantID string) domain.BrandIntuition {
	return domain.BrandIntuition{
		TenantID:        tenantID,
		LocalWeights:    e.defaultWeights,
		GlobalInfluence: blendRatios[domain.StageColdStart],
		Stage:           domain.StageColdStart,
		UpdatedAt:       time.Now(),
	}
}

// Get returns the tenant's intuition, creating it lazily on first
// access. Entries are never deleted during the process lifetime.
func (e *Engine) Get(ctx context.Context, tenantID string) (domain.BrandIntuition, error) {
	existing, err := e.repo.Get(ctx, tenantID)
	if err != nil {
		return domain.BrandIntuition{}, fmt.Errorf("load intuition: %w", err)
	}
	if existing != nil {
		return *existing, nil
	}

	return e.repo.Update(ctx, tenantID, func(current *domain.BrandIntuition) (domain.BrandIntuition, error) {
		if current != nil {
			return *current, nil
		}
		return e.newIntuition(tenantID), nil
	})
}

// stageForCount maps the cumulative counter onto a stage.
func (e *Engine) stageForCount(count int64) string {
	switch {
	case count >= e.cfg.MatureThreshold:
		return domain.StageMature
	case count >= e.cfg.LearnedThreshold:
		return domain.StageLearned
	case count >= e.cfg.WarmingThreshold:
		return domain.StageWarming
	default:
		return domain.StageColdStart
	}
}

// RecordInteraction bumps the counter and, when a threshold is
// crossed, advances stage and blend ratio together in one atomic state
// replacement. Stages only ever move forward.
func (e *Engine) RecordInteraction(ctx context.Context, tenantID string) (domain.BrandIntuition, error) {
	return e.repo.Update(ctx, tenantID, func(current *domain.BrandIntuition) (domain.BrandIntuition, error) {
		state := e.newIntuition(tenantID)
		if current != nil {
			state = *current
		}

		state.InteractionCount++

		candidate := e.stageForCount(state.InteractionCount)
		if stageRank[candidate] > stageRank[state.Stage] {
			state.Stage = candidate
			state.GlobalInfluence = blendRatios[candidate]
		}

		state.UpdatedAt = time.Now()
		return state, nil
	})
}

// GetBlendedWeights mixes the global prior weights with the tenant's
// local weights by the tenant's current global-influence ratio.
func (e *Engine) GetBlendedWeights(ctx context.Context, tenantID string) (domain.ScoringWeights, error) {
	state, err := e.Get(ctx, tenantID)
	if err != nil {
		return domain.ScoringWeights{}, err
	}

	global, _ := e.priors.GlobalWeights()
	return blendWeights(global, state.LocalWeights, state.GlobalInfluence), nil
}

func blendWeights(global, local domain.ScoringWeights, blend float64) domain.ScoringWeights {
	mix := func(g, l float64) float64 {
		return blend*g + (1-blend)*l
	}
	return domain.ScoringWeights{
		EffectMatch:   mix(global.EffectMatch, local.EffectMatch),
		ProfileMatch:  mix(global.ProfileMatch, local.ProfileMatch),
		BusinessScore: mix(global.BusinessScore, local.BusinessScore),
		RiskPenalty:   mix(global.RiskPenalty, local.RiskPenalty),
	}
}

// UpdateLocalWeights folds an observed weight sample into the tenant's
// local weights with an EMA whose learning rate scales with the sample
// size, then forwards the raw contribution to the global store.
func (e *Engine) UpdateLocalWeights(ctx context.Context, tenantID string, observed domain.ScoringWeights, sampleSize int) (domain.BrandIntuition, error) {
	if sampleSize <= 0 {
		return e.Get(ctx, tenantID)
	}

	lr := math.Min(maxLearningRate, float64(sampleSize)/1000)

	state, err := e.repo.Update(ctx, tenantID, func(current *domain.BrandIntuition) (domain.BrandIntuition, error) {
		state := e.newIntuition(tenantID)
		if current != nil {
			state = *current
		}

		state.LocalWeights = domain.ScoringWeights{
			EffectMatch:   lr*observed.EffectMatch + (1-lr)*state.LocalWeights.EffectMatch,
			ProfileMatch:  lr*observed.ProfileMatch + (1-lr)*state.LocalWeights.ProfileMatch,
			BusinessScore: lr*observed.BusinessScore + (1-lr)*state.LocalWeights.BusinessScore,
			RiskPenalty:   lr*observed.RiskPenalty + (1-lr)*state.LocalWeights.RiskPenalty,
		}
		state.UpdatedAt = time.Now()
		return state, nil
	})
	if err != nil {
		return domain.BrandIntuition{}, err
	}

	e.priors.ContributeWeights(observed, sampleSize)
	return state, nil
}

// GetEffectBoosts returns the global prior for an intent. Outside
// cold start the boosts are attenuated: the lower the tenant's global
// influence, the less the shared prior should sway its scoring.
func (e *Engine) GetEffectBoosts(ctx context.Context, tenantID, intent string) (map[string]float64, error) {
	state, err := e.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	prior := e.priors.GetEffectPrior(intent)
	if state.Stage == domain.StageColdStart {
		return prior.Weights, nil
	}

	multiplier := 0.5 + state.GlobalInfluence/2
	boosts := make(map[string]float64, len(prior.Weights))
	for k, v := range prior.Weights {
		boosts[k] = v * multiplier
	}
	return boosts, nil
}

// TopInsights serves the cached high-confidence patterns, refreshing
// the cache from the priors store when it is empty or stale.
func (e *Engine) TopInsights(ctx context.Context, tenantID string) ([]domain.Insight, error) {
	state, err := e.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if len(state.TopInsights) > 0 && time.Since(state.InsightsRefreshedAt) < insightTTL {
		return state.TopInsights, nil
	}

	patterns := e.priors.GetTopPatterns(insightLimit)
	insights := make([]domain.Insight, 0, len(patterns))
	for _, p := range patterns {
		insights = append(insights, domain.Insight{
			Pattern:     p.Pattern,
			SuccessRate: p.Rate,
			Pulls:       p.Pulls,
		})
	}

	updated, err := e.repo.Update(ctx, tenantID, func(current *domain.BrandIntuition) (domain.BrandIntuition, error) {
		state := e.newIntuition(tenantID)
		if current != nil {
			state = *current
		}
		now := time.Now()
		state.TopInsights = insights
		state.InsightsRefreshedAt = now
		state.UpdatedAt = now
		return state, nil
	})
	if err != nil {
		return nil, err
	}

	return updated.TopInsights, nil
}
