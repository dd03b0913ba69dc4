package recommender

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"gorm.io/datatypes"

	"brandPulse/business/bandit"
	"brandPulse/business/intuition"
	"brandPulse/business/priors"
	"brandPulse/business/scoring"
	"brandPulse/domain"
	"brandPulse/pkg/config"
	"brandPulse/pkg/logger"
	"brandPulse/pkg/metrics"
)

// BanditStateRepository persists bandit states. Update applies the
// whole read-modify-write atomically; fn receives nil for a missing key.
type BanditStateRepository interface {
	Get(ctx context.Context, key string) (*domain.BanditState, error)
	Update(ctx context.Context, key string, fn func(current *domain.BanditState) (domain.BanditState, error)) (domain.BanditState, error)
}

// EventRepository appends to the engine event log.
type EventRepository interface {
	SaveEvent(ctx context.Context, event domain.EngineEvent) error
}

// ConfigRepository persists per-tenant overrides of the engine knobs.
type ConfigRepository interface {
	Get(ctx context.Context, tenantID string) (*domain.EngineConfig, error)
	Upsert(ctx context.Context, cfg domain.EngineConfig) error
}

const (
	configCacheTTL   = 5 * time.Minute
	eventWriteBudget = 5 * time.Second
	defaultTopK      = 10
)

// rewardForAction maps feedback actions onto the Bernoulli reward. The
// action set is closed.
var rewardForAction = map[string]bool{
	"click":       true,
	"add_to_cart": true,
	"purchase":    true,
	"thumbs_up":   true,
	"thumbs_down": false,
	"dismiss":     false,
}

// Service is the recommendation façade: blended weights in, ranked
// candidates plus a bandit pick out, feedback folded back into every
// learning layer.
type Service struct {
	states    BanditStateRepository
	events    EventRepository
	configs   ConfigRepository
	intuition *intuition.Engine
	priors    *priors.Store
	core      *bandit.Core
	defaults  config.EngineDefaults

	configCache *gocache.Cache
}

func NewService(
	states BanditStateRepository,
	events EventRepository,
	configs ConfigRepository,
	intuitionEngine *intuition.Engine,
	priorStore *priors.Store,
	core *bandit.Core,
	defaults config.EngineDefaults,
) *Service {
	return &Service{
		states:      states,
		events:      events,
		configs:     configs,
		intuition:   intuitionEngine,
		priors:      priorStore,
		core:        core,
		defaults:    defaults,
		configCache: gocache.New(configCacheTTL, 2*configCacheTTL),
	}
}

func banditKey(tenantID string) string {
	return fmt.Sprintf("reco:%s", tenantID)
}

// GetRecommendations ranks the supplied candidates under the tenant's
// blended weights and lets the tenant's bandit pick the featured item
// among the survivors.
func (s *Service) GetRecommendations(
	ctx context.Context,
	tenantID string,
	user domain.UserContext,
	candidates []domain.CandidateItem,
	topK int,
) (*domain.RecommendationResult, error) {

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no candidates supplied for tenant %q", tenantID)
	}
	if topK <= 0 {
		topK = defaultTopK
	}

	start := time.Now()
	defer func() {
		metrics.RecommendLatency.Observe(time.Since(start).Seconds())
	}()

	cfg := s.effectiveConfig(ctx, tenantID)

	weights, err := s.intuition.GetBlendedWeights(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("blend weights: %w", err)
	}

	engine := scoring.NewEngine(scoring.Config{
		LowStockThreshold:  cfg.LowStockThreshold,
		HighStockThreshold: cfg.HighStockThreshold,
		LowStockPenalty:    cfg.LowStockPenalty,
		HighStockBonus:     cfg.HighStockBonus,
		PromotedBonus:      cfg.PromotedBonus,
		NewUserDoseCeiling: cfg.NewUserDoseCeiling,
	})
	ranked := engine.RankCandidates(user, candidates, weights, topK)

	armIDs := make([]string, 0, len(ranked))
	for _, r := range ranked {
		armIDs = append(armIDs, r.ID)
	}

	state, err := s.states.Update(ctx, banditKey(tenantID), func(current *domain.BanditState) (domain.BanditState, error) {
		if current == nil {
			return bandit.NewState(banditKey(tenantID), armIDs, cfg.Strategy, cfg.Epsilon), nil
		}
		next := *current
		for _, armID := range armIDs {
			next = bandit.AddArm(next, armID)
		}
		return next, nil
	})
	if err != nil {
		return nil, fmt.Errorf("load bandit state: %w", err)
	}

	selection, err := s.core.SelectArm(&state)
	if err != nil {
		return nil, fmt.Errorf("select arm: %w", err)
	}

	metrics.RecommendationsServed.WithLabelValues(tenantID, state.Strategy).Inc()

	s.emitEvent(domain.EngineEvent{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		EventType: domain.EventRecommendationServed,
		UserID:    user.UserID,
		Payload: datatypes.JSONMap{
			"featured_arm":   selection.ArmID,
			"is_exploration": selection.IsExploration,
			"strategy":       state.Strategy,
			"candidates":     len(candidates),
			"returned":       len(ranked),
		},
	})

	return &domain.RecommendationResult{
		TenantID: tenantID,
		Items:    ranked,
		Featured: selection,
		Strategy: state.Strategy,
		Weights:  weights,
	}, nil
}

// RecordFeedback folds one user action back into the bandit, the
// tenant's maturity counter and the cross-tenant priors. The optional
// intent tags the outcome so the shared effect priors can learn.
func (s *Service) RecordFeedback(ctx context.Context, tenantID, userID, itemID, action, intent string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	reward, known := rewardForAction[action]
	if !known {
		return fmt.Errorf("unknown feedback action %q", action)
	}

	cfg := s.effectiveConfig(ctx, tenantID)

	_, err := s.states.Update(ctx, banditKey(tenantID), func(current *domain.BanditState) (domain.BanditState, error) {
		state := bandit.NewState(banditKey(tenantID), []string{itemID}, cfg.Strategy, cfg.Epsilon)
		if current != nil {
			state = bandit.AddArm(*current, itemID)
		}
		return bandit.UpdateArm(state, itemID, reward), nil
	})
	if err != nil {
		return fmt.Errorf("update bandit state: %w", err)
	}

	if _, err := s.intuition.RecordInteraction(ctx, tenantID); err != nil {
		return fmt.Errorf("record interaction: %w", err)
	}

	s.priors.RecordOutcome(itemID, reward)
	if intent != "" {
		s.priors.RecordIntentOutcome(intent, itemID, reward)
	}

	// a rewarded action confirms the weights that were serving when the
	// user acted; fold them back as a single-sample observation
	if reward {
		weights, werr := s.intuition.GetBlendedWeights(ctx, tenantID)
		if werr == nil {
			_, werr = s.intuition.UpdateLocalWeights(ctx, tenantID, weights, 1)
		}
		if werr != nil {
			logger.Warn("weight_reinforcement_failed",
				"tenant_id", tenantID,
				"error", werr,
			)
		}
	}

	metrics.FeedbackEvents.WithLabelValues(tenantID, action).Inc()

	s.emitEvent(domain.EngineEvent{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		EventType: domain.EventFeedbackReceived,
		UserID:    userID,
		Payload: datatypes.JSONMap{
			"item_id": itemID,
			"action":  action,
			"intent":  intent,
			"reward":  reward,
		},
	})

	return nil
}

// TopItems is the candidate-free view: the tenant's arms ordered by
// empirical success rate. Useful for dashboards and cheap GET serving.
func (s *Service) TopItems(ctx context.Context, tenantID string, topK int) ([]domain.RankedCandidate, error) {
	if topK <= 0 {
		topK = defaultTopK
	}

	state, err := s.states.Get(ctx, banditKey(tenantID))
	if err != nil {
		return nil, fmt.Errorf("load bandit state: %w", err)
	}
	if state == nil {
		return []domain.RankedCandidate{}, nil
	}

	arms := make([]domain.BanditArm, len(state.Arms))
	copy(arms, state.Arms)
	sort.SliceStable(arms, func(i, j int) bool {
		return arms[i].SuccessRate() > arms[j].SuccessRate()
	})

	if len(arms) > topK {
		arms = arms[:topK]
	}

	items := make([]domain.RankedCandidate, 0, len(arms))
	for i, arm := range arms {
		items = append(items, domain.RankedCandidate{
			ID:    arm.ID,
			Score: arm.SuccessRate(),
			Rank:  i + 1,
		})
	}
	return items, nil
}

// BanditStats snapshots the tenant's bandit for reporting.
func (s *Service) BanditStats(ctx context.Context, tenantID string) (domain.BanditStats, error) {
	state, err := s.states.Get(ctx, banditKey(tenantID))
	if err != nil {
		return domain.BanditStats{}, fmt.Errorf("load bandit state: %w", err)
	}
	return bandit.Stats(state), nil
}

// GetConfig returns the tenant's effective configuration with every
// unset knob resolved to its default.
func (s *Service) GetConfig(ctx context.Context, tenantID string) (domain.EngineConfig, error) {
	if err := ctx.Err(); err != nil {
		return domain.EngineConfig{}, fmt.Errorf("context error: %w", err)
	}
	return s.effectiveConfig(ctx, tenantID), nil
}

// UpdateConfig validates and persists a tenant override, then drops the
// cached copy so the next read sees it.
func (s *Service) UpdateConfig(ctx context.Context, cfg domain.EngineConfig) (domain.EngineConfig, error) {
	if err := ctx.Err(); err != nil {
		return domain.EngineConfig{}, fmt.Errorf("context error: %w", err)
	}
	if cfg.TenantID == "" {
		return domain.EngineConfig{}, fmt.Errorf("missing tenant id")
	}

	switch cfg.Strategy {
	case "", domain.StrategyThompson, domain.StrategyUCB, domain.StrategyEpsilonGreedy:
	default:
		return domain.EngineConfig{}, fmt.Errorf("unknown strategy %q", cfg.Strategy)
	}
	if cfg.Epsilon < 0 || cfg.Epsilon > 1 {
		return domain.EngineConfig{}, fmt.Errorf("epsilon %v outside [0,1]", cfg.Epsilon)
	}

	if err := s.configs.Upsert(ctx, cfg); err != nil {
		return domain.EngineConfig{}, fmt.Errorf("upsert config: %w", err)
	}

	s.configCache.Delete(cfg.TenantID)

	// a strategy override applies to the live bandit immediately
	if cfg.Strategy != "" {
		_, err := s.states.Update(ctx, banditKey(cfg.TenantID), func(current *domain.BanditState) (domain.BanditState, error) {
			if current == nil {
				return bandit.NewState(banditKey(cfg.TenantID), nil, cfg.Strategy, cfg.Epsilon), nil
			}
			return bandit.WithStrategy(*current, cfg.Strategy, cfg.Epsilon), nil
		})
		if err != nil {
			return domain.EngineConfig{}, fmt.Errorf("apply strategy: %w", err)
		}
	}

	return s.effectiveConfig(ctx, cfg.TenantID), nil
}

// effectiveConfig resolves the tenant's knobs: cached copy, then the
// repository, then the process defaults for anything still unset. A
// repository failure degrades to defaults rather than failing the
// serving path.
func (s *Service) effectiveConfig(ctx context.Context, tenantID string) domain.EngineConfig {
	if cached, ok := s.configCache.Get(tenantID); ok {
		return cached.(domain.EngineConfig)
	}

	var stored *domain.EngineConfig
	if s.configs != nil {
		var err error
		stored, err = s.configs.Get(ctx, tenantID)
		if err != nil {
			logger.Warn("tenant_config_load_failed",
				"tenant_id", tenantID,
				"error", err,
			)
		}
	}

	cfg := s.mergeDefaults(tenantID, stored)
	s.configCache.Set(tenantID, cfg, configCacheTTL)
	return cfg
}

func (s *Service) mergeDefaults(tenantID string, stored *domain.EngineConfig) domain.EngineConfig {
	cfg := domain.EngineConfig{
		TenantID:             tenantID,
		Strategy:             s.defaults.Strategy,
		Epsilon:              s.defaults.Epsilon,
		LowStockThreshold:    s.defaults.LowStockThreshold,
		HighStockThreshold:   s.defaults.HighStockThreshold,
		LowStockPenalty:      s.defaults.LowStockPenalty,
		HighStockBonus:       s.defaults.HighStockBonus,
		PromotedBonus:        s.defaults.PromotedBonus,
		NewUserDoseCeiling:   s.defaults.NewUserDoseCeiling,
		AnomalyThreshold:     s.defaults.AnomalyThreshold,
		EWMAAlpha:            s.defaults.EWMAAlpha,
		MinAnomalyHistory:    s.defaults.MinAnomalyHistory,
		MinExperimentSamples: s.defaults.MinExperimentSamples,
		Weights:              s.defaults.Weights,
	}
	if stored == nil {
		return cfg
	}

	if stored.Strategy != "" {
		cfg.Strategy = stored.Strategy
	}
	if stored.Epsilon > 0 {
		cfg.Epsilon = stored.Epsilon
	}
	if stored.LowStockThreshold > 0 {
		cfg.LowStockThreshold = stored.LowStockThreshold
	}
	if stored.HighStockThreshold > 0 {
		cfg.HighStockThreshold = stored.HighStockThreshold
	}
	if stored.LowStockPenalty > 0 {
		cfg.LowStockPenalty = stored.LowStockPenalty
	}
	if stored.HighStockBonus > 0 {
		cfg.HighStockBonus = stored.HighStockBonus
	}
	if stored.PromotedBonus > 0 {
		cfg.PromotedBonus = stored.PromotedBonus
	}
	if stored.NewUserDoseCeiling > 0 {
		cfg.NewUserDoseCeiling = stored.NewUserDoseCeiling
	}
	if stored.AnomalyThreshold > 0 {
		cfg.AnomalyThreshold = stored.AnomalyThreshold
	}
	if stored.EWMAAlpha > 0 {
		cfg.EWMAAlpha = stored.EWMAAlpha
	}
	if stored.MinAnomalyHistory > 0 {
		cfg.MinAnomalyHistory = stored.MinAnomalyHistory
	}
	if stored.MinExperimentSamples > 0 {
		cfg.MinExperimentSamples = stored.MinExperimentSamples
	}
	zero := domain.ScoringWeights{}
	if stored.Weights != zero {
		cfg.Weights = stored.Weights
	}
	return cfg
}

// emitEvent writes to the event log off the request path. A failed
// write is logged and dropped; serving never blocks on the log.
func (s *Service) emitEvent(event domain.EngineEvent) {
	if s.events == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), eventWriteBudget)
		defer cancel()

		if err := s.events.SaveEvent(ctx, event); err != nil {
			logger.Warn("event_write_failed",
				"event_type", event.EventType,
				"tenant_id", event.TenantID,
				"error", err,
			)
		}
	}()
}
