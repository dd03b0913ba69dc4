package intuition

import (
	"context"
	"math"
	"testing"
	"time"

	"brandPulse/business/priors"
	"brandPulse/domain"
	"brandPulse/internal/repository/memory"
)

func testWeights() domain.ScoringWeights {
	return domain.ScoringWeights{
		EffectMatch:   0.3,
		ProfileMatch:  0.25,
		BusinessScore: 0.25,
		RiskPenalty:   0.2,
	}
}

func newTestEngine() *Engine {
	return NewEngine(memory.NewIntuitionStore(), priors.NewStore(testWeights()), Config{}, testWeights())
}

func TestGetCreatesColdStartTenant(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	state, err := e.Get(ctx, "tenant-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if state.Stage != domain.StageColdStart {
		t.Errorf("stage = %q, want cold_start", state.Stage)
	}
	if state.GlobalInfluence != 0.9 {
		t.Errorf("global influence = %v, want 0.9", state.GlobalInfluence)
	}
	if state.LocalWeights != testWeights() {
		t.Errorf("local weights = %+v, want defaults", state.LocalWeights)
	}
}

func TestStageTransitionsAtThresholds(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	crossings := map[int64]struct {
		stage string
		blend float64
	}{
		49:   {domain.StageColdStart, 0.9},
		50:   {domain.StageWarming, 0.6},
		499:  {domain.StageWarming, 0.6},
		500:  {domain.StageLearned, 0.3},
		4999: {domain.StageLearned, 0.3},
		5000: {domain.StageMature, 0.1},
	}

	var state domain.BrandIntuition
	var err error
	for i := int64(1); i <= 5000; i++ {
		state, err = e.RecordInteraction(ctx, "tenant-1")
		if err != nil {
			t.Fatalf("record interaction %d: %v", i, err)
		}
		want, ok := crossings[i]
		if !ok {
			continue
		}
		if state.Stage != want.stage {
			t.Errorf("after %d interactions stage = %q, want %q", i, state.Stage, want.stage)
		}
		if state.GlobalInfluence != want.blend {
			t.Errorf("after %d interactions blend = %v, want %v", i, state.GlobalInfluence, want.blend)
		}
	}
	if state.InteractionCount != 5000 {
		t.Fatalf("interaction count = %d, want 5000", state.InteractionCount)
	}
}

func TestStagesOnlyMoveForward(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	// force a mature tenant, then verify stage ordering holds through
	// further interactions
	_, err := e.repo.Update(ctx, "tenant-1", func(*domain.BrandIntuition) (domain.BrandIntuition, error) {
		return domain.BrandIntuition{
			TenantID:         "tenant-1",
			Stage:            domain.StageMature,
			GlobalInfluence:  0.1,
			InteractionCount: 10,
			LocalWeights:     testWeights(),
		}, nil
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	state, err := e.RecordInteraction(ctx, "tenant-1")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if state.Stage != domain.StageMature {
		t.Errorf("stage regressed to %q", state.Stage)
	}
	if state.GlobalInfluence != 0.1 {
		t.Errorf("blend regressed to %v", state.GlobalInfluence)
	}
}

func TestBlendedWeightsAreConvex(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	// give the global store an extreme profile so blend direction is
	// visible
	e.priors.ContributeWeights(domain.ScoringWeights{
		EffectMatch:   0.9,
		ProfileMatch:  0.05,
		BusinessScore: 0.03,
		RiskPenalty:   0.02,
	}, 1000)

	blended, err := e.GetBlendedWeights(ctx, "tenant-1")
	if err != nil {
		t.Fatalf("blend: %v", err)
	}

	// cold start: 0.9*global + 0.1*local
	wantEffect := 0.9*0.9 + 0.1*0.3
	if math.Abs(blended.EffectMatch-wantEffect) > 1e-9 {
		t.Errorf("effect weight = %v, want %v", blended.EffectMatch, wantEffect)
	}

	// every component must stay inside [min(g,l), max(g,l)]
	global, _ := e.priors.GlobalWeights()
	local := testWeights()
	checks := []struct {
		name    string
		g, l, b float64
	}{
		{"effect", global.EffectMatch, local.EffectMatch, blended.EffectMatch},
		{"profile", global.ProfileMatch, local.ProfileMatch, blended.ProfileMatch},
		{"business", global.BusinessScore, local.BusinessScore, blended.BusinessScore},
		{"risk", global.RiskPenalty, local.RiskPenalty, blended.RiskPenalty},
	}
	for _, c := range checks {
		lo, hi := math.Min(c.g, c.l), math.Max(c.g, c.l)
		if c.b < lo-1e-9 || c.b > hi+1e-9 {
			t.Errorf("%s blend %v outside [%v, %v]", c.name, c.b, lo, hi)
		}
	}
}

func TestBlendEndpoints(t *testing.T) {
	global := domain.ScoringWeights{EffectMatch: 1, ProfileMatch: 1, BusinessScore: 1, RiskPenalty: 1}
	local := domain.ScoringWeights{}

	if got := blendWeights(global, local, 1); got != global {
		t.Errorf("blend=1 should return global, got %+v", got)
	}
	if got := blendWeights(global, local, 0); got != local {
		t.Errorf("blend=0 should return local, got %+v", got)
	}
}

func TestUpdateLocalWeightsEMA(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	observed := domain.ScoringWeights{EffectMatch: 0.8, ProfileMatch: 0.1, BusinessScore: 0.05, RiskPenalty: 0.05}

	// sample size 100 gives lr = 0.1
	state, err := e.UpdateLocalWeights(ctx, "tenant-1", observed, 100)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	want := 0.1*0.8 + 0.9*0.3
	if math.Abs(state.LocalWeights.EffectMatch-want) > 1e-9 {
		t.Errorf("effect weight = %v, want %v", state.LocalWeights.EffectMatch, want)
	}

	// the contribution also reaches the global store
	_, samples := e.priors.GlobalWeights()
	if samples != 100 {
		t.Errorf("global samples = %d, want 100", samples)
	}
}

func TestUpdateLocalWeightsCapsLearningRate(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	observed := domain.ScoringWeights{EffectMatch: 1.0}

	// sample size 10000 would give lr = 10 uncapped
	state, err := e.UpdateLocalWeights(ctx, "tenant-1", observed, 10000)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	want := 0.3*1.0 + 0.7*0.3
	if math.Abs(state.LocalWeights.EffectMatch-want) > 1e-9 {
		t.Errorf("effect weight = %v, want %v (lr capped at 0.3)", state.LocalWeights.EffectMatch, want)
	}
}

func TestUpdateLocalWeightsIgnoresEmptySample(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	state, err := e.UpdateLocalWeights(ctx, "tenant-1", domain.ScoringWeights{EffectMatch: 1}, 0)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if state.LocalWeights != testWeights() {
		t.Errorf("zero-sample update changed weights: %+v", state.LocalWeights)
	}
}

func TestEffectBoostsAttenuateWithMaturity(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	cold, err := e.GetEffectBoosts(ctx, "tenant-cold", "relax")
	if err != nil {
		t.Fatalf("boosts: %v", err)
	}
	if cold["indica"] != 0.8 {
		t.Fatalf("cold-start boost = %v, want raw bootstrap 0.8", cold["indica"])
	}

	_, err = e.repo.Update(ctx, "tenant-mature", func(*domain.BrandIntuition) (domain.BrandIntuition, error) {
		return domain.BrandIntuition{
			TenantID:        "tenant-mature",
			Stage:           domain.StageMature,
			GlobalInfluence: 0.1,
			LocalWeights:    testWeights(),
		}, nil
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	mature, err := e.GetEffectBoosts(ctx, "tenant-mature", "relax")
	if err != nil {
		t.Fatalf("boosts: %v", err)
	}
	// multiplier 0.5 + 0.1/2 = 0.55
	want := 0.8 * 0.55
	if math.Abs(mature["indica"]-want) > 1e-9 {
		t.Errorf("mature boost = %v, want %v", mature["indica"], want)
	}
	if mature["indica"] >= cold["indica"] {
		t.Errorf("mature tenant should see weaker boosts than cold start")
	}
}

func TestTopInsightsRefreshFromPriors(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	for i := 0; i < 80; i++ {
		e.priors.RecordOutcome("og-indica", i%4 != 0)
	}

	insights, err := e.TopInsights(ctx, "tenant-1")
	if err != nil {
		t.Fatalf("insights: %v", err)
	}
	if len(insights) != 1 || insights[0].Pattern != "indica" {
		t.Fatalf("insights = %+v", insights)
	}
	if math.Abs(insights[0].SuccessRate-0.75) > 1e-9 {
		t.Errorf("rate = %v, want 0.75", insights[0].SuccessRate)
	}
}

func TestTopInsightsServesFreshCache(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	cached := []domain.Insight{{Pattern: "cached", SuccessRate: 0.5, Pulls: 60}}
	_, err := e.repo.Update(ctx, "tenant-1", func(*domain.BrandIntuition) (domain.BrandIntuition, error) {
		return domain.BrandIntuition{
			TenantID:            "tenant-1",
			Stage:               domain.StageColdStart,
			LocalWeights:        testWeights(),
			TopInsights:         cached,
			InsightsRefreshedAt: time.Now(),
			UpdatedAt:           time.Now(),
		}, nil
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	for i := 0; i < 80; i++ {
		e.priors.RecordOutcome("og-indica", true)
	}

	insights, err := e.TopInsights(ctx, "tenant-1")
	if err != nil {
		t.Fatalf("insights: %v", err)
	}
	if len(insights) != 1 || insights[0].Pattern != "cached" {
		t.Errorf("fresh cache was bypassed: %+v", insights)
	}
}

func TestTopInsightsRefreshSurvivesInteractionTraffic(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	// a stale insight cache on a tenant whose UpdatedAt keeps moving
	_, err := e.repo.Update(ctx, "tenant-1", func(*domain.BrandIntuition) (domain.BrandIntuition, error) {
		return domain.BrandIntuition{
			TenantID:            "tenant-1",
			Stage:               domain.StageColdStart,
			LocalWeights:        testWeights(),
			TopInsights:         []domain.Insight{{Pattern: "stale", SuccessRate: 0.2, Pulls: 50}},
			InsightsRefreshedAt: time.Now().Add(-insightTTL - time.Minute),
			UpdatedAt:           time.Now(),
		}, nil
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := e.RecordInteraction(ctx, "tenant-1"); err != nil {
		t.Fatalf("record: %v", err)
	}

	for i := 0; i < 80; i++ {
		e.priors.RecordOutcome("og-indica", true)
	}

	insights, err := e.TopInsights(ctx, "tenant-1")
	if err != nil {
		t.Fatalf("insights: %v", err)
	}
	if len(insights) != 1 || insights[0].Pattern != "indica" {
		t.Fatalf("stale cache survived: %+v", insights)
	}

	state, err := e.Get(ctx, "tenant-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if time.Since(state.InsightsRefreshedAt) > time.Minute {
		t.Errorf("refresh timestamp not advanced: %v", state.InsightsRefreshedAt)
	}
}
