package priors

import (
	"math"
	"sync"
	"testing"

	"brandPulse/domain"
)

func defaultWeights() domain.ScoringWeights {
	return domain.ScoringWeights{
		EffectMatch:   0.3,
		ProfileMatch:  0.25,
		BusinessScore: 0.25,
		RiskPenalty:   0.2,
	}
}

func TestExtractArmPattern(t *testing.T) {
	cases := []struct {
		armID string
		want  string
	}{
		{"blue-dream-indica-3.5g", "indica"},
		{"SATIVA_sunrise", "sativa"},
		{"gummy-edible-10mg", "edible"},
		{"sku-9922", ""},
		{"", ""},
	}

	for _, tc := range cases {
		if got := extractArmPattern(tc.armID); got != tc.want {
			t.Errorf("extractArmPattern(%q) = %q, want %q", tc.armID, got, tc.want)
		}
	}
}

func TestRecordOutcomeSkipsUnmatchedArms(t *testing.T) {
	store := NewStore(defaultWeights())

	for i := 0; i < 200; i++ {
		store.RecordOutcome("mystery-sku", true)
	}

	if got := store.GetTopPatterns(10); len(got) != 0 {
		t.Fatalf("unmatched arms produced patterns: %+v", got)
	}
}

func TestPatternEvidenceFloors(t *testing.T) {
	store := NewStore(defaultWeights())

	// 60 pulls: enough for top-patterns (50) but not for the rate (100)
	for i := 0; i < 60; i++ {
		store.RecordOutcome("og-indica", i%2 == 0)
	}

	tops := store.GetTopPatterns(10)
	if len(tops) != 1 || tops[0].Pattern != "indica" {
		t.Fatalf("top patterns = %+v", tops)
	}

	if _, ok := store.GetPatternSuccessRate("indica"); ok {
		t.Fatalf("rate reported below the %d-pull floor", minRatePulls)
	}

	for i := 0; i < 60; i++ {
		store.RecordOutcome("og-indica", true)
	}
	rate, ok := store.GetPatternSuccessRate("indica")
	if !ok {
		t.Fatalf("rate missing after 120 pulls")
	}
	// 30 + 60 successes over 120 pulls
	if math.Abs(rate-0.75) > 1e-9 {
		t.Errorf("rate = %v, want 0.75", rate)
	}
}

func TestGlobalWeightsDefaultUntilContribution(t *testing.T) {
	store := NewStore(defaultWeights())

	w, samples := store.GlobalWeights()
	if samples != 0 {
		t.Fatalf("samples = %d, want 0", samples)
	}
	if w != defaultWeights() {
		t.Fatalf("weights = %+v, want defaults", w)
	}
}

func TestContributeWeightsShiftsGlobalAverage(t *testing.T) {
	store := NewStore(defaultWeights())

	// many tenants pushing an extreme effect-match weight must drag
	// the global value visibly toward it
	extreme := domain.ScoringWeights{EffectMatch: 0.9, ProfileMatch: 0.05, BusinessScore: 0.03, RiskPenalty: 0.02}
	for i := 0; i < 20; i++ {
		store.ContributeWeights(extreme, 500)
	}

	w, samples := store.GlobalWeights()
	if samples != 10000 {
		t.Fatalf("samples = %d, want 10000", samples)
	}
	if math.Abs(w.EffectMatch-0.9) > 1e-9 {
		t.Fatalf("effect weight = %v, want 0.9", w.EffectMatch)
	}

	// a small late contribution barely moves it
	store.ContributeWeights(domain.ScoringWeights{EffectMatch: 0.1}, 100)
	w, _ = store.GlobalWeights()
	if w.EffectMatch < 0.85 {
		t.Errorf("small contribution moved the average too far: %v", w.EffectMatch)
	}
}

func TestContributeWeightsIsSampleWeighted(t *testing.T) {
	store := NewStore(defaultWeights())

	store.ContributeWeights(domain.ScoringWeights{EffectMatch: 1.0}, 100)
	store.ContributeWeights(domain.ScoringWeights{EffectMatch: 0.0}, 300)

	w, _ := store.GlobalWeights()
	if math.Abs(w.EffectMatch-0.25) > 1e-9 {
		t.Fatalf("effect weight = %v, want 0.25 (100:300 split)", w.EffectMatch)
	}
}

func TestGetEffectPriorBootstrapThenLearned(t *testing.T) {
	store := NewStore(defaultWeights())

	boot := store.GetEffectPrior("relax")
	if boot.Confidence != bootstrapConfidence || boot.SampleCount != bootstrapSamples {
		t.Fatalf("bootstrap prior: %+v", boot)
	}
	if boot.Weights["indica"] != 0.8 {
		t.Errorf("bootstrap indica weight = %v", boot.Weights["indica"])
	}

	// a low-confidence contribution does not displace the bootstrap
	store.ContributeEffectPrior("relax", map[string]float64{"indica": 0.1}, 200)
	if got := store.GetEffectPrior("relax"); got.Weights["indica"] != 0.8 {
		t.Fatalf("low-confidence contribution displaced bootstrap: %+v", got)
	}

	// enough samples clears the confidence gate
	store.ContributeEffectPrior("relax", map[string]float64{"indica": 0.1}, 600)
	learned := store.GetEffectPrior("relax")
	if learned.Confidence <= learnedConfidenceGate {
		t.Fatalf("confidence = %v, want > %v", learned.Confidence, learnedConfidenceGate)
	}
	if learned.Weights["indica"] >= 0.8 {
		t.Errorf("learned prior did not move: %+v", learned.Weights)
	}
}

func TestRecordIntentOutcomeBuildsLearnedPrior(t *testing.T) {
	store := NewStore(defaultWeights())

	// "checkout" has no bootstrap entry, so anything surfaced must have
	// been learned from the tagged outcomes
	if got := store.GetEffectPrior("checkout"); len(got.Weights) != 0 {
		t.Fatalf("pre-seeded prior for unseeded intent: %+v", got)
	}

	for i := 0; i < 800; i++ {
		store.RecordIntentOutcome("checkout", "sunrise-sativa-1g", i%4 != 0)
	}

	learned := store.GetEffectPrior("checkout")
	if learned.Confidence <= learnedConfidenceGate {
		t.Fatalf("confidence = %v, want > %v", learned.Confidence, learnedConfidenceGate)
	}
	if math.Abs(learned.Weights["sativa"]-0.75) > 1e-9 {
		t.Errorf("sativa weight = %v, want 0.75", learned.Weights["sativa"])
	}
}

func TestRecordIntentOutcomeSkipsUnmatchedArms(t *testing.T) {
	store := NewStore(defaultWeights())

	for i := 0; i < 800; i++ {
		store.RecordIntentOutcome("checkout", "mystery-sku", true)
	}

	if got := store.GetEffectPrior("checkout"); len(got.Weights) != 0 {
		t.Fatalf("unmatched arms built a prior: %+v", got)
	}
}

func TestGetEffectPriorUnknownIntentIsEmpty(t *testing.T) {
	store := NewStore(defaultWeights())

	prior := store.GetEffectPrior("teleport")
	if len(prior.Weights) != 0 {
		t.Fatalf("unknown intent returned weights: %+v", prior)
	}
}

func TestStoreIsSafeUnderConcurrentWrites(t *testing.T) {
	store := NewStore(defaultWeights())

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				store.RecordOutcome("hybrid-blend", i%3 == 0)
				store.ContributeWeights(defaultWeights(), 1)
			}
		}()
	}
	wg.Wait()

	rate, ok := store.GetPatternSuccessRate("hybrid")
	if !ok {
		t.Fatalf("pattern missing after concurrent writes")
	}
	if rate <= 0 || rate >= 1 {
		t.Errorf("rate = %v", rate)
	}

	_, samples := store.GlobalWeights()
	if samples != 8*500 {
		t.Errorf("weight samples = %d, want %d (lost updates)", samples, 8*500)
	}
}
