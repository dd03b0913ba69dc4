package priors

import (
	"sort"
	"strings"
	"sync"
	"time"

	"brandPulse/domain"
)

const (
	bootstrapConfidence = 0.6
	bootstrapSamples    = 100

	// a learned prior replaces the bootstrap entry once its
	// confidence clears this gate
	learnedConfidenceGate = 0.7

	// evidence floors before a pattern is surfaced at all
	minPatternPulls = 50
	minRatePulls    = 100
)

// bootstrapEffects is hand-seeded domain knowledge used until tenants
// have contributed enough of their own signal.
var bootstrapEffects = map[string]map[string]float64{
	"relax":    {"indica": 0.8, "hybrid": 0.6, "cbd": 0.7},
	"sleep":    {"indica": 0.9, "cbd": 0.6, "tincture": 0.5},
	"energize": {"sativa": 0.85, "hybrid": 0.55, "vape": 0.5},
	"focus":    {"sativa": 0.75, "hybrid": 0.65, "cbd": 0.4},
	"creative": {"sativa": 0.8, "hybrid": 0.6},
	"social":   {"hybrid": 0.75, "sativa": 0.65, "preroll": 0.55},
	"appetite": {"indica": 0.7, "edible": 0.6},
}

// armPatternVocabulary drives extractArmPattern. Substring matching is
// a stopgap: arms whose ids carry none of these tokens contribute
// nothing to cross-tenant aggregation.
var armPatternVocabulary = []string{
	"indica", "sativa", "hybrid",
	"flower", "preroll", "vape", "edible", "concentrate", "tincture",
	"cbd", "thc",
}

type patternOutcome struct {
	pulls     int
	successes int
}

type effectPrior struct {
	weights map[string]float64
	samples int
}

// Store aggregates bandit outcomes and scoring weights across every
// tenant. One shared instance lives for the process lifetime; all
// access goes through the mutex.
type Store struct {
	mu sync.RWMutex

	patterns map[string]*patternOutcome
	effects  map[string]*effectPrior

	// sample-size-weighted running average of contributed weights
	globalWeights  domain.ScoringWeights
	weightSamples  int
	defaultWeights domain.ScoringWeights

	updatedAt time.Time
}

func NewStore(defaultWeights domain.ScoringWeights) *Store {
	return &Store{
		patterns:       make(map[string]*patternOutcome),
		effects:        make(map[string]*effectPrior),
		defaultWeights: defaultWeights,
		updatedAt:      time.Now(),
	}
}

// extractArmPattern generalizes an arm id to a shared vocabulary token
// by substring match. Returns "" when nothing matches.
func extractArmPattern(armID string) string {
	lower := strings.ToLower(armID)
	for _, token := range armPatternVocabulary {
		if strings.Contains(lower, token) {
			return token
		}
	}
	return ""
}

// RecordOutcome folds one bandit reward into the cross-tenant pattern
// aggregate. Arms that generalize to no known pattern are skipped.
func (s *Store) RecordOutcome(armID string, success bool) {
	pattern := extractArmPattern(armID)
	if pattern == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out, ok := s.patterns[pattern]
	if !ok {
		out = &patternOutcome{}
		s.patterns[pattern] = out
	}
	out.pulls++
	if success {
		out.successes++
	}
	s.updatedAt = time.Now()
}

// RecordIntentOutcome folds one intent-tagged reward into the learned
// effect prior for that intent. The arm generalizes to its pattern
// token; a rewarded pull contributes 1, a failed pull contributes 0.
func (s *Store) RecordIntentOutcome(intent, armID string, success bool) {
	pattern := extractArmPattern(armID)
	if pattern == "" {
		return
	}

	value := 0.0
	if success {
		value = 1.0
	}
	s.ContributeEffectPrior(intent, map[string]float64{pattern: value}, 1)
}

// ContributeWeights folds a tenant's observed weights into the global
// average, weighted by the tenant's sample size.
func (s *Store) ContributeWeights(w domain.ScoringWeights, sampleSize int) {
	if sampleSize <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	total := s.weightSamples + sampleSize
	prev := float64(s.weightSamples) / float64(total)
	next := float64(sampleSize) / float64(total)

	if s.weightSamples == 0 {
		s.globalWeights = w
	} else {
		s.globalWeights = domain.ScoringWeights{
			EffectMatch:   prev*s.globalWeights.EffectMatch + next*w.EffectMatch,
			ProfileMatch:  prev*s.globalWeights.ProfileMatch + next*w.ProfileMatch,
			BusinessScore: prev*s.globalWeights.BusinessScore + next*w.BusinessScore,
			RiskPenalty:   prev*s.globalWeights.RiskPenalty + next*w.RiskPenalty,
		}
	}
	s.weightSamples = total
	s.updatedAt = time.Now()
}

// GlobalWeights returns the aggregated weights, falling back to the
// defaults while no tenant has contributed yet.
func (s *Store) GlobalWeights() (domain.ScoringWeights, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.weightSamples == 0 {
		return s.defaultWeights, 0
	}
	return s.globalWeights, s.weightSamples
}

// ContributeEffectPrior folds a tenant's learned sub-pattern weights
// for an intent into the shared prior (sample-weighted average).
func (s *Store) ContributeEffectPrior(intent string, weights map[string]float64, sampleSize int) {
	intent = strings.ToLower(strings.TrimSpace(intent))
	if intent == "" || len(weights) == 0 || sampleSize <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prior, ok := s.effects[intent]
	if !ok {
		prior = &effectPrior{weights: make(map[string]float64)}
		s.effects[intent] = prior
	}

	total := prior.samples + sampleSize
	prev := float64(prior.samples) / float64(total)
	next := float64(sampleSize) / float64(total)

	for k, v := range weights {
		prior.weights[k] = prev*prior.weights[k] + next*v
	}
	// sub-patterns absent from the contribution decay toward their
	// previous value weighted by the old share
	for k := range prior.weights {
		if _, contributed := weights[k]; !contributed {
			prior.weights[k] = prev * prior.weights[k]
		}
	}
	prior.samples = total
	s.updatedAt = time.Now()
}

func confidenceFor(samples int) float64 {
	conf := float64(samples) / 1000
	if conf > 0.95 {
		conf = 0.95
	}
	return conf
}

// GetEffectPrior returns the learned prior for an intent once its
// confidence clears the gate, otherwise the bootstrap entry, otherwise
// an empty map. Callers get a copy.
func (s *Store) GetEffectPrior(intent string) domain.GlobalPrior {
	intent = strings.ToLower(strings.TrimSpace(intent))

	s.mu.RLock()
	defer s.mu.RUnlock()

	if prior, ok := s.effects[intent]; ok {
		if conf := confidenceFor(prior.samples); conf > learnedConfidenceGate {
			return domain.GlobalPrior{
				Pattern:     intent,
				Weights:     copyWeights(prior.weights),
				SampleCount: prior.samples,
				Confidence:  conf,
				UpdatedAt:   s.updatedAt,
			}
		}
	}

	if seed, ok := bootstrapEffects[intent]; ok {
		return domain.GlobalPrior{
			Pattern:     intent,
			Weights:     copyWeights(seed),
			SampleCount: bootstrapSamples,
			Confidence:  bootstrapConfidence,
			UpdatedAt:   s.updatedAt,
		}
	}

	return domain.GlobalPrior{
		Pattern: intent,
		Weights: map[string]float64{},
	}
}

// GetTopPatterns lists the best-performing patterns with at least
// minPatternPulls pulls, ordered by success rate.
func (s *Store) GetTopPatterns(limit int) []domain.PatternStat {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make([]domain.PatternStat, 0, len(s.patterns))
	for pattern, out := range s.patterns {
		if out.pulls < minPatternPulls {
			continue
		}
		stats = append(stats, domain.PatternStat{
			Pattern:   pattern,
			Pulls:     out.pulls,
			Successes: out.successes,
			Rate:      float64(out.successes) / float64(out.pulls),
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Rate == stats[j].Rate {
			return stats[i].Pulls > stats[j].Pulls
		}
		return stats[i].Rate > stats[j].Rate
	})

	if limit > 0 && len(stats) > limit {
		stats = stats[:limit]
	}
	return stats
}

// GetPatternSuccessRate reports a single pattern's rate once it has
// enough evidence to mean anything.
func (s *Store) GetPatternSuccessRate(pattern string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out, ok := s.patterns[strings.ToLower(pattern)]
	if !ok || out.pulls < minRatePulls {
		return 0, false
	}
	return float64(out.successes) / float64(out.pulls), true
}

func copyWeights(src map[string]float64) map[string]float64 {
	dst := make(map[string]float64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
