package anomaly

import (
	"math"

	"brandPulse/domain"
)

// Config tunes detection. Zero values fall back to the defaults below.
type Config struct {
	// DeviationThreshold is the absolute percent deviation beyond
	// which an observation is flagged.
	DeviationThreshold float64
	// Alpha is the EWMA smoothing factor in (0,1].
	Alpha float64
	// MinHistory is the minimum number of baseline points required
	// before anything can be flagged.
	MinHistory int
	// MinSampleSize is the per-arm floor for experiment significance.
	MinSampleSize int
}

const (
	defaultDeviationThreshold = 25.0
	defaultAlpha              = 0.3
	defaultMinHistory         = 5
	defaultMinSampleSize      = 100

	// deviations inside this band count as stable
	directionBand = 5.0

	// two-tailed significance cutoff, z ~= 1.96
	significanceP = 0.05
)

func DefaultConfig() Config {
	return Config{
		DeviationThreshold: defaultDeviationThreshold,
		Alpha:              defaultAlpha,
		MinHistory:         defaultMinHistory,
		MinSampleSize:      defaultMinSampleSize,
	}
}

func (c Config) withDefaults() Config {
	if c.DeviationThreshold <= 0 {
		c.DeviationThreshold = defaultDeviationThreshold
	}
	if c.Alpha <= 0 || c.Alpha > 1 {
		c.Alpha = defaultAlpha
	}
	if c.MinHistory <= 0 {
		c.MinHistory = defaultMinHistory
	}
	if c.MinSampleSize <= 0 {
		c.MinSampleSize = defaultMinSampleSize
	}
	return c
}

// ComputeEWMA folds the history into a recursive baseline:
// ewma_0 = x_0, ewma_n = alpha*x_n + (1-alpha)*ewma_{n-1}.
func ComputeEWMA(history []float64, alpha float64) float64 {
	if len(history) == 0 {
		return 0
	}

	ewma := history[0]
	for _, x := range history[1:] {
		ewma = alpha*x + (1-alpha)*ewma
	}
	return ewma
}

// DetectAnomaly compares the current value against the EWMA baseline of
// the history. Too little history is insufficient evidence, reported as
// not-anomalous rather than an error.
func DetectAnomaly(current float64, history []float64, cfg Config) domain.AnomalyResult {
	cfg = cfg.withDefaults()

	if len(history) < cfg.MinHistory {
		return domain.AnomalyResult{
			IsAnomaly: false,
			Direction: domain.DirectionStable,
			Observed:  current,
			Threshold: cfg.DeviationThreshold,
		}
	}

	baseline := ComputeEWMA(history, cfg.Alpha)

	var deviation float64
	switch {
	case baseline != 0:
		deviation = (current - baseline) / baseline * 100
	case current > 0:
		// zero baseline: any nonzero observation is a full swing
		deviation = 100
	case current < 0:
		deviation = -100
	}

	direction := domain.DirectionStable
	if deviation > directionBand {
		direction = domain.DirectionUp
	} else if deviation < -directionBand {
		direction = domain.DirectionDown
	}

	return domain.AnomalyResult{
		IsAnomaly:    math.Abs(deviation) > cfg.DeviationThreshold,
		DeviationPct: deviation,
		Direction:    direction,
		Baseline:     baseline,
		Observed:     current,
		Threshold:    cfg.DeviationThreshold,
	}
}

// ComputeExperimentLift runs a pooled two-proportion z-test between a
// control and a variant arm. Below the minimum sample size the only
// honest verdict is "needs more data".
func ComputeExperimentLift(controlSuccesses, controlTotal, variantSuccesses, variantTotal int, cfg Config) domain.ExperimentLift {
	cfg = cfg.withDefaults()

	if controlTotal < cfg.MinSampleSize || variantTotal < cfg.MinSampleSize {
		return domain.ExperimentLift{NeedsMoreData: true, PValue: 1}
	}

	controlRate := float64(controlSuccesses) / float64(controlTotal)
	variantRate := float64(variantSuccesses) / float64(variantTotal)

	lift := 0.0
	if controlRate > 0 {
		lift = (variantRate - controlRate) / controlRate * 100
	} else if variantRate > 0 {
		lift = 100
	}

	pooled := float64(controlSuccesses+variantSuccesses) / float64(controlTotal+variantTotal)
	se := math.Sqrt(pooled * (1 - pooled) * (1/float64(controlTotal) + 1/float64(variantTotal)))

	// zero variance (all successes or all failures): nothing to test
	if se == 0 {
		return domain.ExperimentLift{
			ControlRate: controlRate,
			VariantRate: variantRate,
			LiftPct:     lift,
			PValue:      1,
		}
	}

	z := (variantRate - controlRate) / se
	p := 2 * (1 - normalCDF(math.Abs(z)))

	return domain.ExperimentLift{
		Significant: p < significanceP,
		ControlRate: controlRate,
		VariantRate: variantRate,
		LiftPct:     lift,
		ZScore:      z,
		PValue:      p,
	}
}

// normalCDF approximates the standard normal CDF with the
// Abramowitz-Stegun 26.2.17 rational polynomial; the absolute error is
// below 7.5e-8, plenty for a p<0.05 cutoff.
func normalCDF(z float64) float64 {
	if z < 0 {
		return 1 - normalCDF(-z)
	}

	t := 1 / (1 + 0.2316419*z)
	poly := t * (0.319381530 + t*(-0.356563782+t*(1.781477937+t*(-1.821255978+t*1.330274429))))

	return 1 - math.Exp(-z*z/2)/math.Sqrt(2*math.Pi)*poly
}
