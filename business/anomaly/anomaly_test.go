package anomaly

import (
	"math"
	"testing"

	"brandPulse/domain"
)

func TestComputeEWMA(t *testing.T) {
	if got := ComputeEWMA(nil, 0.3); got != 0 {
		t.Fatalf("empty history EWMA = %v, want 0", got)
	}
	if got := ComputeEWMA([]float64{42}, 0.3); got != 42 {
		t.Fatalf("single-point EWMA = %v, want 42", got)
	}

	// ewma_1 = 0.5*20 + 0.5*10 = 15; ewma_2 = 0.5*30 + 0.5*15 = 22.5
	got := ComputeEWMA([]float64{10, 20, 30}, 0.5)
	if math.Abs(got-22.5) > 1e-9 {
		t.Fatalf("EWMA = %v, want 22.5", got)
	}

	// constant series stays put for any alpha
	got = ComputeEWMA([]float64{100, 100, 100, 100}, 0.3)
	if math.Abs(got-100) > 1e-9 {
		t.Fatalf("constant series EWMA = %v, want 100", got)
	}
}

func TestDetectAnomalyUpwardSpike(t *testing.T) {
	history := []float64{100, 100, 100, 100, 100, 100, 100, 100, 100, 100}

	res := DetectAnomaly(130, history, Config{DeviationThreshold: 25})

	if !res.IsAnomaly {
		t.Fatalf("expected anomaly, got %+v", res)
	}
	if res.Direction != domain.DirectionUp {
		t.Errorf("direction = %s, want up", res.Direction)
	}
	if math.Abs(res.DeviationPct-30) > 0.5 {
		t.Errorf("deviation = %v, want ~30", res.DeviationPct)
	}
	if math.Abs(res.Baseline-100) > 1e-9 {
		t.Errorf("baseline = %v, want 100", res.Baseline)
	}
}

func TestDetectAnomalyInsufficientHistory(t *testing.T) {
	res := DetectAnomaly(130, []float64{100, 100}, Config{DeviationThreshold: 25})

	if res.IsAnomaly {
		t.Fatalf("short history must never flag: %+v", res)
	}
	if res.Direction != domain.DirectionStable {
		t.Errorf("direction = %s, want stable", res.Direction)
	}
}

func TestDetectAnomalyDownAndStable(t *testing.T) {
	history := []float64{100, 100, 100, 100, 100, 100}

	down := DetectAnomaly(60, history, Config{})
	if !down.IsAnomaly || down.Direction != domain.DirectionDown {
		t.Errorf("drop to 60: %+v", down)
	}

	stable := DetectAnomaly(102, history, Config{})
	if stable.IsAnomaly || stable.Direction != domain.DirectionStable {
		t.Errorf("wiggle to 102: %+v", stable)
	}

	// inside the threshold but outside the direction band
	mild := DetectAnomaly(115, history, Config{})
	if mild.IsAnomaly {
		t.Errorf("15%% deviation flagged at default threshold: %+v", mild)
	}
	if mild.Direction != domain.DirectionUp {
		t.Errorf("15%% deviation direction = %s, want up", mild.Direction)
	}
}

func TestDetectAnomalyZeroBaseline(t *testing.T) {
	history := []float64{0, 0, 0, 0, 0, 0}

	res := DetectAnomaly(7, history, Config{})
	if !res.IsAnomaly {
		t.Fatalf("nonzero value on zero baseline must flag: %+v", res)
	}
	if res.DeviationPct != 100 || res.Direction != domain.DirectionUp {
		t.Errorf("zero-baseline result: %+v", res)
	}

	flat := DetectAnomaly(0, history, Config{})
	if flat.IsAnomaly || flat.Direction != domain.DirectionStable {
		t.Errorf("zero on zero baseline: %+v", flat)
	}
}

func TestExperimentLiftNeedsMoreData(t *testing.T) {
	res := ComputeExperimentLift(10, 50, 20, 50, Config{})
	if !res.NeedsMoreData {
		t.Fatalf("50 samples per arm should demand more data: %+v", res)
	}
	if res.Significant {
		t.Errorf("insufficient data must never be significant")
	}
}

func TestExperimentLiftSignificantDifference(t *testing.T) {
	// 10% vs 20% on 1000 samples each is decisively significant
	res := ComputeExperimentLift(100, 1000, 200, 1000, Config{})

	if res.NeedsMoreData {
		t.Fatalf("unexpected needs-more-data: %+v", res)
	}
	if !res.Significant {
		t.Fatalf("expected significance: %+v", res)
	}
	if res.PValue >= 0.05 {
		t.Errorf("p = %v, want < 0.05", res.PValue)
	}
	if math.Abs(res.LiftPct-100) > 1e-9 {
		t.Errorf("lift = %v, want 100", res.LiftPct)
	}
	if res.ZScore <= 1.96 {
		t.Errorf("z = %v, want > 1.96", res.ZScore)
	}
}

func TestExperimentLiftNoDifference(t *testing.T) {
	res := ComputeExperimentLift(150, 1000, 150, 1000, Config{})

	if res.Significant {
		t.Fatalf("identical rates flagged significant: %+v", res)
	}
	if res.LiftPct != 0 {
		t.Errorf("lift = %v, want 0", res.LiftPct)
	}
}

func TestExperimentLiftZeroVarianceGuard(t *testing.T) {
	res := ComputeExperimentLift(0, 1000, 0, 1000, Config{})

	if res.Significant {
		t.Fatalf("zero-variance experiment flagged significant: %+v", res)
	}
	if res.PValue != 1 {
		t.Errorf("p = %v, want 1 for untestable data", res.PValue)
	}
}

func TestNormalCDFReferencePoints(t *testing.T) {
	cases := []struct {
		z, want float64
	}{
		{0, 0.5},
		{1.96, 0.9750},
		{-1.96, 0.0250},
		{3, 0.99865},
	}

	for _, tc := range cases {
		got := normalCDF(tc.z)
		if math.Abs(got-tc.want) > 1e-4 {
			t.Errorf("normalCDF(%v) = %v, want %v", tc.z, got, tc.want)
		}
	}
}
