package bandit

import (
	"math"
	"math/rand"
)

// Sampler is the random source behind every strategy. Tests inject a
// deterministic implementation to pin down selection outcomes.
type Sampler interface {
	Float64() float64
	NormFloat64() float64
	Intn(n int) int
}

type defaultSampler struct{}

func (defaultSampler) Float64() float64     { return rand.Float64() }
func (defaultSampler) NormFloat64() float64 { return rand.NormFloat64() }
func (defaultSampler) Intn(n int) int       { return rand.Intn(n) }

// DefaultSampler uses the shared math/rand source.
func DefaultSampler() Sampler {
	return defaultSampler{}
}

type seededSampler struct {
	r *rand.Rand
}

func (s *seededSampler) Float64() float64     { return s.r.Float64() }
func (s *seededSampler) NormFloat64() float64 { return s.r.NormFloat64() }
func (s *seededSampler) Intn(n int) int       { return s.r.Intn(n) }

// SeededSampler is reproducible. Not safe for concurrent use.
func SeededSampler(seed int64) Sampler {
	return &seededSampler{r: rand.New(rand.NewSource(seed))}
}

// sampleGamma draws from Gamma(shape, 1) with the Marsaglia-Tsang
// rejection method. Shapes below 1 go through the boost identity
// Gamma(shape) = Gamma(1+shape) * U^(1/shape).
func sampleGamma(s Sampler, shape float64) float64 {
	if shape <= 0 {
		return 0
	}
	if shape < 1 {
		u := s.Float64()
		if u == 0 {
			u = math.SmallestNonzeroFloat64
		}
		return sampleGamma(s, 1+shape) * math.Pow(u, 1/shape)
	}

	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9*d)

	for {
		x := s.NormFloat64()
		v := 1 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v

		u := s.Float64()
		if u < 1-0.0331*x*x*x*x {
			return d * v
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v
		}
	}
}

// sampleBeta draws from Beta(a, b) as Ga/(Ga+Gb).
func sampleBeta(s Sampler, a, b float64) float64 {
	ga := sampleGamma(s, a)
	gb := sampleGamma(s, b)

	sum := ga + gb
	if sum == 0 {
		return 0.5
	}
	return ga / sum
}
