/*package random is the randomness service used by all sampling in gocascade.

Every ensemble owns exactly one Source, so runs are reproducible for a fixed
seed regardless of how many ensembles evolve in parallel.
*/
package random

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/phil-mansfield/gocascade/geom"
)

// Source generates all the variates needed by mass, angle and time sampling.
type Source struct {
	rng *rand.Rand
	src rand.Source
}

// NewSource creates a deterministic Source from the given seed.
func NewSource(seed uint64) *Source {
	src := rand.NewSource(seed)
	return &Source{rng: rand.New(src), src: src}
}

// Canonical returns a uniform variate in [0, 1).
func (s *Source) Canonical() float64 { return s.rng.Float64() }

// Uniform returns a uniform variate in [min, max).
func (s *Source) Uniform(min, max float64) float64 {
	return min + (max-min)*s.rng.Float64()
}

// UniformInt returns a uniform integer in [0, n).
func (s *Source) UniformInt(n int) int { return s.rng.Intn(n) }

// Cauchy draws from a Cauchy (nonrelativistic Breit-Wigner) distribution
// with the given pole and width, truncated to [min, max]. The inverse CDF of
// the truncated distribution is exact, so no rejection is needed here.
func (s *Source) Cauchy(pole, width, min, max float64) float64 {
	uMin := math.Atan((min - pole) / width)
	uMax := math.Atan((max - pole) / width)
	u := s.Uniform(uMin, uMax)
	return pole + width*math.Tan(u)
}

// Exponential draws from an exponential distribution with the given rate.
func (s *Source) Exponential(rate float64) float64 {
	return distuv.Exponential{Rate: rate, Src: s.src}.Rand()
}

// PowerLaw draws from a power-law distribution x^n on [xMin, xMax]. n may be
// negative but must not equal -1.
func (s *Source) PowerLaw(n, xMin, xMax float64) float64 {
	np1 := n + 1
	t := s.Uniform(math.Pow(xMin, np1), math.Pow(xMax, np1))
	return math.Pow(t, 1/np1)
}

// Direction returns an isotropically distributed unit three-vector.
func (s *Source) Direction() geom.Vec {
	cosTheta := s.Uniform(-1, 1)
	sinTheta := math.Sqrt(1 - cosTheta*cosTheta)
	phi := s.Uniform(0, 2*math.Pi)
	return geom.Vec{
		sinTheta * math.Cos(phi), sinTheta * math.Sin(phi), cosTheta,
	}
}
