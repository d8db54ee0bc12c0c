package particle

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/integrate/quad"

	"github.com/phil-mansfield/gocascade/random"
)

// Iteration caps on the self-tuning rejection samplers. The adaptive
// maximum is empirical, so convergence of the correction loop is assumed
// but not guaranteed; exceeding a cap is reported as a recoverable error
// instead of spinning forever.
const (
	maxAdaptIters = 100
	maxRejectIters = 1000 * 1000
)

// PartialWidth returns the mass-dependent width of a single branch at mass
// m. Below the branch threshold it is exactly 0.
func (t *Type) PartialWidth(m float64, b *Branch) float64 {
	if m < b.Threshold() { return 0 }
	return b.dt.Width(t.mass, t.width*b.weight, m)
}

// TotalWidth sums the partial widths of all branches at mass m. Sums below
// the width cutoff are floored to 0 to avoid spurious long tails.
func (t *Type) TotalWidth(m float64) float64 {
	if t.IsStable() { return 0 }
	w := 0.0
	for _, b := range t.modes {
		w += t.PartialWidth(m, b)
	}
	if w < WidthCutoff { return 0 }
	return w
}

// MinMassKinematic returns the smallest mass allowed by kinematics: the
// pole mass for stable species, otherwise the lowest branch threshold.
// Memoized.
func (t *Type) MinMassKinematic() float64 {
	if t.minMassKin < 0 {
		if t.IsStable() {
			t.minMassKin = t.mass
		} else {
			t.minMassKin = math.Inf(1)
			for _, b := range t.modes {
				t.minMassKin = math.Min(t.minMassKin, b.Threshold())
			}
		}
	}
	return t.minMassKin
}

// spectralNoNorm is the relativistic Breit-Wigner with mass-dependent width
// and without the normalization factor.
func (t *Type) spectralNoNorm(m float64) float64 {
	w := t.TotalWidth(m)
	if w < WidthCutoff { return 0 }
	return breitWigner(m, t.mass, w)
}

// SpectralFunction returns the normalized spectral function at mass m. The
// normalization is computed once per species by integrating the
// unnormalized shape over the half-infinite mass range, using the
// substitution m = pole + width*tan(x) to map the tail onto a finite
// interval. For stable species the spectral weight is concentrated at the
// pole and this function returns 0 everywhere.
func (t *Type) SpectralFunction(m float64) float64 {
	if t.IsStable() { return 0 }
	if t.normFactor < 0 {
		xMin := math.Atan((t.MinMassKinematic() - t.mass) / t.width)
		integral := quad.Fixed(func(x float64) float64 {
			tanx := math.Tan(x)
			mx := t.mass + t.width*tanx
			jacobian := t.width * (1 + tanx*tanx)
			return t.spectralNoNorm(mx) * jacobian
		}, xMin, math.Pi/2, 200, nil, 0)
		t.normFactor = 1 / integral
	}
	return t.normFactor * t.spectralNoNorm(m)
}

// SpectralFunctionSimple is the nonrelativistic Breit-Wigner with the width
// frozen at its pole value. It serves as the proposal density of the mass
// samplers.
func (t *Type) SpectralFunctionSimple(m float64) float64 {
	return breitWignerNonRel(m, t.mass, t.width)
}

// MinMassSpectral returns the smallest mass with non-negligible spectral
// weight. If the spectral function at the kinematic minimum is already
// non-negligible the two coincide; otherwise the edge is located by an
// upward scan followed by bisection. Memoized.
func (t *Type) MinMassSpectral() float64 {
	if t.minMassSpec < 0 {
		t.minMassSpec = t.MinMassKinematic()
		if !t.IsStable() &&
			t.SpectralFunction(t.MinMassKinematic()) < ReallySmall {
			const mStep = 0.01
			var right float64
			for i := 0; ; i++ {
				right = t.MinMassKinematic() + mStep*float64(i)
				if t.SpectralFunction(right) > ReallySmall { break }
			}
			const precision = 1e-6
			left := right - mStep
			for right-left > precision {
				mid := (left + right) / 2
				if t.SpectralFunction(mid) > ReallySmall {
					right = mid
				} else {
					left = mid
				}
			}
			t.minMassSpec = right
		}
	}
	return t.minMassSpec
}

// SampleMass samples the invariant mass of this resonance in a two-body
// final state with a stable partner of mass massStable, total energy
// cmsEnergy and orbital angular momentum L. Proposals come from a
// truncated Cauchy around the pole; the acceptance weight is the product
// of the center-of-mass momentum, the Blatt-Weisskopf barrier and the
// ratio of the full to the pole-width spectral function. The assumed
// weight maximum is empirical: whenever an accepted sample exceeds it, the
// per-species scale factor grows and the sampling is repeated.
func (t *Type) SampleMass(
	rng *random.Source, massStable, cmsEnergy float64, l int,
) (float64, error) {
	// Stay strictly inside the kinematic boundary.
	maxMass := math.Nextafter(cmsEnergy-massStable, 0)
	minMass := t.MinMassSpectral()
	if maxMass <= minMass {
		return 0, fmt.Errorf(
			"No phase space left for %s: energy %g with partner mass %g.",
			t.name, cmsEnergy, massStable,
		)
	}

	// Largest center-of-mass momentum, reached at the smallest mass.
	pcmMax := PCM(cmsEnergy, massStable, minMass)
	blwMax := pcmMax * blattWeisskopfSqr(pcmMax, l)
	// The spectral ratio usually peaks at the largest mass, but not
	// always; maxFactor1 absorbs the difference.
	sfRatioMax := math.Max(1, t.SpectralFunction(maxMass)/
		t.SpectralFunctionSimple(maxMass))

	for iter := 0; iter < maxAdaptIters; iter++ {
		max := blwMax * sfRatioMax * t.maxFactor1
		massRes, val := 0.0, 0.0
		for inner := 0; ; inner++ {
			if inner >= maxRejectIters {
				return 0, fmt.Errorf(
					"Rejection sampling for %s did not accept within %d draws.",
					t.name, maxRejectIters,
				)
			}
			massRes = rng.Cauchy(t.mass, t.width/2, minMass, maxMass)
			pcm := PCM(cmsEnergy, massStable, massRes)
			blw := pcm * blattWeisskopfSqr(pcm, l)
			q := t.SpectralFunction(massRes) / t.SpectralFunctionSimple(massRes)
			val = q * blw
			if val >= rng.Uniform(0, max) { break }
		}
		if val > max {
			// The assumed maximum was too small: grow it and resample.
			t.maxFactor1 *= val / max
			continue
		}
		return massRes, nil
	}
	return 0, fmt.Errorf(
		"Adaptive maximum for %s did not settle within %d corrections.",
		t.name, maxAdaptIters,
	)
}

// SampleMasses samples the invariant masses of two simultaneously produced
// resonances, t and t2, sharing the total energy cmsEnergy. The adaptation
// state is independent of the single-resonance sampler's.
func (t *Type) SampleMasses(
	rng *random.Source, t2 *Type, cmsEnergy float64, l int,
) (m1, m2 float64, err error) {
	maxMass1 := math.Nextafter(cmsEnergy-t2.MinMassSpectral(), 0)
	maxMass2 := math.Nextafter(cmsEnergy-t.MinMassSpectral(), 0)
	if maxMass1 <= t.MinMassSpectral() || maxMass2 <= t2.MinMassSpectral() {
		return 0, 0, fmt.Errorf(
			"No phase space left for %s + %s at energy %g.",
			t.name, t2.name, cmsEnergy,
		)
	}
	pcmMax := PCM(cmsEnergy, t.MinMassSpectral(), t2.MinMassSpectral())
	blwMax := pcmMax * blattWeisskopfSqr(pcmMax, l)

	for iter := 0; iter < maxAdaptIters; iter++ {
		max := blwMax * t.maxFactor2
		val := 0.0
		for inner := 0; ; inner++ {
			if inner >= maxRejectIters {
				return 0, 0, fmt.Errorf(
					"Rejection sampling for %s + %s did not accept within %d draws.",
					t.name, t2.name, maxRejectIters,
				)
			}
			m1 = rng.Cauchy(t.mass, t.width/2, t.MinMassSpectral(), maxMass1)
			m2 = rng.Cauchy(t2.mass, t2.width/2, t2.MinMassSpectral(), maxMass2)
			pcm := PCM(cmsEnergy, m1, m2)
			blw := pcm * blattWeisskopfSqr(pcm, l)
			q1 := t.SpectralFunction(m1) / t.SpectralFunctionSimple(m1)
			q2 := t2.SpectralFunction(m2) / t2.SpectralFunctionSimple(m2)
			val = q1 * q2 * blw
			if val >= rng.Uniform(0, max) { break }
		}
		if val > max {
			t.maxFactor2 *= val / max
			continue
		}
		return m1, m2, nil
	}
	return 0, 0, fmt.Errorf(
		"Adaptive maximum for %s + %s did not settle within %d corrections.",
		t.name, t2.name, maxAdaptIters,
	)
}

// PossibleResonances lists the unstable species that conserve charge,
// baryon number and strangeness and own a decay branch into exactly {a, b}.
// Results are memoized per unordered pair.
func (reg *Registry) PossibleResonances(a, b *Type) []*Type {
	if reg.resonanceCache == nil {
		reg.resonanceCache = map[[2]Code][]*Type{}
	}
	key := [2]Code{a.pdg, b.pdg}
	if b.pdg < a.pdg { key = [2]Code{b.pdg, a.pdg} }
	if res, ok := reg.resonanceCache[key]; ok { return res }

	pair := []*Type{a, b}
	var res []*Type
	for _, r := range reg.types {
		if r.IsStable() || r == a || r == b { continue }
		if r.Charge() != a.Charge()+b.Charge() { continue }
		if r.BaryonNumber() != a.BaryonNumber()+b.BaryonNumber() { continue }
		if r.Strangeness() != a.Strangeness()+b.Strangeness() { continue }
		for _, mode := range r.modes {
			if mode.dt.HasDaughters(pair) {
				res = append(res, r)
				break
			}
		}
	}
	reg.resonanceCache[key] = res
	return res
}
