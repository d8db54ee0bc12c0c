package particle

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/integrate/quad"

	"github.com/phil-mansfield/gocascade/math/interpolate"
)

// DecayClass is the closed set of decay-type models. Width evaluation
// dispatches on it by switch, so a new class cannot be added silently.
type DecayClass int

const (
	// TwoBodyStable: both daughters stable.
	TwoBodyStable DecayClass = iota
	// TwoBodySemistable: exactly one stable daughter.
	TwoBodySemistable
	// TwoBodyUnstable: both daughters are resonances.
	TwoBodyUnstable
	// TwoBodyDilepton: a lepton pair.
	TwoBodyDilepton
	// ThreeBody: ordinary three-body decay, on-shell width.
	ThreeBody
	// ThreeBodyDilepton: Dalitz decay containing a lepton pair.
	ThreeBodyDilepton
)

func (c DecayClass) String() string {
	switch c {
	case TwoBodyStable:
		return "TwoBodyStable"
	case TwoBodySemistable:
		return "TwoBodySemistable"
	case TwoBodyUnstable:
		return "TwoBodyUnstable"
	case TwoBodyDilepton:
		return "TwoBodyDilepton"
	case ThreeBody:
		return "ThreeBody"
	case ThreeBodyDilepton:
		return "ThreeBodyDilepton"
	}
	return fmt.Sprintf("DecayClass(%d)", int(c))
}

func isDilepton(a, b Code) bool {
	return a == -b && a.IsLepton()
}

func hasLeptonPair(codes []Code) bool {
	for i := range codes {
		for j := i + 1; j < len(codes); j++ {
			if isDilepton(codes[i], codes[j]) { return true }
		}
	}
	return false
}

const numTabPoints = 200

// DecayType describes one distinct final state (particle content plus
// orbital angular momentum). Several branches of different mothers may share
// a DecayType.
type DecayType struct {
	class DecayClass
	daughters []*Type
	l int
	lambda float64

	// Lazily built tabulation of the rho(m) integral for the semistable
	// and unstable classes.
	rhoTab *interpolate.Linear
}

// newDecayType classifies the final state. For semistable decays the
// daughter list is rearranged so the stable particle comes first.
func newDecayType(daughters []*Type, l int) (*DecayType, error) {
	d := &DecayType{daughters: daughters, l: l}
	codes := make([]Code, len(daughters))
	for i, t := range daughters { codes[i] = t.pdg }

	switch len(daughters) {
	case 2:
		switch {
		case isDilepton(codes[0], codes[1]):
			d.class = TwoBodyDilepton
		case daughters[0].IsStable() && daughters[1].IsStable():
			d.class = TwoBodyStable
		case daughters[0].IsStable() || daughters[1].IsStable():
			d.class = TwoBodySemistable
			if daughters[1].IsStable() {
				d.daughters = []*Type{daughters[1], daughters[0]}
			}
			if d.daughters[1].BaryonNumber() != 0 {
				d.lambda = 2.0
			} else if d.daughters[1].pdg.IsRho() && d.daughters[0].pdg.IsPion() {
				d.lambda = 0.8
			} else {
				d.lambda = 1.6
			}
		default:
			d.class = TwoBodyUnstable
			d.lambda = 0.6
		}
	case 3:
		if hasLeptonPair(codes) {
			d.class = ThreeBodyDilepton
		} else {
			d.class = ThreeBody
		}
	default:
		return nil, fmt.Errorf(
			"A decay mode needs 2 or 3 final-state particles, got %d.",
			len(daughters),
		)
	}
	return d, nil
}

func (d *DecayType) Class() DecayClass { return d.class }
func (d *DecayType) Daughters() []*Type { return d.daughters }

// AngularMomentum returns the orbital angular momentum L of the decay.
func (d *DecayType) AngularMomentum() int { return d.l }

// Threshold returns the minimal mass a mother needs for this final state.
func (d *DecayType) Threshold() float64 {
	thr := 0.0
	for _, t := range d.daughters { thr += t.MinMassKinematic() }
	return thr
}

// HasDaughters reports whether the final state matches the given species,
// in any order.
func (d *DecayType) HasDaughters(list []*Type) bool {
	if len(list) != len(d.daughters) { return false }
	used := make([]bool, len(list))
outer:
	for _, t := range d.daughters {
		for i, u := range list {
			if !used[i] && t == u {
				used[i] = true
				continue outer
			}
		}
		return false
	}
	return true
}

// rhoStable is the two-body phase-space density for stable daughters.
func (d *DecayType) rhoStable(m float64) float64 {
	pAB := PCM(m, d.daughters[0].mass, d.daughters[1].mass)
	return pAB / m * blattWeisskopfSqr(pAB, d.l)
}

// rho1Integrand weights the phase space of a stable particle against an
// unstable one of running mass m.
func rho1Integrand(srts, m, stableMass float64, res *Type, l int) float64 {
	if srts <= m+stableMass { return 0 }
	pF := PCM(srts, stableMass, m)
	return pF / srts * blattWeisskopfSqr(pF, l) * res.SpectralFunction(m)
}

func rho2Integrand(srts, m1, m2 float64, t1, t2 *Type, l int) float64 {
	if srts <= m1+m2 { return 0 }
	pF := PCM(srts, m1, m2)
	return pF / srts * blattWeisskopfSqr(pF, l) *
		t1.SpectralFunction(m1) * t2.SpectralFunction(m2)
}

// rho returns the mass-dependent phase-space density, tabulating the
// integral over daughter spectral functions on first use.
func (d *DecayType) rho(m float64) float64 {
	switch d.class {
	case TwoBodyStable, TwoBodyDilepton:
		return d.rhoStable(m)
	case TwoBodySemistable:
		if d.rhoTab == nil {
			stable, res := d.daughters[0], d.daughters[1]
			interval := math.Max(2, 10*res.width)
			d.rhoTab = tabulate(d.Threshold(), interval, func(srts float64) float64 {
				return quad.Fixed(func(m float64) float64 {
					return rho1Integrand(srts, m, stable.mass, res, d.l)
				}, res.MinMassKinematic(), srts-stable.mass, 40, nil, 0)
			})
		}
		return d.rhoTab.Eval(m)
	case TwoBodyUnstable:
		if d.rhoTab == nil {
			t1, t2 := d.daughters[0], d.daughters[1]
			interval := math.Max(2, 10*(t1.width+t2.width))
			m1Min, m2Min := t1.MinMassKinematic(), t2.MinMassKinematic()
			d.rhoTab = tabulate(d.Threshold(), interval, func(srts float64) float64 {
				return quad.Fixed(func(m1 float64) float64 {
					return quad.Fixed(func(m2 float64) float64 {
						return rho2Integrand(srts, m1, m2, t1, t2, d.l)
					}, m2Min, srts-m1Min, 24, nil, 0)
				}, m1Min, srts-m2Min, 24, nil, 0)
			})
		}
		return d.rhoTab.Eval(m)
	}
	panic("No phase-space density for class " + d.class.String())
}

func tabulate(x0, interval float64, f func(float64) float64) *interpolate.Linear {
	dx := interval / (numTabPoints - 1)
	vals := make([]float64, numTabPoints)
	for i := range vals {
		vals[i] = f(x0 + float64(i)*dx)
	}
	return interpolate.NewUniformLinear(x0, dx, vals)
}

// Width returns the mass-dependent partial width of this final state for a
// mother with pole mass m0 and partial width G0 at the pole, evaluated at
// actual mass m.
func (d *DecayType) Width(m0, g0, m float64) float64 {
	if m <= d.Threshold() { return 0 }
	switch d.class {
	case TwoBodyStable:
		return g0 * d.rho(m) / d.rho(m0)
	case TwoBodySemistable, TwoBodyUnstable:
		return g0 * d.rho(m) / d.rho(m0) *
			postFormFactorSqr(m, m0, d.Threshold(), d.lambda)
	case TwoBodyDilepton:
		// Li/Ko dilepton width.
		ml := d.daughters[0].mass
		r := ml / m * ml / m
		c := m0 / m * m0 / m * m0 / m
		return g0 * c * math.Sqrt(1-4*r) * (1 + 2*r)
	case ThreeBody, ThreeBodyDilepton:
		return g0 // on-shell width
	}
	panic("Unhandled decay class " + d.class.String())
}

// Branch couples a DecayType to its branching weight for one mother.
type Branch struct {
	dt *DecayType
	weight float64
}

func (b *Branch) Type() *DecayType { return b.dt }
func (b *Branch) Weight() float64 { return b.weight }

// Threshold is shorthand for the branch's decay-type threshold.
func (b *Branch) Threshold() float64 { return b.dt.Threshold() }
