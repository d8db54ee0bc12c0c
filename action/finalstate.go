package action

import (
	"fmt"

	"github.com/phil-mansfield/gocascade/geom"
	"github.com/phil-mansfield/gocascade/particle"
	"github.com/phil-mansfield/gocascade/random"
)

// streamed returns a copy of the snapshot advanced to time t.
func streamed(d particle.Data, t float64) particle.Data {
	d.Position = geom.Stream(d.Position, d.Velocity(), t)
	return d
}

// GenerateFinalState samples the outgoing particles of the action. It is
// deferred until after the staleness check so that no sampling work is
// spent on discarded candidates. A returned error means the sampled
// kinematics left no valid final state; the caller discards the action.
func (a *Action) GenerateFinalState(
	reg *particle.Registry, rng *random.Source,
) error {
	switch a.Kind {
	case KindDecay:
		return a.generateDecay(rng)
	case KindScatter:
		switch a.Process {
		case particle.ProcessElastic:
			a.generateElastic(rng)
			return nil
		case particle.ProcessResonanceFormation:
			return a.generateFormation()
		}
		return fmt.Errorf("Cannot generate a %s scatter.", a.Process)
	case KindWall:
		a.generateWall()
		return nil
	case KindFluidization:
		// The particle leaves the hadronic ensemble.
		a.Outgoing = nil
		return nil
	}
	return fmt.Errorf("Cannot generate final state for kind %s.", a.Kind)
}

func (a *Action) generateDecay(rng *random.Source) error {
	mother := streamed(a.Incoming[0], a.Time)
	m := mother.EffectiveMass()
	ty := mother.Type

	total := ty.TotalWidth(m)
	if total <= 0 {
		return fmt.Errorf("No open decay channel for %s at mass %g.",
			ty.Name(), m)
	}
	branches := ty.Branches()
	branch := branches[len(branches)-1]
	r := rng.Uniform(0, total)
	for _, b := range branches {
		r -= ty.PartialWidth(m, b)
		if r <= 0 {
			branch = b
			break
		}
	}

	daughters := branch.Type().Daughters()
	l := branch.Type().AngularMomentum()
	history := particle.History{
		Process: particle.ProcessDecay,
		Collisions: mother.History.Collisions + 1,
	}

	switch len(daughters) {
	case 2:
		d0, d1 := daughters[0], daughters[1]
		var m0, m1 float64
		var err error
		switch {
		case d0.IsStable() && d1.IsStable():
			m0, m1 = d0.Mass(), d1.Mass()
		case d0.IsStable():
			m0 = d0.Mass()
			m1, err = d1.SampleMass(rng, m0, m, l)
		case d1.IsStable():
			m1 = d1.Mass()
			m0, err = d0.SampleMass(rng, m1, m, l)
		default:
			m0, m1, err = d0.SampleMasses(rng, d1, m, l)
		}
		if err != nil { return err }

		p0, p1 := twoBodyMomenta(rng, m, m0, m1, mother.Momentum.Velocity())
		a.Outgoing = []particle.Data{
			newProduct(d0, p0, mother.Position, history),
			newProduct(d1, p1, mother.Position, history),
		}
		return nil
	case 3:
		return a.generateThreeBody(rng, mother, daughters, history)
	}
	return fmt.Errorf("Cannot decay into %d particles.", len(daughters))
}

// twoBodyMomenta splits a system of invariant mass m moving with velocity
// beta into two on-shell momenta with an isotropic direction in the rest
// frame.
func twoBodyMomenta(
	rng *random.Source, m, m0, m1 float64, beta geom.Vec,
) (geom.FourVec, geom.FourVec) {
	p := particle.PCM(m, m0, m1)
	dir := rng.Direction()
	back := beta.Scale(-1)
	p0 := geom.OnShell(m0, dir.Scale(p)).Boost(back)
	p1 := geom.OnShell(m1, dir.Scale(-p)).Boost(back)
	return p0, p1
}

func newProduct(
	ty *particle.Type, p geom.FourVec, pos geom.FourVec, h particle.History,
) particle.Data {
	return particle.Data{
		Type: ty, Momentum: p, Position: pos,
		FormationTime: pos[0], XSecScale: 1, History: h,
	}
}

// generateThreeBody splits the decay into a two-body decay to daughter 2
// plus a (0, 1) subsystem whose invariant mass is sampled from the product
// of the two phase-space momenta. Daughters enter on-shell at their pole
// masses.
func (a *Action) generateThreeBody(
	rng *random.Source, mother particle.Data,
	daughters []*particle.Type, history particle.History,
) error {
	m := mother.EffectiveMass()
	m0, m1, m2 := daughters[0].Mass(), daughters[1].Mass(), daughters[2].Mass()
	lo, hi := m0+m1, m-m2
	if hi <= lo {
		return fmt.Errorf("No phase space for %s three-body decay at mass %g.",
			mother.Type.Name(), m)
	}

	weight := func(m01 float64) float64 {
		return particle.PCM(m, m01, m2) * particle.PCM(m01, m0, m1)
	}
	max := 0.0
	for i := 0; i <= 50; i++ {
		w := weight(lo + (hi-lo)*float64(i)/50)
		if w > max { max = w }
	}
	max *= 1.05

	m01 := 0.0
	for iter := 0; ; iter++ {
		if iter >= 1000*1000 {
			return fmt.Errorf("Three-body mass sampling for %s did not "+
				"converge.", mother.Type.Name())
		}
		m01 = rng.Uniform(lo, hi)
		if weight(m01) >= rng.Uniform(0, max) { break }
	}

	// Mother -> (01) + 2, then (01) -> 0 + 1.
	pSub, p2 := twoBodyMomenta(rng, m, m01, m2, mother.Momentum.Velocity())
	p0, p1 := twoBodyMomenta(rng, m01, m0, m1, pSub.Velocity())

	a.Outgoing = []particle.Data{
		newProduct(daughters[0], p0, mother.Position, history),
		newProduct(daughters[1], p1, mother.Position, history),
		newProduct(daughters[2], p2, mother.Position, history),
	}
	return nil
}

// generateElastic exchanges momentum in the center-of-mass frame: the
// magnitudes and masses stay, the direction is resampled isotropically.
func (a *Action) generateElastic(rng *random.Source) {
	in0 := streamed(a.Incoming[0], a.Time)
	in1 := streamed(a.Incoming[1], a.Time)

	total := in0.Momentum.Add(in1.Momentum)
	beta := total.Velocity()
	pAbs := in0.Momentum.Boost(beta).Spatial().Norm()

	dir := rng.Direction()
	back := beta.Scale(-1)
	out0, out1 := in0, in1
	out0.Momentum = geom.OnShell(in0.EffectiveMass(), dir.Scale(pAbs)).Boost(back)
	out1.Momentum = geom.OnShell(in1.EffectiveMass(), dir.Scale(-pAbs)).Boost(back)
	for _, out := range []*particle.Data{&out0, &out1} {
		out.History.Process = particle.ProcessElastic
		out.History.Collisions++
	}
	a.Outgoing = []particle.Data{out0, out1}
}

// generateFormation fuses the incoming pair into the resonance chosen at
// discovery. The product carries the summed four-momentum and sits at the
// midpoint between the incoming positions.
func (a *Action) generateFormation() error {
	in0 := streamed(a.Incoming[0], a.Time)
	in1 := streamed(a.Incoming[1], a.Time)

	total := in0.Momentum.Add(in1.Momentum)
	mass := total.Abs()
	if mass < a.Resonance.MinMassSpectral() {
		return fmt.Errorf("Pair mass %g below the spectral support of %s.",
			mass, a.Resonance.Name())
	}

	mid := in0.Position.Add(in1.Position).Scale(0.5)
	collisions := in0.History.Collisions
	if in1.History.Collisions > collisions {
		collisions = in1.History.Collisions
	}
	a.Outgoing = []particle.Data{{
		Type: a.Resonance, Momentum: total, Position: mid,
		FormationTime: mid[0], XSecScale: 1,
		History: particle.History{
			Process: particle.ProcessResonanceFormation,
			Collisions: collisions + 1,
		},
	}}
	return nil
}

// generateWall re-enters the particle on the opposite side of the box.
// Momentum and formation state are untouched.
func (a *Action) generateWall() {
	out := streamed(a.Incoming[0], a.Time)
	for j := 0; j < 3; j++ {
		out.Position[j+1] += a.Shift[j]
	}
	out.History.Process = particle.ProcessWall
	a.Outgoing = []particle.Data{out}
}
