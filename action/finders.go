package action

import (
	"math"

	"github.com/phil-mansfield/gocascade/geom"
	"github.com/phil-mansfield/gocascade/lattice"
	"github.com/phil-mansfield/gocascade/particle"
	"github.com/phil-mansfield/gocascade/random"
)

// Finder discovers candidate actions for one time interval. ds holds
// snapshots of the ensemble at the interval start; returned actions carry
// absolute trigger times inside (t0, t0+dt]. FindFinalActions is invoked
// once at event end, e.g. to force leftover resonances to decay.
type Finder interface {
	FindActionsInCell(ds []particle.Data, t0, dt float64) []*Action
	FindFinalActions(ds []particle.Data, t float64) []*Action
}

// ScatterFinder performs the geometric pairwise collision search. Two
// particles scatter if their closest approach during the step comes nearer
// than the interaction radius of the (formation-scaled) cross section.
type ScatterFinder struct {
	Reg *particle.Registry
	Rng *random.Source

	// Total cross section in fm^2.
	CrossSection float64

	// AllowFormation enables 2 -> 1 resonance formation for pairs with a
	// matching decay branch.
	AllowFormation bool
}

// elasticWeight is the relative weight of the elastic channel against the
// summed spectral weights of the formation candidates.
const elasticWeight = 1.0

func (f *ScatterFinder) FindActionsInCell(
	ds []particle.Data, t0, dt float64,
) []*Action {
	var acts []*Action
	for i := range ds {
		for j := i + 1; j < len(ds); j++ {
			if a := f.tryPair(&ds[i], &ds[j], t0, dt); a != nil {
				acts = append(acts, a)
			}
		}
	}
	return acts
}

func (f *ScatterFinder) FindFinalActions(
	ds []particle.Data, t float64,
) []*Action {
	return nil
}

func formationScale(d *particle.Data, t float64) float64 {
	if d.IsFormed(t) { return 1 }
	return d.XSecScale
}

func (f *ScatterFinder) tryPair(d0, d1 *particle.Data, t0, dt float64) *Action {
	dr := d1.Position.Spatial().Sub(d0.Position.Spatial())
	dv := d1.Velocity().Sub(d0.Velocity())
	dv2 := dv.Norm2()
	if dv2 < 1e-12 { return nil }

	// Time of closest approach relative to the step start.
	tca := -dr.Dot(dv) / dv2
	if tca <= 0 || tca > dt { return nil }

	d2 := dr.Add(dv.Scale(tca)).Norm2()
	sigma := f.CrossSection * formationScale(d0, t0) * formationScale(d1, t0)
	if d2 >= sigma/math.Pi { return nil }

	a := &Action{
		Kind: KindScatter,
		Time: t0 + tca,
		Incoming: []particle.Data{*d0, *d1},
		Process: particle.ProcessElastic,
	}
	if f.AllowFormation {
		f.chooseProcess(a, d0, d1)
	}
	return a
}

// chooseProcess partitions the collision between the elastic channel and
// the compatible resonances, weighting each resonance by its spectral
// function at the pair's invariant mass.
func (f *ScatterFinder) chooseProcess(a *Action, d0, d1 *particle.Data) {
	srts := d0.Momentum.Add(d1.Momentum).Abs()
	candidates := f.Reg.PossibleResonances(d0.Type, d1.Type)

	weights := make([]float64, len(candidates))
	sum := elasticWeight
	for i, res := range candidates {
		if srts <= res.MinMassSpectral() { continue }
		weights[i] = res.SpectralFunction(srts) *
			float64(res.PDG().SpinDegeneracy())
		sum += weights[i]
	}

	r := f.Rng.Uniform(0, sum)
	for i, w := range weights {
		r -= w
		if r <= 0 && w > 0 {
			a.Process = particle.ProcessResonanceFormation
			a.Resonance = candidates[i]
			return
		}
	}
}

// DecayFinder samples a decay time for every resonance from the
// exponential law at its boosted width.
type DecayFinder struct {
	Rng *random.Source
}

func (f *DecayFinder) FindActionsInCell(
	ds []particle.Data, t0, dt float64,
) []*Action {
	var acts []*Action
	for i := range ds {
		rate := ds[i].BoostedDecayRate()
		if rate <= 0 { continue }
		tDec := f.Rng.Exponential(rate)
		if tDec > dt { continue }
		acts = append(acts, &Action{
			Kind: KindDecay,
			Time: t0 + tDec,
			Incoming: []particle.Data{ds[i]},
		})
	}
	return acts
}

// FindFinalActions forces every remaining resonance to decay at time t.
func (f *DecayFinder) FindFinalActions(
	ds []particle.Data, t float64,
) []*Action {
	var acts []*Action
	for i := range ds {
		if ds[i].Type.IsStable() { continue }
		acts = append(acts, &Action{
			Kind: KindDecay,
			Time: t,
			Incoming: []particle.Data{ds[i]},
		})
	}
	return acts
}

// WallFinder detects particles leaving the periodic box [0, L)^3 and
// relocates them to the opposite side.
type WallFinder struct {
	BoxLength float64
}

func (f *WallFinder) FindActionsInCell(
	ds []particle.Data, t0, dt float64,
) []*Action {
	var acts []*Action
	for i := range ds {
		v := ds[i].Velocity()
		x := ds[i].Position.Spatial()

		tMin, axis := math.Inf(1), -1
		for j := 0; j < 3; j++ {
			var tau float64
			switch {
			case v[j] > 0:
				tau = (f.BoxLength - x[j]) / v[j]
			case v[j] < 0:
				tau = -x[j] / v[j]
			default:
				continue
			}
			if tau < tMin {
				tMin, axis = tau, j
			}
		}
		if axis < 0 || tMin > dt { continue }

		var shift geom.Vec
		if v[axis] > 0 {
			shift[axis] = -f.BoxLength
		} else {
			shift[axis] = f.BoxLength
		}
		acts = append(acts, &Action{
			Kind: KindWall,
			Time: t0 + tMin,
			Incoming: []particle.Data{ds[i]},
			Shift: shift,
		})
	}
	return acts
}

func (f *WallFinder) FindFinalActions(
	ds []particle.Data, t float64,
) []*Action {
	return nil
}

// FluidizationFinder hands particles over to a fluid-dynamics layer when
// the local Landau-frame energy density exceeds the threshold. Unformed
// particles are not handed over at once: they are held in a pending queue
// keyed by particle id and fire once the step reaches the scheduled
// fraction of their formation time, whether or not the density still
// exceeds the threshold then.
type FluidizationFinder struct {
	Lat *lattice.Lattice

	// Per-particle background energy density added on top of the lattice
	// read, keyed by particle id.
	Background map[int]float64

	Threshold float64
	MinTime, MaxTime float64
	FormFraction float64

	// The process kinds whose products may fluidize.
	Fluidizable map[particle.ProcessType]bool

	pending map[int]float64
}

func (f *FluidizationFinder) aboveThreshold(d *particle.Data) bool {
	e := f.Background[d.ID]
	if le, ok := f.Lat.EnergyDensityAt(d.Position.Spatial()); ok {
		e += le
	}
	return e >= f.Threshold
}

func (f *FluidizationFinder) FindActionsInCell(
	ds []particle.Data, t0, dt float64,
) []*Action {
	if f.pending == nil { f.pending = map[int]float64{} }

	var acts []*Action
	seen := make(map[int]bool, len(ds))
	for i := range ds {
		d := &ds[i]
		seen[d.ID] = true
		if d.Position[0] < f.MinTime || d.Position[0] > f.MaxTime { continue }

		if ft, ok := f.pending[d.ID]; ok {
			if t0+dt >= ft {
				acts = append(acts, &Action{
					Kind: KindFluidization,
					Time: math.Max(ft, t0),
					Incoming: []particle.Data{*d},
				})
				delete(f.pending, d.ID)
			}
			continue
		}

		if !f.Fluidizable[d.History.Process] { continue }
		if !f.aboveThreshold(d) { continue }

		delay := 0.0
		if d.XSecScale < 1 && !d.IsFormed(t0) {
			delay = math.Max(f.FormFraction*(d.FormationTime-t0), 0)
		}
		if delay <= dt {
			acts = append(acts, &Action{
				Kind: KindFluidization,
				Time: t0 + delay,
				Incoming: []particle.Data{*d},
			})
		} else {
			f.pending[d.ID] = t0 + delay
		}
	}

	// Ids consumed by other actions never come back; drop their entries.
	for id := range f.pending {
		if !seen[id] { delete(f.pending, id) }
	}
	return acts
}

func (f *FluidizationFinder) FindFinalActions(
	ds []particle.Data, t float64,
) []*Action {
	return nil
}
