package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/gocascade/geom"
	"github.com/phil-mansfield/gocascade/lattice"
	"github.com/phil-mansfield/gocascade/particle"
	"github.com/phil-mansfield/gocascade/random"
)

func snapshot(
	ty *particle.Type, id int, m float64, p, x geom.Vec, t float64,
) particle.Data {
	d := particle.NewData(ty, m, p, geom.NewFourVec(t, x[0], x[1], x[2]))
	d.ID = id
	return d
}

func TestScatterFinderHeadOn(t *testing.T) {
	reg := testRegistry(t)
	proton := reg.MustFind(2212)
	f := &ScatterFinder{
		Reg: reg, Rng: random.NewSource(1), CrossSection: 3,
	}

	ds := []particle.Data{
		snapshot(proton, 0, proton.Mass(), geom.Vec{0.5, 0, 0},
			geom.Vec{-1, 0, 0}, 0),
		snapshot(proton, 1, proton.Mass(), geom.Vec{-0.5, 0, 0},
			geom.Vec{1, 0, 0}, 0),
	}
	acts := f.FindActionsInCell(ds, 0, 5)

	require.Len(t, acts, 1)
	a := acts[0]
	assert.Equal(t, KindScatter, a.Kind)
	assert.Equal(t, particle.ProcessElastic, a.Process)
	// Head-on: closest approach at the meeting point.
	v := ds[0].Velocity()[0]
	assert.InDelta(t, 1/v, a.Time, 1e-9)
	assert.Len(t, a.Incoming, 2)
}

func TestScatterFinderMisses(t *testing.T) {
	reg := testRegistry(t)
	proton := reg.MustFind(2212)
	f := &ScatterFinder{
		Reg: reg, Rng: random.NewSource(1), CrossSection: 3,
	}

	// Receding pair: the closest approach lies in the past.
	ds := []particle.Data{
		snapshot(proton, 0, proton.Mass(), geom.Vec{-0.5, 0, 0},
			geom.Vec{-1, 0, 0}, 0),
		snapshot(proton, 1, proton.Mass(), geom.Vec{0.5, 0, 0},
			geom.Vec{1, 0, 0}, 0),
	}
	assert.Empty(t, f.FindActionsInCell(ds, 0, 5))

	// Approaching, but with an impact parameter far above the radius.
	ds = []particle.Data{
		snapshot(proton, 0, proton.Mass(), geom.Vec{0.5, 0, 0},
			geom.Vec{-1, 10, 0}, 0),
		snapshot(proton, 1, proton.Mass(), geom.Vec{-0.5, 0, 0},
			geom.Vec{1, 0, 0}, 0),
	}
	assert.Empty(t, f.FindActionsInCell(ds, 0, 5))

	// Too late for this step.
	ds = []particle.Data{
		snapshot(proton, 0, proton.Mass(), geom.Vec{0.5, 0, 0},
			geom.Vec{-1, 0, 0}, 0),
		snapshot(proton, 1, proton.Mass(), geom.Vec{-0.5, 0, 0},
			geom.Vec{1, 0, 0}, 0),
	}
	assert.Empty(t, f.FindActionsInCell(ds, 0, 0.5))
}

func TestScatterFinderFormation(t *testing.T) {
	reg := testRegistry(t)
	eta := reg.MustFind(221)
	f := &ScatterFinder{
		Reg: reg, Rng: random.NewSource(2), CrossSection: 3,
		AllowFormation: true,
	}

	// An η pair meeting right at the σ pole mass.
	ds := []particle.Data{
		snapshot(eta, 0, 0.4, geom.Vec{0.3, 0, 0}, geom.Vec{-1, 0, 0}, 0),
		snapshot(eta, 1, 0.4, geom.Vec{-0.3, 0, 0}, geom.Vec{1, 0, 0}, 0),
	}

	formations, elastics := 0, 0
	for i := 0; i < 100; i++ {
		acts := f.FindActionsInCell(ds, 0, 5)
		require.Len(t, acts, 1)
		switch acts[0].Process {
		case particle.ProcessResonanceFormation:
			formations++
			assert.Equal(t, "σ", acts[0].Resonance.Name())
		case particle.ProcessElastic:
			elastics++
		}
	}
	// At the pole the spectral weight dominates, but both channels stay
	// open.
	assert.Greater(t, formations, elastics)
	assert.Greater(t, elastics, 0)
}

func TestDecayFinder(t *testing.T) {
	reg := testRegistry(t)
	sigma, err := reg.FindName("σ")
	require.NoError(t, err)
	f := &DecayFinder{Rng: random.NewSource(6)}

	ds := []particle.Data{
		snapshot(sigma, 0, 1.0, geom.Vec{}, geom.Vec{}, 0),
		snapshot(reg.MustFind(2212), 1, 0.938, geom.Vec{}, geom.Vec{}, 0),
	}
	acts := f.FindActionsInCell(ds, 0, 100)

	require.Len(t, acts, 1)
	assert.Equal(t, KindDecay, acts[0].Kind)
	assert.Equal(t, 0, acts[0].Incoming[0].ID)
	assert.Greater(t, acts[0].Time, 0.0)
	assert.LessOrEqual(t, acts[0].Time, 100.0)

	final := f.FindFinalActions(ds, 42.0)
	require.Len(t, final, 1)
	assert.Equal(t, 42.0, final[0].Time)
}

func TestWallFinder(t *testing.T) {
	reg := testRegistry(t)
	proton := reg.MustFind(2212)
	f := &WallFinder{BoxLength: 1}

	d := snapshot(proton, 0, proton.Mass(), geom.Vec{0.5, 0, 0},
		geom.Vec{0.9, 0.5, 0.5}, 0)
	acts := f.FindActionsInCell([]particle.Data{d}, 0, 1)

	require.Len(t, acts, 1)
	a := acts[0]
	assert.Equal(t, KindWall, a.Kind)
	v := d.Velocity()[0]
	assert.InDelta(t, 0.1/v, a.Time, 1e-9)
	assert.Equal(t, geom.Vec{-1, 0, 0}, a.Shift)

	require.NoError(t, a.GenerateFinalState(reg, random.NewSource(1)))
	out := a.Outgoing[0]
	assert.InDelta(t, 0, out.Position[1], 1e-9)
	assert.Equal(t, d.Momentum, out.Momentum)

	// A slow particle stays inside this step.
	d = snapshot(proton, 1, proton.Mass(), geom.Vec{0.01, 0, 0},
		geom.Vec{0.5, 0.5, 0.5}, 0)
	assert.Empty(t, f.FindActionsInCell([]particle.Data{d}, 0, 1))
}

func emptyLattice(t *testing.T) *lattice.Lattice {
	lat, err := lattice.New(geom.Vec{}, geom.Vec{1, 1, 1}, [3]int{4, 4, 4}, false)
	require.NoError(t, err)
	lat.Update()
	return lat
}

func TestFluidizationFinderImmediate(t *testing.T) {
	reg := testRegistry(t)
	proton := reg.MustFind(2212)
	f := &FluidizationFinder{
		Lat: emptyLattice(t),
		Background: map[int]float64{0: 1.0},
		Threshold: 0.5, MinTime: 0, MaxTime: 100,
		FormFraction: 0.5,
		Fluidizable: map[particle.ProcessType]bool{
			particle.ProcessElastic: true,
		},
	}

	d := snapshot(proton, 0, proton.Mass(), geom.Vec{}, geom.Vec{1, 1, 1}, 0)
	d.History.Process = particle.ProcessElastic
	acts := f.FindActionsInCell([]particle.Data{d}, 0, 1)

	require.Len(t, acts, 1)
	assert.Equal(t, KindFluidization, acts[0].Kind)
	assert.Equal(t, 0.0, acts[0].Time)
}

func TestFluidizationFinderSkips(t *testing.T) {
	reg := testRegistry(t)
	proton := reg.MustFind(2212)
	fluidizable := map[particle.ProcessType]bool{particle.ProcessElastic: true}

	d := snapshot(proton, 0, proton.Mass(), geom.Vec{}, geom.Vec{1, 1, 1}, 0)
	d.History.Process = particle.ProcessElastic

	// Below threshold.
	f := &FluidizationFinder{
		Lat: emptyLattice(t), Background: map[int]float64{0: 0.2},
		Threshold: 0.5, MinTime: 0, MaxTime: 100, Fluidizable: fluidizable,
	}
	assert.Empty(t, f.FindActionsInCell([]particle.Data{d}, 0, 1))

	// Ineligible originating process.
	f = &FluidizationFinder{
		Lat: emptyLattice(t), Background: map[int]float64{0: 1.0},
		Threshold: 0.5, MinTime: 0, MaxTime: 100,
		Fluidizable: map[particle.ProcessType]bool{particle.ProcessDecay: true},
	}
	assert.Empty(t, f.FindActionsInCell([]particle.Data{d}, 0, 1))

	// Outside the active time window.
	f = &FluidizationFinder{
		Lat: emptyLattice(t), Background: map[int]float64{0: 1.0},
		Threshold: 0.5, MinTime: 10, MaxTime: 100, Fluidizable: fluidizable,
	}
	assert.Empty(t, f.FindActionsInCell([]particle.Data{d}, 0, 1))
}

func TestFluidizationFinderPendingQueue(t *testing.T) {
	reg := testRegistry(t)
	proton := reg.MustFind(2212)
	f := &FluidizationFinder{
		Lat: emptyLattice(t),
		Background: map[int]float64{0: 1.0},
		Threshold: 0.5, MinTime: 0, MaxTime: 100,
		FormFraction: 0.5,
		Fluidizable: map[particle.ProcessType]bool{
			particle.ProcessElastic: true,
		},
	}

	// Still forming: half the formation delay is 5, beyond this step.
	d := snapshot(proton, 0, proton.Mass(), geom.Vec{}, geom.Vec{1, 1, 1}, 0)
	d.History.Process = particle.ProcessElastic
	d.XSecScale = 0.5
	d.FormationTime = 10

	assert.Empty(t, f.FindActionsInCell([]particle.Data{d}, 0, 1))

	// Later steps keep the particle queued until the stored time falls
	// inside the step, even though the density is no longer probed.
	f.Background[0] = 0
	d.Position[0] = 4
	acts := f.FindActionsInCell([]particle.Data{d}, 4, 1.5)
	require.Len(t, acts, 1)
	assert.Equal(t, 5.0, acts[0].Time)

	// The queue entry is consumed.
	assert.Empty(t, f.FindActionsInCell([]particle.Data{d}, 6, 1))
}

func TestFluidizationFinderPrunesDeadIds(t *testing.T) {
	reg := testRegistry(t)
	proton := reg.MustFind(2212)
	f := &FluidizationFinder{
		Lat: emptyLattice(t),
		Background: map[int]float64{0: 1.0},
		Threshold: 0.5, MinTime: 0, MaxTime: 100,
		FormFraction: 0.5,
		Fluidizable: map[particle.ProcessType]bool{
			particle.ProcessElastic: true,
		},
	}

	d := snapshot(proton, 0, proton.Mass(), geom.Vec{}, geom.Vec{1, 1, 1}, 0)
	d.History.Process = particle.ProcessElastic
	d.XSecScale = 0.5
	d.FormationTime = 10
	assert.Empty(t, f.FindActionsInCell([]particle.Data{d}, 0, 1))
	assert.Len(t, f.pending, 1)

	// The particle was consumed elsewhere: its id disappears from the
	// ensemble and the entry must not linger.
	other := snapshot(proton, 7, proton.Mass(), geom.Vec{}, geom.Vec{2, 2, 2}, 1)
	f.FindActionsInCell([]particle.Data{other}, 1, 1)
	assert.Empty(t, f.pending)
}

func TestFluidizationRemovesParticle(t *testing.T) {
	reg := testRegistry(t)
	rng := random.NewSource(1)
	ps := particle.NewParticles()
	proton := reg.MustFind(2212)
	d := insert(ps, proton, proton.Mass(), geom.Vec{}, geom.Vec{1, 1, 1}, 0)

	a := &Action{
		Kind: KindFluidization, Time: 0, Incoming: []particle.Data{d},
	}
	require.NoError(t, a.GenerateFinalState(reg, rng))
	a.Perform(ps)
	assert.Equal(t, 0, ps.Len())
}
