package action

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/gocascade/geom"
	"github.com/phil-mansfield/gocascade/particle"
	"github.com/phil-mansfield/gocascade/random"
)

func testRegistry(t *testing.T) *particle.Registry {
	table := `
η 0.4   0     - 221
σ 1.0   0.1   + 9000221
ω 0.783 0.009 - 223
π 0.138 0     - 211 111
N+ 0.938 0    + 2212
`
	modes := `
σ
1. 0 η η

ω
1. 0 π π π
`
	reg, err := particle.LoadTypes(strings.NewReader(table))
	require.NoError(t, err)
	reg.GenerateAntiparticles()
	require.NoError(t, reg.LoadDecayModes(strings.NewReader(modes)))
	return reg
}

func insert(
	ps *particle.Particles, ty *particle.Type, m float64,
	p, x geom.Vec, t float64,
) particle.Data {
	d := particle.NewData(ty, m, p, geom.NewFourVec(t, x[0], x[1], x[2]))
	id := ps.Insert(d)
	d.ID = id
	return d
}

func TestSharedIncomingExecutesOnce(t *testing.T) {
	reg := testRegistry(t)
	rng := random.NewSource(1)
	ps := particle.NewParticles()
	sigma, err := reg.FindName("σ")
	require.NoError(t, err)

	d := insert(ps, sigma, 1.0, geom.Vec{}, geom.Vec{}, 0)
	a1 := &Action{Kind: KindDecay, Time: 1.0, Incoming: []particle.Data{d}}
	a2 := &Action{Kind: KindDecay, Time: 2.0, Incoming: []particle.Data{d}}

	s := &Scheduler{Reg: reg, Rng: rng}
	// Deliberately out of order: execute must sort by trigger time, so the
	// earlier candidate wins and the later one goes stale.
	stats := s.execute(ps, []*Action{a2, a1})

	assert.Equal(t, 1, stats.Executed)
	assert.Equal(t, 1, stats.Discarded)
	assert.Equal(t, 2, ps.Len())
	assert.NotEmpty(t, a1.Outgoing)
	assert.Empty(t, a2.Outgoing)
	for _, out := range ps.Slice() {
		assert.Equal(t, "η", out.Type.Name())
		assert.Equal(t, 1.0, out.Position[0])
	}
}

func TestBatchConservesMomentum(t *testing.T) {
	reg := testRegistry(t)
	rng := random.NewSource(99)
	ps := particle.NewParticles()
	sigma, err := reg.FindName("σ")
	require.NoError(t, err)

	var acts []*Action
	momenta := []geom.Vec{
		{0, 0, 0}, {0.3, 0, 0}, {-0.1, 0.2, 0}, {0, -0.4, 0.1}, {0.5, 0.5, 0.5},
	}
	for i, p := range momenta {
		d := insert(ps, sigma, 1.0, p, geom.Vec{float64(i), 0, 0}, 0)
		acts = append(acts, &Action{
			Kind: KindDecay, Time: 0.5 + 0.1*float64(i),
			Incoming: []particle.Data{d},
		})
	}

	before := ps.TotalMomentum()
	s := &Scheduler{Reg: reg, Rng: rng}
	stats := s.execute(ps, acts)
	after := ps.TotalMomentum()

	assert.Equal(t, len(acts), stats.Executed)
	assert.Equal(t, 0, stats.Discarded)
	assert.Equal(t, 2*len(acts), ps.Len())
	for mu := 0; mu < 4; mu++ {
		assert.InDelta(t, before[mu], after[mu], 1e-9, "component %d", mu)
	}
}

func TestDecayDaughtersOnShell(t *testing.T) {
	reg := testRegistry(t)
	rng := random.NewSource(5)
	ps := particle.NewParticles()
	sigma, err := reg.FindName("σ")
	require.NoError(t, err)

	d := insert(ps, sigma, 1.0, geom.Vec{0.4, 0, 0}, geom.Vec{}, 0)
	a := &Action{Kind: KindDecay, Time: 2.0, Incoming: []particle.Data{d}}
	require.NoError(t, a.GenerateFinalState(reg, rng))
	a.Perform(ps)

	require.Len(t, a.Outgoing, 2)
	sum := geom.FourVec{}
	for _, out := range a.Outgoing {
		assert.InDelta(t, 0.4, out.EffectiveMass(), 1e-9)
		assert.Equal(t, particle.ProcessDecay, out.History.Process)
		assert.Equal(t, 1, out.History.Collisions)
		// Daughters appear where the mother ended up.
		assert.InDelta(t, 2.0*d.Velocity()[0], out.Position[1], 1e-12)
		sum = sum.Add(out.Momentum)
	}
	for mu := 0; mu < 4; mu++ {
		assert.InDelta(t, d.Momentum[mu], sum[mu], 1e-9)
	}
	// Fresh ids: the mother's id is gone.
	_, ok := ps.Get(d.ID)
	assert.False(t, ok)
}

func TestThreeBodyDecay(t *testing.T) {
	reg := testRegistry(t)
	rng := random.NewSource(8)
	ps := particle.NewParticles()
	omega, err := reg.FindName("ω")
	require.NoError(t, err)

	d := insert(ps, omega, 0.783, geom.Vec{0.2, -0.1, 0}, geom.Vec{}, 0)
	a := &Action{Kind: KindDecay, Time: 1.0, Incoming: []particle.Data{d}}
	require.NoError(t, a.GenerateFinalState(reg, rng))

	require.Len(t, a.Outgoing, 3)
	sum := geom.FourVec{}
	for _, out := range a.Outgoing {
		assert.InDelta(t, 0.138, out.EffectiveMass(), 1e-9)
		sum = sum.Add(out.Momentum)
	}
	for mu := 0; mu < 4; mu++ {
		assert.InDelta(t, d.Momentum[mu], sum[mu], 1e-9)
	}
}

func TestElasticScatterPreservesMasses(t *testing.T) {
	reg := testRegistry(t)
	rng := random.NewSource(3)
	ps := particle.NewParticles()
	proton := reg.MustFind(2212)

	d0 := insert(ps, proton, proton.Mass(), geom.Vec{0.5, 0, 0},
		geom.Vec{-1, 0, 0}, 0)
	d1 := insert(ps, proton, proton.Mass(), geom.Vec{-0.5, 0, 0},
		geom.Vec{1, 0, 0}, 0)

	a := &Action{
		Kind: KindScatter, Time: 1.5, Process: particle.ProcessElastic,
		Incoming: []particle.Data{d0, d1},
	}
	require.NoError(t, a.GenerateFinalState(reg, rng))
	a.Perform(ps)

	require.Len(t, a.Outgoing, 2)
	sum := geom.FourVec{}
	for _, out := range a.Outgoing {
		assert.InDelta(t, proton.Mass(), out.EffectiveMass(), 1e-9)
		assert.Equal(t, particle.ProcessElastic, out.History.Process)
		sum = sum.Add(out.Momentum)
	}
	want := d0.Momentum.Add(d1.Momentum)
	for mu := 0; mu < 4; mu++ {
		assert.InDelta(t, want[mu], sum[mu], 1e-9)
	}
}

func TestResonanceFormation(t *testing.T) {
	reg := testRegistry(t)
	rng := random.NewSource(4)
	ps := particle.NewParticles()
	eta := reg.MustFind(221)
	sigma, err := reg.FindName("σ")
	require.NoError(t, err)

	d0 := insert(ps, eta, 0.4, geom.Vec{0.3, 0, 0}, geom.Vec{-1, 0, 0}, 0)
	d1 := insert(ps, eta, 0.4, geom.Vec{-0.3, 0, 0}, geom.Vec{1, 0, 0}, 0)

	a := &Action{
		Kind: KindScatter, Time: 1.0,
		Process: particle.ProcessResonanceFormation, Resonance: sigma,
		Incoming: []particle.Data{d0, d1},
	}
	require.NoError(t, a.GenerateFinalState(reg, rng))
	a.Perform(ps)

	require.Len(t, a.Outgoing, 1)
	out := a.Outgoing[0]
	assert.Equal(t, sigma, out.Type)
	assert.InDelta(t, 1.0, out.EffectiveMass(), 1e-9)
	// Product sits at the midpoint of the incoming pair.
	assert.InDelta(t, 0, out.Position[1], 1e-9)
	assert.Equal(t, 1, ps.Len())
}

func TestSchedulerStep(t *testing.T) {
	reg := testRegistry(t)
	rng := random.NewSource(11)
	ps := particle.NewParticles()
	sigma, err := reg.FindName("σ")
	require.NoError(t, err)
	insert(ps, sigma, 1.0, geom.Vec{}, geom.Vec{}, 0)

	s := &Scheduler{
		Reg: reg, Rng: rng,
		Finders: []Finder{&DecayFinder{Rng: rng}},
	}
	stats := s.Step(ps, 0, 100)

	assert.Equal(t, 1, stats.Executed)
	assert.Equal(t, 2, ps.Len())
	for _, d := range ps.Slice() {
		assert.Equal(t, "η", d.Type.Name())
		assert.Equal(t, 100.0, d.Position[0])
	}
}

func TestSchedulerFinalize(t *testing.T) {
	reg := testRegistry(t)
	rng := random.NewSource(12)
	ps := particle.NewParticles()
	sigma, err := reg.FindName("σ")
	require.NoError(t, err)
	insert(ps, sigma, 1.0, geom.Vec{}, geom.Vec{}, 0)
	insert(ps, reg.MustFind(2212), 0.938, geom.Vec{}, geom.Vec{1, 1, 1}, 0)

	s := &Scheduler{
		Reg: reg, Rng: rng,
		Finders: []Finder{&DecayFinder{Rng: rng}},
	}
	stats := s.Finalize(ps, 50)

	assert.Equal(t, 1, stats.Executed)
	assert.Equal(t, 3, ps.Len())
	for _, d := range ps.Slice() {
		assert.True(t, d.Type.IsStable())
	}
}
