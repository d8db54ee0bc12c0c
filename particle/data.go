package particle

import (
	"fmt"

	"github.com/phil-mansfield/gocascade/geom"
)

// ProcessType labels the kind of interaction that last touched a particle.
type ProcessType int

const (
	ProcessNone ProcessType = iota
	ProcessElastic
	ProcessResonanceFormation
	ProcessDecay
	ProcessInelastic
	ProcessStringSoft
	ProcessStringHard
	ProcessWall
	ProcessFluidization
)

var processNames = []string{
	"None", "Elastic", "ResonanceFormation", "Decay", "Inelastic",
	"StringSoft", "StringHard", "Wall", "Fluidization",
}

func (p ProcessType) String() string {
	if p < 0 || int(p) >= len(processNames) {
		return fmt.Sprintf("ProcessType(%d)", int(p))
	}
	return processNames[p]
}

// History records how a particle came to be: the process that produced it
// and the number of interactions it has undergone.
type History struct {
	Process ProcessType
	Collisions int
}

// Data is one particle instance of an ensemble. Momentum and Position are
// four-vectors; the momentum is kept on-shell at the sampled (not
// necessarily pole) mass. XSecScale in [0, 1] scales the particle's cross
// sections while it forms.
type Data struct {
	ID int
	Type *Type
	Momentum geom.FourVec
	Position geom.FourVec
	FormationTime float64
	XSecScale float64
	History History
}

// NewData returns an instance of species t with three-momentum p and mass
// m, fully formed at position pos.
func NewData(t *Type, m float64, p geom.Vec, pos geom.FourVec) Data {
	return Data{
		Type: t, Momentum: geom.OnShell(m, p), Position: pos,
		FormationTime: pos[0], XSecScale: 1,
	}
}

// EffectiveMass returns the invariant mass of the instance, which differs
// from the pole mass for resonances sampled off-shell.
func (d *Data) EffectiveMass() float64 { return d.Momentum.Abs() }

// Velocity returns p/E.
func (d *Data) Velocity() geom.Vec { return d.Momentum.Velocity() }

// BoostedDecayRate returns the decay probability per unit time in the
// computational frame: the rest-frame width at the actual mass, time
// dilated, converted to 1/fm.
func (d *Data) BoostedDecayRate() float64 {
	m := d.EffectiveMass()
	w := d.Type.TotalWidth(m)
	if w <= 0 { return 0 }
	return w * m / d.Momentum[0] / hbarc
}

// IsFormed reports whether the particle has reached its formation time.
func (d *Data) IsFormed(t float64) bool { return t >= d.FormationTime }

// Stream advances the particle along a straight line to time tEnd.
func (d *Data) Stream(tEnd float64) {
	d.Position = geom.Stream(d.Position, d.Velocity(), tEnd)
}

func (d *Data) String() string {
	return fmt.Sprintf("%s#%d[t:%g, E:%g]",
		d.Type.Name(), d.ID, d.Position[0], d.Momentum[0])
}
