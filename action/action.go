/*package action implements the discrete interaction events that drive the
transport evolution: the action record itself, the finders that discover
candidate actions for a time interval, and the scheduler that orders,
validates and executes them against the ensemble.
*/
package action

import (
	"fmt"
	"log"
	"math"

	"github.com/phil-mansfield/gocascade/geom"
	"github.com/phil-mansfield/gocascade/particle"
)

// Kind is the closed set of action variants.
type Kind int

const (
	KindScatter Kind = iota
	KindDecay
	KindWall
	KindFluidization
)

func (k Kind) String() string {
	switch k {
	case KindScatter:
		return "Scatter"
	case KindDecay:
		return "Decay"
	case KindWall:
		return "Wall"
	case KindFluidization:
		return "Fluidization"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Action is one candidate event. Incoming holds snapshots of the consumed
// particles taken at discovery time, never references into the live
// ensemble; Outgoing is materialized by GenerateFinalState just before
// execution. An action whose incoming snapshots no longer match the
// ensemble is stale and is discarded without side effects.
type Action struct {
	Kind Kind
	Time float64
	Incoming []particle.Data
	Outgoing []particle.Data

	// Scatter: the process decided at discovery and, for resonance
	// formation, the species being formed.
	Process particle.ProcessType
	Resonance *particle.Type

	// Wall: the position shift applied when crossing.
	Shift geom.Vec
}

// Valid reports whether every incoming particle still exists in the
// ensemble in exactly the captured state. Any particle consumed by an
// earlier action in the same batch fails this check, either because its id
// is gone or because the re-inserted product carries a fresh id.
func (a *Action) Valid(ps *particle.Particles) bool {
	for i := range a.Incoming {
		cur, ok := ps.Get(a.Incoming[i].ID)
		if !ok { return false }
		if cur.Type != a.Incoming[i].Type ||
			cur.Momentum != a.Incoming[i].Momentum ||
			cur.Position != a.Incoming[i].Position {
			return false
		}
	}
	return true
}

// TotalMomentum sums the incoming four-momenta.
func (a *Action) TotalMomentum() geom.FourVec {
	var sum geom.FourVec
	for i := range a.Incoming {
		sum = sum.Add(a.Incoming[i].Momentum)
	}
	return sum
}

// conservationTolerance bounds the acceptable per-component four-momentum
// mismatch after executing an action, in GeV.
const conservationTolerance = particle.ReallySmall

// Perform applies a generated action to the ensemble: the incoming
// particles are removed, the outgoing ones are inserted under fresh ids.
// Violated four-momentum conservation is logged as a diagnostic, not
// treated as fatal.
func (a *Action) Perform(ps *particle.Particles) {
	before := a.TotalMomentum()
	for i := range a.Incoming {
		ps.Remove(a.Incoming[i].ID)
	}

	var after geom.FourVec
	for i := range a.Outgoing {
		after = after.Add(a.Outgoing[i].Momentum)
		a.Outgoing[i].ID = ps.Insert(a.Outgoing[i])
	}

	// A fluidization hand-off removes its particle from the hadronic
	// ensemble, so there is nothing to balance against.
	if a.Kind == KindFluidization || len(a.Outgoing) == 0 { return }
	diff := before.Sub(after)
	for mu := 0; mu < 4; mu++ {
		if math.Abs(diff[mu]) > conservationTolerance {
			log.Printf(
				"Warning: %s action at t=%g violates four-momentum "+
					"conservation by %v.", a.Kind, a.Time, diff,
			)
			break
		}
	}
}

// Sink receives a notification for every executed action. Sinks own their
// output format; the scheduler only delivers the action.
type Sink interface {
	OnAction(a *Action)
}
