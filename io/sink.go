package io

import (
	"fmt"
	"io"

	"github.com/phil-mansfield/gocascade/action"
	"github.com/phil-mansfield/gocascade/particle"
)

// EventSink writes an OSCAR-style text record of every executed action. It
// satisfies action.Sink, which has no error return; write failures are
// latched and reported by Err after the run.
type EventSink struct {
	w io.Writer
	err error
}

func NewEventSink(w io.Writer) *EventSink {
	s := &EventSink{w: w}
	s.printf("#!OSCAR2013 full_event_history " +
		"t x y z mass p0 px py pz pdg ID charge\n")
	s.printf("# Units: fm fm fm fm GeV GeV GeV GeV GeV none none e\n")
	return s
}

func (s *EventSink) printf(format string, args ...interface{}) {
	if s.err != nil { return }
	_, s.err = fmt.Fprintf(s.w, format, args...)
}

func (s *EventSink) line(d *particle.Data) {
	s.printf("%g %g %g %g %g %g %g %g %g %d %d %d\n",
		d.Position[0], d.Position[1], d.Position[2], d.Position[3],
		d.EffectiveMass(),
		d.Momentum[0], d.Momentum[1], d.Momentum[2], d.Momentum[3],
		int(d.Type.PDG()), d.ID, d.Type.Charge(),
	)
}

func (s *EventSink) OnAction(a *action.Action) {
	s.printf("# interaction in %d out %d time %g process %s\n",
		len(a.Incoming), len(a.Outgoing), a.Time, a.Process)
	for i := range a.Incoming { s.line(&a.Incoming[i]) }
	for i := range a.Outgoing { s.line(&a.Outgoing[i]) }
}

// WriteFinalState appends the surviving ensemble to the record.
func (s *EventSink) WriteFinalState(ds []particle.Data) {
	s.printf("# final out %d\n", len(ds))
	for i := range ds { s.line(&ds[i]) }
}

// Err returns the first write error encountered, if any.
func (s *EventSink) Err() error { return s.err }
