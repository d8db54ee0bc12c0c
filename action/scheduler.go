package action

import (
	"log"
	"sort"

	"github.com/phil-mansfield/gocascade/particle"
	"github.com/phil-mansfield/gocascade/random"
)

// Scheduler drives the evolution of one ensemble: per step it collects
// candidates from every finder, orders them by trigger time, executes the
// ones still valid against the mutating ensemble, and streams the
// survivors to the interval end. A Scheduler owns no shared state; one
// ensemble, one scheduler, one goroutine.
type Scheduler struct {
	Reg *particle.Registry
	Rng *random.Source
	Finders []Finder
	Sinks []Sink
}

// StepStats counts the outcomes of one execute pass.
type StepStats struct {
	Found, Executed, Discarded int
}

// Add accumulates the counters of two passes.
func (s StepStats) Add(o StepStats) StepStats {
	return StepStats{
		s.Found + o.Found, s.Executed + o.Executed, s.Discarded + o.Discarded,
	}
}

// Step evolves the ensemble over [t0, t0+dt].
func (s *Scheduler) Step(ps *particle.Particles, t0, dt float64) StepStats {
	ds := ps.Slice()
	var acts []*Action
	for _, f := range s.Finders {
		acts = append(acts, f.FindActionsInCell(ds, t0, dt)...)
	}
	stats := s.execute(ps, acts)
	ps.StreamAll(t0 + dt)
	return stats
}

// execute applies the candidate batch in non-decreasing time order. The
// sort is stable so that equal trigger times keep discovery order and runs
// reproduce exactly under a fixed seed. Stale candidates are dropped
// without side effects; final states are sampled only after the staleness
// check passes.
func (s *Scheduler) execute(ps *particle.Particles, acts []*Action) StepStats {
	stats := StepStats{Found: len(acts)}
	sort.SliceStable(acts, func(i, j int) bool {
		return acts[i].Time < acts[j].Time
	})
	for _, a := range acts {
		if !a.Valid(ps) {
			stats.Discarded++
			continue
		}
		if err := a.GenerateFinalState(s.Reg, s.Rng); err != nil {
			log.Printf("Discarding %s action at t=%g: %s", a.Kind, a.Time, err)
			stats.Discarded++
			continue
		}
		a.Perform(ps)
		for _, sink := range s.Sinks {
			sink.OnAction(a)
		}
		stats.Executed++
	}
	return stats
}

// Finalize fires the finders' final-action hooks until nothing is left to
// do, so that decay chains run all the way down to stable particles.
func (s *Scheduler) Finalize(ps *particle.Particles, t float64) StepStats {
	var total StepStats
	for round := 0; round < 100; round++ {
		ds := ps.Slice()
		var acts []*Action
		for _, f := range s.Finders {
			acts = append(acts, f.FindFinalActions(ds, t)...)
		}
		if len(acts) == 0 { break }
		stats := s.execute(ps, acts)
		total = total.Add(stats)
		if stats.Executed == 0 { break }
	}
	return total
}
