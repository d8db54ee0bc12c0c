package particle

import "github.com/phil-mansfield/gocascade/geom"

// Particles is the per-ensemble particle container: a dense slice for fast
// iteration plus an id index for O(1) lookup. IDs are assigned once at
// insertion and are never reused within an ensemble, so a stale id from an
// already-executed action fails to resolve instead of aliasing a new
// particle.
type Particles struct {
	data []Data
	index map[int]int
	nextID int
}

func NewParticles() *Particles {
	return &Particles{index: map[int]int{}}
}

func (ps *Particles) Len() int { return len(ps.data) }

// Insert adds a particle, assigns it a fresh id and returns that id. The
// id stored in d is ignored.
func (ps *Particles) Insert(d Data) int {
	d.ID = ps.nextID
	ps.nextID++
	ps.index[d.ID] = len(ps.data)
	ps.data = append(ps.data, d)
	return d.ID
}

// Get returns the current state of the particle with the given id.
func (ps *Particles) Get(id int) (Data, bool) {
	i, ok := ps.index[id]
	if !ok { return Data{}, false }
	return ps.data[i], true
}

// Update overwrites the entry carrying d's id.
func (ps *Particles) Update(d Data) bool {
	i, ok := ps.index[d.ID]
	if !ok { return false }
	ps.data[i] = d
	return true
}

// Remove deletes the particle with the given id by swapping the last entry
// into its slot.
func (ps *Particles) Remove(id int) bool {
	i, ok := ps.index[id]
	if !ok { return false }
	last := len(ps.data) - 1
	ps.data[i] = ps.data[last]
	ps.index[ps.data[i].ID] = i
	ps.data = ps.data[:last]
	delete(ps.index, id)
	return true
}

// Slice returns a copy of all particle instances in storage order.
func (ps *Particles) Slice() []Data {
	out := make([]Data, len(ps.data))
	copy(out, ps.data)
	return out
}

// StreamAll advances every particle along a straight line to time tEnd.
func (ps *Particles) StreamAll(tEnd float64) {
	for i := range ps.data { ps.data[i].Stream(tEnd) }
}

// TotalMomentum returns the summed four-momentum of the ensemble.
func (ps *Particles) TotalMomentum() geom.FourVec {
	var sum geom.FourVec
	for i := range ps.data { sum = sum.Add(ps.data[i].Momentum) }
	return sum
}
