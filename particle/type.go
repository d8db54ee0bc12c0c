package particle

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNotFound signals a lookup for a species that is not in the registry.
// It is recoverable, unlike the errors returned while building the registry.
var ErrNotFound = errors.New("particle type not found")

// Type is one immutable species entry of the registry: pole mass, pole
// width, parity and the conserved charges decoded from the PDG code. The
// mutable fields at the bottom are lazily computed caches and the grow-only
// adaptive maxima of the rejection samplers; they never change the
// observable value semantics of the entry.
type Type struct {
	name string
	mass, width float64
	parity int
	pdg Code

	anti *Type
	multiplet *Multiplet
	modes []*Branch
	isospin3 int

	// Caches guarded by negative sentinels, computed on first access.
	minMassKin, minMassSpec float64
	normFactor float64

	// Adaptive rejection-sampling scale factors. They start at 1 and are
	// only ever multiplied up when a sampled weight exceeds the assumed
	// maximum.
	maxFactor1, maxFactor2 float64
}

func newType(name string, mass, width float64, parity int, pdg Code) *Type {
	return &Type{
		name: name, mass: mass, width: width, parity: parity, pdg: pdg,
		minMassKin: -1, minMassSpec: -1, normFactor: -1,
		maxFactor1: 1, maxFactor2: 1,
	}
}

func (t *Type) Name() string { return t.name }

// Mass returns the pole mass in GeV.
func (t *Type) Mass() float64 { return t.mass }

// WidthAtPole returns the total width at the pole mass in GeV.
func (t *Type) WidthAtPole() float64 { return t.width }

// Parity returns +1 or -1.
func (t *Type) Parity() int { return t.parity }

func (t *Type) PDG() Code { return t.pdg }

func (t *Type) Charge() int { return t.pdg.Charge() }
func (t *Type) BaryonNumber() int { return t.pdg.BaryonNumber() }
func (t *Type) Strangeness() int { return t.pdg.Strangeness() }
func (t *Type) Charm() int { return t.pdg.Charm() }

// Spin returns twice the spin.
func (t *Type) Spin() int { return t.pdg.Spin() }

// IsStable reports whether the pole width is below the stability cutoff.
func (t *Type) IsStable() bool { return t.width < WidthCutoff }

// Anti returns the antiparticle entry, or the receiver itself for
// self-conjugate species. The relation is symmetric and set up once while
// the registry is built.
func (t *Type) Anti() *Type {
	if t.anti == nil { return t }
	return t.anti
}

// Multiplet returns the isospin multiplet this species belongs to.
func (t *Type) Multiplet() *Multiplet { return t.multiplet }

// Isospin returns twice the total isospin of the multiplet.
func (t *Type) Isospin() int {
	if t.multiplet == nil { return 0 }
	return t.multiplet.Isospin()
}

// Isospin3 returns twice the isospin projection.
func (t *Type) Isospin3() int { return t.isospin3 }

// Branches returns the decay branches. It is empty exactly for stable
// species once the decay-mode table has been loaded.
func (t *Type) Branches() []*Branch { return t.modes }

func (t *Type) String() string {
	return fmt.Sprintf(
		"%s[ mass:%g, width:%g, PDG:%d, charge:%d ]",
		t.name, t.mass, t.width, t.pdg, t.Charge(),
	)
}

// Multiplet groups the species related by isospin symmetry. States are
// ordered by ascending charge, so state i carries I3 = -I + 2i.
type Multiplet struct {
	name string
	states []*Type
}

func (m *Multiplet) Name() string { return m.name }
func (m *Multiplet) States() []*Type { return m.states }

// Isospin returns twice the total isospin, n-1 for an n-state multiplet.
func (m *Multiplet) Isospin() int { return len(m.states) - 1 }

// Spin returns twice the spin of the states.
func (m *Multiplet) Spin() int { return m.states[0].Spin() }

// Parity returns the shared parity of the states.
func (m *Multiplet) Parity() int { return m.states[0].Parity() }

// Registry is the immutable table of all particle species, sorted by PDG
// code and built exactly once per run. Components look species up through a
// shared *Registry instead of global state.
type Registry struct {
	types []*Type
	multiplets map[string]*Multiplet

	// Memoized resonance candidates per unordered species pair. Like the
	// per-species caches, this makes a Registry unsafe to share between
	// concurrently evolving ensembles; give each worker its own.
	resonanceCache map[[2]Code][]*Type
}

// Types returns all species in PDG-code order.
func (reg *Registry) Types() []*Type { return reg.types }

// Find locates a species by PDG code via binary search. A missing code
// yields ErrNotFound.
func (reg *Registry) Find(code Code) (*Type, error) {
	i := sort.Search(len(reg.types), func(i int) bool {
		return reg.types[i].pdg >= code
	})
	if i == len(reg.types) || reg.types[i].pdg != code {
		return nil, fmt.Errorf("PDG code %d: %w", code, ErrNotFound)
	}
	return reg.types[i], nil
}

// MustFind is Find for codes that are known to exist; it panics otherwise.
func (reg *Registry) MustFind(code Code) *Type {
	t, err := reg.Find(code)
	if err != nil { panic(err.Error()) }
	return t
}

// FindName locates a species by its display name via linear scan.
func (reg *Registry) FindName(name string) (*Type, error) {
	for _, t := range reg.types {
		if t.name == name { return t, nil }
	}
	return nil, fmt.Errorf("particle name '%s': %w", name, ErrNotFound)
}

// FindMultiplet locates an isospin multiplet by base name.
func (reg *Registry) FindMultiplet(name string) (*Multiplet, error) {
	m, ok := reg.multiplets[name]
	if !ok {
		return nil, fmt.Errorf("isospin multiplet '%s': %w", name, ErrNotFound)
	}
	return m, nil
}
