package lattice

import (
	"fmt"
	"math"

	"github.com/phil-mansfield/gocascade/geom"
	"github.com/phil-mansfield/gocascade/math/interpolate"
	"github.com/phil-mansfield/gocascade/particle"
)

// Lattice reasons over a 1D slice of cells as if it were a 3D rectangular
// grid. Cell (x, y, z) is centered at origin + (x+1/2, y+1/2, z+1/2)*spacing.
type Lattice struct {
	dims [3]int
	origin, spacing geom.Vec
	periodic bool

	length, area, volume int
	cells []Tmn

	// Interpolator over the cell energy densities, rebuilt by Update.
	energy *interpolate.TriLinear
}

// New returns a lattice of dims cells per axis starting at origin with the
// given cell spacing. A periodic lattice wraps deposits around the box.
func New(origin, spacing geom.Vec, dims [3]int, periodic bool) (*Lattice, error) {
	for i := 0; i < 3; i++ {
		if dims[i] < 2 {
			return nil, fmt.Errorf(
				"Lattice needs at least 2 cells per axis, got %d.", dims[i],
			)
		}
		if spacing[i] <= 0 {
			return nil, fmt.Errorf(
				"Lattice cell spacing must be positive, got %g.", spacing[i],
			)
		}
	}
	lat := &Lattice{
		dims: dims, origin: origin, spacing: spacing, periodic: periodic,
		length: dims[0], area: dims[0] * dims[1],
		volume: dims[0] * dims[1] * dims[2],
	}
	lat.cells = make([]Tmn, lat.volume)
	return lat, nil
}

// Idx returns the cell index corresponding to a set of cell coordinates.
func (lat *Lattice) Idx(x, y, z int) int {
	return x + y*lat.length + z*lat.area
}

// Cell gives access to the tensor accumulated in cell (x, y, z).
func (lat *Lattice) Cell(x, y, z int) *Tmn { return &lat.cells[lat.Idx(x, y, z)] }

func pMod(x, y int) int {
	m := x % y
	if m < 0 { m += y }
	return m
}

// Reset zeroes every cell.
func (lat *Lattice) Reset() {
	for i := range lat.cells { lat.cells[i] = Tmn{} }
}

// Deposit adds the momentum of every particle to the grid with
// cloud-in-cell weights over the 8 cells nearest to its position. On a
// non-periodic lattice, contributions outside the grid are dropped.
func (lat *Lattice) Deposit(ds []particle.Data) {
	cellVol := lat.spacing[0] * lat.spacing[1] * lat.spacing[2]

	for i := range ds {
		var base [3]int
		var frac [3]float64
		for j := 0; j < 3; j++ {
			rel := (ds[i].Position[j+1]-lat.origin[j])/lat.spacing[j] - 0.5
			fl := math.Floor(rel)
			base[j] = int(fl)
			frac[j] = rel - fl
		}

		for dz := 0; dz <= 1; dz++ {
			for dy := 0; dy <= 1; dy++ {
				for dx := 0; dx <= 1; dx++ {
					x, y, z := base[0]+dx, base[1]+dy, base[2]+dz
					w := cicWeight(frac[0], dx) * cicWeight(frac[1], dy) *
						cicWeight(frac[2], dz) / cellVol
					if lat.periodic {
						x = pMod(x, lat.dims[0])
						y = pMod(y, lat.dims[1])
						z = pMod(z, lat.dims[2])
					} else if x < 0 || x >= lat.dims[0] ||
						y < 0 || y >= lat.dims[1] ||
						z < 0 || z >= lat.dims[2] {
						continue
					}
					lat.cells[lat.Idx(x, y, z)].AddMomentum(ds[i].Momentum, w)
				}
			}
		}
	}
}

func cicWeight(f float64, d int) float64 {
	if d == 0 { return 1 - f }
	return f
}

// Update recomputes the per-cell Landau energy densities and rebuilds the
// interpolator behind EnergyDensityAt. Call once per timestep after
// Reset + Deposit.
func (lat *Lattice) Update() {
	vals := make([]float64, lat.volume)
	for i := range lat.cells {
		vals[i] = lat.cells[i].LandauEnergyDensity()
	}
	lat.energy = interpolate.NewUniformTriLinear(
		lat.origin[0]+lat.spacing[0]/2, lat.spacing[0], lat.dims[0],
		lat.origin[1]+lat.spacing[1]/2, lat.spacing[1], lat.dims[1],
		lat.origin[2]+lat.spacing[2]/2, lat.spacing[2], lat.dims[2],
		vals,
	)
}

// EnergyDensityAt returns the trilinearly interpolated Landau-frame energy
// density at pos. It returns false before the first Update or outside a
// non-periodic grid.
func (lat *Lattice) EnergyDensityAt(pos geom.Vec) (float64, bool) {
	if lat.energy == nil { return 0, false }
	p := pos
	for j := 0; j < 3; j++ {
		extent := float64(lat.dims[j]) * lat.spacing[j]
		if lat.periodic {
			for p[j] < lat.origin[j] { p[j] += extent }
			for p[j] >= lat.origin[j]+extent { p[j] -= extent }
		} else if p[j] < lat.origin[j] || p[j] > lat.origin[j]+extent {
			return 0, false
		}
	}
	return lat.energy.Eval(p[0], p[1], p[2]), true
}
