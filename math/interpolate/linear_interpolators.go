package interpolate

import (
	"fmt"
	"math"
	"sort"
)

// searcher locates the bracketing interval of a query point in a sequence of
// strictly increasing x values. Uniform sequences are located in O(1), the
// general case in O(log n).
type searcher struct {
	xs []float64
	x0, dx float64
	n int
	uniform bool
}

func (s *searcher) init(xs []float64) {
	if len(xs) < 2 { panic("Need at least two interpolation points.") }
	s.xs = xs
	s.n = len(xs)
	s.uniform = false
}

func (s *searcher) unifInit(x0, dx float64, n int) {
	if n < 2 { panic("Need at least two interpolation points.") }
	s.x0, s.dx = x0, dx
	s.n = n
	s.uniform = true
}

func (s *searcher) val(i int) float64 {
	if s.uniform { return s.x0 + float64(i)*s.dx }
	return s.xs[i]
}

// search returns i such that val(i) <= x <= val(i+1), clamping to the first
// or last interval when x falls outside the sequence.
func (s *searcher) search(x float64) int {
	var i int
	if s.uniform {
		i = int(math.Floor((x - s.x0) / s.dx))
	} else {
		i = sort.SearchFloat64s(s.xs, x) - 1
	}
	if i < 0 { return 0 }
	if i > s.n-2 { return s.n - 2 }
	return i
}

///////////////////////////
// Linear Implementation //
///////////////////////////

// Linear is a linear interpolator.
type Linear struct {
	xs searcher
	vals []float64
}

// NewLinear creates a linear interpolator for a strictly increasing sequence
// of points, xs, which take on the values given by vals.
func NewLinear(xs, vals []float64) *Linear {
	if len(xs) != len(vals) {
		panic("Length of input slices are not equal.")
	}
	lin := &Linear{}
	lin.xs.init(xs)
	lin.vals = vals
	return lin
}

// NewUniformLinear creates a linear interpolator for a uniformly spaced
// sequence of x values starting at x0 and separated by dx whose values are
// given by vals.
//
// Lookups will be O(1).
func NewUniformLinear(x0, dx float64, vals []float64) *Linear {
	lin := &Linear{}
	lin.xs.unifInit(x0, dx, len(vals))
	lin.vals = vals
	return lin
}

// Eval returns the interpolated value at x. Queries outside the supplied
// range are linearly extrapolated from the nearest interval.
func (lin *Linear) Eval(x float64) float64 {
	i1 := lin.xs.search(x)
	i2 := i1 + 1
	x1, x2 := lin.xs.val(i1), lin.xs.val(i2)
	v1, v2 := lin.vals[i1], lin.vals[i2]

	return ((v2-v1)/(x2-x1))*(x-x1) + v1
}

// EvalAll evaluates the interpolator at all the given x values. If an output
// array is given, the output is written to that array (the array is still
// returned as a convenience).
//
// If more than one output array is provided, only the first is used.
func (lin *Linear) EvalAll(xs []float64, out ...[]float64) []float64 {
	if len(out) == 0 { out = [][]float64{ make([]float64, len(xs)) } }
	for i, x := range xs { out[0][i] = lin.Eval(x) }
	return out[0]
}

//////////////////////////////
// TriLinear Implementation //
//////////////////////////////

// TriLinear is a tri-linear interpolator over a regular 3D grid. vals is
// laid out with x varying fastest: vals[ix + nx*(iy + ny*iz)].
type TriLinear struct {
	xs, ys, zs searcher
	vals []float64
	nx, ny int
}

// NewUniformTriLinear creates a tri-linear interpolator over a uniform grid.
func NewUniformTriLinear(
	x0, dx float64, nx int,
	y0, dy float64, ny int,
	z0, dz float64, nz int,
	vals []float64,
) *TriLinear {
	tri := &TriLinear{}

	tri.xs.unifInit(x0, dx, nx)
	tri.ys.unifInit(y0, dy, ny)
	tri.zs.unifInit(z0, dz, nz)
	tri.nx = nx
	tri.ny = ny
	tri.vals = vals

	if nx*ny*nz != len(vals) {
		panic(fmt.Sprintf(
			"len(vals) = %d, but nx = %d, ny = %d, and nz = %d",
			len(vals), nx, ny, nz,
		))
	}

	return tri
}

func (tri *TriLinear) idx(ix, iy, iz int) int {
	return ix + tri.nx*(iy+tri.ny*iz)
}

func (tri *TriLinear) Eval(x, y, z float64) float64 {
	ix, iy, iz := tri.xs.search(x), tri.ys.search(y), tri.zs.search(z)
	x1, x2 := tri.xs.val(ix), tri.xs.val(ix+1)
	y1, y2 := tri.ys.val(iy), tri.ys.val(iy+1)
	z1, z2 := tri.zs.val(iz), tri.zs.val(iz+1)

	fx := (x - x1) / (x2 - x1)
	fy := (y - y1) / (y2 - y1)
	fz := (z - z1) / (z2 - z1)

	v := 0.0
	for dz := 0; dz <= 1; dz++ {
		wz := fz
		if dz == 0 { wz = 1 - fz }
		for dy := 0; dy <= 1; dy++ {
			wy := fy
			if dy == 0 { wy = 1 - fy }
			for dx := 0; dx <= 1; dx++ {
				wx := fx
				if dx == 0 { wx = 1 - fx }
				v += wx * wy * wz * tri.vals[tri.idx(ix+dx, iy+dy, iz+dz)]
			}
		}
	}
	return v
}

func (tri *TriLinear) EvalAll(xs, ys, zs []float64, out ...[]float64) []float64 {
	if len(out) == 0 { out = [][]float64{ make([]float64, len(xs)) } }
	for i := range xs { out[0][i] = tri.Eval(xs[i], ys[i], zs[i]) }
	return out[0]
}
