/*package lattice deposits particle momenta onto a rectangular grid of
energy-momentum tensors and serves interpolated Landau-frame energy
densities back to the action finders.
*/
package lattice

import (
	"math"

	"github.com/phil-mansfield/gocascade/geom"
)

// Tmn is the symmetric energy-momentum tensor T^{mu nu}, stored as its ten
// independent upper-triangle components in row-major order:
// 00 01 02 03 11 12 13 22 23 33.
type Tmn [10]float64

var tmnIdx = [4][4]int{
	{0, 1, 2, 3},
	{1, 4, 5, 6},
	{2, 5, 7, 8},
	{3, 6, 8, 9},
}

// At returns T^{mu nu}.
func (t *Tmn) At(mu, nu int) float64 { return t[tmnIdx[mu][nu]] }

// AddMomentum accumulates the contribution p^mu p^nu / p^0 of one particle,
// scaled by weight.
func (t *Tmn) AddMomentum(p geom.FourVec, weight float64) {
	w := weight / p[0]
	k := 0
	for mu := 0; mu < 4; mu++ {
		for nu := mu; nu < 4; nu++ {
			t[k] += w * p[mu] * p[nu]
			k++
		}
	}
}

// metric is the sign of g_{mu mu} with signature (+, -, -, -).
func metric(mu int) float64 {
	if mu == 0 { return 1 }
	return -1
}

// LandauEnergyDensity returns the energy density in the Landau rest frame,
// the timelike eigenvalue e of T^{mu}_{nu} u^{nu} = e u^{mu}. The
// eigenvector is found by power iteration starting from the lab-frame time
// direction. If the iteration fails to converge or leaves the timelike
// cone, T^{00} is returned instead.
func (t *Tmn) LandauEnergyDensity() float64 {
	const tol = 1e-12
	const maxIter = 50

	if t[0] == 0 { return 0 }

	u := [4]float64{1, 0, 0, 0}
	for iter := 0; iter < maxIter; iter++ {
		var v [4]float64
		for mu := 0; mu < 4; mu++ {
			for nu := 0; nu < 4; nu++ {
				v[mu] += t.At(mu, nu) * metric(nu) * u[nu]
			}
		}
		if v[0] < 0 {
			for mu := range v { v[mu] = -v[mu] }
		}
		norm2 := v[0]*v[0] - v[1]*v[1] - v[2]*v[2] - v[3]*v[3]
		if norm2 <= 0 { return t.At(0, 0) }
		norm := math.Sqrt(norm2)

		diff := 0.0
		for mu := range v {
			v[mu] /= norm
			diff = math.Max(diff, math.Abs(v[mu]-u[mu]))
		}
		u = v
		if diff < tol { break }
	}

	// e = u_mu T^{mu nu} u_nu with lowered indices.
	e := 0.0
	for mu := 0; mu < 4; mu++ {
		for nu := 0; nu < 4; nu++ {
			e += metric(mu) * u[mu] * t.At(mu, nu) * metric(nu) * u[nu]
		}
	}
	return e
}
