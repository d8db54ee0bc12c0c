/*package geom provides the small value types used throughout gocascade:
three-vectors, Minkowski four-vectors and Lorentz boosts.
*/
package geom

import (
	"math"
)

// Vec is a spatial three-vector.
type Vec [3]float64

func (v Vec) Add(u Vec) Vec { return Vec{v[0] + u[0], v[1] + u[1], v[2] + u[2]} }
func (v Vec) Sub(u Vec) Vec { return Vec{v[0] - u[0], v[1] - u[1], v[2] - u[2]} }
func (v Vec) Scale(a float64) Vec { return Vec{a * v[0], a * v[1], a * v[2]} }
func (v Vec) Dot(u Vec) float64 { return v[0]*u[0] + v[1]*u[1] + v[2]*u[2] }
func (v Vec) Norm2() float64 { return v.Dot(v) }
func (v Vec) Norm() float64 { return math.Sqrt(v.Norm2()) }

// FourVec is a Minkowski four-vector with signature (+, -, -, -). Index 0 is
// the time (or energy) component.
type FourVec [4]float64

// NewFourVec packs the components into a FourVec.
func NewFourVec(x0, x1, x2, x3 float64) FourVec {
	return FourVec{x0, x1, x2, x3}
}

// OnShell returns the four-momentum of a particle with the given mass and
// spatial momentum.
func OnShell(mass float64, p Vec) FourVec {
	return FourVec{math.Sqrt(mass*mass + p.Norm2()), p[0], p[1], p[2]}
}

func (x FourVec) Add(y FourVec) FourVec {
	return FourVec{x[0] + y[0], x[1] + y[1], x[2] + y[2], x[3] + y[3]}
}

func (x FourVec) Sub(y FourVec) FourVec {
	return FourVec{x[0] - y[0], x[1] - y[1], x[2] - y[2], x[3] - y[3]}
}

func (x FourVec) Scale(a float64) FourVec {
	return FourVec{a * x[0], a * x[1], a * x[2], a * x[3]}
}

// Dot is the Minkowski inner product x·y.
func (x FourVec) Dot(y FourVec) float64 {
	return x[0]*y[0] - x[1]*y[1] - x[2]*y[2] - x[3]*y[3]
}

// Abs2 is the squared invariant, x·x. It can be negative for spacelike
// vectors.
func (x FourVec) Abs2() float64 { return x.Dot(x) }

// Abs is the invariant length. For a four-momentum this is the invariant
// mass. Abs panics on spacelike input beyond roundoff: that always indicates
// a kinematics bug upstream.
func (x FourVec) Abs() float64 {
	a2 := x.Abs2()
	if a2 < 0 {
		if a2 > -1e-9 { return 0 }
		panic("Taking the invariant length of a spacelike four-vector.")
	}
	return math.Sqrt(a2)
}

// Spatial returns the spatial part of x.
func (x FourVec) Spatial() Vec { return Vec{x[1], x[2], x[3]} }

// Velocity returns the three-velocity of a four-momentum, p/E.
func (x FourVec) Velocity() Vec {
	return Vec{x[1] / x[0], x[2] / x[0], x[3] / x[0]}
}

// Boost transforms x into the frame moving with velocity beta relative to
// the current frame. Boosting back is Boost(beta.Scale(-1)).
func (x FourVec) Boost(beta Vec) FourVec {
	b2 := beta.Norm2()
	if b2 == 0 { return x }
	gamma := 1 / math.Sqrt(1-b2)
	bp := beta[0]*x[1] + beta[1]*x[2] + beta[2]*x[3]
	f := (gamma-1)*bp/b2 - gamma*x[0]
	return FourVec{
		gamma * (x[0] - bp),
		x[1] + f*beta[0],
		x[2] + f*beta[1],
		x[3] + f*beta[2],
	}
}

// Stream advances a position four-vector along velocity v until time tEnd.
// If the position is already at or past tEnd it is returned unchanged.
func Stream(pos FourVec, v Vec, tEnd float64) FourVec {
	dt := tEnd - pos[0]
	if dt <= 0 { return pos }
	return FourVec{tEnd, pos[1] + v[0]*dt, pos[2] + v[1]*dt, pos[3] + v[2]*dt}
}
