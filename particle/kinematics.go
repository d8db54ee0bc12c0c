package particle

import (
	"fmt"
	"math"
)

const (
	// ReallySmall is the numerical tolerance used for comparisons against
	// zero throughout the physics code, in GeV.
	ReallySmall = 1e-6

	// WidthCutoff is the width below which a species counts as stable and
	// below which a summed total width is floored to zero, in GeV.
	WidthCutoff = 1e-5

	// hbarc converts between fm and 1/GeV.
	hbarc = 0.197327

	// interactionRadius is the hadronic interaction radius entering the
	// Blatt-Weisskopf factors, 1 fm in GeV^-1.
	interactionRadius = 1.0 / hbarc
)

// PCM returns the center-of-mass momentum of a two-body state with total
// energy srts and masses m1 and m2. Below threshold it returns 0.
func PCM(srts, m1, m2 float64) float64 {
	s := srts * srts
	x := (s - (m1+m2)*(m1+m2)) * (s - (m1-m2)*(m1-m2))
	if x <= 0 { return 0 }
	return math.Sqrt(x / (4 * s))
}

// blattWeisskopfSqr is the squared Blatt-Weisskopf centrifugal barrier
// factor for orbital angular momentum L at momentum pAB.
func blattWeisskopfSqr(pAB float64, L int) float64 {
	if L == 0 { return 1 }
	x2 := pAB * interactionRadius * pAB * interactionRadius
	switch L {
	case 1:
		return x2 / (1 + x2)
	case 2:
		return x2 * x2 / (9 + x2*(3+x2))
	case 3:
		x6 := x2 * x2 * x2
		return x6 / (225 + x2*(45+x2*(6+x2)))
	case 4:
		x8 := x2 * x2 * x2 * x2
		return x8 / (11025 + x2*(1575+x2*(135+x2*(10+x2))))
	}
	panic(fmt.Sprintf("Blatt-Weisskopf factor not implemented for L = %d.", L))
}

// breitWigner is the unnormalized relativistic Breit-Wigner shape with a
// (possibly mass-dependent) width gamma.
func breitWigner(m, pole, gamma float64) float64 {
	m2 := m * m
	d := m2 - pole*pole
	return 2 * m2 * gamma / (math.Pi * (d*d + m2*gamma*gamma))
}

// breitWignerNonRel is the nonrelativistic (Cauchy) shape.
func breitWignerNonRel(m, pole, gamma float64) float64 {
	hw := gamma / 2
	d := m - pole
	return hw / (math.Pi * (d*d + hw*hw))
}

// postFormFactorSqr is the squared Post form factor regulating the
// high-mass tails of semistable and unstable decay widths.
func postFormFactorSqr(m, m0, srts0, lambda float64) float64 {
	l4 := lambda * lambda * lambda * lambda
	s0 := srts0 * srts0
	m02 := m0 * m0
	c := (s0 - m02) / 2
	d := m*m - (s0+m02)/2
	ff := (l4 + c*c) / (l4 + d*d)
	return ff * ff
}
