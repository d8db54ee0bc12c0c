package particle

// Factorials up to the largest value reachable with hadronic isospins.
var factTab = func() []float64 {
	t := make([]float64, 32)
	t[0] = 1
	for i := 1; i < len(t); i++ {
		t[i] = t[i-1] * float64(i)
	}
	return t
}()

func fact(n int) float64 { return factTab[n] }

func iabs(x int) int {
	if x < 0 { return -x }
	return x
}

// clebschGordanSqr returns the squared Clebsch-Gordan coefficient
// |<j1 m1 j2 m2 | J M>|^2. All arguments are doubled so that half-integer
// spins stay integral. Incompatible couplings yield 0.
func clebschGordanSqr(twoJ1, twoM1, twoJ2, twoM2, twoJ, twoM int) float64 {
	if twoM1+twoM2 != twoM { return 0 }
	if twoJ < iabs(twoJ1-twoJ2) || twoJ > twoJ1+twoJ2 { return 0 }
	if (twoJ1+twoJ2+twoJ)%2 != 0 { return 0 }
	if iabs(twoM1) > twoJ1 || iabs(twoM2) > twoJ2 || iabs(twoM) > twoJ {
		return 0
	}

	n1 := (twoJ1 + twoJ2 - twoJ) / 2
	n2 := (twoJ1 - twoJ2 + twoJ) / 2
	n3 := (-twoJ1 + twoJ2 + twoJ) / 2
	pre := float64(twoJ+1) * fact(n1) * fact(n2) * fact(n3) /
		fact((twoJ1+twoJ2+twoJ)/2+1)
	pre *= fact((twoJ+twoM)/2) * fact((twoJ-twoM)/2) *
		fact((twoJ1-twoM1)/2) * fact((twoJ1+twoM1)/2) *
		fact((twoJ2-twoM2)/2) * fact((twoJ2+twoM2)/2)

	sum := 0.0
	for k := 0; ; k++ {
		d1 := n1 - k
		d2 := (twoJ1-twoM1)/2 - k
		d3 := (twoJ2+twoM2)/2 - k
		if d1 < 0 || d2 < 0 || d3 < 0 { break }
		d4 := (twoJ-twoJ2+twoM1)/2 + k
		d5 := (twoJ-twoJ1-twoM2)/2 + k
		if d4 < 0 || d5 < 0 { continue }
		term := 1 / (fact(k) * fact(d1) * fact(d2) *
			fact(d3) * fact(d4) * fact(d5))
		if k%2 == 1 { term = -term }
		sum += term
	}
	return pre * sum * sum
}
