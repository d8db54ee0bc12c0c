/*package particle implements the species registry, the decay-mode table, the
resonance physics built on top of them, and the per-ensemble particle
container.
*/
package particle

import (
	"fmt"
	"strconv"
)

// Code is a PDG Monte Carlo particle numbering code. Quantum numbers are
// decoded from the digit layout: +-n nr nL nq1 nq2 nq3 nJ. Antiparticles
// carry the negated code.
type Code int32

// ParseCode converts the textual form used in the species table.
func ParseCode(s string) (Code, error) {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("Invalid PDG code '%s'.", s)
	}
	return Code(n), nil
}

func (c Code) abs() int32 {
	if c < 0 { return int32(-c) }
	return int32(c)
}

func (c Code) digit(i int) int32 {
	n := c.abs()
	for ; i > 0; i-- { n /= 10 }
	return n % 10
}

func (c Code) String() string { return strconv.FormatInt(int64(c), 10) }

// IsLepton reports whether the code belongs to the lepton block.
func (c Code) IsLepton() bool { a := c.abs(); return a >= 11 && a <= 16 }

// IsHadron reports whether the code describes a meson or baryon.
func (c Code) IsHadron() bool {
	a := c.abs()
	return a >= 100 && c.digit(1) != 0 && c.digit(2) != 0
}

// IsBaryon reports whether all three quark digits are set.
func (c Code) IsBaryon() bool {
	return c.IsHadron() && c.digit(3) != 0
}

// IsMeson reports whether the code is a quark-antiquark state.
func (c Code) IsMeson() bool {
	return c.IsHadron() && c.digit(3) == 0
}

// SpinDegeneracy returns 2J+1, taken from the n_J digit.
func (c Code) SpinDegeneracy() int { return int(c.digit(0)) }

// Spin returns twice the spin, 2J.
func (c Code) Spin() int { return c.SpinDegeneracy() - 1 }

// BaryonNumber is +1 for baryons, -1 for antibaryons and 0 otherwise.
func (c Code) BaryonNumber() int {
	if !c.IsBaryon() { return 0 }
	if c < 0 { return -1 }
	return 1
}

// quarkCharge returns three times the electric charge of quark flavor q.
func quarkCharge(q int32) int {
	if q%2 == 0 { return 2 }
	return -1
}

// Charge returns the electric charge in units of e.
func (c Code) Charge() int {
	ch := 0
	switch {
	case c.IsBaryon():
		ch = quarkCharge(c.digit(3)) + quarkCharge(c.digit(2)) +
			quarkCharge(c.digit(1))
		ch /= 3
	case c.IsMeson():
		ch = quarkCharge(c.digit(2)) - quarkCharge(c.digit(1))
		// Codes whose heavier quark is down-type label the charge
		// conjugate state (e.g. K+ = 321 is u sbar).
		if c.digit(2)%2 == 1 { ch = -ch }
		ch /= 3
	case c.IsLepton():
		if c.abs()%2 == 1 { ch = -1 }
	}
	if c < 0 { ch = -ch }
	return ch
}

// flavorCount returns the net count of the given quark flavor (quarks minus
// antiquarks) for the positive code.
func (c Code) flavorCount(flavor int32) int {
	n := 0
	if c.IsBaryon() {
		for i := 1; i <= 3; i++ {
			if c.digit(i) == flavor { n++ }
		}
	} else if c.IsMeson() {
		hi, lo := c.digit(2), c.digit(1)
		sign := 1
		if hi%2 == 1 { sign = -1 } // down-type convention, as in Charge
		if hi == flavor { n += sign }
		if lo == flavor { n -= sign }
	}
	if c < 0 { n = -n }
	return n
}

// Strangeness returns the strangeness quantum number (s quark counts as -1).
func (c Code) Strangeness() int { return -c.flavorCount(3) }

// Charm returns the charm quantum number (c quark counts as +1).
func (c Code) Charm() int { return c.flavorCount(4) }

// HasDistinctAntiparticle reports whether -c labels a different state.
// Self-conjugate mesons (equal quark digits) have none.
func (c Code) HasDistinctAntiparticle() bool {
	if c.IsBaryon() || c.IsLepton() { return true }
	if c.IsMeson() { return c.digit(2) != c.digit(1) }
	return false
}

// Anti returns the code of the antiparticle.
func (c Code) Anti() Code { return -c }

func (c Code) isFlavor(q2, q1, j int32) bool {
	return c.digit(2) == q2 && c.digit(1) == q1 && c.digit(0) == j &&
		c.IsMeson()
}

// IsPion matches the pi+-/pi0 triplet.
func (c Code) IsPion() bool { return c.isFlavor(1, 1, 1) || c.isFlavor(2, 1, 1) }

// IsRho matches the rho triplet.
func (c Code) IsRho() bool { return c.isFlavor(1, 1, 3) || c.isFlavor(2, 1, 3) }
