package particle

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/gocascade/random"
)

// A single resonance at pole 1.0 with width 0.1 decaying into two stable
// particles of mass 0.4 each.
func loadSigma(t *testing.T) (*Registry, *Type) {
	table := `
η 0.4 0   - 221
σ 1.0 0.1 + 9000221
`
	modes := `
σ
1. 0 η η
`
	reg, err := LoadTypes(strings.NewReader(table))
	require.NoError(t, err)
	require.NoError(t, reg.LoadDecayModes(strings.NewReader(modes)))
	sigma, err := reg.FindName("σ")
	require.NoError(t, err)
	return reg, sigma
}

func TestResonanceWidths(t *testing.T) {
	_, sigma := loadSigma(t)

	assert.False(t, sigma.IsStable())
	assert.InDelta(t, 0.8, sigma.MinMassKinematic(), 1e-12)
	assert.Equal(t, 0.0, sigma.TotalWidth(0.8))
	assert.Equal(t, 0.0, sigma.TotalWidth(0.5))
	assert.Greater(t, sigma.TotalWidth(1.0), 0.0)
	assert.InDelta(t, 0.1, sigma.TotalWidth(1.0), 1e-9)

	b := sigma.Branches()[0]
	assert.Equal(t, 0.0, sigma.PartialWidth(0.79, b))
	assert.Equal(t, sigma.TotalWidth(1.1), sigma.PartialWidth(1.1, b))

	// The width grows monotonically with mass near the pole.
	assert.Greater(t, sigma.TotalWidth(1.2), sigma.TotalWidth(1.0))
}

func TestSpectralFunctionNormalization(t *testing.T) {
	_, sigma := loadSigma(t)

	// Riemann sum over the support; the residual tail above the upper
	// limit costs about a percent.
	dm, sum := 0.001, 0.0
	for m := 0.8; m < 10; m += dm {
		sum += sigma.SpectralFunction(m) * dm
	}
	assert.InDelta(t, 1, sum, 0.02)

	// The peak sits near the pole.
	assert.Greater(t, sigma.SpectralFunction(1.0), sigma.SpectralFunction(0.9))
	assert.Greater(t, sigma.SpectralFunction(1.0), sigma.SpectralFunction(1.1))
}

func TestMinMassSpectral(t *testing.T) {
	_, sigma := loadSigma(t)
	min := sigma.MinMassSpectral()
	assert.GreaterOrEqual(t, min, 0.8)
	assert.Less(t, min, 0.81)
	assert.Less(t, sigma.SpectralFunction(min-1e-4), ReallySmall)
}

func TestSampleMass(t *testing.T) {
	reg, sigma := loadSigma(t)
	eta := reg.MustFind(221)
	rng := random.NewSource(42)

	cms, partner := 2.0, eta.Mass()
	min := sigma.MinMassSpectral()
	for i := 0; i < 2000; i++ {
		m, err := sigma.SampleMass(rng, partner, cms, 0)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, m, min)
		assert.LessOrEqual(t, m, cms-partner)
	}

	// No phase space below threshold.
	_, err := sigma.SampleMass(rng, partner, 1.1, 0)
	assert.Error(t, err)
}

func TestSampleMasses(t *testing.T) {
	_, sigma := loadSigma(t)
	rng := random.NewSource(7)

	cms := 3.0
	for i := 0; i < 500; i++ {
		m1, m2, err := sigma.SampleMasses(rng, sigma, cms, 0)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, m1, sigma.MinMassSpectral())
		assert.GreaterOrEqual(t, m2, sigma.MinMassSpectral())
		assert.Less(t, m1+m2, cms)
	}

	_, _, err := sigma.SampleMasses(rng, sigma, 1.5, 0)
	assert.Error(t, err)
}

func TestPossibleResonances(t *testing.T) {
	reg, sigma := loadSigma(t)
	eta := reg.MustFind(221)

	res := reg.PossibleResonances(eta, eta)
	require.Len(t, res, 1)
	assert.Equal(t, sigma, res[0])

	assert.Empty(t, reg.PossibleResonances(eta, sigma))
	// Memoized lookup returns the same answer.
	assert.Len(t, reg.PossibleResonances(eta, eta), 1)
}
