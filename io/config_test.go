package io

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/gocascade/particle"
)

func TestReadConfigDefaults(t *testing.T) {
	text := `[Run]
SpeciesFile = particles.txt
DecayModesFile = decaymodes.txt
ParticleFile = init.dat
EndTime = 50
`
	con, err := ReadConfigString(text)
	require.NoError(t, err)

	assert.True(t, con.Run.ValidSpeciesFile())
	assert.True(t, con.Run.ValidDecayModesFile())
	assert.True(t, con.Run.ValidParticleFile())
	assert.True(t, con.Run.ValidEndTime())
	assert.Equal(t, 50.0, con.Run.EndTime)
	assert.Equal(t, 0.1, con.Run.TimeStep)
	assert.Equal(t, 42, con.Run.Seed)
	assert.True(t, con.Run.FinalDecays)

	assert.False(t, con.Box.Walls())
	assert.False(t, con.Scatter.Scatters())
	assert.False(t, con.Fluidization.Fluidizes())
	assert.Equal(t, 20, con.Lattice.Cells)
	assert.Equal(t, 1.0, con.Lattice.Spacing)
}

func TestReadConfigOverrides(t *testing.T) {
	text := `[Run]
SpeciesFile = particles.txt
DecayModesFile = decaymodes.txt
ParticleFile = init.dat
EndTime = 50
TimeStep = 0.5
Seed = 7
FinalDecays = false

[Box]
Length = 10

[Scatter]
CrossSection = 4
Formation = true

[Lattice]
Cells = 8
X = 0
Y = 0
Z = 0
Spacing = 1.25
Periodic = true

[Fluidization]
Threshold = 0.5
MinTime = 1
MaxTime = 30
FormFraction = 0.5
Processes = Elastic
Processes = Decay
`
	con, err := ReadConfigString(text)
	require.NoError(t, err)

	assert.Equal(t, 0.5, con.Run.TimeStep)
	assert.True(t, con.Run.ValidTimeStep())
	assert.Equal(t, 7, con.Run.Seed)
	assert.False(t, con.Run.FinalDecays)

	assert.True(t, con.Box.Walls())
	assert.Equal(t, 10.0, con.Box.Length)
	assert.True(t, con.Scatter.Scatters())
	assert.True(t, con.Scatter.Formation)
	assert.True(t, con.Lattice.Periodic)
	assert.Equal(t, 1.25, con.Lattice.Spacing)

	assert.True(t, con.Fluidization.Fluidizes())
	assert.True(t, con.Fluidization.ValidTimeWindow())
	set, err := con.Fluidization.ProcessSet()
	require.NoError(t, err)
	assert.Equal(t, map[particle.ProcessType]bool{
		particle.ProcessElastic: true,
		particle.ProcessDecay: true,
	}, set)
}

func TestReadConfigInvalid(t *testing.T) {
	con, err := ReadConfigString("[Run]\nEndTime = -1\n")
	require.NoError(t, err)
	assert.False(t, con.Run.ValidSpeciesFile())
	assert.False(t, con.Run.ValidEndTime())

	_, err = ReadConfigString("[Run]\nNoSuchVariable = 1\n")
	assert.Error(t, err)
}

func TestProcessSetDefault(t *testing.T) {
	con := DefaultConfigWrapper()
	set, err := con.Fluidization.ProcessSet()
	require.NoError(t, err)
	assert.Equal(t, map[particle.ProcessType]bool{
		particle.ProcessElastic: true,
		particle.ProcessDecay: true,
		particle.ProcessResonanceFormation: true,
	}, set)

	con.Fluidization.Processes = []string{"elastic"}
	set, err = con.Fluidization.ProcessSet()
	require.NoError(t, err)
	assert.Equal(t,
		map[particle.ProcessType]bool{particle.ProcessElastic: true}, set)

	con.Fluidization.Processes = []string{"NoSuchProcess"}
	_, err = con.Fluidization.ProcessSet()
	assert.Error(t, err)
}

func TestExampleConfigFileParses(t *testing.T) {
	_, err := ReadConfigString(ExampleConfigFile)
	assert.NoError(t, err)
}
