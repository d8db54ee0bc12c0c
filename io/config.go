package io

import (
	"fmt"
	"strings"

	"gopkg.in/gcfg.v1"

	"github.com/phil-mansfield/gocascade/particle"
)

const ExampleConfigFile = `[Run]

#######################
# Required Parameters #
#######################

# The species table: one line per isospin multiplet giving name, pole mass,
# pole width, parity, and one PDG code per charge state.
SpeciesFile = path/to/particles.txt

# The decay-mode table: per-species blocks of "ratio L daughters...".
DecayModesFile = path/to/decaymodes.txt

# The initial particle list. Columns:
# t x y z mass p0 px py pz pdg charge
ParticleFile = path/to/particles.dat

# Evolve the ensemble from t = 0 to EndTime, in fm.
EndTime = 100

#######################
# Optional Parameters #
#######################

# Step size of the evolution loop, in fm.
# TimeStep = 0.1

# File the interaction record is written to. Omit to write to stdout.
# OutputFile = events.oscar

# Seed of the run's random source. The same seed reproduces the same run.
# Seed = 42

# Force the resonances still alive at EndTime to decay down to stable
# particles.
# FinalDecays = true

[Box]

# Side length of the periodic box [0, L)^3, in fm. Particles crossing a wall
# re-enter on the opposite side. Leave unset for an unbounded system.
# Length = 10

[Scatter]

# Total two-body cross section in fm^2. Leave unset to disable the pairwise
# collision search.
# CrossSection = 4

# Allow 2 -> 1 resonance formation in addition to elastic scattering.
# Formation = true

[Lattice]

# Number of cells per axis of the energy-momentum-tensor lattice.
# Cells = 20

# Lowermost corner of the lattice, in fm.
# X = -10
# Y = -10
# Z = -10

# Cell side length, in fm.
# Spacing = 1

# Wrap deposits and reads around the lattice. Set this when [Box] is set.
# Periodic = false

[Fluidization]

# Particles in regions whose Landau-frame energy density exceeds Threshold
# (GeV/fm^3) are handed over to the fluid layer. Leave unset to disable.
# Threshold = 0.5

# Only particles with t in [MinTime, MaxTime] are handed over.
# MinTime = 0
# MaxTime = 100

# An unformed particle is handed over only after this fraction of its
# remaining formation time has passed.
# FormFraction = 0.7

# The processes whose products may fluidize. May be given multiple times.
# Defaults to Elastic, Decay, and ResonanceFormation.
# Processes = Elastic
# Processes = Decay`

type RunConfig struct {
	// Required
	SpeciesFile, DecayModesFile, ParticleFile string
	EndTime float64

	// Optional
	TimeStep float64
	OutputFile string
	Seed int
	FinalDecays bool
}

func (con *RunConfig) ValidSpeciesFile() bool {
	return con.SpeciesFile != ""
}
func (con *RunConfig) ValidDecayModesFile() bool {
	return con.DecayModesFile != ""
}
func (con *RunConfig) ValidParticleFile() bool {
	return con.ParticleFile != ""
}
func (con *RunConfig) ValidEndTime() bool {
	return con.EndTime > 0
}
func (con *RunConfig) ValidTimeStep() bool {
	return con.TimeStep > 0 && con.TimeStep <= con.EndTime
}

type BoxConfig struct {
	Length float64
}

// Walls reports whether wall crossings should be tracked at all.
func (con *BoxConfig) Walls() bool { return con.Length > 0 }

func (con *BoxConfig) ValidLength() bool {
	return con.Length >= 0
}

type ScatterConfig struct {
	CrossSection float64
	Formation bool
}

// Scatters reports whether the pairwise collision search is enabled.
func (con *ScatterConfig) Scatters() bool { return con.CrossSection > 0 }

func (con *ScatterConfig) ValidCrossSection() bool {
	return con.CrossSection >= 0
}

type LatticeConfig struct {
	Cells int
	X, Y, Z float64
	Spacing float64
	Periodic bool
}

func (con *LatticeConfig) ValidCells() bool {
	return con.Cells >= 2
}
func (con *LatticeConfig) ValidSpacing() bool {
	return con.Spacing > 0
}

type FluidizationConfig struct {
	Threshold float64
	MinTime, MaxTime float64
	FormFraction float64
	Processes []string
}

// Fluidizes reports whether the fluidization hand-over is enabled.
func (con *FluidizationConfig) Fluidizes() bool { return con.Threshold > 0 }

func (con *FluidizationConfig) ValidThreshold() bool {
	return con.Threshold >= 0
}
func (con *FluidizationConfig) ValidTimeWindow() bool {
	return con.MinTime >= 0 && con.MaxTime > con.MinTime
}
func (con *FluidizationConfig) ValidFormFraction() bool {
	return con.FormFraction >= 0 && con.FormFraction <= 1
}

// ProcessSet resolves the configured process names against the process-type
// enumeration. An empty list falls back to the default hand-over set.
func (con *FluidizationConfig) ProcessSet() (map[particle.ProcessType]bool, error) {
	set := map[particle.ProcessType]bool{}
	if len(con.Processes) == 0 {
		set[particle.ProcessElastic] = true
		set[particle.ProcessDecay] = true
		set[particle.ProcessResonanceFormation] = true
		return set, nil
	}
	for _, name := range con.Processes {
		found := false
		var p particle.ProcessType
		for p = 0; p <= particle.ProcessFluidization; p++ {
			if strings.ToLower(p.String()) == strings.ToLower(name) {
				set[p] = true
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("Unknown fluidization process '%s'.", name)
		}
	}
	return set, nil
}

type ConfigWrapper struct {
	Run RunConfig
	Box BoxConfig
	Scatter ScatterConfig
	Lattice LatticeConfig
	Fluidization FluidizationConfig
}

func DefaultConfigWrapper() *ConfigWrapper {
	con := &ConfigWrapper{}
	con.Run.TimeStep = 0.1
	con.Run.Seed = 42
	con.Run.FinalDecays = true
	con.Lattice.Cells = 20
	con.Lattice.X, con.Lattice.Y, con.Lattice.Z = -10, -10, -10
	con.Lattice.Spacing = 1
	con.Fluidization.MaxTime = 100
	con.Fluidization.FormFraction = 0.7
	return con
}

// ReadConfig parses fname on top of the defaults.
func ReadConfig(fname string) (*ConfigWrapper, error) {
	con := DefaultConfigWrapper()
	if err := gcfg.ReadFileInto(con, fname); err != nil {
		return nil, err
	}
	return con, nil
}

// ReadConfigString is ReadConfig for an in-memory configuration text.
func ReadConfigString(text string) (*ConfigWrapper, error) {
	con := DefaultConfigWrapper()
	if err := gcfg.ReadStringInto(con, text); err != nil {
		return nil, err
	}
	return con, nil
}
