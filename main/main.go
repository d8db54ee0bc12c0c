package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/phil-mansfield/gocascade/action"
	"github.com/phil-mansfield/gocascade/geom"
	"github.com/phil-mansfield/gocascade/io"
	"github.com/phil-mansfield/gocascade/lattice"
	"github.com/phil-mansfield/gocascade/particle"
	"github.com/phil-mansfield/gocascade/random"
)

func main() {
	var (
		run string
		exampleConfig bool
	)

	flag.StringVar(
		&run, "Run", "",
		"Configuration file for an evolution run.",
	)
	flag.BoolVar(
		&exampleConfig, "ExampleConfig", false,
		"Prints an example configuration file to stdout.",
	)

	flag.Parse()

	switch {
	case exampleConfig && run == "":
		fmt.Println(io.ExampleConfigFile)
	case run != "" && !exampleConfig:
		con, err := io.ReadConfig(run)
		if err != nil { log.Fatal(err.Error()) }
		runMain(con)
	default:
		log.Fatal("Set exactly one of the 'Run' and 'ExampleConfig' flags.")
	}
}

func runMain(con *io.ConfigWrapper) {
	checkConfig(con)

	reg, err := particle.ReadTypesFile(con.Run.SpeciesFile)
	if err != nil { log.Fatal(err.Error()) }
	reg.GenerateAntiparticles()
	if err := reg.ReadDecayModesFile(con.Run.DecayModesFile); err != nil {
		log.Fatal(err.Error())
	}
	log.Printf("Loaded %d species.", len(reg.Types()))

	ds, err := io.ReadParticleList(con.Run.ParticleFile, reg)
	if err != nil { log.Fatal(err.Error()) }
	if len(ds) == 0 { log.Fatal("The initial particle list is empty.") }

	ps := particle.NewParticles()
	for _, d := range ds { ps.Insert(d) }
	log.Printf("Loaded %d particles.", ps.Len())

	out := os.Stdout
	if con.Run.OutputFile != "" {
		f, err := os.Create(con.Run.OutputFile)
		if err != nil { log.Fatal(err.Error()) }
		defer f.Close()
		out = f
	}
	sink := io.NewEventSink(out)

	rng := random.NewSource(uint64(con.Run.Seed))
	lat, finders := setupFinders(con, reg, rng)
	sched := &action.Scheduler{
		Reg: reg, Rng: rng,
		Finders: finders,
		Sinks: []action.Sink{sink},
	}

	evolve(con, sched, ps, lat)

	if con.Run.FinalDecays {
		stats := sched.Finalize(ps, con.Run.EndTime)
		log.Printf("Forced %d final decays.", stats.Executed)
	}

	sink.WriteFinalState(ps.Slice())
	if err := sink.Err(); err != nil { log.Fatal(err.Error()) }
	log.Printf("Done: %d particles in the final state.", ps.Len())
}

func checkConfig(con *io.ConfigWrapper) {
	if !con.Run.ValidSpeciesFile() {
		log.Fatal("Invalid/non-existent 'SpeciesFile' value.")
	} else if !con.Run.ValidDecayModesFile() {
		log.Fatal("Invalid/non-existent 'DecayModesFile' value.")
	} else if !con.Run.ValidParticleFile() {
		log.Fatal("Invalid/non-existent 'ParticleFile' value.")
	} else if !con.Run.ValidEndTime() {
		log.Fatal("Invalid/non-existent 'EndTime' value.")
	} else if !con.Run.ValidTimeStep() {
		log.Fatal("Invalid 'TimeStep' value.")
	}

	if !con.Box.ValidLength() {
		log.Fatal("Invalid 'Length' value.")
	}
	if !con.Scatter.ValidCrossSection() {
		log.Fatal("Invalid 'CrossSection' value.")
	}
	if con.Fluidization.Fluidizes() {
		if !con.Lattice.ValidCells() {
			log.Fatal("Invalid 'Cells' value.")
		} else if !con.Lattice.ValidSpacing() {
			log.Fatal("Invalid 'Spacing' value.")
		} else if !con.Fluidization.ValidTimeWindow() {
			log.Fatal("Invalid fluidization time window.")
		} else if !con.Fluidization.ValidFormFraction() {
			log.Fatal("Invalid 'FormFraction' value.")
		}
	}
}

func setupFinders(
	con *io.ConfigWrapper, reg *particle.Registry, rng *random.Source,
) (*lattice.Lattice, []action.Finder) {
	finders := []action.Finder{&action.DecayFinder{Rng: rng}}

	if con.Scatter.Scatters() {
		finders = append(finders, &action.ScatterFinder{
			Reg: reg, Rng: rng,
			CrossSection: con.Scatter.CrossSection,
			AllowFormation: con.Scatter.Formation,
		})
	}
	if con.Box.Walls() {
		finders = append(finders, &action.WallFinder{
			BoxLength: con.Box.Length,
		})
	}

	if !con.Fluidization.Fluidizes() { return nil, finders }

	lat, err := lattice.New(
		geom.Vec{con.Lattice.X, con.Lattice.Y, con.Lattice.Z},
		geom.Vec{con.Lattice.Spacing, con.Lattice.Spacing, con.Lattice.Spacing},
		[3]int{con.Lattice.Cells, con.Lattice.Cells, con.Lattice.Cells},
		con.Lattice.Periodic,
	)
	if err != nil { log.Fatal(err.Error()) }

	processes, err := con.Fluidization.ProcessSet()
	if err != nil { log.Fatal(err.Error()) }
	finders = append(finders, &action.FluidizationFinder{
		Lat: lat,
		Threshold: con.Fluidization.Threshold,
		MinTime: con.Fluidization.MinTime,
		MaxTime: con.Fluidization.MaxTime,
		FormFraction: con.Fluidization.FormFraction,
		Fluidizable: processes,
	})
	return lat, finders
}

func evolve(
	con *io.ConfigWrapper, sched *action.Scheduler,
	ps *particle.Particles, lat *lattice.Lattice,
) {
	steps := int(math.Ceil(con.Run.EndTime / con.Run.TimeStep))
	var total action.StepStats

	for i := 0; i < steps; i++ {
		t0 := float64(i) * con.Run.TimeStep
		dt := math.Min(con.Run.TimeStep, con.Run.EndTime-t0)

		if lat != nil {
			lat.Reset()
			lat.Deposit(ps.Slice())
			lat.Update()
		}

		stats := sched.Step(ps, t0, dt)
		total = total.Add(stats)

		if i%100 == 0 {
			log.Printf("Step %d/%d: t = %g, %d particles, %d actions so far.",
				i, steps, t0+dt, ps.Len(), total.Executed)
		}
	}

	log.Printf("Evolution finished: %d found, %d executed, %d discarded.",
		total.Found, total.Executed, total.Discarded)
}
