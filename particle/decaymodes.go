package particle

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

// decayTypeCache shares decay-type objects, and with them the tabulated
// phase-space integrals, between all mothers with the same final state.
type decayTypeCache map[string]*DecayType

// comboKey is an order-insensitive key for a final-state species list.
func comboKey(daughters []*Type) string {
	codes := make([]int, len(daughters))
	for i, t := range daughters { codes[i] = int(t.pdg) }
	sort.Ints(codes)
	return fmt.Sprint(codes)
}

func (c decayTypeCache) get(daughters []*Type, l int) (*DecayType, error) {
	key := fmt.Sprint(comboKey(daughters), l)
	if dt, ok := c[key]; ok { return dt, nil }
	dt, err := newDecayType(daughters, l)
	if err != nil { return nil, err }
	c[key] = dt
	return dt, nil
}

// resolveStates maps a table name to the concrete species it stands for: a
// single state if the name is a species name, all states of the multiplet
// if it is a multiplet base name.
func (reg *Registry) resolveStates(name string) ([]*Type, error) {
	if t, err := reg.FindName(name); err == nil {
		return []*Type{t}, nil
	}
	if m, err := reg.FindMultiplet(name); err == nil {
		return m.states, nil
	}
	return nil, fmt.Errorf("Unknown species or multiplet '%s'.", name)
}

// LoadDecayModes reads the decay-mode table and attaches branches to the
// registry. The table is organized in sections: a line holding a single
// species or multiplet name opens a section, and every following line
// "ratio L daughter..." adds one mode to each state of that section.
// Daughters given as multiplet names are expanded over all
// charge-conserving combinations, weighted by squared isospin
// Clebsch-Gordan coefficients for two-body modes and equally for
// three-body modes. All table errors are fatal and carry the line number.
func (reg *Registry) LoadDecayModes(r io.Reader) error {
	cache := decayTypeCache{}
	var mothers []*Type
	seen := map[string]bool{}

	scanner := bufio.NewScanner(r)
	ln := 0
	for scanner.Scan() {
		ln++
		line := strings.TrimSpace(scanner.Text())
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" { continue }
		fields := strings.Fields(line)

		if _, err := strconv.ParseFloat(fields[0], 64); err != nil {
			// Section header.
			if len(fields) != 1 {
				return fmt.Errorf(
					"Decay table line %d: section header must be a single "+
						"name, got '%s'.", ln, line,
				)
			}
			if seen[fields[0]] {
				return fmt.Errorf(
					"Decay table line %d: duplicate section '%s'.",
					ln, fields[0],
				)
			}
			seen[fields[0]] = true
			mothers, err = reg.resolveStates(fields[0])
			if err != nil {
				return fmt.Errorf("Decay table line %d: %s", ln, err)
			}
			continue
		}

		if mothers == nil {
			return fmt.Errorf(
				"Decay table line %d: mode given before any section header.",
				ln,
			)
		}
		if len(fields) < 4 || len(fields) > 5 {
			return fmt.Errorf(
				"Decay table line %d: need ratio, L and 2 or 3 daughters, "+
					"got %d fields.", ln, len(fields),
			)
		}
		ratio, _ := strconv.ParseFloat(fields[0], 64)
		if ratio <= 0 {
			return fmt.Errorf(
				"Decay table line %d: branching ratio must be positive, "+
					"got %g.", ln, ratio,
			)
		}
		l, err := strconv.Atoi(fields[1])
		if err != nil || l < 0 || l > 4 {
			return fmt.Errorf(
				"Decay table line %d: invalid angular momentum '%s'.",
				ln, fields[1],
			)
		}

		cands := make([][]*Type, len(fields)-2)
		for i, name := range fields[2:] {
			cands[i], err = reg.resolveStates(name)
			if err != nil {
				return fmt.Errorf("Decay table line %d: %s", ln, err)
			}
		}

		for _, mother := range mothers {
			err := addModes(cache, mother, ratio, l, cands, ln)
			if err != nil { return err }
		}
	}
	if err := scanner.Err(); err != nil { return err }

	if err := reg.addAntiModes(cache); err != nil { return err }
	return reg.checkDecayModes()
}

// ReadDecayModesFile is LoadDecayModes on a file path.
func (reg *Registry) ReadDecayModesFile(fname string) error {
	f, err := os.Open(fname)
	if err != nil { return err }
	defer f.Close()
	return reg.LoadDecayModes(f)
}

// addModes expands one mode line for one mother state over all
// charge-conserving daughter combinations and attaches the resulting
// branches.
func addModes(
	cache decayTypeCache, mother *Type,
	ratio float64, l int, cands [][]*Type, ln int,
) error {
	combos := [][]*Type{nil}
	for _, cand := range cands {
		var next [][]*Type
		for _, combo := range combos {
			for _, t := range cand {
				c := make([]*Type, len(combo), len(combo)+1)
				copy(c, combo)
				next = append(next, append(c, t))
			}
		}
		combos = next
	}

	var kept [][]*Type
	var weights []float64
	comboIdx := map[string]int{}
	found := false
	wSum := 0.0
	for _, combo := range combos {
		q, b, s := 0, 0, 0
		for _, t := range combo {
			q += t.Charge()
			b += t.BaryonNumber()
			s += t.Strangeness()
		}
		if q != mother.Charge() || b != mother.BaryonNumber() ||
			s != mother.Strangeness() {
			continue
		}
		found = true
		w := 1.0
		if len(combo) == 2 {
			w = clebschGordanSqr(
				combo[0].Isospin(), combo[0].Isospin3(),
				combo[1].Isospin(), combo[1].Isospin3(),
				mother.Isospin(), mother.Isospin3(),
			)
			// Isospin-forbidden channel, e.g. rho0 -> pi0 pi0.
			if w < 1e-12 { continue }
		}
		// Permutations of identical multiplets describe the same final
		// state and are merged.
		key := comboKey(combo)
		if i, ok := comboIdx[key]; ok {
			weights[i] += w
		} else {
			comboIdx[key] = len(kept)
			kept = append(kept, combo)
			weights = append(weights, w)
		}
		wSum += w
	}
	if !found {
		return fmt.Errorf(
			"Decay table line %d: no charge-conserving final state for %s.",
			ln, mother.name,
		)
	}
	if wSum <= 0 {
		return fmt.Errorf(
			"Decay table line %d: isospin-violating decay of %s.",
			ln, mother.name,
		)
	}

	for i, combo := range kept {
		if len(combo) == 2 {
			if err := checkTwoBody(mother, combo, l, ln); err != nil {
				return err
			}
		}
		dt, err := cache.get(combo, l)
		if err != nil {
			return fmt.Errorf("Decay table line %d: %s", ln, err)
		}
		if dt.class == TwoBodyStable && mother.mass <= dt.Threshold() {
			return fmt.Errorf(
				"Decay table line %d: pole mass of %s (%g) does not exceed "+
					"the threshold %g of %s %s.", ln, mother.name, mother.mass,
				dt.Threshold(), combo[0].name, combo[1].name,
			)
		}
		mother.modes = append(mother.modes,
			&Branch{dt, ratio * weights[i] / wSum})
	}
	return nil
}

// checkTwoBody enforces parity conservation and the angular-momentum
// window allowed by the spins.
func checkTwoBody(mother *Type, d []*Type, l int, ln int) error {
	sign := 1
	if l%2 == 1 { sign = -1 }
	if mother.parity != d[0].parity*d[1].parity*sign {
		return fmt.Errorf(
			"Decay table line %d: parity violation in %s -> %s %s with L=%d.",
			ln, mother.name, d[0].name, d[1].name, l,
		)
	}

	twoJ := mother.Spin()
	sMin := iabs(d[0].Spin() - d[1].Spin())
	sMax := d[0].Spin() + d[1].Spin()
	if (twoJ+sMin)%2 != 0 {
		return fmt.Errorf(
			"Decay table line %d: spins of %s -> %s %s cannot couple.",
			ln, mother.name, d[0].name, d[1].name,
		)
	}
	minTwoL := 0
	switch {
	case twoJ < sMin:
		minTwoL = sMin - twoJ
	case twoJ > sMax:
		minTwoL = twoJ - sMax
	}
	if 2*l < minTwoL || 2*l > twoJ+sMax {
		return fmt.Errorf(
			"Decay table line %d: L=%d outside the allowed window [%d, %d] "+
				"for %s -> %s %s.", ln, l, minTwoL/2, (twoJ+sMax)/2,
			mother.name, d[0].name, d[1].name,
		)
	}
	return nil
}

// addAntiModes mirrors the loaded modes onto antiparticle entries that the
// table does not list explicitly.
func (reg *Registry) addAntiModes(cache decayTypeCache) error {
	for _, t := range reg.types {
		if t.anti == nil || len(t.modes) == 0 || len(t.anti.modes) > 0 {
			continue
		}
		for _, b := range t.modes {
			daughters := make([]*Type, len(b.dt.daughters))
			for i, d := range b.dt.daughters { daughters[i] = d.Anti() }
			dt, err := cache.get(daughters, b.dt.l)
			if err != nil {
				return fmt.Errorf("Decay modes of %s: %s", t.anti.name, err)
			}
			t.anti.modes = append(t.anti.modes, &Branch{dt, b.weight})
		}
	}
	return nil
}

// checkDecayModes runs the whole-table consistency pass: stable species
// must have no branches and unstable species at least one with the pole
// mass above the lowest threshold, and the branching ratios of every
// species are renormalized to sum to 1.
func (reg *Registry) checkDecayModes() error {
	for _, t := range reg.types {
		if t.IsStable() {
			if len(t.modes) > 0 {
				return fmt.Errorf(
					"Stable species %s has %d decay modes.",
					t.name, len(t.modes),
				)
			}
			continue
		}
		if len(t.modes) == 0 {
			return fmt.Errorf("Unstable species %s has no decay modes.", t.name)
		}

		minThr := math.Inf(1)
		sum := 0.0
		for _, b := range t.modes {
			minThr = math.Min(minThr, b.Threshold())
			sum += b.weight
		}
		if t.mass <= minThr {
			return fmt.Errorf(
				"Pole mass of %s (%g) is below all decay thresholds (%g).",
				t.name, t.mass, minThr,
			)
		}
		if math.Abs(sum-1) > ReallySmall {
			if math.Abs(sum-1) > 0.01 {
				log.Printf(
					"Renormalizing decay branching ratios of %s by 1/%g.",
					t.name, sum,
				)
			}
			for _, b := range t.modes { b.weight /= sum }
		}
	}
	return nil
}
