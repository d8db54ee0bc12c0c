package particle

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// chargeSuffixes in the order they must be tested: the two-character
// suffixes have to win over their one-character prefixes.
var chargeSuffixes = []struct {
	s string
	q int
}{
	{"++", 2}, {"--", -2}, {"+", 1}, {"-", -1}, {"0", 0},
}

func chargeString(q int) (string, error) {
	for _, cs := range chargeSuffixes {
		if cs.q == q { return cs.s, nil }
	}
	return "", fmt.Errorf("Invalid charge %d.", q)
}

// splitChargeSuffix splits a display name into its base name and trailing
// charge suffix, if any.
func splitChargeSuffix(name string) (base, suffix string) {
	for _, cs := range chargeSuffixes {
		if strings.HasSuffix(name, cs.s) {
			return name[:len(name)-len(cs.s)], cs.s
		}
	}
	return name, ""
}

// antiName constructs the antiparticle display name: the charge suffix is
// conjugated and a "~" marks states that are not distinguished by charge
// alone (baryons, strange and charmed mesons).
func antiName(name string, code Code) string {
	base, suffix := splitChargeSuffix(name)
	switch suffix {
	case "+":
		suffix = "-"
	case "-":
		suffix = "+"
	case "++":
		suffix = "--"
	case "--":
		suffix = "++"
	}
	if code.BaryonNumber() != 0 || code.Strangeness() != 0 ||
		code.Charm() != 0 {
		base += "~"
	}
	return base + suffix
}

// LoadTypes builds the species registry from the line-oriented species
// table. Each line holds a name, pole mass, pole width, parity and one or
// more PDG codes forming an isospin multiplet. Only the listed states are
// loaded; see GenerateAntiparticles. Lines starting with '#' and blank lines are
// skipped. All errors carry the offending line number and are fatal: they
// describe an inconsistent physics model.
func LoadTypes(r io.Reader) (*Registry, error) {
	reg := &Registry{multiplets: map[string]*Multiplet{}}

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
		if len(fields) < 5 {
			return nil, fmt.Errorf(
				"Species table line %d: need name, mass, width, parity and " +
					"at least one PDG code, got %d fields.", ln, len(fields),
			)
		}
		name := fields[0]
		mass, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf(
				"Species table line %d: invalid mass '%s'.", ln, fields[1],
			)
		}
		width, err := strconv.ParseFloat(fields[2], 64)
		if err != nil || width < 0 {
			return nil, fmt.Errorf(
				"Species table line %d: invalid width '%s'.", ln, fields[2],
			)
		}
		var parity int
		switch fields[3] {
		case "+":
			parity = 1
		case "-":
			parity = -1
		default:
			return nil, fmt.Errorf(
				"Species table line %d: parity must be '+' or '-', got '%s'.",
				ln, fields[3],
			)
		}

		codes := make([]Code, 0, len(fields)-4)
		for _, s := range fields[4:] {
			code, err := ParseCode(s)
			if err != nil {
				return nil, fmt.Errorf("Species table line %d: %s", ln, err)
			}
			codes = append(codes, code)
		}

		for _, code := range codes {
			fullName := name
			if len(codes) > 1 {
				suffix, err := chargeString(code.Charge())
				if err != nil {
					return nil, fmt.Errorf("Species table line %d: %s", ln, err)
				}
				fullName += suffix
			}
			reg.types = append(reg.types,
				newType(fullName, mass, width, parity, code))
		}
	}
	if err := scanner.Err(); err != nil { return nil, err }
	if len(reg.types) == 0 {
		return nil, fmt.Errorf("Species table is empty.")
	}

	sort.Slice(reg.types, func(i, j int) bool {
		return reg.types[i].pdg < reg.types[j].pdg
	})
	for i := 1; i < len(reg.types); i++ {
		if reg.types[i].pdg == reg.types[i-1].pdg {
			return nil, fmt.Errorf(
				"Duplicate PDG code %d in species table.", reg.types[i].pdg,
			)
		}
	}

	reg.linkAntiparticles()
	reg.buildMultiplets()

	return reg, nil
}

// ReadTypesFile is LoadTypes on a file path.
func ReadTypesFile(fname string) (*Registry, error) {
	f, err := os.Open(fname)
	if err != nil { return nil, err }
	defer f.Close()
	return LoadTypes(f)
}

// GenerateAntiparticles adds an antiparticle entry for every species with
// a distinct one that the table did not list explicitly. Fermion
// antiparticles flip parity. Call before loading the decay-mode table.
func (reg *Registry) GenerateAntiparticles() {
	var added []*Type
	for _, t := range reg.types {
		if !t.pdg.HasDistinctAntiparticle() { continue }
		if _, err := reg.Find(t.pdg.Anti()); err == nil { continue }
		parity := t.parity
		if t.pdg.Spin()%2 == 1 { parity = -parity }
		added = append(added, newType(
			antiName(t.name, t.pdg), t.mass, t.width, parity, t.pdg.Anti(),
		))
	}
	if len(added) == 0 { return }
	reg.types = append(reg.types, added...)
	sort.Slice(reg.types, func(i, j int) bool {
		return reg.types[i].pdg < reg.types[j].pdg
	})
	reg.linkAntiparticles()
	reg.buildMultiplets()
}

func (reg *Registry) linkAntiparticles() {
	for _, t := range reg.types {
		if !t.pdg.HasDistinctAntiparticle() { continue }
		if anti, err := reg.Find(t.pdg.Anti()); err == nil {
			t.anti = anti
		}
	}
}

func (reg *Registry) buildMultiplets() {
	reg.multiplets = map[string]*Multiplet{}
	for _, t := range reg.types {
		base, _ := splitChargeSuffix(t.name)
		m, ok := reg.multiplets[base]
		if !ok {
			m = &Multiplet{name: base}
			reg.multiplets[base] = m
		}
		m.states = append(m.states, t)
		t.multiplet = m
	}
	// States sorted by ascending charge carry I3 = -I, -I+1, ..., +I.
	for _, m := range reg.multiplets {
		sort.SliceStable(m.states, func(i, j int) bool {
			return m.states[i].Charge() < m.states[j].Charge()
		})
		twoI := m.Isospin()
		for i, t := range m.states {
			t.isospin3 = -twoI + 2*i
		}
	}
}
