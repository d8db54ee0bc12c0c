package io

import (
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/phil-mansfield/table"

	"github.com/phil-mansfield/gocascade/geom"
	"github.com/phil-mansfield/gocascade/particle"
)

// Column layout of the external particle-list format.
const (
	listColT = iota
	listColX
	listColY
	listColZ
	listColMass
	listColP0
	listColPx
	listColPy
	listColPz
	listColPDG
	listColCharge
	listColNum
)

// ReadParticleList reads the initial ensemble from a whitespace-separated
// table with columns t x y z mass p0 px py pz pdg charge. Rows with a PDG
// code missing from the registry are skipped with a warning; a charge that
// contradicts the PDG code is an error. The energy column is only checked
// for consistency, momenta are put on shell from mass and three-momentum.
func ReadParticleList(
	fname string, reg *particle.Registry,
) ([]particle.Data, error) {
	colIdxs := make([]int, listColNum)
	for i := range colIdxs { colIdxs[i] = i }
	cols, err := table.ReadTable(fname, colIdxs, nil)
	if err != nil { return nil, err }

	var ds []particle.Data
	for i := range cols[listColT] {
		code := particle.Code(int(cols[listColPDG][i]))
		ty, err := reg.Find(code)
		if errors.Is(err, particle.ErrNotFound) {
			log.Printf("Skipping unknown PDG code %d in row %d of %s.",
				int(code), i+1, fname)
			continue
		} else if err != nil {
			return nil, err
		}

		charge := int(cols[listColCharge][i])
		if charge != ty.Charge() {
			return nil, fmt.Errorf(
				"Row %d of %s: charge %d contradicts PDG code %d (charge %d).",
				i+1, fname, charge, int(code), ty.Charge(),
			)
		}

		mass := cols[listColMass][i]
		p := geom.Vec{
			cols[listColPx][i], cols[listColPy][i], cols[listColPz][i],
		}
		pos := geom.NewFourVec(
			cols[listColT][i], cols[listColX][i], cols[listColY][i],
			cols[listColZ][i],
		)
		d := particle.NewData(ty, mass, p, pos)

		p0 := cols[listColP0][i]
		if math.Abs(p0-d.Momentum[0]) > 1e-3*d.Momentum[0] {
			log.Printf("Row %d of %s: energy %g is off shell, using %g.",
				i+1, fname, p0, d.Momentum[0])
		}
		ds = append(ds, d)
	}
	return ds, nil
}
