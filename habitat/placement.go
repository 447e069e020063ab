package habitat

import (
	"fmt"

	"github.com/mbg-sim/zoox/config"
	"github.com/mbg-sim/zoox/rng"
)

// Region is a half-open box of cells: levels [L0,L1), rows [R0,R1),
// cols [C0,C1).
type Region struct {
	L0, L1, R0, R1, C0, C1 int
}

// Empty reports whether the region contains no cells.
func (rg Region) Empty() bool {
	return rg.L1 <= rg.L0 || rg.R1 <= rg.R0 || rg.C1 <= rg.C0
}

// RandomCell picks a cell uniformly within the region.
func (g *Grid) RandomCell(r *rng.Source, rg Region) *Cell {
	l := rg.L0 + r.Intn(rg.L1-rg.L0)
	row := rg.R0 + r.Intn(rg.R1-rg.R0)
	col := rg.C0 + r.Intn(rg.C1-rg.C0)
	return g.At(l, row, col)
}

// Whole returns the region covering the full lattice.
func (g *Grid) Whole() Region {
	return Region{L0: 0, L1: g.levels, R0: 0, R1: g.rows, C0: 0, C1: g.cols}
}

// SeedRegion resolves the placement region for the n-th seeded member of a
// clade. prevCum and cum are the clade's cumulative-proportion bounds, which
// slice rows (horizontal) or columns (vertical). The quadrant strategy splits
// each of two competing clades across diagonally opposite quadrants, half the
// clade's members in each.
func (g *Grid) SeedRegion(strategy string, clade int, prevCum, cum float64, secondHalf bool) (Region, error) {
	switch strategy {
	case config.PlaceRandomize:
		return g.Whole(), nil

	case config.PlaceHorizontal:
		rg := g.Whole()
		rg.R0 = int(float64(g.rows) * prevCum)
		rg.R1 = int(float64(g.rows) * cum)
		return clampRegion(rg, g)

	case config.PlaceVertical:
		rg := g.Whole()
		rg.C0 = int(float64(g.cols) * prevCum)
		rg.C1 = int(float64(g.cols) * cum)
		return clampRegion(rg, g)

	case config.PlaceQuadrant:
		rg := g.Whole()
		halfR, halfC := g.rows/2, g.cols/2
		// Clade 0 occupies the main diagonal, clade 1 the anti-diagonal.
		low := secondHalf
		if clade%2 == 0 {
			if low {
				rg.R0, rg.R1, rg.C0, rg.C1 = 0, halfR, 0, halfC
			} else {
				rg.R0, rg.R1, rg.C0, rg.C1 = halfR, g.rows, halfC, g.cols
			}
		} else {
			if low {
				rg.R0, rg.R1, rg.C0, rg.C1 = 0, halfR, halfC, g.cols
			} else {
				rg.R0, rg.R1, rg.C0, rg.C1 = halfR, g.rows, 0, halfC
			}
		}
		return clampRegion(rg, g)

	default:
		return Region{}, fmt.Errorf("habitat: unknown placement strategy %q", strategy)
	}
}

func clampRegion(rg Region, g *Grid) (Region, error) {
	if rg.R1 > g.rows {
		rg.R1 = g.rows
	}
	if rg.C1 > g.cols {
		rg.C1 = g.cols
	}
	if rg.Empty() {
		return Region{}, fmt.Errorf("habitat: placement region is empty (grid too small for clade proportions)")
	}
	return rg, nil
}
