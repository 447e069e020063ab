package habitat

import (
	"github.com/mbg-sim/zoox/config"
	"github.com/mbg-sim/zoox/rng"
)

// Hexagonal planar offsets as (row, col) deltas, keyed by row parity
// (offset coordinates). Square adjacency generates its offsets in
// squareNeighbors instead.
var hexEvenRow = [][2]int{
	{-1, -1}, {-1, 0},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0},
}

var hexOddRow = [][2]int{
	{-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, 0}, {1, 1},
}

// MaxNeighbors returns the neighbor count of an interior cell under the
// grid's shape: 8 or 26 for square, 6 or 20 for hex, depending on whether
// the lattice has more than one level.
func (g *Grid) MaxNeighbors() int {
	switch {
	case g.shape == config.ShapeSquare && g.levels == 1:
		return 8
	case g.shape == config.ShapeSquare:
		return 26
	case g.levels == 1:
		return 6
	default:
		return 20
	}
}

// Neighbors returns the cells adjacent to (level, row, col) under the
// configured topology, clipped to the lattice bounds.
func (g *Grid) Neighbors(level, row, col int) []*Cell {
	if g.shape == config.ShapeSquare {
		return g.squareNeighbors(level, row, col)
	}
	return g.hexNeighbors(level, row, col)
}

func (g *Grid) squareNeighbors(level, row, col int) []*Cell {
	var out []*Cell
	appendIn := func(dl int) {
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				if dl == 0 && dr == 0 && dc == 0 {
					continue
				}
				out = g.appendCell(out, level+dl, row+dr, col+dc)
			}
		}
	}
	appendIn(0)
	if level > 0 {
		appendIn(-1)
	}
	if level < g.levels-1 {
		appendIn(1)
	}
	return out
}

func (g *Grid) hexNeighbors(level, row, col int) []*Cell {
	offsets := hexEvenRow
	if row%2 != 0 {
		offsets = hexOddRow
	}
	var out []*Cell
	appendPlane := func(l int) {
		for _, off := range offsets {
			out = g.appendCell(out, l, row+off[0], col+off[1])
		}
	}
	appendPlane(level)
	if level < g.levels-1 {
		appendPlane(level + 1)
		out = g.appendCell(out, level+1, row, col)
	}
	if level > 0 {
		appendPlane(level - 1)
		out = g.appendCell(out, level-1, row, col)
	}
	return out
}

func (g *Grid) appendCell(out []*Cell, level, row, col int) []*Cell {
	if level < 0 || level >= g.levels || row < 0 || row >= g.rows || col < 0 || col >= g.cols {
		return out
	}
	return append(out, g.At(level, row, col))
}

// RelocationTarget picks an adjacent cell for an individual evicted from
// (level, row, col). Candidates are shuffled and the first taken. A cell on
// the lattice boundary has fewer than MaxNeighbors candidates; with the
// complementary probability the evictee lands outside the modeled host and
// nil is returned. A cell with no neighbors at all (a single-cell lattice)
// returns itself: under multi-occupancy the evictee simply stays put.
func (g *Grid) RelocationTarget(r *rng.Source, level, row, col int) *Cell {
	neighbors := g.Neighbors(level, row, col)
	if len(neighbors) == 0 {
		return g.At(level, row, col)
	}
	r.Shuffle(len(neighbors), func(i, j int) {
		neighbors[i], neighbors[j] = neighbors[j], neighbors[i]
	})
	max := g.MaxNeighbors()
	if len(neighbors) < max {
		inside := float64(len(neighbors)) / float64(max)
		if r.Uniform() > inside {
			return nil
		}
	}
	return neighbors[0]
}
