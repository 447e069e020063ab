// Package habitat models the host tissue lattice: a 3-D grid of host cells
// with a configurable adjacency shape used for eviction relocation and
// initial placement.
package habitat

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/mbg-sim/zoox/config"
)

// Cell is one host cell in the lattice. Residents are kept in insertion
// order; capacity is unbounded, with crowding regulated by the daily
// economy pass rather than a hard cap.
type Cell struct {
	Level, Row, Col int
	Demand          float64 // fuzzed photosynthate demand per day
	Residents       []ecs.Entity
}

// Add appends a resident to the cell.
func (c *Cell) Add(e ecs.Entity) {
	c.Residents = append(c.Residents, e)
}

// Remove deletes a resident from the cell, preserving order.
// Returns false if the entity was not resident here.
func (c *Cell) Remove(e ecs.Entity) bool {
	for i, r := range c.Residents {
		if r == e {
			c.Residents = append(c.Residents[:i], c.Residents[i+1:]...)
			return true
		}
	}
	return false
}

// Grid owns the host cells and answers adjacency queries.
type Grid struct {
	levels, rows, cols int
	shape              string
	cells              []Cell
}

// New constructs a grid of empty cells. Dimensions and shape must already
// have passed config validation.
func New(rows, cols, levels int, shape string) (*Grid, error) {
	if rows < 1 || cols < 1 || levels < 1 {
		return nil, fmt.Errorf("habitat: invalid dimensions %dx%dx%d", rows, cols, levels)
	}
	if shape != config.ShapeSquare && shape != config.ShapeHex {
		return nil, fmt.Errorf("habitat: unknown grid shape %q", shape)
	}
	g := &Grid{
		levels: levels,
		rows:   rows,
		cols:   cols,
		shape:  shape,
		cells:  make([]Cell, levels*rows*cols),
	}
	for l := 0; l < levels; l++ {
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				cell := g.At(l, r, c)
				cell.Level, cell.Row, cell.Col = l, r, c
			}
		}
	}
	return g, nil
}

// Dims returns (levels, rows, cols).
func (g *Grid) Dims() (int, int, int) {
	return g.levels, g.rows, g.cols
}

// NumCells returns the total cell count.
func (g *Grid) NumCells() int {
	return len(g.cells)
}

// At returns the cell at the given coordinates.
func (g *Grid) At(level, row, col int) *Cell {
	return &g.cells[(level*g.rows+row)*g.cols+col]
}

// CellByIndex returns the i-th cell in (level, row, col) order.
func (g *Grid) CellByIndex(i int) *Cell {
	return &g.cells[i]
}

// ForEach visits every cell in fixed (level, row, col) order.
func (g *Grid) ForEach(fn func(*Cell)) {
	for i := range g.cells {
		fn(&g.cells[i])
	}
}

// Population sums resident counts across all cells.
func (g *Grid) Population() int {
	n := 0
	for i := range g.cells {
		n += len(g.cells[i].Residents)
	}
	return n
}
