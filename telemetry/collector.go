package telemetry

import (
	"github.com/mbg-sim/zoox/sim"
)

// Collector implements sim.Observer: it accumulates daily census rows and
// removal records and forwards them to the OutputManager. Write errors are
// sticky and surfaced through Err after the run.
type Collector struct {
	out        *OutputManager
	cladeNames []string

	days  int
	last  sim.Counts
	rows  []PopulationRow // in-memory series, also feeds the sqlite archive
	exits ExitTotals
	err   error
}

// NewCollector creates a collector writing through the given OutputManager
// (which may be nil to collect in memory only).
func NewCollector(out *OutputManager, cladeNames []string) *Collector {
	return &Collector{out: out, cladeNames: cladeNames}
}

// ObserveDay records one day's census.
func (c *Collector) ObserveDay(day int, counts sim.Counts) {
	c.days = day
	c.last = counts

	rows := make([]PopulationRow, len(counts.PerClade))
	for i, n := range counts.PerClade {
		name := ""
		if i < len(c.cladeNames) {
			name = c.cladeNames[i]
		}
		rows[i] = PopulationRow{
			Day:     day,
			Clade:   i,
			Name:    name,
			Count:   n,
			Total:   counts.Total,
			Mutants: counts.Mutants,
		}
	}
	c.rows = append(c.rows, rows...)

	if err := c.out.WritePopulation(rows); err != nil && c.err == nil {
		c.err = err
	}
}

// ObserveExit records one symbiont removal.
func (c *Collector) ObserveExit(rec sim.ExitRecord) {
	switch rec.Cause {
	case sim.ExitDenouement:
		c.exits.Denouement++
	case sim.ExitDigestion:
		c.exits.Digestion++
	case sim.ExitEviction:
		c.exits.Eviction++
	}

	if err := c.out.WriteExit(exitRow(rec)); err != nil && c.err == nil {
		c.err = err
	}
}

// Days returns the last observed day.
func (c *Collector) Days() int {
	return c.days
}

// Last returns the most recent census.
func (c *Collector) Last() sim.Counts {
	return c.last
}

// Rows returns the accumulated census series.
func (c *Collector) Rows() []PopulationRow {
	return c.rows
}

// Exits returns removal tallies by cause.
func (c *Collector) Exits() ExitTotals {
	return c.exits
}

// Err returns the first write error encountered, if any.
func (c *Collector) Err() error {
	return c.err
}
