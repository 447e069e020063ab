// Package telemetry collects per-day population series and removal records
// from the engine and writes them as CSV, with an optional sqlite archive.
package telemetry

import (
	"github.com/mbg-sim/zoox/sim"
)

// PopulationRow is one clade's census on one day. One row is written per
// clade per day so the schema is independent of the clade count.
type PopulationRow struct {
	Day     int    `csv:"day"`
	Clade   int    `csv:"clade"`
	Name    string `csv:"name"`
	Count   int    `csv:"count"`
	Total   int    `csv:"total"`
	Mutants int    `csv:"mutants"`
}

// ExitRow is one symbiont removal record.
type ExitRow struct {
	Time    float64 `csv:"time"`
	ID      uint32  `csv:"id"`
	Clade   int     `csv:"clade"`
	Cause   string  `csv:"cause"`
	Phase   string  `csv:"phase"`
	Origin  string  `csv:"origin"`
	BornAt  float64 `csv:"born_at"`
	AgeDays float64 `csv:"age_days"`
	Surplus float64 `csv:"surplus"`
	Level   int     `csv:"level"`
	Row     int     `csv:"row"`
	Col     int     `csv:"col"`
}

// ExitTotals tallies removals by cause.
type ExitTotals struct {
	Denouement int
	Digestion  int
	Eviction   int
}

func exitRow(rec sim.ExitRecord) ExitRow {
	return ExitRow{
		Time:    rec.Time,
		ID:      rec.ID,
		Clade:   rec.Clade,
		Cause:   rec.Cause.String(),
		Phase:   rec.Phase.String(),
		Origin:  rec.Origin.String(),
		BornAt:  rec.BornAt,
		AgeDays: rec.Time - rec.BornAt,
		Surplus: rec.Surplus,
		Level:   rec.Level,
		Row:     rec.Row,
		Col:     rec.Col,
	}
}
