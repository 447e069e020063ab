package sim

import "github.com/mbg-sim/zoox/components"

// SymbiontView is one live symbiont's observable state.
type SymbiontView struct {
	ID      uint32
	Clade   int
	Level   int
	Row     int
	Col     int
	Phase   components.Phase
	Origin  components.Origin
	Surplus float64
	PPR     float64
	MCR     float64
	Mutant  bool
	BornAt  float64
}

// Snapshot returns the live population in a stable iteration order, for
// external writers. The engine performs no file I/O itself.
func (e *Engine) Snapshot() []SymbiontView {
	out := make([]SymbiontView, 0, e.total)
	query := e.filter.Query()
	for query.Next() {
		id, res, pool, cycle := query.Get()
		out = append(out, SymbiontView{
			ID:      id.ID,
			Clade:   id.Clade,
			Level:   res.Level,
			Row:     res.Row,
			Col:     res.Col,
			Phase:   cycle.Phase,
			Origin:  id.Origin,
			Surplus: pool.Surplus,
			PPR:     pool.PPR,
			MCR:     pool.MCR,
			Mutant:  id.Mutant,
			BornAt:  id.BornAt,
		})
	}
	return out
}
