package sim

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/mbg-sim/zoox/components"
	"github.com/mbg-sim/zoox/config"
)

// runEconomy performs the daily photosynthate pass over every host cell in
// fixed (level, row, col) order.
//
// Each resident first banks its depth-adjusted production minus MCR upkeep
// (charged only while preparing to divide), then owes an equal share of the
// cell's fuzzed demand. A resident that cannot cover its share faces
// digestion: a phase-keyed escape draw floors its surplus at zero, failure
// removes it. Scarcity thereby regulates population independently of
// mitosis and denouement. No surviving symbiont ends the pass with a
// negative surplus.
func (e *Engine) runEconomy() error {
	if e.cfg.Host.Refuzz == config.RefuzzDaily {
		e.fuzzDemands()
	}

	levels, _, _ := e.grid.Dims()

	var residents []ecs.Entity
	for i := 0; i < e.grid.NumCells(); i++ {
		cell := e.grid.CellByIndex(i)
		n := len(cell.Residents)
		if n == 0 {
			continue
		}
		share := cell.Demand / float64(n)

		// Removals mutate the resident list, so iterate a copy.
		residents = append(residents[:0], cell.Residents...)
		for _, ent := range residents {
			id := e.idMap.Get(ent)
			pool := e.poolMap.Get(ent)
			cycle := e.cycleMap.Get(ent)
			c := e.reg.Get(id.Clade)

			production := c.DepthProduction(pool.PPR, cell.Level, levels)
			upkeep := 0.0
			if cycle.Phase == components.PhaseG1SG2M {
				upkeep = pool.MCR
			}
			pool.Surplus += production - upkeep

			if pool.Surplus >= share {
				pool.Surplus -= share
				continue
			}

			// Host demand unmet: digestion unless the symbiont escapes.
			escape := c.G0EscapeProb
			if cycle.Phase == components.PhaseG1SG2M {
				escape = c.G1SG2MEscapeProb
			}
			if e.rng.Bernoulli(escape) {
				pool.Surplus = 0
				continue
			}
			if err := e.remove(ent, ExitDigestion); err != nil {
				return err
			}
		}
	}
	return nil
}
