package config

import (
	"fmt"
	"math"
)

// Grid shapes.
const (
	ShapeSquare = "square"
	ShapeHex    = "hex"
)

// Initial placement strategies.
const (
	PlaceRandomize  = "randomize"
	PlaceHorizontal = "horizontal"
	PlaceVertical   = "vertical"
	PlaceQuadrant   = "quadrant"
)

// Demand refuzz policies.
const (
	RefuzzFixed = "fixed"
	RefuzzDaily = "daily"
)

const proportionTolerance = 1e-9

// Validate checks the configuration for consistency. The simulation must
// never be constructed from a config that fails validation.
func (c *Config) Validate() error {
	if c.HorizonDay <= 0 {
		return fmt.Errorf("config: horizon_days must be positive, got %v", c.HorizonDay)
	}
	if c.Grid.Rows < 1 || c.Grid.Cols < 1 || c.Grid.Levels < 1 {
		return fmt.Errorf("config: grid dimensions must be at least 1x1x1, got %dx%dx%d",
			c.Grid.Rows, c.Grid.Cols, c.Grid.Levels)
	}
	if c.Grid.Shape != ShapeSquare && c.Grid.Shape != ShapeHex {
		return fmt.Errorf("config: unknown grid shape %q", c.Grid.Shape)
	}
	switch c.Population.Placement {
	case PlaceRandomize, PlaceHorizontal, PlaceVertical, PlaceQuadrant:
	default:
		return fmt.Errorf("config: unknown placement strategy %q", c.Population.Placement)
	}
	if c.Population.Initial < 0 {
		return fmt.Errorf("config: population.initial must be non-negative, got %d", c.Population.Initial)
	}
	if c.Arrivals.MeanGapDays < 0 {
		return fmt.Errorf("config: arrivals.mean_gap_days must be non-negative, got %v", c.Arrivals.MeanGapDays)
	}
	if c.Host.CellDemand < 0 {
		return fmt.Errorf("config: host.cell_demand must be non-negative, got %v", c.Host.CellDemand)
	}
	if err := checkFraction("host.demand_fuzz", c.Host.DemandFuzz); err != nil {
		return err
	}
	if c.Host.Refuzz != RefuzzFixed && c.Host.Refuzz != RefuzzDaily {
		return fmt.Errorf("config: unknown host.refuzz policy %q", c.Host.Refuzz)
	}

	if len(c.Clades) == 0 {
		return fmt.Errorf("config: at least one clade must be defined")
	}
	sum := 0.0
	for i := range c.Clades {
		cl := &c.Clades[i]
		if err := cl.validate(i); err != nil {
			return err
		}
		sum += cl.Proportion
	}
	if math.Abs(sum-1.0) > proportionTolerance {
		return fmt.Errorf("config: clade proportions must sum to 1.0, got %v", sum)
	}
	return nil
}

func (cl *CladeConfig) validate(i int) error {
	name := cl.Name
	if name == "" {
		name = fmt.Sprintf("clade %d", i)
	}
	for _, p := range []struct {
		field string
		v     float64
	}{
		{"proportion", cl.Proportion},
		{"arrival_affinity", cl.ArrivalAffinity},
		{"division_affinity", cl.DivisionAffinity},
		{"g0_escape_prob", cl.G0EscapeProb},
		{"g1sg2m_escape_prob", cl.G1SG2MEscapeProb},
		{"parent_eviction_prob", cl.ParentEvictionProb},
		{"mutation.prob", cl.Mutation.Prob},
		{"mutation.deleterious_prob", cl.Mutation.DeleteriousProb},
	} {
		if p.v < 0 || p.v > 1 {
			return fmt.Errorf("config: %s: %s must be in [0,1], got %v", name, p.field, p.v)
		}
	}
	for _, p := range []struct {
		field string
		v     float64
	}{
		{"ppr", cl.PPR},
		{"mcr", cl.MCR},
		{"residence.days", cl.Residence.Days},
		{"g0.days", cl.G0.Days},
		{"g1sg2m.days", cl.G1SG2M.Days},
		{"surplus.shape", cl.Surplus.Shape},
		{"surplus.scale", cl.Surplus.Scale},
	} {
		if p.v <= 0 {
			return fmt.Errorf("config: %s: %s must be positive, got %v", name, p.field, p.v)
		}
	}
	if cl.PhotoReduction < 1 {
		return fmt.Errorf("config: %s: photosynthetic_reduction must be >= 1, got %v", name, cl.PhotoReduction)
	}
	for _, p := range []struct {
		field string
		v     float64
	}{
		{"ppr_fuzz", cl.PPRFuzz},
		{"mcr_fuzz", cl.MCRFuzz},
		{"residence.fuzz", cl.Residence.Fuzz},
		{"g0.fuzz", cl.G0.Fuzz},
		{"g1sg2m.fuzz", cl.G1SG2M.Fuzz},
	} {
		if err := checkFraction(name+": "+p.field, p.v); err != nil {
			return err
		}
	}
	if cl.Surplus.Max < 0 {
		return fmt.Errorf("config: %s: surplus.max must be non-negative, got %v", name, cl.Surplus.Max)
	}
	if cl.Mutation.Prob > 0 {
		for _, g := range []struct {
			field string
			g     GammaConfig
		}{
			{"mutation.deleterious", cl.Mutation.Deleterious},
			{"mutation.beneficial", cl.Mutation.Beneficial},
		} {
			if g.g.Shape <= 0 || g.g.Scale <= 0 {
				return fmt.Errorf("config: %s: %s shape/scale must be positive, got %v/%v",
					name, g.field, g.g.Shape, g.g.Scale)
			}
		}
	}
	return nil
}

func checkFraction(field string, v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("config: %s must be in [0,1], got %v", field, v)
	}
	return nil
}
