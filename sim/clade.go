package sim

import (
	"math"

	"github.com/mbg-sim/zoox/config"
	"github.com/mbg-sim/zoox/rng"
)

// Clade is the immutable parameter bundle for one symbiont clade.
// Constructed once at simulation start from configuration.
type Clade struct {
	Index              int
	Name               string
	Proportion         float64
	ArrivalAffinity    float64
	DivisionAffinity   float64
	PPR                float64
	PPRFuzz            float64
	MCR                float64
	MCRFuzz            float64
	PhotoReduction     float64
	ResidenceDays      float64
	ResidenceFuzz      float64
	G0Days             float64
	G0Fuzz             float64
	G1SG2MDays         float64
	G1SG2MFuzz         float64
	G0EscapeProb       float64
	G1SG2MEscapeProb   float64
	ParentEvictionProb float64
	SurplusShape       float64
	SurplusScale       float64
	SurplusMax         float64
	Mutation           MutationModel
}

// MutationModel holds the phenotypic mutation parameters of a clade.
// Magnitudes are gamma draws interpreted as a percentage of the child's
// baseline PPR; deleterious draws of 100% or more and beneficial draws above
// 10% are redrawn.
type MutationModel struct {
	Prob             float64
	DeleteriousProb  float64
	DeleteriousShape float64
	DeleteriousScale float64
	BeneficialShape  float64
	BeneficialScale  float64
}

const (
	deleteriousPctLimit = 100.0
	beneficialPctLimit  = 10.0
)

// Registry holds the clades of a run, indexed by clade id, with
// cumulative proportions used to assign clades at seeding and arrival.
type Registry struct {
	clades     []Clade
	cumulative []float64
}

// NewRegistry builds the registry from validated configuration.
// The last cumulative proportion is forced to 1.0 so a uniform draw always
// resolves to a clade despite float rounding.
func NewRegistry(cfgs []config.CladeConfig) *Registry {
	reg := &Registry{
		clades:     make([]Clade, len(cfgs)),
		cumulative: make([]float64, len(cfgs)),
	}
	sum := 0.0
	for i, cc := range cfgs {
		reg.clades[i] = Clade{
			Index:              i,
			Name:               cc.Name,
			Proportion:         cc.Proportion,
			ArrivalAffinity:    cc.ArrivalAffinity,
			DivisionAffinity:   cc.DivisionAffinity,
			PPR:                cc.PPR,
			PPRFuzz:            cc.PPRFuzz,
			MCR:                cc.MCR,
			MCRFuzz:            cc.MCRFuzz,
			PhotoReduction:     cc.PhotoReduction,
			ResidenceDays:      cc.Residence.Days,
			ResidenceFuzz:      cc.Residence.Fuzz,
			G0Days:             cc.G0.Days,
			G0Fuzz:             cc.G0.Fuzz,
			G1SG2MDays:         cc.G1SG2M.Days,
			G1SG2MFuzz:         cc.G1SG2M.Fuzz,
			G0EscapeProb:       cc.G0EscapeProb,
			G1SG2MEscapeProb:   cc.G1SG2MEscapeProb,
			ParentEvictionProb: cc.ParentEvictionProb,
			SurplusShape:       cc.Surplus.Shape,
			SurplusScale:       cc.Surplus.Scale,
			SurplusMax:         cc.Surplus.Max,
			Mutation: MutationModel{
				Prob:             cc.Mutation.Prob,
				DeleteriousProb:  cc.Mutation.DeleteriousProb,
				DeleteriousShape: cc.Mutation.Deleterious.Shape,
				DeleteriousScale: cc.Mutation.Deleterious.Scale,
				BeneficialShape:  cc.Mutation.Beneficial.Shape,
				BeneficialScale:  cc.Mutation.Beneficial.Scale,
			},
		}
		sum += cc.Proportion
		reg.cumulative[i] = sum
	}
	reg.cumulative[len(cfgs)-1] = 1.0
	return reg
}

// Len returns the clade count.
func (reg *Registry) Len() int {
	return len(reg.clades)
}

// Get returns the clade with the given id.
func (reg *Registry) Get(i int) *Clade {
	return &reg.clades[i]
}

// Cumulative returns the cumulative proportion through clade i.
func (reg *Registry) Cumulative(i int) float64 {
	return reg.cumulative[i]
}

// PickClade resolves a uniform draw to a clade id.
func (reg *Registry) PickClade(r *rng.Source) int {
	u := r.Uniform()
	for i, c := range reg.cumulative {
		if u <= c {
			return i
		}
	}
	return len(reg.cumulative) - 1
}

// InitialSurplus draws a capped gamma starting surplus for a new symbiont.
func (c *Clade) InitialSurplus(r *rng.Source) float64 {
	return math.Min(r.Gamma(c.SurplusShape, c.SurplusScale), c.SurplusMax)
}

// InstanceRates draws the per-instance production and upkeep rates.
func (c *Clade) InstanceRates(r *rng.Source) (ppr, mcr float64) {
	return r.Fuzz(c.PPR, c.PPRFuzz), r.Fuzz(c.MCR, c.MCRFuzz)
}

// Mutate applies the phenotypic mutation model to a child's baseline PPR.
// Returns the possibly perturbed rate and whether a mutation occurred.
// The result is never negative.
func (c *Clade) Mutate(r *rng.Source, ppr float64) (float64, bool) {
	if !r.Bernoulli(c.Mutation.Prob) {
		return ppr, false
	}
	if r.Bernoulli(c.Mutation.DeleteriousProb) {
		pct := r.Gamma(c.Mutation.DeleteriousShape, c.Mutation.DeleteriousScale)
		for pct >= deleteriousPctLimit {
			pct = r.Gamma(c.Mutation.DeleteriousShape, c.Mutation.DeleteriousScale)
		}
		ppr -= ppr * pct / 100
	} else {
		pct := r.Gamma(c.Mutation.BeneficialShape, c.Mutation.BeneficialScale)
		for pct > beneficialPctLimit {
			pct = r.Gamma(c.Mutation.BeneficialShape, c.Mutation.BeneficialScale)
		}
		ppr += ppr * pct / 100
	}
	return math.Max(ppr, 0), true
}

// DepthProduction returns the clade-relative production rate at a lattice
// level: the rate itself interpolates linearly from the instance PPR at the
// surface down to PPR/PhotoReduction at the deepest level.
func (c *Clade) DepthProduction(ppr float64, level, numLevels int) float64 {
	if numLevels <= 1 || c.PhotoReduction <= 1 {
		return ppr
	}
	return ppr * (1 - (1-1/c.PhotoReduction)*float64(level)/float64(numLevels-1))
}
