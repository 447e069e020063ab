// Package components defines ECS components for symbiont entities.
package components

// Phase is a symbiont's cell-cycle phase.
type Phase uint8

const (
	PhaseG0     Phase = iota // quiescent
	PhaseG1SG2M              // growth and division preparation
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseG0:
		return "G0"
	case PhaseG1SG2M:
		return "G1SG2M"
	default:
		return "unknown"
	}
}

// Origin records how a symbiont entered the simulation.
type Origin uint8

const (
	OriginSeed    Origin = iota // initial placement pass
	OriginArrival               // ocean arrival
	OriginBirth                 // mitosis child
)

// String returns the origin name.
func (o Origin) String() string {
	switch o {
	case OriginSeed:
		return "seed"
	case OriginArrival:
		return "arrival"
	case OriginBirth:
		return "birth"
	default:
		return "unknown"
	}
}

// Identity bundles a symbiont's stable attributes.
type Identity struct {
	ID     uint32 // unique within a run, monotonically assigned
	Clade  int    // index into the clade registry
	Origin Origin
	BornAt float64 // simulated day of entry
	Mutant bool    // true if this lineage carries a phenotypic mutation
}

// Residence is the symbiont's current host cell position.
type Residence struct {
	Level, Row, Col int
}

// Pool tracks a symbiont's photosynthate economy.
// PPR and MCR are the per-instance fuzzed (and possibly mutated) rates;
// depth adjustment is applied at economy time from the current level.
type Pool struct {
	Surplus float64
	PPR     float64 // production per day at the surface
	MCR     float64 // upkeep per day while in G1SG2M
}

// Cycle tracks a symbiont's life-cycle scheduling state.
// Epoch invalidates pending phase/mitosis events after an abort or
// relocation re-entry; an event whose epoch does not match is stale.
type Cycle struct {
	Phase        Phase
	Epoch        uint32
	DenouementAt float64 // scheduled departure day, fixed at entry
}
