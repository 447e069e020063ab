// Package sim implements the discrete-event population engine: the event
// scheduler, the symbiont life-cycle state machine, the mitosis/eviction
// protocol, and the daily photosynthate economy over the host lattice.
package sim

import (
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/mbg-sim/zoox/components"
	"github.com/mbg-sim/zoox/config"
	"github.com/mbg-sim/zoox/habitat"
	"github.com/mbg-sim/zoox/rng"
)

// ExitCause records why a symbiont left the simulation.
type ExitCause uint8

const (
	ExitDenouement ExitCause = iota + 1
	ExitDigestion
	ExitEviction
)

// String returns the exit cause name.
func (c ExitCause) String() string {
	switch c {
	case ExitDenouement:
		return "denouement"
	case ExitDigestion:
		return "digestion"
	case ExitEviction:
		return "eviction"
	default:
		return "unknown"
	}
}

// Counts is a population census.
type Counts struct {
	Total    int
	PerClade []int
	Mutants  int
}

// ExitRecord describes one symbiont removal, for detail writers.
type ExitRecord struct {
	Time    float64
	ID      uint32
	Clade   int
	Cause   ExitCause
	Phase   components.Phase
	Origin  components.Origin
	BornAt  float64
	Surplus float64
	Level   int
	Row     int
	Col     int
}

// Observer receives engine observations. Implementations must not mutate
// engine state; all methods are called from the single scheduler goroutine.
type Observer interface {
	ObserveDay(day int, counts Counts)
	ObserveExit(rec ExitRecord)
}

// Options configures engine construction.
type Options struct {
	Seed      int64
	Logger    *slog.Logger
	Observer  Observer
	LogEvents bool
}

// Engine drives the simulation. It is single-threaded: all state is mutated
// only by Step, and a fixed seed reproduces an identical event sequence.
type Engine struct {
	cfg *config.Config
	rng *rng.Source
	log *slog.Logger
	obs Observer

	world  *ecs.World
	mapper *ecs.Map4[components.Identity, components.Residence, components.Pool, components.Cycle]
	filter *ecs.Filter4[components.Identity, components.Residence, components.Pool, components.Cycle]

	idMap    *ecs.Map1[components.Identity]
	resMap   *ecs.Map1[components.Residence]
	poolMap  *ecs.Map1[components.Pool]
	cycleMap *ecs.Map1[components.Cycle]

	grid  *habitat.Grid
	reg   *Registry
	queue *eventQueue

	now       float64
	horizon   float64
	nextID    uint32
	total     int
	perClade  []int
	mutants   int
	arrivals  int // attempted arrivals, admitted or not
	logEvents bool
}

// New constructs an engine from a validated configuration and seeds the
// initial population. The configuration is re-checked; the engine never
// starts on an inconsistent parameter set.
func New(cfg *config.Config, opts Options) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	grid, err := habitat.New(cfg.Grid.Rows, cfg.Grid.Cols, cfg.Grid.Levels, cfg.Grid.Shape)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	world := ecs.NewWorld()
	e := &Engine{
		cfg: cfg,
		rng: rng.New(opts.Seed),
		log: logger,
		obs: opts.Observer,

		world: world,
		mapper: ecs.NewMap4[
			components.Identity,
			components.Residence,
			components.Pool,
			components.Cycle,
		](world),
		filter: ecs.NewFilter4[
			components.Identity,
			components.Residence,
			components.Pool,
			components.Cycle,
		](world),
		idMap:    ecs.NewMap1[components.Identity](world),
		resMap:   ecs.NewMap1[components.Residence](world),
		poolMap:  ecs.NewMap1[components.Pool](world),
		cycleMap: ecs.NewMap1[components.Cycle](world),

		grid:  grid,
		reg:   NewRegistry(cfg.Clades),
		queue: newEventQueue(),

		horizon:   cfg.HorizonDay,
		perClade:  make([]int, len(cfg.Clades)),
		logEvents: opts.LogEvents,
	}

	e.fuzzDemands()

	if err := e.seedPopulation(); err != nil {
		return nil, err
	}

	if cfg.Arrivals.MeanGapDays > 0 {
		e.queue.Push(Event{
			Time: e.rng.Exponential(cfg.Arrivals.MeanGapDays),
			Kind: EventArrival,
		})
	}
	e.queue.Push(Event{Time: 1.0, Kind: EventEconomyTick})

	// The day-0 census covers the seeded population before any event fires.
	if e.obs != nil {
		e.obs.ObserveDay(0, e.Counts())
	}

	return e, nil
}

// Now returns the current simulated time in days.
func (e *Engine) Now() float64 {
	return e.now
}

// Counts returns the current population census.
func (e *Engine) Counts() Counts {
	per := make([]int, len(e.perClade))
	copy(per, e.perClade)
	return Counts{Total: e.total, PerClade: per, Mutants: e.mutants}
}

// Arrivals returns the number of arrival attempts so far.
func (e *Engine) Arrivals() int {
	return e.arrivals
}

// Grid exposes the host lattice for inspection.
func (e *Engine) Grid() *habitat.Grid {
	return e.grid
}

// Registry exposes the clade registry.
func (e *Engine) Registry() *Registry {
	return e.reg
}

// Step pops and dispatches the earliest event. It returns false when the
// next event lies past the horizon or the queue is empty.
func (e *Engine) Step() (bool, error) {
	ev, ok := e.queue.Peek()
	if !ok || ev.Time > e.horizon {
		return false, nil
	}
	ev, _ = e.queue.Pop()
	e.now = ev.Time

	if e.logEvents {
		e.log.Debug("event", "t", ev.Time, "kind", ev.Kind.String(), "subject", ev.Subject.ID())
	}

	var err error
	switch ev.Kind {
	case EventArrival:
		e.handleArrival()
	case EventPhaseTransition:
		err = e.handlePhaseTransition(ev)
	case EventMitosis:
		err = e.handleMitosis(ev)
	case EventDenouement:
		err = e.handleDenouement(ev)
	case EventEconomyTick:
		err = e.handleEconomyTick()
	default:
		err = fmt.Errorf("sim: unknown event kind %d at t=%v", ev.Kind, ev.Time)
	}
	return err == nil, err
}

// Run drives the engine until the horizon.
func (e *Engine) Run() error {
	for {
		more, err := e.Step()
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

// fuzzDemands assigns each cell's demand. Under the daily refuzz policy this
// also runs at the start of every economy pass.
func (e *Engine) fuzzDemands() {
	e.grid.ForEach(func(cell *habitat.Cell) {
		cell.Demand = e.rng.Fuzz(e.cfg.Host.CellDemand, e.cfg.Host.DemandFuzz)
	})
}

// seedPopulation places the initial symbionts, assigning clades by
// cumulative proportion and cells by the configured placement strategy.
func (e *Engine) seedPopulation() error {
	n := e.cfg.Population.Initial
	if n == 0 {
		return nil
	}
	strategy := e.cfg.Population.Placement

	clade := 0
	prevCum := 0.0
	agentCount := 0
	cladeTotal := int(e.reg.Get(0).Proportion * float64(n))

	for i := 0; i < n; i++ {
		if float64(i)/float64(n) > e.reg.Cumulative(clade) {
			prevCum = e.reg.Cumulative(clade)
			clade = min(clade+1, e.reg.Len()-1)
			agentCount = 0
			cladeTotal = int(e.reg.Get(clade).Proportion * float64(n))
		}

		secondHalf := agentCount > cladeTotal/2
		region, err := e.grid.SeedRegion(strategy, clade, prevCum, e.reg.Cumulative(clade), secondHalf)
		if err != nil {
			return err
		}
		cell := e.grid.RandomCell(e.rng, region)
		agentCount++

		c := e.reg.Get(clade)
		ppr, mcr := c.InstanceRates(e.rng)
		e.spawn(clade, cell, components.OriginSeed, ppr, mcr, false)
	}
	return nil
}

// spawn creates a symbiont in the given cell, entering G0 with a fresh
// surplus, and schedules its phase transition and denouement.
func (e *Engine) spawn(clade int, cell *habitat.Cell, origin components.Origin, ppr, mcr float64, mutant bool) ecs.Entity {
	c := e.reg.Get(clade)

	id := components.Identity{
		ID:     e.nextID,
		Clade:  clade,
		Origin: origin,
		BornAt: e.now,
		Mutant: mutant,
	}
	e.nextID++

	res := components.Residence{Level: cell.Level, Row: cell.Row, Col: cell.Col}
	pool := components.Pool{
		Surplus: c.InitialSurplus(e.rng),
		PPR:     ppr,
		MCR:     mcr,
	}
	cycle := components.Cycle{
		Phase:        components.PhaseG0,
		DenouementAt: e.now + e.rng.Fuzz(c.ResidenceDays, c.ResidenceFuzz),
	}

	entity := e.mapper.NewEntity(&id, &res, &pool, &cycle)
	cell.Add(entity)
	e.total++
	e.perClade[clade]++
	if mutant {
		e.mutants++
	}

	e.queue.Push(Event{
		Time:    e.now + e.rng.Fuzz(c.G0Days, c.G0Fuzz),
		Kind:    EventPhaseTransition,
		Subject: entity,
		Epoch:   cycle.Epoch,
	})
	e.queue.Push(Event{
		Time:    cycle.DenouementAt,
		Kind:    EventDenouement,
		Subject: entity,
	})
	return entity
}

// remove takes a symbiont out of the simulation. Pending events referencing
// it become stale and are ignored when popped.
func (e *Engine) remove(entity ecs.Entity, cause ExitCause) error {
	id := e.idMap.Get(entity)
	res := e.resMap.Get(entity)
	pool := e.poolMap.Get(entity)
	cycle := e.cycleMap.Get(entity)

	cell := e.grid.At(res.Level, res.Row, res.Col)
	if !cell.Remove(entity) {
		return fmt.Errorf("sim: symbiont %d not resident in its cell (%d,%d,%d) at t=%v",
			id.ID, res.Level, res.Row, res.Col, e.now)
	}

	e.total--
	e.perClade[id.Clade]--
	if id.Mutant {
		e.mutants--
	}

	if e.obs != nil {
		e.obs.ObserveExit(ExitRecord{
			Time:    e.now,
			ID:      id.ID,
			Clade:   id.Clade,
			Cause:   cause,
			Phase:   cycle.Phase,
			Origin:  id.Origin,
			BornAt:  id.BornAt,
			Surplus: pool.Surplus,
			Level:   res.Level,
			Row:     res.Row,
			Col:     res.Col,
		})
	}

	e.world.RemoveEntity(entity)
	return nil
}

// reenterG0 puts a symbiont back into the quiescent phase and schedules its
// next phase transition. Bumping the epoch invalidates any still-pending
// phase or mitosis event from the previous cycle.
func (e *Engine) reenterG0(entity ecs.Entity) {
	id := e.idMap.Get(entity)
	cycle := e.cycleMap.Get(entity)
	c := e.reg.Get(id.Clade)

	cycle.Phase = components.PhaseG0
	cycle.Epoch++
	e.queue.Push(Event{
		Time:    e.now + e.rng.Fuzz(c.G0Days, c.G0Fuzz),
		Kind:    EventPhaseTransition,
		Subject: entity,
		Epoch:   cycle.Epoch,
	})
}

// stale reports whether a life-cycle event no longer applies to its subject.
func (e *Engine) stale(ev Event) bool {
	if !e.world.Alive(ev.Subject) {
		return true
	}
	cycle := e.cycleMap.Get(ev.Subject)
	return cycle.Epoch != ev.Epoch
}

// handleArrival admits a new symbiont with clade-dependent probability and
// schedules the next arrival, keeping the renewal process self-perpetuating.
func (e *Engine) handleArrival() {
	e.arrivals++

	clade := e.reg.PickClade(e.rng)
	c := e.reg.Get(clade)
	if e.rng.Bernoulli(c.ArrivalAffinity) {
		cell := e.grid.RandomCell(e.rng, e.grid.Whole())
		ppr, mcr := c.InstanceRates(e.rng)
		e.spawn(clade, cell, components.OriginArrival, ppr, mcr, false)
	}

	e.queue.Push(Event{
		Time: e.now + e.rng.Exponential(e.cfg.Arrivals.MeanGapDays),
		Kind: EventArrival,
	})
}

// handlePhaseTransition moves a symbiont from G0 into G1SG2M and schedules
// its mitosis attempt.
func (e *Engine) handlePhaseTransition(ev Event) error {
	if e.stale(ev) {
		return nil
	}
	id := e.idMap.Get(ev.Subject)
	cycle := e.cycleMap.Get(ev.Subject)
	if cycle.Phase != components.PhaseG0 {
		return fmt.Errorf("sim: phase transition for symbiont %d in phase %s at t=%v",
			id.ID, cycle.Phase, ev.Time)
	}
	c := e.reg.Get(id.Clade)

	cycle.Phase = components.PhaseG1SG2M
	e.queue.Push(Event{
		Time:    e.now + e.rng.Fuzz(c.G1SG2MDays, c.G1SG2MFuzz),
		Kind:    EventMitosis,
		Subject: ev.Subject,
		Epoch:   cycle.Epoch,
	})
	return nil
}

// handleMitosis attempts division per the eviction protocol: deduct the
// division cost, test division affinity, instantiate the child (subject to
// mutation), then evict either parent or child from the shared cell.
// Aborted divisions are ordinary outcomes, not errors.
func (e *Engine) handleMitosis(ev Event) error {
	if e.stale(ev) {
		return nil
	}
	parent := ev.Subject
	id := e.idMap.Get(parent)
	pool := e.poolMap.Get(parent)
	cycle := e.cycleMap.Get(parent)
	if cycle.Phase != components.PhaseG1SG2M {
		return fmt.Errorf("sim: mitosis for symbiont %d in phase %s at t=%v",
			id.ID, cycle.Phase, ev.Time)
	}
	c := e.reg.Get(id.Clade)

	// One day's worth of the mitotic cost rate is spent on the attempt.
	cost := pool.MCR
	if pool.Surplus < cost {
		e.reenterG0(parent)
		return nil
	}
	pool.Surplus -= cost

	if !e.rng.Bernoulli(c.DivisionAffinity) {
		e.reenterG0(parent)
		return nil
	}

	childPPR, childMCR := c.InstanceRates(e.rng)
	childPPR, mutated := c.Mutate(e.rng, childPPR)
	childMutant := id.Mutant || mutated

	res := e.resMap.Get(parent)
	cell := e.grid.At(res.Level, res.Row, res.Col)

	if e.rng.Bernoulli(c.ParentEvictionProb) {
		// Parent leaves; child takes the slot.
		e.spawn(id.Clade, cell, components.OriginBirth, childPPR, childMCR, childMutant)
		return e.relocateOrRemove(parent, res, cell)
	}

	// Child is evicted at birth; it only enters the simulation if a
	// relocation target exists.
	if e.cfg.Eviction.Relocate {
		if target := e.grid.RelocationTarget(e.rng, res.Level, res.Row, res.Col); target != nil {
			e.spawn(id.Clade, target, components.OriginBirth, childPPR, childMCR, childMutant)
		}
	}
	e.reenterG0(parent)
	return nil
}

// relocateOrRemove moves an evicted symbiont to an adjacent cell, or removes
// it when relocation is disabled or the pick falls outside the lattice.
func (e *Engine) relocateOrRemove(entity ecs.Entity, res *components.Residence, from *habitat.Cell) error {
	if e.cfg.Eviction.Relocate {
		if target := e.grid.RelocationTarget(e.rng, res.Level, res.Row, res.Col); target != nil {
			if target != from {
				from.Remove(entity)
				target.Add(entity)
				res.Level, res.Row, res.Col = target.Level, target.Row, target.Col
			}
			e.reenterG0(entity)
			return nil
		}
	}
	return e.remove(entity, ExitEviction)
}

// handleDenouement removes a symbiont at the end of its residence time,
// regardless of phase.
func (e *Engine) handleDenouement(ev Event) error {
	if !e.world.Alive(ev.Subject) {
		return nil
	}
	return e.remove(ev.Subject, ExitDenouement)
}

// handleEconomyTick runs the daily economy pass and reschedules itself,
// functioning as the recurring heartbeat of the resource model.
func (e *Engine) handleEconomyTick() error {
	if err := e.runEconomy(); err != nil {
		return err
	}

	if e.obs != nil {
		e.obs.ObserveDay(int(e.now), e.Counts())
	}

	e.queue.Push(Event{Time: e.now + 1.0, Kind: EventEconomyTick})
	return nil
}
