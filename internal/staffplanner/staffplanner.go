// Package staffplanner orchestrates a single optimization run: it wires
// a planner.State through calibration and a full simulated-annealing
// schedule, and reports the run's numeric summary (never a textual
// report or a dot-graph export — both stay out of scope). Result is the
// structured equivalent of the original StaffPlanner::run's report
// string, meant for domain.PlanResultSummary rather than a terminal.
package staffplanner

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/wfplan-dev/wfplan-core/internal/anneal"
	"github.com/wfplan-dev/wfplan-core/internal/automaton"
	"github.com/wfplan-dev/wfplan-core/internal/corerr"
	"github.com/wfplan-dev/wfplan-core/internal/plan"
	"github.com/wfplan-dev/wfplan-core/internal/planner"
	"github.com/wfplan-dev/wfplan-core/internal/shift"
)

// novers multiplies an agent count into the annealer's per-level trial
// budget, mirroring the original's 10*NOVER*agents.
const (
	noverBase        = 100
	noverMultiplier  = 10
	annealTempSchedMin = 0.5
	annealTempSchedMax = 1.0
)

// Planner owns a plan and, per agent, the sampler its rule compiles to.
// It is not reusable across runs: Run mutates plan and the planner
// state's samplers in place.
type Planner struct {
	description     string
	plan            *plan.Plan
	tempSchedule    float64
	comfortWeight   float64
	week            int
	samplers        []*automaton.Sampler[shift.Shift]
	noverMultiplier int
	noverBase       int
}

// New validates temp schedule and comfort weight and builds a Planner
// over p with one sampler per agent, in the order p's agents were
// constructed; every sampler must be set via SetAgentSampler before Run.
func New(description string, p *plan.Plan, tempSchedule, comfortWeight float64) (*Planner, error) {
	if tempSchedule < annealTempSchedMin || tempSchedule >= annealTempSchedMax {
		return nil, fmt.Errorf("temperature schedule %v must be in [%v, %v): %w", tempSchedule, annealTempSchedMin, annealTempSchedMax, corerr.InvalidArgument)
	}
	if comfortWeight < 0 {
		return nil, fmt.Errorf("comfort energy weight must be non-negative: %w", corerr.InvalidArgument)
	}
	return &Planner{
		description:     description,
		plan:            p,
		tempSchedule:    tempSchedule,
		comfortWeight:   comfortWeight,
		samplers:        make([]*automaton.Sampler[shift.Shift], p.NumAgents()),
		noverMultiplier: noverMultiplier,
		noverBase:       noverBase,
	}, nil
}

// SetNoverParams overrides the per-level trial-budget multiplier and
// base used to derive nover=multiplier*base*agents; callers wire this
// to deployment-tunable configuration instead of recompiling.
func (pl *Planner) SetNoverParams(multiplier, base int) error {
	if multiplier <= 0 || base <= 0 {
		return fmt.Errorf("nover multiplier and base must be positive: %w", corerr.InvalidArgument)
	}
	pl.noverMultiplier = multiplier
	pl.noverBase = base
	return nil
}

// SetWeek selects the 7-day window (0-based) subsequent Run calls optimize.
func (pl *Planner) SetWeek(week int) error {
	if week < 0 || week*7 > pl.plan.Days()-7 {
		return fmt.Errorf("week %d exceeds plan length: %w", week, corerr.InvalidArgument)
	}
	pl.week = week
	return nil
}

// SetAgentSampler assigns the sampler compiled from an agent's rule to
// that agent's slot, by the agent's code.
func (pl *Planner) SetAgentSampler(agentCode string, sampler *automaton.Sampler[shift.Shift]) error {
	idx, err := pl.plan.AgentIndex(agentCode)
	if err != nil {
		return err
	}
	pl.samplers[idx] = sampler
	return nil
}

// DaySummary is the per-day staffing/energy figures for one day of the run.
type DaySummary struct {
	Day            int
	TargetHours    float64
	StaffingHours  float64
	DifferencePct  float64
	Energy         float64
}

// Result is the structured summary of one optimization run: the total
// and per-term energy before/after annealing, the calibrated initial and
// final temperatures with the scheduled number of cooling steps (the
// schedule may stop earlier), and a day-by-day breakdown for the
// optimized week.
type Result struct {
	Description string

	StaffingEnergyBefore float64
	ComfortEnergyBefore  float64
	TotalEnergyBefore    float64

	StaffingEnergyAfter float64
	ComfortEnergyAfter  float64
	TotalEnergyAfter    float64

	TemperatureInitial float64
	TemperatureFinal   float64
	AnnealingSteps     int

	Elapsed time.Duration
	Days    []DaySummary
}

// Run executes one full optimization pass over the planner's selected
// week: it builds the planner state, calibrates the comfort weight and
// annealing temperatures, runs the cooling schedule, and returns the
// run's numeric summary. rng drives every random decision; callers
// wanting reproducible runs should pass a seeded source.
func (pl *Planner) Run(rng *rand.Rand) (Result, error) {
	for i, s := range pl.samplers {
		if s == nil {
			return Result{}, fmt.Errorf("agent at index %d has no sampler set: %w", i, corerr.InvalidArgument)
		}
	}

	t0 := time.Now()

	state, err := planner.New(pl.samplers, pl.week, pl.plan, rng)
	if err != nil {
		return Result{}, err
	}

	state.Calibrate(pl.comfortWeight)

	nover := uint(pl.noverMultiplier * pl.noverBase * len(pl.samplers))
	an := anneal.New[*planner.State](nover, state, rng)

	ti := an.CalibrateTi()
	tf := an.CalibrateTf()

	e0Total := state.Energy()
	e0Stf := state.StaffingEnergy()
	e0Cmf := state.ComfortEnergy()

	slog.Info("annealing started", "description", pl.description, "week", pl.week, "ti", ti, "tf", tf)
	if err := an.Anneal(ti, tf, pl.tempSchedule); err != nil {
		return Result{}, err
	}

	e1Total := state.Energy()
	e1Stf := state.StaffingEnergy()
	e1Cmf := state.ComfortEnergy()

	elapsed := time.Since(t0)

	days := make([]DaySummary, 0, 7)
	for day := pl.week * 7; day < (pl.week+1)*7; day++ {
		hrs, err := pl.plan.HoursDay(day)
		if err != nil {
			return Result{}, err
		}
		e, err := pl.plan.EnergyDay(day)
		if err != nil {
			return Result{}, err
		}
		days = append(days, DaySummary{
			Day:           day,
			TargetHours:   hrs.Target,
			StaffingHours: hrs.Staffing,
			DifferencePct: hrs.DifferencePct,
			Energy:        e,
		})
	}

	steps := int(math.Round((math.Log(tf) - math.Log(ti)) / math.Log(pl.tempSchedule)))

	return Result{
		Description:          pl.description,
		StaffingEnergyBefore: e0Stf,
		ComfortEnergyBefore:  e0Cmf,
		TotalEnergyBefore:    e0Total,
		StaffingEnergyAfter:  e1Stf,
		ComfortEnergyAfter:   e1Cmf,
		TotalEnergyAfter:     e1Total,
		TemperatureInitial:   ti,
		TemperatureFinal:     tf,
		AnnealingSteps:       steps,
		Elapsed:              elapsed,
		Days:                 days,
	}, nil
}
