// Package planner composes per-agent samplers with a shared Plan into a
// single annealer State: each Mutate call resamples one agent's week,
// either by drawing a fresh word (80% of the time) or by resampling the
// current trace picking the combined-fitness-minimizing shift at every
// day (20% of the time). DeltaEnergy and ApplyMutation update only the
// mutated agent's contribution to the shared staffing curve, so a full
// week's energy never needs recomputation from scratch mid-schedule.
package planner

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/wfplan-dev/wfplan-core/internal/automaton"
	"github.com/wfplan-dev/wfplan-core/internal/corerr"
	"github.com/wfplan-dev/wfplan-core/internal/energy"
	"github.com/wfplan-dev/wfplan-core/internal/plan"
	"github.com/wfplan-dev/wfplan-core/internal/shift"
)

// State implements anneal.State over a single week window of a Plan.
// It is not safe for concurrent use: Mutate/DeltaEnergy/ApplyMutation
// share mutation scratch state across a single goroutine's call sequence.
type State struct {
	rng      *rand.Rand
	samplers []*automaton.Sampler[shift.Shift]
	week     int
	plan     *plan.Plan

	mutdIdx int
	mutdPln []shift.Shift
	prevStf []float64
	mutdStf []float64

	w1 float64

	staffing *energy.StaffingEnergy
	comfort  *energy.ComfortEnergy
}

// New builds a planner state over week for p, given one sampler per
// agent (samplers[i] draws weeks for p's agent i). Every agent's week is
// seeded by an initial fresh sample before the state performs one
// Mutate call to prime its mutation scratch.
func New(samplers []*automaton.Sampler[shift.Shift], week int, p *plan.Plan, rng *rand.Rand) (*State, error) {
	if len(samplers) == 0 {
		return nil, fmt.Errorf("you must provide some samplers: %w", corerr.InvalidArgument)
	}
	if len(samplers) != p.NumAgents() {
		return nil, fmt.Errorf("got %d samplers for %d agents: %w", len(samplers), p.NumAgents(), corerr.InvalidArgument)
	}

	staffingE, err := energy.New(p, week)
	if err != nil {
		return nil, err
	}

	s := &State{
		rng:      rng,
		samplers: samplers,
		week:     week,
		plan:     p,
		prevStf:  make([]float64, p.WeekSlots()),
		mutdStf:  make([]float64, p.WeekSlots()),
		w1:       1.0,
		staffing: staffingE,
		comfort:  energy.NewComfort(p, week),
	}

	for i, sampler := range samplers {
		line, err := sampler.Sample()
		if err != nil {
			return nil, fmt.Errorf("sampling initial week for agent %d: %w", i, err)
		}
		if err := p.UpdatePlan(i, week*7, line); err != nil {
			return nil, err
		}
		for day, sh := range line {
			sh.AddStaff(week*7+day, 1, p.Staffing())
		}
	}

	s.Mutate()
	return s, nil
}

// Energy is the weighted sum of the staffing and comfort energy terms.
func (s *State) Energy() float64 {
	return s.staffing.Energy() + s.w1*s.comfort.Energy()
}

// DeltaEnergy is the change the most recent Mutate would cause if applied.
func (s *State) DeltaEnergy() float64 {
	return s.staffing.Delta(s.prevStf, s.mutdStf) + s.w1*s.comfort.Delta(s.mutdIdx, s.mutdPln)
}

// StaffingEnergy returns the current staffing-only energy contribution.
func (s *State) StaffingEnergy() float64 { return s.staffing.Energy() }

// ComfortEnergy returns the current comfort-only energy contribution.
func (s *State) ComfortEnergy() float64 { return s.comfort.Energy() }

// Mutate picks an agent at random and proposes a new week for them: a
// fresh sample 80% of the time, or the combined-fitness-minimizing
// resample of the current trace the other 20%. The proposal is held in
// scratch state until ApplyMutation commits it.
func (s *State) Mutate() {
	s.mutdIdx = s.rng.Intn(len(s.samplers))
	sampler := s.samplers[s.mutdIdx]
	current := s.plan.Line(s.mutdIdx)

	if s.rng.Float64() < 0.8 {
		line, err := sampler.Sample()
		if err != nil {
			panic(fmt.Errorf("planner: sampling agent %d's week: %w", s.mutdIdx, err))
		}
		s.mutdPln = line
	} else {
		fitness := func(step int, partial []shift.Shift, candidate shift.Shift) float64 {
			day := s.week*7 + step
			var sh0 shift.Shift
			if day < len(current) {
				sh0 = current[day]
			}
			return s.staffing.Fitness(day, sh0, candidate) + s.w1*s.comfort.Fitness(partial, sh0, candidate)
		}
		line, err := sampler.ResampleFitness(fitness)
		if err != nil {
			panic(fmt.Errorf("planner: resampling agent %d's week: %w", s.mutdIdx, err))
		}
		s.mutdPln = line
	}

	for i := range s.prevStf {
		s.prevStf[i] = 0
		s.mutdStf[i] = 0
	}
	for day := 0; day < 7 && s.week*7+day < len(current) && day < len(s.mutdPln); day++ {
		current[s.week*7+day].AddStaff(day, 1, s.prevStf)
		s.mutdPln[day].AddStaff(day, 1, s.mutdStf)
	}
}

// ApplyMutation commits the most recent Mutate's proposal to the plan
// and the shared staffing curve.
func (s *State) ApplyMutation() {
	if err := s.plan.UpdatePlan(s.mutdIdx, s.week*7, s.mutdPln); err != nil {
		panic(fmt.Errorf("planner: applying agent %d's mutated week: %w", s.mutdIdx, err))
	}
	staffing := s.plan.Staffing()
	slot0 := s.week * 7 * shift.SlotsPerDay
	for i := 0; i < s.plan.WeekSlots() && slot0+i < len(staffing); i++ {
		staffing[slot0+i] += s.mutdStf[i] - s.prevStf[i]
	}
}

// Calibrate normalizes the comfort energy weight so that, on average
// over a large sample of mutations, the comfort term contributes w1 as
// much as the staffing term does: w1_ = w1 * mean(staffing) / mean(comfort).
// Passing w1=0 disables the comfort term outright.
func (s *State) Calibrate(w1 float64) {
	if w1 == 0 {
		s.w1 = 0
		return
	}

	const n = 200000
	slog.Info("calibrating energy weights", "iterations", n)

	var sum0, sumSq0, sum1, sumSq1 float64
	for i := 0; i < n; i++ {
		s.Mutate()
		s.ApplyMutation()

		e0 := s.staffing.Energy()
		sum0 += e0
		sumSq0 += e0 * e0

		e1 := s.comfort.Energy()
		sum1 += e1
		sumSq1 += e1 * e1
	}

	mean0 := sum0 / n
	stddev0 := math.Sqrt((sumSq0 - sum0*sum0/n) / (n - 1))
	mean1 := sum1 / n
	stddev1 := math.Sqrt((sumSq1 - sum1*sum1/n) / (n - 1))

	slog.Info("staffing energy", "mean", mean0, "stddev", stddev0)
	slog.Info("comfort energy", "mean", mean1, "stddev", stddev1)

	next := w1 * mean0 / mean1
	slog.Info("updating comfort weight ratio", "from", w1, "to", next)
	s.w1 = next
}
