// Package energy implements the two incremental energy terms the
// annealer minimizes: a staffing squared-error term against the target
// curve, and a comfort (ergonomic) penalty against consecutive-day
// start-time swings. Both terms expose Energy (full recompute), Delta
// (cheap incremental update matching a planner mutation), and Fitness
// (used by resample-by-fitness to pick the best candidate letter).
package energy

import (
	"fmt"

	"github.com/wfplan-dev/wfplan-core/internal/corerr"
	"github.com/wfplan-dev/wfplan-core/internal/plan"
	"github.com/wfplan-dev/wfplan-core/internal/shift"
)

// StaffingEnergy is the mean squared error between the staffing curve
// and the target curve over a single week window.
type StaffingEnergy struct {
	plan  *plan.Plan
	slot0 int
	slot1 int
}

// New builds the staffing energy term for week (0-based).
func New(p *plan.Plan, week int) (*StaffingEnergy, error) {
	if week < 0 {
		return nil, fmt.Errorf("week %d must be non-negative: %w", week, corerr.InvalidArgument)
	}
	slot0 := week * 7 * shift.SlotsPerDay
	slot1 := slot0 + p.WeekSlots()
	if slot1 > len(p.Staffing()) {
		slot1 = len(p.Staffing())
	}
	if slot0 >= slot1 {
		return nil, fmt.Errorf("week %d is out of plan range: %w", week, corerr.InvalidArgument)
	}
	return &StaffingEnergy{plan: p, slot0: slot0, slot1: slot1}, nil
}

// Energy recomputes the mean squared error over the whole window.
func (e *StaffingEnergy) Energy() float64 {
	staffing := e.plan.Staffing()
	target := e.plan.TargetRescaled()
	var sum float64
	for i := e.slot0; i < e.slot1; i++ {
		d := staffing[i] - target[i]
		sum += d * d
	}
	return sum / float64(e.slot1-e.slot0)
}

// Delta returns the change in Energy() a candidate mutation would cause,
// given the previous and candidate per-week staffing contributions
// (both length WeekSlots(), zero everywhere but the mutated agent's
// week), without touching the live staffing curve.
func (e *StaffingEnergy) Delta(prevStf, mutdStf []float64) float64 {
	staffing := e.plan.Staffing()
	target := e.plan.TargetRescaled()
	n := e.slot1 - e.slot0
	var sum float64
	for i := 0; i < n; i++ {
		e1 := mutdStf[i] - prevStf[i]
		e2 := e1 + 2*staffing[e.slot0+i] - 2*target[e.slot0+i]
		sum += e1 * e2
	}
	return sum / float64(n)
}

// Fitness scores a candidate shift sh1 replacing the agent's current
// shift sh0 on day, as the squared error summed over day and day+1 (the
// only two days a single shift change can affect) and divided by one
// day's slot count, if the swap were made, holding every other agent's
// contribution fixed.
func (e *StaffingEnergy) Fitness(day int, sh0, sh1 shift.Shift) float64 {
	staffing := e.plan.Staffing()
	target := e.plan.TargetRescaled()
	off := day * shift.SlotsPerDay
	var sum float64
	n := 0
	for i := 0; i < 2*shift.SlotsPerDay && off+i < len(staffing); i++ {
		t := i * shift.SlotLength
		f := target[off+i] - (staffing[off+i] - boolToFloat(sh0.Staff(t)) + boolToFloat(sh1.Staff(t)))
		sum += f * f
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(shift.SlotsPerDay)
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// ComfortEnergy penalizes large swings in consecutive working days'
// entry times, summed over every agent and averaged over the week.
type ComfortEnergy struct {
	plan *plan.Plan
	week int
}

// NewComfort builds the comfort energy term for week (0-based).
func NewComfort(p *plan.Plan, week int) *ComfortEnergy {
	return &ComfortEnergy{plan: p, week: week}
}

func swingSq(prev, cur shift.Shift) float64 {
	if !prev.Work() || !cur.Work() {
		return 0
	}
	d := float64(cur.T0()-prev.T0()) / float64(shift.SlotLength)
	return d * d
}

// Energy recomputes the penalty across every agent's line for the week.
func (e *ComfortEnergy) Energy() float64 {
	var sum float64
	lo := e.week*7 + 1
	hi := (e.week + 1) * 7
	for a := 0; a < e.plan.NumAgents(); a++ {
		line := e.plan.Line(a)
		for i := lo; i < hi && i < len(line); i++ {
			sum += swingSq(line[i-1], line[i])
		}
	}
	return sum / 7
}

// Delta returns the change Energy() would see if agent mutdIdx's week
// were replaced by mutdPln (a fresh 7-length, 0-indexed line).
func (e *ComfortEnergy) Delta(mutdIdx int, mutdPln []shift.Shift) float64 {
	line := e.plan.Line(mutdIdx)
	lo := e.week*7 + 1
	hi := (e.week + 1) * 7

	var curr float64
	for i := lo; i < hi && i < len(line); i++ {
		curr += swingSq(line[i-1], line[i])
	}

	var mutd float64
	for i := 1; i < 7 && i < len(mutdPln); i++ {
		mutd += swingSq(mutdPln[i-1], mutdPln[i])
	}

	return (mutd - curr) / 7
}

// Fitness scores a candidate shift sh1 extending the partial week built
// so far by ResampleFitness, against the shift sh0 it would replace at
// the same position; partial's last element is the previous day's
// chosen shift. An empty partial (first day of the week) contributes 0.
func (e *ComfortEnergy) Fitness(partial []shift.Shift, sh0, sh1 shift.Shift) float64 {
	if len(partial) == 0 {
		return 0
	}
	prev := partial[len(partial)-1]
	var f float64
	if prev.Work() && sh0.Work() {
		d := float64(sh0.T0()-prev.T0()) / float64(shift.SlotLength)
		f -= d * d
	}
	if prev.Work() && sh1.Work() {
		d := float64(sh1.T0()-prev.T0()) / float64(shift.SlotLength)
		f += d * d
	}
	return f
}
