// Package plan holds the agents x days shift assignment matrix together
// with the cumulative staffing curve it produces, plus the target curve
// the planner is optimizing against. Plan exposes its staffing curve and
// grid directly (not copies) so the planner state and its energy terms
// can mutate them incrementally without re-deriving them from scratch on
// every step — mirroring the original implementation, which documents
// Plan as meant to be manipulated directly by its planner.
package plan

import (
	"fmt"

	"github.com/wfplan-dev/wfplan-core/internal/corerr"
	"github.com/wfplan-dev/wfplan-core/internal/shift"
	"github.com/wfplan-dev/wfplan-core/internal/target"
)

// Hours summarizes target vs. staffed hours over some window.
type Hours struct {
	Target        float64
	Staffing      float64
	DifferencePct float64
}

// Plan is mutable and owned by exactly one optimization run.
type Plan struct {
	targetRescaled   []float64
	targetUnrescaled []float64
	staffing         []float64
	grid             [][]shift.Shift // grid[agentIdx][day]
	days             int
	offsetSlots      int
	agentIndex       map[string]int
	agentCodes       []string
}

// New creates an empty plan (every agent resting every day) for agents
// against curve. offsetMinutes is the look-ahead past midnight shifts
// crossing a day boundary may need; it only affects DaySlots/WeekSlots,
// the staffing curve itself is exactly curve.Len() long.
func New(agents []string, curve *target.Curve, offsetMinutes int) (*Plan, error) {
	if len(agents) == 0 {
		return nil, fmt.Errorf("you must add agents to create a plan: %w", corerr.InvalidArgument)
	}
	if offsetMinutes < 0 || offsetMinutes > 24*60 {
		return nil, fmt.Errorf("offset %d must be within [0, 1440]: %w", offsetMinutes, corerr.InvalidArgument)
	}

	agentIndex := make(map[string]int, len(agents))
	grid := make([][]shift.Shift, len(agents))
	for i, code := range agents {
		if _, dup := agentIndex[code]; dup {
			return nil, fmt.Errorf("duplicate agent code %q: %w", code, corerr.InvalidArgument)
		}
		agentIndex[code] = i
		grid[i] = make([]shift.Shift, curve.Days())
	}

	return &Plan{
		targetRescaled:   append([]float64(nil), curve.Rescaled()...),
		targetUnrescaled: append([]float64(nil), curve.Unrescaled()...),
		staffing:         make([]float64, curve.Len()),
		grid:             grid,
		days:             curve.Days(),
		offsetSlots:      offsetMinutes / shift.SlotLength,
		agentIndex:       agentIndex,
		agentCodes:       append([]string(nil), agents...),
	}, nil
}

// Days is the plan's length in days.
func (p *Plan) Days() int { return p.days }

// NumAgents is the number of agents carried by the plan.
func (p *Plan) NumAgents() int { return len(p.agentCodes) }

// DaySlots is the number of curve slots one day's worth of shift
// intervals may touch, including the cross-midnight offset.
func (p *Plan) DaySlots() int { return shift.SlotsPerDay + p.offsetSlots }

// WeekSlots is DaySlots for a full 7-day window.
func (p *Plan) WeekSlots() int { return 7*shift.SlotsPerDay + p.offsetSlots }

// TargetRescaled returns the (rescaled) target staffing curve.
func (p *Plan) TargetRescaled() []float64 { return p.targetRescaled }

// TargetUnrescaled returns the target curve before daily-budget rescaling.
func (p *Plan) TargetUnrescaled() []float64 { return p.targetUnrescaled }

// Staffing returns the live cumulative staffing curve. Callers (the
// planner state, its energy terms) mutate it in place.
func (p *Plan) Staffing() []float64 { return p.staffing }

// AgentIndex returns the plan-internal index of an agent code.
func (p *Plan) AgentIndex(code string) (int, error) {
	idx, ok := p.agentIndex[code]
	if !ok {
		return 0, fmt.Errorf("agent %q not found in plan: %w", code, corerr.InvalidArgument)
	}
	return idx, nil
}

// AgentPlan returns the full day-by-day assignment for an agent.
func (p *Plan) AgentPlan(code string) ([]shift.Shift, error) {
	idx, err := p.AgentIndex(code)
	if err != nil {
		return nil, err
	}
	return p.grid[idx], nil
}

// Line returns the live per-day assignment slice for agentIdx (not a
// copy); apply_mutation-style callers may write through it directly.
func (p *Plan) Line(agentIdx int) []shift.Shift { return p.grid[agentIdx] }

// UpdatePlan overwrites agentIdx's assignment for days [day, day+len(line)),
// clipped to the plan's day count.
func (p *Plan) UpdatePlan(agentIdx, day int, line []shift.Shift) error {
	if day < 0 || day > p.days {
		return fmt.Errorf("day %d exceeds plan length %d: %w", day, p.days, corerr.InvalidArgument)
	}
	for i := 0; i < len(line) && day+i < p.days; i++ {
		p.grid[agentIdx][day+i] = line[i]
	}
	return nil
}

// Hours returns total target/staffing hours and the percentage
// difference across the whole plan.
func (p *Plan) Hours() Hours {
	return sumHours(p.targetRescaled, p.staffing, 0, len(p.targetRescaled))
}

// HoursWeek returns the target/staffing hours for week (0-based, 7 days).
func (p *Plan) HoursWeek(week int) (Hours, error) {
	if week*7 > p.days {
		return Hours{}, fmt.Errorf("week %d exceeds plan length: %w", week, corerr.InvalidArgument)
	}
	lo := week * 7 * shift.SlotsPerDay
	hi := (week + 1) * 7 * shift.SlotsPerDay
	if hi > len(p.targetRescaled) {
		hi = len(p.targetRescaled)
	}
	return sumHours(p.targetRescaled, p.staffing, lo, hi), nil
}

// HoursDay returns the target/staffing hours for a single day.
func (p *Plan) HoursDay(day int) (Hours, error) {
	if day > p.days {
		return Hours{}, fmt.Errorf("day %d exceeds plan length: %w", day, corerr.InvalidArgument)
	}
	lo := day * shift.SlotsPerDay
	hi := lo + shift.SlotsPerDay
	if hi > len(p.targetRescaled) {
		hi = len(p.targetRescaled)
	}
	return sumHours(p.targetRescaled, p.staffing, lo, hi), nil
}

func sumHours(target, staffing []float64, lo, hi int) Hours {
	var sTrg, sStf float64
	for i := lo; i < hi; i++ {
		sTrg += target[i] * shift.SlotLength
		sStf += staffing[i] * shift.SlotLength
	}
	trgHours := sTrg / 60
	stfHours := sStf / 60
	diff := 0.0
	if sTrg != 0 {
		diff = 100 * (sTrg - sStf) / sTrg
	}
	return Hours{Target: trgHours, Staffing: stfHours, DifferencePct: diff}
}

// EnergyDay is the mean squared error between target and staffing for a
// single day, supplementing the week-level staffing energy.
func (p *Plan) EnergyDay(day int) (float64, error) {
	if day > p.days {
		return 0, fmt.Errorf("day %d exceeds plan length: %w", day, corerr.InvalidArgument)
	}
	lo := day * shift.SlotsPerDay
	hi := lo + shift.SlotsPerDay
	if hi > len(p.staffing) {
		hi = len(p.staffing)
	}
	var e float64
	for i := lo; i < hi; i++ {
		d := p.targetRescaled[i] - p.staffing[i]
		e += d * d
	}
	return e / shift.SlotsPerDay, nil
}
