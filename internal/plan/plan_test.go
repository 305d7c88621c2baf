package plan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wfplan-dev/wfplan-core/internal/shift"
	"github.com/wfplan-dev/wfplan-core/internal/target"
)

func flatCurve(t *testing.T, days int) *target.Curve {
	t.Helper()
	samples := make([]float64, 24*days)
	for i := range samples {
		samples[i] = 1
	}
	curve, err := target.New(samples, 60, nil)
	require.NoError(t, err)
	return curve
}

func TestNewRejectsEmptyAgentsAndBadOffset(t *testing.T) {
	curve := flatCurve(t, 1)
	_, err := New(nil, curve, 0)
	require.Error(t, err)

	_, err = New([]string{"A"}, curve, -1)
	require.Error(t, err)

	_, err = New([]string{"A"}, curve, 24*60+1)
	require.Error(t, err)
}

func TestNewRejectsDuplicateAgentCodes(t *testing.T) {
	curve := flatCurve(t, 1)
	_, err := New([]string{"A", "A"}, curve, 0)
	require.Error(t, err)
}

func TestAgentIndexAndAgentPlan(t *testing.T) {
	curve := flatCurve(t, 1)
	p, err := New([]string{"A", "B"}, curve, 0)
	require.NoError(t, err)

	idx, err := p.AgentIndex("B")
	require.NoError(t, err)
	require.Equal(t, 1, idx)

	_, err = p.AgentIndex("Z")
	require.Error(t, err)

	line, err := p.AgentPlan("A")
	require.NoError(t, err)
	require.Len(t, line, p.Days())
}

func TestUpdatePlanWritesClippedToDayCount(t *testing.T) {
	curve := flatCurve(t, 1)
	p, err := New([]string{"A"}, curve, 0)
	require.NoError(t, err)

	work, err := shift.New("M", []shift.Interval{{Start: 0, End: 60}})
	require.NoError(t, err)

	err = p.UpdatePlan(0, 0, []shift.Shift{work, work, work})
	require.NoError(t, err)
	line := p.Line(0)
	require.True(t, line[0].Equal(work))

	err = p.UpdatePlan(0, p.Days(), []shift.Shift{work})
	require.NoError(t, err)

	err = p.UpdatePlan(0, -1, []shift.Shift{work})
	require.Error(t, err)
	err = p.UpdatePlan(0, p.Days()+1, []shift.Shift{work})
	require.Error(t, err)
}

func TestHoursReflectsStaffingAgainstTarget(t *testing.T) {
	curve := flatCurve(t, 1)
	p, err := New([]string{"A"}, curve, 0)
	require.NoError(t, err)

	hours := p.Hours()
	require.Greater(t, hours.Target, 0.0)
	require.Equal(t, 0.0, hours.Staffing)
	require.Equal(t, 100.0, hours.DifferencePct)

	work, err := shift.New("M", []shift.Interval{{Start: 0, End: 24 * 60}})
	require.NoError(t, err)
	work.AddStaff(0, 1, p.Staffing())

	hours = p.Hours()
	require.InDelta(t, hours.Target, hours.Staffing, 1e-6)
	require.InDelta(t, 0, hours.DifferencePct, 1e-6)
}

func TestHoursWeekAndHoursDayRejectOutOfRange(t *testing.T) {
	curve := flatCurve(t, 1)
	p, err := New([]string{"A"}, curve, 0)
	require.NoError(t, err)

	_, err = p.HoursWeek(10)
	require.Error(t, err)

	_, err = p.HoursDay(1000)
	require.Error(t, err)
}

func TestEnergyDayIsZeroWhenStaffingMatchesTarget(t *testing.T) {
	curve := flatCurve(t, 1)
	p, err := New([]string{"A"}, curve, 0)
	require.NoError(t, err)

	work, err := shift.New("M", []shift.Interval{{Start: 0, End: 24 * 60}})
	require.NoError(t, err)
	work.AddStaff(0, 1, p.Staffing())

	e, err := p.EnergyDay(0)
	require.NoError(t, err)
	require.InDelta(t, 0, e, 1e-9)
}

func TestDaySlotsAndWeekSlotsIncludeOffset(t *testing.T) {
	curve := flatCurve(t, 7)
	p, err := New([]string{"A"}, curve, 60)
	require.NoError(t, err)
	require.Equal(t, shift.SlotsPerDay+12, p.DaySlots())
	require.Equal(t, 7*shift.SlotsPerDay+12, p.WeekSlots())
}
