package energy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wfplan-dev/wfplan-core/internal/plan"
	"github.com/wfplan-dev/wfplan-core/internal/shift"
	"github.com/wfplan-dev/wfplan-core/internal/target"
)

func testPlan(t *testing.T, agents []string, samples []float64) *plan.Plan {
	t.Helper()
	curve, err := target.New(samples, 60, nil)
	require.NoError(t, err)
	p, err := plan.New(agents, curve, 0)
	require.NoError(t, err)
	return p
}

func TestStaffingEnergyZeroWhenStaffingMatchesTarget(t *testing.T) {
	samples := make([]float64, 24*7)
	p := testPlan(t, []string{"A001"}, samples)

	e, err := New(p, 0)
	require.NoError(t, err)
	require.Zero(t, e.Energy())
}

func TestStaffingEnergyPenalizesMismatch(t *testing.T) {
	samples := make([]float64, 24*7)
	for i := range samples {
		samples[i] = 1
	}
	p := testPlan(t, []string{"A001"}, samples)

	e, err := New(p, 0)
	require.NoError(t, err)
	require.Greater(t, e.Energy(), 0.0)
}

func TestStaffingEnergyDeltaMatchesDirectRecompute(t *testing.T) {
	samples := make([]float64, 24*7)
	for i := range samples {
		samples[i] = 2
	}
	p := testPlan(t, []string{"A001", "A002"}, samples)

	e, err := New(p, 0)
	require.NoError(t, err)

	before := e.Energy()

	n := p.WeekSlots()
	prevStf := make([]float64, n)
	mutdStf := make([]float64, n)
	sh, err := shift.New("M", []shift.Interval{{Start: 9 * 60, End: 17 * 60}})
	require.NoError(t, err)
	sh.AddStaff(0, 1, mutdStf)

	delta := e.Delta(prevStf, mutdStf)

	staffing := p.Staffing()
	for i := range mutdStf {
		staffing[i] += mutdStf[i] - prevStf[i]
	}
	after := e.Energy()

	require.InDelta(t, after-before, delta, 1e-9)
}

func TestComfortEnergyZeroWhenNoConsecutiveWork(t *testing.T) {
	samples := make([]float64, 24*7)
	p := testPlan(t, []string{"A001"}, samples)

	c := NewComfort(p, 0)
	require.Zero(t, c.Energy())
}

func TestComfortEnergyPenalizesSwing(t *testing.T) {
	samples := make([]float64, 24*7)
	p := testPlan(t, []string{"A001"}, samples)

	early, err := shift.New("E", []shift.Interval{{Start: 6 * 60, End: 14 * 60}})
	require.NoError(t, err)
	late, err := shift.New("L", []shift.Interval{{Start: 22 * 60, End: 23*60 + 59}})
	require.NoError(t, err)

	require.NoError(t, p.UpdatePlan(0, 0, []shift.Shift{early, late}))

	c := NewComfort(p, 0)
	require.Greater(t, c.Energy(), 0.0)
}

func TestComfortEnergyFitnessEmptyPartial(t *testing.T) {
	samples := make([]float64, 24*7)
	p := testPlan(t, []string{"A001"}, samples)
	c := NewComfort(p, 0)

	sh0 := shift.Rest("OFF")
	sh1 := shift.Rest("OFF")
	require.Zero(t, c.Fitness(nil, sh0, sh1))
}
