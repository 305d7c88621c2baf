package staffplanner

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wfplan-dev/wfplan-core/internal/automaton"
	"github.com/wfplan-dev/wfplan-core/internal/plan"
	"github.com/wfplan-dev/wfplan-core/internal/regex"
	"github.com/wfplan-dev/wfplan-core/internal/shift"
	"github.com/wfplan-dev/wfplan-core/internal/target"
)

func buildPlan(t *testing.T, agents []string) *plan.Plan {
	t.Helper()
	samples := make([]float64, 24*7)
	for i := range samples {
		samples[i] = 1
	}
	curve, err := target.New(samples, 60, nil)
	require.NoError(t, err)
	p, err := plan.New(agents, curve, 0)
	require.NoError(t, err)
	return p
}

func weekDFA(t *testing.T) *automaton.DFA[shift.Shift] {
	t.Helper()
	rest := shift.Rest("OFF")
	morning, err := shift.New("M", []shift.Interval{{Start: 8 * 60, End: 16 * 60}})
	require.NoError(t, err)
	day := regex.Sum(regex.Lit(rest), regex.Lit(morning))
	week := regex.Prd(day, day, day, day, day, day, day)
	dfa, err := automaton.Build[shift.Shift](week, shift.EPP)
	require.NoError(t, err)
	return dfa
}

func TestNewRejectsBadTempSchedule(t *testing.T) {
	p := buildPlan(t, []string{"A"})
	_, err := New("x", p, 0.2, 1.0)
	require.Error(t, err)
	_, err = New("x", p, 1.0, 1.0)
	require.Error(t, err)
}

func TestNewRejectsNegativeComfortWeight(t *testing.T) {
	p := buildPlan(t, []string{"A"})
	_, err := New("x", p, 0.9, -1)
	require.Error(t, err)
}

func TestRunProducesSummary(t *testing.T) {
	agents := []string{"A", "B"}
	p := buildPlan(t, agents)
	dfa := weekDFA(t)

	pl, err := New("demo run", p, 0.9, 1.0)
	require.NoError(t, err)
	require.NoError(t, pl.SetWeek(0))

	rng := rand.New(rand.NewSource(7))
	for _, code := range agents {
		require.NoError(t, pl.SetAgentSampler(code, automaton.NewSampler[shift.Shift](dfa, rng)))
	}

	result, err := pl.Run(rng)
	require.NoError(t, err)
	require.Len(t, result.Days, 7)
	require.GreaterOrEqual(t, result.TemperatureInitial, result.TemperatureFinal)
}

func TestRunRejectsMissingSampler(t *testing.T) {
	agents := []string{"A", "B"}
	p := buildPlan(t, agents)
	dfa := weekDFA(t)

	pl, err := New("demo run", p, 0.9, 1.0)
	require.NoError(t, err)
	require.NoError(t, pl.SetWeek(0))

	rng := rand.New(rand.NewSource(7))
	require.NoError(t, pl.SetAgentSampler("A", automaton.NewSampler[shift.Shift](dfa, rng)))

	_, err = pl.Run(rng)
	require.Error(t, err)
}
