package automaton

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wfplan-dev/wfplan-core/internal/regex"
	"github.com/wfplan-dev/wfplan-core/internal/shift"
)

func fixedLengthWeekDFA(t *testing.T) *DFA[shift.Shift] {
	t.Helper()
	rest := shift.Rest("OFF")
	morning, err := shift.New("M", []shift.Interval{{Start: 8 * 60, End: 16 * 60}})
	require.NoError(t, err)

	day := regex.Sum(regex.Lit(rest), regex.Lit(morning))
	week := regex.Prd(day, day, day, day, day, day, day)
	dfa, err := Build[shift.Shift](week, shift.EPP)
	require.NoError(t, err)
	return dfa
}

func TestSampleProducesAcceptedWords(t *testing.T) {
	dfa := fixedLengthWeekDFA(t)
	rng := rand.New(rand.NewSource(7))
	s := NewSampler[shift.Shift](dfa, rng)

	for i := 0; i < 20; i++ {
		word, err := s.Sample()
		require.NoError(t, err)
		require.Len(t, word, 7)
		require.True(t, dfa.Match(word))
	}
}

func TestResampleBeforeSampleErrors(t *testing.T) {
	dfa := fixedLengthWeekDFA(t)
	s := NewSampler[shift.Shift](dfa, rand.New(rand.NewSource(1)))

	_, err := s.Resample()
	require.Error(t, err)

	_, err = s.ResampleFitness(func(int, []shift.Shift, shift.Shift) float64 { return 0 })
	require.Error(t, err)
}

func TestResampleRetracesSameStatesAndStillAccepts(t *testing.T) {
	dfa := fixedLengthWeekDFA(t)
	s := NewSampler[shift.Shift](dfa, rand.New(rand.NewSource(42)))

	word, err := s.Sample()
	require.NoError(t, err)
	require.Len(t, s.trace, len(word))

	resampled, err := s.Resample()
	require.NoError(t, err)
	require.Len(t, resampled, len(word))
	require.True(t, dfa.Match(resampled))
}

func TestResampleFitnessPicksMinimizer(t *testing.T) {
	dfa := fixedLengthWeekDFA(t)
	s := NewSampler[shift.Shift](dfa, rand.New(rand.NewSource(3)))

	_, err := s.Sample()
	require.NoError(t, err)

	rest := shift.Rest("OFF")
	// Fitness favors rest at every step; the minimizer should always pick
	// it whenever rest labels the traced edge.
	fitness := func(step int, partial []shift.Shift, candidate shift.Shift) float64 {
		if candidate.Equal(rest) {
			return 0
		}
		return 1
	}
	word, err := s.ResampleFitness(fitness)
	require.NoError(t, err)
	require.True(t, dfa.Match(word))
	for _, l := range word {
		require.True(t, l.Equal(rest), "resampleFitness should have preferred rest at every step")
	}
}
