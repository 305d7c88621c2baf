package automaton

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wfplan-dev/wfplan-core/internal/regex"
	"github.com/wfplan-dev/wfplan-core/internal/shift"
)

func epp(s shift.Shift) int {
	if !s.Work() {
		return 0
	}
	return 1
}

func restMorningDFA(t *testing.T) (*DFA[shift.Shift], shift.Shift, shift.Shift) {
	t.Helper()
	rest := shift.Rest("OFF")
	morning, err := shift.New("M", []shift.Interval{{Start: 8 * 60, End: 16 * 60}})
	require.NoError(t, err)

	week := regex.Kst(regex.Sum(regex.Lit(rest), regex.Lit(morning)))
	dfa, err := Build[shift.Shift](week, epp)
	require.NoError(t, err)
	return dfa, rest, morning
}

func TestBuildIsTotalOverAlphabet(t *testing.T) {
	dfa, rest, morning := restMorningDFA(t)

	for id := 1; id <= dfa.States(); id++ {
		if dfa.Accepting(id) {
			continue
		}
		_, hasRest := dfa.trans[id][0]
		_, hasMorning := dfa.trans[id][1]
		require.True(t, hasRest || hasMorning, "non-accepting state %d must have an outgoing transition", id)
	}

	require.True(t, dfa.Match([]shift.Shift{rest, morning, rest}))
	require.True(t, dfa.Match(nil))
}

func TestBuildRejectsWordsOutsideLanguage(t *testing.T) {
	r := regex.Lit(shift.Rest("OFF"))
	dfa, err := Build[shift.Shift](r, epp)
	require.NoError(t, err)

	other := shift.Rest("X")
	require.False(t, dfa.Match([]shift.Shift{other}))
	require.False(t, dfa.Match([]shift.Shift{shift.Rest("OFF"), shift.Rest("OFF")}))
}

func TestMatchIsDeterministic(t *testing.T) {
	dfa, rest, morning := restMorningDFA(t)
	word := []shift.Shift{morning, rest, morning}
	first := dfa.Match(word)
	for i := 0; i < 5; i++ {
		require.Equal(t, first, dfa.Match(word))
	}
}

func TestAlphabetIsSortedAndComplete(t *testing.T) {
	dfa, rest, morning := restMorningDFA(t)
	alpha := dfa.Alphabet()
	require.Len(t, alpha, 2)

	var sawRest, sawMorning bool
	for _, l := range alpha {
		if l.Equal(rest) {
			sawRest = true
		}
		if l.Equal(morning) {
			sawMorning = true
		}
	}
	require.True(t, sawRest)
	require.True(t, sawMorning)
}

func TestBuildErrorsOnDeadEndState(t *testing.T) {
	// Zero is non-accepting and has no alphabet to derive along, so its
	// single state is a dead end: Build's invariant check must reject it
	// rather than silently producing a DFA no word can ever reach or leave.
	_, err := Build[shift.Shift](regex.Zero[shift.Shift](), epp)
	require.Error(t, err)
}
