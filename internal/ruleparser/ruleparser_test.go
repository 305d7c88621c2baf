package ruleparser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wfplan-dev/wfplan-core/internal/automaton"
	"github.com/wfplan-dev/wfplan-core/internal/shift"
)

func testCatalog(t *testing.T) map[string]shift.Shift {
	t.Helper()
	rest := shift.Rest("OFF")
	morning, err := shift.New("M", []shift.Interval{{Start: 8 * 60, End: 16 * 60}})
	require.NoError(t, err)
	evening, err := shift.New("E", []shift.Interval{{Start: 16 * 60, End: 24*60 - 1}})
	require.NoError(t, err)
	return map[string]shift.Shift{"OFF": rest, "M": morning, "E": evening}
}

func TestParseConcatAndSum(t *testing.T) {
	catalog := testCatalog(t)
	expr, err := Parse("(M+E+OFF)*", catalog)
	require.NoError(t, err)

	dfa, err := automaton.Build[shift.Shift](expr, shift.EPP)
	require.NoError(t, err)
	require.True(t, dfa.Match(nil))
	require.True(t, dfa.Match([]shift.Shift{catalog["M"], catalog["OFF"], catalog["E"]}))
}

func TestParseUnknownCode(t *testing.T) {
	_, err := Parse("Z", testCatalog(t))
	require.Error(t, err)
}

func TestParseUnbalancedParens(t *testing.T) {
	_, err := Parse("(M+E", testCatalog(t))
	require.Error(t, err)
}

func TestParseStarPrecedence(t *testing.T) {
	catalog := testCatalog(t)
	expr, err := Parse("M*E", catalog)
	require.NoError(t, err)
	dfa, err := automaton.Build[shift.Shift](expr, shift.EPP)
	require.NoError(t, err)
	require.True(t, dfa.Match([]shift.Shift{catalog["M"], catalog["M"], catalog["E"]}))
	require.False(t, dfa.Match([]shift.Shift{catalog["E"]}))
}
