package cache

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyIsStableAndDiscriminating(t *testing.T) {
	a := Key("(M+OFF)*", 1)
	b := Key("(M+OFF)*", 1)
	c := Key("(M+OFF)*", 2)
	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
}

func TestCompiledDFARoundTrips(t *testing.T) {
	dfa := CompiledDFA{
		Alphabet:  []string{"OFF", "M"},
		NStates:   2,
		Accepting: []int{1, 2},
		Transitions: []Transition{
			{From: 1, To: 2, Buckets: [][]int{{0}, {1}}},
		},
	}
	raw, err := json.Marshal(dfa)
	require.NoError(t, err)

	var out CompiledDFA
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Equal(t, dfa, out)
}
