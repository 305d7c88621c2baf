package anneal

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeState is a minimal State: it always proposes a mutation whose delta
// is fixed at construction, so tests can control acceptance deterministically.
type fakeState struct {
	energy float64
	delta  float64
	muts   int
}

func (s *fakeState) Energy() float64      { return s.energy }
func (s *fakeState) Mutate()              { s.muts++ }
func (s *fakeState) DeltaEnergy() float64 { return s.delta }
func (s *fakeState) ApplyMutation()       { s.energy += s.delta }

func TestCalibrateTiReturnsPowerOfTwoTimesTwo(t *testing.T) {
	// A negative delta is always accepted regardless of temperature, so
	// CalibrateTi must return on its very first trial batch at t0=2.0.
	s := &fakeState{delta: -1}
	a := New(1000, s, rand.New(rand.NewSource(1)))
	ti := a.CalibrateTi()
	require.Equal(t, 2.0, ti)
}

func TestCalibrateTiDoublesUntilAcceptanceThresholdMet(t *testing.T) {
	// A large positive delta is rejected at low temperature under every
	// rng draw, forcing CalibrateTi to double t0 at least once before the
	// Metropolis probability climbs high enough to pass 0.9 acceptance.
	s := &fakeState{delta: 1000}
	a := New(100, s, rand.New(rand.NewSource(1)))
	ti := a.CalibrateTi()
	require.Greater(t, ti, 2.0)
}

func TestCalibrateTfFindsSmallestNonzeroDelta(t *testing.T) {
	s := &fakeState{energy: 1, delta: 0.01}
	a := New(10, s, rand.New(rand.NewSource(1)))
	tf := a.CalibrateTf()
	require.InDelta(t, 0.01, tf, 1e-9)
}

func TestAnnealRejectsInvalidPreconditions(t *testing.T) {
	s := &fakeState{}
	a := New(10, s, rand.New(rand.NewSource(1)))

	require.Error(t, a.Anneal(0, 1, 0.5))
	require.Error(t, a.Anneal(10, 0, 0.5))
	require.Error(t, a.Anneal(1, 10, 0.5))
	require.Error(t, a.Anneal(10, 1, -0.1))
	require.Error(t, a.Anneal(10, 1, 1))
}

func TestAnnealRunsAcceptedMutationCycle(t *testing.T) {
	s := &fakeState{energy: 100, delta: -1}
	a := New(50, s, rand.New(rand.NewSource(1)))

	levels := 0
	a.Progress = func(level int, temperature, energy float64, accepted int) {
		levels++
		require.GreaterOrEqual(t, accepted, 0)
	}

	err := a.Anneal(2.0, 1.0, 0.5)
	require.NoError(t, err)
	require.Greater(t, levels, 0)
	require.Less(t, s.energy, 100.0)
}
