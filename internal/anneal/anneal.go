// Package anneal implements a generic simulated-annealing driver:
// Metropolis acceptance over any State capable of proposing and
// committing mutations, with automatic calibration of the initial and
// final temperatures and a geometric cooling schedule.
package anneal

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/wfplan-dev/wfplan-core/internal/corerr"
)

// State is the capability interface the annealer drives. A single
// Mutate/DeltaEnergy/ApplyMutation cycle proposes one candidate move;
// Mutate must be called exactly once before each DeltaEnergy/
// ApplyMutation pair.
type State interface {
	Energy() float64
	Mutate()
	DeltaEnergy() float64
	ApplyMutation()
}

// ProgressFunc is called once per temperature level with the level
// index (1-based), the current temperature, the re-read energy, and the
// number of accepted mutations at that level.
type ProgressFunc func(level int, temperature, energy float64, accepted int)

// Anneal drives a single State instance through calibration and cooling.
type Anneal[S State] struct {
	nover    uint
	state    S
	rng      *rand.Rand
	Progress ProgressFunc
}

// New creates an annealer with nover trial mutations per temperature
// level, driving state, using rng for every random decision.
func New[S State](nover uint, state S, rng *rand.Rand) *Anneal[S] {
	return &Anneal[S]{nover: nover, state: state, rng: rng}
}

func (a *Anneal[S]) trialsFor(numerator uint) uint {
	trials := numerator
	if trials == 0 {
		trials = 1
	}
	return trials
}

// CalibrateTi finds the smallest power-of-two multiple of 2.0 whose
// Metropolis acceptance ratio over nover/50 trial mutations reaches 0.9.
// The ratio divides the accepted count by one more than the number of
// trials, so it can only reach 0.9 when there are at least 9 trials
// (nover >= 450); with fewer, the doubling never stops.
func (a *Anneal[S]) CalibrateTi() float64 {
	t0 := 2.0
	trials := a.trialsFor(a.nover / 50)
	for {
		accepted := 0
		attempted := 1
		for i := uint(0); i < trials; i++ {
			a.state.Mutate()
			delta := a.state.DeltaEnergy()
			attempted++
			if delta < 0 || a.rng.Float64() < math.Exp(-delta/t0) {
				a.state.ApplyMutation()
				accepted++
			}
		}
		chi := float64(accepted) / float64(attempted)
		if chi >= 0.9 {
			return t0
		}
		t0 *= 2
	}
}

// CalibrateTf estimates the final temperature as the smallest nonzero
// |delta_energy| observed over 10,000 trial mutations, starting from the
// state's current Energy() as the initial bound (so the result never
// exceeds it). No mutation is committed.
func (a *Anneal[S]) CalibrateTf() float64 {
	deMin := a.state.Energy()
	for i := 0; i < 10000; i++ {
		a.state.Mutate()
		delta := math.Abs(a.state.DeltaEnergy())
		if delta > 0 && delta < deMin {
			deMin = delta
		}
	}
	return deMin
}

// Anneal runs the geometric cooling schedule from ti down to tf with
// ratio delta per level (0 <= delta < 1), committing accepted mutations
// along the way. Preconditions: ti>0, tf>0, ti>tf, 0<=delta<1.
func (a *Anneal[S]) Anneal(ti, tf, delta float64) error {
	if ti <= 0 || tf <= 0 || ti <= tf || delta < 0 || delta >= 1 {
		return fmt.Errorf("anneal(ti=%v, tf=%v, delta=%v) violates preconditions: %w", ti, tf, delta, corerr.InvalidArgument)
	}

	steps := int(math.Round((math.Log(tf) - math.Log(ti)) / math.Log(delta)))
	t := ti
	e := a.state.Energy()
	overThreshold := int(a.nover) / 50

	for level := 1; level <= steps; level++ {
		accepted := 0
		for trial := 0; trial < int(a.nover); trial++ {
			a.state.Mutate()
			d := a.state.DeltaEnergy()
			if d < 0 || a.rng.Float64() < math.Exp(-d/t) {
				a.state.ApplyMutation()
				e += d
				accepted++
			}
			if accepted > overThreshold {
				break
			}
		}

		// Re-read the full energy after each level: cheap relative to
		// nover mutations, and it keeps e from drifting away from the
		// state's own bookkeeping across thousands of incremental deltas.
		e = a.state.Energy()

		if a.Progress != nil {
			a.Progress(level, t, e, accepted)
		}

		t *= delta
		if accepted < 10 {
			break
		}
	}
	return nil
}
