package automaton

import (
	"fmt"
	"math/rand"

	"github.com/wfplan-dev/wfplan-core/internal/corerr"
	"github.com/wfplan-dev/wfplan-core/internal/letter"
)

// traceStep records one edge walked by sample(), replayed by resample.
type traceStep struct{ from, to int }

// Fitness scores a candidate letter at step i of a word being built,
// given the letters chosen so far. resampleFitness picks the minimizer.
type Fitness[L letter.Interface[L]] func(step int, partial []L, candidate L) float64

// Sampler walks a DFA to produce and re-produce random accepted words.
// It owns an RNG and a states_trace left over from the most recent
// sample() call; it is not safe for concurrent use (see spec §5).
type Sampler[L letter.Interface[L]] struct {
	dfa   *DFA[L]
	rng   *rand.Rand
	trace []traceStep
}

// NewSampler creates a sampler over dfa seeded from the given source.
func NewSampler[L letter.Interface[L]](dfa *DFA[L], rng *rand.Rand) *Sampler[L] {
	return &Sampler[L]{dfa: dfa, rng: rng}
}

// DFA returns the sampler's underlying automaton.
func (s *Sampler[L]) DFA() *DFA[L] { return s.dfa }

func (s *Sampler[L]) pickLetter(from, to int) (int, error) {
	buckets := s.dfa.buckets[edgeKey{from, to}]
	if len(buckets) == 0 {
		return 0, fmt.Errorf("no letters labeling edge %d->%d: %w", from, to, corerr.Invariant)
	}
	bucket := buckets[s.rng.Intn(len(buckets))]
	return bucket[s.rng.Intn(len(bucket))], nil
}

// Sample produces a fresh random accepted word, recording the walked
// states_trace for later Resample/ResampleFitness calls.
func (s *Sampler[L]) Sample() ([]L, error) {
	state := 1
	var word []L
	var trace []traceStep

	for {
		if s.dfa.accepting[state] && s.rng.Float64() < 0.5 {
			break
		}
		succs := s.dfa.succ[state]
		if len(succs) == 0 {
			if s.dfa.accepting[state] {
				break
			}
			return nil, fmt.Errorf("state %d has no outgoing transition: %w", state, corerr.Invariant)
		}
		to := succs[s.rng.Intn(len(succs))]
		li, err := s.pickLetter(state, to)
		if err != nil {
			return nil, err
		}
		word = append(word, s.dfa.alphabet[li])
		trace = append(trace, traceStep{state, to})
		state = to
	}

	s.trace = trace
	return word, nil
}

// Resample replays the most recent sample's states_trace, redrawing a
// fresh bucket-uniform letter at every step.
func (s *Sampler[L]) Resample() ([]L, error) {
	if s.trace == nil {
		return nil, fmt.Errorf("resample called before any sample: %w", corerr.InvalidArgument)
	}
	word := make([]L, 0, len(s.trace))
	for _, step := range s.trace {
		li, err := s.pickLetter(step.from, step.to)
		if err != nil {
			return nil, err
		}
		word = append(word, s.dfa.alphabet[li])
	}
	return word, nil
}

// ResampleFitness replays the most recent sample's states_trace; at each
// step it enumerates every letter over every bucket labeling that edge
// and picks the one minimizing fitness, ties broken by iteration order
// (ascending bucket id, then ascending letter order within the bucket).
func (s *Sampler[L]) ResampleFitness(fitness Fitness[L]) ([]L, error) {
	if s.trace == nil {
		return nil, fmt.Errorf("resample called before any sample: %w", corerr.InvalidArgument)
	}
	word := make([]L, 0, len(s.trace))
	for i, step := range s.trace {
		buckets := s.dfa.buckets[edgeKey{step.from, step.to}]
		if len(buckets) == 0 {
			return nil, fmt.Errorf("no letters labeling edge %d->%d: %w", step.from, step.to, corerr.Invariant)
		}
		var best L
		bestSet := false
		bestScore := 0.0
		for _, bucket := range buckets {
			for _, li := range bucket {
				cand := s.dfa.alphabet[li]
				score := fitness(i, word, cand)
				if !bestSet || score < bestScore {
					best = cand
					bestScore = score
					bestSet = true
				}
			}
		}
		word = append(word, best)
	}
	return word, nil
}
