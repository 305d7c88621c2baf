// Package automaton builds a minimal (up to the regex algebra's laws)
// DFA from a regex.Expr via iterated Brzozowski derivatives, and samples
// random accepted words from it using an equi-probable letter
// partitioning so that sampling first draws a bucket, then a letter
// within it.
package automaton

import (
	"fmt"
	"sort"

	"github.com/wfplan-dev/wfplan-core/internal/corerr"
	"github.com/wfplan-dev/wfplan-core/internal/letter"
	"github.com/wfplan-dev/wfplan-core/internal/regex"
)

// EPP (equi-probable partitioner) groups alphabet letters into semantic
// buckets so sampling is uniform-over-buckets, then uniform-within-bucket,
// rather than uniform over raw letters.
type EPP[L letter.Interface[L]] func(L) int

type edgeKey struct{ from, to int }

// DFA is immutable once built. Its internal bookkeeping keeps three
// views of the transition relation: trans for deterministic matching,
// succ for uniform successor-state sampling, and buckets for
// equi-probable letter sampling along an edge.
type DFA[L letter.Interface[L]] struct {
	alphabet  []L
	trans     map[int]map[int]int   // state -> letterIdx -> state
	succ      map[int][]int         // state -> successor states (one entry per outgoing letter)
	buckets   map[edgeKey][][]int   // (from,to) -> ordered buckets of letter indices
	accepting map[int]bool
	nStates   int
}

// Transition describes one (state,state) edge for introspection/tests.
type Transition struct {
	From, To int
	Buckets  [][]int
}

// Build compiles r0 into its DFA via iterated derivatives. State 1 is
// the initial state; state ids are assigned in BFS discovery order.
// Unlike the original implementation (which only marks a state accepting
// when some transition derives into it), Build checks Nullable(r0) up
// front so the initial state is never missed as accepting when r0 itself
// is nullable — see DESIGN.md for this deliberate deviation.
func Build[L letter.Interface[L]](r0 *regex.Expr[L], epp EPP[L]) (*DFA[L], error) {
	alphabet := regex.Alphabet(r0)
	sort.Slice(alphabet, func(i, j int) bool { return alphabet[i].Less(alphabet[j]) })

	type entry struct {
		expr *regex.Expr[L]
		id   int
	}
	regexMap := make(map[uint64][]entry)
	lookup := func(e *regex.Expr[L]) (int, bool) {
		for _, cand := range regexMap[e.Hash()] {
			if regex.Equal(cand.expr, e) {
				return cand.id, true
			}
		}
		return 0, false
	}
	insert := func(e *regex.Expr[L], id int) {
		regexMap[e.Hash()] = append(regexMap[e.Hash()], entry{e, id})
	}

	stateRegex := map[int]*regex.Expr[L]{1: r0}
	insert(r0, 1)
	accepting := map[int]bool{}
	if regex.Nullable(r0) {
		accepting[1] = true
	}

	trans := map[int]map[int]int{}
	succ := map[int][]int{}
	edgeLetters := map[edgeKey]map[int]bool{}

	nextID := 2
	queue := []int{1}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		rq := stateRegex[id]

		for li, l := range alphabet {
			d := regex.Derivative(rq, l)
			if d.Kind() == regex.KindZero {
				continue
			}
			targetID, found := lookup(d)
			if !found {
				targetID = nextID
				nextID++
				insert(d, targetID)
				stateRegex[targetID] = d
				if regex.Nullable(d) {
					accepting[targetID] = true
				}
				queue = append(queue, targetID)
			}
			if trans[id] == nil {
				trans[id] = map[int]int{}
			}
			trans[id][li] = targetID
			succ[id] = append(succ[id], targetID)

			key := edgeKey{id, targetID}
			if edgeLetters[key] == nil {
				edgeLetters[key] = map[int]bool{}
			}
			edgeLetters[key][li] = true
		}
	}

	buckets := make(map[edgeKey][][]int, len(edgeLetters))
	for key, letterSet := range edgeLetters {
		byBucket := map[int][]int{}
		for li := range letterSet {
			b := epp(alphabet[li])
			byBucket[b] = append(byBucket[b], li)
		}
		bucketIDs := make([]int, 0, len(byBucket))
		for b := range byBucket {
			bucketIDs = append(bucketIDs, b)
		}
		sort.Ints(bucketIDs)
		ordered := make([][]int, 0, len(bucketIDs))
		for _, b := range bucketIDs {
			idxs := byBucket[b]
			sort.Slice(idxs, func(i, j int) bool { return alphabet[idxs[i]].Less(alphabet[idxs[j]]) })
			ordered = append(ordered, idxs)
		}
		buckets[key] = ordered
	}

	d := &DFA[L]{
		alphabet:  alphabet,
		trans:     trans,
		succ:      succ,
		buckets:   buckets,
		accepting: accepting,
		nStates:   nextID - 1,
	}
	for id := 1; id <= d.nStates; id++ {
		if !accepting[id] && len(succ[id]) == 0 {
			return nil, fmt.Errorf("state %d is non-accepting with no outgoing transition: %w", id, corerr.Invariant)
		}
	}
	return d, nil
}

// Alphabet returns the DFA's ordered letter alphabet.
func (d *DFA[L]) Alphabet() []L { return d.alphabet }

// States returns the number of states (including the initial state).
func (d *DFA[L]) States() int { return d.nStates }

// Accepting reports whether state id is accepting.
func (d *DFA[L]) Accepting(id int) bool { return d.accepting[id] }

// Transitions returns a snapshot of every (state,state) edge for
// introspection (diagnostics, caching, tests).
func (d *DFA[L]) Transitions() []Transition {
	out := make([]Transition, 0, len(d.buckets))
	for key, b := range d.buckets {
		out = append(out, Transition{From: key.from, To: key.to, Buckets: b})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}

func (d *DFA[L]) letterIndex(l L) (int, bool) {
	for i, a := range d.alphabet {
		if a.Equal(l) {
			return i, true
		}
	}
	return 0, false
}

// Match deterministically follows the DFA from state 1; unknown letters
// or missing transitions make it reject.
func (d *DFA[L]) Match(w []L) bool {
	state := 1
	for _, l := range w {
		li, ok := d.letterIndex(l)
		if !ok {
			return false
		}
		next, ok := d.trans[state][li]
		if !ok {
			return false
		}
		state = next
	}
	return d.accepting[state]
}
