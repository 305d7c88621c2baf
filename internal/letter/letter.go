// Package letter declares the constraint every alphabet type must satisfy
// to be used as the parameter of the regex algebra, the DFA/sampler, and
// the equi-probable partitioner. Shift (internal/shift) is the only
// concrete instantiation in this module, but nothing in this package or
// in internal/regex / internal/automaton mentions it.
package letter

// Interface is a self-bounded generic constraint: a letter type must be
// able to compare itself against, order itself against, and hash itself
// into, other values of its own type.
type Interface[T any] interface {
	// Equal reports whether the receiver and other denote the same letter.
	Equal(other T) bool
	// Less defines a total order, used to keep bucketed letter groups
	// (see internal/automaton) and Sum/And children deterministic.
	Less(other T) bool
	// Hash returns a stable structural hash, combined into the regex
	// node hash wherever the letter appears as a Lit.
	Hash() uint64
}
