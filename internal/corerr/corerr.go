// Package corerr defines the sentinel error kinds shared by every core
// subsystem (regex, automaton, anneal, planner). Call sites wrap one of
// these with fmt.Errorf("...: %w", corerr.InvalidArgument) so callers can
// still discriminate the kind with errors.Is.
package corerr

import "errors"

var (
	// InvalidArgument marks caller-supplied input that violates a
	// documented precondition (bad annealer bounds, unknown agent code,
	// out-of-range week index, malformed time span, ...).
	InvalidArgument = errors.New("invalid argument")

	// InvalidShape marks an operation applied to a value of the wrong
	// shape, e.g. extracting a literal out of a non-literal regex node.
	InvalidShape = errors.New("invalid shape")

	// Invariant marks a violated internal invariant. Unrecoverable:
	// callers must treat it as fatal to the optimization run in progress.
	Invariant = errors.New("invariant violation")

	// Unsupported marks an operation that is intentionally not
	// implemented (e.g. DFA intersection/complement).
	Unsupported = errors.New("unsupported operation")
)
