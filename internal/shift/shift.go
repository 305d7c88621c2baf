// Package shift implements the Shift value type: the concrete letter the
// planner's regex/DFA/annealer machinery is instantiated over. A Shift
// carries a code and an ordered, non-overlapping list of half-open
// [start,end) minute intervals; an empty interval list denotes "rest".
package shift

import (
	"fmt"
	"hash/fnv"
	"sort"

	"github.com/wfplan-dev/wfplan-core/internal/corerr"
)

// Interval is a half-open [Start,End) span in minutes from midnight.
type Interval struct {
	Start int
	End   int
}

// Shift is immutable once constructed.
type Shift struct {
	code      string
	intervals []Interval
}

// Rest builds the rest shift identified by code.
func Rest(code string) Shift {
	return Shift{code: code}
}

// New builds a working shift from code and a set of spans. Spans must be
// non-overlapping with 0 <= start < end; they are stored sorted
// ascending by start regardless of input order.
func New(code string, spans []Interval) (Shift, error) {
	if code == "" {
		return Shift{}, fmt.Errorf("shift code must not be empty: %w", corerr.InvalidArgument)
	}
	if len(spans) == 0 {
		return Rest(code), nil
	}
	sorted := make([]Interval, len(spans))
	copy(sorted, spans)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	for i, sp := range sorted {
		if sp.Start < 0 || sp.Start >= sp.End {
			return Shift{}, fmt.Errorf("interval [%d,%d) is malformed: %w", sp.Start, sp.End, corerr.InvalidArgument)
		}
		if i > 0 && sp.Start < sorted[i-1].End {
			return Shift{}, fmt.Errorf("intervals overlap at [%d,%d) and [%d,%d): %w",
				sorted[i-1].Start, sorted[i-1].End, sp.Start, sp.End, corerr.InvalidArgument)
		}
	}
	return Shift{code: code, intervals: sorted}, nil
}

// Code returns the shift's identity string.
func (s Shift) Code() string { return s.code }

// Intervals returns the shift's working spans (empty for a rest shift).
func (s Shift) Intervals() []Interval { return s.intervals }

// Work reports whether s has any working interval.
func (s Shift) Work() bool { return len(s.intervals) > 0 }

// T0 returns the entry time in minutes for a working shift (first
// interval's start); 0 for a rest shift.
func (s Shift) T0() int {
	if !s.Work() {
		return 0
	}
	return s.intervals[0].Start
}

// T1 returns the exit time in minutes for a working shift (last
// interval's end); 0 for a rest shift.
func (s Shift) T1() int {
	if !s.Work() {
		return 0
	}
	return s.intervals[len(s.intervals)-1].End
}

// Staff reports whether t (minutes from midnight) falls inside any
// working interval.
func (s Shift) Staff(t int) bool {
	for _, iv := range s.intervals {
		if t >= iv.Start && t < iv.End {
			return true
		}
	}
	return false
}

// SlotLength and SlotsPerDay are the curve's fixed discretization, as
// fixed by the original C++ core's config.h.
const (
	SlotLength = 5
	SlotsPerDay = 288
)

// AddStaff adds c to curve slots [day*SlotsPerDay + start/SlotLength,
// day*SlotsPerDay + end/SlotLength) for every working interval, clipped
// to the curve's length.
func (s Shift) AddStaff(day int, c float64, curve []float64) {
	for _, iv := range s.intervals {
		lo := day*SlotsPerDay + iv.Start/SlotLength
		hi := day*SlotsPerDay + iv.End/SlotLength
		if hi > len(curve) {
			hi = len(curve)
		}
		for i := lo; i < hi; i++ {
			if i < 0 {
				continue
			}
			curve[i] += c
		}
	}
}

// Equal implements letter.Interface: two rest shifts are equal iff their
// codes match; two working shifts are equal iff their interval lists
// match; a working shift is never equal to a rest shift.
func (s Shift) Equal(other Shift) bool {
	if s.Work() != other.Work() {
		return false
	}
	if !s.Work() {
		return s.code == other.code
	}
	if len(s.intervals) != len(other.intervals) {
		return false
	}
	for i := range s.intervals {
		if s.intervals[i] != other.intervals[i] {
			return false
		}
	}
	return true
}

// Less implements letter.Interface: rest shifts order by code; working
// shifts order by first start-minute; a working shift always precedes a
// rest shift (consistent with Equal never mixing the two kinds).
func (s Shift) Less(other Shift) bool {
	if s.Work() != other.Work() {
		return s.Work() // working < resting
	}
	if !s.Work() {
		return s.code < other.code
	}
	if s.T0() != other.T0() {
		return s.T0() < other.T0()
	}
	return s.code < other.code
}

// Hash implements letter.Interface, consistently with Equal: a rest
// shift hashes its code, a working shift hashes only its intervals.
func (s Shift) Hash() uint64 {
	h := fnv.New64a()
	if !s.Work() {
		_, _ = h.Write([]byte(s.code))
	}
	for _, iv := range s.intervals {
		_, _ = h.Write([]byte{
			byte(iv.Start), byte(iv.Start >> 8),
			byte(iv.End), byte(iv.End >> 8),
		})
	}
	return h.Sum64()
}

func (s Shift) String() string {
	if !s.Work() {
		return s.code
	}
	return s.code
}

// EPP is the equi-probable partitioner used by the DFA sampler to bucket
// shifts before drawing uniformly within a bucket: non-working shifts in
// bucket 1, early-morning shifts (entry at or before 8:00) in bucket 2,
// morning/afternoon shifts (entry at or before 16:00) in bucket 3, and
// evening shifts in bucket 4.
func EPP(s Shift) int {
	if !s.Work() {
		return 1
	}
	if s.T0() <= 8*60 {
		return 2
	}
	if s.T0() <= 16*60 {
		return 3
	}
	return 4
}
