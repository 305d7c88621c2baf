package shift

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRejectsEmptyCode(t *testing.T) {
	_, err := New("", nil)
	require.Error(t, err)
}

func TestNewWithNoSpansIsRest(t *testing.T) {
	s, err := New("OFF", nil)
	require.NoError(t, err)
	require.False(t, s.Work())
	require.Equal(t, 0, s.T0())
	require.Equal(t, 0, s.T1())
}

func TestNewSortsIntervalsAscending(t *testing.T) {
	s, err := New("M", []Interval{{Start: 12 * 60, End: 13 * 60}, {Start: 8 * 60, End: 9 * 60}})
	require.NoError(t, err)
	require.Equal(t, 8*60, s.Intervals()[0].Start)
	require.Equal(t, 12*60, s.Intervals()[1].Start)
}

func TestNewRejectsMalformedInterval(t *testing.T) {
	_, err := New("M", []Interval{{Start: 10, End: 5}})
	require.Error(t, err)
}

func TestNewRejectsOverlappingIntervals(t *testing.T) {
	_, err := New("M", []Interval{{Start: 0, End: 100}, {Start: 50, End: 150}})
	require.Error(t, err)
}

func TestT0T1SpanFirstToLastInterval(t *testing.T) {
	s, err := New("M", []Interval{{Start: 8 * 60, End: 12 * 60}, {Start: 13 * 60, End: 17 * 60}})
	require.NoError(t, err)
	require.Equal(t, 8*60, s.T0())
	require.Equal(t, 17*60, s.T1())
}

func TestStaffReportsMembershipInAnyInterval(t *testing.T) {
	s, err := New("M", []Interval{{Start: 8 * 60, End: 12 * 60}, {Start: 13 * 60, End: 17 * 60}})
	require.NoError(t, err)
	require.True(t, s.Staff(8*60))
	require.False(t, s.Staff(12*60))
	require.True(t, s.Staff(13*60))
	require.False(t, s.Staff(18*60))
}

func TestAddStaffIncrementsOnlyWorkingSlotsClippedToCurve(t *testing.T) {
	s, err := New("M", []Interval{{Start: 0, End: 15}})
	require.NoError(t, err)
	curve := make([]float64, 2)
	s.AddStaff(0, 1, curve)
	require.Equal(t, []float64{1, 1}, curve)
}

func TestRestShiftsNeverEqualWorkingShifts(t *testing.T) {
	rest := Rest("OFF")
	work, err := New("M", []Interval{{Start: 0, End: 60}})
	require.NoError(t, err)
	require.False(t, rest.Equal(work))
	require.False(t, work.Equal(rest))
}

func TestEqualComparesIntervalsForWorkingShifts(t *testing.T) {
	a, err := New("M", []Interval{{Start: 0, End: 60}})
	require.NoError(t, err)
	b, err := New("M", []Interval{{Start: 0, End: 60}})
	require.NoError(t, err)
	c, err := New("M", []Interval{{Start: 0, End: 30}})
	require.NoError(t, err)
	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
}

func TestLessOrdersWorkingBeforeResting(t *testing.T) {
	rest := Rest("OFF")
	work, err := New("M", []Interval{{Start: 0, End: 60}})
	require.NoError(t, err)
	require.True(t, work.Less(rest))
	require.False(t, rest.Less(work))
}

func TestLessOrdersWorkingShiftsByEntryTime(t *testing.T) {
	early, err := New("M", []Interval{{Start: 6 * 60, End: 14 * 60}})
	require.NoError(t, err)
	late, err := New("E", []Interval{{Start: 14 * 60, End: 22 * 60}})
	require.NoError(t, err)
	require.True(t, early.Less(late))
	require.False(t, late.Less(early))
}

func TestHashIsStableAndDistinguishesShifts(t *testing.T) {
	a, err := New("M", []Interval{{Start: 0, End: 60}})
	require.NoError(t, err)
	b, err := New("M", []Interval{{Start: 0, End: 60}})
	require.NoError(t, err)
	require.Equal(t, a.Hash(), b.Hash())

	c := Rest("OFF")
	require.NotEqual(t, a.Hash(), c.Hash())
}

func TestEPPBucketsByEntryTime(t *testing.T) {
	require.Equal(t, 1, EPP(Rest("OFF")))

	early, err := New("M", []Interval{{Start: 6 * 60, End: 14 * 60}})
	require.NoError(t, err)
	require.Equal(t, 2, EPP(early))

	midday, err := New("A", []Interval{{Start: 12 * 60, End: 20 * 60}})
	require.NoError(t, err)
	require.Equal(t, 3, EPP(midday))

	late, err := New("E", []Interval{{Start: 17 * 60, End: 23 * 60}})
	require.NoError(t, err)
	require.Equal(t, 4, EPP(late))
}
