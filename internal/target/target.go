// Package target builds the staffing target curve the planner optimizes
// against: a caller-supplied curve at an arbitrary slot resolution is
// upsampled by repetition to the core's fixed 5-minute resolution,
// zero-padded to a whole number of days, and optionally rescaled so each
// day's integral matches a supplied daily staff-hour budget.
package target

import (
	"fmt"

	"github.com/wfplan-dev/wfplan-core/internal/corerr"
	"github.com/wfplan-dev/wfplan-core/internal/shift"
)

// Curve holds both the rescaled (planner-facing) and unrescaled curves,
// mirroring the original implementation's target_/target_unrescaled_
// pair so callers can report how much rescaling moved the input.
type Curve struct {
	rescaled   []float64
	unrescaled []float64
	days       int
}

// New builds a Curve from samples taken at userSlotLength-minute
// resolution (a positive multiple of shift.SlotLength), optionally
// rescaling each day so its integral (in hours) matches
// dailyHourBudget[day]; pass a nil budget to skip rescaling.
func New(samples []float64, userSlotLength int, dailyHourBudget []float64) (*Curve, error) {
	if userSlotLength <= 0 || userSlotLength%shift.SlotLength != 0 {
		return nil, fmt.Errorf("user slot length %d must be a positive multiple of %d: %w", userSlotLength, shift.SlotLength, corerr.InvalidArgument)
	}
	if 1440%userSlotLength != 0 {
		return nil, fmt.Errorf("user slot length %d must evenly divide a day: %w", userSlotLength, corerr.InvalidArgument)
	}
	for _, v := range samples {
		if v < 0 {
			return nil, fmt.Errorf("target samples must be non-negative: %w", corerr.InvalidArgument)
		}
	}

	samplesPerDay := 1440 / userSlotLength
	days := (len(samples) + samplesPerDay - 1) / samplesPerDay
	if days == 0 {
		days = 1
	}
	padded := make([]float64, days*samplesPerDay)
	copy(padded, samples)

	repeat := userSlotLength / shift.SlotLength
	unrescaled := make([]float64, 0, days*shift.SlotsPerDay)
	for _, v := range padded {
		for i := 0; i < repeat; i++ {
			unrescaled = append(unrescaled, v)
		}
	}

	rescaled := make([]float64, len(unrescaled))
	copy(rescaled, unrescaled)
	if dailyHourBudget != nil {
		for day := 0; day < days; day++ {
			lo := day * shift.SlotsPerDay
			hi := lo + shift.SlotsPerDay
			var sum float64
			for i := lo; i < hi; i++ {
				sum += unrescaled[i]
			}
			if sum <= 0 || day >= len(dailyHourBudget) {
				continue
			}
			budgetSlots := dailyHourBudget[day] * 60 / shift.SlotLength
			if budgetSlots == 0 {
				continue
			}
			factor := budgetSlots / sum
			for i := lo; i < hi; i++ {
				rescaled[i] = unrescaled[i] * factor
			}
		}
	}

	return &Curve{rescaled: rescaled, unrescaled: unrescaled, days: days}, nil
}

// Rescaled is the curve the planner optimizes against.
func (c *Curve) Rescaled() []float64 { return c.rescaled }

// Unrescaled is the curve before any daily-budget rescaling.
func (c *Curve) Unrescaled() []float64 { return c.unrescaled }

// Days is the number of whole days the curve covers.
func (c *Curve) Days() int { return c.days }

// Len is the curve's length in 5-minute slots (Days() * shift.SlotsPerDay).
func (c *Curve) Len() int { return len(c.rescaled) }
