package domain

import "time"

// RuleSpec is the textual shift rule assigned to one agent: a regex
// over shift codes, parsed by internal/ruleparser into the core's
// regex.Expr[shift.Shift] before it can be compiled and sampled.
type RuleSpec struct {
	ID        int64     `json:"id"`
	AgentID   int64     `json:"agentID"`
	Pattern   string    `json:"pattern" validate:"required"`
	CreatedAt time.Time `json:"createdAt"`
	Version   int32     `json:"-"`
}

// ShiftCatalogEntry is the row form of one named shift: a code plus its
// ordered, non-overlapping [start,end) minute intervals (empty for rest).
type ShiftCatalogEntry struct {
	Code      string   `json:"code" validate:"required"`
	Intervals [][2]int `json:"intervals" validate:"dive,len=2"`
}

// TargetCurveRow is one sample of the staffing target curve as
// persisted and loaded. cmd/planservice reads SlotIndex as a 5-minute
// slot (shift.SlotLength), so rows are written at that resolution.
type TargetCurveRow struct {
	SlotIndex int     `json:"slotIndex" validate:"gte=0"`
	Value     float64 `json:"value" validate:"gte=0"`
}
