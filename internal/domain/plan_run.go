package domain

import "time"

// PlanRunStatus is a PlanRun's lifecycle state.
type PlanRunStatus string

const (
	PlanRunPending   PlanRunStatus = "pending"
	PlanRunRunning   PlanRunStatus = "running"
	PlanRunCompleted PlanRunStatus = "completed"
	PlanRunFailed    PlanRunStatus = "failed"
)

// PlanRun is one optimization run's configuration and lifecycle status.
type PlanRun struct {
	ID            int64         `json:"id"`
	Description   string        `json:"description" validate:"required"`
	Week          int32         `json:"week" validate:"gte=0"`
	TempSchedule  float64       `json:"tempSchedule" validate:"gte=0.5,lt=1"`
	ComfortWeight float64       `json:"comfortWeight" validate:"gte=0"`
	Status        PlanRunStatus `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
	Version       int32         `json:"-"`
}
