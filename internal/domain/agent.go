package domain

import "time"

// Agent is a call-center agent the planner schedules shifts for. Code
// is the identity the core's Plan uses as its agent key.
type Agent struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	FullName  string    `json:"fullName"`
	CreatedAt time.Time `json:"createdAt"`
	Version   int32     `json:"-"`
}
