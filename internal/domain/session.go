package domain

import "time"

// Session is one recorded step-count interval. Sessions are append-only:
// they are created by the "sessions" action and never mutated or deleted.
type Session struct {
	UserID    int64     `json:"userid"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Steps     int       `json:"steps"`
}
