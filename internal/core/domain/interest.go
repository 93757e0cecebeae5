package domain

import (
	"time"
)

// InterestRunState is the lifecycle state of an interest run.
type InterestRunState string

const (
	InterestRunIdle            InterestRunState = "idle"
	InterestRunRunning         InterestRunState = "running"
	InterestRunCompleted       InterestRunState = "completed"
	InterestRunPartiallyFailed InterestRunState = "partially_failed"
)

// InterestFailure records one account that could not be credited.
type InterestFailure struct {
	AccountID string `json:"userId"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Error     string `json:"error"`
}

// InterestRunSummary reports the outcome of one interest run.
type InterestRunSummary struct {
	State      InterestRunState  `json:"state"`
	Total      int               `json:"totalChildren"`
	Applied    int               `json:"applied"`
	Skipped    int               `json:"skipped"`
	Failed     int               `json:"failed"`
	Failures   []InterestFailure `json:"failures,omitempty"`
	StartedAt  time.Time         `json:"startedAt"`
	FinishedAt time.Time         `json:"finishedAt"`
}

// Duration returns how long the run took.
func (s InterestRunSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
