package models

import "time"

type JobState string

const (
	JobPending JobState = "pending"
	JobDone    JobState = "done"
	JobFailed  JobState = "failed"
)

// JobStatus tracks an asynchronous timeline request.
type JobStatus struct {
	ID          string     `json:"id"`
	State       JobState   `json:"state"`
	Symbol      string     `json:"symbol,omitempty"`
	SubmittedAt time.Time  `json:"submitted_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Attempts    int        `json:"attempts,omitempty"`
	Error       string     `json:"error,omitempty"`
	Timeline    *Timeline  `json:"timeline,omitempty"`
}
