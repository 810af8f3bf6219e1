package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	JobStatusStarted   = "STARTED"
	JobStatusRunning   = "RUNNING" // reserved for future use; nothing emits it today
	JobStatusCompleted = "COMPLETED"
	JobStatusFailed    = "FAILED"
)

// Job tracks one transcription request through its lifecycle. The API returns
// a job id on POST /api/v1/jobs; the record is moved to a terminal status
// exactly once, by the status-update path, when the worker reports its outcome.
type Job struct {
	ID            uuid.UUID  `db:"id"             json:"id"`
	Status        string     `db:"status"         json:"status"`
	SourceAddress string     `db:"source_address" json:"source_address"`
	OutputAddress string     `db:"output_address" json:"output_address"`
	ErrorMessage  *string    `db:"error_message"  json:"error_message,omitempty"`
	CompletedAt   *time.Time `db:"completed_at"   json:"completed_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at"     json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"     json:"updated_at"`
}

// IsTerminalStatus reports whether a status permits no further transition.
func IsTerminalStatus(status string) bool {
	return status == JobStatusCompleted || status == JobStatusFailed
}

// IsValidStatus reports whether the status belongs to the job lifecycle.
func IsValidStatus(status string) bool {
	switch status {
	case JobStatusStarted, JobStatusRunning, JobStatusCompleted, JobStatusFailed:
		return true
	}
	return false
}
