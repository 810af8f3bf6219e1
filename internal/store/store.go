package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/scribepipe/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// ErrInvalidTransition is returned when a status update would overwrite a
// terminal status with a different one. Terminal statuses are final; a repeat
// of the same terminal status is treated as an idempotent no-op instead.
var ErrInvalidTransition = errors.New("invalid status transition")

// Store is the data access interface. All job record operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	// CreateJob writes a new record. Fails with ErrDuplicateKey if the id
	// already exists.
	CreateJob(ctx context.Context, job *models.Job) error

	// GetJob returns the record or ErrNotFound.
	GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error)

	// UpdateJobStatus applies a terminal transition as a conditional update:
	// it succeeds only while the current status is non-terminal, succeeds as
	// a no-op when the record already carries the requested status, and fails
	// with ErrInvalidTransition otherwise.
	UpdateJobStatus(ctx context.Context, id uuid.UUID, status string, opts ...JobUpdateOption) error

	// DeleteJob removes a record; used to compensate a submission whose
	// workflow trigger failed. Fails with ErrNotFound if absent.
	DeleteJob(ctx context.Context, id uuid.UUID) error

	// ListJobs returns all records, unordered.
	ListJobs(ctx context.Context) ([]*models.Job, error)
}

// JobUpdate is the optional-field patch applied alongside a status change.
type JobUpdate struct {
	ErrorMessage *string
	CompletedAt  *time.Time
}

type JobUpdateOption func(*JobUpdate)

// NewJobUpdate resolves options into a patch; store implementations and test
// doubles share it.
func NewJobUpdate(opts ...JobUpdateOption) JobUpdate {
	var u JobUpdate
	for _, opt := range opts {
		opt(&u)
	}
	return u
}

func WithErrorMessage(msg string) JobUpdateOption {
	return func(u *JobUpdate) {
		u.ErrorMessage = &msg
	}
}

func WithCompletedAt(t time.Time) JobUpdateOption {
	return func(u *JobUpdate) {
		u.CompletedAt = &t
	}
}
