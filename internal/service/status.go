package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/scribepipe/internal/cache"
	"github.com/kiranshivaraju/scribepipe/internal/store"
	"github.com/kiranshivaraju/scribepipe/pkg/models"
	"github.com/kiranshivaraju/scribepipe/pkg/schema"
)

// statusCacheTTL bounds staleness of the poll read path; the database stays
// the source of truth.
const statusCacheTTL = 24 * time.Hour

const defaultErrorMessage = "Unknown error"

// StatusUpdateRequest carries a terminal transition for an existing job.
type StatusUpdateRequest struct {
	JobID       uuid.UUID
	Status      string
	CompletedAt *time.Time
	Error       string
}

// StatusUpdater applies terminal transitions to job records.
type StatusUpdater struct {
	store store.Store
	cache cache.Cache
	now   func() time.Time
}

func NewStatusUpdater(s store.Store, c cache.Cache) *StatusUpdater {
	return &StatusUpdater{store: s, cache: c, now: time.Now}
}

// Update moves a job to COMPLETED or FAILED. completed_at is set only with
// COMPLETED (defaulting to now when the caller omits it) and error_message
// only with FAILED. The store's conditional update enforces that terminal
// statuses are sticky; store.ErrInvalidTransition and store.ErrNotFound pass
// through for the caller to map.
func (u *StatusUpdater) Update(ctx context.Context, req StatusUpdateRequest) error {
	if !models.IsTerminalStatus(req.Status) {
		return invalid("status", fmt.Sprintf("must be %s or %s", models.JobStatusCompleted, models.JobStatusFailed))
	}

	var opts []store.JobUpdateOption
	switch req.Status {
	case models.JobStatusCompleted:
		completedAt := u.now().UTC()
		if req.CompletedAt != nil {
			completedAt = req.CompletedAt.UTC()
		}
		opts = append(opts, store.WithCompletedAt(completedAt))
	case models.JobStatusFailed:
		msg := req.Error
		if msg == "" {
			msg = defaultErrorMessage
		}
		opts = append(opts, store.WithErrorMessage(msg))
	}

	if err := u.store.UpdateJobStatus(ctx, req.JobID, req.Status, opts...); err != nil {
		return err
	}

	if err := u.cache.SetJobStatus(ctx, req.JobID, req.Status, statusCacheTTL); err != nil {
		slog.Warn("refresh status cache failed", "job_id", req.JobID, "error", err)
	}
	return nil
}

// ApplyOutcome translates a worker outcome into a status update. SUCCEEDED
// maps to COMPLETED with the application time as completed_at.
func (u *StatusUpdater) ApplyOutcome(ctx context.Context, outcome schema.JobOutcome) error {
	jobID, err := uuid.Parse(outcome.JobID)
	if err != nil {
		return invalid("jobId", err.Error())
	}

	req := StatusUpdateRequest{JobID: jobID}
	if outcome.Succeeded() {
		req.Status = models.JobStatusCompleted
	} else {
		req.Status = models.JobStatusFailed
		req.Error = outcome.Error
	}
	return u.Update(ctx, req)
}
