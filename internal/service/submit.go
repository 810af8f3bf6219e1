package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/scribepipe/internal/blob"
	"github.com/kiranshivaraju/scribepipe/internal/store"
	"github.com/kiranshivaraju/scribepipe/internal/workflow"
	"github.com/kiranshivaraju/scribepipe/pkg/models"
	"github.com/kiranshivaraju/scribepipe/pkg/schema"
)

// SubmitRequest is a validated-on-entry transcription request.
type SubmitRequest struct {
	SourceAddress string
	OutputBucket  string
}

// SubmitResult is returned to the caller on a successful submission.
type SubmitResult struct {
	JobID        uuid.UUID
	ExecutionRef string
}

// Submitter creates job records and hands them to the workflow engine.
type Submitter struct {
	store  store.Store
	engine workflow.Engine
	now    func() time.Time
	newID  func() uuid.UUID
}

func NewSubmitter(s store.Store, e workflow.Engine) *Submitter {
	return &Submitter{
		store:  s,
		engine: e,
		now:    time.Now,
		newID:  uuid.New,
	}
}

// Submit validates the request, writes the initial STARTED record, and
// triggers the workflow. If the trigger fails the record is deleted again so
// the submission is atomic from the caller's perspective: either a job
// exists and its workflow is running, or neither.
func (s *Submitter) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	addr, err := blob.ParseAddress(req.SourceAddress)
	if err != nil {
		return nil, invalid("s3_address", err.Error())
	}

	outputBucket := blob.NormalizeBucket(req.OutputBucket)
	if outputBucket == "" {
		return nil, invalid("output_bucket", "must not be empty")
	}

	jobID := s.newID()
	now := s.now().UTC()
	job := &models.Job{
		ID:            jobID,
		Status:        models.JobStatusStarted,
		SourceAddress: req.SourceAddress,
		// The output address is a prediction derived from the source prefix;
		// the worker confirms the real key in its outcome.
		OutputAddress: fmt.Sprintf("%s/%s.srt", addr.Prefix(), jobID),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("create job record: %w", err)
	}

	ref, err := s.engine.StartExecution(ctx, schema.ExecutionInput{
		JobID:         jobID.String(),
		SourceAddress: req.SourceAddress,
		OutputBucket:  outputBucket,
	})
	if err != nil {
		// Compensating delete: don't leave a STARTED record no workflow
		// will ever move to a terminal status.
		if delErr := s.store.DeleteJob(ctx, jobID); delErr != nil {
			slog.Error("compensating delete failed", "job_id", jobID, "error", delErr)
		}
		return nil, fmt.Errorf("start execution: %w", err)
	}

	return &SubmitResult{JobID: jobID, ExecutionRef: ref}, nil
}
