package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiranshivaraju/scribepipe/internal/api/response"
	"github.com/kiranshivaraju/scribepipe/internal/store"
	"github.com/kiranshivaraju/scribepipe/pkg/models"
)

// Listing timestamps are rendered in a fixed UTC+9 offset for the operators
// reading them.
var displayZone = time.FixedZone("UTC+9", 9*60*60)

const displayTimeFormat = "2006-01-02 15:04:05"

// Querier defines the interface the read handlers depend on.
type Querier interface {
	List(ctx context.Context) ([]*models.Job, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Job, error)
	GetStatus(ctx context.Context, id uuid.UUID) (string, error)
}

type jobView struct {
	JobID         string `json:"jobId"`
	Status        string `json:"status"`
	S3Address     string `json:"s3_address"`
	OutputAddress string `json:"output_address"`
	CreatedAt     string `json:"created_at"`
	CompletedAt   string `json:"completed_at,omitempty"`
	ErrorMessage  string `json:"error_message,omitempty"`
}

func toJobView(job *models.Job) jobView {
	view := jobView{
		JobID:         job.ID.String(),
		Status:        job.Status,
		S3Address:     job.SourceAddress,
		OutputAddress: job.OutputAddress,
		CreatedAt:     job.CreatedAt.In(displayZone).Format(displayTimeFormat),
	}
	if job.CompletedAt != nil {
		view.CompletedAt = job.CompletedAt.In(displayZone).Format(displayTimeFormat)
	}
	if job.ErrorMessage != nil {
		view.ErrorMessage = *job.ErrorMessage
	}
	return view
}

// NewListJobsHandler returns an http.HandlerFunc for GET /api/v1/jobs.
func NewListJobsHandler(svc Querier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobs, err := svc.List(r.Context())
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Error fetching transcription data", nil)
			return
		}

		views := make([]jobView, 0, len(jobs))
		for _, job := range jobs {
			views = append(views, toJobView(job))
		}
		response.JSON(w, views)
	}
}

// NewGetJobHandler returns an http.HandlerFunc for GET /api/v1/jobs/{jobID}.
func NewGetJobHandler(svc Querier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID, err := uuid.Parse(chi.URLParam(r, "jobID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "jobID must be a UUID", nil)
			return
		}

		job, err := svc.Get(r.Context(), jobID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "JOB_NOT_FOUND", "No job with that id", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Error fetching transcription data", nil)
			return
		}
		response.JSON(w, toJobView(job))
	}
}

// NewJobStatusHandler returns an http.HandlerFunc for
// GET /api/v1/jobs/{jobID}/status, the cache-first poll endpoint.
func NewJobStatusHandler(svc Querier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID, err := uuid.Parse(chi.URLParam(r, "jobID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "jobID must be a UUID", nil)
			return
		}

		status, err := svc.GetStatus(r.Context(), jobID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "JOB_NOT_FOUND", "No job with that id", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Error fetching transcription data", nil)
			return
		}

		response.JSON(w, map[string]string{
			"jobId":  jobID.String(),
			"status": status,
		})
	}
}
