package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiranshivaraju/scribepipe/internal/api/response"
	"github.com/kiranshivaraju/scribepipe/internal/service"
	"github.com/kiranshivaraju/scribepipe/internal/store"
)

// StatusUpdater defines the interface the status update handler depends on.
type StatusUpdater interface {
	Update(ctx context.Context, req service.StatusUpdateRequest) error
}

// NewUpdateStatusHandler returns an http.HandlerFunc for
// POST /api/v1/jobs/{jobID}/status.
func NewUpdateStatusHandler(svc StatusUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID, err := uuid.Parse(chi.URLParam(r, "jobID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "jobID must be a UUID", nil)
			return
		}

		var req struct {
			Status      string `json:"status"`
			CompletedAt string `json:"completedAt"`
			Error       string `json:"error"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		if req.Status == "" {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "status is required", nil)
			return
		}

		update := service.StatusUpdateRequest{
			JobID:  jobID,
			Status: strings.ToUpper(req.Status),
			Error:  req.Error,
		}
		if req.CompletedAt != "" {
			completedAt, err := time.Parse(time.RFC3339, req.CompletedAt)
			if err != nil {
				response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR",
					"completedAt must be a valid RFC3339 timestamp", nil)
				return
			}
			update.CompletedAt = &completedAt
		}

		if err := svc.Update(r.Context(), update); err != nil {
			writeUpdateError(w, err)
			return
		}

		response.JSON(w, map[string]string{
			"jobId":  jobID.String(),
			"status": update.Status,
		})
	}
}

func writeUpdateError(w http.ResponseWriter, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", verr.Reason,
			map[string]string{"field": verr.Field})
	case errors.Is(err, store.ErrNotFound):
		response.Error(w, http.StatusNotFound, "JOB_NOT_FOUND", "No job with that id", nil)
	case errors.Is(err, store.ErrInvalidTransition):
		response.Error(w, http.StatusConflict, "INVALID_TRANSITION",
			"Job already has a different terminal status", nil)
	default:
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"An unexpected error occurred", nil)
	}
}
