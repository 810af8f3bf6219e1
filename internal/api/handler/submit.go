// Package handler implements the HTTP handlers for the transcription API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kiranshivaraju/scribepipe/internal/api/response"
	"github.com/kiranshivaraju/scribepipe/internal/service"
)

// Submitter defines the interface the submission handler depends on.
type Submitter interface {
	Submit(ctx context.Context, req service.SubmitRequest) (*service.SubmitResult, error)
}

type submitResponse struct {
	Message      string `json:"message"`
	JobID        string `json:"jobId"`
	ExecutionRef string `json:"executionArn"`
}

// NewSubmitHandler returns an http.HandlerFunc for POST /api/v1/jobs.
func NewSubmitHandler(svc Submitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			S3Address    string `json:"s3_address"`
			OutputBucket string `json:"output_bucket"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		if req.S3Address == "" {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "s3_address is required", nil)
			return
		}
		if req.OutputBucket == "" {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "output_bucket is required", nil)
			return
		}

		result, err := svc.Submit(r.Context(), service.SubmitRequest{
			SourceAddress: req.S3Address,
			OutputBucket:  req.OutputBucket,
		})
		if err != nil {
			var verr *service.ValidationError
			if errors.As(err, &verr) {
				response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", verr.Reason,
					map[string]string{"field": verr.Field})
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Error starting transcription", nil)
			return
		}

		response.Created(w, submitResponse{
			Message:      "Transcription started",
			JobID:        result.JobID.String(),
			ExecutionRef: result.ExecutionRef,
		})
	}
}
