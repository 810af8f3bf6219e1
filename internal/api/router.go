// Package api assembles the HTTP router for the transcription service.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	mw "github.com/kiranshivaraju/scribepipe/internal/api/middleware"
	"github.com/kiranshivaraju/scribepipe/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	RateLimit *mw.RateLimit

	HealthHandler       http.HandlerFunc
	SubmitHandler       http.HandlerFunc
	ListJobsHandler     http.HandlerFunc
	GetJobHandler       http.HandlerFunc
	JobStatusHandler    http.HandlerFunc
	UpdateStatusHandler http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public health check
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))

	r.Group(func(r chi.Router) {
		if deps.RateLimit != nil {
			r.Use(deps.RateLimit.Limit)
		}

		r.Post("/api/v1/jobs", orNotImplemented(deps.SubmitHandler))
		r.Get("/api/v1/jobs", orNotImplemented(deps.ListJobsHandler))
		r.Get("/api/v1/jobs/{jobID}", orNotImplemented(deps.GetJobHandler))
		r.Get("/api/v1/jobs/{jobID}/status", orNotImplemented(deps.JobStatusHandler))
		r.Post("/api/v1/jobs/{jobID}/status", orNotImplemented(deps.UpdateStatusHandler))
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
