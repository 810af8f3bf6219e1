package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kiranshivaraju/scribepipe/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_RoutesToHandlers(t *testing.T) {
	called := map[string]bool{}
	mark := func(name string) http.HandlerFunc {
		return func(w http.ResponseWriter, _ *http.Request) {
			called[name] = true
			w.WriteHeader(http.StatusOK)
		}
	}

	router := api.NewRouter(api.Dependencies{
		HealthHandler:       mark("health"),
		SubmitHandler:       mark("submit"),
		ListJobsHandler:     mark("list"),
		GetJobHandler:       mark("get"),
		JobStatusHandler:    mark("status"),
		UpdateStatusHandler: mark("update"),
	})

	jobPath := "/api/v1/jobs/dddddddd-dddd-dddd-dddd-dddddddddddd"
	requests := []struct {
		method, path, name string
	}{
		{http.MethodGet, "/api/v1/health", "health"},
		{http.MethodPost, "/api/v1/jobs", "submit"},
		{http.MethodGet, "/api/v1/jobs", "list"},
		{http.MethodGet, jobPath, "get"},
		{http.MethodGet, jobPath + "/status", "status"},
		{http.MethodPost, jobPath + "/status", "update"},
	}
	for _, rq := range requests {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(rq.method, rq.path, nil))
		assert.Equal(t, http.StatusOK, w.Code, "%s %s", rq.method, rq.path)
		assert.True(t, called[rq.name], "%s %s did not reach its handler", rq.method, rq.path)
	}
}

func TestRouter_MissingHandlerIs501(t *testing.T) {
	router := api.NewRouter(api.Dependencies{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/jobs", nil))

	assert.Equal(t, http.StatusNotImplemented, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "NOT_IMPLEMENTED", errObj["code"])
}

func TestRouter_UnknownRouteIs404(t *testing.T) {
	router := api.NewRouter(api.Dependencies{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
