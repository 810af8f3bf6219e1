package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/scribepipe/internal/cache"
	"github.com/kiranshivaraju/scribepipe/internal/store"
	"github.com/kiranshivaraju/scribepipe/pkg/models"
)

// Querier serves the read paths: full listing, single record, and the
// cache-first status poll.
type Querier struct {
	store store.Store
	cache cache.Cache
}

func NewQuerier(s store.Store, c cache.Cache) *Querier {
	return &Querier{store: s, cache: c}
}

func (q *Querier) List(ctx context.Context) ([]*models.Job, error) {
	return q.store.ListJobs(ctx)
}

func (q *Querier) Get(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	return q.store.GetJob(ctx, id)
}

// GetStatus answers a status poll from the cache when possible, falling back
// to the store and backfilling the cache on a miss.
func (q *Querier) GetStatus(ctx context.Context, id uuid.UUID) (string, error) {
	status, found, err := q.cache.GetJobStatus(ctx, id)
	if err != nil {
		slog.Warn("status cache read failed", "job_id", id, "error", err)
	}
	if found {
		return status, nil
	}

	job, err := q.store.GetJob(ctx, id)
	if err != nil {
		return "", err
	}
	if err := q.cache.SetJobStatus(ctx, id, job.Status, statusCacheTTL); err != nil {
		slog.Warn("status cache backfill failed", "job_id", id, "error", err)
	}
	return job.Status, nil
}
