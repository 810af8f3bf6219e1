package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kiranshivaraju/scribepipe/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5. The job id is
// the primary key; created_at is an ordinary immutable column rather than
// part of a composite key, so lookups by id are unambiguous.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) CreateJob(ctx context.Context, job *models.Job) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO jobs (id, status, source_address, output_address, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		job.ID, job.Status, job.SourceAddress, job.OutputAddress, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var j models.Job
	err := s.pool.QueryRow(ctx,
		`SELECT id, status, source_address, output_address, error_message, completed_at, created_at, updated_at
		 FROM jobs WHERE id = $1`, id,
	).Scan(&j.ID, &j.Status, &j.SourceAddress, &j.OutputAddress, &j.ErrorMessage,
		&j.CompletedAt, &j.CreatedAt, &j.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &j, nil
}

// UpdateJobStatus moves a job to a terminal status. The guard is a single
// conditional UPDATE keyed on the current status being non-terminal, so
// concurrent duplicate updates (scheduler retries) cannot produce a lost
// update or a terminal-to-terminal overwrite.
func (s *PostgresStore) UpdateJobStatus(ctx context.Context, id uuid.UUID, status string, opts ...JobUpdateOption) error {
	if !models.IsTerminalStatus(status) {
		return fmt.Errorf("status %q is not terminal: %w", status, ErrInvalidTransition)
	}

	patch := NewJobUpdate(opts...)

	now := time.Now().UTC()
	set := []string{"status = $2", "updated_at = $3"}
	args := []any{id, status, now}
	argIdx := 4

	if patch.CompletedAt != nil {
		set = append(set, fmt.Sprintf("completed_at = $%d", argIdx))
		args = append(args, *patch.CompletedAt)
		argIdx++
	}
	if patch.ErrorMessage != nil {
		set = append(set, fmt.Sprintf("error_message = $%d", argIdx))
		args = append(args, *patch.ErrorMessage)
		argIdx++
	}

	query := fmt.Sprintf(
		`UPDATE jobs SET %s WHERE id = $1 AND status IN ('%s', '%s')`,
		strings.Join(set, ", "), models.JobStatusStarted, models.JobStatusRunning)

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// No row matched: the job is either missing or already terminal.
	current, err := s.GetJob(ctx, id)
	if err != nil {
		return err
	}
	if current.Status == status {
		return nil // idempotent repeat
	}
	return fmt.Errorf("job is already %s: %w", current.Status, ErrInvalidTransition)
}

func (s *PostgresStore) DeleteJob(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListJobs(ctx context.Context) ([]*models.Job, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, status, source_address, output_address, error_message, completed_at, created_at, updated_at
		 FROM jobs`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		var j models.Job
		if err := rows.Scan(&j.ID, &j.Status, &j.SourceAddress, &j.OutputAddress,
			&j.ErrorMessage, &j.CompletedAt, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, &j)
	}
	return jobs, rows.Err()
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
