package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/scribepipe/pkg/schema"
	"github.com/nats-io/nats.go"
)

// Engine starts one asynchronous execution per submitted job and returns an
// opaque execution reference for the caller to record.
type Engine interface {
	StartExecution(ctx context.Context, input schema.ExecutionInput) (string, error)
}

// NATSEngine implements Engine by publishing the execution input to a job
// subject consumed by worker queue subscribers.
type NATSEngine struct {
	bus     *Bus
	subject string
}

func NewNATSEngine(bus *Bus, subject string) *NATSEngine {
	return &NATSEngine{bus: bus, subject: subject}
}

func (e *NATSEngine) StartExecution(_ context.Context, input schema.ExecutionInput) (string, error) {
	if err := e.bus.PublishJSON(e.subject, input); err != nil {
		return "", fmt.Errorf("publish execution: %w", err)
	}
	return ExecutionRef(e.subject, uuid.NewString()), nil
}

// ExecutionRef formats the reference returned to submitters.
func ExecutionRef(subject, executionID string) string {
	return fmt.Sprintf("nats://%s/%s", subject, executionID)
}

// SubscribeJobs attaches a worker to the job subject with a queue group so
// each job is delivered to exactly one worker.
func (b *Bus) SubscribeJobs(subject, queue string, handler func(ctx context.Context, input schema.ExecutionInput)) (*nats.Subscription, error) {
	return b.subscribe(subject, queue, func(msg *nats.Msg) {
		var input schema.ExecutionInput
		if err := json.Unmarshal(msg.Data, &input); err != nil {
			slog.Error("discarding malformed job message", "subject", subject, "error", err)
			return
		}
		handler(context.Background(), input)
	})
}

// SubscribeOutcomes attaches the server-side consumer that applies worker
// outcomes to job records. Handler errors are logged, not retried here; the
// status store guard keeps duplicate deliveries harmless.
func (b *Bus) SubscribeOutcomes(subject string, handler func(ctx context.Context, outcome schema.JobOutcome) error) (*nats.Subscription, error) {
	return b.subscribe(subject, "", func(msg *nats.Msg) {
		var outcome schema.JobOutcome
		if err := json.Unmarshal(msg.Data, &outcome); err != nil {
			slog.Error("discarding malformed outcome message", "subject", subject, "error", err)
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := handler(ctx, outcome); err != nil {
			slog.Error("apply outcome failed", "job_id", outcome.JobID, "status", outcome.Status, "error", err)
		}
	})
}
