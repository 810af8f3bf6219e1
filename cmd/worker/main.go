// Package main is the entrypoint for the transcription worker.
//
// With three positional arguments it runs a single job and prints the
// outcome as JSON:
//
//	worker s3://bucket/video.mp4 output-bucket <job-id>
//
// With no arguments it joins the worker queue group and processes jobs from
// the bus until interrupted.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/kiranshivaraju/scribepipe/internal/blob"
	"github.com/kiranshivaraju/scribepipe/internal/config"
	"github.com/kiranshivaraju/scribepipe/internal/media"
	"github.com/kiranshivaraju/scribepipe/internal/transcribe"
	"github.com/kiranshivaraju/scribepipe/internal/worker"
	"github.com/kiranshivaraju/scribepipe/internal/workflow"
	"github.com/kiranshivaraju/scribepipe/pkg/schema"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(os.Args[1:]); err != nil {
		slog.Error("worker failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	_ = godotenv.Load()
	cfg, err := config.LoadWorker()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	step, err := buildStep(ctx, cfg)
	if err != nil {
		return err
	}

	switch len(args) {
	case 0:
		return listen(ctx, cfg, step)
	case 3:
		return runOnce(ctx, step, worker.Input{
			SourceAddress: args[0],
			OutputBucket:  args[1],
			JobID:         args[2],
		})
	default:
		return fmt.Errorf("usage: worker [input_address output_bucket job_id]")
	}
}

func buildStep(ctx context.Context, cfg *config.WorkerConfig) (*worker.Step, error) {
	blobs, err := blob.NewS3Store(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("create s3 store: %w", err)
	}
	return &worker.Step{
		Blobs:       blobs,
		Extractor:   media.NewExtractor(cfg.FFmpegPath),
		Transcriber: transcribe.NewWhisperCLI(cfg.Whisper),
		WorkDir:     cfg.WorkDir,
	}, nil
}

// runOnce processes one job and reports its outcome on stdout. The exit code
// mirrors the outcome status so shell callers can branch on it.
func runOnce(ctx context.Context, step *worker.Step, in worker.Input) error {
	outcome := step.Run(ctx, in)

	enc := json.NewEncoder(os.Stdout)
	if err := enc.Encode(outcome); err != nil {
		return fmt.Errorf("encode outcome: %w", err)
	}
	if !outcome.Succeeded() {
		return fmt.Errorf("job %s failed: %s", in.JobID, outcome.Error)
	}
	return nil
}

// listen consumes jobs from the queue group and publishes each outcome back
// to the bus for the server's consumer to apply.
func listen(ctx context.Context, cfg *config.WorkerConfig, step *worker.Step) error {
	bus, err := workflow.Connect(cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("connect nats: %w", err)
	}
	defer bus.Close()

	sub, err := bus.SubscribeJobs(cfg.NATS.JobSubject, cfg.NATS.WorkerQueue, func(ctx context.Context, input schema.ExecutionInput) {
		outcome := step.Run(ctx, worker.Input{
			SourceAddress: input.SourceAddress,
			OutputBucket:  input.OutputBucket,
			JobID:         input.JobID,
		})
		if err := bus.PublishJSON(cfg.NATS.OutcomeSubject, outcome); err != nil {
			slog.Error("publish outcome failed", "job_id", input.JobID, "error", err)
			return
		}
		slog.Info("job finished", "job_id", input.JobID, "status", outcome.Status)
	})
	if err != nil {
		return fmt.Errorf("subscribe jobs: %w", err)
	}
	defer sub.Unsubscribe()

	slog.Info("worker listening",
		"subject", cfg.NATS.JobSubject,
		"queue", cfg.NATS.WorkerQueue,
	)
	<-ctx.Done()
	slog.Info("worker stopping")
	return nil
}
