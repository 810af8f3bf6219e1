// Package main is the entrypoint for the scribepipe API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kiranshivaraju/scribepipe/internal/api"
	"github.com/kiranshivaraju/scribepipe/internal/api/handler"
	mw "github.com/kiranshivaraju/scribepipe/internal/api/middleware"
	"github.com/kiranshivaraju/scribepipe/internal/api/response"
	"github.com/kiranshivaraju/scribepipe/internal/cache"
	"github.com/kiranshivaraju/scribepipe/internal/config"
	"github.com/kiranshivaraju/scribepipe/internal/service"
	"github.com/kiranshivaraju/scribepipe/internal/store"
	"github.com/kiranshivaraju/scribepipe/internal/workflow"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config — fail fast on invalid config
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "env", cfg.Server.Env, "job_subject", cfg.NATS.JobSubject)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. Connect to NATS and wire the workflow engine
	bus, err := workflow.Connect(cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("connect nats: %w", err)
	}
	defer bus.Close()
	slog.Info("nats connected")

	engine := workflow.NewNATSEngine(bus, cfg.NATS.JobSubject)

	// 6. Create store and services
	pgStore := store.NewPostgresStore(pool)
	submitter := service.NewSubmitter(pgStore, engine)
	updater := service.NewStatusUpdater(pgStore, redisCache)
	querier := service.NewQuerier(pgStore, redisCache)

	// 7. Consume worker outcomes so jobs reach a terminal status even when
	// no one calls the status endpoint
	outcomeSub, err := bus.SubscribeOutcomes(cfg.NATS.OutcomeSubject, updater.ApplyOutcome)
	if err != nil {
		return fmt.Errorf("subscribe outcomes: %w", err)
	}
	defer outcomeSub.Unsubscribe()

	// 8. Build router with dependencies
	deps := api.Dependencies{
		RateLimit: mw.NewRateLimit(redisCache, 60),

		HealthHandler:       healthHandler(pgStore, redisCache),
		SubmitHandler:       handler.NewSubmitHandler(submitter),
		ListJobsHandler:     handler.NewListJobsHandler(querier),
		GetJobHandler:       handler.NewGetJobHandler(querier),
		JobStatusHandler:    handler.NewJobStatusHandler(querier),
		UpdateStatusHandler: handler.NewUpdateStatusHandler(updater),
	}

	router := api.NewRouter(deps)

	// 9. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// healthHandler checks database and cache connectivity.
func healthHandler(s store.Store, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": "ok",
			"cache":    "ok",
		}

		if err := s.Ping(r.Context()); err != nil {
			checks["database"] = "degraded"
		}
		if err := c.Ping(r.Context()); err != nil {
			checks["cache"] = "degraded"
		}

		degraded := checks["database"] != "ok" || checks["cache"] != "ok"
		if degraded {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}
