package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"trashtrack_backend/internal/adapters/storage"
	"trashtrack_backend/internal/email"
	"trashtrack_backend/internal/events"
	"trashtrack_backend/internal/notification"
	"trashtrack_backend/internal/places"
	"trashtrack_backend/internal/reports"
	"trashtrack_backend/internal/scheduler"
	"trashtrack_backend/platform/ai/vision"
	"trashtrack_backend/platform/config"
	"trashtrack_backend/platform/db"
	"trashtrack_backend/platform/logger"
	"trashtrack_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)
	defer eventBus.Wait()

	notificationModule := notification.New(email.NewSender(cfg), cfg, log)
	notificationModule.RegisterHandlers(eventBus)
	if !cfg.IsEmailEnabled() {
		log.Warn("SMTP_HOST or ALERT_RECIPIENT not configured; high severity alerts disabled")
	}

	var storageSvc storage.StorageService
	if cfg.IsMinIOEnabled() {
		minioSvc, err := storage.NewMinIOService(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		storageSvc = minioSvc
	}

	var scorer vision.Scorer
	if cfg.IsVisionEnabled() {
		gemini, err := vision.NewGeminiScorer(ctx, cfg)
		if err != nil {
			log.Error("failed to initialize vision scorer", "error", err)
			panic("failed to initialize vision scorer: " + err.Error())
		}
		scorer = gemini
		log.Info("vision scorer initialized", "model", cfg.GetGeminiModel())
	} else {
		log.Warn("GEMINI_API_KEY not configured; reports will stay unscored")
	}

	// Worker-side reports wiring (no HTTP handlers required).
	reportsModule := reports.NewModule(pool, eventBus, cfg, validator.New(), log, reports.Options{
		Storage:  storageSvc,
		Bucket:   cfg.GetMinioBucketReportPhotos(),
		Geocoder: places.NewGoogleClientFromConfig(cfg),
		Scorer:   scorer,
	})

	queue, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer func() { _ = queue.Close() }()

	if scorer != nil {
		sweeper := scheduler.NewScoringSweeper(
			reportsModule.Repository(),
			queue,
			log,
			getDurationEnv("SCORING_SWEEP_INTERVAL", 10*time.Minute),
			getDurationEnv("SCORING_SWEEP_GRACE", 5*time.Minute),
		)
		go sweeper.Run(ctx)
	}

	worker, err := scheduler.NewWorker(cfg, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}
	worker.SetReportScorer(reportsModule.Service())

	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}
