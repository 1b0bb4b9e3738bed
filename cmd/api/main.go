package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trashtrack_backend/internal/adapters/storage"
	"trashtrack_backend/internal/email"
	"trashtrack_backend/internal/events"
	apphttp "trashtrack_backend/internal/http"
	"trashtrack_backend/internal/http/router"
	"trashtrack_backend/internal/maps"
	"trashtrack_backend/internal/notification"
	"trashtrack_backend/internal/places"
	"trashtrack_backend/internal/reports"
	"trashtrack_backend/internal/scheduler"
	"trashtrack_backend/platform/config"
	"trashtrack_backend/platform/db"
	"trashtrack_backend/platform/logger"
	"trashtrack_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

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
	log.Info("database connection established")

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, pool)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	health := []apphttp.HealthChecker{db.NewPoolAdapter(pool)}

	scoringQueue, closeQueue := initScoringQueue(cfg, log)
	if closeQueue != nil {
		defer closeQueue()
	}
	if cfg.GetRedisURL() != "" {
		redisHealth, err := scheduler.NewRedisHealth(cfg)
		if err != nil {
			log.Error("failed to initialize redis health check", "error", err)
		} else {
			defer func() { _ = redisHealth.Close() }()
			health = append(health, redisHealth)
		}
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// Storage service for report photos (MinIO)
	var storageSvc storage.StorageService
	if cfg.IsMinIOEnabled() {
		minioSvc, err := storage.NewMinIOService(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		ensureBucket(ctx, log, minioSvc, "report-photos", cfg.GetMinioBucketReportPhotos())
		storageSvc = minioSvc
		log.Info("storage service initialized", "reportPhotosBucket", cfg.GetMinioBucketReportPhotos())
	} else {
		log.Warn("MINIO_ENDPOINT not configured; report photos disabled")
	}

	placesClient := places.NewGoogleClientFromConfig(cfg)
	if cfg.GetGoogleMapsAPIKey() == "" {
		log.Warn("GOOGLE_MAPS_API_KEY not configured; place lookups will fail")
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// Notification module pushes live report activity to the dashboard.
	// Alert emails are sent by the scheduler process, where reports are scored.
	notificationModule := notification.New(email.NoopSender{}, cfg, log)
	notificationModule.RegisterHandlers(eventBus)
	defer notificationModule.SSE().Close()

	reportsModule := reports.NewModule(pool, eventBus, cfg, val, log, reports.Options{
		Storage:  storageSvc,
		Bucket:   cfg.GetMinioBucketReportPhotos(),
		Geocoder: placesClient,
		Queue:    scoringQueue,
	})
	reportsModule.RegisterHandlers(eventBus)

	mapsModule := maps.NewModule(placesClient, val, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   health,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			mapsModule,
			reportsModule,
			notificationModule,
		},
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		notificationModule.SSE().Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		panic("server error: " + err.Error())
	}
	eventBus.Wait()
	log.Info("server stopped")
}

// ensureBucket wraps the retry logic for verifying a MinIO bucket exists.
func ensureBucket(ctx context.Context, log *logger.Logger, storageSvc storage.StorageService, name, bucket string) {
	if err := withRetry(ctx, log, "ensure "+name+" bucket", 5, 2*time.Second, func() error {
		return storageSvc.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", bucket)
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
}

func initScoringQueue(cfg config.SchedulerConfig, log *logger.Logger) (reports.ScoringQueue, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; report scoring disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
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
