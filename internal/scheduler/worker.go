package scheduler

import (
	"context"
	"errors"
	"fmt"

	"trashtrack_backend/platform/apperr"
	"trashtrack_backend/platform/config"
	"trashtrack_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// ReportScorer scores a stored report photo.
type ReportScorer interface {
	ScoreReport(ctx context.Context, reportID uuid.UUID) error
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	scorer ReportScorer
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		log:    log,
	}

	mux.HandleFunc(TaskScoreReport, w.handleScoreReport)

	return w, nil
}

// SetReportScorer injects the reports service after it has been built.
func (w *Worker) SetReportScorer(scorer ReportScorer) {
	w.scorer = scorer
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleScoreReport(ctx context.Context, task *asynq.Task) error {
	if w.scorer == nil {
		return fmt.Errorf("report scorer not configured")
	}

	payload, err := ParseScoreReportPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	reportID, err := payload.reportID()
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	if err := w.scorer.ScoreReport(ctx, reportID); err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) && appErr.Kind == apperr.KindNotFound {
			w.log.Warn("report vanished before scoring", "reportId", reportID)
			return nil
		}
		return err
	}
	return nil
}
