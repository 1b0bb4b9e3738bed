package scheduler

import (
	"context"
	"time"

	"trashtrack_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	defaultSweepInterval = 10 * time.Minute
	defaultScoringGrace  = 5 * time.Minute
	sweepBatchSize       = 100
	maxSweepAttempts     = 5
)

// UnscoredReportClaimer hands out photo reports that still have no score,
// least recently swept first, and records each hand-out as an attempt.
type UnscoredReportClaimer interface {
	ClaimUnscoredForSweep(ctx context.Context, createdBefore time.Time, limit, maxAttempts int) ([]uuid.UUID, error)
}

// ScoringEnqueuer schedules a scoring task.
type ScoringEnqueuer interface {
	EnqueueReportScoring(ctx context.Context, reportID uuid.UUID) error
}

// ScoringSweeper periodically re-enqueues reports whose scoring task was lost,
// for example when Redis was down at submission time.
type ScoringSweeper struct {
	lister      UnscoredReportClaimer
	queue       ScoringEnqueuer
	log         *logger.Logger
	interval    time.Duration
	grace       time.Duration
	batch       int
	maxAttempts int
	now         func() time.Time
}

func NewScoringSweeper(lister UnscoredReportClaimer, queue ScoringEnqueuer, log *logger.Logger, interval, grace time.Duration) *ScoringSweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	if grace <= 0 {
		grace = defaultScoringGrace
	}

	return &ScoringSweeper{
		lister:      lister,
		queue:       queue,
		log:         log,
		interval:    interval,
		grace:       grace,
		batch:       sweepBatchSize,
		maxAttempts: maxSweepAttempts,
		now:         time.Now,
	}
}

func (s *ScoringSweeper) Run(ctx context.Context) {
	if s == nil || s.lister == nil || s.queue == nil {
		return
	}

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *ScoringSweeper) sweep(ctx context.Context) {
	ids, err := s.lister.ClaimUnscoredForSweep(ctx, s.now().Add(-s.grace), s.batch, s.maxAttempts)
	if err != nil {
		s.log.Warn("scoring sweep failed", "error", err)
		return
	}

	enqueued := 0
	for _, id := range ids {
		if err := s.queue.EnqueueReportScoring(ctx, id); err != nil {
			s.log.Warn("scoring sweep enqueue failed", "reportId", id, "error", err)
			continue
		}
		enqueued++
	}

	if enqueued > 0 {
		s.log.Info("scoring sweep re-enqueued reports", "count", enqueued)
	}
}
