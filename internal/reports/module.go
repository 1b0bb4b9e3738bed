// Package reports provides the incident reports bounded context module.
// Citizens submit geotagged trash reports; drivers and admins dispatch them.
package reports

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"trashtrack_backend/internal/adapters/storage"
	"trashtrack_backend/internal/events"
	apphttp "trashtrack_backend/internal/http"
	"trashtrack_backend/internal/places"
	"trashtrack_backend/internal/reports/handler"
	"trashtrack_backend/internal/reports/repository"
	"trashtrack_backend/internal/reports/service"
	"trashtrack_backend/platform/ai/vision"
	"trashtrack_backend/platform/config"
	"trashtrack_backend/platform/httpkit"
	"trashtrack_backend/platform/logger"
	"trashtrack_backend/platform/validator"
)

// ScoringQueue schedules background scoring of a report photo.
type ScoringQueue interface {
	EnqueueReportScoring(ctx context.Context, reportID uuid.UUID) error
}

// Options carries the optional collaborators of the module.
type Options struct {
	Storage  storage.StorageService
	Bucket   string
	Geocoder places.Geocoder
	Scorer   vision.Scorer
	Queue    ScoringQueue
}

// Module is the reports bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
	queue   ScoringQueue
	log     *logger.Logger
}

// NewModule creates and initializes the reports module with all its dependencies.
func NewModule(pool *pgxpool.Pool, bus events.Bus, cfg config.ReportsConfig, val *validator.Validator, log *logger.Logger, opts Options) *Module {
	repo := repository.New(pool)
	svc := service.New(service.Deps{
		Repo:     repo,
		Storage:  opts.Storage,
		Bucket:   opts.Bucket,
		Geocoder: opts.Geocoder,
		Scorer:   opts.Scorer,
		Bus:      bus,
		Config:   cfg,
		Log:      log,
	})

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		repo:    repo,
		queue:   opts.Queue,
		log:     log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "reports"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for direct access if needed.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts report routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/reports")
	group.POST("", httpkit.RequireRole(httpkit.RoleCitizen, httpkit.RoleDriver, httpkit.RoleAdmin), m.handler.Submit)
	group.GET("/:id", m.handler.GetByID)

	dispatch := group.Group("", httpkit.RequireRole(httpkit.RoleDriver, httpkit.RoleAdmin))
	dispatch.GET("", m.handler.List)
	dispatch.GET("/trends", m.handler.Trends)
	dispatch.PATCH("/:id/status", m.handler.UpdateStatus)
}

// RegisterHandlers subscribes to report events.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.ReportSubmitted{}.EventName(), m)
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.ReportSubmitted:
		return m.enqueueScoring(ctx, e)
	default:
		return nil
	}
}

// enqueueScoring is best-effort: a report stays unscored if the queue is down.
func (m *Module) enqueueScoring(ctx context.Context, e events.ReportSubmitted) error {
	if !e.HasPhoto || m.queue == nil {
		return nil
	}
	if err := m.queue.EnqueueReportScoring(ctx, e.ReportID); err != nil {
		m.log.Error("failed to enqueue report scoring", "reportId", e.ReportID, "error", err)
		return nil
	}
	m.log.ReportEvent("scoring_enqueued", e.ReportID.String())
	return nil
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
