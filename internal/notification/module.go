// Package notification reacts to report events: it emails dispatch about
// high-severity reports and streams report activity to the dashboard.
package notification

import (
	"context"
	"fmt"

	"trashtrack_backend/internal/email"
	"trashtrack_backend/internal/events"
	apphttp "trashtrack_backend/internal/http"
	"trashtrack_backend/internal/notification/sse"
	"trashtrack_backend/platform/httpkit"
	"trashtrack_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AlertConfig provides the alert recipient and score threshold.
type AlertConfig interface {
	GetAlertRecipient() string
	GetAlertScoreThreshold() int
}

// Module handles all notification-related event subscriptions.
type Module struct {
	sender email.Sender
	cfg    AlertConfig
	log    *logger.Logger
	sse    *sse.Service
}

// New creates the notification module.
func New(sender email.Sender, cfg AlertConfig, log *logger.Logger) *Module {
	return &Module{
		sender: sender,
		cfg:    cfg,
		log:    log,
		sse:    sse.New(log),
	}
}

func (m *Module) Name() string { return "notification" }

// SSE exposes the live feed service.
func (m *Module) SSE() *sse.Service { return m.sse }

// RegisterRoutes mounts the live dispatch feed.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/notifications/stream",
		httpkit.RequireRole(httpkit.RoleDriver, httpkit.RoleAdmin),
		m.sse.Handler(userIDFromContext),
	)
}

// RegisterHandlers subscribes the module to report events.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.ReportSubmitted{}.EventName(), m)
	bus.Subscribe(events.ReportStatusChanged{}.EventName(), m)
	bus.Subscribe(events.ReportScored{}.EventName(), m)
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.ReportSubmitted:
		m.sse.Broadcast(sse.Event{Type: sse.EventReportSubmitted, ReportID: e.ReportID, Data: e})
		return nil
	case events.ReportStatusChanged:
		m.sse.Broadcast(sse.Event{Type: sse.EventReportStatusChanged, ReportID: e.ReportID, Message: e.Status})
		return nil
	case events.ReportScored:
		m.sse.Broadcast(sse.Event{Type: sse.EventReportScored, ReportID: e.ReportID, Data: e})
		return m.handleReportScored(ctx, e)
	default:
		return nil
	}
}

func (m *Module) handleReportScored(ctx context.Context, e events.ReportScored) error {
	recipient := m.cfg.GetAlertRecipient()
	if recipient == "" || e.Score < m.cfg.GetAlertScoreThreshold() {
		return nil
	}

	alert := email.HighSeverityAlert{
		ReportID:    e.ReportID.String(),
		Score:       e.Score,
		Severity:    e.Severity,
		Location:    e.Location,
		Latitude:    e.Latitude,
		Longitude:   e.Longitude,
		GarbageType: e.GarbageType,
	}
	if err := m.sender.SendHighSeverityAlert(ctx, recipient, alert); err != nil {
		m.log.Error("failed to send high severity alert", "reportId", e.ReportID, "error", err)
		return fmt.Errorf("send high severity alert: %w", err)
	}
	m.log.ReportEvent("alert_sent", e.ReportID.String(), "score", e.Score)
	return nil
}

func userIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	identity := httpkit.GetIdentity(c)
	if !identity.IsAuthenticated() {
		return uuid.Nil, false
	}
	return identity.UserID(), true
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
