// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"github.com/google/uuid"

	"trashtrack_backend/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var (
	NewBaseEvent   = events.NewBaseEvent
	NewBaseEventAt = events.NewBaseEventAt
)

// =============================================================================
// Reports Domain Events
// =============================================================================

// ReportSubmitted is published after a report row has been stored.
type ReportSubmitted struct {
	BaseEvent
	ReportID    uuid.UUID `json:"reportId"`
	UserID      uuid.UUID `json:"userId"`
	GarbageType string    `json:"garbageType"`
	HasPhoto    bool      `json:"hasPhoto"`
}

func (e ReportSubmitted) EventName() string { return "reports.report.submitted" }

// ReportScored is published when the vision model has scored a report photo.
type ReportScored struct {
	BaseEvent
	ReportID    uuid.UUID `json:"reportId"`
	Score       int       `json:"score"`
	Severity    string    `json:"severity"`
	Location    string    `json:"location"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	GarbageType string    `json:"garbageType"`
}

func (e ReportScored) EventName() string { return "reports.report.scored" }

// ReportStatusChanged is published when dispatch moves a report to a new status.
type ReportStatusChanged struct {
	BaseEvent
	ReportID uuid.UUID `json:"reportId"`
	Status   string    `json:"status"`
}

func (e ReportStatusChanged) EventName() string { return "reports.report.status_changed" }
