package transport

import (
	"time"

	"github.com/google/uuid"
)

// SubmitReportRequest is the payload of a new incident report.
// Image is the photo encoded as standard base64.
type SubmitReportRequest struct {
	Description string   `json:"description" validate:"max=2000"`
	Location    string   `json:"location" validate:"max=500"`
	Latitude    *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
	GarbageType string   `json:"garbageType" validate:"required,oneof=Hazardous Recyclable General Organic"`
	Image       string   `json:"image,omitempty"`
}

// ListReportsRequest holds list filters from the query string.
type ListReportsRequest struct {
	Window   string `form:"window" validate:"omitempty,oneof=all last-hour last-day last-week"`
	Status   string `form:"status"`
	Severity string `form:"severity"`
	Limit    int    `form:"limit" validate:"omitempty,min=1,max=100"`
}

// TrendsRequest selects the time window for aggregates.
type TrendsRequest struct {
	Window string `form:"window" validate:"omitempty,oneof=all last-hour last-day last-week"`
}

// UpdateStatusRequest changes the dispatch status of a report.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Assigning 'In Progress' Resolved"`
}

// ReportResponse represents a report in API responses.
type ReportResponse struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	GarbageType string    `json:"garbageType"`
	Score       *int      `json:"score,omitempty"`
	Severity    string    `json:"severity"`
	Status      string    `json:"status"`
	HasPhoto    bool      `json:"hasPhoto"`
	PhotoURL    *string   `json:"photoUrl,omitempty"`
}

// ReportListResponse wraps a list of reports.
type ReportListResponse struct {
	Items []ReportResponse `json:"items"`
	Total int              `json:"total"`
}

// TrendsResponse aggregates reports in a window.
type TrendsResponse struct {
	Window      string         `json:"window"`
	Total       int            `json:"total"`
	ByStatus    map[string]int `json:"byStatus"`
	BySeverity  map[string]int `json:"bySeverity"`
	ByGarbage   map[string]int `json:"byGarbageType"`
	GeneratedAt time.Time      `json:"generatedAt"`
}
