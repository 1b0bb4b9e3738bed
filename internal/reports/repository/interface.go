package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Report is a stored incident report.
type Report struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Latitude    float64
	Longitude   float64
	Location    string
	Description string
	GarbageType string
	ImageKey    *string
	Score       *int
	Status      string
}

// CreateParams contains parameters for inserting a report.
type CreateParams struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Latitude    float64
	Longitude   float64
	Location    string
	Description string
	GarbageType string
	ImageKey    *string
	Status      string
}

// ListParams filters the report list. Empty fields do not filter.
type ListParams struct {
	Since    *time.Time
	Status   string
	Severity string
	Limit    int
}

// Count is one bucket of an aggregate.
type Count struct {
	Key   string
	Count int
}

// ReportReader provides read operations for reports.
type ReportReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (Report, error)
	List(ctx context.Context, params ListParams) ([]Report, error)
	CountByStatus(ctx context.Context, since *time.Time) ([]Count, error)
	CountBySeverity(ctx context.Context, since *time.Time) ([]Count, error)
	CountByGarbageType(ctx context.Context, since *time.Time) ([]Count, error)
}

// ReportWriter provides write operations for reports.
type ReportWriter interface {
	Create(ctx context.Context, params CreateParams) (Report, error)
	ClaimUnscoredForSweep(ctx context.Context, createdBefore time.Time, limit, maxAttempts int) ([]uuid.UUID, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (Report, error)
	UpdateScore(ctx context.Context, id uuid.UUID, score int) (Report, error)
}

// Repository combines all report repository operations.
type Repository interface {
	ReportReader
	ReportWriter
}
