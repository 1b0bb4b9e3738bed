package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"trashtrack_backend/internal/reports/domain"
	"trashtrack_backend/platform/apperr"
)

const reportNotFoundMessage = "report not found"

const reportColumns = `id, user_id, created_at, updated_at, latitude, longitude, location, description,
	garbage_type, image_key, score, status`

const severityCase = `CASE
		WHEN score IS NULL THEN 'Unscored'
		WHEN score >= 70 THEN 'High'
		WHEN score >= 40 THEN 'Medium'
		ELSE 'Low'
	END`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new reports repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// GetByID retrieves a report by its ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = $1`

	report, err := scanReport(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Report{}, apperr.NotFound(reportNotFoundMessage)
		}
		return Report{}, fmt.Errorf("get report by id: %w", err)
	}
	return report, nil
}

// List retrieves reports newest first.
func (r *Repo) List(ctx context.Context, params ListParams) ([]Report, error) {
	where, args := buildFilters(params.Since, params.Status, params.Severity)

	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)

	query := `SELECT ` + reportColumns + ` FROM reports` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	reports := make([]Report, 0)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return reports, nil
}

// CountByStatus counts reports per status.
func (r *Repo) CountByStatus(ctx context.Context, since *time.Time) ([]Count, error) {
	return r.countBy(ctx, "status", since)
}

// CountBySeverity counts reports per severity bucket.
func (r *Repo) CountBySeverity(ctx context.Context, since *time.Time) ([]Count, error) {
	return r.countBy(ctx, severityCase, since)
}

// CountByGarbageType counts reports per garbage type.
func (r *Repo) CountByGarbageType(ctx context.Context, since *time.Time) ([]Count, error) {
	return r.countBy(ctx, "garbage_type", since)
}

// claimUnscoredQuery picks photo reports without a score, least recently
// swept first, and stamps the attempt so the next sweep rotates past them.
// Reports that hit the attempt cap are left alone.
const claimUnscoredQuery = `
	WITH due AS (
		SELECT id FROM reports
		WHERE image_key IS NOT NULL AND score IS NULL
			AND created_at < $1 AND sweep_attempts < $3
		ORDER BY last_swept_at ASC NULLS FIRST, created_at ASC
		LIMIT $2
		FOR UPDATE SKIP LOCKED
	)
	UPDATE reports r
	SET sweep_attempts = r.sweep_attempts + 1, last_swept_at = now()
	FROM due
	WHERE r.id = due.id
	RETURNING r.id`

// ClaimUnscoredForSweep returns up to limit report IDs to re-enqueue for
// scoring and records the sweep attempt on each.
func (r *Repo) ClaimUnscoredForSweep(ctx context.Context, createdBefore time.Time, limit, maxAttempts int) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, claimUnscoredQuery, createdBefore, limit, maxAttempts)
	if err != nil {
		return nil, fmt.Errorf("claim unscored reports: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("collect unscored reports: %w", err)
	}
	return ids, nil
}

// Create inserts a new report.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Report, error) {
	query := `
		INSERT INTO reports (id, user_id, latitude, longitude, location, description, garbage_type, image_key, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + reportColumns

	report, err := scanReport(r.pool.QueryRow(ctx, query,
		params.ID, params.UserID, params.Latitude, params.Longitude, params.Location,
		params.Description, params.GarbageType, params.ImageKey, params.Status,
	))
	if err != nil {
		return Report{}, fmt.Errorf("create report: %w", err)
	}
	return report, nil
}

// UpdateStatus sets the dispatch status of a report.
func (r *Repo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (Report, error) {
	query := `
		UPDATE reports SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + reportColumns

	report, err := scanReport(r.pool.QueryRow(ctx, query, id, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Report{}, apperr.NotFound(reportNotFoundMessage)
		}
		return Report{}, fmt.Errorf("update report status: %w", err)
	}
	return report, nil
}

// UpdateScore stores the cleanliness score of a report.
func (r *Repo) UpdateScore(ctx context.Context, id uuid.UUID, score int) (Report, error) {
	query := `
		UPDATE reports SET score = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + reportColumns

	report, err := scanReport(r.pool.QueryRow(ctx, query, id, score))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Report{}, apperr.NotFound(reportNotFoundMessage)
		}
		return Report{}, fmt.Errorf("update report score: %w", err)
	}
	return report, nil
}

func (r *Repo) countBy(ctx context.Context, keyExpr string, since *time.Time) ([]Count, error) {
	where, args := buildFilters(since, "", "")
	query := `SELECT ` + keyExpr + ` AS key, COUNT(*) FROM reports` + where + ` GROUP BY 1 ORDER BY 1`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count reports: %w", err)
	}
	defer rows.Close()

	counts := make([]Count, 0)
	for rows.Next() {
		var c Count
		if err := rows.Scan(&c.Key, &c.Count); err != nil {
			return nil, fmt.Errorf("scan report count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate report counts: %w", err)
	}
	return counts, nil
}

// buildFilters returns a WHERE clause with positional args for the shared filters.
func buildFilters(since *time.Time, status, severity string) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if since != nil {
		args = append(args, *since)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if status != "" {
		args = append(args, status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	switch severity {
	case domain.SeverityHigh:
		clauses = append(clauses, fmt.Sprintf("score >= %d", domain.HighSeverityMinScore))
	case domain.SeverityMedium:
		clauses = append(clauses, fmt.Sprintf("score >= %d AND score < %d", domain.MediumSeverityMinScore, domain.HighSeverityMinScore))
	case domain.SeverityLow:
		clauses = append(clauses, fmt.Sprintf("score < %d", domain.MediumSeverityMinScore))
	case domain.SeverityUnscored:
		clauses = append(clauses, "score IS NULL")
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanReport(row pgx.Row) (Report, error) {
	var report Report
	err := row.Scan(
		&report.ID, &report.UserID, &report.CreatedAt, &report.UpdatedAt, &report.Latitude, &report.Longitude,
		&report.Location, &report.Description, &report.GarbageType, &report.ImageKey, &report.Score, &report.Status,
	)
	return report, err
}
