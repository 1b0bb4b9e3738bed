// Package service contains the reports business logic: submission, dispatch
// listing, status changes, trend aggregates and photo scoring.
package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/sync/errgroup"

	"trashtrack_backend/internal/adapters/storage"
	"trashtrack_backend/internal/events"
	"trashtrack_backend/internal/places"
	"trashtrack_backend/internal/reports/domain"
	"trashtrack_backend/internal/reports/repository"
	"trashtrack_backend/internal/reports/transport"
	"trashtrack_backend/platform/ai/vision"
	"trashtrack_backend/platform/apperr"
	"trashtrack_backend/platform/config"
	"trashtrack_backend/platform/logger"
	"trashtrack_backend/platform/sanitize"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100

	defaultSubmitTimeout = 30 * time.Second
	photoFolder          = "reports"
)

// Service provides business logic for reports.
type Service struct {
	repo     repository.Repository
	storage  storage.StorageService
	bucket   string
	geocoder places.Geocoder
	scorer   vision.Scorer
	bus      events.Bus
	cfg      config.ReportsConfig
	log      *logger.Logger
	now      func() time.Time
}

// Deps bundles the collaborators of the reports service. Storage, Geocoder
// and Scorer are optional.
type Deps struct {
	Repo     repository.Repository
	Storage  storage.StorageService
	Bucket   string
	Geocoder places.Geocoder
	Scorer   vision.Scorer
	Bus      events.Bus
	Config   config.ReportsConfig
	Log      *logger.Logger
}

// New creates a new reports service.
func New(deps Deps) *Service {
	log := deps.Log
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		repo:     deps.Repo,
		storage:  deps.Storage,
		bucket:   deps.Bucket,
		geocoder: deps.Geocoder,
		scorer:   deps.Scorer,
		bus:      deps.Bus,
		cfg:      deps.Config,
		log:      log,
		now:      time.Now,
	}
}

// Submit validates and stores a new report for userID.
func (s *Service) Submit(ctx context.Context, userID uuid.UUID, req transport.SubmitReportRequest) (transport.ReportResponse, error) {
	timeout := s.cfg.GetReportSubmitTimeout()
	if timeout <= 0 {
		timeout = defaultSubmitTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	garbageType, ok := domain.NormalizeGarbageType(req.GarbageType)
	if !ok {
		return transport.ReportResponse{}, apperr.Validation("unknown garbage type")
	}

	photo, err := s.decodePhoto(req.Image)
	if err != nil {
		return transport.ReportResponse{}, err
	}

	lat, lon, err := resolveCoordinates(req, photo)
	if err != nil {
		return transport.ReportResponse{}, err
	}

	description := sanitize.Text(req.Description)
	location := sanitize.Text(req.Location)
	if location == "" {
		location = s.lookupAddress(ctx, lat, lon)
	}

	reportID := uuid.New()
	var imageKey *string
	if photo != nil {
		if s.storage == nil {
			return transport.ReportResponse{}, apperr.Unavailable("photo storage is not configured", nil)
		}
		key, err := s.storage.UploadFile(ctx, s.bucket, fmt.Sprintf("%s/%s", photoFolder, userID), "photo"+photo.ext,
			photo.contentType, bytes.NewReader(photo.data), int64(len(photo.data)))
		if err != nil {
			return transport.ReportResponse{}, apperr.Unavailable("failed to store photo", err)
		}
		imageKey = &key
	}

	report, err := s.repo.Create(ctx, repository.CreateParams{
		ID:          reportID,
		UserID:      userID,
		Latitude:    lat,
		Longitude:   lon,
		Location:    location,
		Description: description,
		GarbageType: garbageType,
		ImageKey:    imageKey,
		Status:      domain.StatusAssigning,
	})
	if err != nil {
		if imageKey != nil {
			if delErr := s.storage.DeleteObject(context.WithoutCancel(ctx), s.bucket, *imageKey); delErr != nil {
				s.log.Error("failed to remove orphaned report photo", "key", *imageKey, "error", delErr)
			}
		}
		return transport.ReportResponse{}, err
	}

	s.log.ReportEvent("submitted", report.ID.String(), "garbageType", garbageType, "hasPhoto", imageKey != nil)
	if s.bus != nil {
		s.bus.Publish(ctx, events.ReportSubmitted{
			BaseEvent:   events.NewBaseEventAt(s.now()),
			ReportID:    report.ID,
			UserID:      userID,
			GarbageType: garbageType,
			HasPhoto:    imageKey != nil,
		})
	}

	return toResponse(report, nil), nil
}

// GetByID returns a report with a presigned photo URL when one is stored.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.ReportResponse, error) {
	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ReportResponse{}, err
	}

	var photoURL *string
	if report.ImageKey != nil && s.storage != nil {
		presigned, err := s.storage.GenerateDownloadURL(ctx, s.bucket, *report.ImageKey)
		if err != nil {
			s.log.Warn("failed to presign report photo", "reportId", id, "error", err)
		} else {
			photoURL = &presigned.URL
		}
	}
	return toResponse(report, photoURL), nil
}

// List returns reports matching the filters, newest first.
func (s *Service) List(ctx context.Context, req transport.ListReportsRequest) (transport.ReportListResponse, error) {
	since, ok := domain.WindowStart(req.Window, s.now())
	if !ok {
		return transport.ReportListResponse{}, apperr.Validation("unknown window")
	}

	params := repository.ListParams{Since: since, Limit: clampLimit(req.Limit)}
	if req.Status != "" {
		status, ok := domain.NormalizeStatus(req.Status)
		if !ok {
			return transport.ReportListResponse{}, apperr.Validation("unknown status")
		}
		params.Status = status
	}
	if req.Severity != "" {
		severity, ok := domain.NormalizeSeverity(req.Severity)
		if !ok {
			return transport.ReportListResponse{}, apperr.Validation("unknown severity")
		}
		params.Severity = severity
	}

	reports, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.ReportListResponse{}, err
	}

	items := make([]transport.ReportResponse, 0, len(reports))
	for _, r := range reports {
		items = append(items, toResponse(r, nil))
	}
	return transport.ReportListResponse{Items: items, Total: len(items)}, nil
}

// UpdateStatus moves a report through the dispatch workflow.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, req transport.UpdateStatusRequest) (transport.ReportResponse, error) {
	status, ok := domain.NormalizeStatus(req.Status)
	if !ok {
		return transport.ReportResponse{}, apperr.Validation("unknown status")
	}

	report, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return transport.ReportResponse{}, err
	}
	s.log.ReportEvent("status_changed", id.String(), "status", status)
	if s.bus != nil {
		s.bus.Publish(ctx, events.ReportStatusChanged{
			BaseEvent: events.NewBaseEventAt(s.now()),
			ReportID:  report.ID,
			Status:    report.Status,
		})
	}
	return toResponse(report, nil), nil
}

// Trends aggregates reports in the window by status, severity and garbage type.
func (s *Service) Trends(ctx context.Context, window string) (transport.TrendsResponse, error) {
	if window == "" {
		window = domain.WindowAll
	}
	now := s.now()
	since, ok := domain.WindowStart(window, now)
	if !ok {
		return transport.TrendsResponse{}, apperr.Validation("unknown window")
	}

	var byStatus, bySeverity, byGarbage []repository.Count
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		byStatus, err = s.repo.CountByStatus(gctx, since)
		return err
	})
	g.Go(func() error {
		var err error
		bySeverity, err = s.repo.CountBySeverity(gctx, since)
		return err
	})
	g.Go(func() error {
		var err error
		byGarbage, err = s.repo.CountByGarbageType(gctx, since)
		return err
	})
	if err := g.Wait(); err != nil {
		return transport.TrendsResponse{}, err
	}

	resp := transport.TrendsResponse{
		Window:      window,
		ByStatus:    countMap(domain.Statuses, byStatus),
		BySeverity:  countMap(domain.Severities, bySeverity),
		ByGarbage:   countMap(domain.GarbageTypes, byGarbage),
		GeneratedAt: now,
	}
	for _, c := range byStatus {
		resp.Total += c.Count
	}
	return resp, nil
}

// ScoreReport rates the stored photo of a report and persists the score.
// Reports without a photo are skipped.
func (s *Service) ScoreReport(ctx context.Context, id uuid.UUID) error {
	if s.scorer == nil {
		s.log.Debug("vision scoring disabled, skipping", "reportId", id)
		return nil
	}

	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if report.ImageKey == nil {
		s.log.ReportEvent("score_skipped", id.String(), "reason", "no photo")
		return nil
	}
	if s.storage == nil {
		return fmt.Errorf("score report %s: photo storage is not configured", id)
	}

	reader, err := s.storage.DownloadFile(ctx, s.bucket, *report.ImageKey)
	if err != nil {
		return fmt.Errorf("download report photo: %w", err)
	}
	defer func() {
		_ = reader.Close()
	}()

	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("read report photo: %w", err)
	}
	contentType, _, err := storage.DetectImageContentType(data)
	if err != nil {
		return fmt.Errorf("stored photo for report %s: %w", id, err)
	}

	score, err := s.scorer.Score(ctx, data, contentType)
	if err != nil {
		return fmt.Errorf("score report photo: %w", err)
	}

	updated, err := s.repo.UpdateScore(ctx, id, score)
	if err != nil {
		return err
	}

	severity := domain.SeverityFor(updated.Score)
	s.log.ReportEvent("scored", id.String(), "score", score, "severity", severity)
	if s.bus != nil {
		s.bus.Publish(ctx, events.ReportScored{
			BaseEvent:   events.NewBaseEventAt(s.now()),
			ReportID:    updated.ID,
			Score:       score,
			Severity:    severity,
			Location:    updated.Location,
			Latitude:    updated.Latitude,
			Longitude:   updated.Longitude,
			GarbageType: updated.GarbageType,
		})
	}
	return nil
}

type decodedPhoto struct {
	data        []byte
	contentType string
	ext         string
}

// decodePhoto returns nil when no image was sent.
func (s *Service) decodePhoto(encoded string) (*decodedPhoto, error) {
	if encoded == "" {
		return nil, nil
	}

	maxBytes := s.cfg.GetReportMaxImageBytes()
	if maxBytes > 0 && int64(base64.StdEncoding.DecodedLen(len(encoded))) > maxBytes+2 {
		return nil, apperr.TooLarge(fmt.Sprintf("image exceeds %d bytes", maxBytes))
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, apperr.BadRequest("image is not valid base64")
	}
	if len(data) == 0 {
		return nil, apperr.BadRequest("image is empty")
	}
	if maxBytes > 0 {
		if err := storage.ValidateFileSize(int64(len(data)), maxBytes); err != nil {
			return nil, apperr.TooLarge(err.Error())
		}
	}

	contentType, ext, err := storage.DetectImageContentType(data)
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}
	return &decodedPhoto{data: data, contentType: contentType, ext: ext}, nil
}

// resolveCoordinates prefers explicit coordinates and falls back to EXIF GPS.
func resolveCoordinates(req transport.SubmitReportRequest, photo *decodedPhoto) (float64, float64, error) {
	if req.Latitude != nil && req.Longitude != nil {
		return *req.Latitude, *req.Longitude, nil
	}
	if photo != nil {
		if lat, lon, ok := exifLocation(photo.data); ok {
			return lat, lon, nil
		}
	}
	return 0, 0, apperr.Validation("report location is required")
}

func exifLocation(data []byte) (float64, float64, bool) {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 0, 0, false
	}
	lat, lon, err := x.LatLong()
	if err != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

// lookupAddress is best-effort; failures yield UnknownLocation.
func (s *Service) lookupAddress(ctx context.Context, lat, lon float64) string {
	if s.geocoder == nil {
		return places.UnknownLocation
	}
	address, err := s.geocoder.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		s.log.ProviderError("reports.reverse_geocode", err)
		return places.UnknownLocation
	}
	return address
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

// countMap reports every known key, including empty buckets.
func countMap(keys []string, counts []repository.Count) map[string]int {
	out := make(map[string]int, len(keys))
	for _, k := range keys {
		out[k] = 0
	}
	for _, c := range counts {
		out[c.Key] += c.Count
	}
	return out
}

func toResponse(r repository.Report, photoURL *string) transport.ReportResponse {
	return transport.ReportResponse{
		ID:          r.ID,
		UserID:      r.UserID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		Location:    r.Location,
		Description: r.Description,
		GarbageType: r.GarbageType,
		Score:       r.Score,
		Severity:    domain.SeverityFor(r.Score),
		Status:      r.Status,
		HasPhoto:    r.ImageKey != nil,
		PhotoURL:    photoURL,
	}
}
