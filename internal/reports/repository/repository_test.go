package repository

import (
	"strings"
	"testing"
	"time"

	"trashtrack_backend/internal/reports/domain"
)

func TestBuildFiltersNumbersPlaceholders(t *testing.T) {
	since := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	where, args := buildFilters(&since, domain.StatusResolved, domain.SeverityMedium)

	want := " WHERE created_at >= $1 AND status = $2 AND score >= 40 AND score < 70"
	if where != want {
		t.Fatalf("unexpected clause:\n got %q\nwant %q", where, want)
	}
	if len(args) != 2 || args[1] != domain.StatusResolved {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestBuildFiltersEmpty(t *testing.T) {
	where, args := buildFilters(nil, "", "")
	if where != "" || len(args) != 0 {
		t.Fatalf("expected no filters, got %q %v", where, args)
	}
}

func TestBuildFiltersUnscored(t *testing.T) {
	where, _ := buildFilters(nil, "", domain.SeverityUnscored)
	if where != " WHERE score IS NULL" {
		t.Fatalf("unexpected clause %q", where)
	}
}

func TestClaimUnscoredQueryRotatesAndCaps(t *testing.T) {
	for _, want := range []string{
		"ORDER BY last_swept_at ASC NULLS FIRST, created_at ASC",
		"sweep_attempts < $3",
		"sweep_attempts = r.sweep_attempts + 1, last_swept_at = now()",
		"FOR UPDATE SKIP LOCKED",
	} {
		if !strings.Contains(claimUnscoredQuery, want) {
			t.Fatalf("claim query lost %q:\n%s", want, claimUnscoredQuery)
		}
	}
}
