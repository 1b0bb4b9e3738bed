package domain

import (
	"strings"
	"time"
)

const (
	GarbageHazardous  = "Hazardous"
	GarbageRecyclable = "Recyclable"
	GarbageGeneral    = "General"
	GarbageOrganic    = "Organic"
)

const (
	StatusAssigning  = "Assigning"
	StatusInProgress = "In Progress"
	StatusResolved   = "Resolved"
)

const (
	SeverityHigh     = "High"
	SeverityMedium   = "Medium"
	SeverityLow      = "Low"
	SeverityUnscored = "Unscored"
)

// Score thresholds for severity buckets.
const (
	HighSeverityMinScore   = 70
	MediumSeverityMinScore = 40
)

const (
	WindowAll      = "all"
	WindowLastHour = "last-hour"
	WindowLastDay  = "last-day"
	WindowLastWeek = "last-week"
)

var GarbageTypes = []string{GarbageHazardous, GarbageRecyclable, GarbageGeneral, GarbageOrganic}

var Statuses = []string{StatusAssigning, StatusInProgress, StatusResolved}

var Severities = []string{SeverityHigh, SeverityMedium, SeverityLow, SeverityUnscored}

// SeverityFor buckets a cleanliness score. A nil score is Unscored.
func SeverityFor(score *int) string {
	switch {
	case score == nil:
		return SeverityUnscored
	case *score >= HighSeverityMinScore:
		return SeverityHigh
	case *score >= MediumSeverityMinScore:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// NormalizeStatus maps case-insensitive input onto a known status.
func NormalizeStatus(raw string) (string, bool) {
	return matchFold(Statuses, raw)
}

// NormalizeGarbageType maps case-insensitive input onto a known garbage type.
func NormalizeGarbageType(raw string) (string, bool) {
	return matchFold(GarbageTypes, raw)
}

// NormalizeSeverity maps case-insensitive input onto a known severity.
func NormalizeSeverity(raw string) (string, bool) {
	return matchFold(Severities, raw)
}

// WindowStart returns the lower bound for a time window, or nil for "all".
func WindowStart(window string, now time.Time) (*time.Time, bool) {
	var d time.Duration
	switch strings.ToLower(strings.TrimSpace(window)) {
	case "", WindowAll:
		return nil, true
	case WindowLastHour:
		d = time.Hour
	case WindowLastDay:
		d = 24 * time.Hour
	case WindowLastWeek:
		d = 7 * 24 * time.Hour
	default:
		return nil, false
	}
	since := now.Add(-d)
	return &since, true
}

func matchFold(options []string, raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	for _, option := range options {
		if strings.EqualFold(option, trimmed) {
			return option, true
		}
	}
	return "", false
}
