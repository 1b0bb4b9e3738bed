package email

import (
	"context"

	"trashtrack_backend/platform/config"
)

// HighSeverityAlert describes a report that crossed the alert threshold.
type HighSeverityAlert struct {
	ReportID    string
	Score       int
	Severity    string
	Location    string
	Latitude    float64
	Longitude   float64
	GarbageType string
	MapsURL     string
}

// Sender delivers operational emails.
type Sender interface {
	SendHighSeverityAlert(ctx context.Context, toEmail string, alert HighSeverityAlert) error
}

type NoopSender struct{}

func (NoopSender) SendHighSeverityAlert(ctx context.Context, toEmail string, alert HighSeverityAlert) error {
	return nil
}

// NewSender returns an SMTP sender, or a NoopSender when SMTP is not configured.
func NewSender(cfg config.EmailConfig) Sender {
	if !cfg.IsEmailEnabled() {
		return NoopSender{}
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	)
}
