package email

import (
	"context"
	"strings"
	"testing"
)

func TestRenderHighSeverityAlert(t *testing.T) {
	html, err := renderHighSeverityAlert(HighSeverityAlert{
		ReportID:    "9b2c",
		Score:       88,
		Severity:    "High",
		Location:    "Central Park, NY <north>",
		Latitude:    40.78,
		Longitude:   -73.96,
		GarbageType: "Hazardous",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, want := range []string{"88/100", "Hazardous", "40.78000, -73.96000", "query=40.780000,-73.960000", "Open in Maps"} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in rendered email", want)
		}
	}
	if strings.Contains(html, "<north>") {
		t.Fatal("expected location to be escaped")
	}
}

type disabledEmailConfig struct{}

func (disabledEmailConfig) GetSMTPHost() string         { return "" }
func (disabledEmailConfig) GetSMTPPort() int            { return 587 }
func (disabledEmailConfig) GetSMTPUsername() string     { return "" }
func (disabledEmailConfig) GetSMTPPassword() string     { return "" }
func (disabledEmailConfig) GetEmailFromName() string    { return "TrashTrack" }
func (disabledEmailConfig) GetEmailFromAddress() string { return "" }
func (disabledEmailConfig) GetAlertRecipient() string   { return "" }
func (disabledEmailConfig) IsEmailEnabled() bool        { return false }

func TestNewSenderDisabledIsNoop(t *testing.T) {
	sender := NewSender(disabledEmailConfig{})
	if _, ok := sender.(NoopSender); !ok {
		t.Fatalf("expected NoopSender, got %T", sender)
	}
	if err := sender.SendHighSeverityAlert(context.Background(), "ops@example.com", HighSeverityAlert{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
