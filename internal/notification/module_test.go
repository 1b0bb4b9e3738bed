package notification

import (
	"context"
	"errors"
	"testing"

	"trashtrack_backend/internal/email"
	"trashtrack_backend/internal/events"
	"trashtrack_backend/platform/logger"

	"github.com/google/uuid"
)

type testAlertConfig struct {
	recipient string
}

func (c testAlertConfig) GetAlertRecipient() string  { return c.recipient }
func (c testAlertConfig) GetAlertScoreThreshold() int { return 70 }

type testSender struct {
	to     []string
	alerts []email.HighSeverityAlert
	err    error
}

func (s *testSender) SendHighSeverityAlert(_ context.Context, toEmail string, alert email.HighSeverityAlert) error {
	s.to = append(s.to, toEmail)
	s.alerts = append(s.alerts, alert)
	return s.err
}

const testDispatchEmail = "dispatch@trashtrack.example"

func scored(score int) events.ReportScored {
	return events.ReportScored{
		BaseEvent: events.NewBaseEvent(),
		ReportID:  uuid.New(),
		Score:     score,
		Severity:  "High",
		Location:  "Pier 17",
	}
}

func TestHighScoreSendsAlert(t *testing.T) {
	sender := &testSender{}
	m := New(sender, testAlertConfig{recipient: testDispatchEmail}, logger.NewNop())

	event := scored(85)
	if err := m.Handle(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.alerts) != 1 || sender.to[0] != testDispatchEmail {
		t.Fatalf("expected one alert to dispatch, got %v", sender.to)
	}
	if sender.alerts[0].ReportID != event.ReportID.String() || sender.alerts[0].Location != "Pier 17" {
		t.Fatalf("unexpected alert %+v", sender.alerts[0])
	}
}

func TestScoreBelowThresholdIsQuiet(t *testing.T) {
	sender := &testSender{}
	m := New(sender, testAlertConfig{recipient: testDispatchEmail}, logger.NewNop())

	if err := m.Handle(context.Background(), scored(69)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.alerts) != 0 {
		t.Fatal("no alert expected below threshold")
	}
}

func TestMissingRecipientDisablesAlerts(t *testing.T) {
	sender := &testSender{}
	m := New(sender, testAlertConfig{}, logger.NewNop())

	_ = m.Handle(context.Background(), scored(100))
	if len(sender.alerts) != 0 {
		t.Fatal("no alert expected without a recipient")
	}
}

func TestSendFailureIsReported(t *testing.T) {
	sender := &testSender{err: errors.New("smtp down")}
	m := New(sender, testAlertConfig{recipient: testDispatchEmail}, logger.NewNop())

	if err := m.Handle(context.Background(), scored(90)); err == nil {
		t.Fatal("expected send failure to surface")
	}
}
