package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
	CTALabel   string
	CTAURL     string
}

type highSeverityAlertEmailData struct {
	baseEmailData
	HighSeverityAlert
}

func renderHighSeverityAlert(alert HighSeverityAlert) (string, error) {
	mapsURL := alert.MapsURL
	if mapsURL == "" {
		mapsURL = fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%f,%f", alert.Latitude, alert.Longitude)
	}
	return renderEmailTemplate("high_severity_alert.html", highSeverityAlertEmailData{
		baseEmailData: baseEmailData{
			Title:      "High severity report",
			Heading:    "Pickup needed",
			Subheading: alert.Location,
			CTALabel:   "Open in Maps",
			CTAURL:     mapsURL,
		},
		HighSeverityAlert: alert,
	})
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}
