// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides Supabase access token validation settings for middleware.
type JWTConfig interface {
	GetSupabaseJWTSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// PlacesConfig provides settings for the Google Places integration.
type PlacesConfig interface {
	GetGoogleMapsAPIKey() string
	GetPlacesBaseURL() string
	GetPlacesDebounce() time.Duration
	GetPlacesMinQueryLength() int
	GetPlacesRequestTimeout() time.Duration
	GetPlacesQPS() float64
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinioBucketReportPhotos() string
	IsMinIOEnabled() bool
}

// SchedulerConfig provides settings for the asynq task queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// VisionConfig provides settings for the photo cleanliness scorer.
type VisionConfig interface {
	GetGeminiAPIKey() string
	GetGeminiModel() string
	IsVisionEnabled() bool
}

// EmailConfig provides settings for SMTP alert delivery.
type EmailConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
	GetAlertRecipient() string
	IsEmailEnabled() bool
}

// ReportsConfig provides settings for incident report intake.
type ReportsConfig interface {
	GetReportMaxImageBytes() int64
	GetReportSubmitTimeout() time.Duration
	GetAlertScoreThreshold() int
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                     string
	HTTPAddr                string
	DatabaseURL             string
	SupabaseJWTSecret       string
	CORSAllowAll            bool
	CORSOrigins             []string
	CORSAllowCreds          bool
	GoogleMapsAPIKey        string
	PlacesBaseURL           string
	PlacesDebounce          time.Duration
	PlacesMinQueryLength    int
	PlacesRequestTimeout    time.Duration
	PlacesQPS               float64
	MinIOEndpoint           string
	MinIOAccessKey          string
	MinIOSecretKey          string
	MinIOUseSSL             bool
	MinioBucketReportPhotos string
	RedisURL                string
	RedisTLSInsecure        bool
	AsynqQueueName          string
	AsynqConcurrency        int
	GeminiAPIKey            string
	GeminiModel             string
	SMTPHost                string
	SMTPPort                int
	SMTPUsername            string
	SMTPPassword            string
	EmailFromName           string
	EmailFromAddress        string
	AlertRecipient          string
	ReportMaxImageBytes     int64
	ReportSubmitTimeout     time.Duration
	AlertScoreThreshold     int
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetSupabaseJWTSecret() string { return c.SupabaseJWTSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// PlacesConfig implementation
func (c *Config) GetGoogleMapsAPIKey() string            { return c.GoogleMapsAPIKey }
func (c *Config) GetPlacesBaseURL() string               { return c.PlacesBaseURL }
func (c *Config) GetPlacesDebounce() time.Duration       { return c.PlacesDebounce }
func (c *Config) GetPlacesMinQueryLength() int           { return c.PlacesMinQueryLength }
func (c *Config) GetPlacesRequestTimeout() time.Duration { return c.PlacesRequestTimeout }
func (c *Config) GetPlacesQPS() float64                  { return c.PlacesQPS }

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string           { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string          { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string          { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool               { return c.MinIOUseSSL }
func (c *Config) GetMinIOMaxFileSize() int64         { return c.ReportMaxImageBytes }
func (c *Config) GetMinioBucketReportPhotos() string { return c.MinioBucketReportPhotos }
func (c *Config) IsMinIOEnabled() bool {
	return c.MinIOEndpoint != "" && c.MinIOAccessKey != "" && c.MinIOSecretKey != ""
}

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// VisionConfig implementation
func (c *Config) GetGeminiAPIKey() string { return c.GeminiAPIKey }
func (c *Config) GetGeminiModel() string  { return c.GeminiModel }
func (c *Config) IsVisionEnabled() bool   { return c.GeminiAPIKey != "" }

// EmailConfig implementation
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }
func (c *Config) GetAlertRecipient() string   { return c.AlertRecipient }
func (c *Config) IsEmailEnabled() bool {
	return c.SMTPHost != "" && c.AlertRecipient != ""
}

// ReportsConfig implementation
func (c *Config) GetReportMaxImageBytes() int64         { return c.ReportMaxImageBytes }
func (c *Config) GetReportSubmitTimeout() time.Duration { return c.ReportSubmitTimeout }
func (c *Config) GetAlertScoreThreshold() int           { return c.AlertScoreThreshold }

// =============================================================================
// Loading
// =============================================================================

// Load reads configuration from the environment, after applying an optional .env file.
func Load() (*Config, error) {
	cfg := load()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadPlaces reads configuration for tools that only talk to the places
// provider. Database and auth settings are not required.
func LoadPlaces() (*Config, error) {
	cfg := load()
	if cfg.GoogleMapsAPIKey == "" {
		return nil, fmt.Errorf("GOOGLE_MAPS_API_KEY is required")
	}
	if cfg.PlacesMinQueryLength < 1 {
		return nil, fmt.Errorf("PLACES_MIN_QUERY_LENGTH must be at least 1")
	}
	return cfg, nil
}

func load() *Config {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	return &Config{
		Env:                     getEnv("APP_ENV", "development"),
		HTTPAddr:                getEnv("HTTP_ADDR", ":7504"),
		DatabaseURL:             getEnv("DATABASE_URL", ""),
		SupabaseJWTSecret:       getEnv("SUPABASE_JWT_SECRET", ""),
		CORSAllowAll:            corsAllowAll,
		CORSOrigins:             corsOrigins,
		CORSAllowCreds:          strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		GoogleMapsAPIKey:        getEnv("GOOGLE_MAPS_API_KEY", ""),
		PlacesBaseURL:           getEnv("PLACES_BASE_URL", "https://maps.googleapis.com/maps/api"),
		PlacesDebounce:          mustDuration(getEnv("PLACES_DEBOUNCE", "300ms")),
		PlacesMinQueryLength:    mustInt(getEnv("PLACES_MIN_QUERY_LENGTH", "3")),
		PlacesRequestTimeout:    mustDuration(getEnv("PLACES_REQUEST_TIMEOUT", "10s")),
		PlacesQPS:               mustFloat(getEnv("PLACES_QPS", "10")),
		MinIOEndpoint:           getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:          getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:          getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:             strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinioBucketReportPhotos: getEnv("MINIO_BUCKET_REPORT_PHOTOS", "report-photos"),
		RedisURL:                getEnv("REDIS_URL", ""),
		RedisTLSInsecure:        strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:          getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:        mustInt(getEnv("ASYNQ_CONCURRENCY", "4")),
		GeminiAPIKey:            getEnv("GEMINI_API_KEY", ""),
		GeminiModel:             getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		SMTPHost:                getEnv("SMTP_HOST", ""),
		SMTPPort:                mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:            getEnv("SMTP_USERNAME", ""),
		SMTPPassword:            getEnv("SMTP_PASSWORD", ""),
		EmailFromName:           getEnv("EMAIL_FROM_NAME", "TrashTrack"),
		EmailFromAddress:        getEnv("EMAIL_FROM_ADDRESS", ""),
		AlertRecipient:          getEnv("ALERT_RECIPIENT", ""),
		ReportMaxImageBytes:     mustInt64(getEnv("REPORT_MAX_IMAGE_BYTES", "10485760")),
		ReportSubmitTimeout:     mustDuration(getEnv("REPORT_SUBMIT_TIMEOUT", "30s")),
		AlertScoreThreshold:     mustInt(getEnv("ALERT_SCORE_THRESHOLD", "70")),
	}
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	if c.CORSAllowAll && c.CORSAllowCreds {
		return fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if c.IsEmailEnabled() && c.EmailFromAddress == "" {
		return fmt.Errorf("EMAIL_FROM_ADDRESS is required when SMTP_HOST and ALERT_RECIPIENT are set")
	}
	if c.PlacesMinQueryLength < 1 {
		return fmt.Errorf("PLACES_MIN_QUERY_LENGTH must be at least 1")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
