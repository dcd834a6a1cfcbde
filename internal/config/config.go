package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"store-feedback/internal/geo"
	"store-feedback/internal/review"
)

// Backend names accepted in FEEDBACK_BACKEND.
const (
	BackendWebhook  = "webhook"
	BackendDatabase = "database"
	BackendBoth     = "both"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all application configuration.
type Config struct {
	Port              string
	StoresFile        string
	DBPath            string
	WebhookURL        string
	Backend           string
	Policy            review.Policy
	Fallback          geo.Result
	SessionSecret     string
	AdminUser         string
	AdminPasswordHash string
	ExportDir         string
	Tracing           bool
	LogLevel          string
}

// Load populates Config from environment variables. Callers may override
// fields from command line flags afterwards.
func Load() *Config {
	policy := review.DefaultPolicy()
	policy.RequiredFields = getEnvList("FEEDBACK_REQUIRED_FIELDS", policy.RequiredFields)
	policy.MinRating = getEnvInt("FEEDBACK_MIN_RATING", policy.MinRating)
	policy.MaxRating = getEnvInt("FEEDBACK_MAX_RATING", policy.MaxRating)
	policy.FiveStar = review.FiveStarPolicy(getEnv("FEEDBACK_FIVE_STAR", string(policy.FiveStar)))

	fallback := geo.DefaultFallback
	fallback.Lat = getEnvFloat("FEEDBACK_FALLBACK_LAT", fallback.Lat)
	fallback.Lng = getEnvFloat("FEEDBACK_FALLBACK_LNG", fallback.Lng)
	fallback.City = getEnv("FEEDBACK_FALLBACK_CITY", fallback.City)
	fallback.Region = getEnv("FEEDBACK_FALLBACK_REGION", fallback.Region)

	return &Config{
		Port:              getEnv("PORT", "9595"),
		StoresFile:        getEnv("FEEDBACK_STORES_FILE", ""),
		DBPath:            getEnv("FEEDBACK_DB", "data/feedback.db"),
		WebhookURL:        getEnv("WEBHOOK_ENDPOINT_URL", ""),
		Backend:           strings.ToLower(getEnv("FEEDBACK_BACKEND", BackendWebhook)),
		Policy:            policy,
		Fallback:          fallback,
		SessionSecret:     getEnv("FEEDBACK_SESSION_SECRET", ""),
		AdminUser:         getEnv("FEEDBACK_ADMIN_USER", "admin"),
		AdminPasswordHash: getEnv("FEEDBACK_ADMIN_PASSWORD_HASH", ""),
		ExportDir:         getEnv("FEEDBACK_EXPORT_DIR", "output"),
		Tracing:           getEnvBool("FEEDBACK_TRACING", false),
		LogLevel:          getEnv("FEEDBACK_LOG_LEVEL", "info"),
	}
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendWebhook, BackendDatabase, BackendBoth:
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, c.Backend)
	}
	if err := c.Policy.Check(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if len(c.SessionSecret) < 32 {
		return fmt.Errorf("%w: FEEDBACK_SESSION_SECRET must be at least 32 bytes", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) UsesWebhook() bool {
	return c.Backend == BackendWebhook || c.Backend == BackendBoth
}

func (c *Config) UsesDatabase() bool {
	return c.Backend == BackendDatabase || c.Backend == BackendBoth
}

// Logger builds the structured application logger.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvList reads a comma separated list. An empty value yields an empty list.
func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var items []string
	for _, p := range strings.Split(value, ",") {
		if trimmed := strings.ToLower(strings.TrimSpace(p)); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
