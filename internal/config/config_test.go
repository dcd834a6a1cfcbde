package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"store-feedback/internal/geo"
	"store-feedback/internal/review"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var envKeys = []string{
	"PORT", "FEEDBACK_STORES_FILE", "FEEDBACK_DB", "WEBHOOK_ENDPOINT_URL", "FEEDBACK_BACKEND",
	"FEEDBACK_REQUIRED_FIELDS", "FEEDBACK_MIN_RATING", "FEEDBACK_MAX_RATING", "FEEDBACK_FIVE_STAR",
	"FEEDBACK_FALLBACK_LAT", "FEEDBACK_FALLBACK_LNG", "FEEDBACK_FALLBACK_CITY", "FEEDBACK_FALLBACK_REGION",
	"FEEDBACK_SESSION_SECRET", "FEEDBACK_ADMIN_USER", "FEEDBACK_ADMIN_PASSWORD_HASH",
	"FEEDBACK_EXPORT_DIR", "FEEDBACK_TRACING", "FEEDBACK_LOG_LEVEL",
}

// clearEnv unsets keys for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg := Load()
	assert.Equal(t, "9595", cfg.Port)
	assert.Equal(t, BackendWebhook, cfg.Backend)
	assert.Equal(t, review.DefaultPolicy(), cfg.Policy)
	assert.Equal(t, geo.DefaultFallback, cfg.Fallback)
	assert.True(t, cfg.UsesWebhook())
	assert.False(t, cfg.UsesDatabase())
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("FEEDBACK_BACKEND", "Both")
	t.Setenv("FEEDBACK_REQUIRED_FIELDS", "Feedback, name,,")
	t.Setenv("FEEDBACK_MAX_RATING", "5")
	t.Setenv("FEEDBACK_FIVE_STAR", "record")
	t.Setenv("FEEDBACK_FALLBACK_LAT", "39.7392")
	t.Setenv("FEEDBACK_FALLBACK_LNG", "not-a-number")
	t.Setenv("FEEDBACK_FALLBACK_CITY", "Denver")
	t.Setenv("FEEDBACK_TRACING", "true")
	t.Setenv("FEEDBACK_SESSION_SECRET", testSecret)

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, BackendBoth, cfg.Backend)
	assert.Equal(t, []string{"feedback", "name"}, cfg.Policy.RequiredFields)
	assert.Equal(t, 5, cfg.Policy.MaxRating)
	assert.Equal(t, review.FiveStarRecord, cfg.Policy.FiveStar)
	assert.Equal(t, 39.7392, cfg.Fallback.Lat)
	assert.Equal(t, geo.DefaultFallback.Lng, cfg.Fallback.Lng)
	assert.Equal(t, "Denver", cfg.Fallback.City)
	assert.True(t, cfg.Tracing)
	assert.True(t, cfg.UsesWebhook())
	assert.True(t, cfg.UsesDatabase())
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	cfg := Load()
	cfg.SessionSecret = testSecret
	require.NoError(t, cfg.Validate())

	bad := *cfg
	bad.Backend = "carrier-pigeon"
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)

	bad = *cfg
	bad.SessionSecret = "short"
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)

	bad = *cfg
	bad.Policy.FiveStar = review.FiveStarRecord
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)
}

func TestLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{LogLevel: "warn"}
	logger := cfg.Logger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "k=v")

	buf.Reset()
	cfg.LogLevel = "nonsense"
	cfg.Logger(&buf).Info("info is default")
	assert.True(t, strings.Contains(buf.String(), "info is default"))
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\nFEEDBACK_DOTENV_A=from-file\nFEEDBACK_DOTENV_B=\"quoted\"\nnot a pair\nFEEDBACK_DOTENV_C=file\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("FEEDBACK_DOTENV_C", "already-set")
	t.Cleanup(func() {
		_ = os.Unsetenv("FEEDBACK_DOTENV_A")
		_ = os.Unsetenv("FEEDBACK_DOTENV_B")
	})

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("FEEDBACK_DOTENV_A"))
	assert.Equal(t, "quoted", os.Getenv("FEEDBACK_DOTENV_B"))
	assert.Equal(t, "already-set", os.Getenv("FEEDBACK_DOTENV_C"))

	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}
