package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":5001", cfg.Addr)
	assert.Equal(t, "database/dreambalance_v2.db", cfg.DBPath)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.ClassifierTimeout)
	assert.Equal(t, 20, cfg.AuthBurst)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DREAMBALANCE_ADDR", ":9000")
	t.Setenv("DREAMBALANCE_TOKEN_TTL", "2h")
	t.Setenv("DREAMBALANCE_JWT_SECRET", "s3cret")
	t.Setenv("DREAMBALANCE_LOG_PRETTY", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.LogPretty)
	assert.NoError(t, cfg.ValidateServe())
}

func TestLoadDotenvDoesNotOverrideEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DREAMBALANCE_LOG_LEVEL=debug\nDREAMBALANCE_CLASSIFIER_URL=http://from-file\n"), 0o600))

	t.Setenv("DREAMBALANCE_LOG_LEVEL", "warn")
	// Registered so the value loaded from the file is cleared after the test
	t.Setenv("DREAMBALANCE_CLASSIFIER_URL", "")
	require.NoError(t, os.Unsetenv("DREAMBALANCE_CLASSIFIER_URL"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "http://from-file", cfg.ClassifierURL)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("DREAMBALANCE_TOKEN_TTL", "soon")

	_, err := Load("")
	assert.Error(t, err)
}

func TestValidateServe(t *testing.T) {
	cfg := &Config{TokenTTL: time.Hour, AuthRate: 1, AuthBurst: 1}
	assert.Error(t, cfg.ValidateServe())

	cfg.JWTSecret = "x"
	assert.NoError(t, cfg.ValidateServe())

	cfg.AuthBurst = 0
	assert.Error(t, cfg.ValidateServe())
}
