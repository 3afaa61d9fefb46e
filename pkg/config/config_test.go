package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/portal/v1", cfg.APIPrefix)
	assert.Equal(t, "http://localhost:5000", cfg.Upstream.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Upstream.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Upstream.WriteTimeout)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, 20, cfg.Analytics.SubmissionTarget)
	assert.Equal(t, 16, cfg.Analytics.TrendWeeks)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Database.Enabled)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("UPSTREAM_BASE_URL", "https://faculty.example.edu/")
	t.Setenv("READ_TIMEOUT", "3s")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.edu, https://b.example.edu ,")
	t.Setenv("SESSION_TTL", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://faculty.example.edu", cfg.Upstream.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Upstream.ReadTimeout)
	assert.Equal(t, []string{"https://a.example.edu", "https://b.example.edu"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 12*time.Hour, cfg.Session.TTL)
}

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
