package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 600, cfg.DecisionSeconds)
	assert.Equal(t, 300, cfg.PacingThresholdSeconds)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTTL)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 10*time.Minute, cfg.DecisionDuration())
	assert.Equal(t, ":8080", cfg.Address())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DECISION_SECONDS", "120")
	t.Setenv("PACING_THRESHOLD_SECONDS", "60")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("SESSION_IDLE_TTL", "5m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 120, cfg.DecisionSeconds)
	assert.Equal(t, 60, cfg.PacingThresholdSeconds)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.SessionIdleTTL)
}

func TestLoadRejectsBadRanges(t *testing.T) {
	t.Setenv("DECISION_SECONDS", "100")
	t.Setenv("PACING_THRESHOLD_SECONDS", "300")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PACING_THRESHOLD_SECONDS")
}

func TestValidateIdleTTLOutlastsDecision(t *testing.T) {
	cfg := Config{
		Port:                   "8080",
		DecisionSeconds:        600,
		PacingThresholdSeconds: 300,
		SessionIdleTTL:         time.Minute,
		RateLimitRPS:           1,
		RateLimitBurst:         1,
		LogEncoding:            "json",
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_IDLE_TTL must be longer than DECISION_SECONDS")

	cfg.SessionIdleTTL = 10 * time.Minute
	assert.Error(t, cfg.Validate())

	cfg.SessionIdleTTL = 11 * time.Minute
	assert.NoError(t, cfg.Validate())
}

func TestValidateEncoding(t *testing.T) {
	cfg := Config{
		Port:                   "8080",
		DecisionSeconds:        600,
		PacingThresholdSeconds: 300,
		SessionIdleTTL:         time.Hour,
		RateLimitRPS:           1,
		RateLimitBurst:         1,
		LogEncoding:            "xml",
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_ENCODING")

	cfg.LogEncoding = "console"
	assert.NoError(t, cfg.Validate())
}
