package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "US", cfg.DefaultRegion)
	assert.Equal(t, "America/Chicago", cfg.DefaultTimezone)
	assert.InDelta(t, 0.60, cfg.MatchThreshold, 1e-9)
	assert.InDelta(t, 0.15, cfg.MatchSubstringBonus, 1e-9)
	assert.Equal(t, 10*time.Second, cfg.ShutdownPeriod)
	assert.Equal(t, ":8080", cfg.Address())
}

func TestLoadRequiresStoresOutsideDev(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadRejectsBadThreshold(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("MATCH_THRESHOLD", "1.5")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadNormalizesLogLevel(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("PORT", ":9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":9090", cfg.Address())
}
