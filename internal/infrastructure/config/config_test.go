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

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Sandbox.Timeout)
	assert.Equal(t, 4, cfg.Sandbox.PoolSize)
	assert.Equal(t, []string{"*"}, cfg.CORS.Origins)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9100")
	t.Setenv("SANDBOX_TIMEOUT", "250ms")
	t.Setenv("SANDBOX_POOL_SIZE", "8")
	t.Setenv("CORS_ORIGINS", "https://docs.formlab.dev,https://staging.formlab.dev")
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.Sandbox.Timeout)
	assert.Equal(t, 8, cfg.Sandbox.PoolSize)
	assert.Equal(t, []string{"https://docs.formlab.dev", "https://staging.formlab.dev"}, cfg.CORS.Origins)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoadInvalidFallsBackToDefault(t *testing.T) {
	t.Setenv("SANDBOX_POOL_SIZE", "not-a-number")

	cfg := LoadOrDefault()
	assert.Equal(t, Default().Sandbox.PoolSize, cfg.Sandbox.PoolSize)
}

func TestDefaultMatchesEnvDefaults(t *testing.T) {
	fromEnv, err := Load()
	require.NoError(t, err)

	assert.Equal(t, Default(), fromEnv)
}
