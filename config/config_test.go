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

	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, 3, cfg.PoolSize)
	assert.Equal(t, 15*time.Second, cfg.AcquireTimeout)
	assert.Equal(t, 30*time.Second, cfg.NavTimeout)
	assert.True(t, cfg.Headless)
	assert.Empty(t, cfg.APIKey)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERPD_PORT", "8080")
	t.Setenv("SERPD_POOL_SIZE", "5")
	t.Setenv("SERPD_ACQUIRE_TIMEOUT", "2s")
	t.Setenv("SERPD_NAV_TIMEOUT", "45s")
	t.Setenv("SERPD_HEADLESS", "false")
	t.Setenv("SERPD_API_KEY", "secret")
	t.Setenv("SERPD_CACHE_TTL", "1m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 5, cfg.PoolSize)
	assert.Equal(t, 2*time.Second, cfg.AcquireTimeout)
	assert.Equal(t, 45*time.Second, cfg.NavTimeout)
	assert.False(t, cfg.Headless)
	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"SERPD_PORT", "not-a-number"},
		{"SERPD_PORT", "70000"},
		{"SERPD_POOL_SIZE", "0"},
		{"SERPD_ACQUIRE_TIMEOUT", "fast"},
		{"SERPD_HEADLESS", "maybe"},
	}

	for _, tc := range tests {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
