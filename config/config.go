package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is read once at startup; nothing reloads it at runtime.
type Config struct {
	Port      int
	APIPrefix string
	// APIKey enables bearer-token authentication when non-empty.
	APIKey string

	PoolSize       int
	AcquireTimeout time.Duration
	NavTimeout     time.Duration
	DrainTimeout   time.Duration

	Headless bool
	ProxyURL string

	// CachePath enables the result cache when non-empty.
	CachePath string
	CacheTTL  time.Duration

	// EnginesFile optionally points to a YAML file with per-engine selector
	// overrides.
	EnginesFile string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:           5000,
		APIPrefix:      "/api",
		APIKey:         os.Getenv("SERPD_API_KEY"),
		PoolSize:       3,
		AcquireTimeout: 15 * time.Second,
		NavTimeout:     30 * time.Second,
		DrainTimeout:   30 * time.Second,
		Headless:       true,
		ProxyURL:       os.Getenv("SERPD_PROXY_URL"),
		CachePath:      os.Getenv("SERPD_CACHE_PATH"),
		CacheTTL:       5 * time.Minute,
		EnginesFile:    os.Getenv("SERPD_ENGINES_FILE"),
	}

	var err error
	if cfg.Port, err = intEnv("SERPD_PORT", cfg.Port); err != nil {
		return nil, err
	}
	if v := os.Getenv("SERPD_API_PREFIX"); v != "" {
		cfg.APIPrefix = v
	}
	if cfg.PoolSize, err = intEnv("SERPD_POOL_SIZE", cfg.PoolSize); err != nil {
		return nil, err
	}
	if cfg.AcquireTimeout, err = durationEnv("SERPD_ACQUIRE_TIMEOUT", cfg.AcquireTimeout); err != nil {
		return nil, err
	}
	if cfg.NavTimeout, err = durationEnv("SERPD_NAV_TIMEOUT", cfg.NavTimeout); err != nil {
		return nil, err
	}
	if cfg.DrainTimeout, err = durationEnv("SERPD_DRAIN_TIMEOUT", cfg.DrainTimeout); err != nil {
		return nil, err
	}
	if cfg.Headless, err = boolEnv("SERPD_HEADLESS", cfg.Headless); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = durationEnv("SERPD_CACHE_TTL", cfg.CacheTTL); err != nil {
		return nil, err
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("SERPD_PORT out of range: %d", cfg.Port)
	}
	if cfg.PoolSize < 1 {
		return nil, fmt.Errorf("SERPD_POOL_SIZE must be at least 1: %d", cfg.PoolSize)
	}
	return cfg, nil
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
