package grader

import (
	"os"
	"strconv"
	"time"
)

// Config holds grading service configuration.
type Config struct {
	// CacheTTL is how long a verdict stays memoized. Default: 10m.
	CacheTTL time.Duration

	// CleanupInterval is how often expired verdicts are purged.
	CleanupInterval time.Duration

	// Parallel bounds how many matchers run at once. 1 or less runs them
	// in order on the calling goroutine.
	Parallel int

	// Timeout is the wall-clock budget for one Grade call.
	Timeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		CacheTTL:        10 * time.Minute,
		CleanupInterval: 20 * time.Minute,
		Parallel:        4,
		Timeout:         2 * time.Second,
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset or malformed values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("STEPCHECK_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.CacheTTL = d
		}
	}
	if v := os.Getenv("STEPCHECK_GRADE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	if v := os.Getenv("STEPCHECK_PARALLEL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Parallel = n
		}
	}

	return cfg
}
