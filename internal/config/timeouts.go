package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable cadences and timeout values.
// These values can be customized via environment variables.
type Timeouts struct {
	GuestAttributePoll time.Duration // Interval between guest attribute fetches
	TagCacheCheck      time.Duration // Interval between evaluations of the cached tags
	TagRefresh         time.Duration // Pause between network refreshes of the tag cache
	Install            time.Duration // Install deadline of the cached-refresh strategy
	Delete             time.Duration // Timeout for all delete operations
	RetryMaxAttempts   int           // Maximum number of retry attempts
	RetryInitialDelay  time.Duration // Initial delay between retries
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - OUTLINE_GUEST_ATTRIBUTE_POLL (default: 5s)
//   - OUTLINE_TAG_CACHE_CHECK (default: 100ms)
//   - OUTLINE_TAG_REFRESH (default: 3s)
//   - OUTLINE_INSTALL_TIMEOUT (default: 5m)
//   - OUTLINE_TIMEOUT_DELETE (default: 5m)
//   - OUTLINE_RETRY_MAX_ATTEMPTS (default: 5)
//   - OUTLINE_RETRY_INITIAL_DELAY (default: 1s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		GuestAttributePoll: parseDuration("OUTLINE_GUEST_ATTRIBUTE_POLL", 5*time.Second),
		TagCacheCheck:      parseDuration("OUTLINE_TAG_CACHE_CHECK", 100*time.Millisecond),
		TagRefresh:         parseDuration("OUTLINE_TAG_REFRESH", 3*time.Second),
		Install:            parseDuration("OUTLINE_INSTALL_TIMEOUT", 5*time.Minute),
		Delete:             parseDuration("OUTLINE_TIMEOUT_DELETE", 5*time.Minute),
		RetryMaxAttempts:   parseInt("OUTLINE_RETRY_MAX_ATTEMPTS", 5),
		RetryInitialDelay:  parseDuration("OUTLINE_RETRY_INITIAL_DELAY", 1*time.Second),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set, not positive or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return i
}

// TestTimeouts returns short timeouts for tests that exercise retry paths.
func TestTimeouts() *Timeouts {
	return &Timeouts{
		GuestAttributePoll: 5 * time.Millisecond,
		TagCacheCheck:      2 * time.Millisecond,
		TagRefresh:         5 * time.Millisecond,
		Install:            time.Second,
		Delete:             5 * time.Second,
		RetryMaxAttempts:   3,
		RetryInitialDelay:  time.Millisecond,
	}
}
