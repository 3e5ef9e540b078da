package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable delay and timeout values for the
// upgrade procedure. These values can be customized via environment
// variables.
type Timeouts struct {
	StopSettle       time.Duration // Settle delay after stopping the stack
	StartSettle      time.Duration // Settle delay after starting the stack
	ReadyPoll        time.Duration // Interval between readiness checks
	ReadyMaxAttempts int           // Readiness attempts before giving up (0 = unbounded)
	CommandDelay     time.Duration // Delay between in-container maintenance commands
	HTTPRequest      time.Duration // Per-request timeout for registry and readiness calls
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is
// used. The stop/start settle defaults were chosen empirically to let the
// runtime release resources between steps.
//
// Environment Variables:
//   - NEXTCLOUDCTL_STOP_SETTLE (default: 30s)
//   - NEXTCLOUDCTL_START_SETTLE (default: 60s)
//   - NEXTCLOUDCTL_READY_POLL (default: 30s)
//   - NEXTCLOUDCTL_READY_MAX_ATTEMPTS (default: 0, unbounded)
//   - NEXTCLOUDCTL_COMMAND_DELAY (default: 60s)
//   - NEXTCLOUDCTL_HTTP_TIMEOUT (default: 10s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		StopSettle:       parseDuration("NEXTCLOUDCTL_STOP_SETTLE", 30*time.Second),
		StartSettle:      parseDuration("NEXTCLOUDCTL_START_SETTLE", 60*time.Second),
		ReadyPoll:        parseDuration("NEXTCLOUDCTL_READY_POLL", 30*time.Second),
		ReadyMaxAttempts: parseInt("NEXTCLOUDCTL_READY_MAX_ATTEMPTS", 0),
		CommandDelay:     parseDuration("NEXTCLOUDCTL_COMMAND_DELAY", 60*time.Second),
		HTTPRequest:      parseDuration("NEXTCLOUDCTL_HTTP_TIMEOUT", 10*time.Second),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
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
