package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadTimeoutsDefaults(t *testing.T) {
	timeouts := LoadTimeouts()

	assert.Equal(t, 30*time.Second, timeouts.StopSettle)
	assert.Equal(t, 60*time.Second, timeouts.StartSettle)
	assert.Equal(t, 30*time.Second, timeouts.ReadyPoll)
	assert.Equal(t, 0, timeouts.ReadyMaxAttempts)
	assert.Equal(t, 60*time.Second, timeouts.CommandDelay)
	assert.Equal(t, 10*time.Second, timeouts.HTTPRequest)
}

func TestLoadTimeoutsFromEnvironment(t *testing.T) {
	t.Setenv("NEXTCLOUDCTL_STOP_SETTLE", "5s")
	t.Setenv("NEXTCLOUDCTL_START_SETTLE", "2m")
	t.Setenv("NEXTCLOUDCTL_READY_POLL", "1s")
	t.Setenv("NEXTCLOUDCTL_READY_MAX_ATTEMPTS", "20")
	t.Setenv("NEXTCLOUDCTL_COMMAND_DELAY", "500ms")
	t.Setenv("NEXTCLOUDCTL_HTTP_TIMEOUT", "3s")

	timeouts := LoadTimeouts()

	assert.Equal(t, 5*time.Second, timeouts.StopSettle)
	assert.Equal(t, 2*time.Minute, timeouts.StartSettle)
	assert.Equal(t, time.Second, timeouts.ReadyPoll)
	assert.Equal(t, 20, timeouts.ReadyMaxAttempts)
	assert.Equal(t, 500*time.Millisecond, timeouts.CommandDelay)
	assert.Equal(t, 3*time.Second, timeouts.HTTPRequest)
}

func TestLoadTimeoutsIgnoresInvalidValues(t *testing.T) {
	t.Setenv("NEXTCLOUDCTL_STOP_SETTLE", "soon")
	t.Setenv("NEXTCLOUDCTL_READY_MAX_ATTEMPTS", "many")

	timeouts := LoadTimeouts()

	assert.Equal(t, 30*time.Second, timeouts.StopSettle)
	assert.Equal(t, 0, timeouts.ReadyMaxAttempts)
}
