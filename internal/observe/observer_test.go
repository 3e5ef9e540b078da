package observe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecorderCapturesByLevel(t *testing.T) {
	r := &Recorder{}
	r.Notify(LevelInfo, "stopping %s", "stack")
	r.Notify(LevelWarn, "retrying")
	r.Notify(LevelError, "step %d failed", 2)
	r.Notify(LevelWarn, "still retrying")

	assert.Equal(t, []string{"stopping stack"}, r.Messages(LevelInfo))
	assert.Equal(t, []string{"retrying", "still retrying"}, r.Messages(LevelWarn))
	assert.Equal(t, []string{"step 2 failed"}, r.Messages(LevelError))
	assert.Empty(t, r.Messages(LevelSuccess))
}

func TestRecorderCapturesProgress(t *testing.T) {
	r := &Recorder{}
	r.Progress(1, 3, "Upgrading to version 20-fpm")
	r.Progress(2, 3, "Upgrading to version 21-fpm")

	assert.Equal(t, []string{
		"1/3 Upgrading to version 20-fpm",
		"2/3 Upgrading to version 21-fpm",
	}, r.Progressed)
}
