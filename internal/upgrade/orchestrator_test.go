package upgrade

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netzint/nextcloudctl/internal/compose"
	"github.com/netzint/nextcloudctl/internal/config"
	"github.com/netzint/nextcloudctl/internal/observe"
	"github.com/netzint/nextcloudctl/internal/planner"
	"github.com/netzint/nextcloudctl/internal/registry"
	"github.com/netzint/nextcloudctl/internal/runtime"
)

type checkerFunc func(ctx context.Context) (bool, error)

func (f checkerFunc) Ready(ctx context.Context) (bool, error) { return f(ctx) }

func alwaysReady() Checker {
	return checkerFunc(func(context.Context) (bool, error) { return true, nil })
}

// newTestState writes a minimal deployment document and loads it.
func newTestState(t *testing.T, tag string) *compose.State {
	t.Helper()
	doc := &compose.Document{Services: map[string]*compose.Service{
		compose.ServiceApp:  {Image: "nextcloud:" + tag},
		compose.ServiceCron: {Image: "nextcloud:" + tag},
	}}
	path := filepath.Join(t.TempDir(), compose.FileName)
	require.NoError(t, compose.Save(path, doc))
	state, err := compose.Load(path)
	require.NoError(t, err)
	return state
}

func testPlan(t *testing.T, installed string, catalog ...string) planner.Plan {
	t.Helper()
	filter := registry.NextcloudFPMFilter()
	var tags []registry.VersionTag
	for _, raw := range catalog {
		vt, err := registry.ParseTag(raw, filter)
		require.NoError(t, err)
		tags = append(tags, vt)
	}
	plan, err := planner.Compute(installed, tags, filter, nil)
	require.NoError(t, err)
	return plan
}

// defaultRuntime resolves the primary container and succeeds at everything.
func defaultRuntime() *runtime.MockRuntime {
	return &runtime.MockRuntime{
		ListRunningFunc: func(context.Context) ([]runtime.Container, error) {
			return []runtime.Container{{ID: "abc123", Name: compose.ServiceApp, Image: "nextcloud:x"}}, nil
		},
	}
}

// zeroTimeouts removes every settle delay so tests never sleep.
func zeroTimeouts() *config.Timeouts { return &config.Timeouts{} }

func serviceTag(t *testing.T, state *compose.State, name string) string {
	t.Helper()
	image, ok := state.ServiceImage(name)
	require.True(t, ok)
	return image
}

func TestRunExecutesEveryStepInOrder(t *testing.T) {
	state := newTestState(t, "19-fpm")
	rt := defaultRuntime()

	var stops, starts int
	var execs [][]string
	rt.StopStackFunc = func(context.Context) error { stops++; return nil }
	rt.StartStackFunc = func(context.Context) error { starts++; return nil }
	rt.ExecFunc = func(_ context.Context, _, user string, argv []string) (int, error) {
		assert.Equal(t, "www-data", user)
		execs = append(execs, argv)
		return 0, nil
	}

	recorder := &observe.Recorder{}
	o := NewOrchestrator(state, rt, alwaysReady(), recorder, Options{Timeouts: zeroTimeouts()})

	results, err := o.Run(context.Background(), testPlan(t, "19-fpm", "20-fpm", "21-fpm"))

	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, StepSucceeded, r.Status)
	}
	assert.Equal(t, 2, stops)
	assert.Equal(t, 2, starts)
	// Three maintenance commands per step, ending with the schema upgrade.
	require.Len(t, execs, 6)
	assert.Equal(t, []string{"php", "occ", "upgrade"}, execs[2])
	assert.Equal(t, []string{"php", "occ", "db:add-missing-indices"}, execs[3])

	assert.Equal(t, "nextcloud:21-fpm", serviceTag(t, state, compose.ServiceApp))
	assert.Equal(t, "nextcloud:21-fpm", serviceTag(t, state, compose.ServiceCron))
	assert.Len(t, recorder.Progressed, 2)
}

func TestRunAbortsWhenStopFails(t *testing.T) {
	state := newTestState(t, "19-fpm")
	rt := defaultRuntime()
	rt.StopStackFunc = func(context.Context) error { return errors.New("daemon unreachable") }

	o := NewOrchestrator(state, rt, alwaysReady(), &observe.Recorder{}, Options{Timeouts: zeroTimeouts()})
	results, err := o.Run(context.Background(), testPlan(t, "19-fpm", "20-fpm", "21-fpm"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRuntimeControl))
	require.Len(t, results, 1)
	assert.Equal(t, PlanAborted, results[0].Status)
	// Nothing was retagged before the stop failed.
	assert.Equal(t, "nextcloud:19-fpm", serviceTag(t, state, compose.ServiceApp))
}

func TestRunAbortsWhenStartFailsAfterRetag(t *testing.T) {
	state := newTestState(t, "19-fpm")
	rt := defaultRuntime()
	rt.StartStackFunc = func(context.Context) error { return errors.New("image pull failed") }

	o := NewOrchestrator(state, rt, alwaysReady(), &observe.Recorder{}, Options{Timeouts: zeroTimeouts()})
	results, err := o.Run(context.Background(), testPlan(t, "19-fpm", "20-fpm", "21-fpm"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRuntimeControl))
	require.Len(t, results, 1)
	assert.Equal(t, PlanAborted, results[0].Status)
	// The retag happened before the start attempt and stays persisted.
	assert.Equal(t, "nextcloud:20-fpm", serviceTag(t, state, compose.ServiceApp))
	assert.Equal(t, "nextcloud:20-fpm", serviceTag(t, state, compose.ServiceCron))
}

func TestRunSkipsStepWhenPrimaryContainerIsMissing(t *testing.T) {
	state := newTestState(t, "19-fpm")
	rt := defaultRuntime()
	rt.ListRunningFunc = func(context.Context) ([]runtime.Container, error) {
		return []runtime.Container{{ID: "def456", Name: compose.ServicePostgres}}, nil
	}
	var execs int
	rt.ExecFunc = func(context.Context, string, string, []string) (int, error) { execs++; return 0, nil }

	recorder := &observe.Recorder{}
	o := NewOrchestrator(state, rt, alwaysReady(), recorder, Options{Timeouts: zeroTimeouts()})
	results, err := o.Run(context.Background(), testPlan(t, "19-fpm", "20-fpm", "21-fpm"))

	// A skipped step does not abort the run.
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, StepSkipped, r.Status)
		assert.True(t, errors.Is(r.Reason, runtime.ErrContainerNotFound))
	}
	assert.Zero(t, execs)
	assert.NotEmpty(t, recorder.Messages(observe.LevelWarn))
	// The retag still happened for every step.
	assert.Equal(t, "nextcloud:21-fpm", serviceTag(t, state, compose.ServiceApp))
}

func TestRunTreatsNonZeroMaintenanceExitAsBenign(t *testing.T) {
	state := newTestState(t, "20-fpm")
	rt := defaultRuntime()
	var execs int
	rt.ExecFunc = func(context.Context, string, string, []string) (int, error) {
		execs++
		return 1, nil
	}

	recorder := &observe.Recorder{}
	o := NewOrchestrator(state, rt, alwaysReady(), recorder, Options{Timeouts: zeroTimeouts()})
	results, err := o.Run(context.Background(), testPlan(t, "20-fpm", "21-fpm"))

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, StepSucceeded, results[0].Status)
	// The sequence kept going past each non-zero exit.
	assert.Equal(t, 3, execs)
	assert.NotEmpty(t, recorder.Messages(observe.LevelWarn))
}

func TestRunEndsMaintenanceSequenceOnSpawnFailure(t *testing.T) {
	state := newTestState(t, "20-fpm")
	rt := defaultRuntime()
	var execs int
	rt.ExecFunc = func(context.Context, string, string, []string) (int, error) {
		execs++
		return 0, errors.New("exec create failed")
	}

	recorder := &observe.Recorder{}
	o := NewOrchestrator(state, rt, alwaysReady(), recorder, Options{Timeouts: zeroTimeouts()})
	results, err := o.Run(context.Background(), testPlan(t, "20-fpm", "21-fpm"))

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, StepSucceeded, results[0].Status)
	// The first spawn failure ends the sequence.
	assert.Equal(t, 1, execs)
	assert.NotEmpty(t, recorder.Messages(observe.LevelError))
}

func TestRunAbortsWhenReadinessAttemptsAreExhausted(t *testing.T) {
	state := newTestState(t, "20-fpm")
	timeouts := zeroTimeouts()
	timeouts.ReadyMaxAttempts = 2

	var attempts int
	never := checkerFunc(func(context.Context) (bool, error) {
		attempts++
		return false, nil
	})

	o := NewOrchestrator(state, defaultRuntime(), never, &observe.Recorder{}, Options{Timeouts: timeouts})
	results, err := o.Run(context.Background(), testPlan(t, "20-fpm", "21-fpm"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrReadinessTimeout))
	require.Len(t, results, 1)
	assert.Equal(t, PlanAborted, results[0].Status)
	assert.Equal(t, 2, attempts)
}

func TestRunKeepsPollingThroughTransportFailures(t *testing.T) {
	state := newTestState(t, "20-fpm")

	var attempts int
	flaky := checkerFunc(func(context.Context) (bool, error) {
		attempts++
		if attempts < 3 {
			return false, errors.New("connection refused")
		}
		return true, nil
	})

	recorder := &observe.Recorder{}
	o := NewOrchestrator(state, defaultRuntime(), flaky, recorder, Options{Timeouts: zeroTimeouts()})
	results, err := o.Run(context.Background(), testPlan(t, "20-fpm", "21-fpm"))

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, StepSucceeded, results[0].Status)
	assert.Equal(t, 3, attempts)
	assert.Len(t, recorder.Messages(observe.LevelWarn), 2)
}

func TestRunAbortsOnCanceledContext(t *testing.T) {
	state := newTestState(t, "19-fpm")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := NewOrchestrator(state, defaultRuntime(), alwaysReady(), &observe.Recorder{}, Options{Timeouts: zeroTimeouts()})
	results, err := o.Run(ctx, testPlan(t, "19-fpm", "20-fpm", "21-fpm"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	require.Len(t, results, 1)
	assert.Equal(t, PlanAborted, results[0].Status)
}

func TestRunWithEmptyPlanIsANoOp(t *testing.T) {
	state := newTestState(t, "21-fpm")
	rt := defaultRuntime()
	rt.StopStackFunc = func(context.Context) error {
		t.Fatal("stack must not be touched for an empty plan")
		return nil
	}

	o := NewOrchestrator(state, rt, alwaysReady(), &observe.Recorder{}, Options{Timeouts: zeroTimeouts()})
	results, err := o.Run(context.Background(), planner.Plan{})

	require.NoError(t, err)
	assert.Empty(t, results)
}
