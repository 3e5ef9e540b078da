// Package upgrade drives the sequential major-version upgrade of a running
// deployment: stop, swap image, start, wait for readiness, run maintenance,
// advance. One run per invocation; steps never overlap.
package upgrade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/netzint/nextcloudctl/internal/compose"
	"github.com/netzint/nextcloudctl/internal/config"
	"github.com/netzint/nextcloudctl/internal/observe"
	"github.com/netzint/nextcloudctl/internal/planner"
	"github.com/netzint/nextcloudctl/internal/runtime"
)

var (
	// ErrRuntimeControl means a stack stop or start failed. This aborts
	// the whole run: a partially stopped stack must not be left in an
	// undefined mix of old and new images.
	ErrRuntimeControl = errors.New("runtime control failed")

	// ErrReadinessTimeout means the primary service did not report ready
	// within the configured attempt budget.
	ErrReadinessTimeout = errors.New("service did not become ready")
)

// Options tunes an orchestrator. Zero values select the stack defaults.
type Options struct {
	// PrimaryService is the service whose version lineage drives the
	// upgrade. Default compose.ServiceApp.
	PrimaryService string
	// CompanionServices share the primary's image lineage and are
	// retagged in the same step. Default {compose.ServiceCron}.
	CompanionServices []string
	// ImageName is the repository written into the compose document.
	// Default config.NextcloudImage.
	ImageName string
	// Maintenance overrides the post-step command sequence. Default
	// DefaultMaintenanceCommands with the configured delay.
	Maintenance []MaintenanceCommand
	// Timeouts default to config.LoadTimeouts().
	Timeouts *config.Timeouts
}

// Orchestrator executes an upgrade plan against a running deployment.
type Orchestrator struct {
	state       *compose.State
	rt          runtime.Runtime
	checker     Checker
	observer    observe.Observer
	timeouts    *config.Timeouts
	primary     string
	companions  []string
	image       string
	maintenance []MaintenanceCommand
}

// NewOrchestrator wires an orchestrator from its collaborators.
func NewOrchestrator(state *compose.State, rt runtime.Runtime, checker Checker, observer observe.Observer, opts Options) *Orchestrator {
	if opts.PrimaryService == "" {
		opts.PrimaryService = compose.ServiceApp
	}
	if opts.CompanionServices == nil {
		opts.CompanionServices = []string{compose.ServiceCron}
	}
	if opts.ImageName == "" {
		opts.ImageName = config.NextcloudImage
	}
	if opts.Timeouts == nil {
		opts.Timeouts = config.LoadTimeouts()
	}
	if opts.Maintenance == nil {
		opts.Maintenance = DefaultMaintenanceCommands(opts.Timeouts.CommandDelay)
	}
	return &Orchestrator{
		state:       state,
		rt:          rt,
		checker:     checker,
		observer:    observer,
		timeouts:    opts.Timeouts,
		primary:     opts.PrimaryService,
		companions:  opts.CompanionServices,
		image:       opts.ImageName,
		maintenance: opts.Maintenance,
	}
}

// Run executes every step of the plan in order. It returns the outcome of
// each attempted step; the error is non-nil exactly when the run aborted
// before completing the plan. A skipped step does not abort the run.
func (o *Orchestrator) Run(ctx context.Context, plan planner.Plan) ([]StepResult, error) {
	total := len(plan.Steps)
	var results []StepResult
	for _, step := range plan.Steps {
		o.observer.Progress(step.Ordinal, total, fmt.Sprintf("Upgrading to version %s", step.Target.Tag))
		result := o.runStep(ctx, step)
		results = append(results, result)
		if result.Status == PlanAborted {
			o.observer.Notify(observe.LevelError, "Upgrade aborted at step %d of %d: %v", step.Ordinal, total, result.Reason)
			return results, result.Reason
		}
		if result.Status == StepSkipped {
			o.observer.Notify(observe.LevelWarn, "Step %d of %d skipped: %v", step.Ordinal, total, result.Reason)
			continue
		}
		o.observer.Notify(observe.LevelSuccess, "Step %d of %d completed: upgraded to version %s", step.Ordinal, total, step.Target.Tag)
	}
	return results, nil
}

func (o *Orchestrator) runStep(ctx context.Context, step planner.Step) StepResult {
	abort := func(err error) StepResult {
		return StepResult{Step: step, Status: PlanAborted, Reason: err}
	}

	o.observer.Notify(observe.LevelInfo, "Stopping stack...")
	if err := o.rt.StopStack(ctx); err != nil {
		return abort(fmt.Errorf("%w: stopping stack: %v", ErrRuntimeControl, err))
	}
	if err := sleepCtx(ctx, o.timeouts.StopSettle); err != nil {
		return abort(err)
	}

	for _, svc := range append([]string{o.primary}, o.companions...) {
		previous, changed, err := o.state.SetServiceImageTag(svc, o.image, step.Target.Tag)
		if err != nil {
			return abort(fmt.Errorf("updating image for %s: %w", svc, err))
		}
		if changed {
			o.observer.Notify(observe.LevelInfo, "%s: %s -> %s:%s", svc, previous, o.image, step.Target.Tag)
		}
	}

	o.observer.Notify(observe.LevelInfo, "Starting stack...")
	if err := o.rt.StartStack(ctx); err != nil {
		// The new image reference is already persisted at this point;
		// the run stops rather than guessing at recovery.
		return abort(fmt.Errorf("%w: starting stack: %v", ErrRuntimeControl, err))
	}
	if err := sleepCtx(ctx, o.timeouts.StartSettle); err != nil {
		return abort(err)
	}

	if err := o.waitReady(ctx); err != nil {
		return abort(err)
	}

	primary, err := runtime.FindContainer(ctx, o.rt, o.primary)
	if err != nil {
		// The stack is up but the primary container could not be
		// resolved; the step is abandoned and the run moves on.
		return StepResult{Step: step, Status: StepSkipped, Reason: err}
	}

	if err := o.runMaintenance(ctx, primary); err != nil {
		return abort(err)
	}

	return StepResult{Step: step, Status: StepSucceeded}
}

// waitReady polls the readiness checker until all predicates hold. A
// transport failure keeps the poll going; only attempt exhaustion or
// cancellation ends it.
func (o *Orchestrator) waitReady(ctx context.Context) error {
	o.observer.Notify(observe.LevelInfo, "Waiting for the service to become ready...")
	for attempt := 1; ; attempt++ {
		ready, err := o.checker.Ready(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			o.observer.Notify(observe.LevelWarn, "Readiness check failed: %v", err)
		} else if ready {
			return nil
		}
		if o.timeouts.ReadyMaxAttempts > 0 && attempt >= o.timeouts.ReadyMaxAttempts {
			return fmt.Errorf("%w after %d attempts", ErrReadinessTimeout, attempt)
		}
		if err := sleepCtx(ctx, o.timeouts.ReadyPoll); err != nil {
			return err
		}
	}
}

// runMaintenance executes the post-step command sequence inside the
// primary container. Non-zero exits are reported and the sequence
// continues; a spawn failure ends the sequence but not the run. Only
// cancellation is returned as an error.
func (o *Orchestrator) runMaintenance(ctx context.Context, c runtime.Container) error {
	for _, cmd := range o.maintenance {
		o.observer.Notify(observe.LevelInfo, "Running %s in %s...", cmd, c.Name)
		exitCode, err := o.rt.Exec(ctx, c.ID, cmd.User, cmd.Argv)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			o.observer.Notify(observe.LevelError, "Error running %s: %v", cmd, err)
			return nil
		}
		if exitCode != 0 {
			o.observer.Notify(observe.LevelWarn, "%s exited with status %d", cmd, exitCode)
		}
		if err := sleepCtx(ctx, cmd.Delay); err != nil {
			return err
		}
	}
	return nil
}

// sleepCtx blocks for d or until the context is canceled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
