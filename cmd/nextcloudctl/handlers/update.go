package handlers

import (
	"context"
	"fmt"

	"github.com/netzint/nextcloudctl/internal/compose"
	"github.com/netzint/nextcloudctl/internal/config"
	"github.com/netzint/nextcloudctl/internal/config/wizard"
	"github.com/netzint/nextcloudctl/internal/observe"
	"github.com/netzint/nextcloudctl/internal/planner"
	"github.com/netzint/nextcloudctl/internal/registry"
	"github.com/netzint/nextcloudctl/internal/runtime"
	"github.com/netzint/nextcloudctl/internal/upgrade"
)

// UpdateOptions contains options for the update command.
type UpdateOptions struct {
	BasePath      string
	TargetVersion string
	Latest        bool
	Auxiliary     bool
}

// Update handles the update command.
//
// It detects the installed version from the running app container, plans
// the sequential major-version path and drives the upgrade orchestrator.
// Auxiliary containers (postgres, redis, nginx) can be updated afterwards.
func Update(ctx context.Context, opts UpdateOptions) error {
	observer := observe.NewConsoleObserver()
	timeouts := config.LoadTimeouts()

	basePath := opts.BasePath
	if basePath == "" {
		var err error
		basePath, err = wizard.PromptBasePath(ctx)
		if err != nil {
			return err
		}
	}

	settings, err := config.LoadSettings(basePath)
	if err != nil {
		// Deployments created by hand have no settings document; fall
		// back to the defaults and keep going.
		observer.Notify(observe.LevelWarn, "No settings document in %s, using defaults: %v", basePath, err)
		defaults := config.DefaultSettings(basePath)
		settings = &defaults
	}

	state, err := compose.LoadDir(basePath)
	if err != nil {
		return err
	}

	rt, err := runtime.NewDockerRuntime(state.Path())
	if err != nil {
		return err
	}
	defer rt.Close()

	installed, err := runtime.DetectImageTag(ctx, rt, compose.ServiceApp)
	if err != nil {
		return fmt.Errorf("detecting installed version: %w", err)
	}
	observer.Notify(observe.LevelInfo, "Installed version: %s", installed)

	filter := registry.NextcloudFPMFilter()
	catalog := registry.NewCatalog(observer)
	available := catalog.FetchMajorVersions(ctx, config.NextcloudRepo, filter, registry.DefaultMaxMajors)
	if len(available) == 0 {
		return fmt.Errorf("no usable versions found for %s", config.NextcloudRepo)
	}

	plan, err := planner.Compute(installed, available, filter, nil)
	if err != nil {
		return err
	}
	if plan.Empty() {
		observer.Notify(observe.LevelSuccess, "No newer version available for update.")
		return nil
	}

	target, err := chooseTarget(ctx, opts, filter, plan)
	if err != nil {
		return err
	}
	if target != nil {
		plan, err = planner.Compute(installed, available, filter, target)
		if err != nil {
			return err
		}
		if plan.Empty() {
			observer.Notify(observe.LevelSuccess, "Already at version %s, nothing to do.", target.Tag)
			return nil
		}
		observer.Notify(observe.LevelInfo, "Update will proceed sequentially up to version %s.", target.Tag)
	} else {
		observer.Notify(observe.LevelInfo, "Update will proceed sequentially up to the latest version.")
	}

	checker := upgrade.NewHTTPChecker(upgrade.StatusURL(settings.HTTPPort), timeouts.HTTPRequest)
	orchestrator := upgrade.NewOrchestrator(state, rt, checker, observer, upgrade.Options{Timeouts: timeouts})

	results, err := orchestrator.Run(ctx, plan)
	if err != nil {
		return err
	}

	succeeded := 0
	for _, r := range results {
		if r.Status == upgrade.StepSucceeded {
			succeeded++
		}
	}
	observer.Notify(observe.LevelSuccess, "Update finished: %d of %d steps succeeded.", succeeded, len(results))

	if opts.Auxiliary {
		updateAuxiliaryContainers(ctx, observer, catalog, state, rt)
	}
	return nil
}

// chooseTarget resolves the version to stop at: an explicit --target flag,
// nil for --latest, otherwise the operator's choice among the planned
// steps.
func chooseTarget(ctx context.Context, opts UpdateOptions, filter registry.Filter, plan planner.Plan) (*registry.VersionTag, error) {
	if opts.TargetVersion != "" {
		t, err := registry.ParseTag(opts.TargetVersion, filter)
		if err != nil {
			return nil, fmt.Errorf("invalid target version %q: %w", opts.TargetVersion, err)
		}
		return &t, nil
	}
	if opts.Latest {
		return nil, nil
	}

	candidates := make([]string, len(plan.Steps))
	for i, s := range plan.Steps {
		candidates[i] = s.Target.Tag
	}
	chosen, err := wizard.RunUpdateModeGroup(ctx, candidates)
	if err != nil {
		return nil, err
	}
	if chosen == "" {
		return nil, nil
	}
	t, err := registry.ParseTag(chosen, filter)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// auxiliaryService describes one single-service update candidate.
type auxiliaryService struct {
	service string
	repo    string
	image   string
}

// updateAuxiliaryContainers offers a latest-version update for each
// enabled auxiliary service. Failures are reported per service and never
// abort the others.
func updateAuxiliaryContainers(ctx context.Context, observer observe.Observer, catalog *registry.Catalog, state *compose.State, rt runtime.Runtime) {
	services := []auxiliaryService{
		{service: compose.ServicePostgres, repo: config.PostgresRepo, image: config.PostgresImage},
		{service: compose.ServiceRedis, repo: config.RedisRepo, image: config.RedisImage},
		{service: compose.ServiceNginx, repo: config.NginxRepo, image: config.NginxImage},
	}
	filter := registry.DefaultFilter()

	for _, aux := range services {
		if _, ok := state.ServiceImage(aux.service); !ok {
			continue
		}
		current, err := runtime.DetectImageTag(ctx, rt, aux.service)
		if err != nil {
			observer.Notify(observe.LevelWarn, "Skipping %s: %v", aux.service, err)
			continue
		}
		currentTag, err := registry.ParseTag(current, filter)
		if err != nil {
			observer.Notify(observe.LevelWarn, "Skipping %s: running tag %q is not a version", aux.service, current)
			continue
		}

		available := catalog.FetchMajorVersions(ctx, aux.repo, filter, registry.DefaultMaxMajors)
		if len(available) == 0 {
			observer.Notify(observe.LevelWarn, "No valid versions found for %s", aux.service)
			continue
		}
		latest := available[0]
		if !latest.Version.GreaterThan(currentTag.Version) {
			observer.Notify(observe.LevelSuccess, "%s is already up to date (version %s)", aux.service, current)
			continue
		}

		ok, err := wizard.Confirm(ctx, fmt.Sprintf("Update %s from %s to %s?", aux.service, current, latest.Tag), true)
		if err != nil || !ok {
			continue
		}
		if _, _, err := state.SetServiceImageTag(aux.service, aux.image, latest.Tag); err != nil {
			observer.Notify(observe.LevelError, "Failed to update %s: %v", aux.service, err)
			continue
		}
		if err := rt.StartService(ctx, aux.service); err != nil {
			observer.Notify(observe.LevelError, "Failed to restart %s: %v", aux.service, err)
			continue
		}
		observer.Notify(observe.LevelSuccess, "%s updated to version %s", aux.service, latest.Tag)
	}
}
