package handlers

import (
	"context"
	"fmt"

	"github.com/netzint/nextcloudctl/internal/compose"
	"github.com/netzint/nextcloudctl/internal/config"
	"github.com/netzint/nextcloudctl/internal/config/wizard"
	"github.com/netzint/nextcloudctl/internal/observe"
	"github.com/netzint/nextcloudctl/internal/registry"
	"github.com/netzint/nextcloudctl/internal/runtime"
)

// InstallOptions contains options for the install command.
type InstallOptions struct {
	BasePath string
	Start    bool
}

// Install handles the install command.
//
// It collects settings, resolves one version per enabled service from the
// registry, scaffolds the deployment files and optionally starts the
// stack.
func Install(ctx context.Context, opts InstallOptions) error {
	observer := observe.NewConsoleObserver()

	basePath := opts.BasePath
	if basePath == "" {
		var err error
		basePath, err = wizard.PromptBasePath(ctx)
		if err != nil {
			return err
		}
	}

	observer.Notify(observe.LevelInfo, "Nextcloud installation started")
	settings, err := wizard.RunInstallGroup(ctx, basePath)
	if err != nil {
		return err
	}

	if err := resolveVersions(ctx, observer, &settings); err != nil {
		return err
	}

	if err := compose.SetupNginxBuildFolder(settings.BasePath); err != nil {
		return err
	}
	if err := compose.CreateLocalDirectories(settings.BasePath); err != nil {
		return err
	}

	doc := compose.BuildDocument(settings)
	if err := compose.Save(settings.ComposeFilePath(), doc); err != nil {
		return err
	}
	observer.Notify(observe.LevelSuccess, "Compose file %s created", settings.ComposeFilePath())

	if err := compose.WriteEnvFile(settings); err != nil {
		return err
	}
	if err := config.SaveSettings(settings); err != nil {
		return err
	}

	start := opts.Start
	if !start {
		start, err = wizard.Confirm(ctx, "Do you want to start the containers now?", true)
		if err != nil {
			return err
		}
	}
	if start {
		rt, err := runtime.NewDockerRuntime(settings.ComposeFilePath())
		if err != nil {
			return err
		}
		defer rt.Close()
		observer.Notify(observe.LevelInfo, "Starting containers...")
		if err := rt.StartStack(ctx); err != nil {
			return fmt.Errorf("starting containers: %w", err)
		}
		observer.Notify(observe.LevelSuccess, "Containers started successfully")
	}

	observer.Notify(observe.LevelSuccess, "Admin URL:      http://localhost:%s", settings.HTTPPort)
	observer.Notify(observe.LevelSuccess, "Admin user:     %s", settings.AdminUser)
	observer.Notify(observe.LevelSuccess, "Admin password: %s", settings.AdminPassword)
	return nil
}

// resolveVersions fills in one image version per enabled service, asking
// the operator to pick from the discovered major versions.
func resolveVersions(ctx context.Context, observer observe.Observer, s *config.Settings) error {
	catalog := registry.NewCatalog(observer)

	pick := func(repo, title string, filter registry.Filter) (string, error) {
		versions := catalog.FetchMajorVersions(ctx, repo, filter, registry.DefaultMaxMajors)
		if len(versions) == 0 {
			return "", fmt.Errorf("no usable versions found for %s", repo)
		}
		return wizard.SelectVersion(ctx, title, tagStrings(versions))
	}

	version, err := pick(config.NextcloudRepo, "Select a Nextcloud-FPM version", registry.NextcloudFPMFilter())
	if err != nil {
		return err
	}
	s.NextcloudVersion = version

	if s.InstallPostgres {
		if s.PostgresVersion, err = pick(config.PostgresRepo, "Select a PostgreSQL version", registry.DefaultFilter()); err != nil {
			return err
		}
	}
	if s.InstallRedis {
		if s.RedisVersion, err = pick(config.RedisRepo, "Select a Redis version", registry.DefaultFilter()); err != nil {
			return err
		}
	}
	if s.InstallNginx {
		if s.NginxVersion, err = pick(config.NginxRepo, "Select an Nginx version", registry.DefaultFilter()); err != nil {
			return err
		}
	}
	return nil
}

func tagStrings(tags []registry.VersionTag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.Tag
	}
	return out
}
