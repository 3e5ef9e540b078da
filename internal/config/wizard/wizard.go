// Package wizard prompts the operator through installation and update
// decisions. It only collects answers; all effects happen in the handlers.
package wizard

import (
	"context"
	"errors"

	"github.com/charmbracelet/huh"

	"github.com/netzint/nextcloudctl/internal/config"
	"github.com/netzint/nextcloudctl/internal/keygen"
)

// PromptBasePath asks where the deployment files live.
func PromptBasePath(ctx context.Context) (string, error) {
	basePath := config.DefaultBasePath
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Base path for deployment files").
				Placeholder(config.DefaultBasePath).
				Value(&basePath),
		).Title("Nextcloud Stack"),
	).RunWithContext(ctx)
	if err != nil {
		return "", err
	}
	if basePath == "" {
		basePath = config.DefaultBasePath
	}
	return basePath, nil
}

// RunInstallGroup collects installation settings. Automatic installation
// enables every service with generated credentials; manual mode asks per
// service and per credential.
func RunInstallGroup(ctx context.Context, basePath string) (config.Settings, error) {
	s := config.DefaultSettings(basePath)

	autoInstall := true
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Start automatic installation?").
				Description("Installs PostgreSQL, Redis and Nginx with generated credentials").
				Value(&autoInstall),
		).Title("Configuring services"),
	).RunWithContext(ctx)
	if err != nil {
		return config.Settings{}, err
	}

	if autoInstall {
		s.PostgresPassword = keygen.MustPassword()
		s.DBPassword = keygen.MustPassword()
		s.RedisPassword = keygen.MustPassword()
		s.AdminPassword = keygen.MustPassword()
		return s, nil
	}

	generatePasswords := true
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().Title("Install PostgreSQL?").Value(&s.InstallPostgres),
			huh.NewConfirm().Title("Install Redis?").Value(&s.InstallRedis),
			huh.NewConfirm().Title("Install Nginx?").Value(&s.InstallNginx),
			huh.NewConfirm().Title("Generate random passwords?").Value(&generatePasswords),
		).Title("Service selection"),
	).RunWithContext(ctx)
	if err != nil {
		return config.Settings{}, err
	}

	if generatePasswords {
		s.PostgresPassword = keygen.MustPassword()
		s.DBPassword = keygen.MustPassword()
		s.RedisPassword = keygen.MustPassword()
	} else {
		err = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Postgres password").EchoMode(huh.EchoModePassword).Value(&s.PostgresPassword),
				huh.NewInput().Title("Nextcloud DB user").Placeholder("nextcloud").Value(&s.DBUser),
				huh.NewInput().Title("Nextcloud DB password").EchoMode(huh.EchoModePassword).Value(&s.DBPassword),
				huh.NewInput().Title("Redis password (optional)").EchoMode(huh.EchoModePassword).Value(&s.RedisPassword),
			).Title("Credentials"),
		).RunWithContext(ctx)
		if err != nil {
			return config.Settings{}, err
		}
		if s.DBUser == "" {
			s.DBUser = "nextcloud"
		}
	}

	s.AdminPassword = keygen.MustPassword()
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Nextcloud admin user").Placeholder("admin").Value(&s.AdminUser),
			huh.NewInput().Title("Nextcloud admin password").EchoMode(huh.EchoModePassword).Value(&s.AdminPassword),
		).Title("Admin account"),
	).RunWithContext(ctx)
	if err != nil {
		return config.Settings{}, err
	}
	if s.AdminUser == "" {
		s.AdminUser = "admin"
	}
	return s, nil
}

// SelectVersion asks the operator to pick one of the discovered versions.
// The first option (the highest version) is preselected.
func SelectVersion(ctx context.Context, title string, options []string) (string, error) {
	if len(options) == 0 {
		return "", errors.New("no versions to choose from")
	}
	chosen := options[0]
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Options(huh.NewOptions(options...)...).
				Value(&chosen),
		),
	).RunWithContext(ctx)
	if err != nil {
		return "", err
	}
	return chosen, nil
}

// RunUpdateModeGroup asks whether to update to the latest version or to a
// specific one from candidates. An empty return means "latest".
func RunUpdateModeGroup(ctx context.Context, candidates []string) (string, error) {
	const (
		modeLatest   = "latest"
		modeSpecific = "specific"
	)
	mode := modeLatest
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("How would you like to update?").
				Options(
					huh.NewOption("Update to the latest version", modeLatest),
					huh.NewOption("Update to a specific version", modeSpecific),
				).
				Value(&mode),
		),
	).RunWithContext(ctx)
	if err != nil {
		return "", err
	}
	if mode == modeLatest {
		return "", nil
	}
	return SelectVersion(ctx, "Select the target version", candidates)
}

// Confirm asks a yes/no question with the given default.
func Confirm(ctx context.Context, title string, defaultYes bool) (bool, error) {
	answer := defaultYes
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().Title(title).Value(&answer),
		),
	).RunWithContext(ctx)
	return answer, err
}
