package compose

import (
	"fmt"
	"path/filepath"

	"github.com/netzint/nextcloudctl/internal/config"
)

// BuildDocument assembles the compose document for a fresh installation.
// Optional services (postgres, redis, nginx) appear only when enabled; the
// cron companion always rides on the same image as the app service.
func BuildDocument(s config.Settings) *Document {
	doc := &Document{Services: map[string]*Service{}}
	envFile := s.EnvFilePath()
	dataDir := func(parts ...string) string {
		return filepath.Join(append([]string{s.BasePath, "data"}, parts...)...)
	}

	if s.InstallPostgres {
		doc.Services[ServicePostgres] = &Service{
			Image:         fmt.Sprintf("%s:%s", config.PostgresImage, s.PostgresVersion),
			ContainerName: ServicePostgres,
			Restart:       "unless-stopped",
			EnvFile:       []string{envFile},
			Volumes:       []string{dataDir("nc_postgres") + ":/var/lib/postgresql/data:Z"},
			Healthcheck:   postgresHealthcheck(s.DBUser),
		}
	}

	if s.InstallRedis {
		doc.Services[ServiceRedis] = &Service{
			Image:         fmt.Sprintf("%s:%s", config.RedisImage, s.RedisVersion),
			ContainerName: ServiceRedis,
			Restart:       "unless-stopped",
			EnvFile:       []string{envFile},
			Volumes:       []string{dataDir("nc_redis") + ":/data"},
			Command:       []string{"redis-server", "--appendonly", "yes", "--requirepass", "${REDIS_PASS}"},
		}
	}

	app := &Service{
		Image:         fmt.Sprintf("%s:%s", config.NextcloudImage, s.NextcloudVersion),
		ContainerName: ServiceApp,
		Restart:       "unless-stopped",
		EnvFile:       []string{envFile},
		Volumes: []string{
			dataDir("nc_html") + ":/var/www/html:z",
			dataDir("nc_config") + ":/var/www/html/config:z",
			dataDir("nc_custom_apps") + ":/var/www/html/custom_apps:z",
			dataDir("nc_data") + ":/var/www/html/data:z",
		},
		DependsOn: stackDependencies(s),
	}
	doc.Services[ServiceApp] = app

	if s.InstallNginx {
		doc.Services[ServiceNginx] = &Service{
			Build:         filepath.Join(s.BasePath, config.NginxBuildDir),
			Image:         "ghcr.io/nextcloudctl/nextcloud-nginx:latest",
			ContainerName: ServiceNginx,
			Restart:       "unless-stopped",
			EnvFile:       []string{envFile},
			Ports: []string{
				s.HTTPPort + ":80",
				s.HTTPSPort + ":443",
			},
			Volumes: []string{dataDir("nc_html") + ":/var/www/html:z"},
			DependsOn: map[string]Dependency{
				ServiceApp: {Condition: "service_started"},
			},
		}
	}

	doc.Services[ServiceCron] = &Service{
		Image:         app.Image,
		ContainerName: ServiceCron,
		Restart:       "always",
		Entrypoint:    "/cron.sh",
		Volumes:       []string{dataDir("nc_html") + ":/var/www/html:z"},
		DependsOn:     stackDependencies(s),
	}

	return doc
}

// stackDependencies wires a service to the enabled backing stores.
func stackDependencies(s config.Settings) map[string]Dependency {
	deps := map[string]Dependency{}
	if s.InstallPostgres {
		deps[ServicePostgres] = Dependency{Condition: "service_healthy"}
	}
	if s.InstallRedis {
		deps[ServiceRedis] = Dependency{Condition: "service_started"}
	}
	if len(deps) == 0 {
		return nil
	}
	return deps
}

// postgresHealthcheck gates dependents on pg_isready.
func postgresHealthcheck(user string) *Healthcheck {
	return &Healthcheck{
		Test: []string{
			"CMD-SHELL",
			fmt.Sprintf("pg_isready -U %s -d nextcloud -h 127.0.0.1 || exit 1", user),
		},
		Interval:    "10s",
		Timeout:     "5s",
		Retries:     5,
		StartPeriod: "20s",
	}
}
