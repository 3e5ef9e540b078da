package compose

import (
	"fmt"
	"os"
	"strings"

	"github.com/netzint/nextcloudctl/internal/config"
)

// WriteEnvFile writes all stack credentials into the env file referenced
// by the compose document.
func WriteEnvFile(s config.Settings) error {
	lines := []string{
		"# nextcloud.env for Nextcloud-FPM + PostgreSQL + Redis + Nginx",
		"POSTGRES_PASSWORD=" + s.PostgresPassword,
		"NEXTCLOUD_DB_USER=" + s.DBUser,
		"POSTGRES_USER=" + s.DBUser,
		"POSTGRES_DB=nextcloud",
		"NEXTCLOUD_DB_PASSWORD=" + s.DBPassword,
		"REDIS_PASS=" + s.RedisPassword,
		"NEXTCLOUD_ADMIN_USER=" + s.AdminUser,
		"NEXTCLOUD_ADMIN_PASSWORD=" + s.AdminPassword,
		"POSTGRES_HOST=" + ServicePostgres,
		"REDIS_HOST=" + ServiceRedis,
		"",
	}
	if err := os.WriteFile(s.EnvFilePath(), []byte(strings.Join(lines, "\n")), 0o600); err != nil {
		return fmt.Errorf("writing env file: %w", err)
	}
	return nil
}
