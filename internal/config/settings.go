package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Settings describes one deployment: which services are enabled, where the
// generated files live, and the credentials baked into the env file. It is
// written at install time and read back by later update runs.
type Settings struct {
	BasePath string `mapstructure:"base_path" yaml:"base_path"`

	HTTPPort  string `mapstructure:"http_port" yaml:"http_port"`
	HTTPSPort string `mapstructure:"https_port" yaml:"https_port"`

	InstallPostgres bool `mapstructure:"install_postgres" yaml:"install_postgres"`
	InstallRedis    bool `mapstructure:"install_redis" yaml:"install_redis"`
	InstallNginx    bool `mapstructure:"install_nginx" yaml:"install_nginx"`

	PostgresPassword string `mapstructure:"postgres_password" yaml:"postgres_password"`
	DBUser           string `mapstructure:"db_user" yaml:"db_user"`
	DBPassword       string `mapstructure:"db_password" yaml:"db_password"`
	RedisPassword    string `mapstructure:"redis_password" yaml:"redis_password"`
	AdminUser        string `mapstructure:"admin_user" yaml:"admin_user"`
	AdminPassword    string `mapstructure:"admin_password" yaml:"admin_password"`

	NextcloudVersion string `mapstructure:"nextcloud_version" yaml:"nextcloud_version"`
	PostgresVersion  string `mapstructure:"postgres_version" yaml:"postgres_version"`
	RedisVersion     string `mapstructure:"redis_version" yaml:"redis_version"`
	NginxVersion     string `mapstructure:"nginx_version" yaml:"nginx_version"`
}

// DefaultSettings returns settings for a full automatic installation with
// generated credentials left empty; callers fill them in.
func DefaultSettings(basePath string) Settings {
	return Settings{
		BasePath:        basePath,
		HTTPPort:        "8080",
		HTTPSPort:       "8443",
		InstallPostgres: true,
		InstallRedis:    true,
		InstallNginx:    true,
		DBUser:          "nextcloud",
		AdminUser:       "admin",
	}
}

// EnvFilePath returns the env file location for these settings.
func (s Settings) EnvFilePath() string {
	return filepath.Join(s.BasePath, EnvFileName)
}

// ComposeFilePath returns the compose document location for these settings.
func (s Settings) ComposeFilePath() string {
	return filepath.Join(s.BasePath, "docker-compose.yml")
}

// LoadSettings reads and decodes the settings document from basePath.
func LoadSettings(basePath string) (*Settings, error) {
	path := filepath.Join(basePath, SettingsFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	var s Settings
	if err := mapstructure.Decode(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}

	if s.BasePath == "" {
		s.BasePath = basePath
	}
	return &s, nil
}

// SaveSettings writes the settings document into the base path.
func SaveSettings(s Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	path := filepath.Join(s.BasePath, SettingsFileName)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}
