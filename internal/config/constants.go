package config

// Docker Hub repositories for the stack components.
const (
	NextcloudRepo = "library/nextcloud"
	PostgresRepo  = "library/postgres"
	RedisRepo     = "library/redis"
	NginxRepo     = "library/nginx"
)

// Image names as written into the compose document. Official images drop
// the "library/" prefix.
const (
	NextcloudImage = "nextcloud"
	PostgresImage  = "postgres"
	RedisImage     = "redis"
	NginxImage     = "nginx"
)

// DefaultBasePath is where the generated deployment files live unless the
// operator chooses otherwise.
const DefaultBasePath = "./docker/nextcloud/"

// SettingsFileName is the persisted installer settings document inside the
// base path.
const SettingsFileName = "nextcloudctl.yaml"

// EnvFileName holds the generated stack credentials inside the base path.
const EnvFileName = "nextcloud.env"

// NginxBuildDir is the nginx image build context inside the base path.
const NginxBuildDir = "nextcloud-nginx"
