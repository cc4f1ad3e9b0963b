package config

import "time"

// Config is the root application configuration.
type Config struct {
	API       APIConfig       `yaml:"api"`
	Auth      AuthConfig      `yaml:"auth"`
	Directory DirectoryConfig `yaml:"directory"`
	Team      TeamConfig      `yaml:"team"`
	Log       LogConfig       `yaml:"log"`
}

// APIConfig holds backend connection settings.
type APIConfig struct {
	BaseURL           string        `yaml:"base_url"            env:"API_BASE_URL"            env-required:"true"`
	Timeout           time.Duration `yaml:"timeout"             env:"API_TIMEOUT"             env-default:"10s"`
	RetryDelay        time.Duration `yaml:"retry_delay"         env:"API_RETRY_DELAY"         env-default:"500ms"`
	RateLimit         float64       `yaml:"rate_limit"          env:"API_RATE_LIMIT"          env-default:"10"`
	Burst             int           `yaml:"burst"               env:"API_BURST"               env-default:"5"`
	GuestBrowsePath   string        `yaml:"guest_browse_path"   env:"API_GUEST_BROWSE_PATH"   env-default:"/guest/browse"`
	DirectSearchPath  string        `yaml:"direct_search_path"  env:"API_DIRECT_SEARCH_PATH"  env-default:"/users/search"`
	LibrarySearchPath string        `yaml:"library_search_path" env:"API_LIBRARY_SEARCH_PATH" env-default:"/users"`
	RolesPath         string        `yaml:"roles_path"          env:"API_ROLES_PATH"          env-default:"/roles"`
	TeamPath          string        `yaml:"team_path"           env:"API_TEAM_PATH"           env-default:"/team"`
}

// AuthConfig holds the access token handed over by the session layer.
// An empty token means guest browsing.
type AuthConfig struct {
	AccessToken string `yaml:"access_token" env:"AUTH_ACCESS_TOKEN"`
	// JWTSecret enables local signature checks; when empty only expiry is checked.
	JWTSecret string `yaml:"jwt_secret" env:"AUTH_JWT_SECRET"`
	JWTIssuer string `yaml:"jwt_issuer" env:"AUTH_JWT_ISSUER"`
}

// DirectoryConfig holds search and pagination settings.
type DirectoryConfig struct {
	PageSize      int           `yaml:"page_size"       env:"DIRECTORY_PAGE_SIZE"       env-default:"20"`
	Debounce      time.Duration `yaml:"debounce"        env:"DIRECTORY_DEBOUNCE"        env-default:"500ms"`
	MaxCachedKeys int           `yaml:"max_cached_keys" env:"DIRECTORY_MAX_CACHED_KEYS" env-default:"8"`
}

// TeamConfig holds team-membership settings.
type TeamConfig struct {
	// RollbackOnFailure undoes the optimistic write when the server rejects a
	// mutation. Off by default: the write stays until the next refetch.
	RollbackOnFailure bool `yaml:"rollback_on_failure" env:"TEAM_ROLLBACK_ON_FAILURE" env-default:"false"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}
