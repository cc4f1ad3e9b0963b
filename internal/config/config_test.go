package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// validEnv sets the minimum required env vars for a valid config.
func validEnv(t *testing.T) {
	t.Helper()
	t.Setenv("API_BASE_URL", "https://api.example.com")
}

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

func validConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:           "https://api.example.com",
			Timeout:           10 * time.Second,
			RetryDelay:        500 * time.Millisecond,
			RateLimit:         10,
			Burst:             5,
			GuestBrowsePath:   "/guest/browse",
			DirectSearchPath:  "/users/search",
			LibrarySearchPath: "/users",
			RolesPath:         "/roles",
			TeamPath:          "/team",
		},
		Directory: DirectoryConfig{
			PageSize:      20,
			Debounce:      500 * time.Millisecond,
			MaxCachedKeys: 8,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

const validYAML = `
api:
  base_url: "https://crew.example.com/api"
  timeout: "5s"
  retry_delay: "250ms"
  rate_limit: 2.5
  burst: 3
  library_search_path: "/library"

auth:
  access_token: "tok"

directory:
  page_size: 10
  debounce: "300ms"
  max_cached_keys: 4

team:
  rollback_on_failure: true

log:
  level: "debug"
  format: "json"
`

func TestLoad_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML)
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// API
	if cfg.API.BaseURL != "https://crew.example.com/api" {
		t.Errorf("api.base_url = %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 5*time.Second {
		t.Errorf("api.timeout = %v, want 5s", cfg.API.Timeout)
	}
	if cfg.API.RetryDelay != 250*time.Millisecond {
		t.Errorf("api.retry_delay = %v, want 250ms", cfg.API.RetryDelay)
	}
	if cfg.API.RateLimit != 2.5 {
		t.Errorf("api.rate_limit = %v, want 2.5", cfg.API.RateLimit)
	}
	if cfg.API.LibrarySearchPath != "/library" {
		t.Errorf("api.library_search_path = %q, want /library", cfg.API.LibrarySearchPath)
	}
	if cfg.API.GuestBrowsePath != "/guest/browse" {
		t.Errorf("api.guest_browse_path = %q, want default", cfg.API.GuestBrowsePath)
	}

	// Auth
	if cfg.Auth.AccessToken != "tok" {
		t.Errorf("auth.access_token = %q", cfg.Auth.AccessToken)
	}

	// Directory
	if cfg.Directory.PageSize != 10 {
		t.Errorf("directory.page_size = %d, want 10", cfg.Directory.PageSize)
	}
	if cfg.Directory.Debounce != 300*time.Millisecond {
		t.Errorf("directory.debounce = %v, want 300ms", cfg.Directory.Debounce)
	}
	if cfg.Directory.MaxCachedKeys != 4 {
		t.Errorf("directory.max_cached_keys = %d, want 4", cfg.Directory.MaxCachedKeys)
	}

	// Team
	if !cfg.Team.RollbackOnFailure {
		t.Error("team.rollback_on_failure should be true")
	}

	// Log
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %q, want %q", cfg.Log.Level, "debug")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("log.format = %q, want %q", cfg.Log.Format, "json")
	}
}

func TestLoad_ENVOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("DIRECTORY_PAGE_SIZE", "50")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Directory.PageSize != 50 {
		t.Errorf("directory.page_size = %d, want 50 (ENV override)", cfg.Directory.PageSize)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log.level = %q, want %q (ENV override)", cfg.Log.Level, "warn")
	}
}

func TestLoad_NoFile_ENVOnly(t *testing.T) {
	validEnv(t)
	t.Setenv("CONFIG_PATH", "")

	origDir, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	_ = os.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Directory.PageSize != 20 {
		t.Errorf("directory.page_size = %d, want 20 (default)", cfg.Directory.PageSize)
	}
	if cfg.Directory.Debounce != 500*time.Millisecond {
		t.Errorf("directory.debounce = %v, want 500ms (default)", cfg.Directory.Debounce)
	}
	if cfg.Team.RollbackOnFailure {
		t.Error("team.rollback_on_failure should default to false")
	}
	if cfg.API.DirectSearchPath != "/users/search" {
		t.Errorf("api.direct_search_path = %q, want default", cfg.API.DirectSearchPath)
	}
}

func TestLoad_MissingBaseURL(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("API_BASE_URL", "")

	origDir, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	_ = os.Chdir(t.TempDir())

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing api.base_url")
	}
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/nonexistent/config.yaml")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, `{{{invalid yaml`)
	t.Setenv("CONFIG_PATH", path)

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestValidate_Valid(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantMsg string
	}{
		{"base url without scheme", func(c *Config) { c.API.BaseURL = "crew.example.com" }, "base_url"},
		{"base url ftp", func(c *Config) { c.API.BaseURL = "ftp://crew.example.com" }, "base_url"},
		{"zero timeout", func(c *Config) { c.API.Timeout = 0 }, "timeout"},
		{"negative rate limit", func(c *Config) { c.API.RateLimit = -1 }, "rate_limit"},
		{"relative path", func(c *Config) { c.API.TeamPath = "team" }, "team_path"},
		{"page size zero", func(c *Config) { c.Directory.PageSize = 0 }, "page_size"},
		{"page size too large", func(c *Config) { c.Directory.PageSize = 101 }, "page_size"},
		{"negative debounce", func(c *Config) { c.Directory.Debounce = -time.Second }, "debounce"},
		{"no cached keys", func(c *Config) { c.Directory.MaxCachedKeys = 0 }, "max_cached_keys"},
		{"short jwt secret", func(c *Config) { c.Auth.JWTSecret = "short" }, "jwt_secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestValidate_BoundaryValues(t *testing.T) {
	cfg := validConfig()
	cfg.Directory.PageSize = 1
	cfg.Directory.Debounce = 0
	cfg.API.RateLimit = 0

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error for lower boundary values: %v", err)
	}

	cfg.Directory.PageSize = 100
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error for upper boundary values: %v", err)
	}
}
