package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.API.validate(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Directory.validate(); err != nil {
		return fmt.Errorf("directory: %w", err)
	}
	if c.Auth.JWTSecret != "" && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}
	return nil
}

func (a *APIConfig) validate() error {
	u, err := url.Parse(a.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url must be an http(s) URL (got %q)", a.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("base_url has no host (got %q)", a.BaseURL)
	}
	if a.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0 (got %v)", a.Timeout)
	}
	if a.RateLimit < 0 {
		return fmt.Errorf("rate_limit must be >= 0 (got %v)", a.RateLimit)
	}

	paths := map[string]string{
		"guest_browse_path":   a.GuestBrowsePath,
		"direct_search_path":  a.DirectSearchPath,
		"library_search_path": a.LibrarySearchPath,
		"roles_path":          a.RolesPath,
		"team_path":           a.TeamPath,
	}
	for name, p := range paths {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("%s must start with '/' (got %q)", name, p)
		}
	}
	return nil
}

func (d *DirectoryConfig) validate() error {
	if d.PageSize < 1 || d.PageSize > 100 {
		return fmt.Errorf("page_size must be within [1, 100] (got %d)", d.PageSize)
	}
	if d.Debounce < 0 {
		return fmt.Errorf("debounce must be >= 0 (got %v)", d.Debounce)
	}
	if d.MaxCachedKeys < 1 {
		return fmt.Errorf("max_cached_keys must be >= 1 (got %d)", d.MaxCachedKeys)
	}
	return nil
}
