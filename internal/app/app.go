package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jonboulle/clockwork"

	"github.com/heartmarshall/crewdir/internal/adapter/provider/crewapi"
	"github.com/heartmarshall/crewdir/internal/auth"
	"github.com/heartmarshall/crewdir/internal/config"
	"github.com/heartmarshall/crewdir/internal/domain"
	"github.com/heartmarshall/crewdir/internal/service/directory"
	"github.com/heartmarshall/crewdir/internal/service/team"
)

// Engine is the wired directory engine. The CLI builds exactly one and
// passes it down; nothing in the engine is global.
type Engine struct {
	Config   *config.Config
	Logger   *slog.Logger
	Identity auth.Identity
	Client   *crewapi.Client
	Roles    *directory.RoleCatalog
	Cache    *directory.PageCache
	Fetcher  *directory.Fetcher
	// Team is nil in guest mode.
	Team    *team.Service
	Browser *directory.Browser
}

// teamCoordinator stays a nil interface for guests.
type teamCoordinator interface {
	Refresh(ctx context.Context) error
	Toggle(ctx context.Context, entityID string) (domain.MutationOutcome, error)
	IsMember(entityID string) bool
}

// Options select the initial view and override parts of the wiring.
type Options struct {
	// ConfigPath overrides CONFIG_PATH.
	ConfigPath string
	// LogLevel overrides the configured log level.
	LogLevel string
	Section  string
	Search   string
	Filters  domain.FilterSet
	Clock    clockwork.Clock
}

// NewEngine wires the engine from configuration. It performs no network calls.
func NewEngine(cfg *config.Config, logger *slog.Logger, opts Options) (*Engine, error) {
	identity, err := auth.NewTokenReader(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer).Identify(cfg.Auth.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("identify: %w", err)
	}

	token := ""
	if !identity.IsGuest() {
		token = cfg.Auth.AccessToken
	}

	client := crewapi.NewClient(crewapi.Options{
		BaseURL:    cfg.API.BaseURL,
		Token:      token,
		Timeout:    cfg.API.Timeout,
		RetryDelay: cfg.API.RetryDelay,
		RateLimit:  cfg.API.RateLimit,
		Burst:      cfg.API.Burst,
		Paths: crewapi.Paths{
			GuestBrowse:   cfg.API.GuestBrowsePath,
			DirectSearch:  cfg.API.DirectSearchPath,
			LibrarySearch: cfg.API.LibrarySearchPath,
			Roles:         cfg.API.RolesPath,
			Team:          cfg.API.TeamPath,
		},
	}, logger)

	cache, err := directory.NewPageCache(cfg.Directory.PageSize, cfg.Directory.MaxCachedKeys)
	if err != nil {
		return nil, err
	}

	roles := directory.NewRoleCatalog(logger, client, domain.CategoryTalent, domain.CategoryCrew)
	fetcher := directory.NewFetcher(logger, client)

	var (
		teamSvc *team.Service
		members teamCoordinator
	)
	if !identity.IsGuest() {
		teamSvc = team.NewService(logger, client, identity.UserID, team.Options{
			RollbackOnFailure: cfg.Team.RollbackOnFailure,
		})
		members = teamSvc
	}

	browser, err := directory.NewBrowser(logger, fetcher, roles, members, cache, directory.BrowserOptions{
		Mode:     identity.Mode,
		Section:  opts.Section,
		Search:   opts.Search,
		Filters:  opts.Filters,
		Debounce: cfg.Directory.Debounce,
		Clock:    opts.Clock,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("engine ready",
		slog.String("version", BuildVersion()),
		slog.String("mode", identity.Mode.String()),
		slog.String("base_url", cfg.API.BaseURL),
	)

	return &Engine{
		Config:   cfg,
		Logger:   logger,
		Identity: identity,
		Client:   client,
		Roles:    roles,
		Cache:    cache,
		Fetcher:  fetcher,
		Team:     teamSvc,
		Browser:  browser,
	}, nil
}

// Bootstrap loads configuration, builds the logger and wires the engine.
// Logs go to logOut, or stderr when nil.
func Bootstrap(opts Options, logOut io.Writer) (*Engine, error) {
	cfg, err := config.LoadFrom(configPath(opts.ConfigPath))
	if err != nil {
		return nil, err
	}

	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	logger := NewLogger(cfg.Log, logOut)

	return NewEngine(cfg, logger, opts)
}

// Open loads roles, the team list and the first page of the initial view.
// A failed first page is reported in the view, not returned.
func (e *Engine) Open(ctx context.Context) {
	if err := e.Browser.Open(ctx); err != nil {
		e.Logger.WarnContext(ctx, "first page failed", slog.String("error", err.Error()))
	}
}

func configPath(override string) string {
	if override != "" {
		return override
	}
	return os.Getenv("CONFIG_PATH")
}
