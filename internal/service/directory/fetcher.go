package directory

import (
	"context"
	"errors"
	"log/slog"

	"github.com/heartmarshall/crewdir/internal/domain"
)

type directoryAPI interface {
	BrowseGuest(ctx context.Context, q domain.SearchQuery) (domain.Page, error)
	SearchDirect(ctx context.Context, q domain.SearchQuery) (domain.Page, error)
	SearchLibrary(ctx context.Context, q domain.SearchQuery) (domain.Page, error)
}

// Fetcher resolves one logical page request against the guest or the
// authenticated backend surface.
type Fetcher struct {
	log *slog.Logger
	api directoryAPI
}

// NewFetcher creates a Fetcher.
func NewFetcher(logger *slog.Logger, api directoryAPI) *Fetcher {
	return &Fetcher{
		log: logger.With("service", "fetcher"),
		api: api,
	}
}

// Fetch returns one normalized page. Guests have a single path and see its
// error directly. Authenticated callers try the direct endpoint first and fall
// back to the library endpoint on any failure, including an unsuccessful
// envelope. Every failure is returned as a *domain.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, mode domain.Mode, q domain.SearchQuery) (domain.Page, error) {
	if mode != domain.ModeAuthenticated {
		page, err := f.api.BrowseGuest(ctx, q)
		if err != nil {
			return domain.Page{}, f.fail(ctx, "guest browse", q.Page, err)
		}
		return page, nil
	}

	page, err := f.api.SearchDirect(ctx, q)
	if err == nil {
		return page, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return domain.Page{}, f.fail(ctx, "direct search", q.Page, errors.Join(err, ctxErr))
	}

	f.log.WarnContext(ctx, "direct search failed, falling back to library search",
		slog.Int("page", q.Page),
		slog.String("error", err.Error()),
	)

	page, err = f.api.SearchLibrary(ctx, q)
	if err != nil {
		return domain.Page{}, f.fail(ctx, "library search", q.Page, err)
	}
	return page, nil
}

func (f *Fetcher) fail(ctx context.Context, op string, page int, err error) error {
	f.log.ErrorContext(ctx, "directory fetch failed",
		slog.String("op", op),
		slog.Int("page", page),
		slog.String("error", err.Error()),
	)
	return domain.NewFetchError(op, page, err)
}
