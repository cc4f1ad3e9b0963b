package crewapi

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/crewdir/internal/domain"
)

// BrowseGuest searches the directory through the guest-browsing endpoint.
func (c *Client) BrowseGuest(ctx context.Context, q domain.SearchQuery) (domain.Page, error) {
	return c.search(ctx, "guest browse", c.paths.GuestBrowse, searchParamDirect, q)
}

// SearchDirect searches through the authenticated direct endpoint.
func (c *Client) SearchDirect(ctx context.Context, q domain.SearchQuery) (domain.Page, error) {
	return c.search(ctx, "direct search", c.paths.DirectSearch, searchParamDirect, q)
}

// SearchLibrary searches through the general client-library endpoint.
func (c *Client) SearchLibrary(ctx context.Context, q domain.SearchQuery) (domain.Page, error) {
	return c.search(ctx, "library search", c.paths.LibrarySearch, searchParamLibrary, q)
}

func (c *Client) search(ctx context.Context, op, path, searchParam string, q domain.SearchQuery) (domain.Page, error) {
	body, err := c.get(ctx, path, encodeQuery(q, searchParam))
	if err != nil {
		return domain.Page{}, fmt.Errorf("crewapi: %s: %w", op, err)
	}

	page, err := decodePage(body, q.Page, q.Limit)
	if err != nil {
		return domain.Page{}, fmt.Errorf("crewapi: %s: %w", op, err)
	}

	c.log.DebugContext(ctx, "directory page",
		slog.String("op", op),
		slog.Int("page", q.Page),
		slog.Int("entities", len(page.Entities)),
	)

	return page, nil
}
