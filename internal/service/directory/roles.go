package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/graph-gophers/dataloader/v7"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/crewdir/internal/domain"
)

const (
	roleBatchCapacity = 8
	roleBatchWait     = 2 * time.Millisecond
)

type roleLister interface {
	ListRoles(ctx context.Context, category domain.Category) ([]domain.Role, error)
}

// RoleCatalog loads the known role labels per category. Loads are batched and
// cached until Invalidate is called; failed loads are not cached.
type RoleCatalog struct {
	log        *slog.Logger
	categories []domain.Category
	loader     *dataloader.Loader[domain.Category, []domain.Role]
}

// NewRoleCatalog creates a catalog over the given categories, talent and crew
// when none are given.
func NewRoleCatalog(logger *slog.Logger, api roleLister, categories ...domain.Category) *RoleCatalog {
	if len(categories) == 0 {
		categories = []domain.Category{domain.CategoryTalent, domain.CategoryCrew}
	}
	c := &RoleCatalog{
		log:        logger.With("service", "roles"),
		categories: categories,
	}
	c.loader = dataloader.NewBatchedLoader(
		newRolesBatchFn(api),
		dataloader.WithWait[domain.Category, []domain.Role](roleBatchWait),
		dataloader.WithBatchCapacity[domain.Category, []domain.Role](roleBatchCapacity),
	)
	return c
}

// newRolesBatchFn loads every requested category concurrently. The endpoint
// takes one category per call, so a batch fans out.
func newRolesBatchFn(api roleLister) dataloader.BatchFunc[domain.Category, []domain.Role] {
	return func(ctx context.Context, keys []domain.Category) []*dataloader.Result[[]domain.Role] {
		results := make([]*dataloader.Result[[]domain.Role], len(keys))

		var g errgroup.Group
		for i, category := range keys {
			g.Go(func() error {
				roles, err := api.ListRoles(ctx, category)
				results[i] = &dataloader.Result[[]domain.Role]{Data: roles, Error: err}
				return nil
			})
		}
		_ = g.Wait()

		return results
	}
}

// Known returns the union of role keys of all categories.
//
// A failed category makes the whole set unusable: a partial set would push
// that category's roles into the custom bucket. In that case Known returns an
// empty set and the error. An empty catalog yields domain.ErrClassificationPending.
func (c *RoleCatalog) Known(ctx context.Context) (domain.RoleKeySet, error) {
	lists, errs := c.loader.LoadMany(ctx, c.categories)()

	var failed []error
	for i, err := range errs {
		if err == nil {
			continue
		}
		c.loader.Clear(ctx, c.categories[i])
		failed = append(failed, fmt.Errorf("%s: %w", c.categories[i], err))
	}
	if len(failed) > 0 {
		err := errors.Join(failed...)
		c.log.WarnContext(ctx, "role catalog load failed", slog.String("error", err.Error()))
		return domain.RoleKeySet{}, fmt.Errorf("load roles: %w", err)
	}

	known := domain.RoleKeySet{}
	for _, roles := range lists {
		for _, r := range roles {
			known.Add(r.Name)
		}
	}
	if len(known) == 0 {
		return known, domain.ErrClassificationPending
	}

	c.log.DebugContext(ctx, "role catalog loaded", slog.Int("roles", len(known)))
	return known, nil
}

// Roles returns the role list of one category.
func (c *RoleCatalog) Roles(ctx context.Context, category domain.Category) ([]domain.Role, error) {
	roles, err := c.loader.Load(ctx, category)()
	if err != nil {
		c.loader.Clear(ctx, category)
		return nil, fmt.Errorf("load roles %s: %w", category, err)
	}
	return roles, nil
}

// Invalidate drops every cached role list so the next call reloads them.
func (c *RoleCatalog) Invalidate() {
	c.loader.ClearAll()
}
