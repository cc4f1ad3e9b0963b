package directory

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/heartmarshall/crewdir/internal/domain"
)

// PageFunc fetches one page of a cache key from the network.
type PageFunc func(ctx context.Context, page int) (domain.Page, error)

// Entry is a read-only snapshot of a cache entry.
type Entry struct {
	// Entities is the merged, duplicate-free list in first-seen order.
	Entities []domain.Entity
	Pages    int
	NextPage int
	HasMore  bool
	// Err is the last fetch failure. Pagination stops until a retry succeeds.
	Err error
}

type entry struct {
	pages   []domain.Page
	ids     map[string]struct{}
	merged  []domain.Entity
	hasMore bool
	err     error
}

func newEntry() *entry {
	return &entry{ids: make(map[string]struct{}), hasMore: true}
}

// merge appends entities whose ids are not present yet, in server order.
func (e *entry) merge(entities []domain.Entity) {
	for _, ent := range entities {
		if _, ok := e.ids[ent.ID]; ok {
			continue
		}
		e.ids[ent.ID] = struct{}{}
		e.merged = append(e.merged, ent)
	}
}

func (e *entry) reset(pages []domain.Page) {
	e.pages = pages
	e.ids = make(map[string]struct{})
	e.merged = nil
	for _, p := range pages {
		e.merge(p.Entities)
	}
}

func (e *entry) snapshot() Entry {
	return Entry{
		Entities: append([]domain.Entity(nil), e.merged...),
		Pages:    len(e.pages),
		NextPage: len(e.pages) + 1,
		HasMore:  e.hasMore && e.err == nil,
		Err:      e.err,
	}
}

// PageCache holds the ordered pages fetched for each cache key. The most
// recently used keys are kept; older ones are evicted.
type PageCache struct {
	pageSize int

	mu      sync.Mutex
	entries *lru.Cache[string, *entry]
	flight  singleflight.Group
}

// NewPageCache creates a cache holding at most maxKeys entries.
func NewPageCache(pageSize, maxKeys int) (*PageCache, error) {
	entries, err := lru.New[string, *entry](maxKeys)
	if err != nil {
		return nil, fmt.Errorf("page cache: %w", err)
	}
	return &PageCache{pageSize: pageSize, entries: entries}, nil
}

// PageSize is the number of entities requested per page.
func (c *PageCache) PageSize() int { return c.pageSize }

// Entry returns a snapshot of the entry for key.
func (c *PageCache) Entry(key CacheKey) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries.Get(key.String())
	if !ok {
		return Entry{NextPage: 1, HasMore: true}, false
	}
	return e.snapshot(), true
}

// AppendPage merges page into the entry for key.
//
// Page 1 replaces the entry, so a refetched first page supersedes the old one.
// Any other page is merged only when it directly follows the last merged
// page; repeated pages and pages past a gap are ignored.
func (c *PageCache) AppendPage(key CacheKey, page domain.Page) Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entryLocked(key)
	switch {
	case page.Number <= 1:
		e.reset([]domain.Page{page})
	case page.Number != len(e.pages)+1:
		return e.snapshot()
	default:
		e.pages = append(e.pages, page)
		e.merge(page.Entities)
	}

	e.hasMore = page.HasMore(c.limitOf(page))
	e.err = nil
	return e.snapshot()
}

// Fail records a fetch failure for key. Loaded pages stay visible.
func (c *PageCache) Fail(key CacheKey, err error) Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entryLocked(key)
	e.err = err
	return e.snapshot()
}

// ResetToFirstPage truncates the entry back to exactly its first page.
// It is used before a refresh so that a failed refetch keeps page 1 intact.
func (c *PageCache) ResetToFirstPage(key CacheKey) Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries.Get(key.String())
	if !ok {
		return Entry{NextPage: 1, HasMore: true}
	}
	if len(e.pages) > 1 {
		e.reset(e.pages[:1])
	}
	if len(e.pages) == 1 {
		e.hasMore = e.pages[0].HasMore(c.limitOf(e.pages[0]))
	}
	e.err = nil
	return e.snapshot()
}

// Invalidate drops the entry for key.
func (c *PageCache) Invalidate(key CacheKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Remove(key.String())
}

// Len returns the number of cached keys.
func (c *PageCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// GetOrFetch returns page from the entry without a network call when it was
// already fetched; otherwise it calls fetch. The result is not merged: callers
// check that the key is still current and then call AppendPage.
func (c *PageCache) GetOrFetch(ctx context.Context, key CacheKey, page int, fetch PageFunc) (domain.Page, error) {
	c.mu.Lock()
	if e, ok := c.entries.Get(key.String()); ok && page >= 1 && page <= len(e.pages) {
		p := e.pages[page-1]
		c.mu.Unlock()
		return p, nil
	}
	c.mu.Unlock()

	return c.Fetch(ctx, key, page, fetch)
}

// Fetch always calls fetch. Concurrent identical requests share one call.
func (c *PageCache) Fetch(ctx context.Context, key CacheKey, page int, fetch PageFunc) (domain.Page, error) {
	v, err, _ := c.flight.Do(key.String()+"#"+strconv.Itoa(page), func() (any, error) {
		return fetch(ctx, page)
	})
	if err != nil {
		return domain.Page{}, err
	}
	return v.(domain.Page), nil
}

func (c *PageCache) entryLocked(key CacheKey) *entry {
	k := key.String()
	if e, ok := c.entries.Get(k); ok {
		return e
	}
	e := newEntry()
	c.entries.Add(k, e)
	return e
}

func (c *PageCache) limitOf(p domain.Page) int {
	if p.Limit > 0 {
		return p.Limit
	}
	return c.pageSize
}
