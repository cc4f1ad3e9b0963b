package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/crewdir/internal/domain"
)

type pageSource interface {
	Fetch(ctx context.Context, mode domain.Mode, q domain.SearchQuery) (domain.Page, error)
}

type roleSource interface {
	Known(ctx context.Context) (domain.RoleKeySet, error)
	Invalidate()
}

type membershipCoordinator interface {
	Refresh(ctx context.Context) error
	Toggle(ctx context.Context, entityID string) (domain.MutationOutcome, error)
	IsMember(entityID string) bool
}

// BrowserOptions configure a Browser.
type BrowserOptions struct {
	Mode     domain.Mode
	Sections []domain.Section
	// Section is the key of the initial section; the first section when empty.
	Section  string
	Search   string
	Filters  domain.FilterSet
	Debounce time.Duration
	Clock    clockwork.Clock
}

// View is a read-only snapshot of what the screen shows.
type View struct {
	Section domain.Section
	Search  string
	Filters domain.FilterSet
	Buckets []domain.Bucket
	// Loaded is the number of merged entities before the client-side filter.
	Loaded  int
	HasMore bool
	Loading bool
	// Err is the last page fetch failure of the current key.
	Err error
	// Notice is the last non-fatal message, such as a failed team mutation.
	Notice string
	// Pending is true while the known role set is not available, so role
	// classification is deferred.
	Pending bool
}

// Browser is the screen-facing façade of the directory engine. It owns the
// current section, search text and filters, and drives page loads through the
// cache. Search and filter edits are debounced; section changes are not.
type Browser struct {
	log       *slog.Logger
	pages     pageSource
	roles     roleSource
	team      membershipCoordinator
	cache     *PageCache
	debouncer *Debouncer
	mode      domain.Mode
	sections  []domain.Section

	mu         sync.Mutex
	base       context.Context
	section    domain.Section
	search     string
	filters    domain.FilterSet
	nextSearch string
	nextFilter domain.FilterSet
	gen        uint64
	known      domain.RoleKeySet
	notice     string
	// loads counts running page loads per generation; running is their total.
	loads   map[uint64]int
	running int
	idle    *sync.Cond
}

// NewBrowser creates a Browser. team may be nil for guests.
func NewBrowser(
	logger *slog.Logger,
	pages pageSource,
	roles roleSource,
	team membershipCoordinator,
	cache *PageCache,
	opts BrowserOptions,
) (*Browser, error) {
	sections := opts.Sections
	if len(sections) == 0 {
		sections = DefaultSections()
	}
	section := sections[0]
	if opts.Section != "" {
		s, ok := FindSection(sections, opts.Section)
		if !ok {
			return nil, domain.NewValidationError("section", fmt.Sprintf("unknown section %q", opts.Section))
		}
		section = s
	}

	mode := opts.Mode
	if !mode.IsValid() {
		mode = domain.ModeGuest
	}
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	b := &Browser{
		log:        logger.With("service", "browser"),
		pages:      pages,
		roles:      roles,
		team:       team,
		cache:      cache,
		debouncer:  NewDebouncer(clock, opts.Debounce),
		mode:       mode,
		sections:   sections,
		base:       context.Background(),
		section:    section,
		search:     opts.Search,
		filters:    opts.Filters,
		nextSearch: opts.Search,
		nextFilter: opts.Filters,
		known:      domain.RoleKeySet{},
		loads:      make(map[uint64]int),
	}
	b.idle = sync.NewCond(&b.mu)
	return b, nil
}

// Open loads the role catalog and the team list in parallel, then the first
// page of the initial section. ctx also bounds loads started later by
// debounced edits. Role and team failures are not fatal.
func (b *Browser) Open(ctx context.Context) error {
	b.mu.Lock()
	b.base = ctx
	b.mu.Unlock()

	var g errgroup.Group
	g.Go(func() error {
		b.loadRoles(ctx)
		return nil
	})
	if b.team != nil {
		g.Go(func() error {
			if err := b.team.Refresh(ctx); err != nil {
				b.log.WarnContext(ctx, "team load failed", slog.String("error", err.Error()))
				b.setNotice(fmt.Sprintf("team list unavailable: %v", err))
			}
			return nil
		})
	}
	_ = g.Wait()

	return b.reload(ctx)
}

// Mode returns the backend mode the browser fetches with.
func (b *Browser) Mode() domain.Mode { return b.mode }

// Sections returns the browsable sections.
func (b *Browser) Sections() []domain.Section {
	return append([]domain.Section(nil), b.sections...)
}

// Key returns the cache key currently in view.
func (b *Browser) Key() CacheKey {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.keyLocked()
}

// SetSection switches section immediately and loads its first page.
func (b *Browser) SetSection(ctx context.Context, key string) error {
	s, ok := FindSection(b.sections, key)
	if !ok {
		return domain.NewValidationError("section", fmt.Sprintf("unknown section %q", key))
	}

	b.mu.Lock()
	if s.Key == b.section.Key {
		b.mu.Unlock()
		return nil
	}
	b.section = s
	b.gen++
	b.mu.Unlock()

	return b.reload(ctx)
}

// SetSearch schedules a search text change after the quiet period.
func (b *Browser) SetSearch(text string) {
	b.mu.Lock()
	b.nextSearch = text
	b.mu.Unlock()
	b.debouncer.Trigger(b.applyPending)
}

// SetFilters schedules a filter change after the quiet period.
func (b *Browser) SetFilters(f domain.FilterSet) {
	b.mu.Lock()
	b.nextFilter = f
	b.mu.Unlock()
	b.debouncer.Trigger(b.applyPending)
}

// Apply applies a pending search or filter edit now instead of waiting for
// the quiet period.
func (b *Browser) Apply() {
	b.debouncer.Flush()
}

// applyPending re-keys the view when the debounced input differs from the
// applied one. It runs on the debouncer's goroutine or in Apply.
func (b *Browser) applyPending() {
	b.mu.Lock()
	before := b.keyLocked().String()
	b.search = b.nextSearch
	b.filters = b.nextFilter
	if b.keyLocked().String() == before {
		b.mu.Unlock()
		return
	}
	b.gen++
	ctx := b.base
	b.mu.Unlock()

	if err := b.reload(ctx); err != nil {
		b.log.DebugContext(ctx, "debounced load failed", slog.String("error", err.Error()))
	}
}

// LoadMore fetches the next page of the current key. It does nothing while
// a load is running or when the server reported no more pages. After a failed
// page it retries that page.
func (b *Browser) LoadMore(ctx context.Context) error {
	b.mu.Lock()
	if b.loads[b.gen] > 0 {
		b.mu.Unlock()
		return nil
	}
	key := b.keyLocked()
	gen := b.gen
	b.mu.Unlock()

	entry, _ := b.cache.Entry(key)
	if !entry.HasMore && entry.Err == nil {
		return nil
	}
	return b.load(ctx, key, gen, entry.NextPage, false)
}

// Refresh truncates the current entry to its first page and refetches it.
// It starts a new generation, so pages still in flight from before the
// refresh are discarded. The role catalog and team list are reloaded too.
// A failed refetch keeps the previous first page visible.
func (b *Browser) Refresh(ctx context.Context) error {
	b.roles.Invalidate()

	var g errgroup.Group
	g.Go(func() error {
		b.loadRoles(ctx)
		return nil
	})
	if b.team != nil {
		g.Go(func() error {
			if err := b.team.Refresh(ctx); err != nil {
				b.log.WarnContext(ctx, "team refresh failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}
	_ = g.Wait()

	b.mu.Lock()
	b.gen++
	key := b.keyLocked()
	gen := b.gen
	b.cache.ResetToFirstPage(key)
	b.mu.Unlock()

	return b.load(ctx, key, gen, 1, true)
}

// ToggleMembership adds or removes entityID from the acting user's team.
// A failure is also kept as the view's notice.
func (b *Browser) ToggleMembership(ctx context.Context, entityID string) (domain.MutationOutcome, error) {
	if b.team == nil || b.mode != domain.ModeAuthenticated {
		return domain.OutcomeIgnored, fmt.Errorf("toggle membership: %w", domain.ErrUnauthorized)
	}

	outcome, err := b.team.Toggle(ctx, entityID)
	if err != nil {
		var mErr *domain.MutationError
		if errors.As(err, &mErr) {
			b.setNotice(mErr.Error())
		}
		return outcome, err
	}
	return outcome, nil
}

// IsMember reports whether entityID is on the acting user's team.
func (b *Browser) IsMember(entityID string) bool {
	if b.team == nil {
		return false
	}
	return b.team.IsMember(entityID)
}

// View builds the current bucketed view from the cache.
func (b *Browser) View() View {
	b.mu.Lock()
	key := b.keyLocked()
	section := b.section
	filters := b.filters
	known := b.known
	loading := b.loads[b.gen] > 0
	v := View{
		Section: section,
		Search:  b.search,
		Filters: filters,
		Loading: loading,
		Notice:  b.notice,
		Pending: len(known) == 0,
	}
	b.mu.Unlock()

	entry, _ := b.cache.Entry(key)
	v.Loaded = len(entry.Entities)
	v.HasMore = entry.HasMore
	v.Err = entry.Err
	v.Buckets = Assemble(domain.Filter(entry.Entities, filters), section, known)
	return v
}

// ClearNotice drops the current notice.
func (b *Browser) ClearNotice() {
	b.setNotice("")
}

// Wait blocks until no page load is running. A debounced edit whose quiet
// period has not elapsed yet is not waited for; call Apply first.
func (b *Browser) Wait() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for b.running > 0 {
		b.idle.Wait()
	}
}

// Close drops pending debounced edits.
func (b *Browser) Close() {
	b.debouncer.Stop()
}

// reload loads page 1 of the current key unless it is already cached.
func (b *Browser) reload(ctx context.Context) error {
	b.mu.Lock()
	key := b.keyLocked()
	gen := b.gen
	b.mu.Unlock()

	if entry, ok := b.cache.Entry(key); ok && entry.Pages > 0 {
		return nil
	}
	return b.load(ctx, key, gen, 1, false)
}

// load fetches one page and merges it unless the key was changed or
// refreshed while the request was in flight.
func (b *Browser) load(ctx context.Context, key CacheKey, gen uint64, page int, force bool) error {
	b.mu.Lock()
	b.loads[gen]++
	b.running++
	b.mu.Unlock()

	q := domain.SearchQuery{
		Page:     page,
		Limit:    b.cache.PageSize(),
		Search:   key.Search,
		Category: b.categoryOf(key.Section),
		Filters:  key.Filters,
	}
	fetch := func(ctx context.Context, page int) (domain.Page, error) {
		q.Page = page
		return b.pages.Fetch(ctx, key.Mode, q)
	}

	var (
		result domain.Page
		err    error
	)
	if force {
		result, err = b.cache.Fetch(ctx, key, page, fetch)
	} else {
		result, err = b.cache.GetOrFetch(ctx, key, page, fetch)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	defer b.doneLocked(gen)

	if gen != b.gen {
		b.log.DebugContext(ctx, "discarding page from superseded load",
			slog.String("key", key.String()),
			slog.Int("page", page),
		)
		return nil
	}

	if err != nil {
		b.cache.Fail(key, err)
		return err
	}
	b.cache.AppendPage(key, result)
	return nil
}

func (b *Browser) doneLocked(gen uint64) {
	b.loads[gen]--
	if b.loads[gen] <= 0 {
		delete(b.loads, gen)
	}
	b.running--
	if b.running == 0 {
		b.idle.Broadcast()
	}
}

func (b *Browser) loadRoles(ctx context.Context) {
	known, err := b.roles.Known(ctx)
	if err != nil && !errors.Is(err, domain.ErrClassificationPending) {
		b.log.WarnContext(ctx, "roles unavailable, classification pending",
			slog.String("error", err.Error()),
		)
	}
	if known == nil {
		known = domain.RoleKeySet{}
	}

	b.mu.Lock()
	b.known = known
	b.mu.Unlock()
}

func (b *Browser) setNotice(msg string) {
	b.mu.Lock()
	b.notice = msg
	b.mu.Unlock()
}

func (b *Browser) categoryOf(sectionKey string) domain.Category {
	if s, ok := FindSection(b.sections, sectionKey); ok {
		return s.Category
	}
	return ""
}

func (b *Browser) keyLocked() CacheKey {
	return NewCacheKey(b.section.Key, b.mode, b.search, b.filters)
}
