package directory

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/heartmarshall/crewdir/internal/domain"
)

// ---------------------------------------------------------------------------
// Manual mocks (moq-style with func fields)
// ---------------------------------------------------------------------------

type mockDirectoryAPI struct {
	BrowseGuestFunc   func(ctx context.Context, q domain.SearchQuery) (domain.Page, error)
	SearchDirectFunc  func(ctx context.Context, q domain.SearchQuery) (domain.Page, error)
	SearchLibraryFunc func(ctx context.Context, q domain.SearchQuery) (domain.Page, error)

	mu    sync.Mutex
	calls []string
}

func (m *mockDirectoryAPI) record(op string) {
	m.mu.Lock()
	m.calls = append(m.calls, op)
	m.mu.Unlock()
}

func (m *mockDirectoryAPI) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockDirectoryAPI) BrowseGuest(ctx context.Context, q domain.SearchQuery) (domain.Page, error) {
	m.record("guest")
	return m.BrowseGuestFunc(ctx, q)
}

func (m *mockDirectoryAPI) SearchDirect(ctx context.Context, q domain.SearchQuery) (domain.Page, error) {
	m.record("direct")
	return m.SearchDirectFunc(ctx, q)
}

func (m *mockDirectoryAPI) SearchLibrary(ctx context.Context, q domain.SearchQuery) (domain.Page, error) {
	m.record("library")
	return m.SearchLibraryFunc(ctx, q)
}

type mockPageSource struct {
	FetchFunc func(ctx context.Context, mode domain.Mode, q domain.SearchQuery) (domain.Page, error)

	mu      sync.Mutex
	queries []domain.SearchQuery
}

func (m *mockPageSource) Fetch(ctx context.Context, mode domain.Mode, q domain.SearchQuery) (domain.Page, error) {
	m.mu.Lock()
	m.queries = append(m.queries, q)
	m.mu.Unlock()
	return m.FetchFunc(ctx, mode, q)
}

func (m *mockPageSource) Queries() []domain.SearchQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.SearchQuery(nil), m.queries...)
}

type mockRoleSource struct {
	KnownFunc      func(ctx context.Context) (domain.RoleKeySet, error)
	InvalidateFunc func()
}

func (m *mockRoleSource) Known(ctx context.Context) (domain.RoleKeySet, error) {
	return m.KnownFunc(ctx)
}

func (m *mockRoleSource) Invalidate() {
	if m.InvalidateFunc != nil {
		m.InvalidateFunc()
	}
}

type mockTeam struct {
	RefreshFunc  func(ctx context.Context) error
	ToggleFunc   func(ctx context.Context, entityID string) (domain.MutationOutcome, error)
	IsMemberFunc func(entityID string) bool
}

func (m *mockTeam) Refresh(ctx context.Context) error {
	if m.RefreshFunc == nil {
		return nil
	}
	return m.RefreshFunc(ctx)
}

func (m *mockTeam) Toggle(ctx context.Context, entityID string) (domain.MutationOutcome, error) {
	return m.ToggleFunc(ctx, entityID)
}

func (m *mockTeam) IsMember(entityID string) bool {
	if m.IsMemberFunc == nil {
		return false
	}
	return m.IsMemberFunc(entityID)
}

type mockRoleLister struct {
	ListRolesFunc func(ctx context.Context, category domain.Category) ([]domain.Role, error)

	mu    sync.Mutex
	calls map[domain.Category]int
}

func (m *mockRoleLister) ListRoles(ctx context.Context, category domain.Category) ([]domain.Role, error) {
	m.mu.Lock()
	if m.calls == nil {
		m.calls = make(map[domain.Category]int)
	}
	m.calls[category]++
	m.mu.Unlock()
	return m.ListRolesFunc(ctx, category)
}

func (m *mockRoleLister) CallCount(category domain.Category) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[category]
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func entity(id string, category domain.Category, role string) domain.Entity {
	return domain.Entity{ID: id, Name: "User " + id, Category: category, PrimaryRole: role}
}

func entitiesN(prefix string, n int) []domain.Entity {
	list := make([]domain.Entity, n)
	for i := range list {
		list[i] = entity(fmt.Sprintf("%s%d", prefix, i), domain.CategoryCrew, "Gaffer")
	}
	return list
}

func ids(list []domain.Entity) []string {
	out := make([]string, len(list))
	for i, e := range list {
		out[i] = e.ID
	}
	return out
}

func intPtr(v int) *int { return &v }

func f64(v float64) *float64 { return &v }

func str(s string) *string { return &s }

func staticRoles(labels ...string) *mockRoleSource {
	return &mockRoleSource{
		KnownFunc: func(context.Context) (domain.RoleKeySet, error) {
			return domain.NewRoleKeySet(labels...), nil
		},
	}
}
