package directory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/heartmarshall/crewdir/internal/domain"
)

func newTestCache(t *testing.T) *PageCache {
	t.Helper()
	c, err := NewPageCache(20, 8)
	require.NoError(t, err)
	return c
}

func testKey(section string) CacheKey {
	return NewCacheKey(section, domain.ModeGuest, "", domain.FilterSet{})
}

func page(number int, total *int, list ...domain.Entity) domain.Page {
	return domain.Page{Entities: list, Number: number, Limit: 20, TotalPages: total}
}

func TestNewPageCache_InvalidSize(t *testing.T) {
	t.Parallel()

	_, err := NewPageCache(20, 0)
	assert.Error(t, err)
}

func TestPageCache_MergeSkipsDuplicates(t *testing.T) {
	t.Parallel()

	c := newTestCache(t)
	key := testKey("directory")
	a, b, cc, d := entity("A", "crew", ""), entity("B", "crew", ""), entity("C", "crew", ""), entity("D", "crew", "")

	c.AppendPage(key, page(1, intPtr(3), a, b, cc))
	got := c.AppendPage(key, page(2, intPtr(3), cc, d))

	assert.Equal(t, []string{"A", "B", "C", "D"}, ids(got.Entities))
	assert.Equal(t, 2, got.Pages)
	assert.Equal(t, 3, got.NextPage)
	assert.True(t, got.HasMore)
}

func TestPageCache_MergeProperty(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		c, err := NewPageCache(5, 2)
		if err != nil {
			t.Fatal(err)
		}
		key := testKey("directory")

		pages := rapid.SliceOfN(rapid.SliceOfN(rapid.IntRange(0, 15), 0, 5), 1, 6).Draw(t, "pages")

		var want []string
		seen := map[string]bool{}
		var got Entry
		for i, p := range pages {
			list := make([]domain.Entity, len(p))
			for j, n := range p {
				id := fmt.Sprintf("e%d", n)
				list[j] = entity(id, domain.CategoryCrew, "")
				if !seen[id] {
					seen[id] = true
					want = append(want, id)
				}
			}
			got = c.AppendPage(key, domain.Page{Entities: list, Number: i + 1, Limit: 5})
		}

		if fmt.Sprint(ids(got.Entities)) != fmt.Sprint(want) {
			t.Fatalf("merged = %v, want %v", ids(got.Entities), want)
		}
	})
}

func TestPageCache_HasMore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		page domain.Page
		want bool
	}{
		{"total pages ahead", page(1, intPtr(5), entitiesN("a", 3)...), true},
		{"last of total pages", page(1, intPtr(1), entitiesN("a", 3)...), false},
		{"no total, full page", page(1, nil, entitiesN("a", 20)...), true},
		{"no total, short page", page(1, nil, entitiesN("a", 7)...), false},
		{"no total, empty page", page(1, nil), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newTestCache(t)
			got := c.AppendPage(testKey("directory"), tt.page)
			assert.Equal(t, tt.want, got.HasMore)
		})
	}
}

func TestPageCache_HasMoreUsesCacheLimitWhenPageHasNone(t *testing.T) {
	t.Parallel()

	c := newTestCache(t)
	p := domain.Page{Entities: entitiesN("a", 20), Number: 1}

	assert.True(t, c.AppendPage(testKey("directory"), p).HasMore)
}

func TestPageCache_RepeatedPageIgnored(t *testing.T) {
	t.Parallel()

	c := newTestCache(t)
	key := testKey("directory")
	c.AppendPage(key, page(1, intPtr(3), entity("A", "crew", "")))
	c.AppendPage(key, page(2, intPtr(3), entity("B", "crew", "")))
	got := c.AppendPage(key, page(2, intPtr(3), entity("X", "crew", "")))

	assert.Equal(t, []string{"A", "B"}, ids(got.Entities))
	assert.Equal(t, 2, got.Pages)
}

func TestPageCache_PageAfterGapIgnored(t *testing.T) {
	t.Parallel()

	c := newTestCache(t)
	key := testKey("directory")
	c.AppendPage(key, page(1, intPtr(5), entity("A", "crew", "")))
	got := c.AppendPage(key, page(3, intPtr(5), entity("C", "crew", "")))

	assert.Equal(t, []string{"A"}, ids(got.Entities))
	assert.Equal(t, 1, got.Pages)
	assert.Equal(t, 2, got.NextPage)
	assert.True(t, got.HasMore)

	got = c.AppendPage(key, page(2, intPtr(5), entity("B", "crew", "")))
	assert.Equal(t, []string{"A", "B"}, ids(got.Entities))
	assert.Equal(t, 3, got.NextPage)
}

func TestPageCache_FirstPageReplacesEntry(t *testing.T) {
	t.Parallel()

	c := newTestCache(t)
	key := testKey("directory")
	c.AppendPage(key, page(1, intPtr(3), entity("A", "crew", "")))
	c.AppendPage(key, page(2, intPtr(3), entity("B", "crew", "")))
	got := c.AppendPage(key, page(1, intPtr(3), entity("Z", "crew", "")))

	assert.Equal(t, []string{"Z"}, ids(got.Entities))
	assert.Equal(t, 2, got.NextPage)
}

func TestPageCache_ResetToFirstPage(t *testing.T) {
	t.Parallel()

	c := newTestCache(t)
	key := testKey("directory")
	c.AppendPage(key, page(1, intPtr(3), entity("A", "crew", ""), entity("B", "crew", "")))
	c.AppendPage(key, page(2, intPtr(3), entity("B", "crew", ""), entity("C", "crew", "")))
	c.Fail(key, errors.New("boom"))

	got := c.ResetToFirstPage(key)

	assert.Equal(t, []string{"A", "B"}, ids(got.Entities))
	assert.Equal(t, 1, got.Pages)
	assert.Equal(t, 2, got.NextPage)
	assert.True(t, got.HasMore)
	assert.NoError(t, got.Err)

	// The id set was rebuilt: C is new again.
	got = c.AppendPage(key, page(2, intPtr(3), entity("C", "crew", "")))
	assert.Equal(t, []string{"A", "B", "C"}, ids(got.Entities))
}

func TestPageCache_ResetToFirstPage_UnknownKey(t *testing.T) {
	t.Parallel()

	c := newTestCache(t)
	got := c.ResetToFirstPage(testKey("directory"))

	assert.Empty(t, got.Entities)
	assert.Equal(t, 1, got.NextPage)
	assert.Equal(t, 0, c.Len())
}

func TestPageCache_FailOnFirstPage(t *testing.T) {
	t.Parallel()

	c := newTestCache(t)
	key := testKey("directory")
	fetchErr := domain.NewFetchError("guest browse", 1, errors.New("timeout"))

	got := c.Fail(key, fetchErr)

	assert.Empty(t, got.Entities)
	assert.False(t, got.HasMore)
	assert.Equal(t, 1, got.NextPage)
	assert.ErrorIs(t, got.Err, domain.ErrFetch)
}

func TestPageCache_FailOnLaterPageKeepsPages(t *testing.T) {
	t.Parallel()

	c := newTestCache(t)
	key := testKey("directory")
	c.AppendPage(key, page(1, intPtr(3), entity("A", "crew", "")))

	got := c.Fail(key, errors.New("boom"))
	assert.Equal(t, []string{"A"}, ids(got.Entities))
	assert.False(t, got.HasMore)
	assert.Equal(t, 2, got.NextPage)

	got = c.AppendPage(key, page(2, intPtr(3), entity("B", "crew", "")))
	assert.NoError(t, got.Err)
	assert.True(t, got.HasMore)
}

func TestPageCache_GetOrFetch_CachedPageSkipsNetwork(t *testing.T) {
	t.Parallel()

	c := newTestCache(t)
	key := testKey("directory")
	c.AppendPage(key, page(1, intPtr(2), entity("A", "crew", "")))

	calls := 0
	fetch := func(_ context.Context, n int) (domain.Page, error) {
		calls++
		return page(n, intPtr(2), entity("B", "crew", "")), nil
	}

	p, err := c.GetOrFetch(context.Background(), key, 1, fetch)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, ids(p.Entities))
	assert.Equal(t, 0, calls)

	p, err = c.GetOrFetch(context.Background(), key, 2, fetch)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, ids(p.Entities))
	assert.Equal(t, 1, calls)

	// Fetch always goes to the network.
	_, err = c.Fetch(context.Background(), key, 1, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestPageCache_GetOrFetch_Error(t *testing.T) {
	t.Parallel()

	c := newTestCache(t)
	wantErr := errors.New("down")

	_, err := c.GetOrFetch(context.Background(), testKey("directory"), 1, func(context.Context, int) (domain.Page, error) {
		return domain.Page{}, wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestPageCache_KeysAreIndependent(t *testing.T) {
	t.Parallel()

	c := newTestCache(t)
	base := NewCacheKey("talent", domain.ModeGuest, "ann", domain.FilterSet{})
	other := NewCacheKey("talent", domain.ModeGuest, "anna", domain.FilterSet{})
	c.AppendPage(base, page(1, nil, entity("A", "talent", "")))

	_, ok := c.Entry(other)
	assert.False(t, ok)

	entry, ok := c.Entry(base)
	require.True(t, ok)
	assert.Equal(t, []string{"A"}, ids(entry.Entities))
}

func TestPageCache_EvictsLeastRecentKey(t *testing.T) {
	t.Parallel()

	c, err := NewPageCache(20, 2)
	require.NoError(t, err)

	c.AppendPage(testKey("one"), page(1, nil))
	c.AppendPage(testKey("two"), page(1, nil))
	_, _ = c.Entry(testKey("one"))
	c.AppendPage(testKey("three"), page(1, nil))

	assert.Equal(t, 2, c.Len())
	_, ok := c.Entry(testKey("two"))
	assert.False(t, ok)
	_, ok = c.Entry(testKey("one"))
	assert.True(t, ok)
}

func TestPageCache_Invalidate(t *testing.T) {
	t.Parallel()

	c := newTestCache(t)
	key := testKey("directory")
	c.AppendPage(key, page(1, nil))
	c.Invalidate(key)

	_, ok := c.Entry(key)
	assert.False(t, ok)
}

func TestCacheKey_String(t *testing.T) {
	t.Parallel()

	female := domain.FilterSet{Gender: "female"}
	base := NewCacheKey("talent", domain.ModeGuest, "ann", female)
	pair := NewCacheKey("talent", domain.ModeGuest, "Steady  Cam ", female)

	tests := []struct {
		name string
		key  CacheKey
		same bool
	}{
		{"identical", NewCacheKey("talent", domain.ModeGuest, "ann", domain.FilterSet{Gender: "female"}), true},
		{"surrounding whitespace", NewCacheKey("talent", domain.ModeGuest, "  ann ", female), true},
		{"case", NewCacheKey("talent", domain.ModeGuest, "ANN", female), true},
		{"section", NewCacheKey("directory", domain.ModeGuest, "ann", female), false},
		{"mode", NewCacheKey("talent", domain.ModeAuthenticated, "ann", female), false},
		{"search", NewCacheKey("talent", domain.ModeGuest, "anna", female), false},
		{"filters", NewCacheKey("talent", domain.ModeGuest, "ann", domain.FilterSet{Gender: "male"}), false},
		{"separator in search", NewCacheKey("talent|guest", domain.ModeGuest, "ann", female), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.same, base.String() == tt.key.String())
		})
	}

	assert.Equal(t, "steady cam", pair.Search)
	assert.Equal(t, pair.String(), NewCacheKey("talent", domain.ModeGuest, "steady cam", female).String())
}
