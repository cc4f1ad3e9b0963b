package directory

import (
	"net/url"
	"strings"

	"github.com/heartmarshall/crewdir/internal/domain"
)

// CacheKey identifies one independent paginated result set. Changing any
// component yields a different key and a fresh, empty cache entry.
type CacheKey struct {
	Section string
	Mode    domain.Mode
	Search  string
	Filters domain.FilterSet
}

// NewCacheKey normalizes the search text, so edits that only change case or
// whitespace do not re-key.
func NewCacheKey(section string, mode domain.Mode, search string, filters domain.FilterSet) CacheKey {
	return CacheKey{
		Section: section,
		Mode:    mode,
		Search:  domain.NormalizeText(search),
		Filters: filters,
	}
}

// String is the map key of the entry. Filters contribute their canonical form.
func (k CacheKey) String() string {
	var b strings.Builder
	b.WriteString(url.QueryEscape(k.Section))
	b.WriteByte('|')
	b.WriteString(k.Mode.String())
	b.WriteByte('|')
	b.WriteString(url.QueryEscape(k.Search))
	b.WriteByte('|')
	b.WriteString(k.Filters.CanonicalKey())
	return b.String()
}
