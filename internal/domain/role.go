package domain

import (
	"strings"
	"unicode/utf8"
)

// NormalizeRoleKey turns a free-text role label into a canonical key:
//   - ASCII letters are lower-cased, ASCII digits kept
//   - every run of other characters collapses into a single '_'
//   - leading and trailing runs are dropped unless they hold non-ASCII bytes
//
// "Director of Photography" and "director_of_photography" share a key, while
// "Café" ("caf_") stays apart from "Caf" ("caf"). A label with no ASCII
// alphanumerics yields "".
func NormalizeRoleKey(label string) string {
	var b strings.Builder
	b.Grow(len(label))
	pendingSep, nonASCII, alnum := false, false, false
	for i := 0; i < len(label); i++ {
		c := label[i]
		switch {
		case c >= 'A' && c <= 'Z':
			c += 'a' - 'A'
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		default:
			pendingSep = true
			if c >= utf8.RuneSelf {
				nonASCII = true
			}
			continue
		}
		if pendingSep && (b.Len() > 0 || nonASCII) {
			b.WriteByte('_')
		}
		pendingSep, nonASCII, alnum = false, false, true
		b.WriteByte(c)
	}
	if !alnum {
		return ""
	}
	if pendingSep && nonASCII {
		b.WriteByte('_')
	}
	return b.String()
}

// RoleKeySet is a set of normalized role keys.
type RoleKeySet map[string]struct{}

// NewRoleKeySet normalizes labels into a set, skipping labels with an empty key.
func NewRoleKeySet(labels ...string) RoleKeySet {
	set := make(RoleKeySet, len(labels))
	for _, l := range labels {
		set.Add(l)
	}
	return set
}

// Add normalizes label and inserts it.
func (s RoleKeySet) Add(label string) {
	if key := NormalizeRoleKey(label); key != "" {
		s[key] = struct{}{}
	}
}

// Has reports whether the normalized form of label is in the set.
func (s RoleKeySet) Has(label string) bool {
	_, ok := s[NormalizeRoleKey(label)]
	return ok
}

// Classify decides which role bucket an entity belongs to.
//
// Companies are always excluded. The explicit custom flag wins over the role.
// An entity whose role has no key, or any entity while known is still empty,
// is ClassPending: it must not fall into the custom bucket before roles load.
func Classify(e Entity, known RoleKeySet) Classification {
	if e.IsCompany() {
		return ClassCompanyExcluded
	}
	if e.IsCustom() {
		return ClassCustom
	}
	key := NormalizeRoleKey(e.PrimaryRole)
	if key == "" || len(known) == 0 {
		return ClassPending
	}
	if _, ok := known[key]; ok {
		return ClassKnown
	}
	return ClassCustom
}

// RoleKeyEquals is the strict rule used for exact-role buckets: keys must be equal.
func RoleKeyEquals(role, label string) bool {
	key := NormalizeRoleKey(role)
	return key != "" && key == NormalizeRoleKey(label)
}

// RoleMatchesItem is the lenient rule used for section items: the keys match
// when equal or when either contains the other.
func RoleMatchesItem(role, item string) bool {
	roleKey := NormalizeRoleKey(role)
	itemKey := NormalizeRoleKey(item)
	if roleKey == "" || itemKey == "" {
		return false
	}
	return roleKey == itemKey ||
		strings.Contains(itemKey, roleKey) ||
		strings.Contains(roleKey, itemKey)
}
