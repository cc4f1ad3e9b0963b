package domain

import (
	"slices"
	"strconv"
	"strings"
)

// Range is an inclusive numeric bound. A nil side is unbounded.
type Range struct {
	Min *float64
	Max *float64
}

// IsSet reports whether either bound is present.
func (r Range) IsSet() bool { return r.Min != nil || r.Max != nil }

// Contains reports whether v lies within the bounds.
func (r Range) Contains(v float64) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// FilterSet is the set of attribute filters the user has applied.
// A zero field means "no constraint"; whitespace-only strings count as zero.
type FilterSet struct {
	Category Category
	Role     string
	Location string
	Gender   string

	Age      Range
	Height   Range
	Weight   Range
	Chest    Range
	Waist    Range
	Hips     Range
	ShoeSize Range

	SkinTone  string
	HairColor string
	EyeColor  string

	Nationalities []string

	UnionMember     *bool
	WillingToTravel *bool
	TravelReady     *bool

	Skills    []string
	Languages []string
}

// IsEmpty reports whether no filter holds an active value.
func (f FilterSet) IsEmpty() bool {
	if active(string(f.Category)) || active(f.Role) || active(f.Location) || active(f.Gender) {
		return false
	}
	for _, r := range f.ranges() {
		if r.value.IsSet() {
			return false
		}
	}
	if active(f.SkinTone) || active(f.HairColor) || active(f.EyeColor) {
		return false
	}
	if f.UnionMember != nil || f.WillingToTravel != nil || f.TravelReady != nil {
		return false
	}
	return len(activeList(f.Nationalities)) == 0 &&
		len(activeList(f.Skills)) == 0 &&
		len(activeList(f.Languages)) == 0
}

type namedRange struct {
	name  string
	value Range
}

// ranges lists the numeric filters in evaluation order.
func (f FilterSet) ranges() []namedRange {
	return []namedRange{
		{"age", f.Age},
		{"height", f.Height},
		{"weight", f.Weight},
		{"chest", f.Chest},
		{"waist", f.Waist},
		{"hips", f.Hips},
		{"shoe_size", f.ShoeSize},
	}
}

// CanonicalKey renders the active filters as a deterministic string.
// Two filter sets with the same effective constraints share a key.
func (f FilterSet) CanonicalKey() string {
	var parts []string
	add := func(name, value string) {
		if value = strings.ToLower(strings.TrimSpace(value)); value != "" {
			parts = append(parts, name+"="+value)
		}
	}

	add("category", string(f.Category))
	add("role", f.Role)
	add("location", f.Location)
	add("gender", f.Gender)
	for _, r := range f.ranges() {
		if r.value.Min != nil {
			add(r.name+"_min", formatFloat(*r.value.Min))
		}
		if r.value.Max != nil {
			add(r.name+"_max", formatFloat(*r.value.Max))
		}
	}
	add("skin_tone", f.SkinTone)
	add("hair_color", f.HairColor)
	add("eye_color", f.EyeColor)
	add("nationality", canonicalList(f.Nationalities))
	if f.UnionMember != nil {
		add("union_member", strconv.FormatBool(*f.UnionMember))
	}
	if f.WillingToTravel != nil {
		add("willing_to_travel", strconv.FormatBool(*f.WillingToTravel))
	}
	if f.TravelReady != nil {
		add("travel_ready", strconv.FormatBool(*f.TravelReady))
	}
	add("skills", canonicalList(f.Skills))
	add("languages", canonicalList(f.Languages))

	return strings.Join(parts, "&")
}

// Matches evaluates e against f. Category and role are hard filters; every
// other attribute only excludes an entity that has data contradicting it.
// Checks run cheapest and most selective first and stop at the first miss.
func Matches(e Entity, f FilterSet) bool {
	if f.IsEmpty() {
		return true
	}

	if c := strings.TrimSpace(string(f.Category)); c != "" && !strings.EqualFold(string(e.Category), c) {
		return false
	}
	if r := strings.TrimSpace(f.Role); r != "" && !strings.EqualFold(strings.TrimSpace(e.PrimaryRole), r) {
		return false
	}
	if !lenientContains(e.Location, f.Location) {
		return false
	}

	about := e.About
	if about == nil {
		about = &About{}
	}

	if !lenientEqual(about.Gender, f.Gender) {
		return false
	}

	measures := []*float64{about.Age, about.Height, about.Weight, about.Chest, about.Waist, about.Hips, about.ShoeSize}
	for i, r := range f.ranges() {
		if v := measures[i]; v != nil && r.value.IsSet() && !r.value.Contains(*v) {
			return false
		}
	}

	if !lenientContains(deref(about.SkinTone), f.SkinTone) ||
		!lenientContains(deref(about.HairColor), f.HairColor) ||
		!lenientContains(deref(about.EyeColor), f.EyeColor) {
		return false
	}

	if wanted := activeList(f.Nationalities); len(wanted) > 0 {
		if n := strings.TrimSpace(deref(about.Nationality)); n != "" && !anyContains([]string{n}, wanted) {
			return false
		}
	}

	if !lenientBool(about.UnionMember, f.UnionMember) ||
		!lenientBool(about.WillingToTravel, f.WillingToTravel) ||
		!lenientBool(about.TravelReady, f.TravelReady) {
		return false
	}

	if wanted := activeList(f.Skills); len(wanted) > 0 && len(activeList(e.Skills)) > 0 {
		if !anyContains(e.Skills, wanted) {
			return false
		}
	}
	if wanted := activeList(f.Languages); len(wanted) > 0 && len(activeList(about.Dialects)) > 0 {
		if !anyContains(about.Dialects, wanted) {
			return false
		}
	}

	return true
}

// Filter returns the entities of list that match f, preserving order.
func Filter(list []Entity, f FilterSet) []Entity {
	if f.IsEmpty() {
		return slices.Clone(list)
	}
	out := make([]Entity, 0, len(list))
	for _, e := range list {
		if Matches(e, f) {
			out = append(out, e)
		}
	}
	return out
}

func active(s string) bool { return strings.TrimSpace(s) != "" }

func activeList(list []string) []string {
	var out []string
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func canonicalList(list []string) string {
	items := activeList(list)
	for i := range items {
		items[i] = strings.ToLower(items[i])
	}
	slices.Sort(items)
	return strings.Join(slices.Compact(items), ",")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// lenientContains passes when the filter is inactive, the entity value is
// missing, or the entity value contains the filter value.
func lenientContains(have, want string) bool {
	want = strings.TrimSpace(want)
	have = strings.TrimSpace(have)
	if want == "" || have == "" {
		return true
	}
	return containsFold(have, want)
}

func lenientEqual(have *string, want string) bool {
	want = strings.TrimSpace(want)
	if want == "" || have == nil || strings.TrimSpace(*have) == "" {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(*have), want)
}

func lenientBool(have, want *bool) bool {
	if want == nil || have == nil {
		return true
	}
	return *have == *want
}

// anyContains reports whether some wanted value is a substring of some value in have.
func anyContains(have, wanted []string) bool {
	for _, w := range wanted {
		for _, h := range have {
			if containsFold(h, w) {
				return true
			}
		}
	}
	return false
}
