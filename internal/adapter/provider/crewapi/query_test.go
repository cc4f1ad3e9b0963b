package crewapi

import (
	"testing"

	"github.com/heartmarshall/crewdir/internal/domain"
)

func TestEncodeQuery_StripsEmptyValues(t *testing.T) {
	t.Parallel()

	v := encodeQuery(domain.SearchQuery{Page: 1, Limit: 20, Filters: domain.FilterSet{Role: "  ", Skills: []string{""}}}, searchParamDirect)

	if got := v.Encode(); got != "limit=20&page=1" {
		t.Errorf("Encode() = %q, want %q", got, "limit=20&page=1")
	}
}

func TestEncodeQuery_FullFilterSet(t *testing.T) {
	t.Parallel()

	lo, hi := 20.0, 30.5
	yes := true
	q := domain.SearchQuery{
		Page:     2,
		Limit:    20,
		Search:   "ana",
		Category: domain.CategoryTalent,
		Filters: domain.FilterSet{
			Gender:        "female",
			Age:           domain.Range{Min: &lo, Max: &hi},
			ShoeSize:      domain.Range{Max: &hi},
			Nationalities: []string{"Brazilian", "Portuguese"},
			UnionMember:   &yes,
			Skills:        []string{"riding"},
		},
	}

	v := encodeQuery(q, searchParamLibrary)

	checks := map[string]string{
		"q":             "ana",
		"category":      "talent",
		"gender":        "female",
		"age_min":       "20",
		"age_max":       "30.5",
		"shoe_size_max": "30.5",
		"union_member":  "true",
		"skills":        "riding",
	}
	for key, want := range checks {
		if got := v.Get(key); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
	if v.Has("search") {
		t.Error("library surface must not send 'search'")
	}
	if v.Has("shoe_size_min") {
		t.Error("unset range bound must not be sent")
	}
	if got := v["nationality"]; len(got) != 2 {
		t.Errorf("nationality = %v, want two repeated values", got)
	}
}

func TestEncodeQuery_FilterCategoryWins(t *testing.T) {
	t.Parallel()

	q := domain.SearchQuery{Category: domain.CategoryTalent, Filters: domain.FilterSet{Category: domain.CategoryCrew}}
	if got := encodeQuery(q, searchParamDirect).Get("category"); got != "crew" {
		t.Errorf("category = %q, want crew", got)
	}
}

func TestEncodeQuery_NormalizesSearch(t *testing.T) {
	t.Parallel()

	q := domain.SearchQuery{Page: 1, Search: "  Steady   Cam "}
	if got := encodeQuery(q, searchParamDirect).Get("search"); got != "steady cam" {
		t.Errorf("search = %q, want %q", got, "steady cam")
	}
}
