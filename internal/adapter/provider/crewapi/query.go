package crewapi

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/heartmarshall/crewdir/internal/domain"
)

// Search text is sent as "search" on the guest and direct surfaces and as
// "q" on the library surface.
const (
	searchParamDirect  = "search"
	searchParamLibrary = "q"
)

// encodeQuery renders q as URL parameters. Empty values are never sent.
func encodeQuery(q domain.SearchQuery, searchParam string) url.Values {
	v := url.Values{}
	setInt := func(key string, n int) {
		if n > 0 {
			v.Set(key, strconv.Itoa(n))
		}
	}
	set := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			v.Set(key, value)
		}
	}
	addAll := func(key string, values []string) {
		for _, value := range values {
			if value = strings.TrimSpace(value); value != "" {
				v.Add(key, value)
			}
		}
	}
	setRange := func(name string, r domain.Range) {
		if r.Min != nil {
			v.Set(name+"_min", strconv.FormatFloat(*r.Min, 'f', -1, 64))
		}
		if r.Max != nil {
			v.Set(name+"_max", strconv.FormatFloat(*r.Max, 'f', -1, 64))
		}
	}
	setBool := func(key string, b *bool) {
		if b != nil {
			v.Set(key, strconv.FormatBool(*b))
		}
	}

	f := q.Filters

	setInt("page", q.Page)
	setInt("limit", q.Limit)
	set(searchParam, domain.NormalizeText(q.Search))
	set("category", string(q.EffectiveCategory()))
	set("role", f.Role)
	set("location", f.Location)
	set("gender", f.Gender)
	setRange("age", f.Age)
	setRange("height", f.Height)
	setRange("weight", f.Weight)
	setRange("chest", f.Chest)
	setRange("waist", f.Waist)
	setRange("hips", f.Hips)
	setRange("shoe_size", f.ShoeSize)
	set("skin_tone", f.SkinTone)
	set("hair_color", f.HairColor)
	set("eye_color", f.EyeColor)
	addAll("nationality", f.Nationalities)
	setBool("union_member", f.UnionMember)
	setBool("willing_to_travel", f.WillingToTravel)
	setBool("travel_ready", f.TravelReady)
	addAll("skills", f.Skills)
	addAll("languages", f.Languages)

	return v
}
