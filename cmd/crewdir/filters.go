package main

import (
	"strings"

	"github.com/spf13/pflag"

	"github.com/heartmarshall/crewdir/internal/domain"
)

// rangeFlag names the _min/_max flag pair of one numeric filter.
type rangeFlag struct {
	name string
	dst  func(f *domain.FilterSet) *domain.Range
}

var rangeFlags = []rangeFlag{
	{"age", func(f *domain.FilterSet) *domain.Range { return &f.Age }},
	{"height", func(f *domain.FilterSet) *domain.Range { return &f.Height }},
	{"weight", func(f *domain.FilterSet) *domain.Range { return &f.Weight }},
	{"chest", func(f *domain.FilterSet) *domain.Range { return &f.Chest }},
	{"waist", func(f *domain.FilterSet) *domain.Range { return &f.Waist }},
	{"hips", func(f *domain.FilterSet) *domain.Range { return &f.Hips }},
	{"shoe-size", func(f *domain.FilterSet) *domain.Range { return &f.ShoeSize }},
}

// boolFlag is a tri-state filter: unset unless the flag is given.
type boolFlag struct {
	name  string
	usage string
	dst   func(f *domain.FilterSet) **bool
}

var boolFlags = []boolFlag{
	{"union", "union membership", func(f *domain.FilterSet) **bool { return &f.UnionMember }},
	{"travel", "willing to travel", func(f *domain.FilterSet) **bool { return &f.WillingToTravel }},
	{"travel-ready", "ready to travel now", func(f *domain.FilterSet) **bool { return &f.TravelReady }},
}

// filterFlags holds the raw flag values of the filter set.
type filterFlags struct {
	category      string
	role          string
	location      string
	gender        string
	skinTone      string
	hairColor     string
	eyeColor      string
	nationalities []string
	skills        []string
	languages     []string
	mins          map[string]*float64
	maxes         map[string]*float64
	bools         map[string]*bool
}

func (ff *filterFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&ff.category, "category", "", "category: crew, talent, company or custom")
	fs.StringVar(&ff.role, "role", "", "exact primary role")
	fs.StringVar(&ff.location, "location", "", "location substring")
	fs.StringVar(&ff.gender, "gender", "", "gender")
	fs.StringVar(&ff.skinTone, "skin-tone", "", "skin tone substring")
	fs.StringVar(&ff.hairColor, "hair-color", "", "hair color substring")
	fs.StringVar(&ff.eyeColor, "eye-color", "", "eye color substring")
	fs.StringSliceVar(&ff.nationalities, "nationality", nil, "nationality (repeatable)")
	fs.StringSliceVar(&ff.skills, "skill", nil, "skill (repeatable)")
	fs.StringSliceVar(&ff.languages, "language", nil, "language or dialect (repeatable)")

	ff.mins = make(map[string]*float64, len(rangeFlags))
	ff.maxes = make(map[string]*float64, len(rangeFlags))
	for _, r := range rangeFlags {
		ff.mins[r.name] = fs.Float64(r.name+"-min", 0, "minimum "+r.name)
		ff.maxes[r.name] = fs.Float64(r.name+"-max", 0, "maximum "+r.name)
	}

	ff.bools = make(map[string]*bool, len(boolFlags))
	for _, b := range boolFlags {
		ff.bools[b.name] = fs.Bool(b.name, false, "filter by "+b.usage+" (--"+b.name+"=false for no)")
	}
}

// filterSet builds the FilterSet. Numeric and boolean filters are only set
// when their flag was given on the command line.
func (ff *filterFlags) filterSet(fs *pflag.FlagSet) (domain.FilterSet, error) {
	f := domain.FilterSet{
		Category:      domain.Category(strings.ToLower(strings.TrimSpace(ff.category))),
		Role:          ff.role,
		Location:      ff.location,
		Gender:        ff.gender,
		SkinTone:      ff.skinTone,
		HairColor:     ff.hairColor,
		EyeColor:      ff.eyeColor,
		Nationalities: ff.nationalities,
		Skills:        ff.skills,
		Languages:     ff.languages,
	}
	if f.Category != "" && !f.Category.IsValid() {
		return domain.FilterSet{}, domain.NewValidationError("category", "must be crew, talent, company or custom")
	}

	for _, r := range rangeFlags {
		dst := r.dst(&f)
		if fs.Changed(r.name + "-min") {
			v := *ff.mins[r.name]
			dst.Min = &v
		}
		if fs.Changed(r.name + "-max") {
			v := *ff.maxes[r.name]
			dst.Max = &v
		}
		if dst.Min != nil && dst.Max != nil && *dst.Min > *dst.Max {
			return domain.FilterSet{}, domain.NewValidationError(r.name, "min is greater than max")
		}
	}

	for _, b := range boolFlags {
		if fs.Changed(b.name) {
			v := *ff.bools[b.name]
			*b.dst(&f) = &v
		}
	}

	return f, nil
}
