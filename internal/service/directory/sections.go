package directory

import (
	"strings"

	"github.com/heartmarshall/crewdir/internal/domain"
)

// Section keys of DefaultSections.
const (
	SectionTalent      = "talent"
	SectionIndividuals = "individuals"
	SectionDirectory   = "directory"
	SectionCustom      = "custom"
)

// DefaultSections returns the sections of the directory screen.
func DefaultSections() []domain.Section {
	return []domain.Section{
		{
			Key:      SectionTalent,
			Title:    "Talent",
			Kind:     domain.SectionGeneric,
			Category: domain.CategoryTalent,
			Items: []string{
				"Actor", "Model", "Dancer", "Singer", "Musician",
				"Stunt Performer", "Voice Artist", "Extra",
			},
		},
		{
			Key:      SectionIndividuals,
			Title:    "Individuals",
			Kind:     domain.SectionGeneric,
			Category: domain.CategoryCrew,
			Items: []string{
				"Director", "Director of Photography", "Producer", "Editor",
				"Camera Operator", "Gaffer", "Sound Engineer", "Makeup Artist",
				"Costume Designer", "Production Assistant",
			},
		},
		{
			Key:   SectionDirectory,
			Title: "Directory",
			Kind:  domain.SectionDirectory,
		},
		{
			Key:   SectionCustom,
			Title: "Custom",
			Kind:  domain.SectionCustom,
		},
	}
}

// FindSection looks a section up by key, case-insensitively.
func FindSection(sections []domain.Section, key string) (domain.Section, bool) {
	key = strings.TrimSpace(key)
	for _, s := range sections {
		if strings.EqualFold(s.Key, key) {
			return s, true
		}
	}
	return domain.Section{}, false
}
