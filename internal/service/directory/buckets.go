package directory

import "github.com/heartmarshall/crewdir/internal/domain"

// Bucket labels that do not come from section items.
const (
	LabelAllMembers     = "All Members"
	LabelAllCustomUsers = "All Custom Users"
)

// Assemble groups entities into the display buckets of section. It always
// builds the buckets from scratch; entities are never modified.
func Assemble(entities []domain.Entity, section domain.Section, known domain.RoleKeySet) []domain.Bucket {
	switch section.Kind {
	case domain.SectionDirectory:
		return []domain.Bucket{{
			Label:    LabelAllMembers,
			Entities: append([]domain.Entity{}, entities...),
		}}
	case domain.SectionCustom:
		return assembleCustom(entities, section, known)
	case domain.SectionGeneric:
		return assembleGeneric(entities, section)
	default:
		return nil
	}
}

// assembleGeneric uses the lenient item rule: role and item keys match when
// equal or when one contains the other.
func assembleGeneric(entities []domain.Entity, section domain.Section) []domain.Bucket {
	buckets := make([]domain.Bucket, 0, len(section.Items))
	for _, item := range section.Items {
		b := domain.Bucket{Label: item, Entities: []domain.Entity{}}
		for _, e := range entities {
			if e.Category == section.Category && domain.RoleMatchesItem(e.PrimaryRole, item) {
				b.Entities = append(b.Entities, e)
			}
		}
		buckets = append(buckets, b)
	}
	return buckets
}

// assembleCustom uses the strict rule for role buckets: exact key equality.
// Declared items always get a bucket; derived labels only exist when used.
func assembleCustom(entities []domain.Entity, section domain.Section, known domain.RoleKeySet) []domain.Bucket {
	custom := make([]domain.Entity, 0)
	for _, e := range entities {
		if domain.Classify(e, known) == domain.ClassCustom {
			custom = append(custom, e)
		}
	}

	labels := section.Items
	declared := len(labels) > 0
	if !declared {
		labels = distinctRoles(custom)
	}

	buckets := make([]domain.Bucket, 0, len(labels)+1)
	buckets = append(buckets, domain.Bucket{Label: LabelAllCustomUsers, Entities: custom})
	for _, label := range labels {
		b := domain.Bucket{Label: label, Entities: []domain.Entity{}}
		for _, e := range custom {
			if domain.RoleKeyEquals(e.PrimaryRole, label) {
				b.Entities = append(b.Entities, e)
			}
		}
		if len(b.Entities) == 0 && !declared {
			continue
		}
		buckets = append(buckets, b)
	}
	return buckets
}

// distinctRoles returns the first-seen label for every distinct role key.
func distinctRoles(entities []domain.Entity) []string {
	seen := make(map[string]struct{})
	var labels []string
	for _, e := range entities {
		key := domain.NormalizeRoleKey(e.PrimaryRole)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		labels = append(labels, e.PrimaryRole)
	}
	return labels
}
