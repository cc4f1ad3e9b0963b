package domain

// SearchQuery is one page request against a directory endpoint.
type SearchQuery struct {
	Page   int
	Limit  int
	Search string
	// Category is the section's implied category. A category in Filters wins.
	Category Category
	Filters  FilterSet
}

// EffectiveCategory returns the category sent to the server.
func (q SearchQuery) EffectiveCategory() Category {
	if q.Filters.Category != "" {
		return q.Filters.Category
	}
	return q.Category
}
