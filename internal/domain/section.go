package domain

// Section is one browsable part of the directory screen.
type Section struct {
	Key   string
	Title string
	Kind  SectionKind
	// Category is the category implied by a generic section. Empty for
	// directory and custom sections.
	Category Category
	// Items are the bucket labels the section declares.
	Items []string
}

// Bucket is a named group of entities, recomputed from scratch on every change.
type Bucket struct {
	Label    string
	Entities []Entity
}
