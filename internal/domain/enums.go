package domain

// Category identifies the kind of directory entity.
type Category string

const (
	CategoryCrew    Category = "crew"
	CategoryTalent  Category = "talent"
	CategoryCompany Category = "company"
	// CategoryCustom is the explicit flag the backend sets on users whose role
	// is not part of the standard taxonomy.
	CategoryCustom Category = "custom"
)

func (c Category) String() string { return string(c) }

func (c Category) IsValid() bool {
	switch c {
	case CategoryCrew, CategoryTalent, CategoryCompany, CategoryCustom:
		return true
	}
	return false
}

// Mode selects the backend surface used for directory fetches.
type Mode string

const (
	ModeGuest         Mode = "guest"
	ModeAuthenticated Mode = "authenticated"
)

func (m Mode) String() string { return string(m) }

func (m Mode) IsValid() bool {
	switch m {
	case ModeGuest, ModeAuthenticated:
		return true
	}
	return false
}

// SectionKind decides how a section groups its entities into buckets.
type SectionKind string

const (
	SectionGeneric   SectionKind = "generic"
	SectionDirectory SectionKind = "directory"
	SectionCustom    SectionKind = "custom"
)

func (k SectionKind) String() string { return string(k) }

func (k SectionKind) IsValid() bool {
	switch k {
	case SectionGeneric, SectionDirectory, SectionCustom:
		return true
	}
	return false
}

// Classification is the role bucket an entity falls into.
type Classification string

const (
	ClassKnown           Classification = "known"
	ClassCustom          Classification = "custom"
	ClassCompanyExcluded Classification = "company_excluded"
	// ClassPending means the entity cannot be classified yet: either its role
	// is empty or the known role set has not loaded.
	ClassPending Classification = "pending"
)

func (c Classification) String() string { return string(c) }
