package domain

import "time"

// Entity is a person or company record returned by the directory backend.
// Entities are immutable snapshots; display grouping never modifies them.
type Entity struct {
	ID          string
	Name        string
	Category    Category
	PrimaryRole string
	Location    string
	About       *About
	Skills      []string
	LastSeen    *time.Time
}

// About holds optional profile attributes. Every field may be absent
// independently of the others.
type About struct {
	Age             *float64
	Gender          *string
	Nationality     *string
	Height          *float64
	Weight          *float64
	SkinTone        *string
	HairColor       *string
	EyeColor        *string
	Chest           *float64
	Waist           *float64
	Hips            *float64
	ShoeSize        *float64
	UnionMember     *bool
	WillingToTravel *bool
	TravelReady     *bool
	Dialects        []string
}

// IsCustom reports whether the backend flagged the entity as a custom-role user.
func (e Entity) IsCustom() bool {
	return e.Category == CategoryCustom
}

// IsCompany reports whether the entity is a company record.
func (e Entity) IsCompany() bool {
	return e.Category == CategoryCompany
}

// Page is one server page of entities.
type Page struct {
	Entities []Entity
	Number   int
	Limit    int
	// TotalPages is the server's hint, nil when the envelope has no pagination.
	TotalPages *int
}

// HasMore reports whether another page is expected after this one.
// An explicit total wins; otherwise only a full page implies more data.
func (p Page) HasMore(pageSize int) bool {
	if p.TotalPages != nil {
		return p.Number < *p.TotalPages
	}
	return pageSize > 0 && len(p.Entities) == pageSize
}

// Role is a role label published by the roles endpoint.
type Role struct {
	Name     string
	Category Category
}
