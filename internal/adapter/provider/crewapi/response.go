package crewapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/heartmarshall/crewdir/internal/domain"
)

// envelopeShape tags which of the backend's response layouts was received.
type envelopeShape int

const (
	// shapeBare is a top-level JSON array.
	shapeBare envelopeShape = iota + 1
	// shapeFlat is {"data": [...]} with optional top-level pagination.
	shapeFlat
	// shapeNested is {"data": {"data": [...], "pagination": {...}}}.
	shapeNested
)

func (s envelopeShape) String() string {
	switch s {
	case shapeBare:
		return "bare"
	case shapeFlat:
		return "flat"
	case shapeNested:
		return "nested"
	}
	return "unknown"
}

// envelope is the normalized form of any backend response.
type envelope struct {
	shape      envelopeShape
	items      json.RawMessage
	pagination *apiPagination
	// success is nil when the backend did not send the flag.
	success *bool
	message string
}

// ErrUnsuccessful is returned when the backend answers with success=false.
var ErrUnsuccessful = errors.New("unsuccessful response")

// ErrMalformedEnvelope is returned when a body matches none of the known layouts.
var ErrMalformedEnvelope = errors.New("malformed response envelope")

type apiPagination struct {
	Page          *int `json:"page"`
	Limit         *int `json:"limit"`
	TotalPages    *int `json:"totalPages"`
	TotalPagesAlt *int `json:"total_pages"`
	Total         *int `json:"total"`
}

func (p *apiPagination) totalPages() *int {
	if p == nil {
		return nil
	}
	if p.TotalPages != nil {
		return p.TotalPages
	}
	return p.TotalPagesAlt
}

// parseEnvelope classifies body into one of the known layouts.
func parseEnvelope(body []byte) (envelope, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return envelope{}, fmt.Errorf("%w: empty body", ErrMalformedEnvelope)
	}

	switch trimmed[0] {
	case '[':
		return envelope{shape: shapeBare, items: trimmed}, nil
	case '{':
	default:
		return envelope{}, fmt.Errorf("%w: unexpected %q", ErrMalformedEnvelope, trimmed[0])
	}

	var top struct {
		Success    *bool           `json:"success"`
		Message    string          `json:"message"`
		Data       json.RawMessage `json:"data"`
		Pagination *apiPagination  `json:"pagination"`
	}
	if err := json.Unmarshal(trimmed, &top); err != nil {
		return envelope{}, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}

	env := envelope{success: top.Success, message: top.Message, pagination: top.Pagination}
	if top.Success != nil && !*top.Success {
		return env, nil
	}

	data := bytes.TrimSpace(top.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return envelope{}, fmt.Errorf("%w: missing data", ErrMalformedEnvelope)
	}

	switch data[0] {
	case '[':
		env.shape = shapeFlat
		env.items = data
		return env, nil
	case '{':
		var inner struct {
			Data       json.RawMessage `json:"data"`
			Pagination *apiPagination  `json:"pagination"`
		}
		if err := json.Unmarshal(data, &inner); err != nil {
			return envelope{}, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
		}
		items := bytes.TrimSpace(inner.Data)
		if len(items) == 0 || items[0] != '[' {
			return envelope{}, fmt.Errorf("%w: nested data is not a list", ErrMalformedEnvelope)
		}
		env.shape = shapeNested
		env.items = items
		if inner.Pagination != nil {
			env.pagination = inner.Pagination
		}
		return env, nil
	}

	return envelope{}, fmt.Errorf("%w: data is %q", ErrMalformedEnvelope, data[0])
}

// unsuccessful reports whether the backend flagged the call as failed.
func (e envelope) unsuccessful() error {
	if e.success == nil || *e.success {
		return nil
	}
	if e.message == "" {
		return ErrUnsuccessful
	}
	return fmt.Errorf("%w: %s", ErrUnsuccessful, e.message)
}

// decodeItems parses the envelope and unmarshals its list into dst.
func decodeItems[T any](body []byte, dst *[]T) (envelope, error) {
	env, err := parseEnvelope(body)
	if err != nil {
		return env, err
	}
	if err := env.unsuccessful(); err != nil {
		return env, err
	}
	if err := json.Unmarshal(env.items, dst); err != nil {
		return env, fmt.Errorf("%w: decode %s list: %v", ErrMalformedEnvelope, env.shape, err)
	}
	return env, nil
}

// decodePage turns a directory response into a domain.Page.
func decodePage(body []byte, page, limit int) (domain.Page, error) {
	var items []apiEntity
	env, err := decodeItems(body, &items)
	if err != nil {
		return domain.Page{}, err
	}

	entities := make([]domain.Entity, 0, len(items))
	for _, item := range items {
		if e, ok := item.toDomain(); ok {
			entities = append(entities, e)
		}
	}

	return domain.Page{
		Entities:   entities,
		Number:     page,
		Limit:      limit,
		TotalPages: env.pagination.totalPages(),
	}, nil
}

// ---------------------------------------------------------------------------
// Entity payloads
// ---------------------------------------------------------------------------

// apiEntity is a user or company as the backend serializes it.
type apiEntity struct {
	ID          apiString  `json:"id"`
	MongoID     apiString  `json:"_id"`
	Name        string     `json:"name"`
	FullName    string     `json:"full_name"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	CompanyName string     `json:"company_name"`
	Category    string     `json:"category"`
	PrimaryRole string     `json:"primary_role"`
	Role        string     `json:"role"`
	Location    string     `json:"location"`
	About       *apiAbout  `json:"about"`
	Skills      apiStrings `json:"skills"`
	LastSeen    apiTime    `json:"last_seen"`
}

type apiAbout struct {
	Age             apiNumber  `json:"age"`
	Gender          *string    `json:"gender"`
	Nationality     *string    `json:"nationality"`
	Height          apiNumber  `json:"height"`
	Weight          apiNumber  `json:"weight"`
	SkinTone        *string    `json:"skin_tone"`
	HairColor       *string    `json:"hair_color"`
	EyeColor        *string    `json:"eye_color"`
	Chest           apiNumber  `json:"chest"`
	Waist           apiNumber  `json:"waist"`
	Hips            apiNumber  `json:"hips"`
	ShoeSize        apiNumber  `json:"shoe_size"`
	UnionMember     apiBool    `json:"union_member"`
	WillingToTravel apiBool    `json:"willing_to_travel"`
	TravelReady     apiBool    `json:"travel_ready"`
	Dialects        apiStrings `json:"dialects"`
}

// toDomain maps the payload. Records without an id are dropped.
func (a apiEntity) toDomain() (domain.Entity, bool) {
	id := string(a.ID)
	if id == "" {
		id = string(a.MongoID)
	}
	if id == "" {
		return domain.Entity{}, false
	}

	role := a.PrimaryRole
	if role == "" {
		role = a.Role
	}

	e := domain.Entity{
		ID:          id,
		Name:        a.displayName(),
		Category:    domain.Category(strings.ToLower(strings.TrimSpace(a.Category))),
		PrimaryRole: role,
		Location:    a.Location,
		Skills:      []string(a.Skills),
		LastSeen:    a.LastSeen.value,
	}
	if a.About != nil {
		e.About = a.About.toDomain()
	}
	return e, true
}

func (a apiEntity) displayName() string {
	switch {
	case a.Name != "":
		return a.Name
	case a.FullName != "":
		return a.FullName
	case a.FirstName != "" || a.LastName != "":
		return strings.TrimSpace(a.FirstName + " " + a.LastName)
	}
	return a.CompanyName
}

func (a apiAbout) toDomain() *domain.About {
	return &domain.About{
		Age:             a.Age.value,
		Gender:          a.Gender,
		Nationality:     a.Nationality,
		Height:          a.Height.value,
		Weight:          a.Weight.value,
		SkinTone:        a.SkinTone,
		HairColor:       a.HairColor,
		EyeColor:        a.EyeColor,
		Chest:           a.Chest.value,
		Waist:           a.Waist.value,
		Hips:            a.Hips.value,
		ShoeSize:        a.ShoeSize.value,
		UnionMember:     a.UnionMember.value,
		WillingToTravel: a.WillingToTravel.value,
		TravelReady:     a.TravelReady.value,
		Dialects:        []string(a.Dialects),
	}
}

// ---------------------------------------------------------------------------
// Lenient scalar decoding
// ---------------------------------------------------------------------------

// apiNumber accepts a JSON number or a numeric string. Anything else is absent.
type apiNumber struct {
	value *float64
}

func (n *apiNumber) UnmarshalJSON(b []byte) error {
	n.value = nil
	if isNull(b) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		n.value = &f
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			n.value = &f
		}
	}
	return nil
}

// apiBool accepts true/false or the strings "true", "yes", "1", "false", "no", "0".
type apiBool struct {
	value *bool
}

func (v *apiBool) UnmarshalJSON(b []byte) error {
	v.value = nil
	if isNull(b) {
		return nil
	}
	var bv bool
	if err := json.Unmarshal(b, &bv); err == nil {
		v.value = &bv
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "yes", "1":
			t := true
			v.value = &t
		case "false", "no", "0":
			f := false
			v.value = &f
		}
	}
	return nil
}

// apiString accepts a JSON string or number (some ids are numeric).
type apiString string

func (s *apiString) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = apiString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err == nil {
		*s = apiString(num.String())
		return nil
	}
	*s = ""
	return nil
}

// apiTime accepts an RFC 3339 timestamp; anything else is absent.
type apiTime struct {
	value *time.Time
}

func (t *apiTime) UnmarshalJSON(b []byte) error {
	t.value = nil
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339, s); err == nil {
		t.value = &parsed
	}
	return nil
}

// apiStrings accepts a list of strings, a list of {"name": ...} objects,
// or a single comma-separated string.
type apiStrings []string

func (s *apiStrings) UnmarshalJSON(b []byte) error {
	*s = nil
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*s = compact(list)
		return nil
	}
	var named []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(b, &named); err == nil {
		for _, n := range named {
			list = append(list, n.Name)
		}
		*s = compact(list)
		return nil
	}
	var single string
	if err := json.Unmarshal(b, &single); err == nil {
		*s = compact(strings.Split(single, ","))
	}
	return nil
}

func isNull(b []byte) bool {
	return bytes.Equal(bytes.TrimSpace(b), []byte("null"))
}

func compact(list []string) []string {
	var out []string
	for _, v := range list {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
