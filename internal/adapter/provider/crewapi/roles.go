package crewapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/heartmarshall/crewdir/internal/domain"
)

// apiRole is one entry of the roles list. Some deployments send bare strings.
type apiRole struct {
	Name     string
	Category string
}

func (r *apiRole) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err == nil {
		r.Name = name
		return nil
	}
	var obj struct {
		Name     string `json:"name"`
		Label    string `json:"label"`
		Title    string `json:"title"`
		Category string `json:"category"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	r.Name = firstNonEmpty(obj.Name, obj.Label, obj.Title)
	r.Category = obj.Category
	return nil
}

// ListRoles returns the published role labels for a category.
func (c *Client) ListRoles(ctx context.Context, category domain.Category) ([]domain.Role, error) {
	query := url.Values{}
	if category != "" {
		query.Set("category", string(category))
	}

	body, err := c.get(ctx, c.paths.Roles, query)
	if err != nil {
		return nil, fmt.Errorf("crewapi: list roles %s: %w", category, err)
	}

	var items []apiRole
	if _, err := decodeItems(body, &items); err != nil {
		return nil, fmt.Errorf("crewapi: list roles %s: %w", category, err)
	}

	roles := make([]domain.Role, 0, len(items))
	for _, item := range items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}
		cat := category
		if item.Category != "" {
			cat = domain.Category(strings.ToLower(item.Category))
		}
		roles = append(roles, domain.Role{Name: name, Category: cat})
	}
	return roles, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
