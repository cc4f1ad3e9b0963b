package crewapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/heartmarshall/crewdir/internal/domain"
)

// apiMembership is either a membership record (member_id/user_id set) or,
// on older deployments, the member's own user object (only id set).
type apiMembership struct {
	ID       apiString `json:"id"`
	MongoID  apiString `json:"_id"`
	OwnerID  apiString `json:"owner_id"`
	MemberID apiString `json:"member_id"`
	UserID   apiString `json:"user_id"`
	AddedAt  apiTime   `json:"created_at"`
}

func (m apiMembership) toDomain() (domain.Membership, bool) {
	id := firstNonEmpty(string(m.ID), string(m.MongoID))
	entityID := firstNonEmpty(string(m.MemberID), string(m.UserID))
	if entityID == "" {
		entityID, id = id, ""
	}
	if entityID == "" {
		return domain.Membership{}, false
	}

	rec := domain.Membership{ID: id, OwnerID: string(m.OwnerID), EntityID: entityID}
	if m.AddedAt.value != nil {
		rec.AddedAt = *m.AddedAt.value
	}
	return rec, true
}

// ListTeam returns the acting user's team-membership records.
func (c *Client) ListTeam(ctx context.Context) ([]domain.Membership, error) {
	body, err := c.get(ctx, c.paths.Team, nil)
	if err != nil {
		return nil, fmt.Errorf("crewapi: list team: %w", err)
	}

	var items []apiMembership
	if _, err := decodeItems(body, &items); err != nil {
		return nil, fmt.Errorf("crewapi: list team: %w", err)
	}

	records := make([]domain.Membership, 0, len(items))
	for _, item := range items {
		if rec, ok := item.toDomain(); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

// AddMember adds entityID to the acting user's team.
func (c *Client) AddMember(ctx context.Context, entityID string) error {
	return c.mutateTeam(ctx, http.MethodPost, entityID)
}

// RemoveMember removes entityID from the acting user's team.
func (c *Client) RemoveMember(ctx context.Context, entityID string) error {
	return c.mutateTeam(ctx, http.MethodDelete, entityID)
}

func (c *Client) mutateTeam(ctx context.Context, method, entityID string) error {
	if entityID == "" {
		return domain.NewValidationError("entity_id", "required")
	}
	if !c.Authenticated() {
		return domain.ErrUnauthorized
	}

	body, err := c.do(ctx, method, c.paths.Team+"/"+url.PathEscape(entityID), nil, false)
	if err != nil {
		return fmt.Errorf("crewapi: %s team member: %w", method, err)
	}

	// Mutations may answer 204 or an envelope; only an explicit failure matters.
	if len(body) > 0 {
		if env, err := parseEnvelope(body); err == nil {
			if err := env.unsuccessful(); err != nil {
				return fmt.Errorf("crewapi: %s team member: %w", method, err)
			}
		}
	}
	return nil
}
