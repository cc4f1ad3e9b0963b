package team

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/crewdir/internal/domain"
)

type teamAPI interface {
	ListTeam(ctx context.Context) ([]domain.Membership, error)
	AddMember(ctx context.Context, entityID string) error
	RemoveMember(ctx context.Context, entityID string) error
}

// Options tune the coordinator.
type Options struct {
	// RollbackOnFailure restores the previous membership when the server
	// rejects a mutation. When false the optimistic write stays until the
	// next refresh.
	RollbackOnFailure bool
}

// Service owns the acting user's team-membership cache and serializes
// optimistic add/remove mutations per entity.
type Service struct {
	log      *slog.Logger
	api      teamAPI
	rollback bool
	now      func() time.Time

	mu      sync.Mutex
	owner   string
	members map[string]domain.Membership
	states  map[string]domain.MutationState
	loaded  bool
}

// NewService creates a team Service for ownerID.
func NewService(logger *slog.Logger, api teamAPI, ownerID string, opts Options) *Service {
	return &Service{
		log:      logger.With("service", "team"),
		api:      api,
		rollback: opts.RollbackOnFailure,
		now:      time.Now,
		owner:    ownerID,
		members:  make(map[string]domain.Membership),
		states:   make(map[string]domain.MutationState),
	}
}

// SetOwner re-keys the cache to another acting user. The cached list is
// dropped when the owner changes.
func (s *Service) SetOwner(ownerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ownerID == s.owner {
		return
	}
	s.owner = ownerID
	s.members = make(map[string]domain.Membership)
	s.loaded = false
}

// Owner returns the acting user's id.
func (s *Service) Owner() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner
}

// Loaded reports whether the cache holds a server list.
func (s *Service) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// IsMember reports whether entityID is on the team, optimistic writes included.
func (s *Service) IsMember(entityID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.members[entityID]
	return ok
}

// State returns the mutation state of entityID.
func (s *Service) State(entityID string) domain.MutationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.states[entityID]; ok {
		return st
	}
	return domain.StateIdle
}

// Members returns the cached team ordered by time added.
func (s *Service) Members() []domain.Membership {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]domain.Membership, 0, len(s.members))
	for _, m := range s.members {
		list = append(list, m)
	}
	slices.SortFunc(list, func(a, b domain.Membership) int {
		if c := a.AddedAt.Compare(b.AddedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.EntityID, b.EntityID)
	})
	return list
}

// Refresh replaces the cache with the server's list. Entities with a
// mutation in flight keep their local record until that mutation settles.
func (s *Service) Refresh(ctx context.Context) error {
	return s.reload(ctx, "")
}

// Toggle adds entityID to the team, or removes it when already a member.
//
// A toggle for an entity whose previous toggle is still pending is ignored.
// Otherwise the cache is written optimistically, the server is called, and on
// success the list is refetched. On failure the returned error is a
// *domain.MutationError and the optimistic write is kept or rolled back
// depending on Options.RollbackOnFailure. The entity is idle again when
// Toggle returns.
func (s *Service) Toggle(ctx context.Context, entityID string) (domain.MutationOutcome, error) {
	if entityID == "" {
		return domain.OutcomeIgnored, domain.NewValidationError("entity_id", "required")
	}

	s.mu.Lock()
	if s.states[entityID].IsPending() {
		s.mu.Unlock()
		s.log.DebugContext(ctx, "toggle ignored, mutation pending",
			slog.String("entity_id", entityID),
		)
		return domain.OutcomeIgnored, nil
	}

	prev, wasMember := s.members[entityID]
	action := domain.MutationAdd
	if wasMember {
		action = domain.MutationRemove
		delete(s.members, entityID)
		s.states[entityID] = domain.StatePendingRemove
	} else {
		s.members[entityID] = domain.Membership{
			ID:         uuid.NewString(),
			OwnerID:    s.owner,
			EntityID:   entityID,
			AddedAt:    s.now(),
			Optimistic: true,
		}
		s.states[entityID] = domain.StatePendingAdd
	}
	s.mu.Unlock()

	var err error
	if action == domain.MutationAdd {
		err = s.api.AddMember(ctx, entityID)
	} else {
		err = s.api.RemoveMember(ctx, entityID)
	}

	if err != nil {
		s.mu.Lock()
		if s.rollback {
			if wasMember {
				s.members[entityID] = prev
			} else {
				delete(s.members, entityID)
			}
		}
		delete(s.states, entityID)
		s.mu.Unlock()

		s.log.ErrorContext(ctx, "team mutation failed",
			slog.String("entity_id", entityID),
			slog.String("action", action.String()),
			slog.Bool("rolled_back", s.rollback),
			slog.String("error", err.Error()),
		)

		outcome := domain.OutcomeFailedKept
		if s.rollback {
			outcome = domain.OutcomeRolledBack
		}
		return outcome, &domain.MutationError{
			EntityID:   entityID,
			Action:     action,
			RolledBack: s.rollback,
			Err:        err,
		}
	}

	if err := s.reload(ctx, entityID); err != nil {
		s.log.WarnContext(ctx, "team refetch after mutation failed",
			slog.String("entity_id", entityID),
			slog.String("error", err.Error()),
		)
	}

	s.mu.Lock()
	delete(s.states, entityID)
	s.mu.Unlock()

	s.log.InfoContext(ctx, "team mutation committed",
		slog.String("entity_id", entityID),
		slog.String("action", action.String()),
	)
	return domain.OutcomeCommitted, nil
}

// reload fetches the server list. settling is the entity whose own mutation
// just succeeded: it takes the server's record even though it is still pending.
func (s *Service) reload(ctx context.Context, settling string) error {
	list, err := s.api.ListTeam(ctx)
	if err != nil {
		return fmt.Errorf("list team: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	members := make(map[string]domain.Membership, len(list))
	for _, m := range list {
		if m.EntityID == "" {
			continue
		}
		if m.OwnerID == "" {
			m.OwnerID = s.owner
		}
		members[m.EntityID] = m
	}

	for id, st := range s.states {
		if id == settling || !st.IsPending() {
			continue
		}
		if local, ok := s.members[id]; ok {
			members[id] = local
		} else {
			delete(members, id)
		}
	}

	s.members = members
	s.loaded = true

	s.log.DebugContext(ctx, "team refreshed", slog.Int("members", len(members)))
	return nil
}
