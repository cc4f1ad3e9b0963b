package domain

import "time"

// Membership records that an entity is on the acting user's team.
type Membership struct {
	ID       string
	OwnerID  string
	EntityID string
	AddedAt  time.Time
	// Optimistic is true for records written locally before the server confirmed them.
	Optimistic bool
}

// MutationState is the per-entity state of the membership coordinator.
type MutationState string

const (
	StateIdle          MutationState = "idle"
	StatePendingAdd    MutationState = "pending_add"
	StatePendingRemove MutationState = "pending_remove"
)

func (s MutationState) String() string { return string(s) }

// IsPending reports whether a mutation is in flight.
func (s MutationState) IsPending() bool {
	return s == StatePendingAdd || s == StatePendingRemove
}

// MutationOutcome is how a finished mutation resolved before returning to idle.
type MutationOutcome string

const (
	OutcomeIgnored    MutationOutcome = "ignored"
	OutcomeCommitted  MutationOutcome = "committed"
	OutcomeRolledBack MutationOutcome = "rolled_back"
	// OutcomeFailedKept means the server call failed and the optimistic write stays.
	OutcomeFailedKept MutationOutcome = "failed_kept"
)

func (o MutationOutcome) String() string { return string(o) }
