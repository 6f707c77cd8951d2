package campaigns

import (
	"context"
	"errors"

	"outdial-platform/internal/calls"
)

var (
	ErrNotFound          = errors.New("campaigns: not found")
	ErrInvalidTransition = errors.New("campaigns: invalid status transition")
)

// Repository is durable campaign storage. Status changes go through the
// compare-and-set UpdateStatus so concurrent control requests and the runner
// cannot clobber each other.
type Repository interface {
	Create(ctx context.Context, c Campaign) error
	Get(ctx context.Context, id string) (Campaign, error)
	ListByUser(ctx context.Context, userID string) ([]Campaign, error)
	ListByStatus(ctx context.Context, status Status) ([]Campaign, error)

	// UpdateStatus moves the campaign to status to only if its current
	// status is one of from, and reports whether the swap happened. Moving
	// to a terminal status records the completion time.
	UpdateStatus(ctx context.Context, id string, from []Status, to Status) (bool, error)

	// SaveCheckpoint atomically persists the cursor and counters.
	SaveCheckpoint(ctx context.Context, id string, cp Checkpoint) error
}

// LeadSource resolves lead contact fields by id. Lead CRUD is an external
// collaborator; the runner only reads.
type LeadSource interface {
	Lead(ctx context.Context, id string) (calls.Lead, error)
}

// ScriptSource resolves script content by id.
type ScriptSource interface {
	Script(ctx context.Context, id string) (Script, error)
}
