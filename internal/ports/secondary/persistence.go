// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by lookups that match no record.
// Callers should test with errors.Is after unwrapping.
var ErrNotFound = errors.New("record not found")

// ScheduleRepository defines the secondary port for schedule persistence.
//
// Implementations must serialize every operation against the same store:
// a daemon tick and a concurrent CLI write may never interleave a
// read-modify-write. The lock scope is the whole store, held for one
// logical operation and released on every exit path.
type ScheduleRepository interface {
	// Create persists a new schedule entry and fills in its storage ID.
	Create(ctx context.Context, entry *ScheduleRecord) error

	// GetByUUID retrieves an entry by its UUID.
	// Returns an error wrapping ErrNotFound when no entry matches.
	GetByUUID(ctx context.Context, uuid string) (*ScheduleRecord, error)

	// ListDue retrieves pending entries of the given kind whose publish_at
	// is at or before now, ordered by publish_at ascending, then ID
	// ascending.
	ListDue(ctx context.Context, kind string, now time.Time) ([]*ScheduleRecord, error)

	// List retrieves entries matching the given filters, newest publish
	// time first.
	List(ctx context.Context, filters ScheduleFilters) ([]*ScheduleRecord, error)

	// ListCommentsFor retrieves comment entries referencing the given
	// parent UUID.
	ListCommentsFor(ctx context.Context, parentUUID string) ([]*ScheduleRecord, error)

	// Update applies a partial update to the entry with the given UUID and
	// bumps updated_at. Returns an error wrapping ErrNotFound when no
	// entry matches.
	Update(ctx context.Context, uuid string, upd ScheduleUpdate) error

	// Delete removes an entry. This is an administrative operation (queue
	// cancel); the daemon never deletes.
	Delete(ctx context.Context, uuid string) error
}

// ScheduleRecord represents a schedule entry as stored in persistence.
type ScheduleRecord struct {
	ID            int64
	UUID          string
	Kind          string // "post" or "comment"
	Provider      string
	Author        string
	FilePath      string
	PublishAt     time.Time
	Status        string // "pending", "published", "failed"
	ExternalID    string // platform identifier, empty until published
	ParentUUID    string // set iff Kind == "comment"
	BlockedReason string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ScheduleUpdate describes a partial update. Nil fields are left untouched.
type ScheduleUpdate struct {
	Status        *string
	ExternalID    *string
	BlockedReason *string
}

// ScheduleFilters contains filter options for querying schedule entries.
type ScheduleFilters struct {
	Kind     string
	Provider string
	Status   string
	Limit    int
}
