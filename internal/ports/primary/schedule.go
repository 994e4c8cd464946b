// Package primary defines the primary ports (driving adapters) for the
// application. The CLI talks to services only through these interfaces.
package primary

import (
	"context"
	"time"
)

// ScheduleService defines the primary port for managing schedule entries.
type ScheduleService interface {
	// Schedule validates and persists a new entry.
	Schedule(ctx context.Context, req ScheduleRequest) (*ScheduleResponse, error)

	// GetEntry retrieves an entry by UUID.
	GetEntry(ctx context.Context, uuid string) (*ScheduleEntry, error)

	// ListEntries lists entries with optional filters.
	ListEntries(ctx context.Context, filters ScheduleFilters) ([]*ScheduleEntry, error)

	// ListComments lists comment entries attached to a parent entry.
	ListComments(ctx context.Context, parentUUID string) ([]*ScheduleEntry, error)

	// CancelEntry removes a pending entry from the queue.
	CancelEntry(ctx context.Context, uuid string) error
}

// ScheduleRequest contains parameters for scheduling a post or comment.
type ScheduleRequest struct {
	Kind       string // "post" or "comment"
	Provider   string
	Author     string
	FilePath   string
	PublishAt  time.Time
	ParentUUID string // required for comments, forbidden for posts
	UUID       string // optional; generated when empty
}

// ScheduleResponse contains the result of scheduling an entry.
type ScheduleResponse struct {
	ID    int64
	UUID  string
	Entry *ScheduleEntry
}

// ScheduleEntry is the CLI-facing view of a schedule entry.
type ScheduleEntry struct {
	ID            int64
	UUID          string
	Kind          string
	Provider      string
	Author        string
	FilePath      string
	PublishAt     time.Time
	Status        string
	ExternalID    string
	ParentUUID    string
	BlockedReason string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ScheduleFilters contains filter options for listing entries.
type ScheduleFilters struct {
	Kind     string
	Provider string
	Status   string
	Limit    int
}
