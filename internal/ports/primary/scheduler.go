package primary

import (
	"context"
	"time"
)

// SchedulerService defines the primary port for the scheduling daemon.
type SchedulerService interface {
	// RunOnce processes all currently due entries: posts first, then
	// comments. Per-entry failures are recorded on the entries themselves;
	// only store-level failures are returned.
	RunOnce(ctx context.Context) (*TickResult, error)

	// Run polls at the given interval until ctx is cancelled. An in-flight
	// tick always finishes before Run returns.
	Run(ctx context.Context, interval time.Duration) error
}

// TickResult summarizes one daemon tick.
type TickResult struct {
	PostsPublished    int
	PostsFailed       int
	CommentsPublished int
	CommentsFailed    int
	CommentsDeferred  int
}

// Total returns the number of entries that changed state during the tick.
func (r *TickResult) Total() int {
	return r.PostsPublished + r.PostsFailed + r.CommentsPublished + r.CommentsFailed
}
