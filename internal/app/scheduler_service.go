package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/socialcli/internal/core/schedule"
	"github.com/example/socialcli/internal/models"
	"github.com/example/socialcli/internal/ports/primary"
	"github.com/example/socialcli/internal/ports/secondary"
)

// SchedulerServiceImpl implements the SchedulerService interface: the
// polling loop that turns due entries into publish calls and writes the
// outcomes back.
//
// The store lock is never held across a publish call. A tick reads due
// entries in one store operation, publishes with no lock held, then applies
// the outcome in a second short store operation. A crash between a
// successful publish and the store update leaves the entry pending and it
// will be published again on restart; LinkedIn's API offers no client
// dedup token, so this window is accepted rather than papered over.
type SchedulerServiceImpl struct {
	repo       secondary.ScheduleRepository
	publishers map[string]secondary.Publisher
	content    secondary.ContentResolver
	clock      secondary.Clock
	logger     *slog.Logger
}

// NewSchedulerService creates a new SchedulerService with injected dependencies.
func NewSchedulerService(
	repo secondary.ScheduleRepository,
	publishers map[string]secondary.Publisher,
	content secondary.ContentResolver,
	clock secondary.Clock,
	logger *slog.Logger,
) *SchedulerServiceImpl {
	return &SchedulerServiceImpl{
		repo:       repo,
		publishers: publishers,
		content:    content,
		clock:      clock,
		logger:     logger,
	}
}

// RunOnce processes all currently due entries: posts first, then comments.
//
// The ordering is a guarantee, not an optimization: a post and its comment
// becoming due in the same tick must resolve correctly, so every due post
// is fully settled (published or failed) before any comment is evaluated.
func (s *SchedulerServiceImpl) RunOnce(ctx context.Context) (*primary.TickResult, error) {
	now := s.clock.Now()
	result := &primary.TickResult{}

	if err := s.processPosts(ctx, now, result); err != nil {
		return result, err
	}
	if err := s.processComments(ctx, now, result); err != nil {
		return result, err
	}

	return result, nil
}

// Run polls at the given interval until ctx is cancelled. The in-flight
// tick always finishes before Run returns; cancellation only stops new
// ticks from starting.
func (s *SchedulerServiceImpl) Run(ctx context.Context, interval time.Duration) error {
	s.logger.Info("scheduler daemon started", "interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Cancellation must stop ticks from starting, never abort one midway:
	// a publish interrupted by ctx would be recorded as a terminal failure
	// (or leave a published entry pending). The tick runs detached from the
	// shutdown signal and ctx is consulted only between ticks.
	tickCtx := context.WithoutCancel(ctx)

	for {
		result, err := s.RunOnce(tickCtx)
		if err != nil {
			// Store trouble. Per-entry failures never reach here, so
			// log loudly and keep polling.
			s.logger.Error("tick failed", "error", err)
		} else if result.Total() > 0 || result.CommentsDeferred > 0 {
			s.logger.Info("tick completed",
				"posts_published", result.PostsPublished,
				"posts_failed", result.PostsFailed,
				"comments_published", result.CommentsPublished,
				"comments_failed", result.CommentsFailed,
				"comments_deferred", result.CommentsDeferred,
			)
		}

		select {
		case <-ctx.Done():
			s.logger.Info("scheduler daemon stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// processPosts publishes or fails every due post, in due-order.
func (s *SchedulerServiceImpl) processPosts(ctx context.Context, now time.Time, result *primary.TickResult) error {
	due, err := s.repo.ListDue(ctx, models.KindPost, now)
	if err != nil {
		return fmt.Errorf("failed to list due posts: %w", err)
	}
	if len(due) == 0 {
		return nil
	}

	s.logger.Info("processing due posts", "count", len(due))

	for _, entry := range due {
		if s.publishEntry(ctx, entry, "") {
			result.PostsPublished++
		} else {
			result.PostsFailed++
		}
	}
	return nil
}

// processComments resolves and publishes every due comment, in due-order.
func (s *SchedulerServiceImpl) processComments(ctx context.Context, now time.Time, result *primary.TickResult) error {
	due, err := s.repo.ListDue(ctx, models.KindComment, now)
	if err != nil {
		return fmt.Errorf("failed to list due comments: %w", err)
	}
	if len(due) == 0 {
		return nil
	}

	s.logger.Info("processing due comments", "count", len(due))

	for _, entry := range due {
		snapshot, err := s.parentSnapshot(ctx, entry)
		if err != nil {
			return err
		}

		resolution := schedule.ResolveDependency(snapshot)
		switch resolution.State {
		case schedule.StateReady:
			if s.publishEntry(ctx, entry, resolution.ParentExternalID) {
				result.CommentsPublished++
			} else {
				result.CommentsFailed++
			}

		case schedule.StateDeferred:
			// Not an error, only a wait condition: the comment stays
			// pending and is re-evaluated next tick.
			result.CommentsDeferred++
			s.logger.Info("deferring comment",
				"uuid", entry.UUID,
				"parent_uuid", entry.ParentUUID,
				"reason", resolution.Reason,
			)

		case schedule.StateBlocked:
			// Terminal: mark failed now so it never retries forever.
			s.logger.Warn("comment blocked",
				"uuid", entry.UUID,
				"parent_uuid", entry.ParentUUID,
				"reason", resolution.Reason,
			)
			if markErr := s.markFailed(ctx, entry.UUID, resolution.Reason); markErr != nil {
				return markErr
			}
			result.CommentsFailed++
		}
	}
	return nil
}

// parentSnapshot looks up a comment's parent for the resolver. A comment
// without a parent_uuid (possible for hand-edited or pruned stores) is
// treated the same as a missing parent.
func (s *SchedulerServiceImpl) parentSnapshot(ctx context.Context, entry *secondary.ScheduleRecord) (schedule.ParentSnapshot, error) {
	if entry.ParentUUID == "" {
		return schedule.ParentSnapshot{Found: false}, nil
	}

	parent, err := s.repo.GetByUUID(ctx, entry.ParentUUID)
	if errors.Is(err, secondary.ErrNotFound) {
		return schedule.ParentSnapshot{Found: false}, nil
	}
	if err != nil {
		return schedule.ParentSnapshot{}, fmt.Errorf("failed to look up parent of %s: %w", entry.UUID, err)
	}

	return schedule.ParentSnapshot{
		Found:      true,
		Status:     parent.Status,
		ExternalID: parent.ExternalID,
	}, nil
}

// publishEntry resolves content, publishes, and records the outcome.
// Returns true when the entry ended up published. Failures are absorbed
// into the entry's status so one bad entry never aborts the tick.
func (s *SchedulerServiceImpl) publishEntry(ctx context.Context, entry *secondary.ScheduleRecord, parentExternalID string) bool {
	s.logger.Info("publishing entry",
		"uuid", entry.UUID,
		"kind", entry.Kind,
		"provider", entry.Provider,
		"file", entry.FilePath,
	)

	content, err := s.content.Resolve(ctx, entry.FilePath)
	if err != nil {
		s.recordFailure(ctx, entry, fmt.Sprintf("content unavailable: %v", err))
		return false
	}

	publisher, ok := s.publishers[entry.Provider]
	if !ok {
		s.recordFailure(ctx, entry, fmt.Sprintf("unsupported provider: %s", entry.Provider))
		return false
	}

	externalID, err := publisher.Publish(ctx, content, parentExternalID)
	if err != nil {
		s.recordFailure(ctx, entry, fmt.Sprintf("publish failed: %v", err))
		return false
	}

	status := models.StatusPublished
	updateErr := s.repo.Update(ctx, entry.UUID, secondary.ScheduleUpdate{
		Status:     &status,
		ExternalID: &externalID,
	})
	if updateErr != nil {
		// The publish succeeded but the store write did not. Log with
		// the external id so an operator can reconcile by hand.
		s.logger.Error("published but failed to update store",
			"uuid", entry.UUID,
			"external_id", externalID,
			"error", updateErr,
		)
		return false
	}

	s.logger.Info("entry published", "uuid", entry.UUID, "external_id", externalID)
	return true
}

// recordFailure marks an entry failed with a diagnostic reason.
func (s *SchedulerServiceImpl) recordFailure(ctx context.Context, entry *secondary.ScheduleRecord, reason string) {
	s.logger.Error("entry failed",
		"uuid", entry.UUID,
		"kind", entry.Kind,
		"reason", reason,
	)
	if err := s.markFailed(ctx, entry.UUID, reason); err != nil {
		s.logger.Error("failed to record failure", "uuid", entry.UUID, "error", err)
	}
}

func (s *SchedulerServiceImpl) markFailed(ctx context.Context, entryUUID, reason string) error {
	status := models.StatusFailed
	err := s.repo.Update(ctx, entryUUID, secondary.ScheduleUpdate{
		Status:        &status,
		BlockedReason: &reason,
	})
	if err != nil {
		return fmt.Errorf("failed to mark entry %s failed: %w", entryUUID, err)
	}
	return nil
}

// SystemClock implements secondary.Clock with wall-clock time.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time {
	return time.Now()
}
