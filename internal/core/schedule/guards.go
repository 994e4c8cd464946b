// Package schedule contains the pure business logic for schedule operations.
// Guards are pure functions that evaluate preconditions without side effects.
package schedule

import (
	"fmt"
	"time"

	"github.com/example/socialcli/internal/models"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// CreateContext provides context for schedule creation guards.
type CreateContext struct {
	Kind            string
	PublishAt       time.Time
	ParentUUID      string    // empty if not specified
	ParentFound     bool      // only checked if ParentUUID != ""
	ParentPublishAt time.Time // only meaningful if ParentFound
}

// CanCreate evaluates whether a schedule entry can be created.
// Rules:
// - Kind must be "post" or "comment"
// - A post must not reference a parent
// - A comment must reference a parent, and the parent must exist
// - A comment must be scheduled at least MinCommentOffset after its parent
func CanCreate(ctx CreateContext) GuardResult {
	// Rule 1: kind must be valid
	if ctx.Kind != models.KindPost && ctx.Kind != models.KindComment {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("invalid kind %q (must be %q or %q)", ctx.Kind, models.KindPost, models.KindComment),
		}
	}

	// Rule 2: posts stand alone
	if ctx.Kind == models.KindPost {
		if ctx.ParentUUID != "" {
			return GuardResult{
				Allowed: false,
				Reason:  "a post cannot reference a parent",
			}
		}
		return GuardResult{Allowed: true}
	}

	// Rule 3: comments require an existing parent
	if ctx.ParentUUID == "" {
		return GuardResult{
			Allowed: false,
			Reason:  "a comment requires a parent post",
		}
	}
	if !ctx.ParentFound {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("parent post %s not found", ctx.ParentUUID),
		}
	}

	// Rule 4: comments must trail their parent by the minimum offset.
	// Scheduling at exactly the boundary is allowed.
	earliest := ctx.ParentPublishAt.Add(models.MinCommentOffset)
	if ctx.PublishAt.Before(earliest) {
		return GuardResult{
			Allowed: false,
			Reason: fmt.Sprintf("comment must be scheduled at least %s after its parent (earliest allowed: %s)",
				models.MinCommentOffset, earliest.Format(time.RFC3339)),
		}
	}

	return GuardResult{Allowed: true}
}
