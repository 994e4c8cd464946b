package schedule

import "github.com/example/socialcli/internal/models"

// ResolutionState classifies a comment's dependency on its parent post.
type ResolutionState string

const (
	// StateReady means the parent is published and the comment can go out.
	StateReady ResolutionState = "ready"
	// StateDeferred means the parent has not published yet; the comment
	// stays pending and is re-evaluated next tick.
	StateDeferred ResolutionState = "deferred"
	// StateBlocked means the dependency can never resolve; the comment
	// must be failed.
	StateBlocked ResolutionState = "blocked"
)

// Blocked/deferred reason constants, recorded verbatim in blocked_reason.
const (
	ReasonParentMissing           = "parent_missing"
	ReasonParentFailed            = "parent_failed"
	ReasonParentNotYetPublished   = "parent_not_yet_published"
	ReasonParentMissingIdentifier = "parent_missing_identifier"
)

// ParentSnapshot is the view of a comment's parent at resolution time.
type ParentSnapshot struct {
	Found      bool
	Status     string
	ExternalID string
}

// Resolution is the outcome of resolving a comment's dependency.
type Resolution struct {
	State            ResolutionState
	Reason           string // set for Deferred and Blocked
	ParentExternalID string // set for Ready
}

// ResolveDependency decides whether a due comment can proceed.
//
// The evaluation order matters: a missing or failed parent is terminal and
// must be detected before the transient pending case, so a comment never
// waits forever on a dependency that cannot resolve.
func ResolveDependency(parent ParentSnapshot) Resolution {
	if !parent.Found {
		return Resolution{State: StateBlocked, Reason: ReasonParentMissing}
	}
	if parent.Status == models.StatusFailed {
		return Resolution{State: StateBlocked, Reason: ReasonParentFailed}
	}
	if parent.Status == models.StatusPending {
		return Resolution{State: StateDeferred, Reason: ReasonParentNotYetPublished}
	}
	// Published parent without an identifier should not happen, but a
	// comment cannot attach to nothing; treat it as terminal.
	if parent.ExternalID == "" {
		return Resolution{State: StateBlocked, Reason: ReasonParentMissingIdentifier}
	}
	return Resolution{State: StateReady, ParentExternalID: parent.ExternalID}
}
