package schedule

import (
	"testing"

	"github.com/example/socialcli/internal/models"
)

func TestResolveDependency(t *testing.T) {
	tests := []struct {
		name           string
		parent         ParentSnapshot
		wantState      ResolutionState
		wantReason     string
		wantExternalID string
	}{
		{
			name:       "missing parent is blocked",
			parent:     ParentSnapshot{Found: false},
			wantState:  StateBlocked,
			wantReason: ReasonParentMissing,
		},
		{
			name:       "failed parent is blocked",
			parent:     ParentSnapshot{Found: true, Status: models.StatusFailed},
			wantState:  StateBlocked,
			wantReason: ReasonParentFailed,
		},
		{
			name:       "pending parent defers",
			parent:     ParentSnapshot{Found: true, Status: models.StatusPending},
			wantState:  StateDeferred,
			wantReason: ReasonParentNotYetPublished,
		},
		{
			name:       "published parent without identifier is blocked",
			parent:     ParentSnapshot{Found: true, Status: models.StatusPublished},
			wantState:  StateBlocked,
			wantReason: ReasonParentMissingIdentifier,
		},
		{
			name:           "published parent with identifier is ready",
			parent:         ParentSnapshot{Found: true, Status: models.StatusPublished, ExternalID: "urn:li:share:42"},
			wantState:      StateReady,
			wantExternalID: "urn:li:share:42",
		},
		{
			// A failed parent with a stale external identifier must still
			// block: missing/failed checks run before the identifier check.
			name:       "failed parent with identifier is still blocked",
			parent:     ParentSnapshot{Found: true, Status: models.StatusFailed, ExternalID: "urn:li:share:42"},
			wantState:  StateBlocked,
			wantReason: ReasonParentFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveDependency(tt.parent)
			if got.State != tt.wantState {
				t.Errorf("State = %s, want %s", got.State, tt.wantState)
			}
			if got.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", got.Reason, tt.wantReason)
			}
			if got.ParentExternalID != tt.wantExternalID {
				t.Errorf("ParentExternalID = %q, want %q", got.ParentExternalID, tt.wantExternalID)
			}
		})
	}
}

func TestResolveDependency_Deterministic(t *testing.T) {
	snap := ParentSnapshot{Found: true, Status: models.StatusPublished, ExternalID: "urn:li:share:7"}
	first := ResolveDependency(snap)
	for i := 0; i < 10; i++ {
		if got := ResolveDependency(snap); got != first {
			t.Fatalf("resolution not deterministic: %+v vs %+v", got, first)
		}
	}
}
