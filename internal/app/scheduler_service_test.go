package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/example/socialcli/internal/core/schedule"
	"github.com/example/socialcli/internal/models"
	"github.com/example/socialcli/internal/ports/primary"
	"github.com/example/socialcli/internal/ports/secondary"
)

// ============================================================================
// Mock Implementations
// ============================================================================

type publishCall struct {
	Body             string
	ParentExternalID string
}

// mockPublisher implements secondary.Publisher for testing.
type mockPublisher struct {
	calls      []publishCall
	nextID     int
	publishErr error
}

func (m *mockPublisher) Publish(ctx context.Context, content *secondary.Content, parentExternalID string) (string, error) {
	m.calls = append(m.calls, publishCall{Body: content.Body, ParentExternalID: parentExternalID})
	if m.publishErr != nil {
		return "", m.publishErr
	}
	m.nextID++
	return fmt.Sprintf("urn:li:share:%d", m.nextID), nil
}

// mockContentResolver implements secondary.ContentResolver for testing.
type mockContentResolver struct {
	resolveErr error
}

func (m *mockContentResolver) Resolve(ctx context.Context, ref string) (*secondary.Content, error) {
	if m.resolveErr != nil {
		return nil, m.resolveErr
	}
	return &secondary.Content{Body: "content of " + ref}, nil
}

// fakeClock implements secondary.Clock with settable time.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// ============================================================================
// Test setup
// ============================================================================

type schedulerFixture struct {
	repo      *mockScheduleRepository
	publisher *mockPublisher
	resolver  *mockContentResolver
	clock     *fakeClock
	svc       *SchedulerServiceImpl
}

func newSchedulerFixture(t *testing.T) *schedulerFixture {
	t.Helper()

	repo := newMockScheduleRepository()
	publisher := &mockPublisher{}
	resolver := &mockContentResolver{}
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := NewSchedulerService(
		repo,
		map[string]secondary.Publisher{"linkedin": publisher},
		resolver,
		clock,
		logger,
	)
	return &schedulerFixture{
		repo:      repo,
		publisher: publisher,
		resolver:  resolver,
		clock:     clock,
		svc:       svc,
	}
}

// seedEntry puts a pending entry straight into the mock repo.
func (f *schedulerFixture) seedEntry(uuid, kind, parentUUID string, publishAt time.Time) *secondary.ScheduleRecord {
	entry := &secondary.ScheduleRecord{
		UUID:       uuid,
		Kind:       kind,
		Provider:   "linkedin",
		Author:     "alice",
		FilePath:   "/tmp/" + uuid + ".md",
		PublishAt:  publishAt,
		Status:     models.StatusPending,
		ParentUUID: parentUUID,
	}
	f.repo.Create(context.Background(), entry)
	return entry
}

func mustTick(t *testing.T, f *schedulerFixture) *primary.TickResult {
	t.Helper()
	result, err := f.svc.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	return result
}

// ============================================================================
// SchedulerService tests
// ============================================================================

func TestSchedulerService_PublishesDuePost(t *testing.T) {
	f := newSchedulerFixture(t)
	post := f.seedEntry("p1", models.KindPost, "", f.clock.now.Add(-time.Minute))

	result := mustTick(t, f)

	if result.PostsPublished != 1 {
		t.Errorf("expected 1 post published, got %d", result.PostsPublished)
	}
	if post.Status != models.StatusPublished {
		t.Errorf("expected status 'published', got '%s'", post.Status)
	}
	if post.ExternalID == "" {
		t.Error("expected external_id to be set")
	}
	if len(f.publisher.calls) != 1 {
		t.Fatalf("expected 1 publish call, got %d", len(f.publisher.calls))
	}
	if f.publisher.calls[0].ParentExternalID != "" {
		t.Errorf("post must publish without a parent id, got %q", f.publisher.calls[0].ParentExternalID)
	}
}

func TestSchedulerService_SkipsNotYetDue(t *testing.T) {
	f := newSchedulerFixture(t)
	post := f.seedEntry("p1", models.KindPost, "", f.clock.now.Add(time.Hour))

	result := mustTick(t, f)

	if result.Total() != 0 {
		t.Errorf("expected nothing processed, got %+v", result)
	}
	if post.Status != models.StatusPending {
		t.Errorf("expected status 'pending', got '%s'", post.Status)
	}
	if len(f.publisher.calls) != 0 {
		t.Errorf("expected no publish calls, got %d", len(f.publisher.calls))
	}
}

func TestSchedulerService_TickIdempotent(t *testing.T) {
	f := newSchedulerFixture(t)
	f.seedEntry("p1", models.KindPost, "", f.clock.now.Add(-time.Minute))

	mustTick(t, f)
	second := mustTick(t, f)

	if second.Total() != 0 || second.CommentsDeferred != 0 {
		t.Errorf("second tick with no time advance must be a no-op, got %+v", second)
	}
	if len(f.publisher.calls) != 1 {
		t.Errorf("expected exactly 1 publish call, got %d", len(f.publisher.calls))
	}
}

// Scenario A: post now, comment ten minutes later; the comment picks up the
// parent's external identifier once it becomes due.
func TestSchedulerService_ScenarioA_CommentFollowsParent(t *testing.T) {
	f := newSchedulerFixture(t)
	post := f.seedEntry("p1", models.KindPost, "", f.clock.now)
	comment := f.seedEntry("c1", models.KindComment, "p1", f.clock.now.Add(10*time.Minute))

	first := mustTick(t, f)
	if first.PostsPublished != 1 {
		t.Fatalf("expected parent published, got %+v", first)
	}
	if comment.Status != models.StatusPending {
		t.Errorf("comment not yet due, expected 'pending', got '%s'", comment.Status)
	}

	f.clock.Advance(10 * time.Minute)
	second := mustTick(t, f)

	if second.CommentsPublished != 1 {
		t.Fatalf("expected comment published, got %+v", second)
	}
	if comment.Status != models.StatusPublished {
		t.Errorf("expected comment 'published', got '%s'", comment.Status)
	}
	if comment.ExternalID == "" {
		t.Error("expected comment external_id to be set")
	}

	last := f.publisher.calls[len(f.publisher.calls)-1]
	if last.ParentExternalID != post.ExternalID {
		t.Errorf("comment must publish against parent external id %q, got %q", post.ExternalID, last.ParentExternalID)
	}
}

// Scenario B: comment whose parent_uuid points nowhere fails immediately.
func TestSchedulerService_ScenarioB_MissingParentBlocks(t *testing.T) {
	f := newSchedulerFixture(t)
	comment := f.seedEntry("c1", models.KindComment, "uuid-nowhere", f.clock.now)

	result := mustTick(t, f)

	if result.CommentsFailed != 1 {
		t.Fatalf("expected 1 comment failed, got %+v", result)
	}
	if comment.Status != models.StatusFailed {
		t.Errorf("expected status 'failed', got '%s'", comment.Status)
	}
	if comment.BlockedReason != schedule.ReasonParentMissing {
		t.Errorf("expected blocked_reason %q, got %q", schedule.ReasonParentMissing, comment.BlockedReason)
	}
	if len(f.publisher.calls) != 0 {
		t.Errorf("blocked comment must never reach the publisher, got %d calls", len(f.publisher.calls))
	}
}

// Scenario C: parent publish fails; the dependent comment fails too and is
// never retried.
func TestSchedulerService_ScenarioC_FailedParentBlocksComment(t *testing.T) {
	f := newSchedulerFixture(t)
	f.publisher.publishErr = errors.New("platform says no")
	post := f.seedEntry("p1", models.KindPost, "", f.clock.now)
	comment := f.seedEntry("c1", models.KindComment, "p1", f.clock.now.Add(10*time.Minute))

	first := mustTick(t, f)
	if first.PostsFailed != 1 {
		t.Fatalf("expected post failed, got %+v", first)
	}
	if post.Status != models.StatusFailed {
		t.Errorf("expected post 'failed', got '%s'", post.Status)
	}

	f.clock.Advance(10 * time.Minute)
	f.publisher.publishErr = nil // platform recovered, but failed is terminal

	second := mustTick(t, f)
	if second.CommentsFailed != 1 {
		t.Fatalf("expected comment failed, got %+v", second)
	}
	if comment.BlockedReason != schedule.ReasonParentFailed {
		t.Errorf("expected blocked_reason %q, got %q", schedule.ReasonParentFailed, comment.BlockedReason)
	}

	// Neither the failed post nor the blocked comment retries.
	third := mustTick(t, f)
	if third.Total() != 0 {
		t.Errorf("expected terminal states to stay terminal, got %+v", third)
	}
	if len(f.publisher.calls) != 1 {
		t.Errorf("expected only the original failed publish call, got %d", len(f.publisher.calls))
	}
}

// Scenario D: comment due before its parent defers without a blocked_reason,
// then proceeds once the parent publishes.
func TestSchedulerService_ScenarioD_DeferredCommentProceeds(t *testing.T) {
	f := newSchedulerFixture(t)
	// Parent due in five minutes, comment already due (legacy data can
	// violate the creation offset; the daemon must still handle it).
	f.seedEntry("p1", models.KindPost, "", f.clock.now.Add(5*time.Minute))
	comment := f.seedEntry("c1", models.KindComment, "p1", f.clock.now)

	first := mustTick(t, f)
	if first.CommentsDeferred != 1 {
		t.Fatalf("expected 1 comment deferred, got %+v", first)
	}
	if comment.Status != models.StatusPending {
		t.Errorf("deferred comment must stay 'pending', got '%s'", comment.Status)
	}
	if comment.BlockedReason != "" {
		t.Errorf("deferred comment must have no blocked_reason, got %q", comment.BlockedReason)
	}

	// Advance past the parent's due time. Posts are processed before
	// comments within a tick, so both settle in the same tick.
	f.clock.Advance(5 * time.Minute)
	second := mustTick(t, f)

	if second.PostsPublished != 1 || second.CommentsPublished != 1 {
		t.Fatalf("expected parent and comment published in one tick, got %+v", second)
	}
	if comment.Status != models.StatusPublished {
		t.Errorf("expected comment 'published', got '%s'", comment.Status)
	}
}

func TestSchedulerService_PostsBeforeComments_SameTick(t *testing.T) {
	f := newSchedulerFixture(t)
	post := f.seedEntry("p1", models.KindPost, "", f.clock.now)
	comment := f.seedEntry("c1", models.KindComment, "p1", f.clock.now)

	result := mustTick(t, f)

	if result.PostsPublished != 1 || result.CommentsPublished != 1 {
		t.Fatalf("expected both published in one tick, got %+v", result)
	}
	if len(f.publisher.calls) != 2 {
		t.Fatalf("expected 2 publish calls, got %d", len(f.publisher.calls))
	}
	if f.publisher.calls[1].ParentExternalID != post.ExternalID {
		t.Errorf("comment published before its parent settled")
	}
	_ = comment
}

func TestSchedulerService_PublishedParentWithoutIdentifierBlocks(t *testing.T) {
	f := newSchedulerFixture(t)
	parent := f.seedEntry("p1", models.KindPost, "", f.clock.now.Add(-time.Hour))
	parent.Status = models.StatusPublished // published but no external_id
	comment := f.seedEntry("c1", models.KindComment, "p1", f.clock.now)

	result := mustTick(t, f)

	if result.CommentsFailed != 1 {
		t.Fatalf("expected 1 comment failed, got %+v", result)
	}
	if comment.BlockedReason != schedule.ReasonParentMissingIdentifier {
		t.Errorf("expected blocked_reason %q, got %q", schedule.ReasonParentMissingIdentifier, comment.BlockedReason)
	}
}

func TestSchedulerService_UnsupportedProviderFails(t *testing.T) {
	f := newSchedulerFixture(t)
	entry := f.seedEntry("p1", models.KindPost, "", f.clock.now)
	entry.Provider = "friendster"

	result := mustTick(t, f)

	if result.PostsFailed != 1 {
		t.Fatalf("expected 1 post failed, got %+v", result)
	}
	if entry.Status != models.StatusFailed {
		t.Errorf("expected status 'failed', got '%s'", entry.Status)
	}
	if entry.BlockedReason == "" {
		t.Error("expected a diagnostic blocked_reason")
	}
}

func TestSchedulerService_MissingContentFails(t *testing.T) {
	f := newSchedulerFixture(t)
	f.resolver.resolveErr = errors.New("post file not found")
	entry := f.seedEntry("p1", models.KindPost, "", f.clock.now)

	result := mustTick(t, f)

	if result.PostsFailed != 1 {
		t.Fatalf("expected 1 post failed, got %+v", result)
	}
	if entry.Status != models.StatusFailed {
		t.Errorf("expected status 'failed', got '%s'", entry.Status)
	}
}

func TestSchedulerService_OneFailureDoesNotAbortTick(t *testing.T) {
	f := newSchedulerFixture(t)
	bad := f.seedEntry("p1", models.KindPost, "", f.clock.now.Add(-2*time.Minute))
	bad.Provider = "friendster"
	good := f.seedEntry("p2", models.KindPost, "", f.clock.now.Add(-time.Minute))

	result := mustTick(t, f)

	if result.PostsFailed != 1 || result.PostsPublished != 1 {
		t.Fatalf("expected one failure and one publish, got %+v", result)
	}
	if good.Status != models.StatusPublished {
		t.Errorf("later entry must still publish after an earlier failure, got '%s'", good.Status)
	}
}

// blockingPublisher parks in Publish until released, and gives up early if
// its context is cancelled.
type blockingPublisher struct {
	started chan struct{}
	release chan struct{}
}

func (p *blockingPublisher) Publish(ctx context.Context, content *secondary.Content, parentExternalID string) (string, error) {
	select {
	case p.started <- struct{}{}:
	default:
	}
	select {
	case <-p.release:
		return "urn:li:share:99", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestSchedulerService_Run_InFlightPublishSurvivesCancel(t *testing.T) {
	f := newSchedulerFixture(t)
	entry := f.seedEntry("p1", models.KindPost, "", f.clock.now.Add(-time.Minute))

	blocking := &blockingPublisher{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	f.svc.publishers["linkedin"] = blocking

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- f.svc.Run(ctx, 10*time.Millisecond)
	}()

	// Shut down while the publish is in flight, then let it complete.
	<-blocking.started
	cancel()
	close(blocking.release)

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned error on cancel: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}

	if entry.Status != models.StatusPublished {
		t.Errorf("expected in-flight publish to finish as published, got %s (reason %q)",
			entry.Status, entry.BlockedReason)
	}
	if entry.ExternalID != "urn:li:share:99" {
		t.Errorf("expected external id from the completed publish, got %q", entry.ExternalID)
	}
}

func TestSchedulerService_Run_StopsOnCancel(t *testing.T) {
	f := newSchedulerFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- f.svc.Run(ctx, 10*time.Millisecond)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned error on cancel: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}
