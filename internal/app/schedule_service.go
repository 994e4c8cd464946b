package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/example/socialcli/internal/core/schedule"
	"github.com/example/socialcli/internal/models"
	"github.com/example/socialcli/internal/ports/primary"
	"github.com/example/socialcli/internal/ports/secondary"
)

// ScheduleServiceImpl implements the ScheduleService interface.
type ScheduleServiceImpl struct {
	repo secondary.ScheduleRepository
}

// NewScheduleService creates a new ScheduleService with injected dependencies.
func NewScheduleService(repo secondary.ScheduleRepository) *ScheduleServiceImpl {
	return &ScheduleServiceImpl{repo: repo}
}

// Schedule validates and persists a new schedule entry.
func (s *ScheduleServiceImpl) Schedule(ctx context.Context, req primary.ScheduleRequest) (*primary.ScheduleResponse, error) {
	guardCtx := schedule.CreateContext{
		Kind:       req.Kind,
		PublishAt:  req.PublishAt,
		ParentUUID: req.ParentUUID,
	}

	// Parent existence is validated once, at creation time. A parent
	// pruned later is the daemon's problem, not creation's.
	if req.Kind == models.KindComment && req.ParentUUID != "" {
		parent, err := s.repo.GetByUUID(ctx, req.ParentUUID)
		if err != nil && !errors.Is(err, secondary.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up parent: %w", err)
		}
		if err == nil {
			guardCtx.ParentFound = true
			guardCtx.ParentPublishAt = parent.PublishAt
		}
	}

	// A comment with no explicit publish time defaults to the earliest
	// moment the guard allows: parent publish time plus the minimum offset.
	if req.Kind == models.KindComment && req.PublishAt.IsZero() && guardCtx.ParentFound {
		req.PublishAt = guardCtx.ParentPublishAt.Add(models.MinCommentOffset)
		guardCtx.PublishAt = req.PublishAt
	}

	if result := schedule.CanCreate(guardCtx); !result.Allowed {
		return nil, fmt.Errorf("cannot schedule %s: %w", req.Kind, result.Error())
	}

	entryUUID := req.UUID
	if entryUUID == "" {
		entryUUID = uuid.NewString()
	}

	record := &secondary.ScheduleRecord{
		UUID:       entryUUID,
		Kind:       req.Kind,
		Provider:   req.Provider,
		Author:     req.Author,
		FilePath:   req.FilePath,
		PublishAt:  req.PublishAt,
		Status:     models.StatusPending,
		ParentUUID: req.ParentUUID,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to schedule %s: %w", req.Kind, err)
	}

	// Fetch the created entry to get storage-assigned timestamps.
	created, err := s.repo.GetByUUID(ctx, entryUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch scheduled entry: %w", err)
	}

	return &primary.ScheduleResponse{
		ID:    created.ID,
		UUID:  created.UUID,
		Entry: recordToEntry(created),
	}, nil
}

// GetEntry retrieves an entry by UUID.
func (s *ScheduleServiceImpl) GetEntry(ctx context.Context, entryUUID string) (*primary.ScheduleEntry, error) {
	record, err := s.repo.GetByUUID(ctx, entryUUID)
	if err != nil {
		return nil, err
	}
	return recordToEntry(record), nil
}

// ListEntries lists entries with optional filters.
func (s *ScheduleServiceImpl) ListEntries(ctx context.Context, filters primary.ScheduleFilters) ([]*primary.ScheduleEntry, error) {
	records, err := s.repo.List(ctx, secondary.ScheduleFilters{
		Kind:     filters.Kind,
		Provider: filters.Provider,
		Status:   filters.Status,
		Limit:    filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule entries: %w", err)
	}

	entries := make([]*primary.ScheduleEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, recordToEntry(record))
	}
	return entries, nil
}

// ListComments lists comment entries attached to a parent entry.
func (s *ScheduleServiceImpl) ListComments(ctx context.Context, parentUUID string) ([]*primary.ScheduleEntry, error) {
	records, err := s.repo.ListCommentsFor(ctx, parentUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	entries := make([]*primary.ScheduleEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, recordToEntry(record))
	}
	return entries, nil
}

// CancelEntry removes a pending entry from the queue. Published and failed
// entries are kept as history and cannot be cancelled.
func (s *ScheduleServiceImpl) CancelEntry(ctx context.Context, entryUUID string) error {
	record, err := s.repo.GetByUUID(ctx, entryUUID)
	if err != nil {
		return err
	}

	if record.Status != models.StatusPending {
		return fmt.Errorf("cannot cancel entry %s: status is %s", entryUUID, record.Status)
	}

	if err := s.repo.Delete(ctx, entryUUID); err != nil {
		return fmt.Errorf("failed to cancel entry: %w", err)
	}
	return nil
}

// recordToEntry converts a persistence record to the CLI-facing view.
func recordToEntry(record *secondary.ScheduleRecord) *primary.ScheduleEntry {
	return &primary.ScheduleEntry{
		ID:            record.ID,
		UUID:          record.UUID,
		Kind:          record.Kind,
		Provider:      record.Provider,
		Author:        record.Author,
		FilePath:      record.FilePath,
		PublishAt:     record.PublishAt,
		Status:        record.Status,
		ExternalID:    record.ExternalID,
		ParentUUID:    record.ParentUUID,
		BlockedReason: record.BlockedReason,
		CreatedAt:     record.CreatedAt,
		UpdatedAt:     record.UpdatedAt,
	}
}
