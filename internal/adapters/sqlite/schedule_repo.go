// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/socialcli/internal/models"
	"github.com/example/socialcli/internal/ports/secondary"
)

// ScheduleRepository implements secondary.ScheduleRepository with SQLite.
//
// Every operation runs under a single store-wide mutex. The lock scope is
// one logical operation: coarse, but entry volume is low and operations are
// short, and it guarantees a daemon tick and a concurrent CLI write never
// interleave a read-modify-write. Cross-process writers are serialized by
// SQLite's own file locking.
type ScheduleRepository struct {
	db *sql.DB
	mu sync.Mutex
}

// NewScheduleRepository creates a new SQLite schedule repository.
func NewScheduleRepository(db *sql.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

const scheduleSelectCols = "id, uuid, kind, provider, author, file_path, publish_at, status, external_id, parent_uuid, blocked_reason, created_at, updated_at"

// scanSchedule scans a scheduled_posts row into a ScheduleRecord.
func scanSchedule(scanner interface {
	Scan(dest ...any) error
}) (*secondary.ScheduleRecord, error) {
	var (
		entryUUID     sql.NullString
		kind          sql.NullString
		externalID    sql.NullString
		parentUUID    sql.NullString
		blockedReason sql.NullString
	)

	record := &secondary.ScheduleRecord{}
	err := scanner.Scan(
		&record.ID, &entryUUID, &kind, &record.Provider, &record.Author,
		&record.FilePath, &record.PublishAt, &record.Status,
		&externalID, &parentUUID, &blockedReason,
		&record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.UUID = entryUUID.String
	record.Kind = kind.String
	if record.Kind == "" {
		// Rows written before the kind column existed are posts.
		record.Kind = models.KindPost
	}
	record.ExternalID = externalID.String
	record.ParentUUID = parentUUID.String
	record.BlockedReason = blockedReason.String

	return record, nil
}

// ensureUUID backfills a UUID for legacy rows that predate the uuid column.
// The generated value is persisted immediately so the row stays addressable
// by UUID across restarts. Caller must hold the repository lock.
func (r *ScheduleRepository) ensureUUID(ctx context.Context, record *secondary.ScheduleRecord) error {
	if record.UUID != "" {
		return nil
	}

	record.UUID = uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		"UPDATE scheduled_posts SET uuid = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND uuid IS NULL",
		record.UUID, record.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to backfill uuid for entry %d: %w", record.ID, err)
	}
	return nil
}

// Create persists a new schedule entry.
//
// publish_at is stored normalized to UTC. The driver serializes time.Time
// as a string carrying the value's own offset, and SQLite compares those
// strings lexicographically, so a mixed-offset column would break both the
// due cutoff and the ORDER BY. Normalizing every write keeps string order
// equal to instant order.
func (r *ScheduleRepository) Create(ctx context.Context, entry *secondary.ScheduleRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.UUID == "" {
		entry.UUID = uuid.NewString()
	}
	if entry.Status == "" {
		entry.Status = models.StatusPending
	}

	var parentUUID sql.NullString
	if entry.ParentUUID != "" {
		parentUUID = sql.NullString{String: entry.ParentUUID, Valid: true}
	}

	result, err := r.db.ExecContext(ctx,
		"INSERT INTO scheduled_posts (uuid, kind, provider, author, file_path, publish_at, status, parent_uuid) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		entry.UUID, entry.Kind, entry.Provider, entry.Author, entry.FilePath, entry.PublishAt.UTC(), entry.Status, parentUUID,
	)
	if err != nil {
		return fmt.Errorf("failed to create schedule entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read schedule entry id: %w", err)
	}
	entry.ID = id

	return nil
}

// GetByUUID retrieves an entry by its UUID.
func (r *ScheduleRepository) GetByUUID(ctx context.Context, entryUUID string) (*secondary.ScheduleRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row := r.db.QueryRowContext(ctx,
		"SELECT "+scheduleSelectCols+" FROM scheduled_posts WHERE uuid = ?",
		entryUUID,
	)

	record, err := scanSchedule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("schedule entry %s: %w", entryUUID, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule entry: %w", err)
	}

	return record, nil
}

// ListDue retrieves pending entries of the given kind that are due at now.
// Ordering is part of the contract: earliest publish_at first, ties broken
// by id ascending so ticks are deterministic.
func (r *ScheduleRepository) ListDue(ctx context.Context, kind string, now time.Time) ([]*secondary.ScheduleRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+scheduleSelectCols+" FROM scheduled_posts WHERE status = ? AND COALESCE(kind, 'post') = ? AND publish_at <= ? ORDER BY publish_at ASC, id ASC",
		models.StatusPending, kind, now.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list due entries: %w", err)
	}
	defer rows.Close()

	return r.collect(ctx, rows)
}

// List retrieves entries matching the filters, newest publish time first.
func (r *ScheduleRepository) List(ctx context.Context, filters secondary.ScheduleFilters) ([]*secondary.ScheduleRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := "SELECT " + scheduleSelectCols + " FROM scheduled_posts"
	var conditions []string
	var args []any

	if filters.Kind != "" {
		conditions = append(conditions, "COALESCE(kind, 'post') = ?")
		args = append(args, filters.Kind)
	}
	if filters.Provider != "" {
		conditions = append(conditions, "provider = ?")
		args = append(args, filters.Provider)
	}
	if filters.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filters.Status)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY publish_at DESC, id DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule entries: %w", err)
	}
	defer rows.Close()

	return r.collect(ctx, rows)
}

// ListCommentsFor retrieves comment entries referencing the given parent.
func (r *ScheduleRepository) ListCommentsFor(ctx context.Context, parentUUID string) ([]*secondary.ScheduleRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+scheduleSelectCols+" FROM scheduled_posts WHERE parent_uuid = ? ORDER BY publish_at ASC, id ASC",
		parentUUID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments for %s: %w", parentUUID, err)
	}
	defer rows.Close()

	return r.collect(ctx, rows)
}

// collect drains rows into records, backfilling UUIDs on legacy rows.
func (r *ScheduleRepository) collect(ctx context.Context, rows *sql.Rows) ([]*secondary.ScheduleRecord, error) {
	var records []*secondary.ScheduleRecord
	for rows.Next() {
		record, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule entry: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate schedule entries: %w", err)
	}

	for _, record := range records {
		if err := r.ensureUUID(ctx, record); err != nil {
			return nil, err
		}
	}

	return records, nil
}

// Update applies a partial update to the entry with the given UUID.
// The write is all-or-nothing: it runs in a transaction and updated_at is
// bumped together with the changed fields.
func (r *ScheduleRepository) Update(ctx context.Context, entryUUID string, upd secondary.ScheduleUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	setClauses := []string{"updated_at = CURRENT_TIMESTAMP"}
	var args []any

	if upd.Status != nil {
		setClauses = append(setClauses, "status = ?")
		args = append(args, *upd.Status)
	}
	if upd.ExternalID != nil {
		setClauses = append(setClauses, "external_id = ?")
		args = append(args, *upd.ExternalID)
	}
	if upd.BlockedReason != nil {
		setClauses = append(setClauses, "blocked_reason = ?")
		args = append(args, *upd.BlockedReason)
	}
	args = append(args, entryUUID)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin update: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		"UPDATE scheduled_posts SET "+strings.Join(setClauses, ", ")+" WHERE uuid = ?",
		args...,
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to update schedule entry: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		tx.Rollback()
		return fmt.Errorf("schedule entry %s: %w", entryUUID, secondary.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit update: %w", err)
	}

	return nil
}

// Delete removes an entry from the queue.
func (r *ScheduleRepository) Delete(ctx context.Context, entryUUID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	result, err := r.db.ExecContext(ctx, "DELETE FROM scheduled_posts WHERE uuid = ?", entryUUID)
	if err != nil {
		return fmt.Errorf("failed to delete schedule entry: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("schedule entry %s: %w", entryUUID, secondary.ErrNotFound)
	}

	return nil
}
