package db

import (
	"database/sql"
	"fmt"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.DB) error
}

// migrations is the list of all migrations in order.
// Version 0 (implicit) is the original schema: scheduled_posts with only
// provider, author, file_path, publish_at, status and timestamps.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "add_uuid_column",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_kind_and_parent_uuid_columns",
		Up:      migrationV2,
	},
	{
		Version: 3,
		Name:    "add_external_id_and_blocked_reason_columns",
		Up:      migrationV3,
	},
	{
		Version: 4,
		Name:    "add_due_and_parent_indexes",
		Up:      migrationV4,
	},
}

func createVersionTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

// RunMigrations executes all pending migrations
func RunMigrations() error {
	db, err := GetDB()
	if err != nil {
		return fmt.Errorf("failed to get database: %w", err)
	}

	if err := createVersionTable(db); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	// Get current schema version
	var currentVersion int
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	// Run pending migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(db); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}

		_, err = tx.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// migrationV1 adds the uuid column. Existing rows keep a NULL uuid; the
// repository backfills one the first time such a row is read.
func migrationV1(db *sql.DB) error {
	_, err := db.Exec(`ALTER TABLE scheduled_posts ADD COLUMN uuid TEXT`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_scheduled_posts_uuid ON scheduled_posts(uuid)`)
	return err
}

// migrationV2 adds kind and parent_uuid. Every pre-existing row is a post.
func migrationV2(db *sql.DB) error {
	if _, err := db.Exec(`ALTER TABLE scheduled_posts ADD COLUMN kind TEXT DEFAULT 'post'`); err != nil {
		return err
	}
	_, err := db.Exec(`ALTER TABLE scheduled_posts ADD COLUMN parent_uuid TEXT`)
	return err
}

// migrationV3 adds the publish outcome columns.
func migrationV3(db *sql.DB) error {
	if _, err := db.Exec(`ALTER TABLE scheduled_posts ADD COLUMN external_id TEXT`); err != nil {
		return err
	}
	_, err := db.Exec(`ALTER TABLE scheduled_posts ADD COLUMN blocked_reason TEXT`)
	return err
}

// migrationV4 adds the due-scan and parent lookup indexes.
func migrationV4(db *sql.DB) error {
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_scheduled_posts_due ON scheduled_posts(status, publish_at)`); err != nil {
		return err
	}
	_, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_scheduled_posts_parent ON scheduled_posts(parent_uuid)`)
	return err
}
