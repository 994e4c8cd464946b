package db

// SchemaSQL is the complete modern schema for fresh socialcli installs.
// This schema reflects the current state after all migrations.
//
// This is the single source of truth for the database schema. All tests
// load it via GetSchemaSQL() so repository code that references a column
// missing here fails immediately with "no such column" instead of drifting.
//
// When adding new columns:
//  1. Add a migration in internal/db/migrations.go
//  2. Update SchemaSQL here
const SchemaSQL = `
-- Scheduled posts and comments (the schedule queue)
CREATE TABLE IF NOT EXISTS scheduled_posts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	uuid TEXT UNIQUE,
	kind TEXT NOT NULL CHECK(kind IN ('post', 'comment')) DEFAULT 'post',
	provider TEXT NOT NULL,
	author TEXT NOT NULL,
	file_path TEXT NOT NULL,
	publish_at DATETIME NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('pending', 'published', 'failed')) DEFAULT 'pending',
	external_id TEXT,
	parent_uuid TEXT,
	blocked_reason TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_scheduled_posts_due
	ON scheduled_posts(status, publish_at);

CREATE INDEX IF NOT EXISTS idx_scheduled_posts_parent
	ON scheduled_posts(parent_uuid);
`

// GetSchemaSQL returns the authoritative schema SQL. Tests use this to
// build in-memory databases instead of hardcoding CREATE TABLE statements.
func GetSchemaSQL() string {
	return SchemaSQL
}

// InitSchema creates or upgrades the schema on the shared connection.
func InitSchema() error {
	db, err := GetDB()
	if err != nil {
		return err
	}

	// Check if schema_version table exists to determine if this is a fresh install
	var tableCount int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount == 0 {
		// No version table - check for a legacy scheduled_posts table
		// written by older releases (pre-uuid schema).
		var legacyCount int
		err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='scheduled_posts'").Scan(&legacyCount)
		if err != nil {
			return err
		}

		if legacyCount > 0 {
			// Legacy schema exists - run migrations to upgrade in place.
			return RunMigrations()
		}

		// Completely fresh install - create modern schema directly and
		// mark all migrations as applied so they never run.
		if _, err := db.Exec(SchemaSQL); err != nil {
			return err
		}
		if err := createVersionTable(db); err != nil {
			return err
		}
		for _, m := range migrations {
			if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
				return err
			}
		}
		return nil
	}

	// Existing install - apply any pending migrations.
	return RunMigrations()
}
