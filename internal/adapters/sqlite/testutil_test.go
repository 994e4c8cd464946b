// Package sqlite_test contains integration tests for SQLite repositories.
//
// The database schema is loaded in one place: setupTestDB uses
// db.GetSchemaSQL() so tests always run against the authoritative schema.
// Do not hardcode CREATE TABLE statements in test files.
package sqlite_test

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/socialcli/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	// Use the authoritative schema from schema.go
	_, err = testDB.Exec(db.GetSchemaSQL())
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedLegacyRow inserts a row the way the pre-uuid schema wrote them:
// no uuid, no parent linkage, post semantics implied. Returns the row id.
func seedLegacyRow(t *testing.T, testDB *sql.DB, provider, author, filePath string, publishAt time.Time) int64 {
	t.Helper()

	result, err := testDB.Exec(
		"INSERT INTO scheduled_posts (uuid, provider, author, file_path, publish_at, status) VALUES (NULL, ?, ?, ?, ?, 'pending')",
		provider, author, filePath, publishAt,
	)
	if err != nil {
		t.Fatalf("failed to seed legacy row: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("failed to read legacy row id: %v", err)
	}
	return id
}
