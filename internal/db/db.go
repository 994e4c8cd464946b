package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

var db *sql.DB

var dbInitialized bool

// GetDB returns the database connection, initializing if needed
func GetDB() (*sql.DB, error) {
	if db != nil {
		return db, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	cliDir := filepath.Join(home, ".socialcli")
	dbPath := filepath.Join(cliDir, "socialcli.db")

	// Ensure .socialcli directory exists
	if err := os.MkdirAll(cliDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create .socialcli directory: %w", err)
	}

	// Open database connection. The busy timeout covers the daemon and a
	// CLI invocation sharing the file; txlock makes every transaction take
	// the write lock up front (BEGIN IMMEDIATE).
	db, err = sql.Open("sqlite3", dbPath+"?_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A failed startup check must not leave a broken handle cached.
	fail := func(err error) (*sql.DB, error) {
		db.Close()
		db = nil
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fail(fmt.Errorf("failed to enable foreign keys: %w", err))
	}

	// A corrupt store is fatal: refuse to run rather than silently
	// operate on a partial queue.
	var check string
	if err := db.QueryRow("PRAGMA quick_check").Scan(&check); err != nil {
		return fail(fmt.Errorf("failed to check database integrity: %w", err))
	}
	if check != "ok" {
		return fail(fmt.Errorf("schedule database %s is corrupt: %s", dbPath, check))
	}

	// Run schema setup on first connection (but avoid recursion)
	if !dbInitialized {
		dbInitialized = true
		if err := InitSchema(); err != nil {
			dbInitialized = false
			return fail(fmt.Errorf("failed to initialize schema: %w", err))
		}
	}

	return db, nil
}

// Close closes the database connection
func Close() error {
	if db != nil {
		return db.Close()
	}
	return nil
}

// GetDBPath returns the path to the database file
func GetDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".socialcli", "socialcli.db"), nil
}
