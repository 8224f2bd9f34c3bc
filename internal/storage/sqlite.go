// Package storage provides SQLite persistence for fleetwatch.
package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite database connection.
type DB struct {
	*sql.DB
	mu sync.RWMutex
}

var (
	instance *DB
	once     sync.Once
)

// GetDB returns the singleton database instance.
func GetDB() *DB {
	return instance
}

// Initialize creates and initializes the database in the data directory.
func Initialize(dataDir string) (*DB, error) {
	var initErr error
	once.Do(func() {
		instance, initErr = Open(filepath.Join(dataDir, "fleetwatch.db"))
	})

	return instance, initErr
}

// Open opens a database at the given path and creates the schema.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	wrapped := &DB{DB: db}
	if err := wrapped.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return wrapped, nil
}

func (db *DB) createTables() error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS geo_cache (
			ip TEXT PRIMARY KEY,
			region TEXT,
			city TEXT,
			country TEXT,
			latitude REAL DEFAULT 0,
			longitude REAL DEFAULT 0,
			error TEXT,
			resolved_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_geo_cache_country ON geo_cache(country)`,

		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
			total_devices INTEGER NOT NULL,
			cas_activated INTEGER NOT NULL,
			devices_in_sa INTEGER NOT NULL,
			devices_not_in_sa INTEGER NOT NULL,
			devices_online INTEGER NOT NULL,
			connected_last_24h INTEGER NOT NULL,
			new_connected_last_24h INTEGER NOT NULL,
			new_connected_last_7_days INTEGER NOT NULL,
			new_connected_since_first_of_month INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS run_retailers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL,
			retailer TEXT NOT NULL,
			total INTEGER NOT NULL,
			activated INTEGER NOT NULL,
			in_sa INTEGER NOT NULL,
			FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE,
			UNIQUE(run_id, retailer)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_run_retailers_run_id ON run_retailers(run_id)`,
	}

	for _, table := range tables {
		if _, err := db.Exec(table); err != nil {
			return fmt.Errorf("failed to execute: %s: %w", table, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.DB.Close()
}

// WithLock executes a function with write lock.
func (db *DB) WithLock(fn func() error) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return fn()
}

// WithRLock executes a function with read lock.
func (db *DB) WithRLock(fn func() error) error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return fn()
}
