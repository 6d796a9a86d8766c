// Package store keeps ingested fire detections in an embedded DuckDB
// database so past detections stay queryable after the feed moves on.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/marcboeker/go-duckdb"
)

var (
	instance *sql.DB
	once     sync.Once
	initErr  error
)

// Config holds database configuration.
type Config struct {
	DataDir string
	DBName  string
}

// Get returns the singleton DuckDB connection, creating the database and the
// detections schema on first call.
func Get(cfg Config) (*sql.DB, error) {
	once.Do(func() {
		duckdbDir := filepath.Join(cfg.DataDir, "duckdb")
		if err := os.MkdirAll(duckdbDir, 0755); err != nil {
			initErr = fmt.Errorf("failed to create duckdb directory: %w", err)
			return
		}

		dbPath := filepath.Join(duckdbDir, cfg.DBName+".duckdb")
		instance, initErr = sql.Open("duckdb", dbPath)
		if initErr != nil {
			return
		}

		if _, err := instance.Exec(detectionsSchema); err != nil {
			initErr = fmt.Errorf("creating detections table: %w", err)
		}
	})
	return instance, initErr
}

// Close closes the database connection.
func Close() error {
	if instance != nil {
		return instance.Close()
	}
	return nil
}
