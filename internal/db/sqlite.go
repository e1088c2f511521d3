package db

import (
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/XSAM/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	_ "modernc.org/sqlite"
)

// Connect opens the embedded SQLite database file with OpenTelemetry
// instrumentation and applies the schema. WAL journal mode keeps readers
// from blocking each other; busy_timeout bounds how long a blocked writer
// waits before failing.
func Connect(path string, busyTimeout time.Duration, maxOpen, maxIdle int) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?%s", path, pragmas(busyTimeout))

	// Open database connection with OpenTelemetry instrumentation
	database, err := otelsql.Open("sqlite", dsn,
		otelsql.WithAttributes(
			semconv.DBSystemSqlite,
			semconv.DBName(filepath.Base(path)),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Register database stats for metrics
	err = otelsql.RegisterDBStatsMetrics(database,
		otelsql.WithAttributes(
			semconv.DBSystemSqlite,
			semconv.DBName(filepath.Base(path)),
		),
	)
	if err != nil {
		log.Printf("Warning: failed to register database stats metrics: %v", err)
	}

	if err := database.Ping(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Configure connection pool; SQLite serializes writers, so the pool
	// mainly bounds concurrent readers.
	if maxOpen > 0 {
		database.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		database.SetMaxIdleConns(maxIdle)
	}

	if err := ApplySchema(database); err != nil {
		database.Close()
		return nil, err
	}

	log.Printf("✓ Connected to SQLite database at %s (WAL mode, OpenTelemetry enabled)", path)
	return database, nil
}

// pragmas builds the _pragma DSN parameters applied to every pooled
// connection. foreign_keys must be set per connection for cascade
// deletes to be enforced.
func pragmas(busyTimeout time.Duration) string {
	if busyTimeout <= 0 {
		busyTimeout = 5 * time.Second
	}
	v := url.Values{}
	v.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeout.Milliseconds()))
	v.Add("_pragma", "journal_mode(WAL)")
	v.Add("_pragma", "foreign_keys(1)")
	v.Add("_pragma", "synchronous(NORMAL)")
	return v.Encode()
}
