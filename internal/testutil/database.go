package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/casa-acolhe/records-service/internal/db"
)

// SetupTestDB creates a fresh SQLite database in a temp directory with the
// full schema applied. The file is removed automatically when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "records_test.db")

	database, err := db.Connect(path, 5*time.Second, 1, 1)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	t.Cleanup(func() {
		database.Close()
	})

	return database
}

// SeedClient inserts a client row directly and returns its id.
func SeedClient(t *testing.T, database *sql.DB, name, nationalID, email, phone string) int64 {
	t.Helper()

	result, err := database.Exec(
		`INSERT INTO clients (name, national_id, email, phone) VALUES (?, ?, ?, ?)`,
		name, nationalID, email, phone,
	)
	if err != nil {
		t.Fatalf("Failed to seed client: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to get seeded client id: %v", err)
	}
	return id
}

// SeedEpisode inserts an episode row directly and returns its id.
// Pass an empty exitDate for an active episode.
func SeedEpisode(t *testing.T, database *sql.DB, clientID int64, entryDate, exitDate string) int64 {
	t.Helper()

	var exit interface{}
	if exitDate != "" {
		exit = exitDate
	}

	result, err := database.Exec(
		`INSERT INTO episodes (client_id, entry_date, exit_date, notes, created_at) VALUES (?, ?, ?, '', ?)`,
		clientID, entryDate, exit, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		t.Fatalf("Failed to seed episode: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to get seeded episode id: %v", err)
	}
	return id
}

// CountRows returns the number of rows in a table.
func CountRows(t *testing.T, database *sql.DB, table string) int {
	t.Helper()

	var count int
	if err := database.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
		t.Fatalf("Failed to count rows in %s: %v", table, err)
	}
	return count
}
