package db

import (
	"database/sql"
	"fmt"
)

// Schema DDL for the five record tables. Child tables cascade-delete at
// the storage level when their parent row is removed, so application
// code never loops over children on delete.
const (
	createClients = `CREATE TABLE IF NOT EXISTS clients (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    national_id TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL,
    phone TEXT NOT NULL
);`

	createEpisodes = `CREATE TABLE IF NOT EXISTS episodes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    client_id INTEGER NOT NULL,
    entry_date TEXT NOT NULL,
    exit_date TEXT,
    notes TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    FOREIGN KEY (client_id) REFERENCES clients(id) ON DELETE CASCADE
);`

	createMedications = `CREATE TABLE IF NOT EXISTS medications (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    episode_id INTEGER NOT NULL,
    name TEXT NOT NULL,
    dosage TEXT NOT NULL DEFAULT '',
    frequency TEXT NOT NULL DEFAULT '',
    notes TEXT NOT NULL DEFAULT '',
    FOREIGN KEY (episode_id) REFERENCES episodes(id) ON DELETE CASCADE
);`

	createFamilyMembers = `CREATE TABLE IF NOT EXISTS family_members (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    client_id INTEGER NOT NULL,
    name TEXT NOT NULL,
    relationship TEXT NOT NULL DEFAULT '',
    phone TEXT NOT NULL DEFAULT '',
    email TEXT NOT NULL DEFAULT '',
    address TEXT NOT NULL DEFAULT '',
    notes TEXT NOT NULL DEFAULT '',
    FOREIGN KEY (client_id) REFERENCES clients(id) ON DELETE CASCADE
);`

	createDocuments = `CREATE TABLE IF NOT EXISTS documents (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    client_id INTEGER NOT NULL,
    stored_name TEXT NOT NULL UNIQUE,
    original_name TEXT NOT NULL,
    doc_type TEXT NOT NULL DEFAULT '',
    size_bytes INTEGER NOT NULL,
    uploaded_at TEXT NOT NULL,
    notes TEXT NOT NULL DEFAULT '',
    FOREIGN KEY (client_id) REFERENCES clients(id) ON DELETE CASCADE
);`
)

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_episodes_client ON episodes(client_id);`,
	`CREATE INDEX IF NOT EXISTS idx_episodes_exit ON episodes(exit_date);`,
	`CREATE INDEX IF NOT EXISTS idx_medications_episode ON medications(episode_id);`,
	`CREATE INDEX IF NOT EXISTS idx_family_members_client ON family_members(client_id);`,
	`CREATE INDEX IF NOT EXISTS idx_documents_client ON documents(client_id);`,
}

// ApplySchema creates the record tables and indexes if they do not exist.
func ApplySchema(database *sql.DB) error {
	stmts := []string{
		createClients,
		createEpisodes,
		createMedications,
		createFamilyMembers,
		createDocuments,
	}
	stmts = append(stmts, indexes...)

	for _, stmt := range stmts {
		if _, err := database.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
