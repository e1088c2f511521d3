package episode

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateEpisode inserts a new episode and its medications for an existing
// client in one transaction. Returns ErrClientNotFound if the client id
// does not reference a client.
func (r *Repository) CreateEpisode(ctx context.Context, clientID int64, ep EpisodeInput, meds []MedicationInput) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM clients WHERE id = ?)`, clientID).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("failed to check client: %w", err)
	}
	if !exists {
		return 0, ErrClientNotFound
	}

	episodeID, err := InsertTx(ctx, tx, clientID, ep)
	if err != nil {
		return 0, err
	}

	if err := InsertMedicationsTx(ctx, tx, episodeID, meds); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return episodeID, nil
}

// UpdateEpisodeAndMedications updates the episode row and fully replaces
// its medication list (delete all, reinsert) in one transaction.
func (r *Repository) UpdateEpisodeAndMedications(ctx context.Context, episodeID int64, ep EpisodeInput, meds []MedicationInput) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE episodes
		SET entry_date = ?, exit_date = ?, notes = ?
		WHERE id = ?
	`, ep.EntryDate, nullableDate(ep.ExitDate), ep.Notes, episodeID)
	if err != nil {
		return fmt.Errorf("failed to update episode: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrEpisodeNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM medications WHERE episode_id = ?`, episodeID); err != nil {
		return fmt.Errorf("failed to clear medications: %w", err)
	}

	if err := InsertMedicationsTx(ctx, tx, episodeID, meds); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// FinalizeEpisode records an exit date on an active episode.
func (r *Repository) FinalizeEpisode(ctx context.Context, episodeID int64, exitDate string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE episodes SET exit_date = ? WHERE id = ?
	`, exitDate, episodeID)
	if err != nil {
		return fmt.Errorf("failed to finalize episode: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrEpisodeNotFound
	}
	return nil
}

// DeleteEpisode removes one episode; its medications cascade at the
// storage level.
func (r *Repository) DeleteEpisode(ctx context.Context, episodeID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM episodes WHERE id = ?`, episodeID)
	if err != nil {
		return fmt.Errorf("failed to delete episode: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrEpisodeNotFound
	}
	return nil
}

// GetEpisode returns one episode with its medications, or
// ErrEpisodeNotFound.
func (r *Repository) GetEpisode(ctx context.Context, episodeID int64) (*Episode, error) {
	var ep Episode
	var exitDate sql.NullString
	var createdAt string

	err := r.db.QueryRowContext(ctx, `
		SELECT id, client_id, entry_date, exit_date, notes, created_at
		FROM episodes
		WHERE id = ?
	`, episodeID).Scan(&ep.ID, &ep.ClientID, &ep.EntryDate, &exitDate, &ep.Notes, &createdAt)

	if err == sql.ErrNoRows {
		return nil, ErrEpisodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query episode: %w", err)
	}

	if exitDate.Valid {
		ep.ExitDate = &exitDate.String
	}
	ep.CreatedAt = parseTimestamp(createdAt)

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, episode_id, name, dosage, frequency, notes
		FROM medications
		WHERE episode_id = ?
		ORDER BY id
	`, episodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query medications: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m Medication
		if err := rows.Scan(&m.ID, &m.EpisodeID, &m.Name, &m.Dosage, &m.Frequency, &m.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan medication: %w", err)
		}
		ep.Medications = append(ep.Medications, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating medications: %w", err)
	}

	return &ep, nil
}

// InsertTx inserts one episode row inside an open transaction and
// returns its generated id. Shared with the client package's atomic
// create path.
func InsertTx(ctx context.Context, tx *sql.Tx, clientID int64, ep EpisodeInput) (int64, error) {
	createdAt := time.Now().UTC().Format(time.RFC3339)

	result, err := tx.ExecContext(ctx, `
		INSERT INTO episodes (client_id, entry_date, exit_date, notes, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, clientID, ep.EntryDate, nullableDate(ep.ExitDate), ep.Notes, createdAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert episode: %w", err)
	}

	episodeID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get episode id: %w", err)
	}
	return episodeID, nil
}

// InsertMedicationsTx inserts every medication with a non-empty name;
// empty-named entries are silently dropped.
func InsertMedicationsTx(ctx context.Context, tx *sql.Tx, episodeID int64, meds []MedicationInput) error {
	for _, m := range meds {
		name := strings.TrimSpace(m.Name)
		if name == "" {
			continue
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO medications (episode_id, name, dosage, frequency, notes)
			VALUES (?, ?, ?, ?, ?)
		`, episodeID, name, m.Dosage, m.Frequency, m.Notes)
		if err != nil {
			return fmt.Errorf("failed to insert medication: %w", err)
		}
	}
	return nil
}

func nullableDate(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
