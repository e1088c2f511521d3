package client

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/casa-acolhe/records-service/internal/db"
	"github.com/casa-acolhe/records-service/internal/document"
	"github.com/casa-acolhe/records-service/internal/episode"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(database *sql.DB) *Repository {
	return &Repository{db: database}
}

// CreateClientWithEpisode inserts the client, its first episode, the
// episode's medications and the family contacts in one transaction.
// The national identifier must already be stripped to digits by the
// caller. If another client owns the identifier nothing is written and a
// DuplicateIdentifierError naming that client is returned.
func (r *Repository) CreateClientWithEpisode(ctx context.Context, c ClientInput, ep episode.EpisodeInput, meds []episode.MedicationInput, family []FamilyMemberInput) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existingID int64
	var existingName string
	err = tx.QueryRowContext(ctx, `SELECT id, name FROM clients WHERE national_id = ?`, c.NationalID).
		Scan(&existingID, &existingName)
	if err == nil {
		return 0, &DuplicateIdentifierError{
			NationalID:   c.NationalID,
			ExistingID:   existingID,
			ExistingName: existingName,
		}
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to check identifier uniqueness: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO clients (name, national_id, email, phone)
		VALUES (?, ?, ?, ?)
	`, c.Name, c.NationalID, c.Email, c.Phone)
	if err != nil {
		// A concurrent create can slip past the pre-check; the UNIQUE
		// constraint is the backstop.
		if db.IsUniqueViolation(err) {
			return 0, &DuplicateIdentifierError{NationalID: c.NationalID}
		}
		return 0, fmt.Errorf("failed to insert client: %w", err)
	}

	clientID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get client id: %w", err)
	}

	episodeID, err := episode.InsertTx(ctx, tx, clientID, ep)
	if err != nil {
		return 0, err
	}

	if err := episode.InsertMedicationsTx(ctx, tx, episodeID, meds); err != nil {
		return 0, err
	}

	if err := insertFamilyTx(ctx, tx, clientID, family); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return clientID, nil
}

// UpdateClientAndFamily updates the client's mutable fields (the national
// identifier is immutable after creation) and fully replaces the family
// contact list in one transaction.
func (r *Repository) UpdateClientAndFamily(ctx context.Context, clientID int64, c ClientInput, family []FamilyMemberInput) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE clients SET name = ?, email = ?, phone = ? WHERE id = ?
	`, c.Name, c.Email, c.Phone, clientID)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrClientNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM family_members WHERE client_id = ?`, clientID); err != nil {
		return fmt.Errorf("failed to clear family members: %w", err)
	}

	if err := insertFamilyTx(ctx, tx, clientID, family); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteClient removes the client row; episodes, medications, family
// members and document metadata cascade at the storage level. The stored
// filenames of the client's documents are returned so the caller can
// remove the backing files from disk.
func (r *Repository) DeleteClient(ctx context.Context, clientID int64) ([]string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT stored_name FROM documents WHERE client_id = ?`, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query document files: %w", err)
	}

	var storedNames []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan document file: %w", err)
		}
		storedNames = append(storedNames, name)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error iterating document files: %w", err)
	}
	rows.Close()

	result, err := tx.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete client: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrClientNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return storedNames, nil
}

// GetClientDetail returns the client with its episodes (each carrying
// its medications, newest episode first), family members ordered by name
// and documents ordered by upload time descending.
func (r *Repository) GetClientDetail(ctx context.Context, clientID int64) (*ClientDetail, error) {
	var detail ClientDetail

	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, national_id, email, phone FROM clients WHERE id = ?
	`, clientID).Scan(&detail.ID, &detail.Name, &detail.NationalID, &detail.Email, &detail.Phone)
	if err == sql.ErrNoRows {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query client: %w", err)
	}

	episodes, err := r.episodesForClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	detail.Episodes = episodes

	family, err := r.familyForClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	detail.Family = family

	documents, err := r.documentsForClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	detail.Documents = documents

	return &detail, nil
}

func (r *Repository) episodesForClient(ctx context.Context, clientID int64) ([]episode.Episode, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, client_id, entry_date, exit_date, notes, created_at
		FROM episodes
		WHERE client_id = ?
		ORDER BY created_at DESC, id DESC
	`, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query episodes: %w", err)
	}
	defer rows.Close()

	episodes := []episode.Episode{}
	index := map[int64]int{}
	for rows.Next() {
		ep, err := scanEpisode(rows)
		if err != nil {
			return nil, err
		}
		index[ep.ID] = len(episodes)
		episodes = append(episodes, ep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating episodes: %w", err)
	}

	medRows, err := r.db.QueryContext(ctx, `
		SELECT m.id, m.episode_id, m.name, m.dosage, m.frequency, m.notes
		FROM medications m
		JOIN episodes e ON e.id = m.episode_id
		WHERE e.client_id = ?
		ORDER BY m.id
	`, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query medications: %w", err)
	}
	defer medRows.Close()

	for medRows.Next() {
		var m episode.Medication
		if err := medRows.Scan(&m.ID, &m.EpisodeID, &m.Name, &m.Dosage, &m.Frequency, &m.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan medication: %w", err)
		}
		if i, ok := index[m.EpisodeID]; ok {
			episodes[i].Medications = append(episodes[i].Medications, m)
		}
	}
	if err := medRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating medications: %w", err)
	}

	return episodes, nil
}

func (r *Repository) familyForClient(ctx context.Context, clientID int64) ([]FamilyMember, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, client_id, name, relationship, phone, email, address, notes
		FROM family_members
		WHERE client_id = ?
		ORDER BY name COLLATE NOCASE
	`, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query family members: %w", err)
	}
	defer rows.Close()

	family := []FamilyMember{}
	for rows.Next() {
		var f FamilyMember
		if err := rows.Scan(&f.ID, &f.ClientID, &f.Name, &f.Relationship, &f.Phone, &f.Email, &f.Address, &f.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan family member: %w", err)
		}
		family = append(family, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating family members: %w", err)
	}
	return family, nil
}

func (r *Repository) documentsForClient(ctx context.Context, clientID int64) ([]document.Document, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, client_id, stored_name, original_name, doc_type, size_bytes, uploaded_at, notes
		FROM documents
		WHERE client_id = ?
		ORDER BY uploaded_at DESC, id DESC
	`, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	documents := []document.Document{}
	for rows.Next() {
		var d document.Document
		var uploadedAt string
		if err := rows.Scan(&d.ID, &d.ClientID, &d.StoredName, &d.OriginalName, &d.DocType, &d.SizeBytes, &uploadedAt, &d.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		d.UploadedAt, _ = time.Parse(time.RFC3339, uploadedAt)
		documents = append(documents, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}
	return documents, nil
}

// ListClients runs the filtered LEFT JOIN of clients with episodes and
// groups the flat rows into client→episodes structures. Clients with no
// episodes still appear (with an empty episode list) unless an
// episode-level criterion filters them out.
func (r *Repository) ListClients(ctx context.Context, f ListFilter) ([]ClientWithEpisodes, error) {
	query := strings.Builder{}
	query.WriteString(`
		SELECT c.id, c.name, c.national_id, c.email, c.phone,
		       e.id, e.client_id, e.entry_date, e.exit_date, e.notes, e.created_at
		FROM clients c
		LEFT JOIN episodes e ON e.client_id = c.id
	`)

	var conds []string
	var args []any

	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		conds = append(conds, `(LOWER(c.name) LIKE ? OR c.national_id LIKE ? OR LOWER(c.email) LIKE ?)`)
		args = append(args, like, like, like)
	}

	switch f.Status {
	case StatusActive:
		conds = append(conds, `e.id IS NOT NULL AND e.exit_date IS NULL`)
	case StatusFinalized:
		conds = append(conds, `e.exit_date IS NOT NULL`)
	}

	if f.EntryFrom != "" {
		conds = append(conds, `e.entry_date >= ?`)
		args = append(args, f.EntryFrom)
	}
	if f.EntryTo != "" {
		conds = append(conds, `e.entry_date <= ?`)
		args = append(args, f.EntryTo)
	}

	if len(conds) > 0 {
		query.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	query.WriteString(" ORDER BY c.id DESC, e.created_at DESC, e.id DESC")

	rows, err := r.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close()

	clients := []ClientWithEpisodes{}
	index := map[int64]int{}

	for rows.Next() {
		var c Client
		var epID sql.NullInt64
		var epClientID sql.NullInt64
		var entryDate, exitDate, notes, createdAt sql.NullString

		err := rows.Scan(&c.ID, &c.Name, &c.NationalID, &c.Email, &c.Phone,
			&epID, &epClientID, &entryDate, &exitDate, &notes, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing row: %w", err)
		}

		i, ok := index[c.ID]
		if !ok {
			i = len(clients)
			index[c.ID] = i
			clients = append(clients, ClientWithEpisodes{Client: c, Episodes: []episode.Episode{}})
		}

		if epID.Valid {
			ep := episode.Episode{
				ID:        epID.Int64,
				ClientID:  epClientID.Int64,
				EntryDate: entryDate.String,
				Notes:     notes.String,
			}
			if exitDate.Valid {
				ep.ExitDate = &exitDate.String
			}
			if createdAt.Valid {
				ep.CreatedAt, _ = time.Parse(time.RFC3339, createdAt.String)
			}
			clients[i].Episodes = append(clients[i].Episodes, ep)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating listing rows: %w", err)
	}

	return clients, nil
}

// CountByStatus returns the listing header counts. Episodes whose owning
// client no longer exists are excluded by the JOIN.
func (r *Repository) CountByStatus(ctx context.Context) (Counts, error) {
	var counts Counts

	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients`).Scan(&counts.TotalClients)
	if err != nil {
		return counts, fmt.Errorf("failed to count clients: %w", err)
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM episodes e
		JOIN clients c ON c.id = e.client_id
		WHERE e.exit_date IS NULL
	`).Scan(&counts.ActiveEpisodes)
	if err != nil {
		return counts, fmt.Errorf("failed to count active episodes: %w", err)
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM episodes e
		JOIN clients c ON c.id = e.client_id
		WHERE e.exit_date IS NOT NULL
	`).Scan(&counts.FinalizedEpisodes)
	if err != nil {
		return counts, fmt.Errorf("failed to count finalized episodes: %w", err)
	}

	return counts, nil
}

// SweepOrphanEpisodes deletes episodes whose owning client is gone.
// With foreign-key cascade enforced this is a no-op; it remains as an
// idempotent safety net for rows that predate enforcement.
func (r *Repository) SweepOrphanEpisodes(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM episodes WHERE client_id NOT IN (SELECT id FROM clients)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep orphan episodes: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return removed, nil
}

func insertFamilyTx(ctx context.Context, tx *sql.Tx, clientID int64, family []FamilyMemberInput) error {
	for _, f := range family {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			continue
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO family_members (client_id, name, relationship, phone, email, address, notes)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, clientID, name, f.Relationship, f.Phone, f.Email, f.Address, f.Notes)
		if err != nil {
			return fmt.Errorf("failed to insert family member: %w", err)
		}
	}
	return nil
}

func scanEpisode(rows *sql.Rows) (episode.Episode, error) {
	var ep episode.Episode
	var exitDate sql.NullString
	var createdAt string

	if err := rows.Scan(&ep.ID, &ep.ClientID, &ep.EntryDate, &exitDate, &ep.Notes, &createdAt); err != nil {
		return ep, fmt.Errorf("failed to scan episode: %w", err)
	}
	if exitDate.Valid {
		ep.ExitDate = &exitDate.String
	}
	ep.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return ep, nil
}
