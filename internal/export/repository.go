package export

import (
	"context"
	"database/sql"
	"fmt"
)

// Row is one flattened (client, episode, medication) combination.
// Episode and medication fields are blank when the left joins found no
// matching child rows.
type Row struct {
	Name           string
	Identifier     string
	Email          string
	Phone          string
	EntryDate      string
	ExitDate       string
	Notes          string
	MedicationName string
	Dosage         string
	Frequency      string
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// FetchRows performs the full Client ⟕ Episode ⟕ Medication join ordered
// by client name, then entry date descending.
func (r *Repository) FetchRows(ctx context.Context) ([]Row, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.name, c.national_id, c.email, c.phone,
		       e.entry_date, e.exit_date, e.notes,
		       m.name, m.dosage, m.frequency
		FROM clients c
		LEFT JOIN episodes e ON e.client_id = c.id
		LEFT JOIN medications m ON m.episode_id = e.id
		ORDER BY c.name COLLATE NOCASE, e.entry_date DESC, m.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query export rows: %w", err)
	}
	defer rows.Close()

	var result []Row
	for rows.Next() {
		var row Row
		var entryDate, exitDate, notes, medName, dosage, frequency sql.NullString

		err := rows.Scan(&row.Name, &row.Identifier, &row.Email, &row.Phone,
			&entryDate, &exitDate, &notes, &medName, &dosage, &frequency)
		if err != nil {
			return nil, fmt.Errorf("failed to scan export row: %w", err)
		}

		row.EntryDate = entryDate.String
		row.ExitDate = exitDate.String
		row.Notes = notes.String
		row.MedicationName = medName.String
		row.Dosage = dosage.String
		row.Frequency = frequency.String

		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating export rows: %w", err)
	}

	return result, nil
}
