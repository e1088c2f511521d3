package document

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ClientExists reports whether a client row with the given id exists.
func (r *Repository) ClientExists(ctx context.Context, clientID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM clients WHERE id = ?)`, clientID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check client: %w", err)
	}
	return exists, nil
}

// InsertDocument stores the metadata row for an already-written file and
// returns the generated id.
func (r *Repository) InsertDocument(ctx context.Context, doc Document) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO documents (client_id, stored_name, original_name, doc_type, size_bytes, uploaded_at, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, doc.ClientID, doc.StoredName, doc.OriginalName, doc.DocType, doc.SizeBytes,
		doc.UploadedAt.UTC().Format(time.RFC3339), doc.Notes)
	if err != nil {
		return 0, fmt.Errorf("failed to insert document: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get document id: %w", err)
	}
	return id, nil
}

// GetDocument returns one metadata row, or ErrDocumentNotFound.
func (r *Repository) GetDocument(ctx context.Context, id int64) (*Document, error) {
	var doc Document
	var uploadedAt string

	err := r.db.QueryRowContext(ctx, `
		SELECT id, client_id, stored_name, original_name, doc_type, size_bytes, uploaded_at, notes
		FROM documents
		WHERE id = ?
	`, id).Scan(&doc.ID, &doc.ClientID, &doc.StoredName, &doc.OriginalName,
		&doc.DocType, &doc.SizeBytes, &uploadedAt, &doc.Notes)

	if err == sql.ErrNoRows {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}

	doc.UploadedAt, _ = time.Parse(time.RFC3339, uploadedAt)
	return &doc, nil
}

// DeleteDocument removes one metadata row and returns the deleted
// document so the caller can remove the backing file from disk.
func (r *Repository) DeleteDocument(ctx context.Context, id int64) (*Document, error) {
	doc, err := r.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete document: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return nil, ErrDocumentNotFound
	}

	return doc, nil
}
