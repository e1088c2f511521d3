package document

import "time"

// Document is the metadata row for one uploaded file. The bytes live on
// disk under the stored name; only metadata is kept in the database.
type Document struct {
	ID           int64     `json:"id"`
	ClientID     int64     `json:"client_id"`
	StoredName   string    `json:"stored_name"`
	OriginalName string    `json:"original_name"`
	DocType      string    `json:"doc_type"`
	SizeBytes    int64     `json:"size_bytes"`
	UploadedAt   time.Time `json:"uploaded_at"`
	Notes        string    `json:"notes"`
}

// UploadInput carries one upload request after the multipart boundary
// has been parsed.
type UploadInput struct {
	ClientID     int64
	OriginalName string
	DocType      string
	Notes        string
	SizeBytes    int64
}
