package document

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/casa-acolhe/records-service/internal/messaging"
)

type Service struct {
	repo        RepositoryInterface
	store       *Store
	publisher   messaging.EventPublisher
	maxSize     int64
	allowedExts map[string]bool
}

func NewService(repo RepositoryInterface, store *Store, publisher messaging.EventPublisher, maxSize int64, allowedExts []string) *Service {
	allowed := make(map[string]bool, len(allowedExts))
	for _, ext := range allowedExts {
		allowed[strings.ToLower(ext)] = true
	}
	return &Service{
		repo:        repo,
		store:       store,
		publisher:   publisher,
		maxSize:     maxSize,
		allowedExts: allowed,
	}
}

// Attach validates and stores one uploaded file, then records its
// metadata. The file is written to disk before the metadata insert; if
// the insert fails the just-written file is removed so no orphan blob
// stays behind.
func (s *Service) Attach(ctx context.Context, in UploadInput, file io.Reader) (*Document, error) {
	ext := strings.ToLower(filepath.Ext(in.OriginalName))
	if !s.allowedExts[ext] {
		return nil, ErrUnsupportedFileType
	}
	if s.maxSize > 0 && in.SizeBytes > s.maxSize {
		return nil, ErrFileTooLarge
	}

	exists, err := s.repo.ClientExists(ctx, in.ClientID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrClientNotFound
	}

	uploadedAt := time.Now().UTC()
	storedName := storedFileName(in.ClientID, uploadedAt, ext)

	if err := s.store.Save(storedName, file); err != nil {
		return nil, err
	}

	doc := Document{
		ClientID:     in.ClientID,
		StoredName:   storedName,
		OriginalName: in.OriginalName,
		DocType:      in.DocType,
		SizeBytes:    in.SizeBytes,
		UploadedAt:   uploadedAt,
		Notes:        in.Notes,
	}

	id, err := s.repo.InsertDocument(ctx, doc)
	if err != nil {
		if removeErr := s.store.Remove(storedName); removeErr != nil {
			log.Printf("Warning: failed to remove orphaned upload %s: %v", storedName, removeErr)
		}
		return nil, err
	}
	doc.ID = id

	messaging.PublishEvent(ctx, s.publisher, messaging.EventDocumentUploaded, messaging.DocumentEventData{
		DocumentID:   id,
		ClientID:     in.ClientID,
		StoredName:   storedName,
		OriginalName: in.OriginalName,
		SizeBytes:    in.SizeBytes,
	})

	return &doc, nil
}

// Delete removes the metadata row, then the backing file. The two steps
// are not atomic; a file-removal failure is logged and the delete still
// succeeds, since the row is already gone. Returns the owning client id.
func (s *Service) Delete(ctx context.Context, id int64) (int64, error) {
	doc, err := s.repo.DeleteDocument(ctx, id)
	if err != nil {
		return 0, err
	}

	if err := s.store.Remove(doc.StoredName); err != nil {
		log.Printf("Warning: failed to remove stored file %s: %v", doc.StoredName, err)
	}

	messaging.PublishEvent(ctx, s.publisher, messaging.EventDocumentDeleted, messaging.DocumentEventData{
		DocumentID: id,
		ClientID:   doc.ClientID,
		StoredName: doc.StoredName,
	})

	return doc.ClientID, nil
}

// Open returns the metadata row and an open reader on the stored file.
// The caller closes the reader.
func (s *Service) Open(ctx context.Context, id int64) (*Document, io.ReadCloser, error) {
	doc, err := s.repo.GetDocument(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	f, err := s.store.Open(doc.StoredName)
	if err != nil {
		return nil, nil, err
	}
	return doc, f, nil
}

// storedFileName builds a collision-resistant name from the client id,
// the upload timestamp and a random fragment.
func storedFileName(clientID int64, uploadedAt time.Time, ext string) string {
	return fmt.Sprintf("client%d_%d_%s%s", clientID, uploadedAt.UnixNano(), uuid.NewString()[:8], ext)
}
