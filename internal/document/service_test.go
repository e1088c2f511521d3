package document

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/casa-acolhe/records-service/internal/messaging"
	"github.com/casa-acolhe/records-service/internal/testutil"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "uploads"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

var testExts = []string{".pdf", ".png"}

// TestAttach_Success tests the upload happy path
func TestAttach_Success(t *testing.T) {
	store := newTestStore(t)
	mockRepo := &mockRepository{
		clientExistsFunc: func(ctx context.Context, clientID int64) (bool, error) {
			return true, nil
		},
		insertFunc: func(ctx context.Context, doc Document) (int64, error) {
			return 3, nil
		},
	}
	publisher := testutil.NewMockPublisher()
	service := NewService(mockRepo, store, publisher, 1<<20, testExts)

	doc, err := service.Attach(context.Background(),
		UploadInput{ClientID: 5, OriginalName: "rg.pdf", DocType: "identidade", SizeBytes: 11},
		strings.NewReader("hello bytes"))

	if err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	if doc.ID != 3 {
		t.Errorf("Expected document id 3, got %d", doc.ID)
	}
	if !strings.HasPrefix(doc.StoredName, "client5_") {
		t.Errorf("Expected stored name prefixed with client id, got '%s'", doc.StoredName)
	}
	if !strings.HasSuffix(doc.StoredName, ".pdf") {
		t.Errorf("Expected stored name keeping the extension, got '%s'", doc.StoredName)
	}

	// The bytes must be on disk under the stored name
	data, err := os.ReadFile(store.Path(doc.StoredName))
	if err != nil {
		t.Fatalf("Failed to read stored file: %v", err)
	}
	if string(data) != "hello bytes" {
		t.Errorf("Stored file content mismatch: %q", data)
	}

	publisher.AssertEventPublished(t, messaging.EventDocumentUploaded)
}

// TestAttach_UnsupportedType tests the extension allow-list
func TestAttach_UnsupportedType(t *testing.T) {
	service := NewService(&mockRepository{}, newTestStore(t), nil, 1<<20, testExts)

	_, err := service.Attach(context.Background(),
		UploadInput{ClientID: 5, OriginalName: "virus.exe", SizeBytes: 10},
		strings.NewReader("nope"))

	if !errors.Is(err, ErrUnsupportedFileType) {
		t.Errorf("Expected ErrUnsupportedFileType, got: %v", err)
	}
}

// TestAttach_TooLarge tests the size ceiling
func TestAttach_TooLarge(t *testing.T) {
	service := NewService(&mockRepository{}, newTestStore(t), nil, 100, testExts)

	_, err := service.Attach(context.Background(),
		UploadInput{ClientID: 5, OriginalName: "big.pdf", SizeBytes: 101},
		strings.NewReader("too big"))

	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("Expected ErrFileTooLarge, got: %v", err)
	}
}

// TestAttach_ClientNotFound tests upload against an unknown client
func TestAttach_ClientNotFound(t *testing.T) {
	mockRepo := &mockRepository{
		clientExistsFunc: func(ctx context.Context, clientID int64) (bool, error) {
			return false, nil
		},
	}
	service := NewService(mockRepo, newTestStore(t), nil, 1<<20, testExts)

	_, err := service.Attach(context.Background(),
		UploadInput{ClientID: 999, OriginalName: "rg.pdf", SizeBytes: 10},
		strings.NewReader("data"))

	if !errors.Is(err, ErrClientNotFound) {
		t.Errorf("Expected ErrClientNotFound, got: %v", err)
	}
}

// TestAttach_InsertFailureRemovesFile tests orphan blob cleanup
func TestAttach_InsertFailureRemovesFile(t *testing.T) {
	store := newTestStore(t)
	var storedName string
	mockRepo := &mockRepository{
		clientExistsFunc: func(ctx context.Context, clientID int64) (bool, error) {
			return true, nil
		},
		insertFunc: func(ctx context.Context, doc Document) (int64, error) {
			storedName = doc.StoredName
			return 0, errors.New("insert failed")
		},
	}
	service := NewService(mockRepo, store, nil, 1<<20, testExts)

	_, err := service.Attach(context.Background(),
		UploadInput{ClientID: 5, OriginalName: "rg.pdf", SizeBytes: 10},
		strings.NewReader("data"))

	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if _, statErr := os.Stat(store.Path(storedName)); !os.IsNotExist(statErr) {
		t.Errorf("Expected orphaned file removed, stat returned: %v", statErr)
	}
}

// TestDelete_RemovesFileAndReturnsOwner tests metadata-then-file removal
func TestDelete_RemovesFileAndReturnsOwner(t *testing.T) {
	store := newTestStore(t)
	if err := store.Save("client5_doc.pdf", strings.NewReader("data")); err != nil {
		t.Fatalf("Failed to save file: %v", err)
	}

	mockRepo := &mockRepository{
		deleteFunc: func(ctx context.Context, id int64) (*Document, error) {
			return &Document{ID: id, ClientID: 5, StoredName: "client5_doc.pdf"}, nil
		},
	}
	publisher := testutil.NewMockPublisher()
	service := NewService(mockRepo, store, publisher, 1<<20, testExts)

	clientID, err := service.Delete(context.Background(), 3)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if clientID != 5 {
		t.Errorf("Expected owning client 5, got %d", clientID)
	}

	if _, statErr := os.Stat(store.Path("client5_doc.pdf")); !os.IsNotExist(statErr) {
		t.Errorf("Expected stored file removed, stat returned: %v", statErr)
	}
	publisher.AssertEventPublished(t, messaging.EventDocumentDeleted)
}

// TestDelete_NotFound tests deleting unknown metadata
func TestDelete_NotFound(t *testing.T) {
	mockRepo := &mockRepository{
		deleteFunc: func(ctx context.Context, id int64) (*Document, error) {
			return nil, ErrDocumentNotFound
		},
	}
	service := NewService(mockRepo, newTestStore(t), nil, 1<<20, testExts)

	_, err := service.Delete(context.Background(), 999)
	if !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("Expected ErrDocumentNotFound, got: %v", err)
	}
}

// TestOpen_Success tests streaming a stored file back
func TestOpen_Success(t *testing.T) {
	store := newTestStore(t)
	if err := store.Save("client5_doc.pdf", strings.NewReader("stored content")); err != nil {
		t.Fatalf("Failed to save file: %v", err)
	}

	mockRepo := &mockRepository{
		getFunc: func(ctx context.Context, id int64) (*Document, error) {
			return &Document{ID: id, ClientID: 5, StoredName: "client5_doc.pdf", OriginalName: "rg.pdf"}, nil
		},
	}
	service := NewService(mockRepo, store, nil, 1<<20, testExts)

	doc, reader, err := service.Open(context.Background(), 3)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer reader.Close()

	if doc.OriginalName != "rg.pdf" {
		t.Errorf("Expected original name 'rg.pdf', got '%s'", doc.OriginalName)
	}

	buf := make([]byte, 64)
	n, _ := reader.Read(buf)
	if string(buf[:n]) != "stored content" {
		t.Errorf("Expected stored content, got %q", buf[:n])
	}
}

// TestStorePath_FlattensTraversal tests that path components are stripped
func TestStorePath_FlattensTraversal(t *testing.T) {
	store := newTestStore(t)

	path := store.Path("../../etc/passwd")
	if strings.Contains(path, "..") {
		t.Errorf("Expected traversal components stripped, got '%s'", path)
	}
	if filepath.Base(path) != "passwd" {
		t.Errorf("Expected flattened base name, got '%s'", path)
	}
}

// mockRepository is a function-field mock of RepositoryInterface
type mockRepository struct {
	clientExistsFunc func(ctx context.Context, clientID int64) (bool, error)
	insertFunc       func(ctx context.Context, doc Document) (int64, error)
	getFunc          func(ctx context.Context, id int64) (*Document, error)
	deleteFunc       func(ctx context.Context, id int64) (*Document, error)
}

func (m *mockRepository) ClientExists(ctx context.Context, clientID int64) (bool, error) {
	if m.clientExistsFunc != nil {
		return m.clientExistsFunc(ctx, clientID)
	}
	return false, errors.New("not implemented")
}

func (m *mockRepository) InsertDocument(ctx context.Context, doc Document) (int64, error) {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, doc)
	}
	return 0, errors.New("not implemented")
}

func (m *mockRepository) GetDocument(ctx context.Context, id int64) (*Document, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRepository) DeleteDocument(ctx context.Context, id int64) (*Document, error) {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}
