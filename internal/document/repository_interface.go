package document

import "context"

// RepositoryInterface defines the data access contract for document metadata.
type RepositoryInterface interface {
	ClientExists(ctx context.Context, clientID int64) (bool, error)
	InsertDocument(ctx context.Context, doc Document) (int64, error)
	GetDocument(ctx context.Context, id int64) (*Document, error)
	DeleteDocument(ctx context.Context, id int64) (*Document, error)
}
