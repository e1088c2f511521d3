package document

import (
	"context"
	"io"
)

// ServiceInterface defines the document operations exposed to handlers.
type ServiceInterface interface {
	Attach(ctx context.Context, in UploadInput, file io.Reader) (*Document, error)
	Delete(ctx context.Context, id int64) (int64, error)
	Open(ctx context.Context, id int64) (*Document, io.ReadCloser, error)
}
