package ports

import (
	"context"
	"errors"
)

var ErrDocumentNotFound = errors.New("document not found")

type DocumentFile struct {
	Name       string
	Size       int64
	ModifiedAt string
}

// DocumentStore is the tray of uploaded assessment documents waiting for
// extraction. Processed files are relocated out of the listing.
type DocumentStore interface {
	List(ctx context.Context) ([]DocumentFile, error)
	Read(ctx context.Context, name string) ([]byte, error)
	MoveToProcessed(ctx context.Context, name string) error
	Ping(ctx context.Context) error
	Location() string
}
