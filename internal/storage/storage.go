package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/bcnelson/pairstore/internal/domain"
)

// Document is the collaborator the pair store reads and writes through.
// A locator names one persisted document; how it maps to a remote path,
// object or row is up to the implementation.
//
// ReadRaw returns empty bytes and no error when the document does not
// exist yet. WriteRaw creates the document or replaces its full content.
// Implementations must be safe for concurrent use.
type Document interface {
	ReadRaw(ctx context.Context, locator string) ([]byte, error)
	WriteRaw(ctx context.Context, locator string, data []byte) error

	// Close releases the underlying connection.
	Close() error
}

// RevisionLister is implemented by backends that keep every written
// version of a document.
type RevisionLister interface {
	ListRevisions(ctx context.Context, locator string, limit int) ([]*domain.Revision, error)
}

// MaxDocumentSize caps how much of a remote document is read.
const MaxDocumentSize = 1 << 20 // 1 MiB

// ErrDocumentTooLarge is returned when a document exceeds MaxDocumentSize.
var ErrDocumentTooLarge = errors.New("document exceeds 1 MiB")

// ReadLimited reads all of r, failing instead of truncating when r holds
// more than MaxDocumentSize bytes.
func ReadLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxDocumentSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxDocumentSize {
		return nil, fmt.Errorf("%w: read more than %d bytes", ErrDocumentTooLarge, MaxDocumentSize)
	}
	return data, nil
}
