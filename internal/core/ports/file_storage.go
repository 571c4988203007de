package ports

import (
	"context"
	"errors"
)

// ErrObjectNotFound is returned by FileStorage.Get for missing keys.
var ErrObjectNotFound = errors.New("storage: object not found")

// FileStorage is the binary object-storage collaborator (S3/MinIO). Keys are
// caller-assigned opaque identifiers, not content hashes.
type FileStorage interface {
	// Put stores data under key and returns the key. The operation is atomic
	// from the caller's perspective: after an error no partial object is
	// observable under key.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)

	// Get returns the full object content, or ErrObjectNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes the object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
