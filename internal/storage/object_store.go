package storage

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound is returned by GetObject and DeleteObject when the key does
// not exist in the store.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStore is the blob storage boundary used for corpus retrieval and model
// artifact staging/publication. Keys are hierarchical, forward-slash separated
// paths. Writes to a single key are atomic; nothing is guaranteed across keys.
type ObjectStore interface {
	GetObject(ctx context.Context, key string) ([]byte, error)

	PutObject(ctx context.Context, key string, data io.Reader) error

	DeleteObject(ctx context.Context, key string) error

	ListObjects(ctx context.Context, prefix string) ([]string, error)
}
