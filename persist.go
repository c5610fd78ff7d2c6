package okvt

import (
	"context"
	"errors"
)

// Persist is anything the archive layer can store named blobs in:
// a filesystem, S3, an embedded KV store, or a map for tests. The tree
// core never touches a Persist; durability is layered on top.
type Persist interface {
	// Store persists data under name. Names are content addresses in
	// practice, so implementations may skip a name they already hold.
	Store(ctx context.Context, name string, data []byte) error
	// Load returns the blob stored under name, or an error wrapping
	// ErrNotFound if there is none.
	Load(ctx context.Context, name string) ([]byte, error)
}

// ErrNotFound is wrapped by Persist.Load when a name has never been
// stored.
var ErrNotFound = errors.New("not found")
