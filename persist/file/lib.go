// Package file persists blobs as files in a directory.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/okvt/okvt"
)

// Persist stores and loads blobs as files under a base directory.
type Persist struct {
	basepath string
}

var _ okvt.Persist = Persist{}

// NewPersistForPath returns a Persist rooted at the directory at the
// given path. The directory must exist.
func NewPersistForPath(path string) Persist {
	return Persist{path}
}

// Store writes the blob to a file of the given name, unless the file
// exists already. Names are content addresses, so an existing file
// already holds the same bytes.
func (p Persist) Store(ctx context.Context, name string, data []byte) error {
	path := filepath.Join(p.basepath, name)
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return nil
	case os.IsNotExist(err):
		return os.WriteFile(path, data, 0o644)
	default:
		return err
	}
}

// Load reads back the named blob.
func (p Persist) Load(ctx context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(p.basepath, name))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file %s: %w", name, okvt.ErrNotFound)
	}
	return data, err
}
