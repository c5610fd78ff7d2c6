// Package bolt persists blobs in a single-bucket bbolt database file.
package bolt

import (
	"context"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/okvt/okvt"
)

var blobs = []byte("blobs")

// Persist stores and loads blobs in a bbolt database.
type Persist struct {
	db *bbolt.DB
}

var _ okvt.Persist = &Persist{}

// Open opens the database file at path, creating it if needed.
func Open(path string) (*Persist, error) {
	opts := *bbolt.DefaultOptions
	opts.Timeout = 10 * time.Second
	db, err := bbolt.Open(path, 0o666, &opts)
	if err != nil {
		return nil, fmt.Errorf("bolt: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(blobs)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("bolt: %w", err)
	}
	return &Persist{db}, nil
}

// Close closes the underlying database.
func (p *Persist) Close() error {
	return p.db.Close()
}

// Store persists the blob under the given name.
func (p *Persist) Store(ctx context.Context, name string, data []byte) error {
	return p.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(blobs).Put([]byte(name), data)
	})
}

// Load reads back the named blob.
func (p *Persist) Load(ctx context.Context, name string) ([]byte, error) {
	var data []byte
	err := p.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(blobs).Get([]byte(name))
		if v == nil {
			return fmt.Errorf("bolt entry %s: %w", name, okvt.ErrNotFound)
		}
		// Get returns mmapped bytes only valid inside the
		// transaction.
		data = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}
