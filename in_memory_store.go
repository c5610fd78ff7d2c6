package okvt

import (
	"context"
	"fmt"
	"sync"
)

type inMemoryStore struct {
	entries map[string][]byte
	l       sync.Mutex
}

// NewInMemoryStore provides a Persist that keeps blobs in a map,
// usually for testing.
func NewInMemoryStore() Persist {
	return &inMemoryStore{}
}

func (ims *inMemoryStore) Store(ctx context.Context, name string, data []byte) error {
	buf := make([]byte, len(data))
	copy(buf, data)
	ims.l.Lock()
	if ims.entries == nil {
		ims.entries = map[string][]byte{name: buf}
	} else {
		ims.entries[name] = buf
	}
	ims.l.Unlock()
	return nil
}

func (ims *inMemoryStore) Load(ctx context.Context, name string) ([]byte, error) {
	ims.l.Lock()
	value, ok := ims.entries[name]
	ims.l.Unlock()
	if !ok {
		return nil, fmt.Errorf("inMemoryStore entry %s: %w", name, ErrNotFound)
	}
	return value, nil
}
