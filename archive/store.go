// Package archive keeps scene documents durable: content-addressed
// blobs over any Persist, an append-only checkpoint log, and a file
// watcher for live reload.
package archive

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru"
	"github.com/minio/blake2b-simd"

	"github.com/okvt/okvt"
)

// DefaultCacheSize bounds the blob cache when Options leave it unset.
const DefaultCacheSize = 256

// Options configures a Store.
type Options struct {
	// CacheSize bounds the number of cached blobs. 0 means
	// DefaultCacheSize; negative disables caching.
	CacheSize int

	// Logger receives store activity. When nil, slog.Default() is
	// used.
	Logger *slog.Logger
}

// Store saves and loads scene documents as content-addressed blobs: a
// document's name is the hash of its bytes, so identical saves land in
// the same place and a cached blob can never go stale. One Store can
// be shared by any number of trees.
type Store struct {
	persist okvt.Persist
	cache   *lru.ARCCache
	logger  *slog.Logger
}

// NewStore returns a Store over the given Persist.
func NewStore(persist okvt.Persist, o Options) *Store {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	var cache *lru.ARCCache
	if o.CacheSize >= 0 {
		size := o.CacheSize
		if size == 0 {
			size = DefaultCacheSize
		}
		c, err := lru.NewARC(size)
		if err != nil {
			panic(err)
		}
		cache = c
	}
	return &Store{persist: persist, cache: cache, logger: o.Logger}
}

// Save serializes the subtree at path and persists it. It returns the
// address to load the document back by.
func (s *Store) Save(ctx context.Context, tree *okvt.Tree, path string) (string, error) {
	data, err := tree.MarshalSubtree(path)
	if err != nil {
		return "", fmt.Errorf("archive save: %w", err)
	}
	addr := Address(data)
	if s.cache != nil && s.cache.Contains(addr) {
		return addr, nil
	}
	if err := s.persist.Store(ctx, addr, data); err != nil {
		return "", fmt.Errorf("archive save %s: %w", addr, err)
	}
	if s.cache != nil {
		s.cache.Add(addr, data)
	}
	s.logger.Debug("archive: stored scene",
		slog.String("addr", addr), slog.Int("bytes", len(data)))
	return addr, nil
}

// Load fetches the blob at addr and installs it as the subtree at
// path.
func (s *Store) Load(ctx context.Context, tree *okvt.Tree, path, addr string) error {
	data, err := s.load(ctx, addr)
	if err != nil {
		return err
	}
	node, err := tree.UnmarshalSubtree(data)
	if err != nil {
		return fmt.Errorf("archive load %s: %w", addr, err)
	}
	tree.SetTree(path, node)
	return nil
}

func (s *Store) load(ctx context.Context, addr string) ([]byte, error) {
	if s.cache != nil {
		if data, ok := s.cache.Get(addr); ok {
			return data.([]byte), nil
		}
	}
	data, err := s.persist.Load(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("archive load %s: %w", addr, err)
	}
	if s.cache != nil {
		s.cache.Add(addr, data)
	}
	return data, nil
}

// Address returns the content address the Store files these bytes
// under.
func Address(data []byte) string {
	hash := blake2b.Sum256(data)
	return base64.RawURLEncoding.EncodeToString(hash[:])
}
