// Package badger persists blobs in a Badger database.
package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/okvt/okvt"
)

// Options configures the database.
type Options struct {
	// Path is the directory for the database files. Ignored when
	// InMemory is set.
	Path string

	// InMemory keeps everything off disk. Useful for tests.
	InMemory bool

	// Logger receives Badger's internal logging. When nil that
	// logging is disabled.
	Logger *slog.Logger
}

// Persist stores and loads blobs in a Badger database.
type Persist struct {
	db *badgerdb.DB
}

var _ okvt.Persist = &Persist{}

// Open opens the database, creating it if needed.
func Open(opt Options) (*Persist, error) {
	var bopt badgerdb.Options
	if opt.InMemory {
		bopt = badgerdb.DefaultOptions("").WithInMemory(true)
	} else {
		bopt = badgerdb.DefaultOptions(opt.Path)
	}
	if opt.Logger != nil {
		bopt = bopt.WithLogger(&badgerLogger{opt.Logger})
	} else {
		bopt = bopt.WithLogger(nil)
	}
	db, err := badgerdb.Open(bopt)
	if err != nil {
		return nil, fmt.Errorf("badger: %w", err)
	}
	return &Persist{db}, nil
}

// Close closes the underlying database.
func (p *Persist) Close() error {
	return p.db.Close()
}

// Store persists the blob under the given name.
func (p *Persist) Store(ctx context.Context, name string, data []byte) error {
	return p.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte(name), data)
	})
}

// Load reads back the named blob.
func (p *Persist) Load(ctx context.Context, name string) ([]byte, error) {
	var data []byte
	err := p.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(name))
		if err != nil {
			if errors.Is(err, badgerdb.ErrKeyNotFound) {
				return fmt.Errorf("badger entry %s: %w", name, okvt.ErrNotFound)
			}
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// badgerLogger adapts slog to Badger's logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
