package archive

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a Watcher waits for further writes
// before signaling a change.
const DefaultDebounce = 100 * time.Millisecond

// WatcherOptions configures a Watcher.
type WatcherOptions struct {
	// Debounce overrides DefaultDebounce.
	Debounce time.Duration

	// Logger receives watch errors. When nil, slog.Default() is
	// used.
	Logger *slog.Logger
}

// Watcher reports when a scene file on disk changes, so a running
// editor can reload it. It watches the file's directory rather than
// the file: editors commonly replace a file by renaming a temp file
// over it, and a watch on the file itself would be lost with the old
// inode. Bursts of writes are debounced into a single signal.
type Watcher struct {
	path     string
	fs       *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger
	changes  chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewWatcher returns a Watcher for the file at path. The file's
// directory must exist; the file itself need not yet. Call Start to
// begin watching.
func NewWatcher(path string, o WatcherOptions) (*Watcher, error) {
	if o.Debounce == 0 {
		o.Debounce = DefaultDebounce
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fs.Close()
		return nil, err
	}
	if err := fs.Add(filepath.Dir(abs)); err != nil {
		fs.Close()
		return nil, err
	}
	return &Watcher{
		path:     abs,
		fs:       fs,
		debounce: o.Debounce,
		logger:   o.Logger,
		changes:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}, nil
}

// Changes signals once per debounced burst of writes to the file.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Start begins watching. It returns immediately; watching stops when
// ctx is canceled or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	go w.run(ctx)
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.fs.Close()
	})
}

func (w *Watcher) run(ctx context.Context) {
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case <-fire:
			timer = nil
			fire = nil
			select {
			case w.changes <- struct{}{}:
			default:
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("archive: watch error", slog.Any("err", err))
		}
	}
}
