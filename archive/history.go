package archive

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/okvt/okvt"
)

// ErrIncompatible reports a history file that wasn't written by this
// package.
var ErrIncompatible = errors.New("incompatible history file")

// Log layout: an 8-byte header, then records. Each record is a uvarint
// payload size, the msgpack payload, and an 8-byte little-endian
// xxhash of the payload.
var historyMagic = [8]byte{'o', 'k', 'v', 't', 'h', 's', 't', '1'}

// A claimed record size beyond this is taken for corruption.
const maxRecordSize = 64 << 20

// HistoryOptions configures a History.
type HistoryOptions struct {
	// Marshal and Unmarshal encode the tree's values; pass the same
	// functions the tree's Config carries. Marshal is required for
	// Append, Unmarshal for Snapshots and Restore.
	Marshal   func(okvt.Value) ([]byte, error)
	Unmarshal func([]byte) (okvt.Value, error)

	// Logger receives warnings about corrupt tails. When nil,
	// slog.Default() is used.
	Logger *slog.Logger

	// NoSync skips the fsync after each append. For tests.
	NoSync bool
}

// History is an append-only log of checkpoints, so a saved session's
// undo data survives a restart. Every record is length-framed and
// checksummed; a torn or corrupt tail is detected at open and cut off,
// keeping every record before it.
type History struct {
	f         *os.File
	marshal   func(okvt.Value) ([]byte, error)
	unmarshal func([]byte) (okvt.Value, error)
	logger    *slog.Logger
	noSync    bool

	mu       sync.Mutex
	payloads [][]byte
}

type historyRecord struct {
	Version int64             `msgpack:"v"`
	Old     map[string][]byte `msgpack:"o"`
	New     map[string][]byte `msgpack:"n"`
}

// OpenHistory opens the log at path, creating it if needed, and scans
// the existing records. A file that doesn't start with this package's
// header fails with ErrIncompatible.
func OpenHistory(path string, o HistoryOptions) (*History, error) {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	h := &History{
		f:         f,
		marshal:   o.Marshal,
		unmarshal: o.Unmarshal,
		logger:    o.Logger,
		noSync:    o.NoSync,
	}
	if err := h.scan(path); err != nil {
		f.Close()
		return nil, err
	}
	return h, nil
}

func (h *History) scan(path string) error {
	data, err := io.ReadAll(h.f)
	if err != nil {
		return fmt.Errorf("history: read %s: %w", path, err)
	}
	if len(data) == 0 {
		if _, err := h.f.Write(historyMagic[:]); err != nil {
			return fmt.Errorf("history: write header: %w", err)
		}
		return h.sync()
	}
	if len(data) < len(historyMagic) || !bytes.Equal(data[:len(historyMagic)], historyMagic[:]) {
		return fmt.Errorf("history: %s: %w", path, ErrIncompatible)
	}
	off := int64(len(historyMagic))
	rest := data[len(historyMagic):]
	for len(rest) > 0 {
		size, n := binary.Uvarint(rest)
		if n <= 0 || size > maxRecordSize {
			break
		}
		total := n + int(size) + 8
		if len(rest) < total {
			break
		}
		payload := rest[n : n+int(size)]
		sum := binary.LittleEndian.Uint64(rest[n+int(size) : total])
		if xxhash.Sum64(payload) != sum {
			break
		}
		h.payloads = append(h.payloads, append([]byte(nil), payload...))
		rest = rest[total:]
		off += int64(total)
	}
	if len(rest) > 0 {
		h.logger.Warn("history: dropping corrupt tail",
			slog.String("file", path),
			slog.Int("bytes", len(rest)),
			slog.Int("records", len(h.payloads)))
		if err := h.f.Truncate(off); err != nil {
			return fmt.Errorf("history: truncate %s: %w", path, err)
		}
	}
	return nil
}

func (h *History) sync() error {
	if h.noSync {
		return nil
	}
	if err := h.f.Sync(); err != nil {
		return fmt.Errorf("history: sync: %w", err)
	}
	return nil
}

// Append logs one checkpoint. The record is durable once Append
// returns, unless NoSync was set.
func (h *History) Append(snap okvt.Snapshot) error {
	if h.marshal == nil {
		return errors.New("history: no Marshal configured")
	}
	rec := historyRecord{
		Version: snap.Version,
		Old:     make(map[string][]byte, len(snap.Old)),
		New:     make(map[string][]byte, len(snap.New)),
	}
	for path, v := range snap.Old {
		b, err := h.marshal(v)
		if err != nil {
			return fmt.Errorf("history: marshal old value at %q: %w", path, err)
		}
		rec.Old[path] = b
	}
	for path, v := range snap.New {
		b, err := h.marshal(v)
		if err != nil {
			return fmt.Errorf("history: marshal value at %q: %w", path, err)
		}
		rec.New[path] = b
	}
	payload, err := msgpack.Marshal(&rec)
	if err != nil {
		return fmt.Errorf("history: encode record: %w", err)
	}

	frame := binary.AppendUvarint(make([]byte, 0, len(payload)+16), uint64(len(payload)))
	frame = append(frame, payload...)
	frame = binary.LittleEndian.AppendUint64(frame, xxhash.Sum64(payload))

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := h.f.Write(frame); err != nil {
		return fmt.Errorf("history: append: %w", err)
	}
	if err := h.sync(); err != nil {
		return err
	}
	h.payloads = append(h.payloads, payload)
	return nil
}

// Snapshots decodes and returns all logged checkpoints, oldest first.
func (h *History) Snapshots() ([]okvt.Snapshot, error) {
	if h.unmarshal == nil {
		return nil, errors.New("history: no Unmarshal configured")
	}
	h.mu.Lock()
	payloads := h.payloads
	h.mu.Unlock()
	snaps := make([]okvt.Snapshot, 0, len(payloads))
	for i, payload := range payloads {
		var rec historyRecord
		if err := msgpack.Unmarshal(payload, &rec); err != nil {
			return nil, fmt.Errorf("history: decode record %d: %w", i, err)
		}
		snap := okvt.Snapshot{
			Version: rec.Version,
			Old:     make(map[string]okvt.Value, len(rec.Old)),
			New:     make(map[string]okvt.Value, len(rec.New)),
		}
		for path, b := range rec.Old {
			v, err := h.unmarshal(b)
			if err != nil {
				return nil, fmt.Errorf("history: decode old value at %q: %w", path, err)
			}
			snap.Old[path] = v
		}
		for path, b := range rec.New {
			v, err := h.unmarshal(b)
			if err != nil {
				return nil, fmt.Errorf("history: decode value at %q: %w", path, err)
			}
			snap.New[path] = v
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

// Restore loads the logged checkpoints into the tree, replacing its
// store, so checkpoint navigation works across restarts.
func (h *History) Restore(tree *okvt.Tree) error {
	snaps, err := h.Snapshots()
	if err != nil {
		return err
	}
	tree.RestoreSnapshots(snaps)
	return nil
}

// Len returns the number of logged checkpoints.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.payloads)
}

// Close closes the log file.
func (h *History) Close() error {
	return h.f.Close()
}
