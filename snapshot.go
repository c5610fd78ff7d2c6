package okvt

import (
	"fmt"
	"sort"
)

// Snapshot is one committed checkpoint: for every path written since
// the previous checkpoint, the value it had back then (first write
// wins) and the value it has now (last write wins). Snapshots are
// appended to the store by MakeSnapshot and never mutated afterward.
type Snapshot struct {
	Version int64
	Old     map[string]Value
	New     map[string]Value
}

// accumulator is the open, uncommitted diff interval between two
// checkpoints.
type accumulator struct {
	before map[string]Value
	after  map[string]Value
}

func (a *accumulator) record(path string, old, value Value) {
	if a.before == nil {
		a.before = make(map[string]Value)
		a.after = make(map[string]Value)
	}
	if _, ok := a.before[path]; !ok {
		a.before[path] = old
	}
	a.after[path] = value
}

func (t *Tree) recordChange(path string, old, value Value) {
	t.pending.record(path, old, value)
}

// MakeSnapshot commits the accumulated diff as a new Snapshot tagged
// with the current root version, resets the accumulator, and returns
// the version. The returned id is how callers name this checkpoint for
// GoToSnapshot and RevertSnapshot later. Committing a checkpoint puts
// the tree at its live tip, so any in-flight navigation position is
// forgotten.
//
// Checkpoints taken with no intervening writes share a version; such
// duplicates resolve to the latest one during navigation.
func (t *Tree) MakeSnapshot() int64 {
	version := t.root.tracker.version
	snap := Snapshot{Version: version, Old: t.pending.before, New: t.pending.after}
	if snap.Old == nil {
		snap.Old = map[string]Value{}
		snap.New = map[string]Value{}
	}
	t.snapshots = append(t.snapshots, snap)
	t.pending.before = nil
	t.pending.after = nil
	t.root.tracker.resume = nil
	if t.config.Debug {
		fmt.Printf("okvt: snapshot %d with %d changed paths\n", version, len(snap.New))
	}
	return version
}

// Snapshots returns the append-only checkpoint store, oldest first. The
// slice and its maps belong to the tree; treat them as read-only.
func (t *Tree) Snapshots() []Snapshot {
	return t.snapshots
}

// RestoreSnapshots replaces the checkpoint store, for picking a saved
// session back up: load the scene document, then restore the history
// that was logged alongside it. The tree is put back at its live tip.
func (t *Tree) RestoreSnapshots(snaps []Snapshot) {
	t.snapshots = append([]Snapshot(nil), snaps...)
	t.root.tracker.resume = nil
}

// GoToSnapshot moves the tree to the named checkpoint. Rewinding
// applies the Old values of every snapshot after the target, newest
// first; fast-forwarding applies the New values of every snapshot after
// the current position up to the target, oldest first. Either walk
// replays through SetPath, so each applied value is broadcast and
// re-accumulated exactly like a first-hand edit. The resume pointer is
// left at the target.
//
// Unknown versions panic: version ids must come from MakeSnapshot or
// Snapshots on this same tree.
func (t *Tree) GoToSnapshot(version int64) {
	target := t.snapshotIndex(version)
	current := t.currentIndex()
	if t.config.Debug {
		fmt.Printf("okvt: go to snapshot %d (index %d from %d)\n", version, target, current)
	}
	switch {
	case target < current:
		for i := current; i > target; i-- {
			t.applyAll(t.snapshots[i].Old)
		}
	case target > current:
		for i := current + 1; i <= target; i++ {
			t.applyAll(t.snapshots[i].New)
		}
	}
	v := version
	t.root.tracker.resume = &v
}

// RevertSnapshot applies only the Old values of the named checkpoint:
// the single-step "undo exactly that action" primitive. It does not
// move the resume pointer. Unknown versions panic, as with
// GoToSnapshot.
func (t *Tree) RevertSnapshot(version int64) {
	t.applyAll(t.snapshots[t.snapshotIndex(version)].Old)
}

// currentIndex resolves the tree's logical position in the store: the
// resume pointer if navigation is mid-flight, else the latest snapshot.
func (t *Tree) currentIndex() int {
	if r := t.root.tracker.resume; r != nil {
		return t.snapshotIndex(*r)
	}
	return len(t.snapshots) - 1
}

func (t *Tree) snapshotIndex(version int64) int {
	for i := len(t.snapshots) - 1; i >= 0; i-- {
		if t.snapshots[i].Version == version {
			return i
		}
	}
	panic(fmt.Sprintf("okvt: no snapshot with version %d", version))
}

// applyAll replays recorded values through the ordinary write path in
// path order, so replay is deterministic.
func (t *Tree) applyAll(values map[string]Value) {
	paths := make([]string, 0, len(values))
	for p := range values {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		t.SetPath(p, values[p])
	}
}
