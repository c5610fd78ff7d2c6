package okvt

import (
	"fmt"
	"strings"
)

// Tree is an observable, versioned key-value tree. Values are addressed
// by dotted paths ("scene.sdf_objects"); intermediate nodes are created
// lazily on write and never on read. Every write bumps a per-node
// version counter on the touched node and all of its ancestors, marks
// them updated for the current cycle, feeds the pending snapshot diff,
// and fans out an Update to registered channels.
//
// A Tree is owned by a single writer. Nothing in here locks; the update
// channels are the only boundary safe to touch from other goroutines.
type Tree struct {
	config Config
	root   *node

	// pending accumulates per-path before/after values since the last
	// MakeSnapshot; snapshots is the append-only checkpoint store.
	pending   accumulator
	snapshots []Snapshot
}

// node is the in-memory cell behind one path segment. A node can carry
// a value and children at the same time.
type node struct {
	children  map[string]*node
	value     Value
	tracker   versionTracker
	listeners []chan Update
}

func newNode(absent Value) *node {
	return &node{value: absent}
}

// NewTree returns an empty tree. Config.Absent must be set; see Config
// for the remaining defaults.
func NewTree(config Config) *Tree {
	config = config.withDefaults()
	return &Tree{
		config: config,
		root:   newNode(config.Absent),
	}
}

func splitPath(path string) []string {
	return strings.Split(path, ".")
}

// SetPath assigns value to the node at path, creating intermediate
// nodes as needed. The leaf and every ancestor up to the root are
// versioned and marked updated, the write is recorded for the next
// snapshot, and an Update is broadcast. Writing a value equal to the
// current one still counts as a change.
func (t *Tree) SetPath(path string, value Value) {
	old := t.GetPath(path)
	t.root.set(splitPath(path), value, t.config.Absent, true)
	t.recordChange(path, old, value)
	t.broadcast(Update{Path: path, Old: old, New: value})
	if t.config.Debug {
		fmt.Printf("okvt: set %s, root version now %d\n", path, t.root.tracker.version)
	}
}

// SetPathQuiet assigns value to the node at path without touching
// version trackers, the snapshot diff, or the update channels. It is
// meant for bookkeeping that must not show up as a change, like the
// undo machinery writing its own pointers.
func (t *Tree) SetPathQuiet(path string, value Value) {
	t.root.set(splitPath(path), value, t.config.Absent, false)
}

// GetPath returns the value at path, or the configured Absent sentinel
// if any segment does not exist. Reads never create nodes and never
// fail.
func (t *Tree) GetPath(path string) Value {
	n := t.root.find(splitPath(path))
	if n == nil {
		return t.config.Absent
	}
	return n.value
}

// WasPathUpdated reports whether the node at path was touched since the
// last ResetUpdateCycle. Unknown paths report false. Because writes
// propagate to ancestors, this answers "did anything under path
// change?" without walking the subtree.
func (t *Tree) WasPathUpdated(path string) bool {
	n := t.root.find(splitPath(path))
	return n != nil && n.tracker.updated
}

// PathVersion returns the version of the node at path, or -1 for an
// unknown path.
func (t *Tree) PathVersion(path string) int64 {
	n := t.root.find(splitPath(path))
	if n == nil {
		return -1
	}
	return n.tracker.version
}

// WasUpdated reports whether anything in the tree was touched since the
// last ResetUpdateCycle.
func (t *Tree) WasUpdated() bool {
	return t.root.tracker.updated
}

// Version returns the root version, which counts every write anywhere
// in the tree.
func (t *Tree) Version() int64 {
	return t.root.tracker.version
}

// ResetUpdateCycle clears the updated flag on every node. The owning
// loop calls this once per cycle after all consumers have polled
// WasPathUpdated. Versions are never reset.
func (t *Tree) ResetUpdateCycle() {
	t.root.resetUpdateCycle()
}

// GetTree returns a values-only copy of the subtree at path, or nil if
// the path does not exist. Trackers and listeners are not part of the
// copy.
func (t *Tree) GetTree(path string) *Node {
	n := t.root.find(splitPath(path))
	if n == nil {
		return nil
	}
	return n.export()
}

// SetTree merge-replaces the subtree at path with incoming: children
// present before but absent from incoming are deleted, every node of
// incoming is installed recursively, and each surviving node is
// versioned exactly once, as are path's ancestors. SetTree is how loads
// enter the tree; it moves trackers but deliberately bypasses the
// snapshot diff and the update channels.
func (t *Tree) SetTree(path string, incoming *Node) {
	if incoming == nil {
		incoming = &Node{}
	}
	target := t.root.ensure(splitPath(path), t.config.Absent)
	target.merge(incoming, t.config.Absent)
	if t.config.Debug {
		fmt.Printf("okvt: merged subtree at %s, root version now %d\n", path, t.root.tracker.version)
	}
}

// Clear drops all nodes, versions, pending changes and stored
// snapshots, returning the tree to its initial state. Registered update
// channels survive.
func (t *Tree) Clear() {
	listeners := t.root.listeners
	t.root = newNode(t.config.Absent)
	t.root.listeners = listeners
	t.pending.before = nil
	t.pending.after = nil
	t.snapshots = nil
}

func (n *node) set(parts []string, value Value, absent Value, notify bool) {
	if notify {
		n.tracker.notifyUpdate()
	}
	if len(parts) == 0 {
		n.value = value
		return
	}
	child, ok := n.children[parts[0]]
	if !ok {
		child = newNode(absent)
		if n.children == nil {
			n.children = make(map[string]*node)
		}
		n.children[parts[0]] = child
	}
	child.set(parts[1:], value, absent, notify)
}

func (n *node) find(parts []string) *node {
	if len(parts) == 0 {
		return n
	}
	child, ok := n.children[parts[0]]
	if !ok {
		return nil
	}
	return child.find(parts[1:])
}

// ensure walks to parts, creating missing nodes, and versions every
// node it passes through including the destination.
func (n *node) ensure(parts []string, absent Value) *node {
	n.tracker.notifyUpdate()
	if len(parts) == 0 {
		return n
	}
	child, ok := n.children[parts[0]]
	if !ok {
		child = newNode(absent)
		if n.children == nil {
			n.children = make(map[string]*node)
		}
		n.children[parts[0]] = child
	}
	return child.ensure(parts[1:], absent)
}

// merge installs incoming below n. The caller has already versioned n;
// merge versions each child exactly once, before recursing, so a node
// that is both replaced and recursed into is not counted twice.
func (n *node) merge(incoming *Node, absent Value) {
	if incoming.Value != nil {
		n.value = incoming.Value
	} else {
		n.value = absent
	}
	for name := range n.children {
		if _, ok := incoming.Subtree[name]; !ok {
			delete(n.children, name)
		}
	}
	for name, sub := range incoming.Subtree {
		child, ok := n.children[name]
		if !ok {
			child = newNode(absent)
			if n.children == nil {
				n.children = make(map[string]*node)
			}
			n.children[name] = child
		}
		child.tracker.notifyUpdate()
		child.merge(sub, absent)
	}
}

func (n *node) export() *Node {
	out := &Node{
		Subtree: make(map[string]*Node, len(n.children)),
		Value:   n.value,
	}
	for name, child := range n.children {
		out.Subtree[name] = child.export()
	}
	return out
}

func (n *node) resetUpdateCycle() {
	n.tracker.resetUpdateCycle()
	for _, child := range n.children {
		child.resetUpdateCycle()
	}
}
