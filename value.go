package okvt

// Value is implemented by the application's tagged-union value type.
// The tree never interprets values beyond the Nothing sentinel, which
// stands in for "no value here" so that reads of unset paths stay
// well-typed instead of returning an optional wrapper.
type Value interface {
	// Nothing reports whether this value is the absent sentinel.
	Nothing() bool
}

// Node is the values-only shape of a subtree: what GetTree hands out,
// what SetTree takes in, and what the codec serializes. Version
// trackers, listeners and snapshots never appear here.
type Node struct {
	Subtree map[string]*Node
	Value   Value
}

// NewNode returns a childless Node carrying value.
func NewNode(value Value) *Node {
	return &Node{Subtree: map[string]*Node{}, Value: value}
}

// SetChild attaches child under name and returns n for chaining.
func (n *Node) SetChild(name string, child *Node) *Node {
	if n.Subtree == nil {
		n.Subtree = map[string]*Node{}
	}
	n.Subtree[name] = child
	return n
}

// At returns the descendant at a dotted path relative to n, or nil.
func (n *Node) At(path string) *Node {
	cur := n
	for _, part := range splitPath(path) {
		if cur == nil {
			return nil
		}
		cur = cur.Subtree[part]
	}
	return cur
}

// VersionMemo remembers the last tree version a consumer has handled,
// so work keyed to a version is not repeated when a cycle runs again
// without intervening writes. Pass one per consumer; the zero value is
// ready to use.
type VersionMemo struct {
	last int64
	seen bool
}

// Advance reports whether version differs from the last version
// handled, recording it when so.
func (m *VersionMemo) Advance(version int64) bool {
	if m.seen && m.last == version {
		return false
	}
	m.last = version
	m.seen = true
	return true
}
