package okvt

// versionTracker counts the writes that have touched a node and
// remembers whether the node was touched in the current update cycle.
// The version only ever grows; the updated flag is cleared by
// ResetUpdateCycle.
//
// resume is meaningful only on the root tracker: while undo/redo
// navigation is mid-flight it holds the version of the checkpoint the
// tree is logically at, and it is nil whenever the tree is at its live
// tip.
type versionTracker struct {
	version int64
	updated bool
	resume  *int64
}

func (v *versionTracker) notifyUpdate() {
	v.version++
	v.updated = true
}

func (v *versionTracker) resetUpdateCycle() {
	v.updated = false
}
