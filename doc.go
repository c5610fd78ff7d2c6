/*
Package okvt provides an observable, versioned key-value tree for
applications built around update cycles: editors, simulations, anything
that redraws or resyncs every frame and needs to know what changed
since the last one.  State lives in a tree of named nodes addressed by
dotted paths ("scene.sdf_objects").  Every write versions the touched
node and all of its ancestors, so a consumer can ask "did anything
under scene change?" in constant time instead of diffing the world.

Observing changes

okvt is observable in two ways, matched to two kinds of consumer.
In-cycle consumers poll: WasPathUpdated answers cheaply thanks to
ancestor propagation, and the owner calls ResetUpdateCycle once per
tick when everyone has looked.  Out-of-cycle consumers register a
channel with CreateUpdateChannel and receive an Update per write.
Sends never block and never fail loudly; a receiver that stops
draining just misses updates, because the polling side remains
authoritative.  No callbacks run inside the write path.

History

Between checkpoints the tree accumulates, per written path, the value
before the first write and the value after the last one.  MakeSnapshot
commits that diff to an append-only store and names it with the root
version.  Undo and redo are GoToSnapshot walks that replay the stored
old or new values back through SetPath, so every intermediate value is
observable exactly like a first-hand edit, at a cost proportional to
what changed rather than to the size of the tree.

Values

The tree stores any application-defined tagged union implementing
Value.  The union supplies a Nothing sentinel, which reads of unset
paths return in place of an optional wrapper.  Package sceneval holds
the union used by the examples and tests here; it is ordinary
application code.

Ownership

One goroutine owns a Tree and performs all mutation; nothing inside
locks.  The update channels are the only boundary intended to cross
goroutines.  Durability is layered on top through the Persist
interface and the archive package, never inside the core.
*/
package okvt
