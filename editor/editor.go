// Package editor glues the pieces of the editing application together
// on top of the tree: the undo/redo protocol, scene save/load, and the
// built-in palette commands. Everything here runs in the tree owner's
// cycle; nothing holds state outside the tree and the registry it is
// handed.
package editor

import (
	"fmt"

	"github.com/okvt/okvt"
	"github.com/okvt/okvt/palette"
	"github.com/okvt/okvt/sceneval"
)

// Well-known paths. History bookkeeping lives in the tree like any
// other state, but is always written quietly so that undo data never
// describes itself.
const (
	ScenePath     = "scene"
	ObjectsPath   = "scene.sdf_objects"
	SelectionPath = "scene.selected_uuids"
	OpsPath       = "scene.operations"
	PointerPath   = "scene.undo_pointer"
	StatePath     = "editor.state"
)

// Checkpoint commits the accumulated changes as a snapshot, records its
// version under OpsPath, and puts the undo pointer back at the tip. It
// returns the snapshot version. Call it after every discrete user
// action: a drag ended, a command ran.
func Checkpoint(tree *okvt.Tree) int64 {
	version := tree.MakeSnapshot()
	ops := sceneval.IntsOr(tree.GetPath(OpsPath), nil)
	ops = append(ops, version)
	tree.SetPathQuiet(OpsPath, ops)
	tree.SetPathQuiet(PointerPath, sceneval.Int(0))
	return version
}

// Undo steps the tree back one checkpoint. The pointer under
// PointerPath counts how far back we are: 0 at the tip, -1 after one
// undo, and so on. The oldest checkpoint is the floor. Undo reports
// whether it moved.
func Undo(tree *okvt.Tree) bool {
	ops := sceneval.IntsOr(tree.GetPath(OpsPath), nil)
	pointer := sceneval.IntOr(tree.GetPath(PointerPath), 0)
	at := int64(len(ops)) - 1 + pointer
	if at <= 0 {
		return false
	}
	pointer--
	tree.GoToSnapshot(ops[at-1])
	tree.SetPathQuiet(PointerPath, sceneval.Int(pointer))
	return true
}

// Redo steps the tree forward one checkpoint, undoing an Undo. It
// reports whether it moved.
func Redo(tree *okvt.Tree) bool {
	ops := sceneval.IntsOr(tree.GetPath(OpsPath), nil)
	pointer := sceneval.IntOr(tree.GetPath(PointerPath), 0)
	if pointer >= 0 {
		return false
	}
	at := int64(len(ops)) - 1 + pointer
	pointer++
	tree.GoToSnapshot(ops[at+1])
	tree.SetPathQuiet(PointerPath, sceneval.Int(pointer))
	return true
}

// InitScene installs the starter document.
func InitScene(tree *okvt.Tree) {
	tree.SetTree(ScenePath, sceneval.DefaultScene())
}

// SaveScene serializes the scene subtree for writing to a file.
func SaveScene(tree *okvt.Tree) ([]byte, error) {
	data, err := tree.MarshalSubtree(ScenePath)
	if err != nil {
		return nil, fmt.Errorf("save scene: %w", err)
	}
	return data, nil
}

// LoadScene decodes data and installs it as the scene subtree via the
// ordinary merge-replace path. Malformed data leaves the tree
// untouched.
func LoadScene(tree *okvt.Tree, data []byte) error {
	loaded, err := tree.UnmarshalSubtree(data)
	if err != nil {
		return fmt.Errorf("load scene: %w", err)
	}
	tree.SetTree(ScenePath, loaded)
	return nil
}

// RegisterHistoryCommands adds undo and redo to the registry.
func RegisterHistoryCommands(reg *palette.Registry) {
	palette.New().
		Title("Undo").
		Docs("Undo the last action.").
		Shortcut("Shift+Z").
		Action(func(tree *okvt.Tree) { Undo(tree) }).
		Register("undo", reg)

	palette.New().
		Title("Redo").
		Docs("Redo the last undone action.").
		Shortcut("Shift+Y").
		Action(func(tree *okvt.Tree) { Redo(tree) }).
		Register("redo", reg)
}
