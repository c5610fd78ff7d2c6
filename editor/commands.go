package editor

import (
	"github.com/google/uuid"

	"github.com/okvt/okvt"
	"github.com/okvt/okvt/palette"
	"github.com/okvt/okvt/sceneval"
)

// ColorPickerPath is where the UI stores the active paint color.
const ColorPickerPath = "editor.colorpicker.color"

// defaultSpawnColor is used until a color has been picked.
var defaultSpawnColor = sceneval.Vec4{X: 0.4, Y: 0.2, Z: 0, W: 1}

// RegisterSceneCommands adds the object-editing commands to the
// registry: spawning, selection, deletion, duplication. The
// cursor-driven modes (grab, scale, rotate) belong to the UI layer and
// are not registered here.
func RegisterSceneCommands(reg *palette.Registry) {
	palette.New().
		Title("Spawn Sphere").
		Docs("Add a sphere at the spawn point.").
		Action(func(tree *okvt.Tree) { SpawnObject(tree, sceneval.ObjectSphere) }).
		Register("spawn-sphere", reg)

	palette.New().
		Title("Spawn Box").
		Docs("Add a box at the spawn point.").
		Action(func(tree *okvt.Tree) { SpawnObject(tree, sceneval.ObjectBox) }).
		Register("spawn-box", reg)

	palette.New().
		Title("Select all/none").
		Docs("Toggle selecting all objects.").
		Shortcut("Shift+A").
		Action(SelectAllOrNone).
		Register("select_all_or_none", reg)

	palette.New().
		Title("Delete").
		Docs("Delete the selected objects.").
		Shortcut("Backspace").
		Action(DeleteSelection).
		Register("delete", reg)

	palette.New().
		Title("Duplicate").
		Docs("Duplicate the selected objects.").
		Shortcut("Shift+D").
		Action(DuplicateSelection).
		Register("duplicate", reg)
}

// SpawnObject appends a new object of the given kind, painted with the
// picker's current color, and selects it. It returns the new object's
// id.
func SpawnObject(tree *okvt.Tree, kind sceneval.ObjectKind) uuid.UUID {
	object := sceneval.Object{
		ID:        uuid.New(),
		Kind:      kind,
		Transform: sceneval.IdentityTransform(),
		Color:     sceneval.Vec4Or(tree.GetPath(ColorPickerPath), defaultSpawnColor),
	}
	objects := sceneval.ObjectsOr(tree.GetPath(ObjectsPath), nil)
	tree.SetPath(ObjectsPath, append(objects, object))
	tree.SetPath(SelectionPath, sceneval.UUIDs{object.ID})
	tree.SetPath(StatePath, sceneval.StateStart)
	return object.ID
}

// SelectAllOrNone selects every object, or clears the selection when
// everything is already selected.
func SelectAllOrNone(tree *okvt.Tree) {
	selected := sceneval.UUIDsOr(tree.GetPath(SelectionPath), nil)
	objects := sceneval.ObjectsOr(tree.GetPath(ObjectsPath), nil)
	if len(selected) == len(objects) {
		tree.SetPath(SelectionPath, sceneval.UUIDs{})
		return
	}
	all := make(sceneval.UUIDs, 0, len(objects))
	for _, object := range objects {
		all = append(all, object.ID)
	}
	tree.SetPath(SelectionPath, all)
	tree.SetPath(StatePath, sceneval.StateStart)
}

// DeleteSelection removes the selected objects and clears the
// selection.
func DeleteSelection(tree *okvt.Tree) {
	selected := sceneval.UUIDsOr(tree.GetPath(SelectionPath), nil)
	if len(selected) == 0 {
		return
	}
	objects := sceneval.ObjectsOr(tree.GetPath(ObjectsPath), nil)
	kept := make(sceneval.Objects, 0, len(objects))
	for _, object := range objects {
		if !selected.Contains(object.ID) {
			kept = append(kept, object)
		}
	}
	tree.SetPath(ObjectsPath, kept)
	tree.SetPath(SelectionPath, sceneval.UUIDs{})
}

// DuplicateSelection copies the selected objects under fresh ids and
// moves the selection to the copies.
func DuplicateSelection(tree *okvt.Tree) {
	selected := sceneval.UUIDsOr(tree.GetPath(SelectionPath), nil)
	if len(selected) == 0 {
		return
	}
	objects := sceneval.ObjectsOr(tree.GetPath(ObjectsPath), nil)
	copies := make(sceneval.Objects, 0, len(selected))
	ids := make(sceneval.UUIDs, 0, len(selected))
	for _, object := range objects {
		if selected.Contains(object.ID) {
			dup := object.Duplicate()
			copies = append(copies, dup)
			ids = append(ids, dup.ID)
		}
	}
	tree.SetPath(ObjectsPath, append(objects, copies...))
	tree.SetPath(SelectionPath, ids)
}
