package sceneval

import (
	"github.com/google/uuid"

	"github.com/okvt/okvt"
)

// TreeConfig returns an okvt.Config wired for this union: Nothing as
// the absent sentinel and the tagged JSON codec for values.
func TreeConfig() okvt.Config {
	return okvt.Config{
		Absent:         Nothing{},
		MarshalValue:   Marshal,
		UnmarshalValue: Unmarshal,
	}
}

// NewTree returns an empty tree configured for this union.
func NewTree() *okvt.Tree {
	return okvt.NewTree(TreeConfig())
}

// defaultObjectID keeps the starter scene stable across runs, which the
// examples rely on.
var defaultObjectID = uuid.MustParse("802a6a4f-c41e-4a7b-9da8-0000698a4c99")

// DefaultScene returns the starter document: one sphere at the origin,
// nothing selected.
func DefaultScene() *okvt.Node {
	scene := okvt.NewNode(Nothing{})
	scene.SetChild("sdf_objects", okvt.NewNode(Objects{{
		ID:        defaultObjectID,
		Kind:      ObjectSphere,
		Transform: IdentityTransform(),
		Color:     Vec4{X: 0.8, Y: 0.7, Z: 0.6, W: 1},
	}}))
	scene.SetChild("selected_uuids", okvt.NewNode(UUIDs{}))
	return scene
}
