// Package sceneval is the value union a 3D-editing application stores
// in an okvt.Tree: scalars, vectors, transforms, object lists, and
// command tags, plus the Nothing sentinel the tree hands back for unset
// paths. Strict accessors panic on a variant mismatch; the -Or forms
// fall back to a default instead.
package sceneval

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/okvt/okvt"
)

// Nothing is the absent sentinel. It is what GetPath returns for paths
// that were never written.
type Nothing struct{}

// Float holds a scalar.
type Float float64

// Int holds an integer scalar.
type Int int64

// Bool holds a flag.
type Bool bool

// String holds text.
type String string

// Vec2 is a 2-component vector.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vec3 is a 3-component vector.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vec4 is a 4-component vector, also used for colors and quaternions.
type Vec4 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// Transform places an object in the scene. Rotation is a quaternion in
// xyzw order.
type Transform struct {
	Translation Vec3 `json:"translation"`
	Rotation    Vec4 `json:"rotation"`
	Scale       Vec3 `json:"scale"`
}

// IdentityTransform returns the do-nothing transform.
func IdentityTransform() Transform {
	return Transform{
		Rotation: Vec4{W: 1},
		Scale:    Vec3{X: 1, Y: 1, Z: 1},
	}
}

// ObjectKind selects an object's distance-field primitive.
type ObjectKind int

const (
	ObjectSphere ObjectKind = iota
	ObjectBox
)

func (k ObjectKind) String() string {
	switch k {
	case ObjectSphere:
		return "sphere"
	case ObjectBox:
		return "box"
	}
	return fmt.Sprintf("ObjectKind(%d)", int(k))
}

// Object is one scene object.
type Object struct {
	ID        uuid.UUID  `json:"id"`
	Kind      ObjectKind `json:"kind"`
	Transform Transform  `json:"transform"`
	Color     Vec4       `json:"color"`
}

// Duplicate returns a copy of the object under a fresh id.
func (o Object) Duplicate() Object {
	o.ID = uuid.New()
	return o
}

// Objects holds the scene's object list.
type Objects []Object

// UUIDs holds object ids, e.g. the current selection.
type UUIDs []uuid.UUID

// Contains reports whether id is in the list.
func (u UUIDs) Contains(id uuid.UUID) bool {
	for _, have := range u {
		if have == id {
			return true
		}
	}
	return false
}

// Ints holds plain integers, e.g. recorded snapshot versions.
type Ints []int64

// State is the editor's interaction mode.
type State int

const (
	StateStart State = iota
	StateGrabbing
	StateScaling
	StateRotating
)

// Command names a registry command, so behavior can be stored in the
// tree as data and dispatched later.
type Command string

func (Nothing) Nothing() bool   { return true }
func (Float) Nothing() bool     { return false }
func (Int) Nothing() bool       { return false }
func (Bool) Nothing() bool      { return false }
func (String) Nothing() bool    { return false }
func (Vec2) Nothing() bool      { return false }
func (Vec3) Nothing() bool      { return false }
func (Vec4) Nothing() bool      { return false }
func (Transform) Nothing() bool { return false }
func (Objects) Nothing() bool   { return false }
func (UUIDs) Nothing() bool     { return false }
func (Ints) Nothing() bool      { return false }
func (State) Nothing() bool     { return false }
func (Command) Nothing() bool   { return false }

// AsFloat returns v's scalar and panics if v is any other variant.
func AsFloat(v okvt.Value) float64 {
	f, ok := v.(Float)
	if !ok {
		panic(fmt.Sprintf("sceneval: %T is not Float", v))
	}
	return float64(f)
}

// FloatOr returns v's scalar, or def if v is any other variant.
func FloatOr(v okvt.Value, def float64) float64 {
	if f, ok := v.(Float); ok {
		return float64(f)
	}
	return def
}

// AsInt returns v's integer and panics if v is any other variant.
func AsInt(v okvt.Value) int64 {
	i, ok := v.(Int)
	if !ok {
		panic(fmt.Sprintf("sceneval: %T is not Int", v))
	}
	return int64(i)
}

// IntOr returns v's integer, or def if v is any other variant.
func IntOr(v okvt.Value, def int64) int64 {
	if i, ok := v.(Int); ok {
		return int64(i)
	}
	return def
}

// AsBool returns v's flag and panics if v is any other variant.
func AsBool(v okvt.Value) bool {
	b, ok := v.(Bool)
	if !ok {
		panic(fmt.Sprintf("sceneval: %T is not Bool", v))
	}
	return bool(b)
}

// BoolOr returns v's flag, or def if v is any other variant.
func BoolOr(v okvt.Value, def bool) bool {
	if b, ok := v.(Bool); ok {
		return bool(b)
	}
	return def
}

// AsString returns v's text and panics if v is any other variant.
func AsString(v okvt.Value) string {
	s, ok := v.(String)
	if !ok {
		panic(fmt.Sprintf("sceneval: %T is not String", v))
	}
	return string(s)
}

// StringOr returns v's text, or def if v is any other variant.
func StringOr(v okvt.Value, def string) string {
	if s, ok := v.(String); ok {
		return string(s)
	}
	return def
}

// AsVec2 returns v's vector and panics if v is any other variant.
func AsVec2(v okvt.Value) Vec2 {
	w, ok := v.(Vec2)
	if !ok {
		panic(fmt.Sprintf("sceneval: %T is not Vec2", v))
	}
	return w
}

// Vec2Or returns v's vector, or def if v is any other variant.
func Vec2Or(v okvt.Value, def Vec2) Vec2 {
	if w, ok := v.(Vec2); ok {
		return w
	}
	return def
}

// AsVec3 returns v's vector and panics if v is any other variant.
func AsVec3(v okvt.Value) Vec3 {
	w, ok := v.(Vec3)
	if !ok {
		panic(fmt.Sprintf("sceneval: %T is not Vec3", v))
	}
	return w
}

// Vec3Or returns v's vector, or def if v is any other variant.
func Vec3Or(v okvt.Value, def Vec3) Vec3 {
	if w, ok := v.(Vec3); ok {
		return w
	}
	return def
}

// AsVec4 returns v's vector and panics if v is any other variant.
func AsVec4(v okvt.Value) Vec4 {
	w, ok := v.(Vec4)
	if !ok {
		panic(fmt.Sprintf("sceneval: %T is not Vec4", v))
	}
	return w
}

// Vec4Or returns v's vector, or def if v is any other variant.
func Vec4Or(v okvt.Value, def Vec4) Vec4 {
	if w, ok := v.(Vec4); ok {
		return w
	}
	return def
}

// AsTransform returns v's transform and panics if v is any other
// variant.
func AsTransform(v okvt.Value) Transform {
	tr, ok := v.(Transform)
	if !ok {
		panic(fmt.Sprintf("sceneval: %T is not Transform", v))
	}
	return tr
}

// TransformOr returns v's transform, or def if v is any other variant.
func TransformOr(v okvt.Value, def Transform) Transform {
	if tr, ok := v.(Transform); ok {
		return tr
	}
	return def
}

// AsObjects returns v's object list and panics if v is any other
// variant.
func AsObjects(v okvt.Value) Objects {
	o, ok := v.(Objects)
	if !ok {
		panic(fmt.Sprintf("sceneval: %T is not Objects", v))
	}
	return o
}

// ObjectsOr returns v's object list, or def if v is any other variant.
func ObjectsOr(v okvt.Value, def Objects) Objects {
	if o, ok := v.(Objects); ok {
		return o
	}
	return def
}

// AsUUIDs returns v's id list and panics if v is any other variant.
func AsUUIDs(v okvt.Value) UUIDs {
	u, ok := v.(UUIDs)
	if !ok {
		panic(fmt.Sprintf("sceneval: %T is not UUIDs", v))
	}
	return u
}

// UUIDsOr returns v's id list, or def if v is any other variant.
func UUIDsOr(v okvt.Value, def UUIDs) UUIDs {
	if u, ok := v.(UUIDs); ok {
		return u
	}
	return def
}

// AsInts returns v's integer list and panics if v is any other variant.
func AsInts(v okvt.Value) Ints {
	i, ok := v.(Ints)
	if !ok {
		panic(fmt.Sprintf("sceneval: %T is not Ints", v))
	}
	return i
}

// IntsOr returns v's integer list, or def if v is any other variant.
func IntsOr(v okvt.Value, def Ints) Ints {
	if i, ok := v.(Ints); ok {
		return i
	}
	return def
}

// AsState returns v's editor state and panics if v is any other
// variant.
func AsState(v okvt.Value) State {
	s, ok := v.(State)
	if !ok {
		panic(fmt.Sprintf("sceneval: %T is not State", v))
	}
	return s
}

// StateOr returns v's editor state, or def if v is any other variant.
func StateOr(v okvt.Value, def State) State {
	if s, ok := v.(State); ok {
		return s
	}
	return def
}

// AsCommand returns v's command name and panics if v is any other
// variant.
func AsCommand(v okvt.Value) string {
	c, ok := v.(Command)
	if !ok {
		panic(fmt.Sprintf("sceneval: %T is not Command", v))
	}
	return string(c)
}

// CommandOr returns v's command name, or def if v is any other variant.
func CommandOr(v okvt.Value, def string) string {
	if c, ok := v.(Command); ok {
		return string(c)
	}
	return def
}
