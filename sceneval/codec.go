package sceneval

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/okvt/okvt"
)

// The wire form of a value is a single-key object naming the variant,
// {"vec3": {"x": 1, "y": 2, "z": 3}}, and plain null for Nothing.

var jsonNull = []byte("null")

var stateNames = map[State]string{
	StateStart:    "start",
	StateGrabbing: "grabbing",
	StateScaling:  "scaling",
	StateRotating: "rotating",
}

// MarshalJSON encodes the state by name.
func (s State) MarshalJSON() ([]byte, error) {
	name, ok := stateNames[s]
	if !ok {
		return nil, fmt.Errorf("sceneval: unknown state %d", int(s))
	}
	return json.Marshal(name)
}

// UnmarshalJSON decodes a state name.
func (s *State) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("sceneval: decode state: %w", err)
	}
	for state, n := range stateNames {
		if n == name {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("sceneval: unknown state %q", name)
}

// Marshal encodes one union value. It slots into
// okvt.Config.MarshalValue.
func Marshal(v okvt.Value) ([]byte, error) {
	if v == nil || v.Nothing() {
		return jsonNull, nil
	}
	var tag string
	switch v.(type) {
	case Float:
		tag = "float"
	case Int:
		tag = "int"
	case Bool:
		tag = "bool"
	case String:
		tag = "string"
	case Vec2:
		tag = "vec2"
	case Vec3:
		tag = "vec3"
	case Vec4:
		tag = "vec4"
	case Transform:
		tag = "transform"
	case Objects:
		tag = "objects"
	case UUIDs:
		tag = "uuids"
	case Ints:
		tag = "ints"
	case State:
		tag = "state"
	case Command:
		tag = "command"
	default:
		return nil, fmt.Errorf("sceneval: cannot encode %T", v)
	}
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("sceneval: encode %s: %w", tag, err)
	}
	return json.Marshal(map[string]json.RawMessage{tag: body})
}

// Unmarshal decodes one union value. It slots into
// okvt.Config.UnmarshalValue.
func Unmarshal(data []byte) (okvt.Value, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, jsonNull) {
		return Nothing{}, nil
	}
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return nil, fmt.Errorf("sceneval: decode value: %w", err)
	}
	if len(tagged) != 1 {
		return nil, fmt.Errorf("sceneval: want exactly one variant tag, got %d", len(tagged))
	}
	for tag, body := range tagged {
		return decodeVariant(tag, body)
	}
	panic("unreachable")
}

func decodeVariant(tag string, body json.RawMessage) (okvt.Value, error) {
	fail := func(err error) (okvt.Value, error) {
		return nil, fmt.Errorf("sceneval: decode %s: %w", tag, err)
	}
	switch tag {
	case "float":
		var x float64
		if err := json.Unmarshal(body, &x); err != nil {
			return fail(err)
		}
		return Float(x), nil
	case "int":
		var x int64
		if err := json.Unmarshal(body, &x); err != nil {
			return fail(err)
		}
		return Int(x), nil
	case "bool":
		var x bool
		if err := json.Unmarshal(body, &x); err != nil {
			return fail(err)
		}
		return Bool(x), nil
	case "string":
		var x string
		if err := json.Unmarshal(body, &x); err != nil {
			return fail(err)
		}
		return String(x), nil
	case "vec2":
		var x Vec2
		if err := json.Unmarshal(body, &x); err != nil {
			return fail(err)
		}
		return x, nil
	case "vec3":
		var x Vec3
		if err := json.Unmarshal(body, &x); err != nil {
			return fail(err)
		}
		return x, nil
	case "vec4":
		var x Vec4
		if err := json.Unmarshal(body, &x); err != nil {
			return fail(err)
		}
		return x, nil
	case "transform":
		var x Transform
		if err := json.Unmarshal(body, &x); err != nil {
			return fail(err)
		}
		return x, nil
	case "objects":
		var x Objects
		if err := json.Unmarshal(body, &x); err != nil {
			return fail(err)
		}
		return x, nil
	case "uuids":
		var x UUIDs
		if err := json.Unmarshal(body, &x); err != nil {
			return fail(err)
		}
		return x, nil
	case "ints":
		var x Ints
		if err := json.Unmarshal(body, &x); err != nil {
			return fail(err)
		}
		return x, nil
	case "state":
		var x State
		if err := json.Unmarshal(body, &x); err != nil {
			return fail(err)
		}
		return x, nil
	case "command":
		var x Command
		if err := json.Unmarshal(body, &x); err != nil {
			return fail(err)
		}
		return x, nil
	}
	return nil, fmt.Errorf("sceneval: unknown variant tag %q", tag)
}
