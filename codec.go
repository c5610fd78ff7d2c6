package okvt

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// rawNode is the wire shape of a node: {"subtree": {...}, "value": ...}.
// Absent values appear as null. Trackers never hit the wire.
type rawNode struct {
	Subtree map[string]*rawNode `json:"subtree"`
	Value   json.RawMessage     `json:"value"`
}

var jsonNull = []byte("null")

// MarshalSubtree serializes the subtree at path using the configured
// value codec. It fails if the path does not exist; serializing an
// empty-but-existing subtree is fine.
func (t *Tree) MarshalSubtree(path string) ([]byte, error) {
	n := t.GetTree(path)
	if n == nil {
		return nil, fmt.Errorf("okvt: no subtree at %q", path)
	}
	return t.MarshalNode(n)
}

// MarshalNode serializes a standalone Node, typically one built up for
// a fixture or returned by GetTree.
func (t *Tree) MarshalNode(n *Node) ([]byte, error) {
	raw, err := t.encodeNode(n, "")
	if err != nil {
		return nil, err
	}
	return json.Marshal(raw)
}

// UnmarshalSubtree decodes serialized tree data into a standalone Node,
// ready to be installed with SetTree. Values decode through
// Config.UnmarshalValue; malformed input is reported with the offending
// path and never partially applied anywhere.
func (t *Tree) UnmarshalSubtree(data []byte) (*Node, error) {
	if t.config.UnmarshalValue == nil {
		return nil, errors.New("okvt: Config.UnmarshalValue must be set to decode")
	}
	var raw rawNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal tree: %w", err)
	}
	return t.decodeNode(&raw, "")
}

func (t *Tree) encodeNode(n *Node, at string) (*rawNode, error) {
	out := &rawNode{Subtree: make(map[string]*rawNode, len(n.Subtree))}
	if n.Value != nil && !n.Value.Nothing() {
		body, err := t.config.MarshalValue(n.Value)
		if err != nil {
			return nil, fmt.Errorf("marshal value at %q: %w", at, err)
		}
		out.Value = body
	}
	for name, child := range n.Subtree {
		if child == nil {
			continue
		}
		sub, err := t.encodeNode(child, childPath(at, name))
		if err != nil {
			return nil, err
		}
		out.Subtree[name] = sub
	}
	return out, nil
}

func (t *Tree) decodeNode(raw *rawNode, at string) (*Node, error) {
	out := &Node{
		Subtree: make(map[string]*Node, len(raw.Subtree)),
		Value:   t.config.Absent,
	}
	if len(raw.Value) > 0 && !bytes.Equal(raw.Value, jsonNull) {
		v, err := t.config.UnmarshalValue(raw.Value)
		if err != nil {
			return nil, fmt.Errorf("decode value at %q: %w", at, err)
		}
		out.Value = v
	}
	for name, child := range raw.Subtree {
		if child == nil {
			continue
		}
		sub, err := t.decodeNode(child, childPath(at, name))
		if err != nil {
			return nil, err
		}
		out.Subtree[name] = sub
	}
	return out, nil
}

func childPath(at, name string) string {
	if at == "" {
		return name
	}
	return at + "." + name
}
