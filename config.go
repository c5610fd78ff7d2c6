package okvt

import "encoding/json"

const defaultUpdateChannelBuffer = 64

// Config parameterizes a Tree.
type Config struct {
	// Absent is the sentinel returned by GetPath for paths that do not
	// exist. Required.
	Absent Value

	// MarshalValue encodes a value for the tree codec. Defaults to
	// encoding/json.
	MarshalValue func(Value) ([]byte, error)

	// UnmarshalValue decodes a value for the tree codec. There is no
	// useful default for a tagged union, so UnmarshalSubtree fails
	// until this is set.
	UnmarshalValue func([]byte) (Value, error)

	// UpdateChannelBuffer is the capacity of channels returned by
	// CreateUpdateChannel. Defaults to 64.
	UpdateChannelBuffer int

	// Debug enables tracing of writes and history navigation to
	// stdout.
	Debug bool
}

func (c Config) withDefaults() Config {
	if c.Absent == nil {
		panic("okvt: Config.Absent is required")
	}
	if c.MarshalValue == nil {
		c.MarshalValue = func(v Value) ([]byte, error) { return json.Marshal(v) }
	}
	if c.UpdateChannelBuffer <= 0 {
		c.UpdateChannelBuffer = defaultUpdateChannelBuffer
	}
	return c
}
