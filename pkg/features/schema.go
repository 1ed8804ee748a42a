// Package features computes motion and optical-flow statistics from frame
// streams and defines the versioned schema their vectors follow.
package features

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrSchemaMismatch is returned when a producer and a consumer disagree on
// feature names, order or version.
var ErrSchemaMismatch = errors.New("features: schema mismatch")

// Feature names produced by the extractors.
const (
	MeanMotion = "mean_motion"
	MaxMotion  = "max_motion"
	StdMotion  = "std_motion"
	MeanFlow   = "mean_flow"
	MaxFlow    = "max_flow"
)

// Default is the schema every dataset row and inference vector follows.
var Default = NewSchema("motion-flow", 1, MeanMotion, MaxMotion, StdMotion, MeanFlow, MaxFlow)

// Schema is an ordered, versioned list of feature names.
// The zero value has no columns. Schemas are immutable once built.
type Schema struct {
	name    string
	version int
	columns []string
}

// NewSchema builds a schema from its columns in order.
func NewSchema(name string, version int, columns ...string) Schema {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return Schema{name: name, version: version, columns: cols}
}

// Name returns the schema name.
func (s Schema) Name() string { return s.name }

// Version returns the schema version.
func (s Schema) Version() int { return s.version }

// Len returns the number of columns.
func (s Schema) Len() int { return len(s.columns) }

// Columns returns a copy of the column names in order.
func (s Schema) Columns() []string {
	cols := make([]string, len(s.columns))
	copy(cols, s.columns)
	return cols
}

// Index returns the position of name, or -1.
func (s Schema) Index(name string) int {
	for i, c := range s.columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Equal reports whether both schemas have the same name, version and columns.
func (s Schema) Equal(o Schema) bool {
	return s.name == o.name && s.version == o.version && s.Check(o.columns) == nil
}

// String returns "name/vN".
func (s Schema) String() string {
	return s.name + "/v" + strconv.Itoa(s.version)
}

// Check verifies that columns match the schema exactly, including order.
func (s Schema) Check(columns []string) error {
	if len(columns) != len(s.columns) {
		return fmt.Errorf("%w: expected %d columns, got %d", ErrSchemaMismatch, len(s.columns), len(columns))
	}
	for i, c := range columns {
		if c != s.columns[i] {
			return fmt.Errorf("%w: column %d is %q, expected %q", ErrSchemaMismatch, i, c, s.columns[i])
		}
	}
	return nil
}

// NewVector arranges named values in schema order. Every column must be
// present and no other name may appear.
func (s Schema) NewVector(values map[string]float64) (Vector, error) {
	if len(values) != len(s.columns) {
		return Vector{}, fmt.Errorf("%w: expected %d values, got %d", ErrSchemaMismatch, len(s.columns), len(values))
	}
	out := make([]float64, len(s.columns))
	for i, c := range s.columns {
		v, ok := values[c]
		if !ok {
			return Vector{}, fmt.Errorf("%w: missing %q", ErrSchemaMismatch, c)
		}
		out[i] = v
	}
	return Vector{schema: s, values: out}, nil
}

type schemaJSON struct {
	Name    string   `json:"name"`
	Version int      `json:"version"`
	Columns []string `json:"columns"`
}

// MarshalJSON encodes the schema as {name, version, columns}.
func (s Schema) MarshalJSON() ([]byte, error) {
	return json.Marshal(schemaJSON{Name: s.name, Version: s.version, Columns: s.columns})
}

// UnmarshalJSON decodes a schema written by MarshalJSON.
func (s *Schema) UnmarshalJSON(data []byte) error {
	var raw schemaJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = NewSchema(raw.Name, raw.Version, raw.Columns...)
	return nil
}

// Vector is a feature vector bound to the schema that produced it.
type Vector struct {
	schema Schema
	values []float64
}

// Schema returns the schema the vector follows.
func (v Vector) Schema() Schema { return v.schema }

// Get returns the value of the named feature.
func (v Vector) Get(name string) (float64, bool) {
	i := v.schema.Index(name)
	if i < 0 {
		return 0, false
	}
	return v.values[i], true
}

// Values returns a copy of the values in schema order.
func (v Vector) Values() []float64 {
	out := make([]float64, len(v.values))
	copy(out, v.values)
	return out
}

// Row returns the values ordered for a consumer expecting the given schema.
func (v Vector) Row(expected Schema) ([]float64, error) {
	if !v.schema.Equal(expected) {
		return nil, fmt.Errorf("%w: vector follows %s, consumer expects %s", ErrSchemaMismatch, v.schema, expected)
	}
	return v.Values(), nil
}

// Finite reports whether every value is a finite number.
func (v Vector) Finite() bool {
	for _, x := range v.values {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return len(v.values) > 0
}

// MarshalJSON encodes the vector as an object whose keys follow schema order.
func (v Vector) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range v.schema.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(c)
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(v.values[i])
		if err != nil {
			return nil, fmt.Errorf("feature %s: %w", c, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DecodeVector reads a JSON object of named values into a vector of schema s.
func DecodeVector(s Schema, data []byte) (Vector, error) {
	var values map[string]float64
	if err := json.Unmarshal(data, &values); err != nil {
		return Vector{}, fmt.Errorf("decode features: %w", err)
	}
	return s.NewVector(values)
}
