// Package linearmodel is a logistic-regression classifier loaded from a JSON
// artifact that records the feature schema it was trained on.
package linearmodel

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/user/motionset/pkg/features"
	"github.com/user/motionset/pkg/ports"
)

// DefaultThreshold is used when an artifact does not set one.
const DefaultThreshold = 0.5

// Model scores standardized rows with a linear function followed by the
// logistic function.
type Model struct {
	schema    features.Schema
	weights   []float64
	bias      float64
	threshold float64
	mean      []float64
	scale     []float64
}

type artifact struct {
	Schema    features.Schema `json:"schema"`
	Weights   []float64       `json:"weights"`
	Bias      float64         `json:"bias"`
	Threshold *float64        `json:"threshold,omitempty"`
	Mean      []float64       `json:"mean,omitempty"`
	Scale     []float64       `json:"scale,omitempty"`
}

// New creates a model without standardization.
func New(schema features.Schema, weights []float64, bias, threshold float64) (*Model, error) {
	return newModel(artifact{Schema: schema, Weights: weights, Bias: bias, Threshold: &threshold})
}

// Load decodes a model artifact. It fails with features.ErrSchemaMismatch
// when the artifact was trained on a schema other than expected.
func Load(data []byte, expected features.Schema) (*Model, error) {
	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parse model: %w", err)
	}
	if !a.Schema.Equal(expected) {
		return nil, fmt.Errorf("%w: model trained on %s, extractor produces %s",
			features.ErrSchemaMismatch, a.Schema, expected)
	}
	return newModel(a)
}

// LoadFile reads and decodes a model artifact.
func LoadFile(fs ports.FileSystem, path string, expected features.Schema) (*Model, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	return Load(data, expected)
}

func newModel(a artifact) (*Model, error) {
	n := a.Schema.Len()
	if n == 0 {
		return nil, errors.New("model has no feature columns")
	}
	if len(a.Weights) != n {
		return nil, fmt.Errorf("%w: %d weights for %d columns", features.ErrSchemaMismatch, len(a.Weights), n)
	}
	if len(a.Mean) != 0 && len(a.Mean) != n {
		return nil, fmt.Errorf("%w: %d means for %d columns", features.ErrSchemaMismatch, len(a.Mean), n)
	}
	if len(a.Scale) != 0 && len(a.Scale) != n {
		return nil, fmt.Errorf("%w: %d scales for %d columns", features.ErrSchemaMismatch, len(a.Scale), n)
	}
	m := &Model{
		schema:    a.Schema,
		weights:   append([]float64(nil), a.Weights...),
		bias:      a.Bias,
		threshold: DefaultThreshold,
		mean:      append([]float64(nil), a.Mean...),
		scale:     append([]float64(nil), a.Scale...),
	}
	if a.Threshold != nil {
		if *a.Threshold <= 0 || *a.Threshold >= 1 {
			return nil, fmt.Errorf("threshold %v outside (0, 1)", *a.Threshold)
		}
		m.threshold = *a.Threshold
	}
	return m, nil
}

// Columns returns the feature names the model expects, in order.
func (m *Model) Columns() []string {
	return m.schema.Columns()
}

// Schema returns the schema the model was trained on.
func (m *Model) Schema() features.Schema {
	return m.schema
}

// Probability returns the anomaly probability of one row.
func (m *Model) Probability(row []float64) (float64, error) {
	if len(row) != len(m.weights) {
		return 0, fmt.Errorf("%w: row has %d values, model expects %d", features.ErrSchemaMismatch, len(row), len(m.weights))
	}
	z := m.bias
	for i, x := range row {
		if len(m.mean) > 0 {
			x -= m.mean[i]
		}
		if len(m.scale) > 0 && m.scale[i] != 0 {
			x /= m.scale[i]
		}
		z += m.weights[i] * x
	}
	return 1 / (1 + math.Exp(-z)), nil
}

// Predict labels each row 1 when its probability reaches the threshold.
func (m *Model) Predict(rows [][]float64) ([]int, error) {
	out := make([]int, len(rows))
	for i, row := range rows {
		p, err := m.Probability(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if p >= m.threshold {
			out[i] = 1
		}
	}
	return out, nil
}

// MarshalJSON writes the model in the artifact format Load reads.
func (m *Model) MarshalJSON() ([]byte, error) {
	t := m.threshold
	return json.Marshal(artifact{
		Schema:    m.schema,
		Weights:   m.weights,
		Bias:      m.bias,
		Threshold: &t,
		Mean:      m.mean,
		Scale:     m.scale,
	})
}

var _ ports.Classifier = (*Model)(nil)
