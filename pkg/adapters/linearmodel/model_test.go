package linearmodel

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/user/motionset/pkg/features"
	"github.com/user/motionset/pkg/mocks"
)

const artifactJSON = `{
  "schema": {"name": "motion-flow", "version": 1,
             "columns": ["mean_motion", "max_motion", "std_motion", "mean_flow", "max_flow"]},
  "weights": [1, 0, 0, 0, 0],
  "bias": -5,
  "mean": [0, 0, 0, 0, 0],
  "scale": [1, 1, 1, 1, 1]
}`

func TestLoad(t *testing.T) {
	m, err := Load([]byte(artifactJSON), features.Default)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := features.Default.Check(m.Columns()); err != nil {
		t.Errorf("columns should follow the default schema: %v", err)
	}

	labels, err := m.Predict([][]float64{
		{0, 0, 0, 0, 0},  // p = sigmoid(-5)
		{10, 0, 0, 0, 0}, // p = sigmoid(5)
		{5, 0, 0, 0, 0},  // p = 0.5, threshold is inclusive
	})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	want := []int{0, 1, 1}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("row %d: got %d, want %d", i, labels[i], want[i])
		}
	}
}

func TestLoad_SchemaMismatch(t *testing.T) {
	tests := []struct {
		name   string
		schema features.Schema
	}{
		{"newer version", features.NewSchema("motion-flow", 2, features.Default.Columns()...)},
		{"reordered", features.NewSchema("motion-flow", 1, "max_motion", "mean_motion", "std_motion", "mean_flow", "max_flow")},
		{"fewer columns", features.NewSchema("motion-flow", 1, "mean_motion")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(artifactJSON), tt.schema)
			if !errors.Is(err, features.ErrSchemaMismatch) {
				t.Errorf("expected ErrSchemaMismatch, got %v", err)
			}
		})
	}
}

func TestLoad_WeightCount(t *testing.T) {
	data := `{"schema": {"name": "motion-flow", "version": 1,
	  "columns": ["mean_motion", "max_motion", "std_motion", "mean_flow", "max_flow"]},
	  "weights": [1, 2], "bias": 0}`
	if _, err := Load([]byte(data), features.Default); !errors.Is(err, features.ErrSchemaMismatch) {
		t.Errorf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestLoad_InvalidThreshold(t *testing.T) {
	if _, err := New(features.Default, make([]float64, 5), 0, 1.5); err == nil {
		t.Error("expected error for threshold outside (0, 1)")
	}
}

func TestProbability_Standardization(t *testing.T) {
	a := artifact{
		Schema:  features.NewSchema("s", 1, "x"),
		Weights: []float64{2},
		Mean:    []float64{10},
		Scale:   []float64{4},
	}
	m, err := newModel(a)
	if err != nil {
		t.Fatal(err)
	}
	// (18 - 10) / 4 * 2 = 4
	p, _ := m.Probability([]float64{18})
	if want := 1 / (1 + math.Exp(-4)); math.Abs(p-want) > 1e-12 {
		t.Errorf("Probability = %v, want %v", p, want)
	}
}

func TestMarshalJSON_RoundTrip(t *testing.T) {
	m, err := New(features.Default, []float64{0.5, 0.1, 0.2, 1, 2}, -1, 0.7)
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}

	fs := mocks.NewFileSystem()
	fs.WriteFile("models/m.json", data)
	loaded, err := LoadFile(fs, "models/m.json", features.Default)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if loaded.threshold != 0.7 || loaded.bias != -1 {
		t.Errorf("unexpected model %+v", loaded)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(mocks.NewFileSystem(), "nope.json", features.Default); err == nil {
		t.Error("expected error for missing file")
	}
}
