package dataset

import (
	"encoding/json"
	"fmt"
	"path"

	"github.com/user/motionset/pkg/features"
)

// Output layout, relative to Config.OutputDir.
const (
	featuresDir = "features"
	framesDir   = "frames"
	metadataDir = "metadata"
	tableFile   = "video_metadata.csv"
	skippedFile = "skipped.csv"
	schemaFile  = "schema.json"
	artifactExt = ".json"
)

func featuresRel(category, videoID string) string {
	return path.Join(featuresDir, category, videoID+artifactExt)
}

func framesRel(category, videoID string) string {
	return path.Join(framesDir, category, videoID)
}

// featureArtifact is the per-video feature file.
type featureArtifact struct {
	Schema        features.Schema `json:"schema"`
	VideoID       string          `json:"video_id"`
	Category      string          `json:"category"`
	Label         int             `json:"label"`
	FrameCount    int             `json:"frame_count"`
	LowConfidence bool            `json:"low_confidence"`
	SourcePath    string          `json:"source_path"`
	Features      json.RawMessage `json:"features"`
}

func encodeArtifact(rec VideoRecord) ([]byte, error) {
	values, err := json.Marshal(rec.Features)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(featureArtifact{
		Schema:        rec.Features.Schema(),
		VideoID:       rec.VideoID,
		Category:      rec.Category,
		Label:         rec.Label,
		FrameCount:    rec.FrameCount,
		LowConfidence: rec.LowConfidence,
		SourcePath:    rec.SourcePath,
		Features:      values,
	}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// decodeArtifact parses a feature file and checks that it belongs to the
// expected video and follows the active schema.
func decodeArtifact(data []byte, schema features.Schema, category, videoID string) (featureArtifact, features.Vector, error) {
	var a featureArtifact
	if err := json.Unmarshal(data, &a); err != nil {
		return a, features.Vector{}, fmt.Errorf("parse artifact: %w", err)
	}
	if !a.Schema.Equal(schema) {
		return a, features.Vector{}, fmt.Errorf("%w: artifact follows %s", features.ErrSchemaMismatch, a.Schema)
	}
	if a.VideoID != videoID || a.Category != category {
		return a, features.Vector{}, fmt.Errorf("artifact is for %s/%s", a.Category, a.VideoID)
	}
	vec, err := features.DecodeVector(schema, a.Features)
	if err != nil {
		return a, features.Vector{}, err
	}
	if !vec.Finite() {
		return a, features.Vector{}, fmt.Errorf("artifact holds non-finite values")
	}
	return a, vec, nil
}
