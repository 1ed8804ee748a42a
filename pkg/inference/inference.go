// Package inference featurizes a single video through the same extraction
// stage the dataset builder uses and hands the row to a classifier.
package inference

import (
	"context"
	"fmt"

	"github.com/user/motionset/pkg/features"
	"github.com/user/motionset/pkg/pipeline"
	"github.com/user/motionset/pkg/ports"
)

// Prediction is the classifier's answer for one video.
type Prediction struct {
	Vector        features.Vector
	FrameCount    int
	LowConfidence bool
	Label         int
	// Anomalous is Label == 1.
	Anomalous bool
}

// Adapter applies the extraction path to one video at a time.
type Adapter struct {
	extractor pipeline.Extractor
	schema    features.Schema
	logger    ports.Logger
}

// New creates an Adapter producing vectors of schema.
func New(extractor pipeline.Extractor, schema features.Schema, logger ports.Logger) *Adapter {
	return &Adapter{
		extractor: extractor,
		schema:    schema,
		logger:    logger.WithComponent("inference"),
	}
}

// Schema returns the schema of the vectors the adapter produces.
func (a *Adapter) Schema() features.Schema {
	return a.schema
}

// Extract returns the feature vector of the video at path. Unreadable or
// empty videos fail with an error matching ports.ErrUnreadableSource.
// Nothing is written.
func (a *Adapter) Extract(ctx context.Context, path string) (features.Vector, error) {
	res, err := a.extract(ctx, path)
	if err != nil {
		return features.Vector{}, err
	}
	return res.Vector, nil
}

func (a *Adapter) extract(ctx context.Context, path string) (pipeline.ExtractResult, error) {
	res, err := a.extractor.Execute(ctx, pipeline.ExtractInput{Path: path, VideoID: pipeline.VideoID(path)})
	if err != nil {
		return pipeline.ExtractResult{}, err
	}
	if !res.Vector.Schema().Equal(a.schema) {
		return pipeline.ExtractResult{}, fmt.Errorf("%w: extractor produced %s, expected %s",
			features.ErrSchemaMismatch, res.Vector.Schema(), a.schema)
	}
	if res.LowConfidence {
		a.logger.Warn("Low-confidence features for %s: %d frames", path, res.FrameCount)
	}
	return res, nil
}

// Predict extracts path and classifies it. The classifier's columns are
// checked against the schema before any decoding.
func (a *Adapter) Predict(ctx context.Context, path string, clf ports.Classifier) (Prediction, error) {
	if err := a.schema.Check(clf.Columns()); err != nil {
		return Prediction{}, fmt.Errorf("classifier: %w", err)
	}

	res, err := a.extract(ctx, path)
	if err != nil {
		return Prediction{}, err
	}
	row, err := res.Vector.Row(a.schema)
	if err != nil {
		return Prediction{}, err
	}

	labels, err := clf.Predict([][]float64{row})
	if err != nil {
		return Prediction{}, fmt.Errorf("predict: %w", err)
	}
	if len(labels) != 1 {
		return Prediction{}, fmt.Errorf("predict: expected 1 label, got %d", len(labels))
	}
	if labels[0] != 0 && labels[0] != 1 {
		return Prediction{}, fmt.Errorf("predict: label %d is not binary", labels[0])
	}

	a.logger.Debug("Predicted %s: label %d", path, labels[0])
	return Prediction{
		Vector:        res.Vector,
		FrameCount:    res.FrameCount,
		LowConfidence: res.LowConfidence,
		Label:         labels[0],
		Anomalous:     labels[0] == 1,
	}, nil
}
