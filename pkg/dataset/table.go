package dataset

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strconv"

	"github.com/user/motionset/pkg/features"
)

// TableColumns returns the dataset table header for a schema. Feature
// columns are taken from the schema in order.
func TableColumns(schema features.Schema) []string {
	cols := []string{"video_id", "category", "label"}
	cols = append(cols, schema.Columns()...)
	return append(cols, "frame_count", "features_path", "frames_dir", "low_confidence", "source_path")
}

// SkipColumns is the header of the skip marker table.
var SkipColumns = []string{"video_id", "category", "reason", "source_path", "detail"}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// encodeTable renders records as CSV. Each row is built from the vector
// through Row, so a record following another schema fails the whole table.
func encodeTable(schema features.Schema, records []VideoRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(TableColumns(schema)); err != nil {
		return nil, err
	}
	for _, r := range records {
		values, err := r.Features.Row(schema)
		if err != nil {
			return nil, err
		}
		row := []string{r.VideoID, r.Category, strconv.Itoa(r.Label)}
		for _, v := range values {
			row = append(row, formatFloat(v))
		}
		row = append(row,
			strconv.Itoa(r.FrameCount),
			r.FeaturesPath,
			r.FramesDir,
			strconv.FormatBool(r.LowConfidence),
			r.SourcePath,
		)
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func encodeSkips(skips []Skip) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(SkipColumns); err != nil {
		return nil, err
	}
	for _, s := range skips {
		if err := w.Write([]string{s.VideoID, s.Category, string(s.Reason), s.SourcePath, s.Detail()}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func encodeSchema(schema features.Schema) ([]byte, error) {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
