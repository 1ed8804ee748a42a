// Package cvflow selects the dense optical flow backend. The Farneback
// estimator binds OpenCV through gocv and is only compiled with the gocv
// build tag; without it the built-in Lucas–Kanade solver is the only engine.
package cvflow

import (
	"errors"
	"fmt"

	"github.com/user/motionset/pkg/features"
)

// Engine names accepted by Select.
const (
	EngineNative    = "native"
	EngineFarneback = "farneback"
	EngineAuto      = "auto"
)

// ErrUnavailable is returned when farneback is requested from a binary
// built without the gocv tag.
var ErrUnavailable = errors.New("cvflow: farneback requires a build with -tags gocv")

// Select returns the estimator for engine. "auto" prefers farneback when
// it was compiled in and falls back to native otherwise.
func Select(engine string) (features.FlowEstimator, error) {
	switch engine {
	case "", EngineNative:
		return features.LucasKanade{}, nil
	case EngineFarneback:
		return New()
	case EngineAuto:
		if Available {
			return New()
		}
		return features.LucasKanade{}, nil
	default:
		return nil, fmt.Errorf("unknown flow engine %q", engine)
	}
}
