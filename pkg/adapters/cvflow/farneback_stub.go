//go:build !gocv

package cvflow

import "github.com/user/motionset/pkg/features"

// Available reports whether the farneback engine was compiled in.
const Available = false

// New fails with ErrUnavailable in builds without the gocv tag.
func New() (features.FlowEstimator, error) {
	return nil, ErrUnavailable
}
