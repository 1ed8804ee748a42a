//go:build gocv

package cvflow

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/user/motionset/pkg/features"
)

// Available reports whether the farneback engine was compiled in.
const Available = true

// Farneback estimates flow with OpenCV's polynomial expansion method.
// Levels, WinSize and Iterations come from features.FlowParams.
type Farneback struct {
	PyrScale  float64
	PolyN     int
	PolySigma float64
}

// New returns a Farneback estimator with pyramid scale 0.5, poly_n 5 and
// poly_sigma 1.2.
func New() (features.FlowEstimator, error) {
	return &Farneback{PyrScale: 0.5, PolyN: 5, PolySigma: 1.2}, nil
}

func (*Farneback) Name() string { return EngineFarneback }

// Estimate implements features.FlowEstimator. Each call owns its Mats, so
// one Farneback may be shared across workers.
func (f *Farneback) Estimate(prev, next []byte, w, h int, params features.FlowParams) ([]float64, []float64, error) {
	pm, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8U, prev)
	if err != nil {
		return nil, nil, fmt.Errorf("previous frame: %w", err)
	}
	defer pm.Close()
	nm, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8U, next)
	if err != nil {
		return nil, nil, fmt.Errorf("next frame: %w", err)
	}
	defer nm.Close()

	flow := gocv.NewMat()
	defer flow.Close()
	gocv.CalcOpticalFlowFarneback(pm, nm, &flow,
		f.PyrScale, params.Levels, params.WinSize, params.Iterations, f.PolyN, f.PolySigma, 0)

	planes := gocv.Split(flow)
	defer func() {
		for _, p := range planes {
			p.Close()
		}
	}()
	if len(planes) != 2 {
		return nil, nil, fmt.Errorf("expected 2 flow channels, got %d", len(planes))
	}
	du, err := planes[0].DataPtrFloat32()
	if err != nil {
		return nil, nil, fmt.Errorf("flow x: %w", err)
	}
	dv, err := planes[1].DataPtrFloat32()
	if err != nil {
		return nil, nil, fmt.Errorf("flow y: %w", err)
	}

	u := make([]float64, len(du))
	v := make([]float64, len(dv))
	for i := range du {
		u[i], v[i] = float64(du[i]), float64(dv[i])
	}
	return u, v, nil
}

var _ features.FlowEstimator = (*Farneback)(nil)
