package features

import (
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/user/motionset/pkg/ports"
)

// FlowParams controls the dense optical flow estimate.
type FlowParams struct {
	// Levels is the number of pyramid layers including the full-size one.
	// Each layer halves the resolution of the one above it.
	Levels int `yaml:"levels" json:"levels"`
	// WinSize is the side of the square averaging window, in pixels.
	WinSize int `yaml:"win_size" json:"win_size"`
	// Iterations is the number of refinement passes per pyramid layer.
	Iterations int `yaml:"iterations" json:"iterations"`
	// Downscale shrinks frames by this integer factor before estimating flow.
	// Magnitudes are reported in source pixels regardless.
	Downscale int `yaml:"downscale" json:"downscale"`
	// Stride estimates flow on every Nth consecutive frame pair.
	Stride int `yaml:"stride" json:"stride"`
}

// DefaultFlowParams returns the standard preset.
func DefaultFlowParams() FlowParams {
	return FlowParams{Levels: 3, WinSize: 15, Iterations: 3, Downscale: 1, Stride: 1}
}

// FlowPreset returns the named parameter preset: fast, standard or accurate.
func FlowPreset(name string) (FlowParams, error) {
	switch name {
	case "fast":
		return FlowParams{Levels: 2, WinSize: 9, Iterations: 2, Downscale: 2, Stride: 1}, nil
	case "", "standard":
		return DefaultFlowParams(), nil
	case "accurate":
		return FlowParams{Levels: 4, WinSize: 21, Iterations: 5, Downscale: 1, Stride: 1}, nil
	default:
		return FlowParams{}, fmt.Errorf("unknown flow preset %q", name)
	}
}

// normalized fills in zero fields and forces an odd window.
func (p FlowParams) normalized() FlowParams {
	d := DefaultFlowParams()
	if p.Levels < 1 {
		p.Levels = d.Levels
	}
	if p.WinSize < 3 {
		p.WinSize = d.WinSize
	}
	if p.WinSize%2 == 0 {
		p.WinSize++
	}
	if p.Iterations < 1 {
		p.Iterations = d.Iterations
	}
	if p.Downscale < 1 {
		p.Downscale = 1
	}
	if p.Stride < 1 {
		p.Stride = 1
	}
	return p
}

// FlowEstimator computes the dense flow field from prev to next, both w×h
// 8-bit planes. u and v hold the per-pixel x and y displacements in
// row-major order.
type FlowEstimator interface {
	Name() string
	Estimate(prev, next []byte, w, h int, params FlowParams) (u, v []float64, err error)
}

// LucasKanade is the built-in estimator backed by DenseFlow.
type LucasKanade struct{}

func (LucasKanade) Name() string { return "native" }

func (LucasKanade) Estimate(prev, next []byte, w, h int, params FlowParams) ([]float64, []float64, error) {
	u, v := DenseFlow(prev, next, w, h, params)
	return u, v, nil
}

// FlowExtractor scores apparent motion between consecutive grayscale frames
// as the mean magnitude of their dense optical flow.
type FlowExtractor struct {
	params    FlowParams
	estimator FlowEstimator
	prev      []byte
	pw, ph    int
	scale     float64
	pairs     int
	scores    []float64
}

// NewFlowExtractor creates an extractor using params. A nil estimator
// selects LucasKanade.
func NewFlowExtractor(params FlowParams, estimator FlowEstimator) *FlowExtractor {
	if estimator == nil {
		estimator = LucasKanade{}
	}
	return &FlowExtractor{params: params.normalized(), estimator: estimator}
}

// Observe feeds the next frame. Frames of a different size restart the
// pairing without a score.
func (f *FlowExtractor) Observe(frame *ports.Frame) error {
	pix, w, h, scale := f.prepare(frame)
	if f.prev != nil && w == f.pw && h == f.ph {
		if f.pairs%f.params.Stride == 0 {
			u, v, err := f.estimator.Estimate(f.prev, pix, w, h, f.params)
			if err != nil {
				return fmt.Errorf("%s flow: %w", f.estimator.Name(), err)
			}
			f.scores = append(f.scores, MeanMagnitude(u, v)*scale)
		}
		f.pairs++
	}
	f.prev, f.pw, f.ph, f.scale = pix, w, h, scale
	return nil
}

// Series returns the per-pair mean magnitudes observed so far.
func (f *FlowExtractor) Series() []float64 {
	return f.scores
}

// Stats summarizes the series.
func (f *FlowExtractor) Stats() Stats {
	return Summarize(f.scores)
}

func (f *FlowExtractor) prepare(frame *ports.Frame) ([]byte, int, int, float64) {
	d := f.params.Downscale
	w, h := frame.Width/d, frame.Height/d
	if d == 1 || w < 2 || h < 2 {
		return frame.Pix, frame.Width, frame.Height, 1
	}
	src := &image.Gray{Pix: frame.Pix, Stride: frame.Width, Rect: image.Rect(0, 0, frame.Width, frame.Height)}
	dst := image.NewGray(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst.Pix, w, h, float64(d)
}

// MeanMagnitude returns the mean Euclidean length of the flow vectors.
func MeanMagnitude(u, v []float64) float64 {
	if len(u) == 0 {
		return 0
	}
	var sum float64
	for i := range u {
		sum += math.Hypot(u[i], v[i])
	}
	return sum / float64(len(u))
}

// minEigen is the smallest structure-tensor eigenvalue, in squared
// intensity units, for which a window's flow is updated.
const minEigen = 1e-2

// minLevelSide stops the pyramid before layers become too small to carry
// gradients.
const minLevelSide = 8

// DenseFlow estimates per-pixel flow from prev to next, both w×h 8-bit
// planes, with a coarse-to-fine iterative Lucas–Kanade solver. It returns
// the horizontal and vertical components in row-major order.
func DenseFlow(prev, next []byte, w, h int, params FlowParams) (u, v []float64) {
	params = params.normalized()

	pp := []plane{planeFromGray(prev, w, h)}
	np := []plane{planeFromGray(next, w, h)}
	for len(pp) < params.Levels {
		top := pp[len(pp)-1]
		if top.w/2 < minLevelSide || top.h/2 < minLevelSide {
			break
		}
		pp = append(pp, top.down())
		np = append(np, np[len(np)-1].down())
	}

	var pw, ph int
	for l := len(pp) - 1; l >= 0; l-- {
		p, n := pp[l], np[l]
		if u == nil {
			u = make([]float64, p.w*p.h)
			v = make([]float64, p.w*p.h)
		} else {
			u, v = upsampleFlow(u, v, pw, ph, p.w, p.h)
		}
		refine(p, n, u, v, params)
		pw, ph = p.w, p.h
	}
	return u, v
}

func refine(p, n plane, u, v []float64, params FlowParams) {
	size := p.w * p.h
	r := params.WinSize / 2
	ix, iy := p.gradients()

	ixx := make([]float64, size)
	ixy := make([]float64, size)
	iyy := make([]float64, size)
	for i := 0; i < size; i++ {
		ixx[i] = ix[i] * ix[i]
		ixy[i] = ix[i] * iy[i]
		iyy[i] = iy[i] * iy[i]
	}
	box := newBoxFilter(p.w, p.h, r)
	sxx := box.mean(ixx)
	sxy := box.mean(ixy)
	syy := box.mean(iyy)

	ixt := make([]float64, size)
	iyt := make([]float64, size)
	for it := 0; it < params.Iterations; it++ {
		for y := 0; y < p.h; y++ {
			for x := 0; x < p.w; x++ {
				i := y*p.w + x
				d := n.sample(float64(x)+u[i], float64(y)+v[i]) - p.pix[i]
				ixt[i] = ix[i] * d
				iyt[i] = iy[i] * d
			}
		}
		bxt := box.mean(ixt)
		byt := box.mean(iyt)

		for i := 0; i < size; i++ {
			a, b, c := sxx[i], sxy[i], syy[i]
			tr := a + c
			minEig := (tr - math.Sqrt((a-c)*(a-c)+4*b*b)) / 2
			if minEig < minEigen {
				continue
			}
			det := a*c - b*b
			u[i] += (-c*bxt[i] + b*byt[i]) / det
			v[i] += (b*bxt[i] - a*byt[i]) / det
		}
	}
}

func upsampleFlow(u, v []float64, pw, ph, w, h int) ([]float64, []float64) {
	uo := make([]float64, w*h)
	vo := make([]float64, w*h)
	for y := 0; y < h; y++ {
		sy := clampInt(y/2, 0, ph-1)
		for x := 0; x < w; x++ {
			sx := clampInt(x/2, 0, pw-1)
			uo[y*w+x] = 2 * u[sy*pw+sx]
			vo[y*w+x] = 2 * v[sy*pw+sx]
		}
	}
	return uo, vo
}

// plane is a float64 intensity image with clamped borders.
type plane struct {
	w, h int
	pix  []float64
}

func planeFromGray(pix []byte, w, h int) plane {
	p := plane{w: w, h: h, pix: make([]float64, w*h)}
	for i := range p.pix {
		p.pix[i] = float64(pix[i])
	}
	return p
}

func (p plane) at(x, y int) float64 {
	return p.pix[clampInt(y, 0, p.h-1)*p.w+clampInt(x, 0, p.w-1)]
}

// sample interpolates bilinearly at a sub-pixel position.
func (p plane) sample(x, y float64) float64 {
	x0, y0 := math.Floor(x), math.Floor(y)
	fx, fy := x-x0, y-y0
	ix, iy := int(x0), int(y0)
	top := p.at(ix, iy)*(1-fx) + p.at(ix+1, iy)*fx
	bottom := p.at(ix, iy+1)*(1-fx) + p.at(ix+1, iy+1)*fx
	return top*(1-fy) + bottom*fy
}

// down halves the resolution with a 2×2 box average.
func (p plane) down() plane {
	w, h := (p.w+1)/2, (p.h+1)/2
	out := plane{w: w, h: h, pix: make([]float64, w*h)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sx, sy := 2*x, 2*y
			out.pix[y*w+x] = (p.at(sx, sy) + p.at(sx+1, sy) + p.at(sx, sy+1) + p.at(sx+1, sy+1)) / 4
		}
	}
	return out
}

// gradients returns central-difference derivatives along x and y.
func (p plane) gradients() (ix, iy []float64) {
	ix = make([]float64, p.w*p.h)
	iy = make([]float64, p.w*p.h)
	for y := 0; y < p.h; y++ {
		for x := 0; x < p.w; x++ {
			i := y*p.w + x
			ix[i] = (p.at(x+1, y) - p.at(x-1, y)) / 2
			iy[i] = (p.at(x, y+1) - p.at(x, y-1)) / 2
		}
	}
	return ix, iy
}

// boxFilter averages values over a (2r+1)² window clipped to the image,
// using a summed-area table.
type boxFilter struct {
	w, h, r  int
	integral []float64
}

func newBoxFilter(w, h, r int) *boxFilter {
	return &boxFilter{w: w, h: h, r: r, integral: make([]float64, (w+1)*(h+1))}
}

func (b *boxFilter) mean(src []float64) []float64 {
	stride := b.w + 1
	for y := 0; y < b.h; y++ {
		var row float64
		for x := 0; x < b.w; x++ {
			row += src[y*b.w+x]
			b.integral[(y+1)*stride+x+1] = b.integral[y*stride+x+1] + row
		}
	}

	out := make([]float64, b.w*b.h)
	for y := 0; y < b.h; y++ {
		y0, y1 := clampInt(y-b.r, 0, b.h-1), clampInt(y+b.r, 0, b.h-1)+1
		for x := 0; x < b.w; x++ {
			x0, x1 := clampInt(x-b.r, 0, b.w-1), clampInt(x+b.r, 0, b.w-1)+1
			sum := b.integral[y1*stride+x1] - b.integral[y0*stride+x1] - b.integral[y1*stride+x0] + b.integral[y0*stride+x0]
			out[y*b.w+x] = sum / float64((x1-x0)*(y1-y0))
		}
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
