// Package nullmetrics provides a metrics recorder that discards everything.
package nullmetrics

import (
	"time"

	"github.com/user/motionset/pkg/ports"
)

// Recorder is a no-op implementation of ports.MetricsRecorder.
type Recorder struct{}

// New creates a new Recorder.
func New() *Recorder {
	return &Recorder{}
}

func (r *Recorder) VideoStarted() {}

func (r *Recorder) VideoDone() {}

func (r *Recorder) VideoProcessed(category string, frames int, elapsed time.Duration) {}

func (r *Recorder) VideoSkipped(category, reason string) {}

var _ ports.MetricsRecorder = (*Recorder)(nil)
