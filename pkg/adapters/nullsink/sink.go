// Package nullsink discards motion and flow series when debug output is off.
package nullsink

import (
	"github.com/user/motionset/pkg/ports"
)

// Sink reports itself disabled so the extract stage skips building dumps.
type Sink struct{}

var _ ports.DebugSink = (*Sink)(nil)

func New() *Sink { return &Sink{} }

func (*Sink) Enabled() bool { return false }

// SaveSeries drops the dump.
func (*Sink) SaveSeries(ports.SeriesDump) error { return nil }
