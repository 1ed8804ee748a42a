package mocks

import (
	"sync"

	"github.com/user/motionset/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	Series map[string]ports.SeriesDump
	Err    error
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled: enabled,
		Series:  make(map[string]ports.SeriesDump),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveSeries(dump ports.SeriesDump) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Series[dump.VideoID] = dump
	return nil
}

// GetSeries returns the saved series for a video (for test verification).
func (m *DebugSink) GetSeries(videoID string) (ports.SeriesDump, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.Series[videoID]
	return d, ok
}

var _ ports.DebugSink = (*DebugSink)(nil)
