package mocks

import (
	"sync"
	"time"

	"github.com/user/motionset/pkg/ports"
)

// Metrics is a mock implementation of ports.MetricsRecorder that counts calls.
type Metrics struct {
	mu        sync.Mutex
	Started   int
	Done      int
	Processed map[string]int
	Skipped   map[string]int
	Frames    int
}

// NewMetrics creates an empty recorder.
func NewMetrics() *Metrics {
	return &Metrics{
		Processed: make(map[string]int),
		Skipped:   make(map[string]int),
	}
}

func (m *Metrics) VideoStarted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Started++
}

func (m *Metrics) VideoDone() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Done++
}

func (m *Metrics) VideoProcessed(category string, frames int, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Processed[category]++
	m.Frames += frames
}

func (m *Metrics) VideoSkipped(category, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Skipped[reason]++
}

var _ ports.MetricsRecorder = (*Metrics)(nil)
