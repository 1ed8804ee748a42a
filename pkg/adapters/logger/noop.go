package logger

import "github.com/user/motionset/pkg/ports"

// NoopLogger drops every message. The CLI uses it for --quiet and tests use
// it to keep builder output out of the test log.
type NoopLogger struct{}

var _ ports.Logger = (*NoopLogger)(nil)

func NewNoop() *NoopLogger { return &NoopLogger{} }

func (*NoopLogger) Debug(string, ...interface{}) {}
func (*NoopLogger) Info(string, ...interface{}) {}
func (*NoopLogger) Warn(string, ...interface{}) {}
func (*NoopLogger) Error(string, ...interface{}) {}

// WithComponent has no component to record and returns l.
func (l *NoopLogger) WithComponent(string) ports.Logger { return l }
