package logger

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/user/motionset/pkg/ports"
)

// StructuredLogger emits one JSON object per message via zerolog.
// Messages are formatted but not translated so logs stay machine-stable.
type StructuredLogger struct {
	zl zerolog.Logger
}

// NewStructured creates a JSON logger writing to w.
func NewStructured(w io.Writer, level ports.LogLevel) *StructuredLogger {
	zerolog.TimeFieldFormat = time.RFC3339
	zl := zerolog.New(w).Level(zerologLevel(level)).With().Timestamp().Logger()
	return &StructuredLogger{zl: zl}
}

func zerologLevel(level ports.LogLevel) zerolog.Level {
	switch level {
	case ports.LevelDebug:
		return zerolog.DebugLevel
	case ports.LevelInfo:
		return zerolog.InfoLevel
	case ports.LevelWarn:
		return zerolog.WarnLevel
	case ports.LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.Disabled
	}
}

// Debug logs a debug message.
func (l *StructuredLogger) Debug(msg string, args ...interface{}) {
	l.zl.Debug().Msg(format(msg, args))
}

// Info logs an informational message.
func (l *StructuredLogger) Info(msg string, args ...interface{}) {
	l.zl.Info().Msg(format(msg, args))
}

// Warn logs a warning message.
func (l *StructuredLogger) Warn(msg string, args ...interface{}) {
	l.zl.Warn().Msg(format(msg, args))
}

// Error logs an error message.
func (l *StructuredLogger) Error(msg string, args ...interface{}) {
	l.zl.Error().Msg(format(msg, args))
}

// WithComponent returns a logger carrying a component field.
func (l *StructuredLogger) WithComponent(component string) ports.Logger {
	return &StructuredLogger{zl: l.zl.With().Str("component", component).Logger()}
}

func format(msg string, args []interface{}) string {
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

var _ ports.Logger = (*StructuredLogger)(nil)
