package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/user/motionset/pkg/ports"
)

func TestConsoleLogger_LevelsAndStreams(t *testing.T) {
	var out, errOut bytes.Buffer
	log := NewConsoleWriters(ports.LevelInfo, &out, &errOut)

	log.Debug("hidden %d", 1)
	log.Info("processed %d videos", 3)
	log.Warn("skipped %s", "a.mp4")
	log.Error("failed")

	if strings.Contains(out.String(), "hidden") {
		t.Error("debug message should be filtered at info level")
	}
	if !strings.Contains(out.String(), "processed 3 videos") {
		t.Errorf("expected info on stdout, got %q", out.String())
	}
	if !strings.Contains(errOut.String(), "skipped a.mp4") || !strings.Contains(errOut.String(), "failed") {
		t.Errorf("expected warn and error on stderr, got %q", errOut.String())
	}
}

func TestConsoleLogger_WithComponent(t *testing.T) {
	var out bytes.Buffer
	log := NewConsoleWriters(ports.LevelDebug, &out, &out).WithComponent("dataset")

	log.Debug("scanning")
	if got := strings.TrimSpace(out.String()); got != "[dataset] scanning" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewStructured(&buf, ports.LevelInfo).WithComponent("extract")

	log.Debug("dropped")
	log.Warn("skipped %s: %s", "v1", "timeout")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if entry["level"] != "warn" {
		t.Errorf("expected level warn, got %v", entry["level"])
	}
	if entry["component"] != "extract" {
		t.Errorf("expected component extract, got %v", entry["component"])
	}
	if entry["message"] != "skipped v1: timeout" {
		t.Errorf("unexpected message %v", entry["message"])
	}
}

func TestStructuredLogger_Quiet(t *testing.T) {
	var buf bytes.Buffer
	log := NewStructured(&buf, ports.LevelQuiet)
	log.Error("nothing")
	if buf.Len() != 0 {
		t.Errorf("expected no output in quiet mode, got %q", buf.String())
	}
}
