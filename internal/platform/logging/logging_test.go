package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewWithWriterWritesJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := NewWithWriter(DefaultConfig(), &buf)
	if err != nil {
		t.Fatalf("NewWithWriter() error = %v", err)
	}
	logger.Info("module activated", zap.String("module", "todo"))
	_ = logger.Sync()

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry["message"] != "module activated" {
		t.Fatalf("message = %v, want %q", entry["message"], "module activated")
	}
	if entry["module"] != "todo" {
		t.Fatalf("module = %v, want %q", entry["module"], "todo")
	}
}

func TestNewWithWriterRespectsLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := NewWithWriter(Config{Level: "warn"}, &buf)
	if err != nil {
		t.Fatalf("NewWithWriter() error = %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")
	_ = logger.Sync()

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line leaked at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Fatalf("warn line missing: %q", out)
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	if _, err := NewWithWriter(Config{Level: "loud"}, nil); err == nil {
		t.Fatal("expected invalid level error")
	}
}

func TestNewWithFileCreatesRotatedLog(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "lifeos.log")
	logger, err := NewWithWriter(Config{Level: "info", File: path}, nil)
	if err != nil {
		t.Fatalf("NewWithWriter() error = %v", err)
	}
	logger.Info("written to file")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Fatalf("log file = %q, want message", string(data))
	}
}

func TestOrNop(t *testing.T) {
	t.Parallel()

	if OrNop(nil) == nil {
		t.Fatal("expected no-op logger for nil input")
	}
	logger := zap.NewExample()
	if OrNop(logger) != logger {
		t.Fatal("expected OrNop to return the provided logger")
	}
}
