package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWithWriterLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "warn")

	l.Infof("hidden %d", 1)
	l.Warnf("shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line written at warn level: %q", out)
	}
	if !strings.Contains(out, "shown 2") {
		t.Errorf("warn line missing: %q", out)
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "debug").WithFields(map[string]interface{}{"spot": "taiba"})

	l.Debugf("fetched")

	if !strings.Contains(buf.String(), "spot=taiba") {
		t.Errorf("field missing from %q", buf.String())
	}
}

func TestNewWithWriterBadLevelFallsBack(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "chatty")
	l.Infof("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("expected info fallback, got %q", buf.String())
	}
}

func TestNewCreatesLogFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	l, err := New(dir, "info")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	l.Infof("written to file")
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "surfalert.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Errorf("log file content = %q", data)
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New(t.TempDir(), "loud"); err == nil {
		t.Error("expected error for invalid level")
	}
}
