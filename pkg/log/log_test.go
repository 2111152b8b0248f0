package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "info")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l.Debugf("hidden %d", 1)
	l.Infof("loaded %s", "rom")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("expected debug message to be filtered, got %q", out)
	}
	if !strings.Contains(out, "msg=loaded rom") {
		t.Errorf("expected unquoted info message, got %q", out)
	}
	if strings.Contains(out, "time=") {
		t.Errorf("expected no timestamp, got %q", out)
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := New(&bytes.Buffer{}, "loud"); err == nil {
		t.Errorf("expected error for invalid level")
	}
}
