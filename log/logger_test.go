package log

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(zap.String("component", "test")).WithOutput(&buf)
	l.Info("hello", map[string]any{"k": "v"})

	out := buf.String()
	if !strings.Contains(out, `"message":"hello"`) {
		t.Fatalf("expected message field in output, got %q", out)
	}
	if !strings.Contains(out, `"component":"test"`) {
		t.Fatalf("expected component field in output, got %q", out)
	}
}

func TestLogger_ConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithFormat(FormatConsole).WithOutput(&buf)
	l.Warn("careful", nil)
	if buf.Len() == 0 {
		t.Fatal("expected console output to be written")
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger().WithOutput(&buf).With(zap.String("correlation_id", "abc-123"))
	l.Error("failed", map[string]any{"reason": "boom"})

	out := buf.String()
	if !strings.Contains(out, "abc-123") {
		t.Fatalf("expected correlation_id in output, got %q", out)
	}
}

func TestSugaredLogger(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogger().WithOutput(&buf).Sugar()
	s.Infof("count=%d", 3)
	if !strings.Contains(buf.String(), "count=3") {
		t.Fatalf("expected formatted message, got %q", buf.String())
	}
}
