package loader

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNopLogger(t *testing.T) {
	t.Run("discards everything", func(t *testing.T) {
		l := NopLogger{}
		l.Debug("d", "k", "v")
		l.Info("i")
		l.Warn("w")
		l.Error("e")
	})

	t.Run("With returns NopLogger", func(t *testing.T) {
		if _, ok := (NopLogger{}).With("key", "value").(NopLogger); !ok {
			t.Error("With should return NopLogger")
		}
	})
}

func TestSlogAdapter(t *testing.T) {
	t.Run("nil uses default", func(t *testing.T) {
		adapter := NewSlogAdapter(nil)
		if adapter.logger == nil {
			t.Error("adapter.logger should not be nil")
		}
	})

	levels := []struct {
		name  string
		log   func(Logger)
		level string
	}{
		{"debug", func(l Logger) { l.Debug("msg", "location", "a.yaml") }, "DEBUG"},
		{"info", func(l Logger) { l.Info("msg", "location", "a.yaml") }, "INFO"},
		{"warn", func(l Logger) { l.Warn("msg", "location", "a.yaml") }, "WARN"},
		{"error", func(l Logger) { l.Error("msg", "location", "a.yaml") }, "ERROR"},
	}
	for _, tt := range levels {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
			tt.log(NewSlogAdapter(slog.New(handler)))
			output := buf.String()
			if !strings.Contains(output, tt.level) {
				t.Errorf("expected %s level, got: %s", tt.level, output)
			}
			if !strings.Contains(output, "location=a.yaml") {
				t.Errorf("expected location attribute, got: %s", output)
			}
		})
	}

	t.Run("With adds attributes", func(t *testing.T) {
		var buf bytes.Buffer
		handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
		adapter := NewSlogAdapter(slog.New(handler))

		adapter.With("source", 2).Debug("resolved", "refs", 3)
		output := buf.String()
		if !strings.Contains(output, "source=2") || !strings.Contains(output, "refs=3") {
			t.Errorf("expected both attributes, got: %s", output)
		}
	})
}
