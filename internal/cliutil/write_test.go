package cliutil

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWritef(t *testing.T) {
	tests := []struct {
		name   string
		format string
		args   []any
		want   string
	}{
		{"no args", "Simple message", nil, "Simple message"},
		{"one arg", "Hello, %s!", []any{"World"}, "Hello, World!"},
		{"several args", "%s: %d paths, %v", []any{"pets.yaml", 3, true}, "pets.yaml: 3 paths, true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Writef(&buf, tt.format, tt.args...)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

type errorWriter struct{}

func (errorWriter) Write([]byte) (int, error) {
	return 0, errors.New("simulated write error")
}

func TestWritef_WriteError(t *testing.T) {
	var reported bytes.Buffer
	old := failures
	failures = &reported
	t.Cleanup(func() { failures = old })

	Writef(errorWriter{}, "This will fail")
	assert.Equal(t, "write error: simulated write error\n", reported.String())
}
