package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_SelectsBackendByFormat(t *testing.T) {
	tests := []struct {
		format string
		want   any
	}{
		{FormatText, &SlogLogger{}},
		{FormatJSON, &SlogLogger{}},
		{FormatConsole, &ZerologLogger{}},
		{"bogus", &SlogLogger{}},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			assert.IsType(t, tt.want, New(tt.format, "info", &bytes.Buffer{}))
		})
	}
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(FormatJSON, "warn", &buf)

	log.Info(context.Background(), "hidden")
	log.Warn(context.Background(), "shown")

	out := buf.String()
	assert.False(t, strings.Contains(out, "hidden"))
	assert.True(t, strings.Contains(out, "shown"))
}
