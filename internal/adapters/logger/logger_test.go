package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{"Error", LevelError},
		{"verbose", LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestStdLogger_FiltersAndSortsFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewStdLoggerTo(&buf, LevelInfo)

	l.Debug(context.Background(), "hidden")
	l.Warn(context.Background(), "fee unknown", map[string]interface{}{"row": 3, "currency": "LTC"})

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] fee unknown | currency=LTC row=3")
}

func TestZeroLogger_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewZeroLogger(&buf, LevelWarn)

	l.Info(context.Background(), "hidden")
	l.Error(context.Background(), errors.New("disk full"), "append failed", map[string]interface{}{"rows": 2})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &event))
	assert.Equal(t, "error", event["level"])
	assert.Equal(t, "append failed", event["message"])
	assert.Equal(t, "disk full", event["error"])
	assert.EqualValues(t, 2, event["rows"])
}
