package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    LogLevel
		wantErr bool
	}{
		{input: "error", want: LogLevelError},
		{input: "warn", want: LogLevelWarn},
		{input: "info", want: LogLevelInfo},
		{input: "debug", want: LogLevelDebug},
		{input: "trace", want: LogLevelTrace},
		{input: "verbose", want: LogLevelError, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLogLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLogger_levelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(buf, "", 0, LogLevelWarn)

	logger.Info("hidden %d", 1)
	logger.Warn("shown %d", 2)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	entry := map[string]string{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "shown 2", entry["msg"])
}

func TestLogger_WithComponent(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(buf, "", 0, LogLevelDebug).WithComponent("engine")

	logger.Debug("tick")

	entry := map[string]string{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "engine", entry["component"])
	assert.Equal(t, "tick", entry["msg"])
}

func TestLogger_WithComponentFollowsParentLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	parent := New(buf, "", 0, LogLevelInfo)
	child := parent.WithComponent("gpio")

	child.Debug("before")
	assert.Empty(t, buf.String())

	parent.SetLevel(LogLevelDebug)
	assert.Equal(t, LogLevelDebug, child.Level())
	child.Debug("after")

	entry := map[string]string{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "after", entry["msg"])
	assert.Equal(t, "gpio", entry["component"])

	child.WithComponent("pin").SetLevel(LogLevelError)
	assert.Equal(t, LogLevelError, parent.Level())
}
