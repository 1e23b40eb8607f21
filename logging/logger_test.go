package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Logger = NoOpLogger{}
var _ Logger = (*DeepAgentLogger)(nil)

func newTestLogger(level LogLevel) (*DeepAgentLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger := NewLogger(&LoggerConfig{Level: level, Format: "json", Output: buf})
	return logger, buf
}

// decodeEntries parses one JSON object per emitted line.
func decodeEntries(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestLoggerForwardsKeyValueArgs(t *testing.T) {
	logger, buf := newTestLogger(LogLevelDebug)

	logger.Info("tool lookup", "tool", "search_song", "found", true)

	entries := decodeEntries(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "tool lookup", entries[0]["msg"])
	assert.Equal(t, "search_song", entries[0]["tool"])
	assert.Equal(t, true, entries[0]["found"])
}

func TestLoggerLevelFiltering(t *testing.T) {
	logger, buf := newTestLogger(LogLevelWarn)

	logger.Debug("ignorado")
	logger.Info("ignorado")
	logger.Warn("visible")
	logger.Error("también visible")

	entries := decodeEntries(t, buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "WARN", entries[0]["level"])
	assert.Equal(t, "ERROR", entries[1]["level"])
}

func TestLoggerContextualAttributes(t *testing.T) {
	base, buf := newTestLogger(LogLevelDebug)

	scoped := base.WithComponent("agent").WithThread("t1", "turn7").WithContext("region", "eu")
	scoped.Info("stage enter")

	entries := decodeEntries(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "agent", entries[0]["component"])
	assert.Equal(t, "t1", entries[0]["thread_id"])
	assert.Equal(t, "turn7", entries[0]["turn_id"])
	assert.Equal(t, "eu", entries[0]["region"])

	// With* clones; the base logger stays unscoped
	buf.Reset()
	base.Info("sin contexto")
	entries = decodeEntries(t, buf)
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0], "component")
	assert.NotContains(t, entries[0], "thread_id")
}

func TestLogToolCall(t *testing.T) {
	logger, buf := newTestLogger(LogLevelDebug)

	logger.LogToolCall("create_playlist", 12*time.Millisecond, true, nil)
	logger.LogToolCall("search_song", time.Millisecond, false, errors.New("rate limited"))

	entries := decodeEntries(t, buf)
	require.Len(t, entries, 2)

	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Equal(t, "Tool execution completed", entries[0]["msg"])
	assert.Equal(t, "create_playlist", entries[0]["tool_name"])
	assert.Equal(t, true, entries[0]["success"])

	assert.Equal(t, "ERROR", entries[1]["level"])
	assert.Equal(t, "Tool execution failed", entries[1]["msg"])
	assert.Equal(t, "rate limited", entries[1]["error"])
}

func TestLogOracleCall(t *testing.T) {
	logger, buf := newTestLogger(LogLevelDebug)

	logger.LogOracleCall("gpt-4o-mini", 200*time.Millisecond, true, nil)
	logger.LogOracleCall("gpt-4o-mini", time.Second, false, errors.New("timeout"))

	entries := decodeEntries(t, buf)
	require.Len(t, entries, 2)

	assert.Equal(t, "Oracle call completed", entries[0]["msg"])
	assert.Equal(t, "gpt-4o-mini", entries[0]["model"])
	assert.Equal(t, true, entries[0]["success"])

	assert.Equal(t, "ERROR", entries[1]["level"])
	assert.Equal(t, "Oracle call failed", entries[1]["msg"])
	assert.Equal(t, "timeout", entries[1]["error"])
}

func TestLogStage(t *testing.T) {
	logger, buf := newTestLogger(LogLevelDebug)

	logger.LogStage("executor", 3, 50*time.Millisecond, true, nil)
	logger.LogStage("planner", 1, time.Millisecond, false, errors.New("malformed plan"))

	entries := decodeEntries(t, buf)
	require.Len(t, entries, 2)

	assert.Equal(t, "Stage completed", entries[0]["msg"])
	assert.Equal(t, "executor", entries[0]["stage"])
	assert.Equal(t, float64(3), entries[0]["visit_count"])

	assert.Equal(t, "ERROR", entries[1]["level"])
	assert.Equal(t, "Stage failed", entries[1]["msg"])
	assert.Equal(t, "malformed plan", entries[1]["error"])
}
