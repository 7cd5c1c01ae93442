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

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		entries = append(entries, entry)
	}
	return entries
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", DebugLevel},
		{"DEBUG", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"warning", WarnLevel},
		{"WARNING", WarnLevel},
		{"Warn", WarnLevel},
		{" error ", ErrorLevel},
		{"error", ErrorLevel},
		{"fatal", InfoLevel},
		{"", InfoLevel},
		{"verbose", InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestJSONLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, DebugLevel)

	logger.Info("run finished",
		Component("speakeasy"),
		OperationID("op-1"),
		Nodes(100),
		Edges(450),
		Depth(1),
		Run(3),
		Seed(42),
		Bool("verbose", true),
		Latency(1500*time.Millisecond),
	)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "run finished", e["msg"])
	assert.Equal(t, "info", e["level"])
	assert.Equal(t, "speakeasy", e["component"])
	assert.Equal(t, "op-1", e["operation_id"])
	assert.EqualValues(t, 100, e["nodes"])
	assert.EqualValues(t, 450, e["edges"])
	assert.EqualValues(t, 1, e["depth"])
	assert.EqualValues(t, 3, e["run"])
	assert.EqualValues(t, 42, e["seed"])
	assert.Equal(t, true, e["verbose"])
	assert.Equal(t, "1.5s", e["latency"])
	assert.Contains(t, e, "time")
}

func TestErrorField(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, DebugLevel)

	logger.Error("failed", Error(errors.New("boom")))
	logger.Error("no error", Error(nil))

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "boom", entries[0]["error"])
	assert.NotContains(t, entries[1], "error")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, WarnLevel)

	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "warn", entries[0]["msg"])
	assert.Equal(t, "error", entries[1]["msg"])
}

func TestWithSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	parent := NewJSONLogger(&buf, InfoLevel)
	child := parent.With(Component("knn"))

	child.Debug("hidden")
	parent.SetLevel(DebugLevel)
	assert.Equal(t, DebugLevel, parent.Level())
	child.Debug("shown")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "shown", entries[0]["msg"])
	assert.Equal(t, "knn", entries[0]["component"])
}

func TestConsoleLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, InfoLevel, FormatConsole)

	logger.Info("level complete", Depth(0))

	out := buf.String()
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "level complete")
	assert.Contains(t, out, `"depth": 0`)
}

func TestTimer(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, DebugLevel)

	timer := StartTimer(logger, "clustering finished", Nodes(10))
	timer.Done(DebugLevel, Int("levels", 2))
	StartTimer(logger, "export", String("sink", "file")).Fail(errors.New("disk full"))

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)

	assert.Equal(t, "debug", entries[0]["level"])
	assert.Equal(t, "clustering finished", entries[0]["msg"])
	assert.EqualValues(t, 10, entries[0]["nodes"])
	assert.EqualValues(t, 2, entries[0]["levels"])
	assert.Contains(t, entries[0], "latency")

	assert.Equal(t, "error", entries[1]["level"])
	assert.Equal(t, "file", entries[1]["sink"])
	assert.Equal(t, "disk full", entries[1]["error"])
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()
	logger.Info("ignored", Nodes(1))
	assert.NotNil(t, logger.With(Component("x")))
}

func TestDefaultLogger(t *testing.T) {
	original := DefaultLogger()
	require.NotNil(t, original)
	t.Cleanup(func() { SetDefaultLogger(original) })

	var buf bytes.Buffer
	SetDefaultLogger(NewJSONLogger(&buf, InfoLevel))
	DefaultLogger().Info("from default")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "from default", entries[0]["msg"])
}
