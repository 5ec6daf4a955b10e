package logger

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"debug", "debug"},
		{"info", "info"},
		{"", "info"},
		{"warn", "warn"},
		{"error", "error"},
		{"unknown", "info"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input).String())
		})
	}
}

func TestNewVariousFormats(t *testing.T) {
	tmpFile := t.TempDir() + "/test-log.json"

	cases := []*LoggingConfig{
		{Level: "info", Format: "json", Output: "stdout"},
		{Level: "debug", Format: "text", Output: "stdout"},
		{Level: "warn", Format: "json", Output: tmpFile},
		{Level: "error", Format: "text", Output: "stderr"},
	}

	for _, cfg := range cases {
		l, err := New(cfg)
		require.NoError(t, err)
		require.NotNil(t, l)
		_ = l.Sync()
	}
}

func TestNewDefault(t *testing.T) {
	l := NewDefault()
	require.NotNil(t, l)
	l.Info("test message")
	_ = l.Sync()
}

func TestWithProcess(t *testing.T) {
	l, err := New(&LoggingConfig{Level: "info", Format: "json", Output: "stdout"})
	require.NoError(t, err)

	processLogger := l.WithProcess("extract")
	require.NotNil(t, processLogger)
	assert.NotSame(t, l, processLogger)
	processLogger.Info("test with process")
}

func TestWithBatch(t *testing.T) {
	l, err := New(&LoggingConfig{Level: "info", Format: "json", Output: "stdout"})
	require.NoError(t, err)

	batchLogger := l.WithBatch("20260731103000")
	require.NotNil(t, batchLogger)
	batchLogger.Info("test with batch")
}

func TestWithFields(t *testing.T) {
	l, err := New(&LoggingConfig{Level: "info", Format: "json", Output: "stdout"})
	require.NoError(t, err)

	fieldLogger := l.WithFields(map[string]interface{}{"custom_field": "value", "number": 123})
	require.NotNil(t, fieldLogger)
	fieldLogger.Info("test with fields")
}

func TestChaining(t *testing.T) {
	l, err := New(&LoggingConfig{Level: "info", Format: "json", Output: "stdout"})
	require.NoError(t, err)

	chained := l.WithBatch("20260731103000").WithProcess("extract")
	require.NotNil(t, chained)
	chained.Info("test chained context")
}

func TestBuildEncoder(t *testing.T) {
	assert.NotNil(t, buildEncoder("json"))
	assert.NotNil(t, buildEncoder("text"))
	assert.NotNil(t, buildEncoder("unknown"))
}

func TestBuildWriters(t *testing.T) {
	assert.NotNil(t, buildWriters("stdout"))
	assert.NotNil(t, buildWriters("stderr"))
	assert.NotNil(t, buildWriters(""))

	tmpFile := t.TempDir() + "/test-logger-output.log"
	assert.NotNil(t, buildWriters(tmpFile))
}

func TestLoggingOutputToFile(t *testing.T) {
	tmpFile := t.TempDir() + "/logger-test.json"

	l, err := New(&LoggingConfig{Level: "info", Format: "json", Output: tmpFile})
	require.NoError(t, err)

	l.Info("test info message")
	l.WithProcess("extract").Info("message with process context")
	_ = l.Sync()

	content, err := os.ReadFile(tmpFile)
	require.NoError(t, err)

	contentStr := string(content)
	assert.Contains(t, contentStr, "test info message")
	assert.Contains(t, contentStr, "extract")
}
