package log

import (
	"bytes"
	"testing"

	"github.com/kataras/golog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGologLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LogLevelWarn)

	logger.Debug("debug %d", 1)
	logger.Info("info %d", 2)
	logger.Warn("warn %d", 3)
	logger.Error("error %d", 4)

	out := buf.String()
	assert.NotContains(t, out, "debug 1")
	assert.NotContains(t, out, "info 2")
	assert.Contains(t, out, "warn 3")
	assert.Contains(t, out, "error 4")
	assert.Contains(t, out, "[flowgraph] ")
}

func TestGologLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LogLevelInfo)

	logger.Debug("hidden %s", "detail")
	logger.SetLevel(LogLevelDebug)
	assert.Equal(t, LogLevelDebug, logger.GetLevel())
	logger.Debug("shown %s", "detail")

	logger.SetLevel(LogLevelNone)
	logger.Error("muted")

	out := buf.String()
	assert.NotContains(t, out, "hidden detail")
	assert.Contains(t, out, "shown detail")
	assert.NotContains(t, out, "muted")
}

func TestWrap_OverridesGologLevel(t *testing.T) {
	var buf bytes.Buffer
	glogger := golog.New()
	glogger.SetOutput(&buf)
	glogger.SetLevel("error")

	logger := Wrap(glogger, LogLevelInfo)
	logger.Info("run %s finished in %d steps", "run-1", 3)

	assert.Equal(t, LogLevelInfo, logger.GetLevel())
	assert.Contains(t, buf.String(), "run run-1 finished in 3 steps")
}

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":   LogLevelDebug,
		"INFO":    LogLevelInfo,
		"":        LogLevelInfo,
		"warning": LogLevelWarn,
		"error":   LogLevelError,
		"off":     LogLevelNone,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LogLevelDebug.String())
	assert.Equal(t, "NONE", LogLevelNone.String())
	assert.Equal(t, "UNKNOWN(42)", LogLevel(42).String())
	assert.Equal(t, "warn", LogLevelWarn.gologName())
	assert.Equal(t, "disable", LogLevelNone.gologName())
}

func TestDefaultLogger(t *testing.T) {
	prev := GetDefaultLogger()
	defer SetDefaultLogger(prev)

	assert.IsType(t, &GologLogger{}, prev)

	var buf bytes.Buffer
	SetDefaultLogger(New(&buf, LogLevelDebug))
	GetDefaultLogger().Debug("a=%d", 1)
	assert.Contains(t, buf.String(), "a=1")

	SetDefaultLogger(nil)
	assert.Equal(t, NoOpLogger{}, GetDefaultLogger())
}
