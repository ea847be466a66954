package log

import (
	"io"

	"github.com/kataras/golog"
)

// GologLogger adapts a golog.Logger to Logger. Levels are filtered here
// as well as in golog so GetLevel reports what is actually written.
type GologLogger struct {
	logger *golog.Logger
	level  LogLevel
}

var _ Logger = (*GologLogger)(nil)

// New returns a golog-backed logger writing to out with a "[flowgraph] " prefix.
func New(out io.Writer, level LogLevel) *GologLogger {
	glogger := golog.New()
	glogger.SetOutput(out)
	glogger.SetPrefix("[flowgraph] ")
	return Wrap(glogger, level)
}

// Wrap adapts an existing golog instance, overriding its level.
func Wrap(logger *golog.Logger, level LogLevel) *GologLogger {
	l := &GologLogger{logger: logger}
	l.SetLevel(level)
	return l
}

func (l *GologLogger) Debug(format string, v ...any) {
	if l.level <= LogLevelDebug {
		l.logger.Debugf(format, v...)
	}
}

func (l *GologLogger) Info(format string, v ...any) {
	if l.level <= LogLevelInfo {
		l.logger.Infof(format, v...)
	}
}

func (l *GologLogger) Warn(format string, v ...any) {
	if l.level <= LogLevelWarn {
		l.logger.Warnf(format, v...)
	}
}

func (l *GologLogger) Error(format string, v ...any) {
	if l.level <= LogLevelError {
		l.logger.Errorf(format, v...)
	}
}

// SetLevel changes the threshold on both sides of the adapter.
func (l *GologLogger) SetLevel(level LogLevel) {
	l.level = level
	l.logger.SetLevel(level.gologName())
}

// GetLevel returns the current threshold.
func (l *GologLogger) GetLevel() LogLevel {
	return l.level
}
