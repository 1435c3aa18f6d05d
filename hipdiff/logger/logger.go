// Package logger is the leveled printf-style logger the loader and CLI
// share. Everything goes to one global logger so library code can emit
// load traces without threading a logger through every call.
package logger

import (
	"fmt"
	"io"
	"os"
	"time"
)

// LogLevel represents the severity of a log message.
type LogLevel int

const (
	// LogLevelSilent disables all logging.
	LogLevelSilent LogLevel = iota
	// LogLevelError shows only errors.
	LogLevelError
	// LogLevelWarn shows warnings and errors. This is the default, so
	// format warnings surface without any flags.
	LogLevelWarn
	// LogLevelInfo shows info, warnings, and errors.
	LogLevelInfo
	// LogLevelDebug shows everything, including per-chunk load traces.
	LogLevelDebug
)

var levelNames = map[LogLevel]string{
	LogLevelSilent: "SILENT",
	LogLevelError:  "ERROR",
	LogLevelWarn:   "WARN",
	LogLevelInfo:   "INFO",
	LogLevelDebug:  "DEBUG",
}

type logger struct {
	level  LogLevel
	output io.Writer
}

var defaultLogger = &logger{
	level:  LogLevelWarn,
	output: os.Stderr,
}

// SetLogLevel sets the global log level.
func SetLogLevel(level LogLevel) {
	defaultLogger.level = level
}

// SetOutput redirects log output, primarily so tests can capture it.
func SetOutput(w io.Writer) {
	defaultLogger.output = w
}

func (l *logger) log(level LogLevel, format string, args ...interface{}) {
	if level > l.level {
		return
	}

	timestamp := time.Now().Format("15:04:05.000")
	message := fmt.Sprintf(format, args...)
	fmt.Fprintf(l.output, "[%s] %s: %s\n", timestamp, levelNames[level], message)
}

// Debug logs a debug message.
func Debug(format string, args ...interface{}) {
	defaultLogger.log(LogLevelDebug, format, args...)
}

// Info logs an info message.
func Info(format string, args ...interface{}) {
	defaultLogger.log(LogLevelInfo, format, args...)
}

// Warn logs a warning message.
func Warn(format string, args ...interface{}) {
	defaultLogger.log(LogLevelWarn, format, args...)
}

// Error logs an error message.
func Error(format string, args ...interface{}) {
	defaultLogger.log(LogLevelError, format, args...)
}
