/*
Copyright © 2026 Jayson Grace <jayson.e.grace@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/

// Package logging provides the console logger used by ovaimport.
// Loggers travel through context.Context; use the *Context helpers
// (InfoContext, WarnContext, ...) so commands and the importer share one logger.
package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// LogLevel represents the severity level of a log message
type LogLevel int

// OutputType represents the output format for logs
type OutputType int

// Output types for different log formats
const (
	PlainOutput OutputType = iota
	ColorOutput
	JSONOutput
)

// Log levels ordered from least to most severe.
const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "INFO"
	}
}

// CustomLogger writes leveled, human-readable messages to ConsoleWriter and
// command results to ResultWriter.
type CustomLogger struct {
	mu            sync.Mutex
	LogLevel      slog.Level
	OutputType    OutputType
	Quiet         bool
	Verbose       bool
	ConsoleWriter io.Writer
	ResultWriter  io.Writer
}

// jsonRecord is the line format used by JSONOutput.
type jsonRecord struct {
	Time    string `json:"time"`
	Level   string `json:"level"`
	Message string `json:"msg"`
}

// NewCustomLogger creates a logger writing to stderr with plain output.
func NewCustomLogger(level slog.Level) *CustomLogger {
	return &CustomLogger{
		LogLevel:      level,
		OutputType:    PlainOutput,
		ConsoleWriter: os.Stderr,
		ResultWriter:  os.Stdout,
	}
}

// NewCustomLoggerWithOptions creates a logger from CLI/config values.
// The "auto" (or empty) format selects color when stderr is a terminal.
func NewCustomLoggerWithOptions(logLevelStr, outputFormat string, quiet, verbose bool) *CustomLogger {
	logLevel := DetermineLogLevel(logLevelStr)
	if verbose && logLevel > slog.LevelDebug {
		logLevel = slog.LevelDebug
	}

	return &CustomLogger{
		LogLevel:      logLevel,
		OutputType:    DetermineOutputType(outputFormat, os.Stderr),
		Quiet:         quiet,
		Verbose:       verbose,
		ConsoleWriter: os.Stderr,
		ResultWriter:  os.Stdout,
	}
}

// DetermineOutputType maps a format name to an OutputType.
func DetermineOutputType(format string, console *os.File) OutputType {
	switch format {
	case "json":
		return JSONOutput
	case "color":
		return ColorOutput
	case "text", "plain":
		return PlainOutput
	default:
		if console != nil && isatty.IsTerminal(console.Fd()) {
			return ColorOutput
		}
		return PlainOutput
	}
}

// DetermineLogLevel converts a string to slog.Level
func DetermineLogLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case DebugLevel:
		return slog.LevelDebug
	case WarnLevel:
		return slog.LevelWarn
	case ErrorLevel:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// enabledLocked must be called with l.mu held.
// Quiet shows errors only; verbose shows everything; otherwise LogLevel decides.
func (l *CustomLogger) enabledLocked(level LogLevel) bool {
	if l.Quiet {
		return level == ErrorLevel
	}
	if l.Verbose {
		return true
	}
	return level.slogLevel() >= l.LogLevel
}

func (l *CustomLogger) format(level LogLevel, msg string) string {
	switch l.OutputType {
	case JSONOutput:
		line, err := json.Marshal(jsonRecord{
			Time:    time.Now().UTC().Format(time.RFC3339),
			Level:   level.String(),
			Message: msg,
		})
		if err != nil {
			return msg
		}
		return string(line)
	case ColorOutput:
		switch level {
		case DebugLevel:
			msg = color.HiBlackString("[DEBUG] %s", msg)
		case InfoLevel:
			msg = color.HiGreenString("[INFO] %s", msg)
		case WarnLevel:
			msg = color.HiYellowString("[WARN] %s", msg)
		case ErrorLevel:
			msg = color.HiRedString("[ERROR] %s", msg)
		}
	default:
		msg = fmt.Sprintf("[%s] %s", level, msg)
	}
	return fmt.Sprintf("[%s] %s", time.Now().Format("2006-01-02 15:04:05"), msg)
}

func (l *CustomLogger) log(level LogLevel, message string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabledLocked(level) || l.ConsoleWriter == nil {
		return
	}

	line := l.format(level, fmt.Sprintf(message, args...))
	if _, err := fmt.Fprintln(l.ConsoleWriter, line); err != nil {
		fmt.Fprintln(os.Stderr, line)
	}
}

// SetQuiet enables or disables quiet mode.
func (l *CustomLogger) SetQuiet(quiet bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Quiet = quiet
}

// SetVerbose enables or disables verbose mode.
func (l *CustomLogger) SetVerbose(verbose bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Verbose = verbose
}

// IsQuiet returns whether the logger is in quiet mode.
func (l *CustomLogger) IsQuiet() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Quiet
}

// Debug logs a debug message.
func (l *CustomLogger) Debug(format string, args ...interface{}) {
	l.log(DebugLevel, format, args...)
}

// Info logs an informational message.
func (l *CustomLogger) Info(format string, args ...interface{}) {
	l.log(InfoLevel, format, args...)
}

// Warn logs a warning message.
func (l *CustomLogger) Warn(format string, args ...interface{}) {
	l.log(WarnLevel, format, args...)
}

// Error logs an error message. It accepts either an error, a format string,
// or any other value as the first argument.
func (l *CustomLogger) Error(firstArg interface{}, args ...interface{}) {
	switch v := firstArg.(type) {
	case error:
		l.log(ErrorLevel, "%s", v.Error())
	case string:
		l.log(ErrorLevel, v, args...)
	default:
		l.log(ErrorLevel, "%v", v)
	}
}

// Output writes a command result to ResultWriter. JSON output encodes data
// as indented JSON; every other format prints it with fmt.
// Results ignore quiet mode.
func (l *CustomLogger) Output(data interface{}) {
	l.mu.Lock()
	w := l.ResultWriter
	outputType := l.OutputType
	l.mu.Unlock()

	if w == nil {
		return
	}

	if outputType == JSONOutput {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(data); err != nil {
			l.Error("Failed to encode JSON output: %v", err)
		}
		return
	}

	if _, err := fmt.Fprintln(w, data); err != nil {
		l.Error("Failed to write output: %v", err)
	}
}

type loggerKeyType struct{}

var loggerKey = loggerKeyType{}

// WithLogger returns a new context with the provided logger.
func WithLogger(ctx context.Context, l *CustomLogger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext retrieves the logger from the context, or a default
// info-level logger when none is set.
func FromContext(ctx context.Context) *CustomLogger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*CustomLogger); ok && l != nil {
			return l
		}
	}
	return NewCustomLogger(slog.LevelInfo)
}

// DebugContext logs a debug message using the logger from context.
func DebugContext(ctx context.Context, message string, args ...interface{}) {
	FromContext(ctx).Debug(message, args...)
}

// InfoContext logs an informational message using the logger from context.
func InfoContext(ctx context.Context, message string, args ...interface{}) {
	FromContext(ctx).Info(message, args...)
}

// WarnContext logs a warning message using the logger from context.
func WarnContext(ctx context.Context, message string, args ...interface{}) {
	FromContext(ctx).Warn(message, args...)
}

// ErrorContext logs an error message using the logger from context.
func ErrorContext(ctx context.Context, firstArg interface{}, args ...interface{}) {
	FromContext(ctx).Error(firstArg, args...)
}

// OutputContext writes a command result using the logger from context.
func OutputContext(ctx context.Context, data interface{}) {
	FromContext(ctx).Output(data)
}
