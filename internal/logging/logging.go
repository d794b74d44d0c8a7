// Package logging provides the structured logger used by crl commands.
package logging

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// Logger wraps charm/log with conversion-specific helpers.
type Logger struct {
	*log.Logger
}

// New creates a logger writing to w at info level.
func New(w io.Writer) *Logger {
	return NewWithLevel(w, log.InfoLevel)
}

// NewWithLevel creates a logger with a specific level.
func NewWithLevel(w io.Writer, level log.Level) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Level:           level,
		Prefix:          "crl",
	})
	return &Logger{Logger: l}
}

// ForVerbosity picks a level matching the conversion verbosity:
// 0 logs errors only, 1 adds info, 2 adds debug.
func ForVerbosity(w io.Writer, verbose int) *Logger {
	switch {
	case verbose <= 0:
		return NewWithLevel(w, log.ErrorLevel)
	case verbose == 1:
		return NewWithLevel(w, log.InfoLevel)
	default:
		return NewWithLevel(w, log.DebugLevel)
	}
}

// Discard returns a logger that discards all output.
func Discard() *Logger {
	return New(io.Discard)
}

// ConfigLoaded logs the configuration in effect.
func (l *Logger) ConfigLoaded(path string, verbose int, lineBreaks string) {
	l.Debug("config loaded",
		"path", path,
		"verbose", verbose,
		"line_breaks", lineBreaks)
}

// ConversionStarted logs the start of a batch conversion.
func (l *Logger) ConversionStarted(files, jobs int) {
	l.Info("conversion started",
		"files", files,
		"jobs", jobs)
}

// FileConverted logs a successfully converted file.
func (l *Logger) FileConverted(source, dest string, bytes int, duration time.Duration) {
	l.Debug("file converted",
		"source", source,
		"dest", dest,
		"bytes", bytes,
		"duration", duration.Round(time.Microsecond))
}

// ConversionFailed logs a file that could not be converted.
func (l *Logger) ConversionFailed(source string, err error) {
	l.Error("conversion failed",
		"source", source,
		"error", err)
}

// ConversionCompleted logs the outcome of a batch conversion.
func (l *Logger) ConversionCompleted(converted, failed int, duration time.Duration) {
	l.Info("conversion completed",
		"converted", converted,
		"failed", failed,
		"duration", duration.Round(time.Millisecond))
}

// PreviewServing logs the preview server address.
func (l *Logger) PreviewServing(addr, source string) {
	l.Info("preview serving",
		"addr", addr,
		"source", source)
}

// PreviewClient logs a websocket client joining or leaving.
func (l *Logger) PreviewClient(event string, clients int) {
	l.Debug("preview client",
		"event", event,
		"clients", clients)
}

// PreviewReloaded logs a source change pushed to clients.
func (l *Logger) PreviewReloaded(source, digest string) {
	l.Info("preview reloaded",
		"source", source,
		"digest", digest)
}
