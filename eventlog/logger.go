// Package eventlog is the structured event sink every drip component logs to.
//
// Components accept a [Logger] and default to [NopLogger]. The CLI wires a
// [SlogAdapter]; the patcher wraps whatever it is given in a [Recorder] so
// that warnings end up in the run report as well as in the log.
package eventlog

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Logger is the interface drip components use for structured logging.
//
// Attributes are alternating key/value pairs, the same convention log/slog
// uses:
//
//	logger.Warn("sprite not found", "asset", "hudmenu.swf", "spriteId", "42")
type Logger interface {
	// Debug logs detailed diagnostic information, e.g. external tool output.
	Debug(msg string, attrs ...any)

	// Info logs progress of a run.
	Info(msg string, attrs ...any)

	// Warn logs a non-fatal condition, e.g. an unresolved selector.
	Warn(msg string, attrs ...any)

	// Error logs a condition that aborts an asset or the run.
	Error(msg string, attrs ...any)

	// With returns a Logger with attrs prepended to every event.
	With(attrs ...any) Logger
}

// NopLogger discards all output. It is the default for every component.
type NopLogger struct{}

// Debug implements Logger.
func (NopLogger) Debug(_ string, _ ...any) {}

// Info implements Logger.
func (NopLogger) Info(_ string, _ ...any) {}

// Warn implements Logger.
func (NopLogger) Warn(_ string, _ ...any) {}

// Error implements Logger.
func (NopLogger) Error(_ string, _ ...any) {}

// With implements Logger.
func (n NopLogger) With(_ ...any) Logger { return n }

var _ Logger = NopLogger{}

// SlogAdapter wraps a *slog.Logger to implement Logger.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter. A nil logger means slog.Default().
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger}
}

// Debug implements Logger.
func (s *SlogAdapter) Debug(msg string, attrs ...any) {
	s.logger.Debug(msg, attrs...)
}

// Info implements Logger.
func (s *SlogAdapter) Info(msg string, attrs ...any) {
	s.logger.Info(msg, attrs...)
}

// Warn implements Logger.
func (s *SlogAdapter) Warn(msg string, attrs ...any) {
	s.logger.Warn(msg, attrs...)
}

// Error implements Logger.
func (s *SlogAdapter) Error(msg string, attrs ...any) {
	s.logger.Error(msg, attrs...)
}

// With implements Logger.
func (s *SlogAdapter) With(attrs ...any) Logger {
	return &SlogAdapter{logger: s.logger.With(attrs...)}
}

var _ Logger = (*SlogAdapter)(nil)

// OrNop returns l, or NopLogger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return l
}

// ParseLevel converts a level name (debug, info, warn, error) to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("eventlog: unknown log level %q", s)
	}
	return level, nil
}

// NewSlogLogger builds a Logger writing to w. format is "text" or "json".
func NewSlogLogger(w io.Writer, level, format string) (Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler
	switch strings.ToLower(format) {
	case "", "text":
		h = slog.NewTextHandler(w, opts)
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("eventlog: unknown log format %q (want text or json)", format)
	}
	return NewSlogAdapter(slog.New(h)), nil
}
