package eventlog

import (
	"fmt"
	"sync"
)

// Level identifies the severity of a recorded event.
type Level int

const (
	// LevelWarn marks a non-fatal event.
	LevelWarn Level = iota
	// LevelError marks an event that aborted an asset or the run.
	LevelError
)

// String returns "warn" or "error".
func (l Level) String() string {
	if l == LevelError {
		return "error"
	}
	return "warn"
}

// Event is one recorded warn or error log call.
type Event struct {
	Level   Level
	Message string
	// Attrs holds the With attrs followed by the call attrs.
	Attrs []any
}

// String formats the event as "message key=value ...".
func (e Event) String() string {
	s := e.Message
	for i := 0; i+1 < len(e.Attrs); i += 2 {
		s += fmt.Sprintf(" %v=%v", e.Attrs[i], e.Attrs[i+1])
	}
	return s
}

type recorderState struct {
	mu     sync.Mutex
	events []Event
}

// Recorder forwards every call to another Logger and keeps warn and error
// events for later inspection. Loggers derived with With share the same
// event list. Recorder is safe for concurrent use.
type Recorder struct {
	next  Logger
	attrs []any
	state *recorderState
}

// NewRecorder returns a Recorder forwarding to next (NopLogger when nil).
func NewRecorder(next Logger) *Recorder {
	return &Recorder{next: OrNop(next), state: &recorderState{}}
}

// Debug implements Logger.
func (r *Recorder) Debug(msg string, attrs ...any) { r.next.Debug(msg, attrs...) }

// Info implements Logger.
func (r *Recorder) Info(msg string, attrs ...any) { r.next.Info(msg, attrs...) }

// Warn implements Logger.
func (r *Recorder) Warn(msg string, attrs ...any) {
	r.record(LevelWarn, msg, attrs)
	r.next.Warn(msg, attrs...)
}

// Error implements Logger.
func (r *Recorder) Error(msg string, attrs ...any) {
	r.record(LevelError, msg, attrs)
	r.next.Error(msg, attrs...)
}

// With implements Logger.
func (r *Recorder) With(attrs ...any) Logger {
	merged := make([]any, 0, len(r.attrs)+len(attrs))
	merged = append(merged, r.attrs...)
	merged = append(merged, attrs...)
	return &Recorder{next: r.next.With(attrs...), attrs: merged, state: r.state}
}

func (r *Recorder) record(level Level, msg string, attrs []any) {
	all := make([]any, 0, len(r.attrs)+len(attrs))
	all = append(all, r.attrs...)
	all = append(all, attrs...)
	r.state.mu.Lock()
	r.state.events = append(r.state.events, Event{Level: level, Message: msg, Attrs: all})
	r.state.mu.Unlock()
}

// Events returns a copy of the recorded events in call order.
func (r *Recorder) Events() []Event {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	out := make([]Event, len(r.state.events))
	copy(out, r.state.events)
	return out
}

// Count returns the number of recorded events at level.
func (r *Recorder) Count(level Level) int {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	n := 0
	for _, e := range r.state.events {
		if e.Level == level {
			n++
		}
	}
	return n
}

// Reset discards all recorded events.
func (r *Recorder) Reset() {
	r.state.mu.Lock()
	r.state.events = nil
	r.state.mu.Unlock()
}

var _ Logger = (*Recorder)(nil)
