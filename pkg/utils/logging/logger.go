// Package logging provides the narrow logging collaborator used across the
// retrieval pipeline: one five-severity interface with console, rotating-file
// and fan-out implementations. Rendering is entirely the sink's concern; the
// core only ever sees the Logger interface.
package logging

import (
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Level is a log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
)

// String returns the upper-case level name used in rendered entries.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARNING"
	case LevelError:
		return "ERROR"
	case LevelCritical:
		return "CRITICAL"
	default:
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
}

// ParseLevel converts a level name to a Level. Matching is case-insensitive
// and accepts both "warn" and "warning".
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "critical":
		return LevelCritical, nil
	default:
		return LevelInfo, goerr.New("unknown log level", goerr.V("level", s))
	}
}

// Logger is the collaborator interface the core depends on. Each entry point
// takes a message and optional per-entry adjustments.
type Logger interface {
	Debug(msg string, opts ...EntryOption)
	Info(msg string, opts ...EntryOption)
	Warn(msg string, opts ...EntryOption)
	Error(msg string, opts ...EntryOption)
	Critical(msg string, opts ...EntryOption)
}

// Entry is one rendered log record.
type Entry struct {
	Level         Level
	Message       string
	Time          time.Time
	WithTimestamp bool
}

// EntryOption adjusts a single log entry.
type EntryOption func(*Entry)

// WithoutTimestamp suppresses the timestamp for this entry.
func WithoutTimestamp() EntryOption {
	return func(e *Entry) {
		e.WithTimestamp = false
	}
}

// String renders the entry in the canonical "[LEVEL time] message" form.
func (e Entry) String() string {
	if e.WithTimestamp {
		return fmt.Sprintf("[%s %s] %s", e.Level, e.Time.Format("2006-01-02 15:04:05"), e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Level, e.Message)
}

func makeEntry(level Level, msg string, now time.Time, opts []EntryOption) Entry {
	e := Entry{
		Level:         level,
		Message:       msg,
		Time:          now,
		WithTimestamp: true,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// Discard is a Logger that drops every entry. Useful as a test collaborator.
var Discard Logger = discard{}

type discard struct{}

func (discard) Debug(string, ...EntryOption)    {}
func (discard) Info(string, ...EntryOption)     {}
func (discard) Warn(string, ...EntryOption)     {}
func (discard) Error(string, ...EntryOption)    {}
func (discard) Critical(string, ...EntryOption) {}
