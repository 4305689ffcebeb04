package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Console writes colorized entries to a terminal. Entries below the
// configured minimum level are dropped.
type Console struct {
	mu     sync.Mutex
	w      io.Writer
	min    Level
	colors map[Level]*color.Color
	now    func() time.Time
}

// ConsoleOption configures a Console logger.
type ConsoleOption func(*Console)

// WithWriter redirects console output. Defaults to os.Stdout.
func WithWriter(w io.Writer) ConsoleOption {
	return func(c *Console) {
		c.w = w
	}
}

// WithMinLevel sets the minimum severity to emit. Defaults to LevelInfo.
func WithMinLevel(min Level) ConsoleOption {
	return func(c *Console) {
		c.min = min
	}
}

// WithColor enables or disables ANSI colors. Defaults to enabled.
func WithColor(enabled bool) ConsoleOption {
	return func(c *Console) {
		for _, cl := range c.colors {
			if enabled {
				cl.EnableColor()
			} else {
				cl.DisableColor()
			}
		}
	}
}

// WithConsoleClock replaces the timestamp source.
func WithConsoleClock(now func() time.Time) ConsoleOption {
	return func(c *Console) {
		c.now = now
	}
}

// NewConsole creates a console logger.
func NewConsole(opts ...ConsoleOption) *Console {
	c := &Console{
		w:   os.Stdout,
		min: LevelInfo,
		colors: map[Level]*color.Color{
			LevelDebug:    color.New(color.FgCyan),
			LevelInfo:     color.New(color.FgGreen),
			LevelWarn:     color.New(color.FgYellow),
			LevelError:    color.New(color.FgRed),
			LevelCritical: color.New(color.FgMagenta, color.Bold),
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Console) log(level Level, msg string, opts []EntryOption) {
	if level < c.min {
		return
	}
	e := makeEntry(level, msg, c.now(), opts)

	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = c.colors[level].Fprintln(c.w, e.String())
}

func (c *Console) Debug(msg string, opts ...EntryOption)    { c.log(LevelDebug, msg, opts) }
func (c *Console) Info(msg string, opts ...EntryOption)     { c.log(LevelInfo, msg, opts) }
func (c *Console) Warn(msg string, opts ...EntryOption)     { c.log(LevelWarn, msg, opts) }
func (c *Console) Error(msg string, opts ...EntryOption)    { c.log(LevelError, msg, opts) }
func (c *Console) Critical(msg string, opts ...EntryOption) { c.log(LevelCritical, msg, opts) }
