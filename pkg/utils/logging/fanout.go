package logging

import (
	"fmt"
	"os"
	"sync"
)

// Fanout forwards every entry to all member loggers. A member that panics
// while handling an entry is removed so one broken sink cannot take down the
// rest of the pipeline.
type Fanout struct {
	mu      sync.Mutex
	members []Logger
}

// NewFanout creates a fan-out logger over the given members.
func NewFanout(members ...Logger) *Fanout {
	return &Fanout{members: members}
}

// Add appends a member logger.
func (f *Fanout) Add(l Logger) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.members = append(f.members, l)
}

// Len returns the current number of members.
func (f *Fanout) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.members)
}

func (f *Fanout) dispatch(send func(Logger)) {
	f.mu.Lock()
	defer f.mu.Unlock()

	kept := f.members[:0]
	for _, l := range f.members {
		if forward(l, send) {
			kept = append(kept, l)
		}
	}
	f.members = kept
}

// forward delivers one entry to one member, reporting whether the member
// survived.
func forward(l Logger, send func(Logger)) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			fmt.Fprintf(os.Stderr, "removed failing logger %T: %v\n", l, r)
		}
	}()
	send(l)
	return true
}

func (f *Fanout) Debug(msg string, opts ...EntryOption) {
	f.dispatch(func(l Logger) { l.Debug(msg, opts...) })
}

func (f *Fanout) Info(msg string, opts ...EntryOption) {
	f.dispatch(func(l Logger) { l.Info(msg, opts...) })
}

func (f *Fanout) Warn(msg string, opts ...EntryOption) {
	f.dispatch(func(l Logger) { l.Warn(msg, opts...) })
}

func (f *Fanout) Error(msg string, opts ...EntryOption) {
	f.dispatch(func(l Logger) { l.Error(msg, opts...) })
}

func (f *Fanout) Critical(msg string, opts ...EntryOption) {
	f.dispatch(func(l Logger) { l.Critical(msg, opts...) })
}
