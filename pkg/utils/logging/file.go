package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

const (
	// DefaultMaxFileSize is the rollover threshold for file loggers.
	DefaultMaxFileSize = 1 * 1024 * 1024
	// DefaultBackups is how many rotated files are retained besides the
	// active one.
	DefaultBackups = 3
)

// File appends entries to a timestamped log file and rolls over to a fresh
// file once the current one reaches the size threshold. Old files beyond the
// retention count are removed at rollover. Every severity is recorded; level
// filtering is the console's concern.
type File struct {
	mu      sync.Mutex
	dir     string
	stem    string
	ext     string
	maxSize int64
	backups int
	now     func() time.Time

	f      *os.File
	path   string
	size   int64
	broken bool
}

// FileOption configures a File logger.
type FileOption func(*File)

// WithMaxFileSize sets the rollover threshold in bytes.
func WithMaxFileSize(n int64) FileOption {
	return func(f *File) {
		if n > 0 {
			f.maxSize = n
		}
	}
}

// WithBackups sets how many rotated files to keep besides the active one.
func WithBackups(n int) FileOption {
	return func(f *File) {
		if n >= 0 {
			f.backups = n
		}
	}
}

// WithFileClock replaces the timestamp source.
func WithFileClock(now func() time.Time) FileOption {
	return func(f *File) {
		f.now = now
	}
}

// NewFile creates a file logger writing under the directory of path. The
// actual file names carry a rotation timestamp, e.g. "vsget.log" becomes
// "vsget.20260825103000.log".
func NewFile(path string, opts ...FileOption) (*File, error) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	f := &File{
		dir:     dir,
		stem:    stem,
		ext:     ext,
		maxSize: DefaultMaxFileSize,
		backups: DefaultBackups,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create log directory", goerr.V("dir", dir))
	}
	if err := f.open(); err != nil {
		return nil, err
	}
	return f, nil
}

// Path returns the currently active log file path.
func (f *File) Path() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.path
}

// Close closes the active log file.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.f == nil {
		return nil
	}
	err := f.f.Close()
	f.f = nil
	return err
}

func (f *File) open() error {
	name := fmt.Sprintf("%s.%s%s", f.stem, f.now().Format("20060102150405"), f.ext)
	path := filepath.Join(f.dir, name)

	fd, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return goerr.Wrap(err, "failed to open log file", goerr.V("path", path))
	}

	var size int64
	if st, err := fd.Stat(); err == nil {
		size = st.Size()
	}

	f.f = fd
	f.path = path
	f.size = size
	return nil
}

func (f *File) rotate() error {
	if f.f != nil {
		_ = f.f.Close()
		f.f = nil
	}
	if err := f.open(); err != nil {
		return err
	}
	f.prune()
	return nil
}

// prune removes rotated files beyond the retention count, oldest first. The
// timestamped names sort chronologically, so a name sort is enough.
func (f *File) prune() {
	pattern := filepath.Join(f.dir, f.stem+".*"+f.ext)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return
	}

	var old []string
	for _, m := range matches {
		if m != f.path {
			old = append(old, m)
		}
	}
	if len(old) <= f.backups {
		return
	}

	sort.Strings(old)
	for _, m := range old[:len(old)-f.backups] {
		_ = os.Remove(m)
	}
}

func (f *File) log(level Level, msg string, opts []EntryOption) {
	e := makeEntry(level, msg, f.now(), opts)
	line := e.String() + "\n"

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.f == nil || f.size >= f.maxSize {
		if err := f.rotate(); err != nil {
			f.reportOnce(err)
			return
		}
	}

	n, err := f.f.WriteString(line)
	if err != nil {
		f.reportOnce(err)
		return
	}
	f.size += int64(n)
	f.broken = false
}

// reportOnce surfaces the first failure of a broken sink to stderr, then
// stays quiet until a write succeeds again.
func (f *File) reportOnce(err error) {
	if f.broken {
		return
	}
	f.broken = true
	fmt.Fprintf(os.Stderr, "log file write failed: %v\n", err)
}

func (f *File) Debug(msg string, opts ...EntryOption)    { f.log(LevelDebug, msg, opts) }
func (f *File) Info(msg string, opts ...EntryOption)     { f.log(LevelInfo, msg, opts) }
func (f *File) Warn(msg string, opts ...EntryOption)     { f.log(LevelWarn, msg, opts) }
func (f *File) Error(msg string, opts ...EntryOption)    { f.log(LevelError, msg, opts) }
func (f *File) Critical(msg string, opts ...EntryOption) { f.log(LevelCritical, msg, opts) }
