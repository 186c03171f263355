// Package log provides structured, category-tagged logging for devconsole.
// Entries go to an optional file, an in-memory ring buffer that the console
// output pane reads from, and a pub/sub broker for live listeners.
// Logging is off until Init is called.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/zjrosen/devconsole/internal/pubsub"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a case-insensitive level name to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Category groups related log messages.
type Category string

const (
	CatRegistry  Category = "registry"  // Registry inserts, duplicates, evictions
	CatScan      Category = "scan"      // Declaration scanning and instance resolution
	CatDispatch  Category = "dispatch"  // Command execution by name
	CatLifecycle Category = "lifecycle" // Singleton initialize/shutdown
	CatConfig    Category = "config"    // Configuration loading/saving
	CatUI        Category = "ui"        // Console UI updates
	CatHistory   Category = "history"   // Execution history storage
	CatCache     Category = "cache"     // Cache operations
	CatTrace     Category = "trace"     // Tracing provider
	CatDemo      Category = "demo"      // Demo scene commands
)

const defaultBufferSize = 500

// Logger writes formatted entries to its sinks.
type Logger struct {
	mu       sync.Mutex
	file     *os.File
	writer   io.Writer
	enabled  bool
	minLevel Level
	buffer   *ringBuffer
	broker   *pubsub.Broker[string]
}

var (
	defaultMu     sync.RWMutex
	defaultLogger *Logger
)

// Init installs the global logger. An empty path keeps entries in memory
// only. bufferSize <= 0 uses the default ring buffer size. Calling Init again
// replaces the previous logger after closing it.
// Returns a cleanup function that closes the log file and broker.
func Init(path string, bufferSize int) (func(), error) {
	l, err := newLogger(path, bufferSize)
	if err != nil {
		return nil, err
	}

	defaultMu.Lock()
	prev := defaultLogger
	defaultLogger = l
	defaultMu.Unlock()

	if prev != nil {
		prev.close()
	}

	return func() {
		defaultMu.Lock()
		if defaultLogger == l {
			defaultLogger = nil
		}
		defaultMu.Unlock()
		l.close()
	}, nil
}

func newLogger(path string, bufferSize int) (*Logger, error) {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	l := &Logger{
		enabled:  true,
		minLevel: LevelDebug,
		buffer:   newRingBuffer(bufferSize),
		broker:   pubsub.NewBroker[string](),
	}
	if path != "" {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644) //nolint:gosec // G304: path is user-controlled debug log path
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		l.file = f
		l.writer = f
	}
	return l, nil
}

func (l *Logger) close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		_ = l.file.Close()
		l.file = nil
		l.writer = nil
	}
	l.broker.Close()
}

func current() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetEnabled toggles logging on/off.
func SetEnabled(enabled bool) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.enabled = enabled
		l.mu.Unlock()
	}
}

// SetMinLevel sets the minimum log level.
func SetMinLevel(level Level) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.minLevel = level
		l.mu.Unlock()
	}
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) {
	write(LevelDebug, cat, msg, fields...)
}

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) {
	write(LevelInfo, cat, msg, fields...)
}

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) {
	write(LevelWarn, cat, msg, fields...)
}

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) {
	write(LevelError, cat, msg, fields...)
}

// ErrorErr logs an error with the error value.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	write(LevelError, cat, msg, fields...)
}

func write(level Level, cat Category, msg string, fields ...any) {
	l := current()
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled || level < l.minLevel {
		return
	}

	entry := format(time.Now(), level, cat, msg, fields...)

	if l.writer != nil {
		_, _ = io.WriteString(l.writer, entry+"\n")
	}
	l.buffer.add(entry)
	l.broker.Publish(pubsub.LoggedEvent, entry)
}

// format renders one entry:
// 2025-12-06T10:45:00 [WARN] [registry] message key=value key2=value2
func format(ts time.Time, level Level, cat Category, msg string, fields ...any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] [%s] %s", ts.Format("2006-01-02T15:04:05"), level, cat, msg)
	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(&b, " %v=%v", fields[i], fields[i+1])
	}
	if len(fields)%2 != 0 {
		fmt.Fprintf(&b, " %v=<missing>", fields[len(fields)-1])
	}
	return b.String()
}

// GetRecentLogs returns up to n of the most recent entries, oldest first.
func GetRecentLogs(n int) []string {
	l := current()
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buffer.last(n)
}

// ClearBuffer drops all buffered entries.
func ClearBuffer() {
	if l := current(); l != nil {
		l.mu.Lock()
		l.buffer.clear()
		l.mu.Unlock()
	}
}

// LogEvent is a pubsub event containing a log entry.
type LogEvent = pubsub.Event[string]

// LogListener wraps a continuous listener for log events.
type LogListener = pubsub.Listener[string]

// NewListener creates a listener for new log entries, or nil when logging
// has not been initialized. It is cleaned up when ctx is cancelled.
func NewListener(ctx context.Context) *LogListener {
	l := current()
	if l == nil {
		return nil
	}
	return pubsub.NewListener[string](ctx, l.broker)
}
