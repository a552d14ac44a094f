// Package logger wraps arbitrary functions to record invocation,
// arguments, duration, results and failures. Records always go to a
// per-logger log file and, when enabled, to a relational database table.
// The two sinks are independently best-effort: a database failure never
// removes the file line that was already written for the same instant.
package logger

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// timestampFormat is millisecond precision with English month names,
// e.g. "05 March 2025 14:03:02.123".
const timestampFormat = "02 January 2006 15:04:05.000"

// Log levels are free-form strings; these are the two the wrapper uses.
const (
	LevelInfo  = "INFO"
	LevelError = "ERROR"
)

// Logger fans log records out to the file sink and, when enabled, the
// database sink. Safe for concurrent use; the database handle is created
// at most once per Logger.
type Logger struct {
	cfg     Config
	console io.Writer
	limiter *rate.Limiter

	fileMu sync.Mutex

	dbMu    sync.Mutex
	db      *sql.DB
	dialect dialect
}

// New creates a Logger and its log directory. Database credentials are
// not validated here; they are checked on the first database write.
func New(cfg Config) (*Logger, error) {
	cfg.applyDefaults()

	if err := os.MkdirAll(cfg.LogDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	l := &Logger{
		cfg:     cfg,
		console: os.Stdout,
	}
	if cfg.MaxLogRate > 0 {
		l.limiter = rate.NewLimiter(rate.Limit(cfg.MaxLogRate), cfg.MaxLogRate)
	}
	return l, nil
}

// Config returns the configuration the Logger was built with.
func (l *Logger) Config() Config {
	return l.cfg
}

// Close releases the memoized database handle, if one was ever created.
func (l *Logger) Close() error {
	l.dbMu.Lock()
	defer l.dbMu.Unlock()

	if l.db != nil {
		err := l.db.Close()
		l.db = nil
		return err
	}
	return nil
}

// Logging appends one record to the log file. An empty level defaults to
// INFO. File I/O errors propagate; there is no fallback sink.
func (l *Logger) Logging(message, level string) error {
	return l.write(message, level, false)
}

// Record appends one record to the log file and inserts the same record
// into the configured database table. The file write happens first; a
// database failure propagates after the file line is already on disk.
func (l *Logger) Record(message, level string) error {
	return l.write(message, level, true)
}

func (l *Logger) write(message, level string, includeDatabase bool) error {
	if level == "" {
		level = LevelInfo
	}
	if l.limiter != nil && !l.limiter.Allow() {
		return nil
	}

	// One timestamp labels both sinks, even though the writes are not
	// atomic with each other.
	now := time.Now()
	ts := now.Format(timestampFormat)

	if err := l.writeFile(message, level, ts); err != nil {
		return err
	}
	if includeDatabase {
		return l.record(message, level, ts, now)
	}
	return nil
}

// writeFile appends "<timestamp> - <level> - <message>\n" to the log
// file, creating it if absent, never truncating.
func (l *Logger) writeFile(message, level, ts string) error {
	l.fileMu.Lock()
	defer l.fileMu.Unlock()

	f, err := os.OpenFile(l.logPath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	line := ts + " - " + level + " - " + message + "\n"
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("failed to write log file: %w", err)
	}

	if l.cfg.LogToConsole {
		fmt.Fprint(l.console, line)
	}
	return nil
}

func (l *Logger) logPath() string {
	return filepath.Join(l.cfg.LogDir, l.cfg.LogFileName+".log")
}
