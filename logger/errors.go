package logger

import "errors"

// Error kinds surfaced by the logging pipeline. Callers match them with
// errors.Is; the wrapped detail carries the underlying cause.
var (
	// ErrConfiguration reports missing or invalid credentials, an
	// unrecognized dialect, or a missing table name. Never retried.
	ErrConfiguration = errors.New("logger configuration error")

	// ErrDatabaseUnavailable reports a failed connectivity probe. The
	// insert is not attempted.
	ErrDatabaseUnavailable = errors.New("database unavailable")

	// ErrSchema reports a failed CREATE TABLE.
	ErrSchema = errors.New("schema error")

	// ErrInsert reports a failed row insert.
	ErrInsert = errors.New("insert error")
)
