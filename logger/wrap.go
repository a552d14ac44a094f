package logger

import (
	"fmt"
	"runtime/debug"
	"time"
)

// CallSite describes one invocation of a wrapped function: its name, the
// positional arguments and any named arguments. The call adapter supplies
// it explicitly; nothing is captured by reflection.
type CallSite struct {
	Name  string
	Args  []any
	Named map[string]any
}

// Target is a function under instrumentation. Its result and error pass
// through the wrapper unchanged in type and value.
type Target func(call CallSite) (any, error)

// WrapOptions controls one wrapped function.
type WrapOptions struct {
	// Level labels the entry, argument and success records. Defaults to
	// INFO; failure records are always ERROR.
	Level string

	// IncludeAI is reserved for future AI input/output logging. It is
	// stored and has no further behavior.
	IncludeAI bool
}

// Wrap returns a replacement for target that logs entry, arguments,
// duration and the result, and on failure logs the error's type, message
// and optionally a stack trace before returning the identical error. A
// panic in target is observed the same way and re-panicked unchanged.
func (l *Logger) Wrap(target Target, opts WrapOptions) Target {
	level := opts.Level
	if level == "" {
		level = LevelInfo
	}
	includeDB := l.cfg.IncludeDatabase

	return func(call CallSite) (result any, err error) {
		if logErr := l.write("Calling function: "+call.Name, level, includeDB); logErr != nil {
			return nil, logErr
		}
		if l.cfg.IncludeFunctionArgs {
			if len(call.Args) > 0 {
				if logErr := l.write(fmt.Sprintf("Positional arguments: %v", call.Args), level, includeDB); logErr != nil {
					return nil, logErr
				}
			}
			if len(call.Named) > 0 {
				if logErr := l.write(fmt.Sprintf("Keyword arguments: %v", call.Named), level, includeDB); logErr != nil {
					return nil, logErr
				}
			}
		}

		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				l.observeFailure(call.Name, fmt.Sprintf("%T", r), fmt.Sprint(r), time.Since(start), includeDB)
				panic(r)
			}
		}()

		result, err = target(call)
		elapsed := time.Since(start)

		if err != nil {
			l.observeFailure(call.Name, fmt.Sprintf("%T", err), err.Error(), elapsed, includeDB)
			return result, err
		}

		if l.cfg.IncludeDuration {
			if logErr := l.write(fmt.Sprintf("Execution time: %.4f seconds", elapsed.Seconds()), level, includeDB); logErr != nil {
				return nil, logErr
			}
		}
		if logErr := l.write(fmt.Sprintf("Return value: %v", result), level, includeDB); logErr != nil {
			return nil, logErr
		}
		return result, nil
	}
}

// observeFailure emits the ERROR records for a failed call. The writes
// are best-effort: the original failure must reach the caller unchanged,
// so a telemetry error here is discarded.
func (l *Logger) observeFailure(name, kind, message string, elapsed time.Duration, includeDB bool) {
	_ = l.write("Exception occurred in "+name, LevelError, includeDB)
	_ = l.write("Exception type: "+kind, LevelError, includeDB)
	_ = l.write("Exception message: "+message, LevelError, includeDB)
	if l.cfg.IncludeDuration {
		_ = l.write(fmt.Sprintf("Execution time before error: %.4f seconds", elapsed.Seconds()), LevelError, includeDB)
	}
	if l.cfg.IncludeTraceback {
		_ = l.write("Traceback:", LevelError, includeDB)
		_ = l.write(string(debug.Stack()), LevelError, includeDB)
	}
}
