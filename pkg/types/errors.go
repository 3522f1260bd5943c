package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure.
type ErrorKind int

const (
	// KindConfig covers usage mistakes and bad configuration values.
	KindConfig ErrorKind = iota + 1
	// KindPattern is a start or stop expression that does not compile.
	KindPattern
	// KindInput is an input path or command that cannot be opened.
	KindInput
	// KindRead is a failure reading the line source mid-stream.
	KindRead
	// KindWrite is a failure writing to the output sink.
	KindWrite
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindPattern:
		return "pattern"
	case KindInput:
		return "input"
	case KindRead:
		return "read"
	case KindWrite:
		return "write"
	default:
		return "unknown"
	}
}

// Error is the single error type surfaced by splice. Subject names what
// failed (a pattern name, a path, a command) and Err carries the cause.
type Error struct {
	Kind    ErrorKind
	Subject string
	Err     error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindPattern:
		return fmt.Sprintf("invalid %s pattern: %v", e.Subject, e.Err)
	case KindInput:
		return fmt.Sprintf("cannot open %s: %v", e.Subject, e.Err)
	case KindRead:
		return fmt.Sprintf("reading %s: %v", e.Subject, e.Err)
	case KindWrite:
		return fmt.Sprintf("writing output: %v", e.Err)
	default:
		if e.Subject != "" {
			return fmt.Sprintf("%s: %v", e.Subject, e.Err)
		}
		return e.Err.Error()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Startup reports whether the error happened before any line was read.
func (e *Error) Startup() bool {
	return e.Kind == KindConfig || e.Kind == KindPattern || e.Kind == KindInput
}

// ConfigError builds a KindConfig error from a format string.
func ConfigError(format string, a ...any) *Error {
	return &Error{Kind: KindConfig, Err: fmt.Errorf(format, a...)}
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
