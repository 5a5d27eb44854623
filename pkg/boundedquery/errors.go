package boundedquery

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a query run (or one of its attempts) failed.
type ErrorKind int

const (
	KindAttemptTimeout ErrorKind = iota + 1
	KindAttemptError
	KindTerminalFailure
	KindCancelled
)

func (k ErrorKind) String() string {
	switch k {
	case KindAttemptTimeout:
		return "attempt_timeout"
	case KindAttemptError:
		return "attempt_error"
	case KindTerminalFailure:
		return "terminal_failure"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

var (
	// ErrAttemptTimeout is returned for an attempt that lost the race against its timer.
	ErrAttemptTimeout = errors.New("query attempt timed out")
	// ErrTerminalFailure marks a query whose attempts were all exhausted.
	ErrTerminalFailure = errors.New("query failed after all retries")
	// ErrCancelled marks a query abandoned because the caller's context ended.
	ErrCancelled = errors.New("query cancelled")
)

// QueryError is the failure side of an Outcome.
type QueryError struct {
	Query    string
	Kind     ErrorKind
	Attempts int
	// LastKind is the kind of the final failed attempt (timeout or error).
	LastKind ErrorKind
	Err      error
}

func (e *QueryError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("query %q: %s after %d attempt(s)", e.Query, e.Kind, e.Attempts)
	}
	return fmt.Sprintf("query %q: %s after %d attempt(s): %v", e.Query, e.Kind, e.Attempts, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the kind sentinels as well as the wrapped cause.
func (e *QueryError) Is(target error) bool {
	switch target {
	case ErrTerminalFailure:
		return e.Kind == KindTerminalFailure
	case ErrCancelled:
		return e.Kind == KindCancelled
	}
	return false
}

// attemptError is the result of one failed attempt.
type attemptError struct {
	kind ErrorKind
	err  error
}

func (e *attemptError) Error() string { return e.err.Error() }
func (e *attemptError) Unwrap() error { return e.err }

type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("query panicked: %v", e.value)
}
