package gabanav

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmer mistakes. They are raised through panics
// wrapped in a ProgrammerError and never returned from ordinary calls.
var (
	// ErrInvalidLifecycleTransition indicates a lifecycle move that the state
	// machine forbids (leaving Destroyed, Initialized straight to Destroyed).
	ErrInvalidLifecycleTransition = errors.New("invalid lifecycle transition")

	// ErrScopeNotDeclared indicates a lookup of a scoped owner that was never
	// declared for the destination doing the lookup.
	ErrScopeNotDeclared = errors.New("scope not declared for destination")

	// ErrUnknownEntry indicates an entry id that the host does not track.
	ErrUnknownEntry = errors.New("entry not tracked by host")

	// ErrInvalidConfig indicates a configuration value that cannot be used,
	// such as an unknown queueing policy or an initial value that contradicts
	// the rest of the configuration.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ProgrammerError represents a misuse of the navigation library that cannot
// be recovered from at runtime. The library panics with a *ProgrammerError
// instead of returning it; tests assert the panic.
type ProgrammerError struct {
	Op  string // Operation that was misused (e.g., "lifecycle.set_state", "host.scoped_owner")
	Err error  // Underlying sentinel or detail
}

func (e *ProgrammerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gabanav: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("gabanav: %s", e.Op)
}

func (e *ProgrammerError) Unwrap() error {
	return e.Err
}

// NewProgrammerError creates a new programmer error.
func NewProgrammerError(op string, err error) *ProgrammerError {
	return &ProgrammerError{Op: op, Err: err}
}

// Fail panics with a ProgrammerError for op. The detail is formatted and
// wrapped around sentinel so errors.Is keeps working on the recovered value.
func Fail(op string, sentinel error, format string, args ...any) {
	panic(NewProgrammerError(op, fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...)))
}

// IsProgrammerError checks if an error (or a recovered panic value) is a
// programmer error.
func IsProgrammerError(v any) bool {
	err, ok := v.(error)
	if !ok {
		return false
	}
	var progErr *ProgrammerError
	return errors.As(err, &progErr)
}
