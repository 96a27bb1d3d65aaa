// Package errors provides typed error handling for the sandbox supervisor.
//
// This package defines domain-specific error types that enable better error
// classification, debugging, and user feedback. All errors support the standard
// errors.Is() and errors.As() functions for error inspection.
package errors

import (
	"errors"
	"fmt"
)

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	// ErrConfig indicates an invalid RuntimeConfig.
	ErrConfig ErrorKind = iota
	// ErrPrivilege indicates a uid/gid drop was requested without root, or
	// setgid/setuid failed in the child.
	ErrPrivilege
	// ErrRlimit indicates an rlimit could not be applied.
	ErrRlimit
	// ErrRedirect indicates a stream redirection error.
	ErrRedirect
	// ErrSeccomp indicates a seccomp filter build or install error.
	ErrSeccomp
	// ErrFork indicates the child process could not be created.
	ErrFork
	// ErrMonitor indicates a monitor thread failed to start or read /proc.
	ErrMonitor
	// ErrWait indicates a wait4 error on the child process.
	ErrWait
	// ErrExec indicates an execve error inside the child.
	ErrExec
	// ErrInternal indicates an internal error not attributable to config
	// or the running program.
	ErrInternal
)

// String returns a human-readable name for the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrConfig:
		return "invalid config"
	case ErrPrivilege:
		return "privilege error"
	case ErrRlimit:
		return "rlimit error"
	case ErrRedirect:
		return "redirect error"
	case ErrSeccomp:
		return "seccomp error"
	case ErrFork:
		return "fork error"
	case ErrMonitor:
		return "monitor error"
	case ErrWait:
		return "wait error"
	case ErrExec:
		return "exec error"
	case ErrInternal:
		return "internal error"
	default:
		return "unknown error"
	}
}

// SandboxError represents an error that occurred while running a sandboxed
// program.
type SandboxError struct {
	// Op is the operation that failed (e.g., "validate", "fork", "wait4").
	Op string
	// Err is the underlying error.
	Err error
	// Kind is the error classification.
	Kind ErrorKind
	// Detail provides additional context about the error.
	Detail string
}

// Error returns the error message.
func (e *SandboxError) Error() string {
	if e == nil {
		return "<nil>"
	}

	var msg string
	if e.Op != "" {
		msg += fmt.Sprintf("%s: ", e.Op)
	}
	if e.Detail != "" {
		msg += e.Detail
	} else {
		msg += e.Kind.String()
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *SandboxError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether the error matches the target.
// It matches if the target is a *SandboxError with the same Kind.
func (e *SandboxError) Is(target error) bool {
	if e == nil {
		return target == nil
	}
	if t, ok := target.(*SandboxError); ok {
		return e.Kind == t.Kind
	}
	return false
}

// New creates a new SandboxError with the given kind.
func New(kind ErrorKind, op string, detail string) *SandboxError {
	return &SandboxError{
		Op:     op,
		Kind:   kind,
		Detail: detail,
	}
}

// Wrap wraps an error with sandbox context.
func Wrap(err error, kind ErrorKind, op string) *SandboxError {
	return &SandboxError{
		Op:   op,
		Err:  err,
		Kind: kind,
	}
}

// WrapWithDetail wraps an error with additional detail.
func WrapWithDetail(err error, kind ErrorKind, op string, detail string) *SandboxError {
	return &SandboxError{
		Op:     op,
		Err:    err,
		Kind:   kind,
		Detail: detail,
	}
}

// IsKind checks if an error is of a specific kind.
func IsKind(err error, kind ErrorKind) bool {
	var serr *SandboxError
	if errors.As(err, &serr) {
		return serr.Kind == kind
	}
	return false
}

// GetKind returns the error kind if the error is a SandboxError.
func GetKind(err error) (ErrorKind, bool) {
	var serr *SandboxError
	if errors.As(err, &serr) {
		return serr.Kind, true
	}
	return 0, false
}

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
)
