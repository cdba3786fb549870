package backend

import "fmt"

// ErrorKind classifies why an operation failed. The taxonomy is deliberately
// small: per-item failures are isolated and reported, never retried.
type ErrorKind string

const (
	// ErrUnknown covers failures no classifier recognised.
	ErrUnknown ErrorKind = "unknown"
	// ErrUnavailable means the backend tool or service is absent. Inventory
	// degrades by excluding that backend instead of aborting.
	ErrUnavailable ErrorKind = "backend-unavailable"
	// ErrNotFound means the identifier is not installed through this backend.
	ErrNotFound ErrorKind = "not-found"
	// ErrProtected means the target is in the protection registry.
	ErrProtected ErrorKind = "protected"
	// ErrElevationDenied means the user refused privilege escalation.
	ErrElevationDenied ErrorKind = "elevation-denied"
	// ErrDependencyConflict means the backend refused removal because other
	// installed packages depend on the target.
	ErrDependencyConflict ErrorKind = "dependency-conflict"
	// ErrBackendReported covers other failures the backend tool reported.
	ErrBackendReported ErrorKind = "backend-reported"
	// ErrFilesystem covers per-path filesystem failures (permission denied,
	// path vanished, cross-device).
	ErrFilesystem ErrorKind = "filesystem"
)

// Error is a structured failure cause attached to RemovalResult and clean
// outcomes. Detail is suitable for per-item user-visible messages; Stderr
// preserves the backend tool's verbatim diagnostic.
type Error struct {
	Kind   ErrorKind
	Detail string
	Stderr string
	cause  error
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
	return string(e.Kind)
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is lets errors.Is match on the classification alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Detail == ""
}

// NewError builds a classified error.
func NewError(kind ErrorKind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// WrapError builds a classified error preserving the underlying cause.
func WrapError(kind ErrorKind, detail string, cause error) *Error {
	return &Error{Kind: kind, Detail: detail, cause: cause}
}

// AsError coerces err into a *Error, classifying unrecognised errors as
// ErrUnknown so result sets always carry a structured cause.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	if be, ok := err.(*Error); ok {
		return be
	}
	return &Error{Kind: ErrUnknown, Detail: err.Error(), cause: err}
}
