// internal/pkg/apperrors/errors.go
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error. Every operation in the storefront
// returns one of these kinds instead of an opaque error; callers decide
// whether to surface, log, or resubmit. Nothing retries automatically.
type Kind string

const (
	// KindNotAuthenticated means an operation requiring an active identity
	// was invoked without one.
	KindNotAuthenticated Kind = "not_authenticated"

	// KindValidationFailed means caller-supplied input violates a stated
	// precondition.
	KindValidationFailed Kind = "validation_failed"

	// KindNotFound means the referenced record does not exist.
	KindNotFound Kind = "not_found"

	// KindForbidden means the identity lacks the role the operation requires.
	KindForbidden Kind = "forbidden"

	// KindRemoteRejected means the persistence layer declined the operation;
	// the store's message is carried verbatim for display.
	KindRemoteRejected Kind = "remote_rejected"

	// KindPartialWriteWindow means a multi-step write sequence failed after
	// an earlier step succeeded, leaving persisted state inconsistent with
	// the operation's intent. The error names what was left behind.
	KindPartialWriteWindow Kind = "partial_write_window"
)

// Error is a classified application error.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

// Unwrap exposes the wrapped cause for errors.Is / errors.As chains
func (e *Error) Unwrap() error {
	return e.Err
}

// NotAuthenticated creates a NotAuthenticated error
func NotAuthenticated(msg string) error {
	return &Error{Kind: KindNotAuthenticated, Msg: msg}
}

// ValidationFailed creates a ValidationFailed error
func ValidationFailed(msg string) error {
	return &Error{Kind: KindValidationFailed, Msg: msg}
}

// NotFound creates a NotFound error
func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

// Forbidden creates a Forbidden error
func Forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Msg: msg}
}

// RemoteRejected wraps a persistence-layer failure, preserving its message
func RemoteRejected(msg string, err error) error {
	return &Error{Kind: KindRemoteRejected, Msg: msg, Err: err}
}

// PartialWriteWindow wraps a failure that occurred after an earlier dependent
// write already succeeded
func PartialWriteWindow(msg string, err error) error {
	return &Error{Kind: KindPartialWriteWindow, Msg: msg, Err: err}
}

// IsKind reports whether err (or anything it wraps) carries the given kind
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// HTTPStatus maps a classified error to an HTTP status code. Unclassified
// errors map to 500.
func HTTPStatus(err error) int {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}

	switch appErr.Kind {
	case KindNotAuthenticated:
		return http.StatusUnauthorized
	case KindValidationFailed:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindRemoteRejected:
		return http.StatusUnprocessableEntity
	case KindPartialWriteWindow:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
