// Package vigilerr defines the error taxonomy surfaced across the registry:
// every handler maps one of these kinds to an HTTP status, and no manager
// returns a bare error across its own boundary.
package vigilerr

import (
	"errors"
	"fmt"
)

// Kind identifies the class of failure, independent of the underlying cause.
type Kind int

const (
	Internal Kind = iota
	InvalidArgument
	NotFound
	Conflict
	Unauthenticated
	Forbidden
	PayloadTooLarge
	DatabaseOperationFailed
	CacheOperationFailed
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid_argument"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	case PayloadTooLarge:
		return "payload_too_large"
	case DatabaseOperationFailed:
		return "database_operation_failed"
	case CacheOperationFailed:
		return "cache_operation_failed"
	default:
		return "internal"
	}
}

// Status returns the HTTP status code the wire protocol requires for k.
func (k Kind) Status() int {
	switch k {
	case InvalidArgument:
		return 400
	case Unauthenticated:
		return 401
	case Forbidden:
		return 403
	case NotFound:
		return 404
	case Conflict:
		return 409
	case PayloadTooLarge:
		return 413
	default:
		return 500
	}
}

// Error is a taxonomy-tagged error. Message is always safe to return to the
// caller; Cause, when present, is logged but never serialized.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func Invalid(format string, args ...any) *Error {
	return New(InvalidArgument, fmt.Sprintf(format, args...))
}

func NotFoundf(format string, args ...any) *Error {
	return New(NotFound, fmt.Sprintf(format, args...))
}

func Conflictf(format string, args ...any) *Error {
	return New(Conflict, fmt.Sprintf(format, args...))
}

func Forbiddenf(format string, args ...any) *Error {
	return New(Forbidden, fmt.Sprintf(format, args...))
}

// Database wraps a store failure. The returned error's Message is the kind
// name, never the underlying driver text, per the wire contract.
func Database(cause error) *Error {
	return &Error{Kind: DatabaseOperationFailed, Message: "database operation failed", Cause: cause}
}

// Cache wraps a cache transport failure.
func Cache(cause error) *Error {
	return &Error{Kind: CacheOperationFailed, Message: "cache operation failed", Cause: cause}
}

// KindOf extracts the Kind from err, defaulting to Internal when err is not
// a tagged *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// MessageOf returns the caller-safe message for err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}
