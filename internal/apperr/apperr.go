// Package apperr defines the error kinds every stage of the submission
// pipeline reports. Callers branch on Kind via KindOf instead of matching
// error strings.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for status mapping.
type Kind int

const (
	Internal Kind = iota
	Unauthenticated
	PermissionDenied
	RateLimited
	InvalidSubmission
	PayloadTooLarge
	MalformedRequest
	MethodNotAllowed
	InvalidArgument
	NotFound
	Upstream
)

var kindNames = map[Kind]string{
	Internal:          "INTERNAL_ERROR",
	Unauthenticated:   "UNAUTHENTICATED",
	PermissionDenied:  "PERMISSION_DENIED",
	RateLimited:       "RATE_LIMITED",
	InvalidSubmission: "INVALID_SUBMISSION",
	PayloadTooLarge:   "PAYLOAD_TOO_LARGE",
	MalformedRequest:  "MALFORMED_REQUEST",
	MethodNotAllowed:  "METHOD_NOT_ALLOWED",
	InvalidArgument:   "INVALID_ARGUMENT",
	NotFound:          "NOT_FOUND",
	Upstream:          "UPSTREAM_FAILURE",
}

// String returns the machine-readable code used in error responses.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return kindNames[Internal]
}

// Error is a classified failure. Message is safe to show to callers;
// Err carries the underlying cause for logs only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind, so errors.Is(err, apperr.New(k, "")) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// New returns a classified error with a caller-safe message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies err. A nil err yields nil.
func Wrap(err error, kind Kind, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf reports the kind of the first *Error in err's chain, or Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// MessageOf returns the caller-safe message of err, or a generic one for unclassified errors.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "internal server error"
}
