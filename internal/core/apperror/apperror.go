// Package apperror defines the typed error returned across the core boundary.
//
// Every failure the pricing, cart and lifecycle code can report is an *Error carrying a
// Code (the category a caller branches on) and an optional Reason (the machine-readable
// detail, such as "expired" or "invalid_transition").
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an Error.
type Code int

const (
	// CodeInvalidArgument marks malformed input: negative quantity, blank promo code, ...
	CodeInvalidArgument Code = iota
	// CodeRejected marks a well-formed request the domain declined, e.g. an expired promo.
	CodeRejected
	// CodeFailedPrecondition marks a request that is illegal in the current state.
	CodeFailedPrecondition
	// CodeNotFound marks a missing entity.
	CodeNotFound
)

// String returns the upper snake case name of the code.
func (c Code) String() string {
	switch c {
	case CodeInvalidArgument:
		return "INVALID_ARGUMENT"
	case CodeRejected:
		return "REJECTED"
	case CodeFailedPrecondition:
		return "FAILED_PRECONDITION"
	case CodeNotFound:
		return "NOT_FOUND"
	default:
		return "UNKNOWN"
	}
}

// Error is a domain error with a category and an optional reason.
type Error struct {
	Code    Code
	Reason  string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target is an *Error with the same Code and, when the target
// has one, the same Reason. This lets package-level sentinels match freshly built errors.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Reason == "" || t.Reason == e.Reason)
}

// New builds an Error.
func New(code Code, reason, message string) *Error {
	return &Error{Code: code, Reason: reason, Message: message}
}

// Newf builds an Error with a formatted message.
func Newf(code Code, reason, format string, args ...any) *Error {
	return &Error{Code: code, Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// InvalidArgument builds a validation error.
func InvalidArgument(format string, args ...any) *Error {
	return Newf(CodeInvalidArgument, "", format, args...)
}

// NotFound builds a not-found error.
func NotFound(format string, args ...any) *Error {
	return Newf(CodeNotFound, "", format, args...)
}

// As extracts the *Error from err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// ReasonOf returns the reason of the *Error in err's chain, or "".
func ReasonOf(err error) string {
	if appErr, ok := As(err); ok {
		return appErr.Reason
	}
	return ""
}

// HTTPStatus maps err to the status code handlers answer with.
// Errors that are not *Error are internal failures.
func HTTPStatus(err error) int {
	appErr, ok := As(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch appErr.Code {
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeRejected:
		return http.StatusUnprocessableEntity
	case CodeFailedPrecondition:
		return http.StatusConflict
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
