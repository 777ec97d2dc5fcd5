// internal/attendance/errors.go
package attendance

import "errors"

// Kind classifies engine failures so handlers can map them to responses
// without string matching.
type Kind string

const (
	KindPermissionDenied      Kind = "PERMISSION_DENIED"
	KindInvalidState          Kind = "INVALID_STATE"
	KindInvalidInput          Kind = "INVALID_INPUT"
	KindDependencyUnavailable Kind = "DEPENDENCY_UNAVAILABLE"
)

// Error is a domain failure with a user-presentable reason.
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string { return string(e.Kind) + ": " + e.Reason }

func Denied(reason string) *Error {
	return &Error{Kind: KindPermissionDenied, Reason: reason}
}

func InvalidInput(reason string) *Error {
	return &Error{Kind: KindInvalidInput, Reason: reason}
}

func Unavailable(reason string) *Error {
	return &Error{Kind: KindDependencyUnavailable, Reason: reason}
}

var (
	// ErrAlreadyCheckedIn: an open record already exists for (employee, day).
	ErrAlreadyCheckedIn = &Error{Kind: KindInvalidState, Reason: "already checked in today"}

	// ErrNotCheckedIn: the record is not open, so it cannot be closed.
	ErrNotCheckedIn = &Error{Kind: KindInvalidState, Reason: "no open check-in"}

	// ErrNotPending: resolve was called on a record that is already final
	// and the call is not a retry of the previous resolution.
	ErrNotPending = &Error{Kind: KindInvalidState, Reason: "record is not awaiting approval"}

	// ErrAuthorizationInFlight: another authorization attempt for the same
	// user is still running; duplicates are rejected, not queued.
	ErrAuthorizationInFlight = &Error{Kind: KindInvalidState, Reason: "authorization already in progress"}

	// ErrNotFound is returned by Store implementations for missing records.
	ErrNotFound = errors.New("attendance record not found")
)

// KindOf extracts the error kind, defaulting to DependencyUnavailable for
// anything that is not a domain error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindDependencyUnavailable
}
