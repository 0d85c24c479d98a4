// internal/checkin/errors.go
//
// Error taxonomy for the check-in lifecycle.
//
// Context
// -------
// Callers need to branch on four distinct failure classes: bad input
// (recoverable by fixing the request), business-state conflicts (already
// checked in, nothing to check out), missing identity, and transient
// storage failure (safe to retry, since every mutation is a single atomic
// statement).  The HTTP layer maps each Kind to a status code in exactly
// one place; raw storage errors never reach a client.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package checkin

import (
	"errors"
	"fmt"
)

// Kind classifies a lifecycle failure.
type Kind uint8

const (
	// KindInvalidInput marks malformed or missing client-supplied fields.
	KindInvalidInput Kind = iota + 1
	// KindAlreadyCheckedIn marks a start attempt while a record is open.
	KindAlreadyCheckedIn
	// KindNoActiveCheckin marks a checkout with no open record.  Not fatal;
	// it means already closed or never opened.
	KindNoActiveCheckin
	// KindUnauthenticated marks a missing or invalid identity.
	KindUnauthenticated
	// KindStorageUnavailable marks a transient store failure.
	KindStorageUnavailable
)

// String returns the wire code for the kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindAlreadyCheckedIn:
		return "already_checked_in"
	case KindNoActiveCheckin:
		return "no_active_checkin"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindStorageUnavailable:
		return "storage_unavailable"
	default:
		return "unknown"
	}
}

// Error is the structured failure every lifecycle operation returns.  It
// carries exactly one taxonomy kind plus a human-readable message, and
// wraps the underlying cause (if any) for logs only.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// KindOf extracts the taxonomy kind from err, or 0 when err is not a
// lifecycle error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func invalidf(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

func conflict(msg string) *Error {
	return &Error{Kind: KindAlreadyCheckedIn, Message: msg}
}

func noActive(msg string) *Error {
	return &Error{Kind: KindNoActiveCheckin, Message: msg}
}

func storage(cause error) *Error {
	return &Error{
		Kind:    KindStorageUnavailable,
		Message: "storage temporarily unavailable",
		cause:   cause,
	}
}
