// Package booking implements the reservation core: the half-open
// interval conflict check, the reservation lifecycle state machine and
// payment recording.  It talks to persistence through the Store
// interface so the same logic runs against MySQL in production and an
// in-memory store in tests.
package booking

import (
	"errors"
	"fmt"
)

// Kind classifies a booking error so the HTTP layer can map it to a
// status code without string matching.
type Kind int

const (
	// KindInternal is a persistence or collaborator failure.  It is the
	// zero value so an unclassified error defaults to it.
	KindInternal Kind = iota
	// KindValidation is a malformed input, e.g. an inverted interval.
	KindValidation
	// KindNotFound means a referenced car/reservation does not exist.
	KindNotFound
	// KindConflict means the requested interval overlaps an active
	// reservation for the same car.
	KindConflict
	// KindInvalidState means the operation is not permitted in the
	// reservation's current lifecycle state.
	KindInvalidState
)

// Error carries a kind, a human-readable message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// NewValidation reports malformed input.
func NewValidation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NewNotFound reports a missing car or reservation.
func NewNotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// NewConflict reports an overlapping booking.
func NewConflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// NewInvalidState reports a forbidden lifecycle transition.
func NewInvalidState(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

// NewInternal wraps a persistence/transport failure.
func NewInternal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf extracts the Kind from err.  Unrecognized errors are
// classified as internal.
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindInternal
}

// Sentinels returned by Store implementations for missing rows.  The
// manager translates them into KindNotFound errors with context.
var (
	ErrCarNotFound         = errors.New("car not found")
	ErrReservationNotFound = errors.New("reservation not found")
)
