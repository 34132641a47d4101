// Package engine implements the group-booking fulfillment logic: the booking
// approval lifecycle, advisory seat allocation and showtime conflict
// detection. All functions here are pure and synchronous; persistence and
// the authoritative seat ledger live in the repository layer. Every failure
// is reported as a typed *Error so handlers can render it inline for the
// operator instead of failing the request generically.
package engine

import "fmt"

// ErrorKind classifies engine failures. Each kind maps to one row of the
// operator-facing error taxonomy; all of them are recoverable.
type ErrorKind string

const (
	// InsufficientSeats: aggregate availability is below the party size.
	InsufficientSeats ErrorKind = "insufficient_seats"
	// NoContiguousAllocation: enough seats exist in aggregate but they cannot
	// be assembled under the contiguity policy.
	NoContiguousAllocation ErrorKind = "no_contiguous_allocation"
	// CapacityReached: a manual toggle tried to select beyond guest_count.
	CapacityReached ErrorKind = "capacity_reached"
	// DirectOverlap: a candidate showtime literally overlaps an existing one.
	DirectOverlap ErrorKind = "direct_overlap"
	// BufferViolation: the candidate respects the raw interval but breaks the
	// 15-minute buffer before or after an existing showtime.
	BufferViolation ErrorKind = "buffer_violation"
	// MissingApprovalField: approval attempted without required price,
	// showtime or seats.
	MissingApprovalField ErrorKind = "missing_approval_field"
	// MissingReason: rejection or cancellation attempted without a reason.
	MissingReason ErrorKind = "missing_reason"
	// InvalidTransition: the requested status change is not in the allowed
	// transition table.
	InvalidTransition ErrorKind = "invalid_transition"
	// StaleSeatOrShowtime: the external ledger rejected the commit because the
	// world changed since the proposal was computed.
	StaleSeatOrShowtime ErrorKind = "stale_seat_or_showtime"
)

// Error is the typed failure returned by all engine operations. Field names
// the booking field the operator must correct when one applies, so the UI
// can attach the message to a specific input.
type Error struct {
	Kind    ErrorKind
	Field   string
	Message string
	// ConflictingShowtimeID is set on schedule conflicts to identify the
	// existing showtime that blocked the candidate.
	ConflictingShowtimeID uint64
}

// Error renders the message, prefixed with the field when present.
func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// newError builds a field-less engine error.
func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// newFieldError builds an engine error addressed to a booking field.
func newFieldError(kind ErrorKind, field, format string, args ...any) *Error {
	return &Error{Kind: kind, Field: field, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the ErrorKind from err, or "" when err is not an engine
// error. Handlers use it to select HTTP status codes.
func KindOf(err error) ErrorKind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is an engine error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
