package engine

import "strings"

// Status enumerates the states of a group-booking request. A booking is
// created in REQUESTED by the intake flow and only ever moves forward;
// REJECTED, COMPLETED and CANCELLED are terminal.
type Status string

const (
	StatusRequested  Status = "REQUESTED"
	StatusProcessing Status = "PROCESSING"
	StatusApproved   Status = "APPROVED"
	StatusRejected   Status = "REJECTED"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// ServiceType enumerates what a booking request is for. The type decides
// which fields gate the approval: vouchers need no showtime, and only
// group bookings need a seat set.
type ServiceType string

const (
	ServiceGroupBooking ServiceType = "GROUP_BOOKING"
	ServicePrivateShow  ServiceType = "PRIVATE_SHOW"
	ServiceHallRental   ServiceType = "HALL_RENTAL"
	ServiceVoucher      ServiceType = "VOUCHER"
)

// ParseStatus maps a request string onto a Status, case-insensitively.
func ParseStatus(s string) (Status, bool) {
	switch Status(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusRequested:
		return StatusRequested, true
	case StatusProcessing:
		return StatusProcessing, true
	case StatusApproved:
		return StatusApproved, true
	case StatusRejected:
		return StatusRejected, true
	case StatusCompleted:
		return StatusCompleted, true
	case StatusCancelled:
		return StatusCancelled, true
	}
	return "", false
}

// Terminal reports whether no further transition can leave s.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusCompleted || s == StatusCancelled
}

// Booking is the engine's view of a group-booking request. Prices are in
// cents. ReservedSeatIDs is a set: the lifecycle never stores duplicates
// and never lets it grow beyond GuestCount.
type Booking struct {
	ID                 uint64
	Status             Status
	ServiceType        ServiceType
	GuestCount         int
	AssignedShowtimeID *uint64
	ReservedSeatIDs    []uint64
	PriceCents         *uint32
	RejectionReason    *string
	AdminNotes         *string
}

// TransitionRequest carries the target status plus the optional fields an
// operator may supply in the same operation. Nil pointers mean "leave the
// current value alone"; the rejection reason is only consulted for
// REJECTED/CANCELLED targets. Detail fields only take effect while the
// booking is still editable (CanEditDetails); after that they are ignored.
type TransitionRequest struct {
	Target             Status
	PriceCents         *uint32
	AssignedShowtimeID *uint64
	SeatIDs            []uint64
	RejectionReason    string
	AdminNotes         *string
}

// TransitionResult reports what a successful transition did, so the caller
// can fire delegated side effects. Completed is true exactly when the
// booking just entered COMPLETED, which obliges the caller to dispatch the
// confirmation email event.
type TransitionResult struct {
	From      Status
	To        Status
	Completed bool
}

// allowed is the full transition table. Anything absent is rejected.
// REJECTED is only reachable from PROCESSING (no state may be skipped) and
// COMPLETED/CANCELLED only from APPROVED.
var allowed = map[Status][]Status{
	StatusRequested:  {StatusProcessing},
	StatusProcessing: {StatusApproved, StatusRejected},
	StatusApproved:   {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether the bare (from, to) pair is in the table,
// ignoring field preconditions.
func CanTransition(from, to Status) bool {
	for _, t := range allowed[from] {
		if t == to {
			return true
		}
	}
	return false
}

// CanEditDetails reports whether price, notes, showtime and seats are still
// mutable. Details freeze once the booking leaves PROCESSING.
func (b *Booking) CanEditDetails() bool {
	return b.Status == StatusRequested || b.Status == StatusProcessing
}

// Transition validates req against the booking and, when every gate passes,
// applies the status change and the supplied fields in one step. On any
// failure the booking is left untouched and a typed *Error explains which
// field blocked the transition.
func Transition(b *Booking, req TransitionRequest) (TransitionResult, error) {
	if !CanTransition(b.Status, req.Target) {
		return TransitionResult{}, newError(InvalidTransition,
			"cannot move booking from %s to %s", b.Status, req.Target)
	}

	// Resolve the would-be values without touching the booking yet, so a
	// failed gate leaves no partial writes behind. Once the booking has left
	// PROCESSING its details are frozen: from APPROVED on, only the target
	// and the rejection reason are honored and any supplied detail fields
	// are dropped.
	editable := b.CanEditDetails()
	price := b.PriceCents
	if editable && req.PriceCents != nil {
		price = req.PriceCents
	}
	showtime := b.AssignedShowtimeID
	if editable && req.AssignedShowtimeID != nil {
		showtime = req.AssignedShowtimeID
	}
	seats := b.ReservedSeatIDs
	if editable && req.SeatIDs != nil {
		seats = dedupeSeats(req.SeatIDs)
	}

	switch req.Target {
	case StatusApproved:
		if price == nil || *price == 0 {
			return TransitionResult{}, newFieldError(MissingApprovalField,
				"price", "a positive price is required for approval")
		}
		if b.ServiceType != ServiceVoucher && showtime == nil {
			return TransitionResult{}, newFieldError(MissingApprovalField,
				"assigned_showtime_id", "a showtime must be assigned before approval")
		}
		// The gate is deliberately non-empty, not |seats| == guest_count.
		if b.ServiceType == ServiceGroupBooking && len(seats) == 0 {
			return TransitionResult{}, newFieldError(MissingApprovalField,
				"reserved_seat_ids", "at least one seat must be reserved before approval")
		}
	case StatusRejected, StatusCancelled:
		if strings.TrimSpace(req.RejectionReason) == "" {
			return TransitionResult{}, newFieldError(MissingReason,
				"rejection_reason", "a reason is required to %s a booking",
				strings.ToLower(string(req.Target)))
		}
	}

	if len(seats) > b.GuestCount {
		return TransitionResult{}, newFieldError(CapacityReached,
			"reserved_seat_ids", "cannot reserve %d seats for a party of %d",
			len(seats), b.GuestCount)
	}

	res := TransitionResult{From: b.Status, To: req.Target, Completed: req.Target == StatusCompleted}
	b.Status = req.Target
	b.PriceCents = price
	b.AssignedShowtimeID = showtime
	b.ReservedSeatIDs = seats
	if editable && req.AdminNotes != nil {
		b.AdminNotes = req.AdminNotes
	}
	if req.Target == StatusRejected || req.Target == StatusCancelled {
		reason := strings.TrimSpace(req.RejectionReason)
		b.RejectionReason = &reason
	}
	return res, nil
}

// dedupeSeats drops zero and duplicate seat IDs while preserving order.
func dedupeSeats(ids []uint64) []uint64 {
	out := make([]uint64, 0, len(ids))
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
