package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintPtr(v uint32) *uint32 { return &v }
func idPtr(v uint64) *uint64   { return &v }

func processingBooking(service ServiceType) *Booking {
	return &Booking{
		ID:          42,
		Status:      StatusProcessing,
		ServiceType: service,
		GuestCount:  4,
	}
}

func TestTransitionTableRejectsEverythingNotAllowed(t *testing.T) {
	all := []Status{StatusRequested, StatusProcessing, StatusApproved, StatusRejected, StatusCompleted, StatusCancelled}
	legal := map[[2]Status]bool{
		{StatusRequested, StatusProcessing}: true,
		{StatusProcessing, StatusApproved}:  true,
		{StatusProcessing, StatusRejected}:  true,
		{StatusApproved, StatusCompleted}:   true,
		{StatusApproved, StatusCancelled}:   true,
	}
	for _, from := range all {
		for _, to := range all {
			if legal[[2]Status{from, to}] {
				continue
			}
			b := &Booking{Status: from, ServiceType: ServiceVoucher, GuestCount: 2, PriceCents: uintPtr(5000)}
			before := *b
			_, err := Transition(b, TransitionRequest{Target: to, RejectionReason: "any"})
			require.Error(t, err, "transition %s -> %s must be rejected", from, to)
			assert.Equal(t, InvalidTransition, KindOf(err))
			assert.Equal(t, before, *b, "a rejected transition must not mutate the booking")
		}
	}
}

func TestApprovalRequiresPositivePrice(t *testing.T) {
	b := processingBooking(ServiceVoucher)

	_, err := Transition(b, TransitionRequest{Target: StatusApproved})
	require.Error(t, err)
	assert.Equal(t, MissingApprovalField, KindOf(err))
	assert.Equal(t, "price", err.(*Error).Field)
	assert.Equal(t, StatusProcessing, b.Status)

	zero := uint32(0)
	_, err = Transition(b, TransitionRequest{Target: StatusApproved, PriceCents: &zero})
	require.Error(t, err)
	assert.Equal(t, MissingApprovalField, KindOf(err))

	_, err = Transition(b, TransitionRequest{Target: StatusApproved, PriceCents: uintPtr(150000)})
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, b.Status)
}

func TestApprovalRequiresShowtimeUnlessVoucher(t *testing.T) {
	for _, svc := range []ServiceType{ServiceGroupBooking, ServicePrivateShow, ServiceHallRental} {
		b := processingBooking(svc)
		_, err := Transition(b, TransitionRequest{Target: StatusApproved, PriceCents: uintPtr(9900)})
		require.Error(t, err, "service %s must demand a showtime", svc)
		assert.Equal(t, MissingApprovalField, KindOf(err))
		assert.Equal(t, "assigned_showtime_id", err.(*Error).Field)
	}

	// Vouchers approve with price only.
	b := processingBooking(ServiceVoucher)
	_, err := Transition(b, TransitionRequest{Target: StatusApproved, PriceCents: uintPtr(9900)})
	require.NoError(t, err)
}

func TestGroupBookingApprovalNeedsSeats(t *testing.T) {
	b := processingBooking(ServiceGroupBooking)
	b.AssignedShowtimeID = idPtr(7)

	_, err := Transition(b, TransitionRequest{Target: StatusApproved, PriceCents: uintPtr(40000)})
	require.Error(t, err)
	assert.Equal(t, MissingApprovalField, KindOf(err))
	assert.Equal(t, "reserved_seat_ids", err.(*Error).Field)
	assert.Equal(t, StatusProcessing, b.Status)

	// One seat out of four needed is enough under the non-empty gate.
	_, err = Transition(b, TransitionRequest{
		Target:     StatusApproved,
		PriceCents: uintPtr(40000),
		SeatIDs:    []uint64{301},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, b.Status)
	assert.Equal(t, []uint64{301}, b.ReservedSeatIDs)
}

func TestRejectionAndCancellationRequireReason(t *testing.T) {
	b := processingBooking(ServiceGroupBooking)
	_, err := Transition(b, TransitionRequest{Target: StatusRejected, RejectionReason: "   "})
	require.Error(t, err)
	assert.Equal(t, MissingReason, KindOf(err))
	assert.Equal(t, StatusProcessing, b.Status)
	assert.Nil(t, b.RejectionReason)

	_, err = Transition(b, TransitionRequest{Target: StatusRejected, RejectionReason: "hall under renovation"})
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, b.Status)
	require.NotNil(t, b.RejectionReason)
	assert.Equal(t, "hall under renovation", *b.RejectionReason)
	assert.True(t, b.Status.Terminal())
}

func TestCancelApprovedBooking(t *testing.T) {
	b := processingBooking(ServiceGroupBooking)
	b.Status = StatusApproved
	b.PriceCents = uintPtr(80000)

	_, err := Transition(b, TransitionRequest{Target: StatusCancelled})
	require.Error(t, err)
	assert.Equal(t, MissingReason, KindOf(err))
	assert.Equal(t, StatusApproved, b.Status)

	res, err := Transition(b, TransitionRequest{Target: StatusCancelled, RejectionReason: "khách đổi ý"})
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, b.Status)
	assert.Equal(t, StatusApproved, res.From)
	require.NotNil(t, b.RejectionReason)
	assert.Equal(t, "khách đổi ý", *b.RejectionReason)
}

func TestDetailsFrozenAfterApproval(t *testing.T) {
	approved := func() *Booking {
		return &Booking{
			ID:                 7,
			Status:             StatusApproved,
			ServiceType:        ServiceGroupBooking,
			GuestCount:         4,
			PriceCents:         uintPtr(40000),
			AssignedShowtimeID: idPtr(9),
			ReservedSeatIDs:    []uint64{301, 302},
		}
	}
	notes := "late edit"

	// Completing may not rewrite price, showtime, seats or notes.
	b := approved()
	res, err := Transition(b, TransitionRequest{
		Target:             StatusCompleted,
		PriceCents:         uintPtr(1),
		AssignedShowtimeID: idPtr(77),
		SeatIDs:            []uint64{999},
		AdminNotes:         &notes,
	})
	require.NoError(t, err)
	assert.True(t, res.Completed)
	assert.Equal(t, StatusCompleted, b.Status)
	assert.Equal(t, uint32(40000), *b.PriceCents)
	assert.Equal(t, uint64(9), *b.AssignedShowtimeID)
	assert.Equal(t, []uint64{301, 302}, b.ReservedSeatIDs)
	assert.Nil(t, b.AdminNotes)

	// Cancelling applies only the reason; the frozen details stay.
	b = approved()
	_, err = Transition(b, TransitionRequest{
		Target:          StatusCancelled,
		RejectionReason: "khách đổi ý",
		PriceCents:      uintPtr(1),
		SeatIDs:         []uint64{999},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, b.Status)
	assert.Equal(t, uint32(40000), *b.PriceCents)
	assert.Equal(t, []uint64{301, 302}, b.ReservedSeatIDs)
	require.NotNil(t, b.RejectionReason)
	assert.Equal(t, "khách đổi ý", *b.RejectionReason)
}

func TestCompletionReportsSideEffect(t *testing.T) {
	b := processingBooking(ServiceVoucher)
	b.Status = StatusApproved
	b.PriceCents = uintPtr(20000)

	res, err := Transition(b, TransitionRequest{Target: StatusCompleted})
	require.NoError(t, err)
	assert.True(t, res.Completed, "entering COMPLETED must be reported so the caller can dispatch the confirmation email")
	assert.Equal(t, StatusCompleted, b.Status)
}

func TestSeatSetCannotExceedGuestCount(t *testing.T) {
	b := processingBooking(ServiceGroupBooking)
	b.AssignedShowtimeID = idPtr(7)
	_, err := Transition(b, TransitionRequest{
		Target:     StatusApproved,
		PriceCents: uintPtr(40000),
		SeatIDs:    []uint64{1, 2, 3, 4, 5},
	})
	require.Error(t, err)
	assert.Equal(t, CapacityReached, KindOf(err))
	assert.Equal(t, StatusProcessing, b.Status)
}

func TestTransitionDeduplicatesSeatIDs(t *testing.T) {
	b := processingBooking(ServiceGroupBooking)
	b.AssignedShowtimeID = idPtr(7)
	_, err := Transition(b, TransitionRequest{
		Target:     StatusApproved,
		PriceCents: uintPtr(40000),
		SeatIDs:    []uint64{9, 9, 0, 10},
	})
	require.NoError(t, err)
	assert.Equal(t, []uint64{9, 10}, b.ReservedSeatIDs)
}

func TestCanEditDetailsFreezesAfterProcessing(t *testing.T) {
	assert.True(t, (&Booking{Status: StatusRequested}).CanEditDetails())
	assert.True(t, (&Booking{Status: StatusProcessing}).CanEditDetails())
	assert.False(t, (&Booking{Status: StatusApproved}).CanEditDetails())
	assert.False(t, (&Booking{Status: StatusRejected}).CanEditDetails())
	assert.False(t, (&Booking{Status: StatusCompleted}).CanEditDetails())
}

func TestParseStatus(t *testing.T) {
	s, ok := ParseStatus(" approved ")
	require.True(t, ok)
	assert.Equal(t, StatusApproved, s)
	_, ok = ParseStatus("archived")
	assert.False(t, ok)
}
