package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hkhang692004/cinema-ops-console/internal/engine"
	"github.com/hkhang692004/cinema-ops-console/internal/queue"
	"github.com/hkhang692004/cinema-ops-console/internal/repository"
	queuepub "github.com/hkhang692004/cinema-ops-console/internal/service"
)

// BookingHandler serves the staff work queue: listing bookings, inspecting
// one, and driving it through the fulfillment lifecycle.
type BookingHandler struct {
	Bookings  *repository.BookingRepo
	Showtimes *repository.ShowtimeRepo
	Seats     *repository.SeatRepo
	Rooms     *repository.RoomRepo
}

// NewBookingHandler constructs a BookingHandler and panics if any dependency is nil.
func NewBookingHandler(bookings *repository.BookingRepo, showtimes *repository.ShowtimeRepo, seats *repository.SeatRepo, rooms *repository.RoomRepo) *BookingHandler {
	if bookings == nil || showtimes == nil || seats == nil || rooms == nil {
		panic("nil repository passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: bookings, Showtimes: showtimes, Seats: seats, Rooms: rooms}
}

// List handles GET /v1/bookings. Optional status and service_type query
// parameters filter the work queue.
func (h *BookingHandler) List(c echo.Context) error {
	status := strings.ToUpper(strings.TrimSpace(c.QueryParam("status")))
	if status != "" {
		if _, ok := engine.ParseStatus(status); !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status filter"})
		}
	}
	serviceType := strings.ToUpper(strings.TrimSpace(c.QueryParam("service_type")))
	items, err := h.Bookings.List(c.Request().Context(), status, serviceType)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	rec, err := h.Bookings.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
	}
	return c.JSON(http.StatusOK, rec)
}

// transitionBody is the request payload for POST /v1/bookings/:id/transition.
// Optional fields ride along with the status change so an operator can set
// the price and approve in one call.
type transitionBody struct {
	TargetStatus       string   `json:"target_status"`
	PriceCents         *uint32  `json:"price_cents"`
	AssignedShowtimeID *uint64  `json:"assigned_showtime_id"`
	SeatIDs            []uint64 `json:"seat_ids"`
	RejectionReason    string   `json:"rejection_reason"`
	AdminNotes         *string  `json:"admin_notes"`
}

// Transition handles POST /v1/bookings/:id/transition. The lifecycle rules
// run against an in-memory copy of the booking; nothing is persisted unless
// they pass. Approval additionally re-checks the seat ledger inside the same
// transaction, so a booking whose seats were sold out from under it stays in
// PROCESSING with a stale_seat_or_showtime error.
func (h *BookingHandler) Transition(c echo.Context) error {
	operatorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body transitionBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	target, ok := engine.ParseStatus(body.TargetStatus)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid target_status"})
	}
	ctx := c.Request().Context()

	tx, err := h.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	rec, err := h.Bookings.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
	}

	// Validate a newly assigned showtime up front so the engine never sees a
	// dangling reference.
	if body.AssignedShowtimeID != nil {
		st, err := h.Showtimes.GetByID(ctx, *body.AssignedShowtimeID)
		if err != nil {
			if errors.Is(err, repository.ErrShowtimeNotFound) {
				return c.JSON(http.StatusUnprocessableEntity, echo.Map{
					"error": "showtime not found", "field": "assigned_showtime_id",
				})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load showtime"})
		}
		if st.Status != repository.ShowtimeScheduled {
			return engineError(c, &engine.Error{
				Kind:                  engine.StaleSeatOrShowtime,
				Field:                 "assigned_showtime_id",
				Message:               fmt.Sprintf("showtime %d is no longer scheduled", st.ID),
				ConflictingShowtimeID: st.ID,
			})
		}
	}

	b := toEngineBooking(rec)
	res, err := engine.Transition(&b, engine.TransitionRequest{
		Target:             target,
		PriceCents:         body.PriceCents,
		AssignedShowtimeID: body.AssignedShowtimeID,
		SeatIDs:            body.SeatIDs,
		RejectionReason:    body.RejectionReason,
		AdminNotes:         body.AdminNotes,
	})
	if err != nil {
		return engineError(c, err)
	}

	// Approval commits the proposal against the real ledger. Anything taken
	// in the meantime surfaces here and the booking stays in PROCESSING.
	if res.To == engine.StatusApproved && len(b.ReservedSeatIDs) > 0 {
		if b.AssignedShowtimeID == nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "seats without showtime"})
		}
		st, err := h.Showtimes.GetByID(ctx, *b.AssignedShowtimeID)
		if err != nil || st.Status != repository.ShowtimeScheduled {
			return engineError(c, &engine.Error{
				Kind:    engine.StaleSeatOrShowtime,
				Field:   "assigned_showtime_id",
				Message: "assigned showtime is no longer scheduled",
			})
		}
		unavailable, err := h.Seats.UnavailableTx(ctx, tx, *b.AssignedShowtimeID, b.ReservedSeatIDs, b.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to verify seats"})
		}
		if len(unavailable) > 0 {
			return engineError(c, &engine.Error{
				Kind:    engine.StaleSeatOrShowtime,
				Field:   "reserved_seat_ids",
				Message: fmt.Sprintf("%d of the reserved seats were taken while the booking was under review", len(unavailable)),
			})
		}
	}

	applyEngineBooking(rec, &b)
	if err := h.Bookings.ApplyTransitionTx(ctx, tx, rec); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to persist transition"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transition"})
	}
	committed = true

	if res.Completed {
		h.publishCompleted(ctx, rec, operatorID)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":      rec.ID,
		"from":    res.From,
		"to":      res.To,
		"booking": rec,
	})
}

// publishCompleted assembles and fires the completion event. The transition
// is already durable, so failures are logged and swallowed.
func (h *BookingHandler) publishCompleted(ctx context.Context, rec *repository.BookingRecord, operatorID uint64) {
	ev := queue.BookingCompletedEvent{
		BookingID:    rec.ID,
		OperatorID:   operatorID,
		CustomerName: rec.CustomerName,
		ServiceType:  rec.ServiceType,
		GuestCount:   rec.GuestCount,
		CompletedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if rec.PriceCents != nil {
		ev.PriceCents = *rec.PriceCents
	}
	if rec.AssignedShowtimeID != nil {
		ev.ShowtimeID = *rec.AssignedShowtimeID
		if st, err := h.Showtimes.GetByID(ctx, *rec.AssignedShowtimeID); err == nil {
			ev.EventTitle = st.Title
			ev.StartsAt = st.StartsAt.Format(time.RFC3339)
			ev.EndsAt = st.EndsAt.Format(time.RFC3339)
			if room, err := h.Rooms.GetByID(ctx, st.RoomID); err == nil {
				ev.RoomName = room.Name
			}
		}
	}
	if labels, err := h.Seats.LabelsByIDs(ctx, rec.SeatIDs); err == nil {
		ev.SeatLabels = labels
	}
	if err := queuepub.PublishBookingCompleted(ctx, ev); err != nil {
		log.Printf("booking %d: completion event not published: %v", rec.ID, err)
	}
}

// toEngineBooking maps the stored record into the engine's shape.
func toEngineBooking(rec *repository.BookingRecord) engine.Booking {
	return engine.Booking{
		ID:                 rec.ID,
		Status:             engine.Status(rec.Status),
		ServiceType:        engine.ServiceType(rec.ServiceType),
		GuestCount:         rec.GuestCount,
		AssignedShowtimeID: rec.AssignedShowtimeID,
		ReservedSeatIDs:    rec.SeatIDs,
		PriceCents:         rec.PriceCents,
		RejectionReason:    rec.RejectionReason,
		AdminNotes:         rec.AdminNotes,
	}
}

// applyEngineBooking copies the engine's resolved state back onto the record.
func applyEngineBooking(rec *repository.BookingRecord, b *engine.Booking) {
	rec.Status = string(b.Status)
	rec.AssignedShowtimeID = b.AssignedShowtimeID
	rec.SeatIDs = b.ReservedSeatIDs
	rec.PriceCents = b.PriceCents
	rec.RejectionReason = b.RejectionReason
	rec.AdminNotes = b.AdminNotes
}
