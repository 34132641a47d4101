package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hkhang692004/cinema-ops-console/internal/engine"
	"github.com/hkhang692004/cinema-ops-console/internal/repository"
)

// AutoAssignSeats handles POST /v1/bookings/:id/seats/auto. It computes a
// contiguous, centered seat proposal for the booking's party on its assigned
// showtime and saves it as the booking's reserved set. The proposal is
// advisory until approval commits it against the ledger.
func (h *BookingHandler) AutoAssignSeats(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	rec, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
	}
	b := toEngineBooking(rec)
	if !b.CanEditDetails() {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking can no longer be edited"})
	}
	if rec.AssignedShowtimeID == nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error": "assign a showtime before selecting seats", "field": "assigned_showtime_id",
		})
	}
	statuses, err := h.Seats.MapForShowtime(ctx, *rec.AssignedShowtimeID, rec.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load seat map"})
	}
	alloc, err := engine.AutoSelect(buildRows(statuses), rec.GuestCount)
	if err != nil {
		return engineError(c, err)
	}
	if err := h.Bookings.UpdateSeats(ctx, rec.ID, rec.AssignedShowtimeID, alloc.SeatIDs); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save seat proposal"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"seat_ids": alloc.SeatIDs,
		"rows":     alloc.Rows,
	})
}

// UpdateSeats handles PUT /v1/bookings/:id/seats. The full replacement set
// is replayed through a Selection so the guest-count cap holds exactly as it
// does for one-by-one toggles in the console UI.
func (h *BookingHandler) UpdateSeats(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		SeatIDs []uint64 `json:"seat_ids"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx := c.Request().Context()
	rec, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
	}
	b := toEngineBooking(rec)
	if !b.CanEditDetails() {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking can no longer be edited"})
	}
	if len(body.SeatIDs) > 0 {
		if rec.AssignedShowtimeID == nil {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{
				"error": "assign a showtime before selecting seats", "field": "assigned_showtime_id",
			})
		}
		statuses, err := h.Seats.MapForShowtime(ctx, *rec.AssignedShowtimeID, rec.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load seat map"})
		}
		available := make(map[uint64]bool, len(statuses))
		for _, s := range statuses {
			available[s.ID] = s.Available
		}
		for _, sid := range body.SeatIDs {
			avail, exists := available[sid]
			if !exists {
				return c.JSON(http.StatusUnprocessableEntity, echo.Map{
					"error": "seat does not belong to the assigned showtime's room", "field": "seat_ids",
				})
			}
			if !avail {
				return c.JSON(http.StatusUnprocessableEntity, echo.Map{
					"error": "seat is not available", "field": "seat_ids",
				})
			}
		}
	}
	sel := engine.NewSelection(rec.GuestCount)
	for _, sid := range body.SeatIDs {
		if sel.Contains(sid) {
			continue // duplicate in payload, keep the first occurrence
		}
		if err := sel.Toggle(sid); err != nil {
			return engineError(c, err)
		}
	}
	if err := h.Bookings.UpdateSeats(ctx, rec.ID, rec.AssignedShowtimeID, sel.SeatIDs()); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save seats"})
	}
	return c.JSON(http.StatusOK, echo.Map{"seat_ids": sel.SeatIDs()})
}

// SeatMap handles GET /v1/showtimes/:id/seat-map. With a booking_id query
// parameter the map is overlaid with that booking's current proposal (the
// picks survive a reload); without one the selection starts fresh.
// Availability always reflects the ledger as of this request.
func (h *BookingHandler) SeatMap(c echo.Context) error {
	showtimeID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Showtimes.GetByID(ctx, showtimeID); err != nil {
		if errors.Is(err, repository.ErrShowtimeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load showtime"})
	}

	var sel *engine.Selection
	var excludeBooking uint64
	if raw := c.QueryParam("booking_id"); raw != "" {
		bid, err := parseUint(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking_id"})
		}
		rec, err := h.Bookings.GetByID(ctx, bid)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
		}
		sel = engine.NewSelection(rec.GuestCount)
		if rec.AssignedShowtimeID != nil && *rec.AssignedShowtimeID == showtimeID {
			sel.LoadProposal(rec.SeatIDs)
			excludeBooking = rec.ID
		} else {
			sel.LoadFresh()
		}
	}

	statuses, err := h.Seats.MapForShowtime(ctx, showtimeID, excludeBooking)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load seat map"})
	}
	type seatOut struct {
		repository.SeatStatus
		Selected bool `json:"selected"`
	}
	out := make([]seatOut, 0, len(statuses))
	for _, s := range statuses {
		selected := sel != nil && sel.Contains(s.ID)
		out = append(out, seatOut{SeatStatus: s, Selected: selected})
	}
	resp := echo.Map{"showtime_id": showtimeID, "seats": out}
	if sel != nil {
		resp["selected_count"] = sel.Count()
	}
	return c.JSON(http.StatusOK, resp)
}

// buildRows groups a flat seat map into the engine's row shape. Input is
// ordered by row label then seat number, so rows come out already sorted.
func buildRows(statuses []repository.SeatStatus) []engine.SeatRow {
	var rows []engine.SeatRow
	index := make(map[string]int)
	for _, s := range statuses {
		i, ok := index[s.RowLabel]
		if !ok {
			i = len(rows)
			index[s.RowLabel] = i
			rows = append(rows, engine.SeatRow{Label: s.RowLabel})
		}
		rows[i].Seats = append(rows[i].Seats, engine.Seat{
			ID:         s.ID,
			RowLabel:   s.RowLabel,
			SeatNumber: s.SeatNumber,
			Available:  s.Available,
			SeatType:   s.SeatType,
		})
		rows[i].TotalSeats++
	}
	return rows
}
