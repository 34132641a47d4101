package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hkhang692004/cinema-ops-console/internal/engine"
	"github.com/hkhang692004/cinema-ops-console/internal/repository"
)

// ShowtimeHandler manages the schedule: creating and rescheduling showtimes
// behind the conflict detector, and serving the per-room daily view.
type ShowtimeHandler struct {
	Showtimes *repository.ShowtimeRepo
	Rooms     *repository.RoomRepo
	Movies    *repository.MovieRepo
}

// NewShowtimeHandler constructs a ShowtimeHandler and panics if any dependency is nil.
func NewShowtimeHandler(showtimes *repository.ShowtimeRepo, rooms *repository.RoomRepo, movies *repository.MovieRepo) *ShowtimeHandler {
	if showtimes == nil || rooms == nil || movies == nil {
		panic("nil repository passed to NewShowtimeHandler")
	}
	return &ShowtimeHandler{Showtimes: showtimes, Rooms: rooms, Movies: movies}
}

// checkRoomSchedule fetches every scheduled showtime around the candidate
// interval and runs the conflict rules. Both Create and Update call this;
// excludeID skips the showtime being rescheduled. It returns nil when the
// slot is clear.
func (h *ShowtimeHandler) checkRoomSchedule(c echo.Context, roomID, excludeID uint64, start time.Time, duration time.Duration) error {
	// One day on each side comfortably covers any show plus the buffer.
	from := start.Add(-24 * time.Hour)
	to := start.Add(duration).Add(24 * time.Hour)
	existing, err := h.Showtimes.ListScheduledByRoom(c.Request().Context(), roomID, from, to)
	if err != nil {
		return errors.New("failed to load room schedule")
	}
	intervals := make([]engine.ShowInterval, 0, len(existing))
	for _, s := range existing {
		if s.ID == excludeID {
			continue
		}
		intervals = append(intervals, engine.ShowInterval{
			ShowtimeID: s.ID,
			Title:      s.Title,
			StartsAt:   s.StartsAt,
			EndsAt:     s.EndsAt,
		})
	}
	return engine.CheckSchedule(intervals, start, duration)
}

// Create handles POST /v1/showtimes. Regular showtimes reference a movie
// and inherit its runtime; private events may instead carry a title and an
// explicit duration. The slot must clear the conflict rules.
func (h *ShowtimeHandler) Create(c echo.Context) error {
	var body struct {
		RoomID      uint64  `json:"room_id"`
		MovieID     *uint64 `json:"movie_id"`
		Title       string  `json:"title"`
		StartsAt    string  `json:"starts_at"`
		DurationMin *uint32 `json:"duration_min"`
		IsPrivate   bool    `json:"is_private"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.RoomID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room_id is required"})
	}
	ctx := c.Request().Context()
	if _, err := h.Rooms.GetByID(ctx, body.RoomID); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to verify room"})
	}
	start, err := time.Parse(time.RFC3339, strings.TrimSpace(body.StartsAt))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid starts_at format"})
	}
	start = start.UTC()

	title := strings.TrimSpace(body.Title)
	var duration time.Duration
	if body.DurationMin != nil {
		duration = time.Duration(*body.DurationMin) * time.Minute
	}
	if body.MovieID != nil {
		movie, err := h.Movies.GetByID(ctx, *body.MovieID)
		if err != nil {
			if errors.Is(err, repository.ErrMovieNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load movie"})
		}
		if title == "" {
			title = movie.Title
		}
		if duration == 0 {
			duration = time.Duration(movie.RuntimeMin) * time.Minute
		}
	}
	if title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required when no movie is given"})
	}
	if duration <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "duration_min is required when no movie is given"})
	}

	if err := h.checkRoomSchedule(c, body.RoomID, 0, start, duration); err != nil {
		if engine.KindOf(err) != "" {
			return engineError(c, err)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	rec := &repository.ShowtimeRecord{
		RoomID:    body.RoomID,
		MovieID:   body.MovieID,
		Title:     title,
		StartsAt:  start,
		EndsAt:    start.Add(duration),
		Status:    repository.ShowtimeScheduled,
		IsPrivate: body.IsPrivate,
	}
	if err := h.Showtimes.Create(ctx, rec); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create showtime"})
	}
	return c.JSON(http.StatusCreated, rec)
}

// Update handles PUT /v1/showtimes/:id. Rescheduling re-runs the conflict
// rules against every other scheduled showtime in the room. Cancelling is
// refused while committed bookings still point at the showtime.
func (h *ShowtimeHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	cur, err := h.Showtimes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrShowtimeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load showtime"})
	}
	var body struct {
		Title       *string `json:"title"`
		StartsAt    *string `json:"starts_at"`
		DurationMin *uint32 `json:"duration_min"`
		Status      *string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	title := cur.Title
	if body.Title != nil && strings.TrimSpace(*body.Title) != "" {
		title = strings.TrimSpace(*body.Title)
	}
	start := cur.StartsAt
	duration := cur.EndsAt.Sub(cur.StartsAt)
	rescheduled := false
	if body.StartsAt != nil && strings.TrimSpace(*body.StartsAt) != "" {
		t, err := time.Parse(time.RFC3339, strings.TrimSpace(*body.StartsAt))
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid starts_at format"})
		}
		start = t.UTC()
		rescheduled = true
	}
	if body.DurationMin != nil {
		if *body.DurationMin == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "duration_min must be positive"})
		}
		duration = time.Duration(*body.DurationMin) * time.Minute
		rescheduled = true
	}
	status := cur.Status
	if body.Status != nil {
		s := strings.ToUpper(strings.TrimSpace(*body.Status))
		switch s {
		case repository.ShowtimeScheduled, repository.ShowtimeCancelled, repository.ShowtimeFinished:
			status = s
		default:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
		}
	}
	if status == repository.ShowtimeCancelled && cur.Status != repository.ShowtimeCancelled {
		busy, err := h.Showtimes.HasCommittedBookings(ctx, cur.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check bookings"})
		}
		if busy {
			return c.JSON(http.StatusConflict, echo.Map{"error": "showtime still has approved or completed bookings"})
		}
	}

	if rescheduled && status == repository.ShowtimeScheduled {
		if err := h.checkRoomSchedule(c, cur.RoomID, cur.ID, start, duration); err != nil {
			if engine.KindOf(err) != "" {
				return engineError(c, err)
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
	}

	upd := &repository.ShowtimeRecord{
		ID:       cur.ID,
		RoomID:   cur.RoomID,
		MovieID:  cur.MovieID,
		Title:    title,
		StartsAt: start,
		EndsAt:   start.Add(duration),
		Status:   status,
	}
	if err := h.Showtimes.Update(ctx, upd); err != nil {
		if errors.Is(err, repository.ErrShowtimeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, upd)
}

// ListByRoom handles GET /v1/rooms/:id/showtimes?date=YYYY-MM-DD and
// returns the room's scheduled showtimes for that day, ordered by start.
func (h *ShowtimeHandler) ListByRoom(c echo.Context) error {
	roomID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Rooms.GetByID(ctx, roomID); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to verify room"})
	}
	day, err := time.Parse("2006-01-02", strings.TrimSpace(c.QueryParam("date")))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	from := day.UTC()
	items, err := h.Showtimes.ListScheduledByRoom(ctx, roomID, from, from.Add(24*time.Hour))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load showtimes"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/showtimes/:id.
func (h *ShowtimeHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	rec, err := h.Showtimes.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrShowtimeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load showtime"})
	}
	return c.JSON(http.StatusOK, rec)
}
