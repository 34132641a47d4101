package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/hkhang692004/cinema-ops-console/internal/engine"
)

// getUserID extracts the user_id from echo.Context and converts it to uint64.
// The JWT middleware stores it as whatever type the claims decoded to, so a
// type switch covers every representation seen in practice.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// parseUint parses a numeric query parameter.
func parseUint(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}

// engineError translates a rule violation from the fulfillment engine into
// an HTTP response. Conflict-flavoured kinds map to 409, everything else
// to 422 so the console can attach the message to the offending field.
func engineError(c echo.Context, err error) error {
	var e *engine.Error
	if !errors.As(err, &e) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	status := http.StatusUnprocessableEntity
	switch e.Kind {
	case engine.InvalidTransition, engine.DirectOverlap, engine.BufferViolation, engine.StaleSeatOrShowtime:
		status = http.StatusConflict
	}
	body := echo.Map{
		"error": e.Message,
		"kind":  string(e.Kind),
	}
	if e.Field != "" {
		body["field"] = e.Field
	}
	if e.ConflictingShowtimeID != 0 {
		body["conflicting_showtime_id"] = e.ConflictingShowtimeID
	}
	return c.JSON(status, body)
}
