package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hkhang692004/cinema-ops-console/internal/engine"
)

func newTestContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestGetUserIDAcceptsCommonClaimTypes(t *testing.T) {
	cases := []struct {
		value interface{}
		want  uint64
	}{
		{uint64(7), 7},
		{int(8), 8},
		{int64(9), 9},
		{float64(10), 10}, // json-decoded claims arrive as float64
		{"11", 11},
	}
	for _, tc := range cases {
		c, _ := newTestContext(t)
		c.Set("user_id", tc.value)
		got, err := getUserID(c)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	c, _ := newTestContext(t)
	c.Set("user_id", "not-a-number")
	_, err := getUserID(c)
	assert.Error(t, err)
}

func TestPathIDRejectsZeroAndGarbage(t *testing.T) {
	for _, raw := range []string{"0", "", "abc", "-3"} {
		c, _ := newTestContext(t)
		c.SetParamNames("id")
		c.SetParamValues(raw)
		_, ok := pathID(c, "id")
		assert.False(t, ok, "raw=%q", raw)
	}

	c, _ := newTestContext(t)
	c.SetParamNames("id")
	c.SetParamValues("42")
	id, ok := pathID(c, "id")
	require.True(t, ok)
	assert.Equal(t, uint64(42), id)
}

func TestEngineErrorStatusMapping(t *testing.T) {
	cases := []struct {
		kind engine.ErrorKind
		want int
	}{
		{engine.InvalidTransition, http.StatusConflict},
		{engine.DirectOverlap, http.StatusConflict},
		{engine.BufferViolation, http.StatusConflict},
		{engine.StaleSeatOrShowtime, http.StatusConflict},
		{engine.InsufficientSeats, http.StatusUnprocessableEntity},
		{engine.NoContiguousAllocation, http.StatusUnprocessableEntity},
		{engine.CapacityReached, http.StatusUnprocessableEntity},
		{engine.MissingApprovalField, http.StatusUnprocessableEntity},
		{engine.MissingReason, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		c, rec := newTestContext(t)
		err := engineError(c, &engine.Error{Kind: tc.kind, Message: "boom"})
		require.NoError(t, err)
		assert.Equal(t, tc.want, rec.Code, "kind=%s", tc.kind)
	}
}

func TestEngineErrorBodyCarriesFieldAndConflict(t *testing.T) {
	c, rec := newTestContext(t)
	err := engineError(c, &engine.Error{
		Kind:                  engine.BufferViolation,
		Field:                 "start_time",
		Message:               "too close",
		ConflictingShowtimeID: 33,
	})
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "too close", body["error"])
	assert.Equal(t, "buffer_violation", body["kind"])
	assert.Equal(t, "start_time", body["field"])
	assert.Equal(t, float64(33), body["conflicting_showtime_id"])
}

func TestEngineErrorFallsBackTo500ForUnknownErrors(t *testing.T) {
	c, rec := newTestContext(t)
	err := engineError(c, assert.AnError)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
