package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, min int) time.Time {
	return time.Date(2025, 6, 14, hour, min, 0, 0, time.UTC)
}

func interval(id uint64, startHour, startMin, endHour, endMin int) ShowInterval {
	return ShowInterval{
		ShowtimeID: id,
		Title:      "Mắt Biếc",
		StartsAt:   at(startHour, startMin),
		EndsAt:     at(endHour, endMin),
	}
}

func TestCheckScheduleEmptyRoom(t *testing.T) {
	assert.NoError(t, CheckSchedule(nil, at(19, 0), 2*time.Hour))
}

func TestCheckScheduleDirectOverlap(t *testing.T) {
	existing := []ShowInterval{interval(9, 19, 0, 21, 0)}

	err := CheckSchedule(existing, at(20, 0), 90*time.Minute)
	require.Error(t, err)
	assert.Equal(t, DirectOverlap, KindOf(err))
	assert.Equal(t, uint64(9), err.(*Error).ConflictingShowtimeID)

	// Fully containing the existing show is also a direct overlap.
	err = CheckSchedule(existing, at(18, 0), 4*time.Hour)
	require.Error(t, err)
	assert.Equal(t, DirectOverlap, KindOf(err))
}

func TestCheckScheduleStartsTooSoonAfter(t *testing.T) {
	// Existing 19:00-21:00; a candidate at 21:10 violates the buffer, the
	// earliest allowed start is 21:15.
	existing := []ShowInterval{interval(9, 19, 0, 21, 0)}
	err := CheckSchedule(existing, at(21, 10), 2*time.Hour)
	require.Error(t, err)
	assert.Equal(t, BufferViolation, KindOf(err))
	assert.Contains(t, err.Error(), "starts too soon")
	assert.Contains(t, err.Error(), "21:15")
}

func TestCheckScheduleEndsTooCloseBefore(t *testing.T) {
	// Candidate 17:00-18:50 ends 10 minutes before an existing 19:00 show:
	// no literal overlap, but the trailing buffer intrudes.
	existing := []ShowInterval{interval(9, 19, 0, 21, 0)}
	err := CheckSchedule(existing, at(17, 0), 110*time.Minute)
	require.Error(t, err)
	assert.Equal(t, BufferViolation, KindOf(err))
	assert.Contains(t, err.Error(), "ends too close")
}

func TestCheckScheduleBufferSymmetry(t *testing.T) {
	// Two 1-hour slots with exactly 14 minutes between them conflict no
	// matter which side is the candidate.
	a := interval(1, 10, 0, 11, 0)
	b := interval(2, 11, 14, 12, 14)

	errB := CheckSchedule([]ShowInterval{a}, b.StartsAt, time.Hour)
	errA := CheckSchedule([]ShowInterval{b}, a.StartsAt, time.Hour)
	require.Error(t, errB)
	require.Error(t, errA)
	assert.Equal(t, BufferViolation, KindOf(errB))
	assert.Equal(t, BufferViolation, KindOf(errA))

	// At exactly 15 minutes the gap is legal from both directions.
	c := interval(3, 11, 15, 12, 15)
	assert.NoError(t, CheckSchedule([]ShowInterval{a}, c.StartsAt, time.Hour))
	assert.NoError(t, CheckSchedule([]ShowInterval{c}, a.StartsAt, time.Hour))
}

func TestCheckScheduleExactBackToBackWithGap(t *testing.T) {
	// Ending exactly 15 minutes before the next show is schedulable.
	existing := []ShowInterval{interval(9, 19, 0, 21, 0)}
	assert.NoError(t, CheckSchedule(existing, at(16, 45), 2*time.Hour))
	assert.NoError(t, CheckSchedule(existing, at(21, 15), 2*time.Hour))
}

func TestCheckScheduleReportsFirstConflictOnly(t *testing.T) {
	existing := []ShowInterval{
		interval(1, 10, 0, 12, 0),
		interval(2, 13, 0, 15, 0),
	}
	// Candidate 11:00-14:00 collides with both; the first hit wins.
	err := CheckSchedule(existing, at(11, 0), 3*time.Hour)
	require.Error(t, err)
	assert.Equal(t, uint64(1), err.(*Error).ConflictingShowtimeID)
}
