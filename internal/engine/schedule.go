package engine

import "time"

// MinShowGap is the mandatory buffer between two showtimes in the same room:
// one must end at least this long before the next begins.
const MinShowGap = 15 * time.Minute

// ShowInterval is an existing showtime's occupancy of a room, as returned by
// the showtime repository for one room and date.
type ShowInterval struct {
	ShowtimeID uint64
	Title      string
	StartsAt   time.Time
	EndsAt     time.Time
}

// CheckSchedule decides whether a candidate showtime (start + duration) fits
// into a room's existing timeline under the MinShowGap buffer. It returns
// nil when the candidate is schedulable and the first conflict found
// otherwise; it does not enumerate every conflict. The same function gates
// both ad-hoc private showtime creation and ordinary catalog showtime
// create/update, so the two flows cannot drift apart.
//
// Pure over its inputs: callers must re-run it whenever the room, date,
// start time or duration changes rather than caching a verdict.
func CheckSchedule(existing []ShowInterval, start time.Time, duration time.Duration) error {
	end := start.Add(duration)
	endWithGap := end.Add(MinShowGap)

	for _, show := range existing {
		// Candidate sits on top of, or runs into the buffer before, an
		// existing show.
		if start.Before(show.EndsAt) && endWithGap.After(show.StartsAt) {
			if !end.After(show.StartsAt) {
				// No literal overlap, only the trailing buffer intrudes.
				return conflictError(BufferViolation, show,
					"ends too close to the next show %q, needs %d more minutes before %s",
					show.Title, int(MinShowGap.Minutes()), show.StartsAt.Format("15:04"))
			}
			return conflictError(DirectOverlap, show,
				"overlaps the show %q scheduled %s-%s",
				show.Title, show.StartsAt.Format("15:04"), show.EndsAt.Format("15:04"))
		}
		// Candidate begins inside the buffer after an existing show.
		if lead := start.Sub(show.EndsAt); lead >= 0 && lead < MinShowGap {
			return conflictError(BufferViolation, show,
				"starts too soon after the previous show %q, earliest start is %s",
				show.Title, show.EndsAt.Add(MinShowGap).Format("15:04"))
		}
	}
	return nil
}

// conflictError tags a schedule conflict with the showtime that triggered
// it, so the operator UI can highlight the offending slot in the timeline.
func conflictError(kind ErrorKind, show ShowInterval, format string, args ...any) *Error {
	e := newError(kind, format, args...)
	e.Field = "start_time"
	e.ConflictingShowtimeID = show.ShowtimeID
	return e
}
