package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ErrShowtimeNotFound is returned when a showtime lookup matches no row.
var ErrShowtimeNotFound = errors.New("showtime not found")

// ShowtimeRepo provides CRUD operations on scheduled showtimes. A showtime
// belongs to a room and optionally references a movie; private events
// created for a booking carry is_private and may have no movie at all.
type ShowtimeRepo struct {
	db *sql.DB
}

// NewShowtimeRepo returns a new ShowtimeRepo bound to the given database.
func NewShowtimeRepo(db *sql.DB) *ShowtimeRepo { return &ShowtimeRepo{db: db} }

// ShowtimeRecord mirrors the showtimes table.
type ShowtimeRecord struct {
	ID        uint64    `json:"id"`
	RoomID    uint64    `json:"room_id"`
	MovieID   *uint64   `json:"movie_id,omitempty"`
	Title     string    `json:"title"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	Status    string    `json:"status"`
	IsPrivate bool      `json:"is_private"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Showtime status enumeration values.
const (
	ShowtimeScheduled = "SCHEDULED"
	ShowtimeCancelled = "CANCELLED"
	ShowtimeFinished  = "FINISHED"
)

const showtimeColumns = `id, room_id, movie_id, title, starts_at, ends_at, status, is_private, created_at, updated_at`

func scanShowtime(scan func(dest ...interface{}) error) (*ShowtimeRecord, error) {
	var rec ShowtimeRecord
	var movieID sql.NullInt64
	err := scan(
		&rec.ID, &rec.RoomID, &movieID, &rec.Title, &rec.StartsAt, &rec.EndsAt,
		&rec.Status, &rec.IsPrivate, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if movieID.Valid {
		id := uint64(movieID.Int64)
		rec.MovieID = &id
	}
	rec.StartsAt = rec.StartsAt.UTC()
	rec.EndsAt = rec.EndsAt.UTC()
	return &rec, nil
}

// GetByID returns a single showtime or ErrShowtimeNotFound.
func (r *ShowtimeRepo) GetByID(ctx context.Context, id uint64) (*ShowtimeRecord, error) {
	const q = `SELECT ` + showtimeColumns + ` FROM showtimes WHERE id = ?`
	rec, err := scanShowtime(r.db.QueryRowContext(ctx, q, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrShowtimeNotFound
	}
	return rec, err
}

// ListScheduledByRoom returns all SCHEDULED showtimes for a room whose
// interval touches [from, to), ordered by start time. Both the console's
// daily view and the conflict check feed off this query.
func (r *ShowtimeRepo) ListScheduledByRoom(ctx context.Context, roomID uint64, from, to time.Time) ([]ShowtimeRecord, error) {
	const q = `SELECT ` + showtimeColumns + `
               FROM showtimes
               WHERE room_id = ? AND status = ? AND starts_at < ? AND ends_at > ?
               ORDER BY starts_at ASC`
	rows, err := r.db.QueryContext(ctx, q, roomID, ShowtimeScheduled, to.UTC(), from.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ShowtimeRecord, 0)
	for rows.Next() {
		rec, err := scanShowtime(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// Create inserts a new showtime and reads the full row back so generated
// fields are populated on the record.
func (r *ShowtimeRepo) Create(ctx context.Context, rec *ShowtimeRecord) error {
	const q = `INSERT INTO showtimes (room_id, movie_id, title, starts_at, ends_at, status, is_private)
               VALUES (?, ?, ?, ?, ?, ?, ?)`
	var movieID interface{}
	if rec.MovieID != nil {
		movieID = *rec.MovieID
	}
	result, err := r.db.ExecContext(ctx, q, rec.RoomID, movieID, rec.Title,
		rec.StartsAt.UTC(), rec.EndsAt.UTC(), rec.Status, rec.IsPrivate)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = uint64(id)
	fresh, err := r.GetByID(ctx, rec.ID)
	if err != nil {
		return err
	}
	*rec = *fresh
	return nil
}

// Update rewrites the mutable fields of a showtime. It returns
// ErrShowtimeNotFound when no row matched.
func (r *ShowtimeRepo) Update(ctx context.Context, rec *ShowtimeRecord) error {
	const q = `UPDATE showtimes
               SET movie_id = ?, title = ?, starts_at = ?, ends_at = ?, status = ?, updated_at = UTC_TIMESTAMP()
               WHERE id = ?`
	var movieID interface{}
	if rec.MovieID != nil {
		movieID = *rec.MovieID
	}
	result, err := r.db.ExecContext(ctx, q, movieID, rec.Title,
		rec.StartsAt.UTC(), rec.EndsAt.UTC(), rec.Status, rec.ID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Either the row is missing or nothing changed; distinguish.
		if _, err := r.GetByID(ctx, rec.ID); err != nil {
			return err
		}
	}
	fresh, err := r.GetByID(ctx, rec.ID)
	if err != nil {
		return err
	}
	*rec = *fresh
	return nil
}

// HasCommittedBookings reports whether any APPROVED or COMPLETED booking is
// assigned to the showtime. Cancelling a showtime with committed bookings
// is blocked at the handler with ErrConflict.
func (r *ShowtimeRepo) HasCommittedBookings(ctx context.Context, showtimeID uint64) (bool, error) {
	const q = `SELECT COUNT(*) FROM bookings
               WHERE assigned_showtime_id = ? AND status IN ('APPROVED','COMPLETED')`
	var n int
	if err := r.db.QueryRowContext(ctx, q, showtimeID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}
