package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// BookingRepo provides access to group bookings and their reserved seats.
// A booking is created by the intake flow and then worked by staff through
// its lifecycle; seats reserved under a booking live in the booking_seats
// table. All timestamps are stored in UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions that
// span the booking and ticket-ledger tables.
func (r *BookingRepo) DB() *sql.DB { return r.db }

// BookingRecord mirrors the schema of the bookings table plus the seat IDs
// reserved under it. It is the shape handed to the lifecycle engine.
type BookingRecord struct {
	ID                 uint64    `json:"id"`
	CustomerName       string    `json:"customer_name"`
	ContactPhone       *string   `json:"contact_phone,omitempty"`
	ServiceType        string    `json:"service_type"`
	Status             string    `json:"status"`
	GuestCount         int       `json:"guest_count"`
	AssignedShowtimeID *uint64   `json:"assigned_showtime_id,omitempty"`
	PriceCents         *uint32   `json:"price_cents,omitempty"`
	RejectionReason    *string   `json:"rejection_reason,omitempty"`
	AdminNotes         *string   `json:"admin_notes,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
	SeatIDs            []uint64  `json:"seat_ids"`
}

// BookingDetail is the display shape returned to the console list and
// detail views. It joins in the assigned showtime and room when present.
type BookingDetail struct {
	ID                 uint64              `json:"id"`
	CustomerName       string              `json:"customer_name"`
	ContactPhone       *string             `json:"contact_phone,omitempty"`
	ServiceType        string              `json:"service_type"`
	Status             string              `json:"status"`
	GuestCount         int                 `json:"guest_count"`
	AssignedShowtimeID *uint64             `json:"assigned_showtime_id,omitempty"`
	ShowtimeTitle      *string             `json:"showtime_title,omitempty"`
	RoomName           *string             `json:"room_name,omitempty"`
	StartsAt           *time.Time          `json:"starts_at,omitempty"`
	EndsAt             *time.Time          `json:"ends_at,omitempty"`
	PriceCents         *uint32             `json:"price_cents,omitempty"`
	RejectionReason    *string             `json:"rejection_reason,omitempty"`
	AdminNotes         *string             `json:"admin_notes,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
	Seats              []BookingSeatDetail `json:"seats"`
}

// BookingSeatDetail identifies one reserved seat with its label for display.
type BookingSeatDetail struct {
	SeatID     uint64 `json:"seat_id"`
	RowLabel   string `json:"row_label"`
	SeatNumber uint32 `json:"seat_number"`
}

const bookingColumns = `b.id, b.customer_name, b.contact_phone, b.service_type, b.status,
        b.guest_count, b.assigned_showtime_id, b.price_cents, b.rejection_reason,
        b.admin_notes, b.created_at, b.updated_at`

func scanBooking(scan func(dest ...interface{}) error) (*BookingRecord, error) {
	var rec BookingRecord
	var phone, reason, notes sql.NullString
	var showtimeID sql.NullInt64
	var price sql.NullInt64
	err := scan(
		&rec.ID, &rec.CustomerName, &phone, &rec.ServiceType, &rec.Status,
		&rec.GuestCount, &showtimeID, &price, &reason,
		&notes, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if phone.Valid {
		p := phone.String
		rec.ContactPhone = &p
	}
	if showtimeID.Valid {
		id := uint64(showtimeID.Int64)
		rec.AssignedShowtimeID = &id
	}
	if price.Valid {
		c := uint32(price.Int64)
		rec.PriceCents = &c
	}
	if reason.Valid {
		s := reason.String
		rec.RejectionReason = &s
	}
	if notes.Valid {
		s := notes.String
		rec.AdminNotes = &s
	}
	return &rec, nil
}

// GetByID loads a single booking and its reserved seat IDs. It returns
// sql.ErrNoRows when the booking does not exist.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*BookingRecord, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.id = ?`
	rec, err := scanBooking(r.db.QueryRowContext(ctx, q, id).Scan)
	if err != nil {
		return nil, err
	}
	rec.SeatIDs, err = r.seatIDs(ctx, r.db.QueryContext, id)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// GetForUpdateTx loads a booking with a row lock inside the given
// transaction. Transitions use it so that concurrent approvals of the
// same booking serialize on the row.
func (r *BookingRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*BookingRecord, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.id = ? FOR UPDATE`
	rec, err := scanBooking(tx.QueryRowContext(ctx, q, id).Scan)
	if err != nil {
		return nil, err
	}
	rec.SeatIDs, err = r.seatIDs(ctx, tx.QueryContext, id)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

type queryFunc func(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)

func (r *BookingRepo) seatIDs(ctx context.Context, query queryFunc, bookingID uint64) ([]uint64, error) {
	const q = `SELECT bs.seat_id
               FROM booking_seats bs
               JOIN seats se ON se.id = bs.seat_id
               WHERE bs.booking_id = ?
               ORDER BY se.row_label, se.seat_number`
	rows, err := query(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var sid uint64
		if err := rows.Scan(&sid); err != nil {
			return nil, err
		}
		ids = append(ids, sid)
	}
	return ids, rows.Err()
}

// List returns bookings for the console work queue, newest first. Both
// filters are optional; pass an empty string to skip one. Seats for all
// returned bookings are loaded in a single follow-up query.
func (r *BookingRepo) List(ctx context.Context, status, serviceType string) ([]BookingDetail, error) {
	q := `SELECT ` + bookingColumns + `, st.title, st.starts_at, st.ends_at, rm.name
          FROM bookings b
          LEFT JOIN showtimes st ON st.id = b.assigned_showtime_id
          LEFT JOIN rooms rm ON rm.id = st.room_id`
	var conds []string
	var args []interface{}
	if status != "" {
		conds = append(conds, "b.status = ?")
		args = append(args, status)
	}
	if serviceType != "" {
		conds = append(conds, "b.service_type = ?")
		args = append(args, serviceType)
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY b.created_at DESC"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]BookingDetail, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var rec *BookingRecord
		var title, roomName sql.NullString
		var startsAt, endsAt sql.NullTime
		rec, err = scanBooking(func(dest ...interface{}) error {
			dest = append(dest, &title, &startsAt, &endsAt, &roomName)
			return rows.Scan(dest...)
		})
		if err != nil {
			return nil, err
		}
		d := BookingDetail{
			ID:                 rec.ID,
			CustomerName:       rec.CustomerName,
			ContactPhone:       rec.ContactPhone,
			ServiceType:        rec.ServiceType,
			Status:             rec.Status,
			GuestCount:         rec.GuestCount,
			AssignedShowtimeID: rec.AssignedShowtimeID,
			PriceCents:         rec.PriceCents,
			RejectionReason:    rec.RejectionReason,
			AdminNotes:         rec.AdminNotes,
			CreatedAt:          rec.CreatedAt,
			UpdatedAt:          rec.UpdatedAt,
			Seats:              []BookingSeatDetail{},
		}
		if title.Valid {
			t := title.String
			d.ShowtimeTitle = &t
		}
		if roomName.Valid {
			n := roomName.String
			d.RoomName = &n
		}
		if startsAt.Valid {
			t := startsAt.Time.UTC()
			d.StartsAt = &t
		}
		if endsAt.Valid {
			t := endsAt.Time.UTC()
			d.EndsAt = &t
		}
		index[d.ID] = len(details)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return details, nil
	}
	// Populate seats for all bookings in a single query.
	ids := make([]interface{}, 0, len(details))
	placeholders := make([]string, 0, len(details))
	for _, d := range details {
		ids = append(ids, d.ID)
		placeholders = append(placeholders, "?")
	}
	seatQuery := `SELECT bs.booking_id, bs.seat_id, se.row_label, se.seat_number
                  FROM booking_seats bs
                  JOIN seats se ON se.id = bs.seat_id
                  WHERE bs.booking_id IN (` + strings.Join(placeholders, ",") + `)
                  ORDER BY bs.booking_id, se.row_label, se.seat_number`
	srows, err := r.db.QueryContext(ctx, seatQuery, ids...)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var bid, sid uint64
		var rowLabel string
		var seatNum uint32
		if err := srows.Scan(&bid, &sid, &rowLabel, &seatNum); err != nil {
			return nil, err
		}
		idx, ok := index[bid]
		if !ok {
			continue
		}
		details[idx].Seats = append(details[idx].Seats, BookingSeatDetail{
			SeatID: sid, RowLabel: rowLabel, SeatNumber: seatNum,
		})
	}
	if err := srows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// ApplyTransitionTx persists the outcome of a lifecycle transition: the new
// status plus any fields resolved at transition time. The reserved seat set
// is replaced wholesale so the table always mirrors the record.
func (r *BookingRepo) ApplyTransitionTx(ctx context.Context, tx *sql.Tx, rec *BookingRecord) error {
	const q = `UPDATE bookings
               SET status = ?, assigned_showtime_id = ?, price_cents = ?,
                   rejection_reason = ?, admin_notes = ?, updated_at = UTC_TIMESTAMP()
               WHERE id = ?`
	var showtimeID interface{}
	if rec.AssignedShowtimeID != nil {
		showtimeID = *rec.AssignedShowtimeID
	}
	var price interface{}
	if rec.PriceCents != nil {
		price = *rec.PriceCents
	}
	var reason interface{}
	if rec.RejectionReason != nil {
		reason = *rec.RejectionReason
	}
	var notes interface{}
	if rec.AdminNotes != nil {
		notes = *rec.AdminNotes
	}
	if _, err := tx.ExecContext(ctx, q, rec.Status, showtimeID, price, reason, notes, rec.ID); err != nil {
		return err
	}
	return r.ReplaceSeatsTx(ctx, tx, rec.ID, rec.AssignedShowtimeID, rec.SeatIDs)
}

// ReplaceSeatsTx swaps a booking's reserved seat set within a transaction.
// Passing an empty slice clears the reservation. Seats can only be stored
// against a showtime, so showtimeID must be non-nil when seatIDs is not
// empty.
func (r *BookingRepo) ReplaceSeatsTx(ctx context.Context, tx *sql.Tx, bookingID uint64, showtimeID *uint64, seatIDs []uint64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM booking_seats WHERE booking_id = ?`, bookingID); err != nil {
		return err
	}
	if len(seatIDs) == 0 {
		return nil
	}
	if showtimeID == nil {
		return ErrConflict
	}
	query := `INSERT INTO booking_seats (booking_id, showtime_id, seat_id) VALUES `
	args := make([]interface{}, 0, len(seatIDs)*3)
	for i, sid := range seatIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, bookingID, *showtimeID, sid)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// UpdateSeats replaces a booking's reserved seats outside the lifecycle
// transition path, used while staff refine a proposal. It opens its own
// transaction.
func (r *BookingRepo) UpdateSeats(ctx context.Context, bookingID uint64, showtimeID *uint64, seatIDs []uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := r.ReplaceSeatsTx(ctx, tx, bookingID, showtimeID, seatIDs); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE bookings SET updated_at = UTC_TIMESTAMP() WHERE id = ?`, bookingID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
