package repository

import (
	"context"
	"database/sql"
	"strings"
)

// SeatRepo provides read access to the physical seat layout and to seat
// availability for a showtime. Availability is always derived from the
// ticket ledger and committed bookings, never cached.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

// SeatRecord mirrors the seats table. RowLabel and SeatNumber identify the
// seat's position; SeatType indicates its class (STANDARD, VIP, ACCESSIBLE).
type SeatRecord struct {
	ID         uint64 `json:"id"`
	RoomID     uint64 `json:"room_id"`
	RowLabel   string `json:"row_label"`
	SeatNumber uint32 `json:"seat_number"`
	SeatType   string `json:"seat_type"`
	IsActive   bool   `json:"is_active"`
}

// SeatStatus pairs a seat with its availability for one showtime.
type SeatStatus struct {
	SeatRecord
	Available bool `json:"available"`
}

// ListByRoom returns every active seat in a room ordered by row and number.
func (r *SeatRepo) ListByRoom(ctx context.Context, roomID uint64) ([]SeatRecord, error) {
	const q = `SELECT id, room_id, row_label, seat_number, seat_type, is_active
               FROM seats
               WHERE room_id = ? AND is_active = 1
               ORDER BY row_label, seat_number`
	rows, err := r.db.QueryContext(ctx, q, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]SeatRecord, 0)
	for rows.Next() {
		var s SeatRecord
		if err := rows.Scan(&s.ID, &s.RoomID, &s.RowLabel, &s.SeatNumber, &s.SeatType, &s.IsActive); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// LabelsByIDs returns display labels like "C4" for the given seats, ordered
// by row and number. Used when assembling the completion event.
func (r *SeatRepo) LabelsByIDs(ctx context.Context, seatIDs []uint64) ([]string, error) {
	if len(seatIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(seatIDs))
	args := make([]interface{}, len(seatIDs))
	for i, id := range seatIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	q := `SELECT CONCAT(row_label, seat_number) FROM seats
          WHERE id IN (` + strings.Join(placeholders, ",") + `)
          ORDER BY row_label, seat_number`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		out = append(out, label)
	}
	return out, rows.Err()
}

// MapForShowtime returns the full seat map of the showtime's room with
// per-seat availability. A seat is unavailable when a SOLD ticket exists
// for it or when a booking in APPROVED or COMPLETED status holds it. Seats
// held by excludeBookingID are reported available so a booking's own
// proposal never blocks itself; pass 0 to exclude nothing.
func (r *SeatRepo) MapForShowtime(ctx context.Context, showtimeID, excludeBookingID uint64) ([]SeatStatus, error) {
	const q = `SELECT se.id, se.room_id, se.row_label, se.seat_number, se.seat_type, se.is_active,
                      (NOT EXISTS (
                          SELECT 1 FROM tickets t
                          WHERE t.showtime_id = ? AND t.seat_id = se.id AND t.status = 'SOLD'
                      ) AND NOT EXISTS (
                          SELECT 1 FROM booking_seats bs
                          JOIN bookings b ON b.id = bs.booking_id
                          WHERE bs.showtime_id = ? AND bs.seat_id = se.id
                            AND b.status IN ('APPROVED','COMPLETED')
                            AND b.id <> ?
                      )) AS available
               FROM seats se
               JOIN showtimes st ON st.room_id = se.room_id
               WHERE st.id = ? AND se.is_active = 1
               ORDER BY se.row_label, se.seat_number`
	rows, err := r.db.QueryContext(ctx, q, showtimeID, showtimeID, excludeBookingID, showtimeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]SeatStatus, 0)
	for rows.Next() {
		var s SeatStatus
		if err := rows.Scan(&s.ID, &s.RoomID, &s.RowLabel, &s.SeatNumber, &s.SeatType, &s.IsActive, &s.Available); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UnavailableTx re-checks the given seats against the ledger inside a
// transaction and returns the subset that is no longer free. Rows are
// locked so a concurrent sale cannot slip in between the check and the
// commit of the surrounding transaction.
func (r *SeatRepo) UnavailableTx(ctx context.Context, tx *sql.Tx, showtimeID uint64, seatIDs []uint64, excludeBookingID uint64) ([]uint64, error) {
	if len(seatIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(seatIDs))
	args := make([]interface{}, 0, len(seatIDs)+2)
	args = append(args, showtimeID)
	for i, id := range seatIDs {
		placeholders[i] = "?"
		args = append(args, id)
	}
	in := strings.Join(placeholders, ",")
	taken := make(map[uint64]bool)

	ticketQ := `SELECT seat_id FROM tickets
                WHERE showtime_id = ? AND seat_id IN (` + in + `) AND status = 'SOLD'
                FOR UPDATE`
	trows, err := tx.QueryContext(ctx, ticketQ, args...)
	if err != nil {
		return nil, err
	}
	for trows.Next() {
		var sid uint64
		if err := trows.Scan(&sid); err != nil {
			trows.Close()
			return nil, err
		}
		taken[sid] = true
	}
	if err := trows.Err(); err != nil {
		trows.Close()
		return nil, err
	}
	trows.Close()

	bookingQ := `SELECT bs.seat_id FROM booking_seats bs
                 JOIN bookings b ON b.id = bs.booking_id
                 WHERE bs.showtime_id = ? AND bs.seat_id IN (` + in + `)
                   AND b.status IN ('APPROVED','COMPLETED') AND b.id <> ?
                 FOR UPDATE`
	bargs := append(append([]interface{}{}, args...), excludeBookingID)
	brows, err := tx.QueryContext(ctx, bookingQ, bargs...)
	if err != nil {
		return nil, err
	}
	defer brows.Close()
	for brows.Next() {
		var sid uint64
		if err := brows.Scan(&sid); err != nil {
			return nil, err
		}
		taken[sid] = true
	}
	if err := brows.Err(); err != nil {
		return nil, err
	}

	var out []uint64
	for _, id := range seatIDs {
		if taken[id] {
			out = append(out, id)
		}
	}
	return out, nil
}
