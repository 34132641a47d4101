package repository

import (
	"context"
	"database/sql"
	"errors"
)

// Room represents a screening room. SeatRows and SeatCols describe the
// nominal seat layout; the seats table is authoritative for the actual map.
type Room struct {
	ID          uint64         `json:"id"`
	Name        string         `json:"name"`
	Description sql.NullString `json:"-"`
	SeatRows    sql.NullInt32  `json:"-"`
	SeatCols    sql.NullInt32  `json:"-"`
	IsActive    bool           `json:"is_active"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
}

// ErrRoomNotFound is returned when a room lookup fails.
var ErrRoomNotFound = errors.New("room not found")

// RoomRepo provides methods to retrieve rooms. It embeds a database
// handle to perform queries.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo constructs a RoomRepo with the given DB handle.
func NewRoomRepo(db *sql.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

const roomColumns = `id, name, description, seat_rows, seat_cols, is_active, created_at, updated_at`

// GetByID retrieves a room by its ID. It returns ErrRoomNotFound when no
// row is found.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`
	var rm Room
	err := r.db.QueryRowContext(ctx, q, id).Scan(&rm.ID, &rm.Name, &rm.Description, &rm.SeatRows, &rm.SeatCols, &rm.IsActive, &rm.CreatedAt, &rm.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &rm, nil
}

// ListActive returns all rooms currently in use, ordered by ID.
func (r *RoomRepo) ListActive(ctx context.Context) ([]*Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE is_active = 1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Room
	for rows.Next() {
		rm := new(Room)
		if err := rows.Scan(&rm.ID, &rm.Name, &rm.Description, &rm.SeatRows, &rm.SeatCols, &rm.IsActive, &rm.CreatedAt, &rm.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
