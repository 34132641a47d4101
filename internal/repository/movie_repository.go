package repository

import (
	"context"
	"database/sql"
	"errors"
)

// Movie represents a title currently in the catalogue. RuntimeMin is the
// running time in minutes and drives the end time of regular showtimes.
type Movie struct {
	ID         uint64 `json:"id"`
	Title      string `json:"title"`
	RuntimeMin uint32 `json:"runtime_min"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// ErrMovieNotFound is returned when a movie lookup fails.
var ErrMovieNotFound = errors.New("movie not found")

// MovieRepo provides read access to the movie catalogue.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo constructs a MovieRepo with the given DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

// GetByID retrieves a movie by its ID. It returns ErrMovieNotFound when
// no row is found.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*Movie, error) {
	const q = `SELECT id, title, runtime_min, status, created_at, updated_at FROM movies WHERE id = ?`
	var m Movie
	err := r.db.QueryRowContext(ctx, q, id).Scan(&m.ID, &m.Title, &m.RuntimeMin, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return &m, nil
}

// ListShowing returns all movies currently programmed, ordered by title.
func (r *MovieRepo) ListShowing(ctx context.Context) ([]*Movie, error) {
	const q = `SELECT id, title, runtime_min, status, created_at, updated_at
               FROM movies WHERE status = 'SHOWING' ORDER BY title`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Movie
	for rows.Next() {
		m := new(Movie)
		if err := rows.Scan(&m.ID, &m.Title, &m.RuntimeMin, &m.Status, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
