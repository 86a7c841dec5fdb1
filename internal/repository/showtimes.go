package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Clark-Hu/popcorn-palace/internal/domain"
)

// ShowtimesRepository provides persistence helpers for showtimes.
type ShowtimesRepository struct {
	db DBTX
}

const showtimeColumns = `
    id,
    movie_id,
    price,
    theater,
    start_time,
    end_time,
    created_at,
    updated_at
`

// Create inserts a showtime and returns it with its identity.
func (r *ShowtimesRepository) Create(ctx context.Context, in domain.ShowtimeInput) (domain.Showtime, error) {
	query := fmt.Sprintf(`
        INSERT INTO showtimes (movie_id, price, theater, start_time, end_time)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING %s
    `, showtimeColumns)

	row := r.db.QueryRow(ctx, query, in.MovieID, in.Price, in.Theater, in.StartTime, in.EndTime)
	return scanShowtime(row)
}

// GetByID fetches a showtime by its identifier.
func (r *ShowtimesRepository) GetByID(ctx context.Context, id int64, lock LockMode) (domain.Showtime, error) {
	query := fmt.Sprintf(`SELECT %s FROM showtimes WHERE id = $1%s`, showtimeColumns, lockClause(lock))
	st, err := scanShowtime(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Showtime{}, ErrNotFound
		}
		return domain.Showtime{}, err
	}
	return st, nil
}

// FindOverlapping returns the showtimes of theater whose window overlaps w,
// ignoring excludeID (pass 0 to exclude nothing). The range scan narrows the
// candidates; domain.Window.Overlaps makes the final decision so the boundary
// rule lives in one place.
func (r *ShowtimesRepository) FindOverlapping(ctx context.Context, theater string, w domain.Window, excludeID int64) ([]domain.Showtime, error) {
	query := fmt.Sprintf(`
        SELECT %s
        FROM showtimes
        WHERE theater = $1
          AND id <> $2
          AND start_time < $3
          AND end_time > $4
        ORDER BY start_time, id
    `, showtimeColumns)

	rows, err := r.db.Query(ctx, query, theater, excludeID, w.End, w.Start)
	if err != nil {
		return nil, fmt.Errorf("scan theater window: %w", err)
	}
	defer rows.Close()

	conflicts := make([]domain.Showtime, 0)
	for rows.Next() {
		st, err := scanShowtime(rows)
		if err != nil {
			return nil, err
		}
		if st.Window().Overlaps(w) {
			conflicts = append(conflicts, st)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return conflicts, nil
}

// ExistsForMovie reports whether any showtime references the movie.
func (r *ShowtimesRepository) ExistsForMovie(ctx context.Context, movieID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM showtimes WHERE movie_id = $1)`, movieID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("showtimes exist for movie: %w", err)
	}
	return exists, nil
}

// Update replaces every mutable field of the showtime.
func (r *ShowtimesRepository) Update(ctx context.Context, id int64, in domain.ShowtimeInput) (domain.Showtime, error) {
	query := fmt.Sprintf(`
        UPDATE showtimes
        SET movie_id = $2,
            price = $3,
            theater = $4,
            start_time = $5,
            end_time = $6,
            updated_at = now()
        WHERE id = $1
        RETURNING %s
    `, showtimeColumns)

	row := r.db.QueryRow(ctx, query, id, in.MovieID, in.Price, in.Theater, in.StartTime, in.EndTime)
	st, err := scanShowtime(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Showtime{}, ErrNotFound
		}
		return domain.Showtime{}, err
	}
	return st, nil
}

// DeleteByID removes a showtime. Its bookings must already be gone.
func (r *ShowtimesRepository) DeleteByID(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM showtimes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete showtime: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// LockByMovie takes FOR UPDATE locks on every showtime of a movie so no booking
// can attach to them until the transaction ends.
func (r *ShowtimesRepository) LockByMovie(ctx context.Context, movieID int64) (int, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM showtimes WHERE movie_id = $1 ORDER BY id FOR UPDATE`, movieID)
	if err != nil {
		return 0, fmt.Errorf("lock showtimes of movie: %w", err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		n++
	}
	return n, rows.Err()
}

// DeleteByMovie removes every showtime of a movie and returns how many went.
func (r *ShowtimesRepository) DeleteByMovie(ctx context.Context, movieID int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM showtimes WHERE movie_id = $1`, movieID)
	if err != nil {
		return 0, fmt.Errorf("delete showtimes of movie: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanShowtime(row pgx.Row) (domain.Showtime, error) {
	var st domain.Showtime
	err := row.Scan(
		&st.ID,
		&st.MovieID,
		&st.Price,
		&st.Theater,
		&st.StartTime,
		&st.EndTime,
		&st.CreatedAt,
		&st.UpdatedAt,
	)
	if err != nil {
		return domain.Showtime{}, err
	}
	st.StartTime = st.StartTime.UTC()
	st.EndTime = st.EndTime.UTC()
	return st, nil
}
