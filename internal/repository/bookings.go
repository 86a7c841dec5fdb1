package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Clark-Hu/popcorn-palace/internal/domain"
)

// BookingsRepository provides persistence helpers for seat bookings.
type BookingsRepository struct {
	db DBTX
}

const bookingColumns = `
    id::text,
    showtime_id,
    seat_number,
    user_id,
    created_at
`

// BookingCreateParams bundles the fields required to create a booking.
type BookingCreateParams struct {
	ID         string
	ShowtimeID int64
	SeatNumber int
	UserID     string
}

// Create inserts a booking. The unique (showtime_id, seat_number) constraint
// decides races: created=false means another booking already holds the seat.
func (r *BookingsRepository) Create(ctx context.Context, params BookingCreateParams) (booking domain.Booking, created bool, err error) {
	query := fmt.Sprintf(`
        INSERT INTO bookings (id, showtime_id, seat_number, user_id)
        VALUES ($1::uuid,$2,$3,$4)
        ON CONFLICT ON CONSTRAINT unique_seat_per_showtime DO NOTHING
        RETURNING %s
    `, bookingColumns)

	row := r.db.QueryRow(ctx, query, params.ID, params.ShowtimeID, params.SeatNumber, params.UserID)
	booking, err = scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Booking{}, false, nil
		}
		return domain.Booking{}, false, err
	}
	return booking, true, nil
}

// SeatTaken reports whether the seat already has a booking for the showtime.
func (r *BookingsRepository) SeatTaken(ctx context.Context, showtimeID int64, seat int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM bookings WHERE showtime_id = $1 AND seat_number = $2)`,
		showtimeID, seat).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("seat taken: %w", err)
	}
	return exists, nil
}

// ExistsForShowtime reports whether the showtime has any booking.
func (r *BookingsRepository) ExistsForShowtime(ctx context.Context, showtimeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE showtime_id = $1)`, showtimeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("bookings exist for showtime: %w", err)
	}
	return exists, nil
}

// DeleteByShowtime removes every booking of a showtime.
func (r *BookingsRepository) DeleteByShowtime(ctx context.Context, showtimeID int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE showtime_id = $1`, showtimeID)
	if err != nil {
		return 0, fmt.Errorf("delete bookings of showtime: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteByMovie removes every booking of every showtime of a movie.
func (r *BookingsRepository) DeleteByMovie(ctx context.Context, movieID int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `
        DELETE FROM bookings
        WHERE showtime_id IN (SELECT id FROM showtimes WHERE movie_id = $1)
    `, movieID)
	if err != nil {
		return 0, fmt.Errorf("delete bookings of movie: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanBooking(row pgx.Row) (domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(
		&b.ID,
		&b.ShowtimeID,
		&b.SeatNumber,
		&b.UserID,
		&b.CreatedAt,
	)
	if err != nil {
		return domain.Booking{}, err
	}
	return b, nil
}
