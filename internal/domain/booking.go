package domain

import "time"

// Booking allocates one seat of a showtime to a user.
type Booking struct {
	ID         string
	ShowtimeID int64
	SeatNumber int
	UserID     string
	CreatedAt  time.Time
}

// BookingInput is the request to allocate a seat.
type BookingInput struct {
	ShowtimeID int64
	SeatNumber int
	UserID     string
}
