// Package events publishes domain events after a transaction commits. Delivery
// is best effort: a failed publish is logged by the caller and never undoes the
// committed write.
package events

import (
	"context"
	"time"
)

// Event types.
const (
	TypeBookingCreated  = "booking.created"
	TypeShowtimeDeleted = "showtime.deleted"
	TypeMovieDeleted    = "movie.deleted"
)

// Event is the envelope written to the broker.
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}

// BookingCreated is the payload of TypeBookingCreated.
type BookingCreated struct {
	BookingID  string    `json:"bookingId"`
	ShowtimeID int64     `json:"showtimeId"`
	SeatNumber int       `json:"seatNumber"`
	UserID     string    `json:"userId"`
	Theater    string    `json:"theater"`
	StartTime  time.Time `json:"startTime"`
}

// ShowtimeDeleted is the payload of TypeShowtimeDeleted.
type ShowtimeDeleted struct {
	ShowtimeID       int64 `json:"showtimeId"`
	BookingsCanceled int64 `json:"bookingsCanceled"`
}

// MovieDeleted is the payload of TypeMovieDeleted.
type MovieDeleted struct {
	MovieID          int64  `json:"movieId"`
	Title            string `json:"title"`
	ShowtimesDeleted int64  `json:"showtimesDeleted"`
	BookingsCanceled int64  `json:"bookingsCanceled"`
}

// Publisher delivers events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// New stamps an event with the current time.
func New(eventType string, payload any) Event {
	return Event{Type: eventType, OccurredAt: time.Now().UTC(), Payload: payload}
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
