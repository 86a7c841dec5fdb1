package domain

import (
	"fmt"
	"strings"
	"time"
)

// Kind groups domain failures into the response categories callers program against.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindConflict
	KindInvalidRange
	KindInvalidOrder
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not-found"
	case KindConflict:
		return "conflict"
	case KindInvalidRange:
		return "invalid-range"
	case KindInvalidOrder:
		return "invalid-order"
	default:
		return "unknown"
	}
}

// Error is a business-rule failure. The package-level values below are the whole
// taxonomy; richer errors unwrap to one of them.
type Error struct {
	Code    string
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrMovieNotFound       = &Error{Code: "MOVIE_NOT_FOUND", Kind: KindNotFound, Message: "movie not found"}
	ErrMovieAlreadyExists  = &Error{Code: "MOVIE_ALREADY_EXISTS", Kind: KindConflict, Message: "a movie with this title already exists"}
	ErrMovieHasShowtimes   = &Error{Code: "MOVIE_HAS_SHOWTIMES", Kind: KindConflict, Message: "cannot update a movie with active showtimes"}
	ErrShowtimeNotFound    = &Error{Code: "SHOWTIME_NOT_FOUND", Kind: KindNotFound, Message: "showtime not found"}
	ErrShowtimeHasBookings = &Error{Code: "SHOWTIME_HAS_BOOKINGS", Kind: KindConflict, Message: "cannot update a showtime with existing bookings"}
	ErrShowtimeOverlap     = &Error{Code: "SHOWTIME_OVERLAP", Kind: KindConflict, Message: "showtime overlaps another showtime in the same theater"}
	ErrInvalidDuration     = &Error{Code: "INVALID_DURATION", Kind: KindInvalidRange, Message: "showtime duration does not match the movie duration"}
	ErrInvalidTimeOrder    = &Error{Code: "INVALID_TIME_ORDER", Kind: KindInvalidOrder, Message: "end time must be after start time"}
	ErrSeatAlreadyBooked   = &Error{Code: "SEAT_ALREADY_BOOKED", Kind: KindConflict, Message: "seat is already booked for this showtime"}
)

// DurationError reports a showtime window outside the movie's allowed range.
type DurationError struct {
	ShowtimeMinutes int64
	MovieMinutes    int64
	MaxMinutes      int64
}

func (e *DurationError) Error() string {
	return fmt.Sprintf("showtime duration (%d minutes) must be between movie duration (%d minutes) and movie duration + 30 minutes (%d minutes)",
		e.ShowtimeMinutes, e.MovieMinutes, e.MaxMinutes)
}

func (e *DurationError) Unwrap() error { return ErrInvalidDuration }

// Details exposes the offending numbers to the response layer.
func (e *DurationError) Details() any {
	return map[string]int64{
		"showtimeMinutes": e.ShowtimeMinutes,
		"movieMinutes":    e.MovieMinutes,
		"maxMinutes":      e.MaxMinutes,
	}
}

// OverlapError lists the showtimes a requested window collides with.
type OverlapError struct {
	Theater   string
	Conflicts []Showtime
}

func (e *OverlapError) Error() string {
	parts := make([]string, 0, len(e.Conflicts))
	for _, st := range e.Conflicts {
		parts = append(parts, fmt.Sprintf("Showtime %d: %s - %s",
			st.ID, st.StartTime.UTC().Format(time.RFC3339Nano), st.EndTime.UTC().Format(time.RFC3339Nano)))
	}
	return fmt.Sprintf("showtime conflicts with existing showtimes in %s. Conflicting showtimes: %s",
		e.Theater, strings.Join(parts, ", "))
}

func (e *OverlapError) Unwrap() error { return ErrShowtimeOverlap }

// Details exposes the conflicting ids and windows to the response layer.
func (e *OverlapError) Details() any {
	type conflict struct {
		ID        int64     `json:"id"`
		StartTime time.Time `json:"startTime"`
		EndTime   time.Time `json:"endTime"`
	}
	out := make([]conflict, 0, len(e.Conflicts))
	for _, st := range e.Conflicts {
		out = append(out, conflict{ID: st.ID, StartTime: st.StartTime.UTC(), EndTime: st.EndTime.UTC()})
	}
	return map[string]any{"theater": e.Theater, "conflicts": out}
}

// SeatTakenError identifies the contested seat.
type SeatTakenError struct {
	ShowtimeID int64
	SeatNumber int
}

func (e *SeatTakenError) Error() string {
	return fmt.Sprintf("seat %d is already booked for showtime %d", e.SeatNumber, e.ShowtimeID)
}

func (e *SeatTakenError) Unwrap() error { return ErrSeatAlreadyBooked }
