package domain

import "time"

// MaxShowtimeOverrun is how much longer than the movie a showtime may occupy its theater.
const MaxShowtimeOverrun = 30 * time.Minute

// Showtime is a screening of a movie in a theater over a time window.
type Showtime struct {
	ID        int64
	MovieID   int64
	Price     float64
	Theater   string
	StartTime time.Time
	EndTime   time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Window returns the half-open interval the showtime occupies.
func (s Showtime) Window() Window {
	return Window{Start: s.StartTime, End: s.EndTime}
}

// ShowtimeInput carries the mutable showtime fields for create and update.
type ShowtimeInput struct {
	MovieID   int64
	Price     float64
	Theater   string
	StartTime time.Time
	EndTime   time.Time
}

// Window returns the requested interval.
func (in ShowtimeInput) Window() Window {
	return Window{Start: in.StartTime, End: in.EndTime}
}

// Window is a half-open [Start, End) interval.
type Window struct {
	Start time.Time
	End   time.Time
}

// Duration is End-Start with any sub-second remainder dropped.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start).Truncate(time.Second)
}

// Overlaps reports whether two windows in the same theater conflict. Windows that
// touch at an endpoint, compared to the second, do not.
func (w Window) Overlaps(o Window) bool {
	if !w.Start.Before(o.End) || !w.End.After(o.Start) {
		return false
	}
	if sameSecond(w.End, o.Start) || sameSecond(o.End, w.Start) {
		return false
	}
	return true
}

// CheckFits validates the window against a movie runtime: the window must be
// ordered and its duration must lie in [runtime, runtime+MaxShowtimeOverrun].
func (w Window) CheckFits(movie Movie) error {
	d := w.Duration()
	if d <= 0 {
		return ErrInvalidTimeOrder
	}
	minimum := movie.Runtime()
	maximum := minimum + MaxShowtimeOverrun
	if d < minimum || d > maximum {
		return &DurationError{
			ShowtimeMinutes: int64(d / time.Minute),
			MovieMinutes:    int64(minimum / time.Minute),
			MaxMinutes:      int64(maximum / time.Minute),
		}
	}
	return nil
}

func sameSecond(a, b time.Time) bool {
	return a.Truncate(time.Second).Equal(b.Truncate(time.Second))
}
