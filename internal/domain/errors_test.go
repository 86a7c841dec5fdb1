package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestTypedErrorsUnwrapToTaxonomy(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want *Error
	}{
		{"duration", &DurationError{ShowtimeMinutes: 50, MovieMinutes: 90, MaxMinutes: 120}, ErrInvalidDuration},
		{"overlap", &OverlapError{Theater: "T1"}, ErrShowtimeOverlap},
		{"seat", &SeatTakenError{ShowtimeID: 1, SeatNumber: 7}, ErrSeatAlreadyBooked},
		{"wrapped sentinel", fmt.Errorf("update: %w", ErrMovieHasShowtimes), ErrMovieHasShowtimes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var de *Error
			if !errors.As(tt.err, &de) {
				t.Fatalf("errors.As(%T) failed", tt.err)
			}
			if de != tt.want {
				t.Fatalf("unwrapped to %s, want %s", de.Code, tt.want.Code)
			}
		})
	}
}

func TestTaxonomyCodesAreDistinct(t *testing.T) {
	all := []*Error{
		ErrMovieNotFound, ErrMovieAlreadyExists, ErrMovieHasShowtimes,
		ErrShowtimeNotFound, ErrShowtimeHasBookings, ErrShowtimeOverlap,
		ErrInvalidDuration, ErrInvalidTimeOrder, ErrSeatAlreadyBooked,
	}
	seen := make(map[string]bool, len(all))
	for _, e := range all {
		if seen[e.Code] {
			t.Fatalf("duplicate code %s", e.Code)
		}
		seen[e.Code] = true
		if e.Kind.String() == "unknown" {
			t.Fatalf("%s has no kind", e.Code)
		}
	}
}

func TestOverlapErrorMessageListsConflicts(t *testing.T) {
	start := time.Date(2030, 1, 1, 20, 0, 0, 0, time.UTC)
	err := &OverlapError{
		Theater: "IMAX 2",
		Conflicts: []Showtime{
			{ID: 3, StartTime: start, EndTime: start.Add(2 * time.Hour)},
			{ID: 9, StartTime: start.Add(3 * time.Hour), EndTime: start.Add(5 * time.Hour)},
		},
	}
	msg := err.Error()
	for _, want := range []string{"IMAX 2", "Showtime 3: 2030-01-01T20:00:00Z - 2030-01-01T22:00:00Z", "Showtime 9:"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message %q missing %q", msg, want)
		}
	}
}
