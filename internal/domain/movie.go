package domain

import "time"

// Movie limits enforced at the request boundary and by table constraints.
const (
	MaxMovieDuration = 5400
	MinReleaseYear   = 1888
	MinRating        = 0.0
	MaxRating        = 10.0
	// ReleaseYearLead is how many years past the current one a release may be announced.
	ReleaseYearLead = 3
)

// Movie represents the canonical movie entity in the database/service.
type Movie struct {
	ID          int64
	Title       string
	Genre       string
	Duration    int // minutes
	Rating      float64
	ReleaseYear int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Runtime returns the movie duration as a time.Duration.
func (m Movie) Runtime() time.Duration {
	return time.Duration(m.Duration) * time.Minute
}

// MovieInput carries the mutable movie fields for create and update.
type MovieInput struct {
	Title       string
	Genre       string
	Duration    int
	Rating      float64
	ReleaseYear int
}

// MaxReleaseYear returns the latest release year accepted at the given instant.
func MaxReleaseYear(now time.Time) int {
	return now.Year() + ReleaseYearLead
}
