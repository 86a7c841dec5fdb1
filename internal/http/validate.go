package httpserver

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Clark-Hu/popcorn-palace/internal/domain"
)

// fieldErrors maps a JSON field name to the first rule it broke.
type fieldErrors map[string]string

func (fe fieldErrors) add(field, msg string) {
	if _, ok := fe[field]; !ok {
		fe[field] = msg
	}
}

func (fe fieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+fe[f])
	}
	return strings.Join(parts, "; ")
}

func (fe fieldErrors) empty() bool { return len(fe) == 0 }

func requireText(fe fieldErrors, field, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		fe.add(field, "is required")
	}
	return value
}

func (req movieRequest) validate(now time.Time) (domain.MovieInput, fieldErrors) {
	fe := fieldErrors{}
	in := domain.MovieInput{
		Title: requireText(fe, "title", req.Title),
		Genre: requireText(fe, "genre", req.Genre),
	}

	switch {
	case req.Duration == nil:
		fe.add("duration", "is required")
	case *req.Duration <= 0:
		fe.add("duration", "must be positive")
	case *req.Duration > domain.MaxMovieDuration:
		fe.add("duration", fmt.Sprintf("must not exceed %d minutes", domain.MaxMovieDuration))
	default:
		in.Duration = *req.Duration
	}

	switch {
	case req.Rating == nil:
		fe.add("rating", "is required")
	case *req.Rating < domain.MinRating || *req.Rating > domain.MaxRating:
		fe.add("rating", fmt.Sprintf("must be between %.1f and %.1f", domain.MinRating, domain.MaxRating))
	default:
		in.Rating = *req.Rating
	}

	maxYear := domain.MaxReleaseYear(now)
	switch {
	case req.ReleaseYear == nil:
		fe.add("releaseYear", "is required")
	case *req.ReleaseYear < domain.MinReleaseYear:
		fe.add("releaseYear", fmt.Sprintf("must be %d or later", domain.MinReleaseYear))
	case *req.ReleaseYear > maxYear:
		fe.add("releaseYear", fmt.Sprintf("must not be after %d", maxYear))
	default:
		in.ReleaseYear = *req.ReleaseYear
	}
	return in, fe
}

func (req showtimeRequest) validate(now time.Time) (domain.ShowtimeInput, fieldErrors) {
	fe := fieldErrors{}
	in := domain.ShowtimeInput{
		Theater: requireText(fe, "theater", req.Theater),
	}

	if req.MovieID == nil || *req.MovieID <= 0 {
		fe.add("movieId", "must be a positive id")
	} else {
		in.MovieID = *req.MovieID
	}

	switch {
	case req.Price == nil:
		fe.add("price", "is required")
	case *req.Price <= 0:
		fe.add("price", "must be positive")
	default:
		in.Price = *req.Price
	}

	switch {
	case req.StartTime == nil:
		fe.add("startTime", "is required")
	case !req.StartTime.After(now):
		fe.add("startTime", "must be in the future")
	default:
		in.StartTime = req.StartTime.UTC()
	}

	if req.EndTime == nil {
		fe.add("endTime", "is required")
	} else {
		in.EndTime = req.EndTime.UTC()
	}
	return in, fe
}

func (req bookingRequest) validate() (domain.BookingInput, fieldErrors) {
	fe := fieldErrors{}
	var in domain.BookingInput

	if req.ShowtimeID == nil || *req.ShowtimeID <= 0 {
		fe.add("showtimeId", "must be a positive id")
	} else {
		in.ShowtimeID = *req.ShowtimeID
	}

	switch {
	case req.SeatNumber == nil || *req.SeatNumber <= 0:
		fe.add("seatNumber", "must be a positive number")
	case *req.SeatNumber > math.MaxInt32:
		fe.add("seatNumber", fmt.Sprintf("must not exceed %d", math.MaxInt32))
	default:
		in.SeatNumber = *req.SeatNumber
	}

	userID := requireText(fe, "userId", req.UserID)
	if userID != "" {
		if _, err := uuid.Parse(userID); err != nil {
			fe.add("userId", "must be a valid UUID")
		} else {
			in.UserID = userID
		}
	}
	return in, fe
}

func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return id, nil
}

func titleParam(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "movieTitle")
	title, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("invalid movieTitle parameter")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("missing movieTitle parameter")
	}
	return title, nil
}
