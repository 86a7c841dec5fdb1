package httpserver

import (
	"math"
	"testing"
	"time"
)

func ptr[T any](v T) *T { return &v }

var fixedNow = time.Date(2025, time.February, 14, 12, 0, 0, 0, time.UTC)

func TestMovieRequestValidate(t *testing.T) {
	valid := movieRequest{
		Title:       " Inception ",
		Genre:       "Sci-Fi",
		Duration:    ptr(148),
		Rating:      ptr(8.8),
		ReleaseYear: ptr(2010),
	}

	in, fe := valid.validate(fixedNow)
	if !fe.empty() {
		t.Fatalf("valid movie rejected: %v", fe)
	}
	if in.Title != "Inception" {
		t.Fatalf("title = %q, want trimmed", in.Title)
	}

	tests := []struct {
		name  string
		edit  func(*movieRequest)
		field string
	}{
		{"blank title", func(r *movieRequest) { r.Title = "  " }, "title"},
		{"blank genre", func(r *movieRequest) { r.Genre = "" }, "genre"},
		{"missing duration", func(r *movieRequest) { r.Duration = nil }, "duration"},
		{"zero duration", func(r *movieRequest) { r.Duration = ptr(0) }, "duration"},
		{"duration too long", func(r *movieRequest) { r.Duration = ptr(5401) }, "duration"},
		{"missing rating", func(r *movieRequest) { r.Rating = nil }, "rating"},
		{"rating above ten", func(r *movieRequest) { r.Rating = ptr(10.1) }, "rating"},
		{"negative rating", func(r *movieRequest) { r.Rating = ptr(-0.5) }, "rating"},
		{"missing year", func(r *movieRequest) { r.ReleaseYear = nil }, "releaseYear"},
		{"before cinema", func(r *movieRequest) { r.ReleaseYear = ptr(1887) }, "releaseYear"},
		{"too far ahead", func(r *movieRequest) { r.ReleaseYear = ptr(2029) }, "releaseYear"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.edit(&req)
			_, fe := req.validate(fixedNow)
			if _, ok := fe[tt.field]; !ok || len(fe) != 1 {
				t.Fatalf("errors = %v, want only %s", fe, tt.field)
			}
		})
	}

	edge := valid
	edge.Duration = ptr(5400)
	edge.Rating = ptr(0.0)
	edge.ReleaseYear = ptr(2028)
	if _, fe := edge.validate(fixedNow); !fe.empty() {
		t.Fatalf("boundary values rejected: %v", fe)
	}
}

func TestShowtimeRequestValidate(t *testing.T) {
	start := fixedNow.Add(24 * time.Hour)
	end := start.Add(2 * time.Hour)
	valid := showtimeRequest{
		MovieID:   ptr(int64(1)),
		Price:     ptr(20.2),
		Theater:   "Sample Theater",
		StartTime: &start,
		EndTime:   &end,
	}
	if _, fe := valid.validate(fixedNow); !fe.empty() {
		t.Fatalf("valid showtime rejected: %v", fe)
	}

	past := fixedNow.Add(-time.Minute)
	tests := []struct {
		name  string
		edit  func(*showtimeRequest)
		field string
	}{
		{"missing movie", func(r *showtimeRequest) { r.MovieID = nil }, "movieId"},
		{"negative movie", func(r *showtimeRequest) { r.MovieID = ptr(int64(-1)) }, "movieId"},
		{"free", func(r *showtimeRequest) { r.Price = ptr(0.0) }, "price"},
		{"blank theater", func(r *showtimeRequest) { r.Theater = " " }, "theater"},
		{"start in past", func(r *showtimeRequest) { r.StartTime = &past }, "startTime"},
		{"start now", func(r *showtimeRequest) { r.StartTime = &fixedNow }, "startTime"},
		{"missing end", func(r *showtimeRequest) { r.EndTime = nil }, "endTime"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.edit(&req)
			_, fe := req.validate(fixedNow)
			if _, ok := fe[tt.field]; !ok || len(fe) != 1 {
				t.Fatalf("errors = %v, want only %s", fe, tt.field)
			}
		})
	}
}

func TestBookingRequestValidate(t *testing.T) {
	valid := bookingRequest{
		ShowtimeID: ptr(int64(1)),
		SeatNumber: ptr(15),
		UserID:     "84438967-f68f-4fa0-b620-0f08217e76af",
	}
	if _, fe := valid.validate(); !fe.empty() {
		t.Fatalf("valid booking rejected: %v", fe)
	}
	top := valid
	top.SeatNumber = ptr(math.MaxInt32)
	if _, fe := top.validate(); !fe.empty() {
		t.Fatalf("largest seat rejected: %v", fe)
	}

	tests := []struct {
		name  string
		edit  func(*bookingRequest)
		field string
	}{
		{"missing showtime", func(r *bookingRequest) { r.ShowtimeID = nil }, "showtimeId"},
		{"zero seat", func(r *bookingRequest) { r.SeatNumber = ptr(0) }, "seatNumber"},
		{"seat beyond int32", func(r *bookingRequest) { r.SeatNumber = ptr(math.MaxInt32 + 1) }, "seatNumber"},
		{"blank user", func(r *bookingRequest) { r.UserID = "" }, "userId"},
		{"user not a uuid", func(r *bookingRequest) { r.UserID = "user-1" }, "userId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.edit(&req)
			_, fe := req.validate()
			if _, ok := fe[tt.field]; !ok || len(fe) != 1 {
				t.Fatalf("errors = %v, want only %s", fe, tt.field)
			}
		})
	}
}

func TestFieldErrorsMessageIsSorted(t *testing.T) {
	fe := fieldErrors{}
	fe.add("title", "is required")
	fe.add("genre", "is required")
	fe.add("title", "ignored second rule")

	if got, want := fe.Error(), "genre: is required; title: is required"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}
