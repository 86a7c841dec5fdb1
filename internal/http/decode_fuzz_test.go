package httpserver

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
)

func FuzzBookingRequestBoundary(f *testing.F) {
	seeds := []string{
		`{"showtimeId":1,"seatNumber":15,"userId":"84438967-f68f-4fa0-b620-0f08217e76af"}`,
		`{"showtimeId":-1,"seatNumber":0,"userId":""}`,
		`{"showtimeId":"1"}`,
		`[]`,
		``,
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, body string) {
		var req bookingRequest
		r := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewBufferString(body))
		if err := decodeJSONBody(httptest.NewRecorder(), r, &req); err != nil {
			return
		}
		in, fe := req.validate()
		if !fe.empty() {
			return
		}
		if in.ShowtimeID <= 0 || in.SeatNumber <= 0 || in.UserID == "" {
			t.Fatalf("accepted invalid booking %+v from %q", in, body)
		}
	})
}

func FuzzShowtimeRequestBoundary(f *testing.F) {
	f.Add(`{"movieId":1,"price":20.2,"theater":"T","startTime":"2025-02-15T11:47:46.125405Z","endTime":"2025-02-15T14:47:46.125405Z"}`)
	f.Add(`{"movieId":1,"price":-1,"theater":" ","startTime":"2020-01-01T00:00:00Z"}`)
	f.Add(`{"startTime":"not a time"}`)

	f.Fuzz(func(t *testing.T, body string) {
		var req showtimeRequest
		r := httptest.NewRequest(http.MethodPost, "/showtimes", bytes.NewBufferString(body))
		if err := decodeJSONBody(httptest.NewRecorder(), r, &req); err != nil {
			return
		}
		in, fe := req.validate(fixedNow)
		if !fe.empty() {
			return
		}
		if in.MovieID <= 0 || in.Price <= 0 || in.Theater == "" || !in.StartTime.After(fixedNow) {
			t.Fatalf("accepted invalid showtime %+v from %q", in, body)
		}
	})
}
