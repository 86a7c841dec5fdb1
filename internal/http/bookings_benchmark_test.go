package httpserver

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Clark-Hu/popcorn-palace/internal/domain"
)

func BenchmarkHandleCreateBooking(b *testing.B) {
	srv := buildTestServer(b)
	ctx := context.Background()

	movie, err := srv.catalog.Create(ctx, movieInput("Benchmark Movie", 100))
	if err != nil {
		b.Fatalf("create movie: %v", err)
	}
	start := fixedNow.Add(48 * time.Hour)
	st, err := srv.scheduler.Create(ctx, domain.ShowtimeInput{
		MovieID:   movie.ID,
		Price:     10,
		Theater:   "Bench",
		StartTime: start,
		EndTime:   start.Add(110 * time.Minute),
	})
	if err != nil {
		b.Fatalf("create showtime: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		payload := fmt.Sprintf(`{"showtimeId":%d,"seatNumber":%d,"userId":%q}`, st.ID, i+1, testUser)
		req := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewBufferString(payload))
		rec := httptest.NewRecorder()

		srv.handleCreateBooking(rec, req)
		if rec.Code != http.StatusOK {
			b.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
		}
	}
}
