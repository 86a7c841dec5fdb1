package events

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net"
	"os"
	"testing"
	"time"
)

func TestNewAMQPPublisherValidation(t *testing.T) {
	if _, err := NewAMQPPublisher("", "q", time.Second, nil); err == nil {
		t.Fatalf("expected error for empty url")
	}
	if _, err := NewAMQPPublisher("amqp://localhost", "", time.Second, nil); err == nil {
		t.Fatalf("expected error for empty queue")
	}
}

func TestEventEnvelopeJSON(t *testing.T) {
	ev := New(TypeBookingCreated, BookingCreated{BookingID: "b-1", ShowtimeID: 4, SeatNumber: 12, UserID: "u-1"})

	raw, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Type != TypeBookingCreated {
		t.Fatalf("type = %s, want %s", decoded.Type, TypeBookingCreated)
	}
	if decoded.Payload["seatNumber"] != float64(12) {
		t.Fatalf("payload seatNumber = %v, want 12", decoded.Payload["seatNumber"])
	}
	if ev.OccurredAt.IsZero() || ev.OccurredAt.Location() != time.UTC {
		t.Fatalf("OccurredAt should be set in UTC, got %v", ev.OccurredAt)
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = Nop{}
	if err := p.Publish(context.Background(), New(TypeMovieDeleted, MovieDeleted{MovieID: 1})); err != nil {
		t.Fatalf("Nop.Publish returned %v", err)
	}
}

// silentBroker accepts TCP connections and never answers the AMQP handshake.
func silentBroker(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				_, _ = io.Copy(io.Discard, conn)
			}()
		}
	}()
	return "amqp://guest:guest@" + ln.Addr().String() + "/"
}

func TestAMQPPublisherDialHonoursTimeout(t *testing.T) {
	p, err := NewAMQPPublisher(silentBroker(t), "cinema.events.test", 300*time.Millisecond, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("create publisher: %v", err)
	}
	defer p.Close()

	start := time.Now()
	err = p.Publish(context.Background(), New(TypeShowtimeDeleted, ShowtimeDeleted{ShowtimeID: 1}))
	elapsed := time.Since(start)
	if err == nil {
		t.Fatalf("publish to a silent broker succeeded")
	}
	if elapsed > 5*time.Second {
		t.Fatalf("publish took %s, want it bounded by the 300ms timeout", elapsed)
	}
}

// TestAMQPPublisherSmoke publishes one event to a live broker when AMQP_URL is set.
func TestAMQPPublisherSmoke(t *testing.T) {
	url := os.Getenv("AMQP_URL")
	if url == "" {
		t.Skip("AMQP_URL not provided")
	}
	p, err := NewAMQPPublisher(url, "cinema.events.test", 3*time.Second, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("create publisher: %v", err)
	}
	defer p.Close()

	ev := New(TypeShowtimeDeleted, ShowtimeDeleted{ShowtimeID: 1})
	if err := p.Publish(context.Background(), ev); err != nil {
		t.Fatalf("publish: %v", err)
	}
}
