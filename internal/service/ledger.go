package service

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/Clark-Hu/popcorn-palace/internal/domain"
	"github.com/Clark-Hu/popcorn-palace/internal/events"
	"github.com/Clark-Hu/popcorn-palace/internal/repository"
)

// Ledger allocates seats.
type Ledger struct {
	deps
	newID func() string
}

// NewLedger builds a Ledger. A nil publisher discards events.
func NewLedger(repo *repository.Repository, publisher events.Publisher, logger *log.Logger) *Ledger {
	return &Ledger{deps: newDeps(repo, publisher, logger), newID: uuid.NewString}
}

// Book allocates in.SeatNumber of in.ShowtimeID to in.UserID. The seat check is
// advisory; the unique (showtime, seat) constraint settles concurrent
// requests for the same seat.
func (l *Ledger) Book(ctx context.Context, in domain.BookingInput) (domain.Booking, error) {
	var (
		booking domain.Booking
		st      domain.Showtime
	)
	err := l.repo.InTx(ctx, func(tx *repository.Repository) error {
		var err error
		st, err = tx.Showtimes.GetByID(ctx, in.ShowtimeID, repository.ForShare)
		if err != nil {
			return notFound(err, domain.ErrShowtimeNotFound)
		}

		taken, err := tx.Bookings.SeatTaken(ctx, in.ShowtimeID, in.SeatNumber)
		if err != nil {
			return err
		}
		if taken {
			return &domain.SeatTakenError{ShowtimeID: in.ShowtimeID, SeatNumber: in.SeatNumber}
		}

		b, created, err := tx.Bookings.Create(ctx, repository.BookingCreateParams{
			ID:         l.newID(),
			ShowtimeID: in.ShowtimeID,
			SeatNumber: in.SeatNumber,
			UserID:     in.UserID,
		})
		if err != nil {
			return err
		}
		if !created {
			return &domain.SeatTakenError{ShowtimeID: in.ShowtimeID, SeatNumber: in.SeatNumber}
		}
		booking = b
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}

	l.publish(ctx, events.New(events.TypeBookingCreated, events.BookingCreated{
		BookingID:  booking.ID,
		ShowtimeID: booking.ShowtimeID,
		SeatNumber: booking.SeatNumber,
		UserID:     booking.UserID,
		Theater:    st.Theater,
		StartTime:  st.StartTime,
	}))
	return booking, nil
}
