package service

import (
	"context"
	"errors"
	"log"
	"slices"

	"github.com/Clark-Hu/popcorn-palace/internal/domain"
	"github.com/Clark-Hu/popcorn-palace/internal/events"
	"github.com/Clark-Hu/popcorn-palace/internal/repository"
)

// Scheduler manages showtimes and keeps each theater's calendar free of
// overlaps.
type Scheduler struct {
	deps
}

// NewScheduler builds a Scheduler. A nil publisher discards events.
func NewScheduler(repo *repository.Repository, publisher events.Publisher, logger *log.Logger) *Scheduler {
	return &Scheduler{deps: newDeps(repo, publisher, logger)}
}

// ShowtimeDeletion counts what a showtime delete removed.
type ShowtimeDeletion struct {
	Showtime         domain.Showtime
	BookingsCanceled int64
}

// Get returns a showtime by id.
func (s *Scheduler) Get(ctx context.Context, id int64) (domain.Showtime, error) {
	st, err := s.repo.Showtimes.GetByID(ctx, id, repository.NoLock)
	if err != nil {
		return domain.Showtime{}, notFound(err, domain.ErrShowtimeNotFound)
	}
	return st, nil
}

// Create schedules a showtime after checking its movie, its duration and its
// theater's calendar.
func (s *Scheduler) Create(ctx context.Context, in domain.ShowtimeInput) (domain.Showtime, error) {
	var st domain.Showtime
	err := s.repo.InTx(ctx, func(tx *repository.Repository) error {
		if err := admit(ctx, tx, in, 0); err != nil {
			return err
		}
		var err error
		st, err = tx.Showtimes.Create(ctx, in)
		return err
	})
	return st, err
}

// errShowtimeMoved reports that another writer changed the showtime's movie
// between the unlocked read and the row lock; Update retries.
var errShowtimeMoved = errors.New("service: showtime moved to another movie")

const updateAttempts = 3

// Update replaces every mutable field of showtime id. Showtimes that already
// sold a seat cannot change.
func (s *Scheduler) Update(ctx context.Context, id int64, in domain.ShowtimeInput) (domain.Showtime, error) {
	for attempt := 1; ; attempt++ {
		st, err := s.update(ctx, id, in)
		if errors.Is(err, errShowtimeMoved) && attempt < updateAttempts {
			continue
		}
		return st, err
	}
}

// update locks movies before the showtime row, the same order DeleteByTitle
// uses, so the two never wait on each other in a cycle.
func (s *Scheduler) update(ctx context.Context, id int64, in domain.ShowtimeInput) (domain.Showtime, error) {
	var st domain.Showtime
	err := s.repo.InTx(ctx, func(tx *repository.Repository) error {
		current, err := tx.Showtimes.GetByID(ctx, id, repository.NoLock)
		if err != nil {
			return notFound(err, domain.ErrShowtimeNotFound)
		}
		if err := lockMovies(ctx, tx, current.MovieID, in.MovieID); err != nil {
			return err
		}

		locked, err := tx.Showtimes.GetByID(ctx, id, repository.ForUpdate)
		if err != nil {
			return notFound(err, domain.ErrShowtimeNotFound)
		}
		if locked.MovieID != current.MovieID {
			return errShowtimeMoved
		}

		booked, err := tx.Bookings.ExistsForShowtime(ctx, id)
		if err != nil {
			return err
		}
		if booked {
			return domain.ErrShowtimeHasBookings
		}

		if err := admit(ctx, tx, in, id); err != nil {
			return err
		}
		st, err = tx.Showtimes.Update(ctx, id, in)
		return notFound(err, domain.ErrShowtimeNotFound)
	})
	return st, err
}

// lockMovies takes FOR SHARE on each distinct movie id in ascending order.
// Missing movies are skipped; the caller's later reads report them.
func lockMovies(ctx context.Context, tx *repository.Repository, ids ...int64) error {
	ids = slices.Clone(ids)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	for _, id := range ids {
		if _, err := tx.Movies.GetByID(ctx, id, repository.ForShare); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
	}
	return nil
}

// Delete removes a showtime and its bookings.
func (s *Scheduler) Delete(ctx context.Context, id int64) (ShowtimeDeletion, error) {
	var res ShowtimeDeletion
	err := s.repo.InTx(ctx, func(tx *repository.Repository) error {
		st, err := tx.Showtimes.GetByID(ctx, id, repository.ForUpdate)
		if err != nil {
			return notFound(err, domain.ErrShowtimeNotFound)
		}

		canceled, err := tx.Bookings.DeleteByShowtime(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Showtimes.DeleteByID(ctx, id); err != nil {
			return notFound(err, domain.ErrShowtimeNotFound)
		}

		res = ShowtimeDeletion{Showtime: st, BookingsCanceled: canceled}
		return nil
	})
	if err != nil {
		return ShowtimeDeletion{}, err
	}

	s.publish(ctx, events.New(events.TypeShowtimeDeleted, events.ShowtimeDeleted{
		ShowtimeID:       res.Showtime.ID,
		BookingsCanceled: res.BookingsCanceled,
	}))
	return res, nil
}

// admit runs the checks shared by create and update, in order: the movie
// exists, the window fits its runtime, and the theater is free. The theater
// lock is held until tx ends so the write that follows cannot race another
// writer's scan.
func admit(ctx context.Context, tx *repository.Repository, in domain.ShowtimeInput, excludeID int64) error {
	movie, err := tx.Movies.GetByID(ctx, in.MovieID, repository.ForShare)
	if err != nil {
		return notFound(err, domain.ErrMovieNotFound)
	}

	w := in.Window()
	if err := w.CheckFits(movie); err != nil {
		return err
	}

	if err := tx.LockTheater(ctx, in.Theater); err != nil {
		return err
	}
	conflicts, err := tx.Showtimes.FindOverlapping(ctx, in.Theater, w, excludeID)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return &domain.OverlapError{Theater: in.Theater, Conflicts: conflicts}
	}
	return nil
}
