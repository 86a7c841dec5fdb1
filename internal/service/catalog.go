package service

import (
	"context"
	"errors"
	"log"

	"github.com/Clark-Hu/popcorn-palace/internal/domain"
	"github.com/Clark-Hu/popcorn-palace/internal/events"
	"github.com/Clark-Hu/popcorn-palace/internal/repository"
)

// Catalog manages movies.
type Catalog struct {
	deps
}

// NewCatalog builds a Catalog. A nil publisher discards events.
func NewCatalog(repo *repository.Repository, publisher events.Publisher, logger *log.Logger) *Catalog {
	return &Catalog{deps: newDeps(repo, publisher, logger)}
}

// MovieDeletion counts what a movie delete removed.
type MovieDeletion struct {
	Movie            domain.Movie
	ShowtimesDeleted int64
	BookingsCanceled int64
}

// List returns every movie ordered by title.
func (c *Catalog) List(ctx context.Context) ([]domain.Movie, error) {
	return c.repo.Movies.List(ctx)
}

// Create adds a movie. Titles are unique.
func (c *Catalog) Create(ctx context.Context, in domain.MovieInput) (domain.Movie, error) {
	var movie domain.Movie
	err := c.repo.InTx(ctx, func(tx *repository.Repository) error {
		m, created, err := tx.Movies.Create(ctx, in)
		if err != nil {
			return err
		}
		if !created {
			return domain.ErrMovieAlreadyExists
		}
		movie = m
		return nil
	})
	return movie, err
}

// UpdateByTitle replaces every field of the movie currently titled title.
// Movies with showtimes cannot be edited at all.
func (c *Catalog) UpdateByTitle(ctx context.Context, title string, in domain.MovieInput) (domain.Movie, error) {
	var movie domain.Movie
	err := c.repo.InTx(ctx, func(tx *repository.Repository) error {
		current, err := tx.Movies.GetByTitle(ctx, title, repository.ForUpdate)
		if err != nil {
			return notFound(err, domain.ErrMovieNotFound)
		}

		hasShowtimes, err := tx.Showtimes.ExistsForMovie(ctx, current.ID)
		if err != nil {
			return err
		}
		if hasShowtimes {
			return domain.ErrMovieHasShowtimes
		}

		if in.Title != current.Title {
			taken, err := tx.Movies.ExistsByTitle(ctx, in.Title)
			if err != nil {
				return err
			}
			if taken {
				return domain.ErrMovieAlreadyExists
			}
		}

		movie, err = tx.Movies.Update(ctx, current.ID, in)
		if errors.Is(err, repository.ErrTitleTaken) {
			return domain.ErrMovieAlreadyExists
		}
		return notFound(err, domain.ErrMovieNotFound)
	})
	return movie, err
}

// DeleteByTitle removes a movie together with its showtimes and their bookings.
func (c *Catalog) DeleteByTitle(ctx context.Context, title string) (MovieDeletion, error) {
	var res MovieDeletion
	err := c.repo.InTx(ctx, func(tx *repository.Repository) error {
		movie, err := tx.Movies.GetByTitle(ctx, title, repository.ForUpdate)
		if err != nil {
			return notFound(err, domain.ErrMovieNotFound)
		}
		// Bookings take FOR SHARE on their showtime; holding these locks keeps
		// new ones from slipping in between the two deletes below.
		if _, err := tx.Showtimes.LockByMovie(ctx, movie.ID); err != nil {
			return err
		}

		bookings, err := tx.Bookings.DeleteByMovie(ctx, movie.ID)
		if err != nil {
			return err
		}
		showtimes, err := tx.Showtimes.DeleteByMovie(ctx, movie.ID)
		if err != nil {
			return err
		}
		if err := tx.Movies.DeleteByTitle(ctx, movie.Title); err != nil {
			return notFound(err, domain.ErrMovieNotFound)
		}

		res = MovieDeletion{Movie: movie, ShowtimesDeleted: showtimes, BookingsCanceled: bookings}
		return nil
	})
	if err != nil {
		return MovieDeletion{}, err
	}

	c.publish(ctx, events.New(events.TypeMovieDeleted, events.MovieDeleted{
		MovieID:          res.Movie.ID,
		Title:            res.Movie.Title,
		ShowtimesDeleted: res.ShowtimesDeleted,
		BookingsCanceled: res.BookingsCanceled,
	}))
	return res, nil
}
