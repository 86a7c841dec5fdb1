// Package service holds the consistency rules for movies, showtimes and
// bookings. Every operation re-reads the rows it depends on and writes inside a
// single transaction, so concurrent requests cannot interleave between a check
// and the write it guards.
package service

import (
	"context"
	"errors"
	"log"

	"github.com/Clark-Hu/popcorn-palace/internal/events"
	"github.com/Clark-Hu/popcorn-palace/internal/repository"
)

// deps is shared by the three services.
type deps struct {
	repo      *repository.Repository
	publisher events.Publisher
	logger    *log.Logger
}

func newDeps(repo *repository.Repository, publisher events.Publisher, logger *log.Logger) deps {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return deps{repo: repo, publisher: publisher, logger: logger}
}

// publish sends ev once the transaction that produced it has committed. A
// failure is logged and otherwise ignored.
func (d deps) publish(ctx context.Context, ev events.Event) {
	if err := d.publisher.Publish(context.WithoutCancel(ctx), ev); err != nil {
		d.logger.Printf("publish %s failed: %v", ev.Type, err)
	}
}

// notFound swaps repository.ErrNotFound for the domain error of the entity.
func notFound(err, domainErr error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return domainErr
	}
	return err
}
