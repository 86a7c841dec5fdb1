package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/popcorn-palace/internal/store"
)

var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrTitleTaken indicates another movie already holds the title.
	ErrTitleTaken = errors.New("repository: title taken")
)

const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique violation of constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == constraint
}

// DBTX is satisfied by both the pool and a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Lock namespaces for pg_advisory_xact_lock(int4, int4).
const (
	lockNamespaceTheater int32 = 1001
)

// Repository aggregates all domain-specific repositories.
type Repository struct {
	pool *pgxpool.Pool
	db   DBTX

	Movies    *MoviesRepository
	Showtimes *ShowtimesRepository
	Bookings  *BookingsRepository
}

// New constructs a Repository backed by the provided store.
func New(st *store.Store) *Repository {
	return NewWithPool(st.Pool())
}

// NewWithPool allows constructing repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	r := bind(pool)
	r.pool = pool
	return r
}

func bind(db DBTX) *Repository {
	return &Repository{
		db:        db,
		Movies:    &MoviesRepository{db: db},
		Showtimes: &ShowtimesRepository{db: db},
		Bookings:  &BookingsRepository{db: db},
	}
}

// WithTx returns repositories whose statements run inside tx.
func (r *Repository) WithTx(tx pgx.Tx) *Repository {
	return bind(tx)
}

// InTx runs fn inside a single transaction, committing when fn returns nil and
// rolling back otherwise. Calling InTx on a transaction-bound Repository reuses
// the enclosing transaction.
func (r *Repository) InTx(ctx context.Context, fn func(tx *Repository) error) error {
	if r.pool == nil {
		return fn(r)
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(r.WithTx(tx))
	})
}

// LockTheater serializes schedule writers of one theater until the enclosing
// transaction ends. It must be called inside InTx.
func (r *Repository) LockTheater(ctx context.Context, theater string) error {
	if _, err := r.db.Exec(ctx, `SELECT pg_advisory_xact_lock($1, hashtext($2))`, lockNamespaceTheater, theater); err != nil {
		return fmt.Errorf("lock theater %q: %w", theater, err)
	}
	return nil
}

// lockClause returns the row-locking suffix for a SELECT.
func lockClause(mode LockMode) string {
	switch mode {
	case ForUpdate:
		return " FOR UPDATE"
	case ForShare:
		return " FOR SHARE"
	default:
		return ""
	}
}

// LockMode selects the row lock taken by a read inside a transaction.
type LockMode int

const (
	NoLock LockMode = iota
	ForShare
	ForUpdate
)
