package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Options controls connection-pool behaviour. Zero values keep pgx defaults.
type Options struct {
	MaxConns               int32
	MinConns               int32
	MaxConnIdleTime        time.Duration
	MaxConnLifetime        time.Duration
	ConnTimeout            time.Duration
	StatementCacheCapacity int
	Logger                 *log.Logger
}

// Store owns the cinema database pool.
type Store struct {
	pool   *pgxpool.Pool
	logger *log.Logger
	opts   Options
}

// PoolStats is a point-in-time view of the connection pool.
type PoolStats struct {
	Total    int32 `json:"total"`
	Idle     int32 `json:"idle"`
	Acquired int32 `json:"acquired"`
	Max      int32 `json:"max"`
}

// New connects to dbURL and pings it once before returning.
func New(ctx context.Context, dbURL string, opts Options) (*Store, error) {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	cfg, err := poolConfig(dbURL, opts)
	if err != nil {
		return nil, err
	}

	ctx, cancel := opts.bound(ctx)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	opts.Logger.Printf("store: pool ready (max=%d min=%d stmt_cache=%d)",
		cfg.MaxConns, cfg.MinConns, cfg.ConnConfig.StatementCacheCapacity)
	return &Store{pool: pool, logger: opts.Logger, opts: opts}, nil
}

func poolConfig(dbURL string, opts Options) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		cfg.MinConns = opts.MinConns
	}
	if opts.MaxConnIdleTime > 0 {
		cfg.MaxConnIdleTime = opts.MaxConnIdleTime
	}
	if opts.MaxConnLifetime > 0 {
		cfg.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.StatementCacheCapacity > 0 {
		cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement
		cfg.ConnConfig.StatementCacheCapacity = opts.StatementCacheCapacity
	}
	return cfg, nil
}

// bound applies ConnTimeout to ctx when one is configured.
func (o Options) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.ConnTimeout > 0 {
		return context.WithTimeout(ctx, o.ConnTimeout)
	}
	return ctx, func() {}
}

// Close releases database resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.logger.Println("store: closing connection pool")
	s.pool.Close()
}

// HealthCheck pings the database.
func (s *Store) HealthCheck(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("store not initialized")
	}
	ctx, cancel := s.opts.bound(ctx)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Stats reports pool counters; /healthz includes them in its body.
func (s *Store) Stats() PoolStats {
	if s == nil || s.pool == nil {
		return PoolStats{}
	}
	st := s.pool.Stat()
	return PoolStats{
		Total:    st.TotalConns(),
		Idle:     st.IdleConns(),
		Acquired: st.AcquiredConns(),
		Max:      st.MaxConns(),
	}
}

// Pool exposes the underlying pgx pool for repositories.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}
