package store

import (
	"context"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate applies every *.up.sql file found in fsys, in lexical order. Each file
// must be idempotent; there is no version bookkeeping.
func Migrate(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS) (int, error) {
	files, err := fs.Glob(fsys, "migrations/*.up.sql")
	if err != nil {
		return 0, fmt.Errorf("list migrations: %w", err)
	}
	if len(files) == 0 {
		return 0, fmt.Errorf("no migration files found")
	}
	sort.Strings(files)

	for _, path := range files {
		payload, err := fs.ReadFile(fsys, path)
		if err != nil {
			return 0, fmt.Errorf("read migration %s: %w", path, err)
		}
		if _, err := pool.Exec(ctx, string(payload)); err != nil {
			return 0, fmt.Errorf("apply migration %s: %w", path, err)
		}
	}
	return len(files), nil
}

// Migrate applies the migrations to the store's pool.
func (s *Store) Migrate(ctx context.Context, fsys fs.FS) error {
	n, err := Migrate(ctx, s.pool, fsys)
	if err != nil {
		return err
	}
	s.logger.Printf("store: applied %d migration file(s)", n)
	return nil
}
