package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Clark-Hu/popcorn-palace/internal/domain"
)

// MoviesRepository provides persistence helpers for movie entities.
type MoviesRepository struct {
	db DBTX
}

const movieColumns = `
    id,
    title,
    genre,
    duration,
    rating,
    release_year,
    created_at,
    updated_at
`

// Create inserts a new movie row. It reports created=false, without error, when
// the title is already taken.
func (r *MoviesRepository) Create(ctx context.Context, in domain.MovieInput) (movie domain.Movie, created bool, err error) {
	query := fmt.Sprintf(`
        INSERT INTO movies (title, genre, duration, rating, release_year)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT ON CONSTRAINT movies_title_key DO NOTHING
        RETURNING %s
    `, movieColumns)

	row := r.db.QueryRow(ctx, query, in.Title, in.Genre, in.Duration, in.Rating, in.ReleaseYear)
	movie, err = scanMovie(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Movie{}, false, nil
		}
		return domain.Movie{}, false, err
	}
	return movie, true, nil
}

// GetByID fetches a movie by its identifier.
func (r *MoviesRepository) GetByID(ctx context.Context, id int64, lock LockMode) (domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE id = $1%s`, movieColumns, lockClause(lock))
	return r.getOne(ctx, query, id)
}

// GetByTitle fetches the movie with the given (unique) title.
func (r *MoviesRepository) GetByTitle(ctx context.Context, title string, lock LockMode) (domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE title = $1%s`, movieColumns, lockClause(lock))
	return r.getOne(ctx, query, title)
}

// ExistsByTitle reports whether the title is in use.
func (r *MoviesRepository) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM movies WHERE title = $1)`, title).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("movie title exists: %w", err)
	}
	return exists, nil
}

// List returns every movie ordered by title.
func (r *MoviesRepository) List(ctx context.Context) ([]domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies ORDER BY title, id`, movieColumns)
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Movie, 0)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Update replaces every mutable field of the movie. A rename onto a title
// that is already in use returns ErrTitleTaken.
func (r *MoviesRepository) Update(ctx context.Context, id int64, in domain.MovieInput) (domain.Movie, error) {
	query := fmt.Sprintf(`
        UPDATE movies
        SET title = $2,
            genre = $3,
            duration = $4,
            rating = $5,
            release_year = $6,
            updated_at = now()
        WHERE id = $1
        RETURNING %s
    `, movieColumns)

	row := r.db.QueryRow(ctx, query, id, in.Title, in.Genre, in.Duration, in.Rating, in.ReleaseYear)
	movie, err := scanMovie(row)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return domain.Movie{}, ErrNotFound
	case isUniqueViolation(err, "movies_title_key"):
		return domain.Movie{}, ErrTitleTaken
	case err != nil:
		return domain.Movie{}, err
	}
	return movie, nil
}

// DeleteByTitle removes the movie row. Dependents must already be gone.
func (r *MoviesRepository) DeleteByTitle(ctx context.Context, title string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM movies WHERE title = $1`, title)
	if err != nil {
		return fmt.Errorf("delete movie: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MoviesRepository) getOne(ctx context.Context, query string, arg any) (domain.Movie, error) {
	movie, err := scanMovie(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Movie{}, ErrNotFound
		}
		return domain.Movie{}, err
	}
	return movie, nil
}

func scanMovie(row pgx.Row) (domain.Movie, error) {
	var movie domain.Movie
	err := row.Scan(
		&movie.ID,
		&movie.Title,
		&movie.Genre,
		&movie.Duration,
		&movie.Rating,
		&movie.ReleaseYear,
		&movie.CreatedAt,
		&movie.UpdatedAt,
	)
	if err != nil {
		return domain.Movie{}, err
	}
	return movie, nil
}
