package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/topten/internal/models"
	"github.com/desertthunder/topten/internal/shared"
)

const movieColumns = `id, title, year, description, rating, ranking, review, img_url`

var _ models.MovieStore = (*MovieRepository)(nil)

// MovieRepository implements [models.MovieStore] for [models.Movie] persistence.
type MovieRepository struct {
	db *sql.DB
}

// NewMovieRepository creates a new [MovieRepository] with the given database connection
func NewMovieRepository(db *sql.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// Create inserts a movie and sets its ID to the one assigned by the store.
func (r *MovieRepository) Create(ctx context.Context, movie *models.Movie) error {
	if err := movie.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	query := `
		INSERT INTO movie (title, year, description, rating, ranking, review, img_url)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		movie.Title, movie.Year, movie.Description,
		nullFloat(movie.Rating), nullInt(movie.Ranking), nullString(movie.Review),
		movie.ImgURL,
	)
	if err != nil {
		return fmt.Errorf("failed to insert movie: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted id: %w", err)
	}
	movie.ID = id

	return nil
}

// Get retrieves a movie by ID.
func (r *MovieRepository) Get(ctx context.Context, id int64) (*models.Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movie WHERE id = ?`

	movie, err := scanMovie(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, shared.ErrMovieNotFound, id, "query movie")
	}
	return movie, nil
}

// Update writes every column of an existing movie.
func (r *MovieRepository) Update(ctx context.Context, movie *models.Movie) error {
	if err := movie.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	query := `
		UPDATE movie
		SET title = ?, year = ?, description = ?, rating = ?, ranking = ?, review = ?, img_url = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		movie.Title, movie.Year, movie.Description,
		nullFloat(movie.Rating), nullInt(movie.Ranking), nullString(movie.Review),
		movie.ImgURL, movie.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update movie: %w", err)
	}

	return expectOneRow(result, movie.ID)
}

// Delete removes a movie by ID.
func (r *MovieRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM movie WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete movie: %w", err)
	}

	return expectOneRow(result, id)
}

// List retrieves all movies ascending by rating.
//
// SQLite sorts NULL before any value, so unrated movies come first.
func (r *MovieRepository) List(ctx context.Context) ([]*models.Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movie ORDER BY rating ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}
	defer rows.Close()

	var movies []*models.Movie
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movie: %w", err)
		}
		movies = append(movies, movie)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return movies, nil
}

// Count returns the number of stored movies.
func (r *MovieRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM movie`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count movies: %w", err)
	}
	return n, nil
}

func scanMovie(row rowScanner) (*models.Movie, error) {
	var (
		movie   models.Movie
		rating  sql.NullFloat64
		ranking sql.NullInt64
		review  sql.NullString
	)

	err := row.Scan(&movie.ID, &movie.Title, &movie.Year, &movie.Description, &rating, &ranking, &review, &movie.ImgURL)
	if err != nil {
		return nil, err
	}

	if rating.Valid {
		movie.Rating = &rating.Float64
	}
	if ranking.Valid {
		rank := int(ranking.Int64)
		movie.Ranking = &rank
	}
	if review.Valid {
		movie.Review = &review.String
	}

	return &movie, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}
