// package tasks implements movie list operations on top of the store and the TMDB client.
package tasks

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/topten/internal/formatter"
	"github.com/desertthunder/topten/internal/models"
	"github.com/desertthunder/topten/internal/services"
	"github.com/desertthunder/topten/internal/shared"
)

// Engine defines the movie list operations.
type Engine interface {
	Ranked(ctx context.Context) ([]models.RankedMovie, error)
	Get(ctx context.Context, id int64) (*models.Movie, error)
	Search(ctx context.Context, title string) ([]models.SearchResult, error)
	Import(ctx context.Context, externalID int64) (*models.Movie, error)
	Review(ctx context.Context, id int64, rating float64, review string) (*models.Movie, error)
	Remove(ctx context.Context, id int64) (*models.Movie, error)
}

// Library implements [Engine].
//
// The searcher may be nil for callers that only read or edit the local list; search and
// import then fail with [shared.ErrServiceUnavailable].
type Library struct {
	movies   models.MovieStore
	searcher services.Searcher
	logger   *log.Logger
}

var _ Engine = (*Library)(nil)

// NewLibrary creates a new [Library].
func NewLibrary(movies models.MovieStore, searcher services.Searcher, logger *log.Logger) *Library {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &Library{movies: movies, searcher: searcher, logger: logger}
}

// Ranked returns every movie with rank 1 (highest rating) first.
func (l *Library) Ranked(ctx context.Context) ([]models.RankedMovie, error) {
	movies, err := l.movies.List(ctx)
	if err != nil {
		return nil, err
	}
	return models.Rank(movies), nil
}

// Get returns a stored movie.
func (l *Library) Get(ctx context.Context, id int64) (*models.Movie, error) {
	return l.movies.Get(ctx, id)
}

// Search returns TMDB candidates for title.
func (l *Library) Search(ctx context.Context, title string) ([]models.SearchResult, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title", shared.ErrMissingArgument)
	}
	if l.searcher == nil {
		return nil, fmt.Errorf("%w: TMDB client not configured", shared.ErrServiceUnavailable)
	}

	results, err := l.searcher.SearchMovies(ctx, title)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("searched TMDB", "title", title, "results", len(results))
	return results, nil
}

// Import fetches a TMDB movie and stores it without rating, review or ranking.
func (l *Library) Import(ctx context.Context, externalID int64) (*models.Movie, error) {
	if l.searcher == nil {
		return nil, fmt.Errorf("%w: TMDB client not configured", shared.ErrServiceUnavailable)
	}

	movie, err := l.searcher.FetchMovie(ctx, externalID)
	if err != nil {
		return nil, err
	}

	if err := l.movies.Create(ctx, movie); err != nil {
		return nil, err
	}

	l.logger.Info("imported movie", "id", movie.ID, "tmdb_id", externalID, "title", movie.Title)
	return movie, nil
}

// Review sets the rating and review of a stored movie. Non-finite ratings are rejected
// with [shared.ErrInvalidInput].
func (l *Library) Review(ctx context.Context, id int64, rating float64, review string) (*models.Movie, error) {
	if err := models.CheckRating(rating); err != nil {
		return nil, err
	}

	movie, err := l.movies.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	movie.SetReview(rating, review)
	if err := l.movies.Update(ctx, movie); err != nil {
		return nil, err
	}

	l.logger.Info("reviewed movie", "id", id, "rating", rating)
	return movie, nil
}

// Remove deletes a stored movie and returns it.
func (l *Library) Remove(ctx context.Context, id int64) (*models.Movie, error) {
	movie, err := l.movies.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := l.movies.Delete(ctx, id); err != nil {
		return nil, err
	}

	l.logger.Info("removed movie", "id", id, "title", movie.Title)
	return movie, nil
}

// Export writes the ranked list to w in the given format.
func (l *Library) Export(ctx context.Context, w io.Writer, format formatter.Format) error {
	ranked, err := l.Ranked(ctx)
	if err != nil {
		return err
	}
	return formatter.Write(w, ranked, format)
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
