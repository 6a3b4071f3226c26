// package services defines the [Searcher] interface for movie metadata providers
//
// TMDB (api.themoviedb.org/3)
package services

import (
	"context"

	"github.com/desertthunder/topten/internal/models"
)

// Searcher finds movies by title and fetches a single movie for import.
type Searcher interface {
	// SearchMovies returns candidates matching title, in provider order.
	SearchMovies(ctx context.Context, title string) ([]models.SearchResult, error)

	// FetchMovie returns an unsaved, unrated movie built from the provider's details for id.
	FetchMovie(ctx context.Context, id int64) (*models.Movie, error)
}

var _ Searcher = (*TMDBService)(nil)
