package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/topten/internal/shared"
)

// SearchResult is one candidate returned by a TMDB title search.
type SearchResult struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	ReleaseDate   string  `json:"release_date"`
	Overview      string  `json:"overview"`
	PosterPath    string  `json:"poster_path"`
	VoteAverage   float64 `json:"vote_average"`
}

// Year returns the four-digit year prefix of ReleaseDate, or "" when it has none.
func (r SearchResult) Year() string {
	if y, err := releaseYear(r.ReleaseDate); err == nil {
		return strconv.Itoa(y)
	}
	return ""
}

// MovieDetails is the TMDB movie payload used to import a movie.
type MovieDetails struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path"`
	Runtime     int     `json:"runtime"`
	Tagline     string  `json:"tagline"`
	VoteAverage float64 `json:"vote_average"`
}

// ToMovie maps the payload to an unrated [Movie].
//
// The image URL is imageBaseURL joined to the poster path and the year is the leading
// four digits of release_date. A missing title or year is reported as
// [shared.ErrMalformedResponse]; a movie without a poster is imported with the bare base URL.
func (d MovieDetails) ToMovie(imageBaseURL string) (*Movie, error) {
	if strings.TrimSpace(d.Title) == "" {
		return nil, fmt.Errorf("%w: movie %d has no title", shared.ErrMalformedResponse, d.ID)
	}

	year, err := releaseYear(d.ReleaseDate)
	if err != nil {
		return nil, fmt.Errorf("%w: movie %d: %v", shared.ErrMalformedResponse, d.ID, err)
	}

	return &Movie{
		Title:       d.Title,
		Year:        year,
		Description: d.Overview,
		ImgURL:      ImageURL(imageBaseURL, d.PosterPath),
	}, nil
}

// ImageURL joins an image base URL and a poster path with exactly one slash.
// An empty poster path yields base unchanged.
func ImageURL(base, posterPath string) string {
	if strings.TrimSpace(posterPath) == "" {
		return base
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(posterPath, "/")
}

func releaseYear(date string) (int, error) {
	if len(date) < 4 {
		return 0, fmt.Errorf("release_date %q has no year", date)
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil || year <= 0 {
		return 0, fmt.Errorf("release_date %q has no year", date)
	}
	return year, nil
}
