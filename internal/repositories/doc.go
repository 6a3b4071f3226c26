// Package repositories implements SQLite persistence for the movie list.
//
// [MovieRepository] implements [models.MovieStore] over the single movie table using database/sql.
// Missing rows are reported with errors wrapping [shared.ErrMovieNotFound], so callers can tell
// "no such movie" apart from storage failures with errors.Is.
//
// List returns movies ascending by rating with NULL ratings first and ties in ID order, which is the
// order [models.Rank] expects.
package repositories
