// Package models defines the domain entities and persistence interfaces for the topten movie list.
//
// There is a single persistent entity, [Movie], stored one row per movie. Rating, review, and ranking
// are absent until the user edits a movie after importing it from TMDB.
//
// Ranks are derived, never stored: [Rank] turns a rating-ordered slice of movies into [RankedMovie]
// values where rank 1 is the highest rated movie and unrated movies sink to the bottom.
//
// TMDB payloads are plain data transfer objects: [SearchResult] for search candidates and
// [MovieDetails], which [MovieDetails.ToMovie] maps to a new unrated [Movie].
//
// The [Repository] interface describes the CRUD operations the store layer provides.
package models
