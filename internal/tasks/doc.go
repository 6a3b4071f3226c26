// Package tasks implements the movie list operations shared by the web app, the CLI and the TUI.
//
// # Core Operations
//
// [Library] composes a [models.MovieStore] with a [services.Searcher]:
//
//  1. [Library.Ranked] : all movies in rank order; ranks are computed, never written
//  2. [Library.Search] : TMDB title search
//  3. [Library.Import] : fetch a TMDB movie and insert it unrated
//  4. [Library.Review] : set rating and review on a stored movie
//  5. [Library.Remove] : delete a stored movie
//  6. [Library.Export] : write the ranked list through the formatter package
//
// Each operation performs at most one write against the store.
//
// # Bulk Import
//
// [Library.BulkImport] fetches several TMDB ids with a worker pool, paced by a rate limiter.
// Inserts happen on the calling goroutine so writes stay serialized.
//
// # Progress Reporting
//
// Bulk operations send [ProgressUpdate] values on an optional channel.
// Updates use select with default so reporting never blocks an import.
package tasks
