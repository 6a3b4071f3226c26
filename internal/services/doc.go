// Package services defines the [Searcher] interface for movie metadata providers and implements it for TMDB.
//
// # TMDB Implementation
//
// [TMDBService] calls two endpoints of the v3 API:
//   - GET /search/movie?query=... : title search, first page only
//   - GET /movie/{id} : details used to import a movie
//
// Requests carry the api_key query parameter. When a v4 read access token is configured the
// HTTP client is built with [oauth2.StaticTokenSource] and sends it as a Bearer token as well.
//
// # Transport
//
// [APIService] is the raw GET client underneath. It paces requests with a [rate.Limiter],
// bounds each attempt with the client timeout and retries once (by default) on transport
// errors, 429 and 5xx. The `topten api get` command uses it directly for debugging.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrAPIRequest] : non-2xx response or failed request
//   - [shared.ErrMovieNotFound] : TMDB returned 404 for a movie id
//   - [shared.ErrMalformedResponse] : undecodable body or unusable payload
//   - [shared.ErrServiceUnavailable] : transport failure after retries
package services
