// Package web serves the movie list as server-rendered HTML.
//
// # Routes
//
//	GET  /                → ranked list, rank 1 first
//	GET  /add             → title search form
//	POST /add             → TMDB candidates for the title
//	GET  /add_movie/{id}  → import a TMDB movie, then redirect to /edit
//	GET  /edit?id=N       → rating form
//	POST /edit?id=N       → store rating and review, redirect to /
//	GET  /delete?id=N     → delete, redirect to /
//	GET  /healthz         → "ok" when the database answers
//
// Pages are html/template files embedded from templates/ and laid out with Bootstrap.
// Forms are trimmed with conform and checked with validator; invalid forms are re-rendered
// with status 422 and a message next to each bad field.
//
// # Errors
//
// Handlers map sentinel errors from the shared package to a status with [StatusFor]:
// bad ids are 400, unknown movies 404 and TMDB failures 502.
//
// # State
//
// Flash messages and the CSRF token live in the signed session cookie (see the server package).
// Ranks are derived on every request and never written back.
package web
