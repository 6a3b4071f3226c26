// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI offers the same workflow as the web pages:
//  1. [ListView] : Browse the ranked list
//  2. [DetailView] : Show a movie's rating, review, poster and synopsis
//  3. [ConfirmView] : Confirm a delete with y/n
//  4. [RateView] : Set rating and review
//  5. [SearchView] and [ResultsView] : Search TMDB and import a result
//
// The [Model] implements the standard Init/Update/View pattern. Every store or TMDB call runs as a
// bubbletea command against a tasks.Engine and reports back through the [Msg] union type.
//
// Keyboard navigation uses single-key bindings (enter, esc, a, e, d, r, y/n, q) with contextual help
// displayed via charmbracelet/bubbles/help. Views with a text input only quit on ctrl+c.
package ui
