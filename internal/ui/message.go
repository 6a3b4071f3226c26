package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/topten/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind   MsgKind
	ranked []models.RankedMovie
	found  []models.SearchResult
	movie  *models.Movie
	err    error
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgMoviesLoaded MsgKind = iota
	MsgSearchDone
	MsgMovieImported
	MsgMovieReviewed
	MsgMovieRemoved
)

// moviesLoadedMsg is the constructor for [MsgMoviesLoaded]
func moviesLoadedMsg(ranked []models.RankedMovie, err error) Msg {
	return Msg{kind: MsgMoviesLoaded, ranked: ranked, err: err}
}

// searchDoneMsg is the constructor for [MsgSearchDone]
func searchDoneMsg(results []models.SearchResult, err error) Msg {
	return Msg{kind: MsgSearchDone, found: results, err: err}
}

// movieImportedMsg is the constructor for [MsgMovieImported]
func movieImportedMsg(movie *models.Movie, err error) Msg {
	return Msg{kind: MsgMovieImported, movie: movie, err: err}
}

// movieReviewedMsg is the constructor for [MsgMovieReviewed]
func movieReviewedMsg(movie *models.Movie, err error) Msg {
	return Msg{kind: MsgMovieReviewed, movie: movie, err: err}
}

// movieRemovedMsg is the constructor for [MsgMovieRemoved]
func movieRemovedMsg(movie *models.Movie, err error) Msg {
	return Msg{kind: MsgMovieRemoved, movie: movie, err: err}
}
