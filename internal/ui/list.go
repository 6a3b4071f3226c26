package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/topten/internal/models"
)

var (
	_ list.Item = movieItem{}
	_ list.Item = resultItem{}
)

// movieItem wraps [models.RankedMovie] to implement [list.Item].
type movieItem struct {
	movie models.RankedMovie
}

func (i movieItem) FilterValue() string { return i.movie.Title }
func (i movieItem) Title() string {
	return fmt.Sprintf("#%d %s", i.movie.Rank, i.movie.Movie)
}
func (i movieItem) Description() string {
	if !i.movie.IsRated() {
		return "not rated yet"
	}
	desc := fmt.Sprintf("★ %s", i.movie.RatingText())
	if review := i.movie.ReviewText(); review != "" {
		desc = fmt.Sprintf("%s • %s", desc, review)
	}
	return desc
}

// resultItem wraps [models.SearchResult] to implement [list.Item].
type resultItem struct {
	result models.SearchResult
}

func (i resultItem) FilterValue() string { return i.result.Title }
func (i resultItem) Title() string       { return i.result.Title }
func (i resultItem) Description() string {
	if i.result.ReleaseDate == "" {
		return fmt.Sprintf("tmdb %d", i.result.ID)
	}
	return fmt.Sprintf("%s • tmdb %d", i.result.ReleaseDate, i.result.ID)
}

func movieItems(ranked []models.RankedMovie) []list.Item {
	items := make([]list.Item, len(ranked))
	for i, rm := range ranked {
		items[i] = movieItem{movie: rm}
	}
	return items
}

func resultItems(results []models.SearchResult) []list.Item {
	items := make([]list.Item, len(results))
	for i, r := range results {
		items[i] = resultItem{result: r}
	}
	return items
}
