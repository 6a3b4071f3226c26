package models

import (
	"cmp"
	"slices"
)

// RankedMovie pairs a movie with its display rank.
type RankedMovie struct {
	*Movie
	Rank int `json:"rank"`
}

// Rank assigns display ranks to movies already ordered ascending by rating.
//
// The movie at position i of n gets rank n-i, so the last (highest rated) movie is ranked 1.
// The result is returned in rank order, 1 first. The input slice is not modified.
func Rank(ascending []*Movie) []RankedMovie {
	n := len(ascending)
	ranked := make([]RankedMovie, n)
	for i, m := range ascending {
		ranked[n-1-i] = RankedMovie{Movie: m, Rank: n - i}
	}
	return ranked
}

// SortByRating orders movies ascending by rating in place, with unrated movies first and ties kept in ID order.
//
// This is the order the store returns, for callers holding movies from elsewhere.
func SortByRating(movies []*Movie) {
	slices.SortStableFunc(movies, func(a, b *Movie) int {
		switch {
		case a.Rating == nil && b.Rating == nil:
			return cmp.Compare(a.ID, b.ID)
		case a.Rating == nil:
			return -1
		case b.Rating == nil:
			return 1
		}
		if c := cmp.Compare(*a.Rating, *b.Rating); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
