package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/desertthunder/topten/internal/shared"
)

// Movie is one entry in the user's list.
//
// Rating, Ranking and Review are nil until set. Ranking mirrors a legacy column and is not
// written by this package; databases from older versions may hold stale values there, so it is
// left out of JSON. Use [Rank] for display order.
type Movie struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Year        int      `json:"year"`
	Description string   `json:"description"`
	Rating      *float64 `json:"rating"`
	Ranking     *int     `json:"-"`
	Review      *string  `json:"review"`
	ImgURL      string   `json:"img_url"`
}

// Validate reports the missing required fields of a movie.
//
// Description may be empty: TMDB has entries without an overview.
func (m *Movie) Validate() error {
	var errs []error
	if strings.TrimSpace(m.Title) == "" {
		errs = append(errs, errors.New("title is required"))
	}
	if m.Year <= 0 {
		errs = append(errs, fmt.Errorf("year must be positive, got %d", m.Year))
	}
	if strings.TrimSpace(m.ImgURL) == "" {
		errs = append(errs, errors.New("img_url is required"))
	}
	return errors.Join(errs...)
}

// IsRated reports whether the user has rated the movie.
func (m *Movie) IsRated() bool {
	return m.Rating != nil
}

// RatingText formats the rating with one decimal place, or "" when unrated.
func (m *Movie) RatingText() string {
	if m.Rating == nil {
		return ""
	}
	return strconv.FormatFloat(*m.Rating, 'f', 1, 64)
}

// ReviewText returns the review, or "" when unset.
func (m *Movie) ReviewText() string {
	if m.Review == nil {
		return ""
	}
	return *m.Review
}

// ParseRating parses a rating as typed into a form. Any finite number is accepted,
// including forms such as ".5", "7." and "1e1"; the 0 to 10 scale is not enforced.
func ParseRating(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	rating, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a valid rating", shared.ErrInvalidInput, raw)
	}
	if err := CheckRating(rating); err != nil {
		return 0, err
	}
	return rating, nil
}

// CheckRating rejects NaN and infinite ratings. SQLite stores NaN as NULL, which would
// turn a rated movie back into an unrated one.
func CheckRating(rating float64) error {
	if math.IsNaN(rating) || math.IsInf(rating, 0) {
		return fmt.Errorf("%w: rating must be a finite number, got %v", shared.ErrInvalidInput, rating)
	}
	return nil
}

// SetReview sets rating and review together, as the edit form does.
func (m *Movie) SetReview(rating float64, review string) {
	m.Rating = &rating
	m.Review = &review
}

func (m *Movie) String() string {
	return fmt.Sprintf("%s (%d)", m.Title, m.Year)
}
