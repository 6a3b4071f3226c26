package web

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func formRequest(values url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func TestParseAddForm(t *testing.T) {
	t.Run("trims the title", func(t *testing.T) {
		form, errs := ParseAddForm(formRequest(url.Values{"title": {"  The Thing \t"}}))
		if errs.Any() {
			t.Fatalf("unexpected errors %v", errs)
		}
		if form.Title != "The Thing" {
			t.Errorf("expected trimmed title, got %q", form.Title)
		}
	})

	t.Run("blank title is required", func(t *testing.T) {
		_, errs := ParseAddForm(formRequest(url.Values{"title": {"   "}}))
		if errs.Get("title") != msgRequired {
			t.Errorf("expected required error, got %v", errs)
		}
	})
}

func TestParseEditForm(t *testing.T) {
	tc := []struct {
		name    string
		values  url.Values
		rating  float64
		invalid []string
	}{
		{name: "valid", values: url.Values{"rating": {"7.5"}, "review": {"Great film"}}, rating: 7.5},
		{name: "zero", values: url.Values{"rating": {"0"}, "review": {"Bad"}}, rating: 0},
		{name: "padded", values: url.Values{"rating": {" 9 "}, "review": {" ok "}}, rating: 9},
		{name: "above ten is accepted", values: url.Values{"rating": {"11"}, "review": {"!"}}, rating: 11},
		{name: "leading dot", values: url.Values{"rating": {".5"}, "review": {"ok"}}, rating: 0.5},
		{name: "trailing dot", values: url.Values{"rating": {"7."}, "review": {"ok"}}, rating: 7},
		{name: "exponent", values: url.Values{"rating": {"1e1"}, "review": {"ok"}}, rating: 10},
		{name: "not a number", values: url.Values{"rating": {"seven"}, "review": {"ok"}}, invalid: []string{"rating"}},
		{name: "NaN", values: url.Values{"rating": {"NaN"}, "review": {"ok"}}, invalid: []string{"rating"}},
		{name: "infinity", values: url.Values{"rating": {"Inf"}, "review": {"ok"}}, invalid: []string{"rating"}},
		{name: "out of float range", values: url.Values{"rating": {"1e400"}, "review": {"ok"}}, invalid: []string{"rating"}},
		{name: "both missing", values: url.Values{}, invalid: []string{"rating", "review"}},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			form, errs := ParseEditForm(formRequest(tt.values))

			if len(tt.invalid) == 0 {
				if errs.Any() {
					t.Fatalf("unexpected errors %v", errs)
				}
				if form.Value() != tt.rating {
					t.Errorf("expected rating %v, got %v", tt.rating, form.Value())
				}
				if form.Review != strings.TrimSpace(form.Review) {
					t.Errorf("review should be trimmed, got %q", form.Review)
				}
				return
			}

			for _, field := range tt.invalid {
				if errs.Get(field) == "" {
					t.Errorf("expected error for %s, got %v", field, errs)
				}
			}
			if len(errs) != len(tt.invalid) {
				t.Errorf("expected %d errors, got %v", len(tt.invalid), errs)
			}
		})
	}
}
