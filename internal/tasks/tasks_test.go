package tasks

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/desertthunder/topten/internal/formatter"
	"github.com/desertthunder/topten/internal/models"
	"github.com/desertthunder/topten/internal/repositories"
	"github.com/desertthunder/topten/internal/shared"
	tu "github.com/desertthunder/topten/internal/testing"
)

func setupLibrary(t *testing.T) (*Library, *repositories.MovieRepository, *tu.MockSearcher) {
	t.Helper()

	db, err := shared.NewDatabase(shared.MemoryDatabase)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	results, movies := tu.Fixtures()
	searcher := &tu.MockSearcher{Results: results, Movies: movies}
	repo := repositories.NewMovieRepository(db)
	return NewLibrary(repo, searcher, nil), repo, searcher
}

func titles(ranked []models.RankedMovie) string {
	var parts []string
	for _, r := range ranked {
		parts = append(parts, r.Title)
	}
	return strings.Join(parts, ",")
}

func TestLibrary(t *testing.T) {
	ctx := context.Background()

	t.Run("Import then list yields an unrated movie", func(t *testing.T) {
		lib, _, _ := setupLibrary(t)

		movie, err := lib.Import(ctx, 949)
		if err != nil {
			t.Fatalf("failed to import: %v", err)
		}
		if movie.ID == 0 {
			t.Error("imported movie should have an id")
		}

		ranked, err := lib.Ranked(ctx)
		if err != nil {
			t.Fatalf("failed to rank: %v", err)
		}
		if len(ranked) != 1 {
			t.Fatalf("expected 1 movie, got %d", len(ranked))
		}

		got := ranked[0]
		if got.Rating != nil || got.Review != nil || got.Ranking != nil {
			t.Error("imported movie should have nil rating, review and ranking column")
		}
		if got.Title != "Heat" || got.Year != 1995 || got.ImgURL != "https://image.tmdb.org/t/p/original/heat.jpg" {
			t.Errorf("unexpected derived fields: %+v", got.Movie)
		}
		if got.Rank != 1 {
			t.Errorf("expected rank 1, got %d", got.Rank)
		}
	})

	t.Run("Ranks follow ratings and are never written", func(t *testing.T) {
		lib, repo, _ := setupLibrary(t)

		ids := map[string]int64{}
		for _, tmdbID := range []int64{949, 348, 11841, 593} {
			m, err := lib.Import(ctx, tmdbID)
			if err != nil {
				t.Fatalf("failed to import %d: %v", tmdbID, err)
			}
			ids[m.Title] = m.ID
		}

		for title, rating := range map[string]float64{"Heat": 8.0, "Alien": 9.0, "Ran": 6.5} {
			if _, err := lib.Review(ctx, ids[title], rating, "ok"); err != nil {
				t.Fatalf("failed to review %s: %v", title, err)
			}
		}

		ranked, err := lib.Ranked(ctx)
		if err != nil {
			t.Fatalf("failed to rank: %v", err)
		}
		if got := titles(ranked); got != "Alien,Heat,Ran,Solaris" {
			t.Errorf("unexpected order %s", got)
		}
		for i, r := range ranked {
			if r.Rank != i+1 {
				t.Errorf("expected rank %d at position %d, got %d", i+1, i, r.Rank)
			}
		}

		stored, err := repo.Get(ctx, ids["Alien"])
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if stored.Ranking != nil {
			t.Errorf("ranking column should stay NULL, got %d", *stored.Ranking)
		}
	})

	t.Run("Review rejects non-finite ratings", func(t *testing.T) {
		lib, repo, _ := setupLibrary(t)
		heat, _ := lib.Import(ctx, 949)
		if _, err := lib.Review(ctx, heat.ID, 8, "Tense"); err != nil {
			t.Fatalf("failed to review: %v", err)
		}

		for _, v := range []float64{math.NaN(), math.Inf(1)} {
			if _, err := lib.Review(ctx, heat.ID, v, "broken"); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput for %v, got %v", v, err)
			}
		}

		stored, _ := repo.Get(ctx, heat.ID)
		if !stored.IsRated() || stored.RatingText() != "8.0" || stored.ReviewText() != "Tense" {
			t.Errorf("stored review must be unchanged, got %s / %s", stored.RatingText(), stored.ReviewText())
		}
	})

	t.Run("Review changes only the target movie", func(t *testing.T) {
		lib, repo, _ := setupLibrary(t)
		heat, _ := lib.Import(ctx, 949)
		alien, _ := lib.Import(ctx, 348)

		updated, err := lib.Review(ctx, heat.ID, 7.5, "Great film")
		if err != nil {
			t.Fatalf("failed to review: %v", err)
		}
		if updated.RatingText() != "7.5" || updated.ReviewText() != "Great film" {
			t.Errorf("unexpected review result %s / %s", updated.RatingText(), updated.ReviewText())
		}

		other, _ := repo.Get(ctx, alien.ID)
		if other.Rating != nil || other.Review != nil {
			t.Error("other movie must be untouched")
		}

		again, _ := repo.Get(ctx, heat.ID)
		if again.Title != heat.Title || again.Year != heat.Year || again.ImgURL != heat.ImgURL {
			t.Error("review must not change other columns")
		}
	})

	t.Run("Remove re-ranks contiguously", func(t *testing.T) {
		lib, _, _ := setupLibrary(t)
		var ids []int64
		for i, tmdbID := range []int64{949, 348, 11841} {
			m, _ := lib.Import(ctx, tmdbID)
			lib.Review(ctx, m.ID, float64(i+5), "")
			ids = append(ids, m.ID)
		}

		removed, err := lib.Remove(ctx, ids[1])
		if err != nil {
			t.Fatalf("failed to remove: %v", err)
		}
		if removed.Title != "Alien" {
			t.Errorf("expected Alien removed, got %s", removed.Title)
		}

		ranked, _ := lib.Ranked(ctx)
		if got := titles(ranked); got != "Ran,Heat" {
			t.Errorf("unexpected order after delete %s", got)
		}
		for i, r := range ranked {
			if r.Rank != i+1 {
				t.Errorf("ranks should be contiguous, got %d at %d", r.Rank, i)
			}
		}
	})

	t.Run("Insert edit delete round trip", func(t *testing.T) {
		lib, _, _ := setupLibrary(t)
		before, _ := lib.Ranked(ctx)

		m, err := lib.Import(ctx, 593)
		if err != nil {
			t.Fatalf("failed to import: %v", err)
		}
		if _, err := lib.Review(ctx, m.ID, 9, "Slow and great"); err != nil {
			t.Fatalf("failed to review: %v", err)
		}
		if _, err := lib.Remove(ctx, m.ID); err != nil {
			t.Fatalf("failed to remove: %v", err)
		}

		after, _ := lib.Ranked(ctx)
		if len(after) != len(before) {
			t.Errorf("expected %d movies after round trip, got %d", len(before), len(after))
		}
	})

	t.Run("Errors", func(t *testing.T) {
		lib, _, searcher := setupLibrary(t)

		if _, err := lib.Search(ctx, "  "); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if searcher.Searches() != 0 {
			t.Error("blank search must not reach the searcher")
		}

		if _, err := lib.Review(ctx, 404, 5, "x"); !errors.Is(err, shared.ErrMovieNotFound) {
			t.Errorf("expected ErrMovieNotFound, got %v", err)
		}
		if _, err := lib.Remove(ctx, 404); !errors.Is(err, shared.ErrMovieNotFound) {
			t.Errorf("expected ErrMovieNotFound, got %v", err)
		}
		if _, err := lib.Import(ctx, 1); !errors.Is(err, tu.ErrMockNotFound) {
			t.Errorf("expected searcher error, got %v", err)
		}

		offline := NewLibrary(nil, nil, nil)
		if _, err := offline.Search(ctx, "Heat"); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
		if _, err := offline.Import(ctx, 949); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("Search", func(t *testing.T) {
		lib, _, searcher := setupLibrary(t)

		results, err := lib.Search(ctx, " Heat ")
		if err != nil {
			t.Fatalf("failed to search: %v", err)
		}
		if len(results) != 1 || results[0].ID != 949 {
			t.Errorf("unexpected results %+v", results)
		}
		if searcher.SearchCalls[0] != "Heat" {
			t.Errorf("expected trimmed title, got %q", searcher.SearchCalls[0])
		}
	})

	t.Run("Export", func(t *testing.T) {
		lib, _, _ := setupLibrary(t)
		lib.Import(ctx, 949)

		var buf bytes.Buffer
		if err := lib.Export(ctx, &buf, formatter.Text); err != nil {
			t.Fatalf("failed to export: %v", err)
		}
		if !strings.Contains(buf.String(), "1. Heat (1995)") {
			t.Errorf("unexpected export %s", buf.String())
		}
	})
}

func TestBulkImport(t *testing.T) {
	ctx := context.Background()

	t.Run("Imports all ids and records failures", func(t *testing.T) {
		lib, repo, _ := setupLibrary(t)
		prog := make(chan ProgressUpdate, 32)

		res, err := lib.BulkImport(ctx, prog, []int64{949, 1, 348, 593}, BulkImportOpts{NumWorkers: 3, RateLimit: 100})
		if err != nil {
			t.Fatalf("bulk import failed: %v", err)
		}

		if res.Imported != 3 || res.Failed != 1 {
			t.Errorf("expected 3 imported and 1 failed, got %d/%d", res.Imported, res.Failed)
		}
		if res.Results[1].ExternalID != 1 || res.Results[1].Error == nil {
			t.Errorf("results should keep input order, got %+v", res.Results[1])
		}
		if res.Results[0].Movie == nil || res.Results[0].Movie.Title != "Heat" {
			t.Errorf("expected Heat first, got %+v", res.Results[0])
		}

		count, _ := repo.Count(ctx)
		if count != 3 {
			t.Errorf("expected 3 stored movies, got %d", count)
		}

		close(prog)
		var last ProgressUpdate
		for u := range prog {
			last = u
		}
		if last.Phase != ImportDone || last.Step != 3 {
			t.Errorf("expected final import_done update, got %+v", last)
		}
	})

	t.Run("Requires ids", func(t *testing.T) {
		lib, _, _ := setupLibrary(t)
		if _, err := lib.BulkImport(ctx, nil, nil, BulkImportOpts{}); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("Canceled context", func(t *testing.T) {
		lib, _, _ := setupLibrary(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		res, err := lib.BulkImport(cctx, nil, []int64{949, 348}, BulkImportOpts{})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if res == nil || res.Imported != 0 {
			t.Errorf("expected no imports, got %+v", res)
		}
	})
}

func TestPhaseString(t *testing.T) {
	for p, want := range map[Phase]string{FetchMovie: "fetch_movie", SaveMovie: "save_movie", ImportFailed: "import_failed", ImportDone: "import_done"} {
		if p.String() != want {
			t.Errorf("expected %s, got %s", want, p.String())
		}
	}
}
