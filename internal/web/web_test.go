package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/desertthunder/topten/internal/models"
	"github.com/desertthunder/topten/internal/repositories"
	"github.com/desertthunder/topten/internal/server"
	"github.com/desertthunder/topten/internal/shared"
	"github.com/desertthunder/topten/internal/tasks"
	tu "github.com/desertthunder/topten/internal/testing"
)

var (
	csrfPattern = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)
	rankPattern = regexp.MustCompile(`data-id="(\d+)" data-rank="(\d+)"`)
)

type fixture struct {
	srv      *httptest.Server
	client   *http.Client
	repo     *repositories.MovieRepository
	searcher *tu.MockSearcher
}

type failingPinger struct{}

func (failingPinger) PingContext(context.Context) error { return errors.New("disk on fire") }

func setupApp(t *testing.T, db Pinger) *fixture {
	t.Helper()

	conn, err := shared.NewDatabase(shared.MemoryDatabase)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := shared.RunMigrations(conn); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	if db == nil {
		db = conn
	}

	results, movies := tu.Fixtures()
	searcher := &tu.MockSearcher{Results: results, Movies: movies}
	repo := repositories.NewMovieRepository(conn)

	app, err := New(Options{
		Library:  tasks.NewLibrary(repo, searcher, nil),
		Sessions: server.NewSessions("test-secret", false, nil),
		DB:       db,
	})
	if err != nil {
		t.Fatalf("failed to create app: %v", err)
	}

	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &fixture{srv: srv, client: client, repo: repo, searcher: searcher}
}

func (f *fixture) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()

	resp, err := f.client.Get(f.srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return resp, string(body)
}

func (f *fixture) post(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()

	resp, err := f.client.PostForm(f.srv.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return resp, string(body)
}

// token loads the add form to obtain the session's CSRF token.
func (f *fixture) token(t *testing.T) string {
	t.Helper()

	_, body := f.get(t, "/add")
	m := csrfPattern.FindStringSubmatch(body)
	if m == nil {
		t.Fatal("no CSRF token in add form")
	}
	return m[1]
}

func (f *fixture) importMovie(t *testing.T, tmdbID int64) int64 {
	t.Helper()

	resp, _ := f.get(t, fmt.Sprintf("/add_movie/%d", tmdbID))
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected 302 importing %d, got %d", tmdbID, resp.StatusCode)
	}

	loc := resp.Header.Get("Location")
	id, err := strconv.ParseInt(strings.TrimPrefix(loc, "/edit?id="), 10, 64)
	if err != nil {
		t.Fatalf("unexpected redirect %q", loc)
	}
	return id
}

func (f *fixture) rate(t *testing.T, id int64, rating, review string) *http.Response {
	t.Helper()

	resp, _ := f.post(t, fmt.Sprintf("/edit?id=%d", id), url.Values{
		"rating":         {rating},
		"review":         {review},
		server.CSRFField: {f.token(t)},
	})
	return resp
}

// ranks returns the movie ids on the home page in display order, with their ranks.
func (f *fixture) ranks(t *testing.T) ([]int64, []int) {
	t.Helper()

	resp, body := f.get(t, "/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for /, got %d", resp.StatusCode)
	}

	var ids []int64
	var ranks []int
	for _, m := range rankPattern.FindAllStringSubmatch(body, -1) {
		id, _ := strconv.ParseInt(m[1], 10, 64)
		rank, _ := strconv.Atoi(m[2])
		ids = append(ids, id)
		ranks = append(ranks, rank)
	}
	return ids, ranks
}

func TestHome(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		f := setupApp(t, nil)

		resp, body := f.get(t, "/")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		if !strings.Contains(body, "No movies yet.") {
			t.Error("expected empty list message")
		}
	})

	t.Run("ranks by rating with rank 1 first", func(t *testing.T) {
		f := setupApp(t, nil)
		heat := f.importMovie(t, 949)
		alien := f.importMovie(t, 348)
		ran := f.importMovie(t, 11841)

		f.rate(t, heat, "8.3", "Great film")
		f.rate(t, alien, "9.1", "Terrifying")
		f.rate(t, ran, "7", "Epic")

		ids, ranks := f.ranks(t)
		want := []int64{alien, heat, ran}
		if fmt.Sprint(ids) != fmt.Sprint(want) {
			t.Errorf("expected order %v, got %v", want, ids)
		}
		if fmt.Sprint(ranks) != "[1 2 3]" {
			t.Errorf("expected ranks [1 2 3], got %v", ranks)
		}
	})

	t.Run("unrated movies rank last", func(t *testing.T) {
		f := setupApp(t, nil)
		heat := f.importMovie(t, 949)
		alien := f.importMovie(t, 348)
		f.rate(t, alien, "6", "Fine")

		ids, ranks := f.ranks(t)
		if fmt.Sprint(ids) != fmt.Sprint([]int64{alien, heat}) || fmt.Sprint(ranks) != "[1 2]" {
			t.Errorf("unexpected order %v ranks %v", ids, ranks)
		}
	})

	t.Run("ranks are not persisted", func(t *testing.T) {
		f := setupApp(t, nil)
		id := f.importMovie(t, 949)
		f.get(t, "/")

		movie, err := f.repo.Get(context.Background(), id)
		if err != nil {
			t.Fatalf("failed to load movie: %v", err)
		}
		if movie.Ranking != nil {
			t.Errorf("ranking column should stay NULL, got %d", *movie.Ranking)
		}
	})

	t.Run("unknown path is 404", func(t *testing.T) {
		f := setupApp(t, nil)

		resp, _ := f.get(t, "/nope")
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404, got %d", resp.StatusCode)
		}
	})
}

func TestAdd(t *testing.T) {
	t.Run("form renders with token", func(t *testing.T) {
		f := setupApp(t, nil)

		resp, body := f.get(t, "/add")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		if !strings.Contains(body, "Movie Title") || !csrfPattern.MatchString(body) {
			t.Error("expected title field and CSRF token")
		}
	})

	t.Run("empty title re-renders without searching", func(t *testing.T) {
		f := setupApp(t, nil)

		for _, title := range []string{"", "   "} {
			resp, body := f.post(t, "/add", url.Values{"title": {title}, server.CSRFField: {f.token(t)}})
			if resp.StatusCode != http.StatusUnprocessableEntity {
				t.Errorf("expected 422 for %q, got %d", title, resp.StatusCode)
			}
			if !strings.Contains(body, msgRequired) {
				t.Errorf("expected required message for %q", title)
			}
		}

		if f.searcher.Searches() != 0 {
			t.Errorf("expected no search calls, got %d", f.searcher.Searches())
		}
	})

	t.Run("valid title lists candidates", func(t *testing.T) {
		f := setupApp(t, nil)

		resp, body := f.post(t, "/add", url.Values{"title": {"  Heat "}, server.CSRFField: {f.token(t)}})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		if !strings.Contains(body, `href="/add_movie/949"`) || !strings.Contains(body, "Heat - 1995-12-15") {
			t.Errorf("expected Heat candidate, got %s", body)
		}
		if len(f.searcher.SearchCalls) != 1 || f.searcher.SearchCalls[0] != "Heat" {
			t.Errorf("expected trimmed search, got %v", f.searcher.SearchCalls)
		}
	})

	t.Run("no results", func(t *testing.T) {
		f := setupApp(t, nil)

		_, body := f.post(t, "/add", url.Values{"title": {"zzz"}, server.CSRFField: {f.token(t)}})
		if !strings.Contains(body, "No results") {
			t.Error("expected no results message")
		}
	})

	t.Run("TMDB failure is 502", func(t *testing.T) {
		f := setupApp(t, nil)
		f.searcher.Err = fmt.Errorf("%w: status 503", shared.ErrAPIRequest)

		resp, _ := f.post(t, "/add", url.Values{"title": {"Heat"}, server.CSRFField: {f.token(t)}})
		if resp.StatusCode != http.StatusBadGateway {
			t.Errorf("expected 502, got %d", resp.StatusCode)
		}
	})

	t.Run("missing CSRF token is 403", func(t *testing.T) {
		f := setupApp(t, nil)
		f.token(t)

		resp, _ := f.post(t, "/add", url.Values{"title": {"Heat"}})
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("expected 403, got %d", resp.StatusCode)
		}
		if f.searcher.Searches() != 0 {
			t.Error("forbidden request must not search")
		}
	})
}

func TestAddMovie(t *testing.T) {
	t.Run("imports an unrated movie and redirects to edit", func(t *testing.T) {
		f := setupApp(t, nil)
		id := f.importMovie(t, 949)

		movie, err := f.repo.Get(context.Background(), id)
		if err != nil {
			t.Fatalf("failed to load movie: %v", err)
		}
		if movie.Title != "Heat" || movie.Year != 1995 {
			t.Errorf("unexpected movie %s", movie)
		}
		if movie.ImgURL != "https://image.tmdb.org/t/p/original/heat.jpg" {
			t.Errorf("unexpected img url %q", movie.ImgURL)
		}
		if movie.Rating != nil || movie.Review != nil || movie.Ranking != nil {
			t.Error("imported movie should have no rating, review or ranking")
		}

		_, body := f.get(t, fmt.Sprintf("/edit?id=%d", id))
		if !strings.Contains(body, "Added Heat (1995).") {
			t.Error("expected flash on the edit page")
		}
	})

	t.Run("a movie without a poster is imported", func(t *testing.T) {
		f := setupApp(t, nil)
		f.searcher.Movies[4242] = models.MovieDetails{ID: 4242, Title: "Obscure", ReleaseDate: "2001-01-01"}

		id := f.importMovie(t, 4242)
		movie, err := f.repo.Get(context.Background(), id)
		if err != nil {
			t.Fatalf("failed to load movie: %v", err)
		}
		if movie.Title != "Obscure" || movie.ImgURL != "https://image.tmdb.org/t/p/original" {
			t.Errorf("unexpected movie %s with img url %q", movie, movie.ImgURL)
		}
	})

	t.Run("importing the same movie twice keeps both rows", func(t *testing.T) {
		f := setupApp(t, nil)
		first := f.importMovie(t, 593)
		second := f.importMovie(t, 593)

		if first == second {
			t.Errorf("expected distinct ids, got %d twice", first)
		}
	})

	t.Run("invalid ids", func(t *testing.T) {
		tc := []struct {
			path   string
			status int
		}{
			{path: "/add_movie/abc", status: http.StatusBadRequest},
			{path: "/add_movie/0", status: http.StatusBadRequest},
			{path: "/add_movie/-5", status: http.StatusBadRequest},
			{path: "/add_movie/1", status: http.StatusNotFound},
		}

		f := setupApp(t, nil)
		for _, tt := range tc {
			t.Run(tt.path, func(t *testing.T) {
				resp, _ := f.get(t, tt.path)
				if resp.StatusCode != tt.status {
					t.Errorf("expected %d, got %d", tt.status, resp.StatusCode)
				}
			})
		}

		if n, _ := f.repo.Count(context.Background()); n != 0 {
			t.Errorf("expected empty store, got %d rows", n)
		}
	})

	t.Run("TMDB failure is 502", func(t *testing.T) {
		f := setupApp(t, nil)
		f.searcher.Err = fmt.Errorf("%w: release_date has no year", shared.ErrMalformedResponse)

		resp, _ := f.get(t, "/add_movie/949")
		if resp.StatusCode != http.StatusBadGateway {
			t.Errorf("expected 502, got %d", resp.StatusCode)
		}
	})
}

func TestEdit(t *testing.T) {
	ctx := context.Background()

	t.Run("form for an unrated movie is empty", func(t *testing.T) {
		f := setupApp(t, nil)
		id := f.importMovie(t, 949)

		resp, body := f.get(t, fmt.Sprintf("/edit?id=%d", id))
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		if !strings.Contains(body, "Heat") || !strings.Contains(body, `name="rating" value=""`) {
			t.Error("expected empty rating field for Heat")
		}
	})

	t.Run("valid edit updates only that movie", func(t *testing.T) {
		f := setupApp(t, nil)
		heat := f.importMovie(t, 949)
		alien := f.importMovie(t, 348)

		resp := f.rate(t, heat, "7.5", "Great film")
		if resp.StatusCode != http.StatusSeeOther {
			t.Fatalf("expected 303, got %d", resp.StatusCode)
		}
		if resp.Header.Get("Location") != "/" {
			t.Errorf("expected redirect to /, got %q", resp.Header.Get("Location"))
		}

		movie, _ := f.repo.Get(ctx, heat)
		if movie.Rating == nil || *movie.Rating != 7.5 || movie.ReviewText() != "Great film" {
			t.Errorf("unexpected rating/review %s %s", movie.RatingText(), movie.ReviewText())
		}
		if movie.Title != "Heat" || movie.Year != 1995 {
			t.Error("other fields should be unchanged")
		}

		other, _ := f.repo.Get(ctx, alien)
		if other.IsRated() || other.Review != nil {
			t.Error("other movie should be untouched")
		}

		_, body := f.get(t, fmt.Sprintf("/edit?id=%d", heat))
		if !strings.Contains(body, `name="rating" value="7.5"`) {
			t.Error("expected pre-filled rating")
		}
	})

	t.Run("zero is a valid rating", func(t *testing.T) {
		f := setupApp(t, nil)
		id := f.importMovie(t, 949)

		if resp := f.rate(t, id, "0", "Unwatchable"); resp.StatusCode != http.StatusSeeOther {
			t.Errorf("expected 303, got %d", resp.StatusCode)
		}
	})

	t.Run("invalid form leaves the store untouched", func(t *testing.T) {
		tc := []struct {
			name   string
			rating string
			review string
			want   string
		}{
			{name: "not a number", rating: "great", review: "Great film", want: msgFloat},
			{name: "NaN", rating: "NaN", review: "Great film", want: msgFloat},
			{name: "missing rating", rating: "", review: "Great film", want: msgRequired},
			{name: "missing review", rating: "7.5", review: "  ", want: msgRequired},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				f := setupApp(t, nil)
				id := f.importMovie(t, 949)

				resp, body := f.post(t, fmt.Sprintf("/edit?id=%d", id), url.Values{
					"rating":         {tt.rating},
					"review":         {tt.review},
					server.CSRFField: {f.token(t)},
				})
				if resp.StatusCode != http.StatusUnprocessableEntity {
					t.Errorf("expected 422, got %d", resp.StatusCode)
				}
				if !strings.Contains(body, tt.want) {
					t.Errorf("expected %q in body", tt.want)
				}

				movie, _ := f.repo.Get(ctx, id)
				if movie.IsRated() || movie.Review != nil {
					t.Error("store should be untouched")
				}
			})
		}
	})

	t.Run("bad and unknown ids", func(t *testing.T) {
		f := setupApp(t, nil)

		tc := []struct {
			path   string
			status int
		}{
			{path: "/edit", status: http.StatusBadRequest},
			{path: "/edit?id=x", status: http.StatusBadRequest},
			{path: "/edit?id=404", status: http.StatusNotFound},
		}
		for _, tt := range tc {
			if resp, _ := f.get(t, tt.path); resp.StatusCode != tt.status {
				t.Errorf("GET %s: expected %d, got %d", tt.path, tt.status, resp.StatusCode)
			}
		}

		resp, _ := f.post(t, "/edit?id=404", url.Values{
			"rating":         {"5"},
			"review":         {"ok"},
			server.CSRFField: {f.token(t)},
		})
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("POST unknown id: expected 404, got %d", resp.StatusCode)
		}
	})
}

func TestDelete(t *testing.T) {
	t.Run("removes one movie and re-ranks", func(t *testing.T) {
		f := setupApp(t, nil)
		heat := f.importMovie(t, 949)
		alien := f.importMovie(t, 348)
		ran := f.importMovie(t, 11841)
		f.rate(t, heat, "8", "a")
		f.rate(t, alien, "9", "b")
		f.rate(t, ran, "7", "c")

		resp, _ := f.get(t, fmt.Sprintf("/delete?id=%d", heat))
		if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/" {
			t.Fatalf("expected 302 to /, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
		}

		ids, ranks := f.ranks(t)
		if fmt.Sprint(ids) != fmt.Sprint([]int64{alien, ran}) || fmt.Sprint(ranks) != "[1 2]" {
			t.Errorf("unexpected order %v ranks %v", ids, ranks)
		}

		if _, err := f.repo.Get(context.Background(), heat); !errors.Is(err, shared.ErrMovieNotFound) {
			t.Errorf("expected deleted movie to be gone, got %v", err)
		}
	})

	t.Run("flash after delete", func(t *testing.T) {
		f := setupApp(t, nil)
		id := f.importMovie(t, 949)
		f.get(t, fmt.Sprintf("/edit?id=%d", id))

		f.get(t, fmt.Sprintf("/delete?id=%d", id))
		_, body := f.get(t, "/")
		if !strings.Contains(body, "Removed Heat (1995).") {
			t.Error("expected removal flash")
		}
	})

	t.Run("bad and unknown ids", func(t *testing.T) {
		f := setupApp(t, nil)

		if resp, _ := f.get(t, "/delete"); resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
		if resp, _ := f.get(t, "/delete?id=77"); resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404, got %d", resp.StatusCode)
		}
	})
}

func TestHealth(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		f := setupApp(t, nil)

		resp, body := f.get(t, "/healthz")
		if resp.StatusCode != http.StatusOK || body != "ok" {
			t.Errorf("unexpected response %d %q", resp.StatusCode, body)
		}
	})

	t.Run("database down", func(t *testing.T) {
		f := setupApp(t, failingPinger{})

		resp, _ := f.get(t, "/healthz")
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("expected 503, got %d", resp.StatusCode)
		}
	})
}

func TestNew(t *testing.T) {
	if _, err := New(Options{}); !errors.Is(err, shared.ErrMissingArgument) {
		t.Errorf("expected ErrMissingArgument, got %v", err)
	}
}

func TestStatusFor(t *testing.T) {
	tc := []struct {
		err  error
		want int
	}{
		{err: fmt.Errorf("%w: id", shared.ErrInvalidArgument), want: http.StatusBadRequest},
		{err: fmt.Errorf("%w: id", shared.ErrMissingArgument), want: http.StatusBadRequest},
		{err: fmt.Errorf("%w: 9", shared.ErrMovieNotFound), want: http.StatusNotFound},
		{err: fmt.Errorf("%w: 500", shared.ErrAPIRequest), want: http.StatusBadGateway},
		{err: fmt.Errorf("%w: poster", shared.ErrMalformedResponse), want: http.StatusBadGateway},
		{err: fmt.Errorf("%w: dial", shared.ErrServiceUnavailable), want: http.StatusBadGateway},
		{err: context.DeadlineExceeded, want: http.StatusBadGateway},
		{err: errors.New("disk full"), want: http.StatusInternalServerError},
	}

	for _, tt := range tc {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
