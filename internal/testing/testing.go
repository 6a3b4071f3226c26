// package testing contains shared testing utilities
package testing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/topten/internal/models"
	"github.com/desertthunder/topten/internal/shared"
)

// MockSearcher is a test double for services.Searcher.
//
// Results maps lowercase titles to search results; Movies maps TMDB ids to details.
// Calls are recorded so tests can assert a search did or did not happen.
type MockSearcher struct {
	Results      map[string][]models.SearchResult
	Movies       map[int64]models.MovieDetails
	ImageBaseURL string
	Err          error

	mu          sync.Mutex
	SearchCalls []string
	FetchCalls  []int64
}

// ErrMockNotFound is returned by [MockSearcher.FetchMovie] for unknown ids.
// It wraps [shared.ErrMovieNotFound], as TMDBService does for a 404.
var ErrMockNotFound = fmt.Errorf("mock: %w", shared.ErrMovieNotFound)

func (m *MockSearcher) SearchMovies(ctx context.Context, title string) ([]models.SearchResult, error) {
	m.mu.Lock()
	m.SearchCalls = append(m.SearchCalls, title)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	return m.Results[strings.ToLower(title)], nil
}

func (m *MockSearcher) FetchMovie(ctx context.Context, id int64) (*models.Movie, error) {
	m.mu.Lock()
	m.FetchCalls = append(m.FetchCalls, id)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	d, ok := m.Movies[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrMockNotFound, id)
	}
	base := m.ImageBaseURL
	if base == "" {
		base = "https://image.tmdb.org/t/p/original"
	}
	return d.ToMovie(base)
}

// Searches returns the number of SearchMovies calls.
func (m *MockSearcher) Searches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.SearchCalls)
}

// FakeTMDB serves /search/movie and /movie/{id} from fixtures and records the requests it receives.
type FakeTMDB struct {
	*httptest.Server

	Results map[string][]models.SearchResult
	Movies  map[int64]models.MovieDetails

	mu       sync.Mutex
	Requests []*http.Request
}

// NewFakeTMDB starts a [FakeTMDB] that is closed when the test ends.
func NewFakeTMDB(t *testing.T) *FakeTMDB {
	t.Helper()

	f := &FakeTMDB{
		Results: map[string][]models.SearchResult{},
		Movies:  map[int64]models.MovieDetails{},
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

func (f *FakeTMDB) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.Requests = append(f.Requests, r.Clone(context.Background()))
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Path == "/search/movie":
		results := f.Results[strings.ToLower(r.URL.Query().Get("query"))]
		if results == nil {
			results = []models.SearchResult{}
		}
		json.NewEncoder(w).Encode(map[string]any{"page": 1, "results": results})
	case strings.HasPrefix(r.URL.Path, "/movie/"):
		id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/movie/"), 10, 64)
		d, ok := f.Movies[id]
		if err != nil || !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{
				"status_code":    34,
				"status_message": "The resource you requested could not be found.",
			})
			return
		}
		json.NewEncoder(w).Encode(d)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// RequestCount returns the number of requests served so far.
func (f *FakeTMDB) RequestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Requests)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) *LimitedWriter {
	return &LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error

	mu    sync.Mutex
	calls int
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.response, m.err
}

// Calls returns the number of round trips attempted.
func (m *MockRoundTripper) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// Fixtures returns a small set of TMDB payloads shared by tests.
func Fixtures() (map[string][]models.SearchResult, map[int64]models.MovieDetails) {
	movies := map[int64]models.MovieDetails{
		949:   {ID: 949, Title: "Heat", ReleaseDate: "1995-12-15", Overview: "A group of professional bank robbers...", PosterPath: "/heat.jpg"},
		348:   {ID: 348, Title: "Alien", ReleaseDate: "1979-05-25", Overview: "During its return to the earth...", PosterPath: "/alien.jpg"},
		11841: {ID: 11841, Title: "Ran", ReleaseDate: "1985-06-01", Overview: "An elderly lord abdicates...", PosterPath: "/ran.jpg"},
		593:   {ID: 593, Title: "Solaris", ReleaseDate: "1972-03-20", Overview: "A psychologist is sent to a station...", PosterPath: "/solaris.jpg"},
	}

	results := map[string][]models.SearchResult{}
	for _, d := range movies {
		key := strings.ToLower(d.Title)
		results[key] = append(results[key], models.SearchResult{
			ID:          d.ID,
			Title:       d.Title,
			ReleaseDate: d.ReleaseDate,
			Overview:    d.Overview,
			PosterPath:  d.PosterPath,
		})
	}
	return results, movies
}
