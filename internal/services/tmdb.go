package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/topten/internal/models"
	"github.com/desertthunder/topten/internal/shared"
	"golang.org/x/oauth2"
)

const (
	DefaultTMDBBaseURL  = "https://api.themoviedb.org/3"
	DefaultImageBaseURL = "https://image.tmdb.org/t/p/original"
	DefaultTimeout      = 10 * time.Second
)

// TMDBOptions configures a [TMDBService].
//
// APIKey is sent as the api_key query parameter. AccessToken, when set, is sent as a
// Bearer token; either is enough for TMDB to accept the request.
type TMDBOptions struct {
	APIKey            string
	AccessToken       string
	BaseURL           string
	ImageBaseURL      string
	Timeout           time.Duration
	Retries           int
	RetryDelay        time.Duration
	RequestsPerSecond float64
	Transport         http.RoundTripper // nil uses [http.DefaultTransport]
}

// TMDBOptionsFromConfig maps the [shared.TMDBConfig] section to [TMDBOptions].
func TMDBOptionsFromConfig(c shared.TMDBConfig) TMDBOptions {
	return TMDBOptions{
		APIKey:            c.APIKey,
		AccessToken:       c.AccessToken,
		BaseURL:           c.BaseURL,
		ImageBaseURL:      c.ImageBaseURL,
		Timeout:           c.TimeoutDuration(),
		Retries:           c.Retries,
		RetryDelay:        DefaultRetryDelay,
		RequestsPerSecond: c.RequestsPerSecond,
	}
}

// TMDBService implements [Searcher] against The Movie Database v3 API.
type TMDBService struct {
	api          *APIService
	imageBaseURL string
}

// tmdbError is the error body TMDB returns with non-2xx responses.
type tmdbError struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}

type searchResponse struct {
	Page    int                   `json:"page"`
	Results []models.SearchResult `json:"results"`
}

// NewTMDBService creates a TMDB client from opts.
func NewTMDBService(ctx context.Context, opts TMDBOptions) (*TMDBService, error) {
	if opts.APIKey == "" && opts.AccessToken == "" {
		return nil, fmt.Errorf("%w: TMDB api key or access token is required", shared.ErrMissingCredentials)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultTMDBBaseURL
	}
	if opts.ImageBaseURL == "" {
		opts.ImageBaseURL = DefaultImageBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	client := &http.Client{Timeout: opts.Timeout, Transport: opts.Transport}
	if opts.AccessToken != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.AccessToken, TokenType: "Bearer"})
		client = oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, client), src)
		client.Timeout = opts.Timeout
	}

	var query url.Values
	if opts.APIKey != "" {
		query = url.Values{"api_key": {opts.APIKey}}
	}

	api := NewAPIService(APIOptions{
		BaseURL:           strings.TrimRight(opts.BaseURL, "/"),
		Client:            client,
		Query:             query,
		Retries:           opts.Retries,
		RetryDelay:        opts.RetryDelay,
		RequestsPerSecond: opts.RequestsPerSecond,
	})

	return &TMDBService{api: api, imageBaseURL: opts.ImageBaseURL}, nil
}

// API returns the underlying authenticated [APIService].
func (s *TMDBService) API() *APIService {
	return s.api
}

// ImageBaseURL returns the base URL poster paths are joined to.
func (s *TMDBService) ImageBaseURL() string {
	return s.imageBaseURL
}

// SearchMovies returns TMDB's first page of title matches in TMDB's order.
func (s *TMDBService) SearchMovies(ctx context.Context, title string) ([]models.SearchResult, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title", shared.ErrMissingArgument)
	}

	var body searchResponse
	if err := s.getJSON(ctx, "/search/movie", url.Values{"query": {title}}, &body); err != nil {
		return nil, err
	}
	return body.Results, nil
}

// GetMovie retrieves the details payload for a TMDB movie id.
func (s *TMDBService) GetMovie(ctx context.Context, id int64) (*models.MovieDetails, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: movie id must be positive, got %d", shared.ErrInvalidArgument, id)
	}

	var details models.MovieDetails
	if err := s.getJSON(ctx, "/movie/"+strconv.FormatInt(id, 10), nil, &details); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, fmt.Errorf("%w: tmdb id %d", shared.ErrMovieNotFound, id)
		}
		return nil, err
	}
	return &details, nil
}

// FetchMovie retrieves a TMDB movie and maps it to an unrated [models.Movie].
func (s *TMDBService) FetchMovie(ctx context.Context, id int64) (*models.Movie, error) {
	details, err := s.GetMovie(ctx, id)
	if err != nil {
		return nil, err
	}
	return details.ToMovie(s.imageBaseURL)
}

var errNotFound = errors.New("not found")

// getJSON performs a GET and decodes a 2xx body into out.
func (s *TMDBService) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	resp, err := s.api.Get(ctx, path, params)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}

	if !resp.OK() {
		var apiErr tmdbError
		_ = json.Unmarshal(resp.Body, &apiErr)
		msg := apiErr.StatusMessage
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %w: %s", shared.ErrAPIRequest, errNotFound, msg)
		}
		return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, msg)
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", shared.ErrMalformedResponse, err)
	}
	return nil
}
