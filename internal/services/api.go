// API service for making raw HTTP requests to TMDB
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/desertthunder/topten/internal/shared"
	"golang.org/x/time/rate"
)

// DefaultRetryDelay is the pause before a retried request.
const DefaultRetryDelay = 500 * time.Millisecond

// APIService performs paced GET requests against a JSON API with a bounded retry.
//
// Query values in APIOptions.Query (credentials, usually) are added to every request.
type APIService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	retries    int
	retryDelay time.Duration
	query      url.Values
}

// APIOptions configures an [APIService].
type APIOptions struct {
	BaseURL           string
	Client            *http.Client
	Query             url.Values
	Retries           int
	RetryDelay        time.Duration
	RequestsPerSecond float64 // zero or negative disables pacing
}

// NewAPIService creates a new API service instance.
func NewAPIService(opts APIOptions) *APIService {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultTMDBBaseURL
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.RetryDelay < 0 {
		opts.RetryDelay = 0
	}

	limit := rate.Inf
	burst := 1
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
		burst = max(1, int(opts.RequestsPerSecond))
	}

	return &APIService{
		baseURL:    opts.BaseURL,
		httpClient: opts.Client,
		limiter:    rate.NewLimiter(limit, burst),
		retries:    opts.Retries,
		retryDelay: opts.RetryDelay,
		query:      opts.Query,
	}
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports whether the status code is 2xx.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Get performs a GET request to path with params merged into the query string.
//
// Transport failures, 429 and 5xx responses are retried up to the configured number of times.
// A non-2xx response that is not retried (or still fails) is returned without an error so
// callers can read the API's error body.
func (a *APIService) Get(ctx context.Context, path string, params url.Values) (*APIResponse, error) {
	u, err := a.requestURL(path, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= a.retries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, a.retryDelay); err != nil {
				return nil, fmt.Errorf("request failed: %w", err)
			}
		}

		if err := a.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}

		resp, err := a.do(ctx, u)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("request failed: %w", ctx.Err())
			}
			lastErr = err
			continue
		}

		if retryable(resp.StatusCode) && attempt < a.retries {
			continue
		}
		return resp, nil
	}

	return nil, lastErr
}

func (a *APIService) do(ctx context.Context, u *url.URL) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %w", shared.ErrServiceUnavailable, redact(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}

	var jsonData any
	if err := json.Unmarshal(body, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

func (a *APIService) requestURL(path string, params url.Values) (*url.URL, error) {
	u, err := url.Parse(a.baseURL + path)
	if err != nil {
		return nil, err
	}

	q := u.Query()
	for k, vs := range a.query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u, nil
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// redact strips the query string from URLs embedded in transport errors so credentials
// passed as query parameters never reach logs.
func redact(err error) error {
	var uerr *url.Error
	if !errors.As(err, &uerr) {
		return err
	}
	if u, perr := url.Parse(uerr.URL); perr == nil {
		u.RawQuery = ""
		return &url.Error{Op: uerr.Op, URL: u.String(), Err: uerr.Err}
	}
	return err
}
