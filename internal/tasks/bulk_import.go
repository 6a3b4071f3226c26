package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/topten/internal/models"
	"github.com/desertthunder/topten/internal/shared"
	"golang.org/x/time/rate"
)

// BulkImportOpts contains configuration for bulk imports.
type BulkImportOpts struct {
	NumWorkers int     // Concurrent TMDB fetches (default: 4, max: 8)
	RateLimit  float64 // Fetches per second (default: 5)
}

// ImportResult is the outcome for one TMDB id.
type ImportResult struct {
	ExternalID int64
	Movie      *models.Movie // nil on failure
	Error      error
}

// BulkImportResult summarizes a bulk import.
type BulkImportResult struct {
	Results  []ImportResult // In input order
	Imported int
	Failed   int
}

type fetchJob struct {
	index int
	id    int64
}

type fetchResult struct {
	index int
	movie *models.Movie
	err   error
}

// BulkImport imports several TMDB ids. Failures are recorded per id and do not stop the run.
//
// Fetches run on a worker pool; every insert runs on the calling goroutine.
func (l *Library) BulkImport(ctx context.Context, prog chan<- ProgressUpdate, ids []int64, opts BulkImportOpts) (*BulkImportResult, error) {
	if l.searcher == nil {
		return nil, fmt.Errorf("%w: TMDB client not configured", shared.ErrServiceUnavailable)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: at least one TMDB id", shared.ErrMissingArgument)
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	opts.NumWorkers = min(opts.NumWorkers, 8, len(ids))
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan fetchJob)
	fetched := make(chan fetchResult, len(ids))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go l.fetchWorker(ctx, &wg, limiter, jobs, fetched)
	}

	go func() {
		defer close(jobs)
		for i, id := range ids {
			sendProgress(prog, fetchMovieUpdate(i+1, len(ids), id))
			select {
			case <-ctx.Done():
				return
			case jobs <- fetchJob{index: i, id: id}:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(fetched)
	}()

	result := &BulkImportResult{Results: make([]ImportResult, len(ids))}
	for i, id := range ids {
		result.Results[i] = ImportResult{ExternalID: id, Error: context.Canceled}
	}

	completed := 0
	for res := range fetched {
		completed++
		id := ids[res.index]

		if res.err == nil {
			res.err = l.movies.Create(ctx, res.movie)
		}

		if res.err != nil {
			result.Results[res.index] = ImportResult{ExternalID: id, Error: res.err}
			l.logger.Warn("bulk import failed", "tmdb_id", id, "error", res.err)
			sendProgress(prog, importFailedUpdate(completed, len(ids), id, res.err))
			continue
		}

		result.Results[res.index] = ImportResult{ExternalID: id, Movie: res.movie}
		sendProgress(prog, saveMovieUpdate(completed, len(ids), res.movie))
	}

	for _, r := range result.Results {
		if r.Error != nil {
			result.Failed++
		} else {
			result.Imported++
		}
	}

	sendProgress(prog, importDoneUpdate(result.Imported, len(ids)))
	l.logger.Info("bulk import finished", "imported", result.Imported, "failed", result.Failed)

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

func (l *Library) fetchWorker(ctx context.Context, wg *sync.WaitGroup, limiter *rate.Limiter, jobs <-chan fetchJob, out chan<- fetchResult) {
	defer wg.Done()

	for job := range jobs {
		if err := limiter.Wait(ctx); err != nil {
			out <- fetchResult{index: job.index, err: err}
			continue
		}

		movie, err := l.searcher.FetchMovie(ctx, job.id)
		out <- fetchResult{index: job.index, movie: movie, err: err}
	}
}
