package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/topten/internal/formatter"
	"github.com/desertthunder/topten/internal/shared"
	"github.com/desertthunder/topten/internal/tasks"
	"github.com/urfave/cli/v3"
)

// MoviesList prints the ranked list.
func (r *Runner) MoviesList(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.movieLibrary(ctx, false)
	if err != nil {
		return err
	}

	ranked, err := lib.Ranked(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(ranked, cmd.Bool("pretty"))
	}

	if len(ranked) == 0 {
		return r.writePlain("No movies yet. Add one with `topten movies add <tmdb-id>`.\n")
	}

	r.writePlainHeader("My Top Movies")
	for _, m := range ranked {
		rating := "unrated"
		if m.IsRated() {
			rating = "★ " + m.RatingText()
		}
		r.writePlain("%2d. %-40s %-8s id=%d\n", m.Rank, m.Movie.String(), rating, m.ID)
		if review := m.ReviewText(); review != "" {
			r.writePlain("    %q\n", review)
		}
	}
	return nil
}

// MoviesSearch prints TMDB candidates for a title. Positional words are joined with spaces,
// so the title does not need quoting.
func (r *Runner) MoviesSearch(ctx context.Context, cmd *cli.Command) error {
	title := strings.Join(strings.Fields(strings.Join(cmd.Args().Slice(), " ")), " ")
	if title == "" {
		return fmt.Errorf("%w: title", shared.ErrMissingArgument)
	}

	lib, err := r.movieLibrary(ctx, true)
	if err != nil {
		return err
	}

	results, err := lib.Search(ctx, title)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(results, true)
	}

	if len(results) == 0 {
		return r.writePlain("No results for %q.\n", title)
	}
	for _, res := range results {
		date := res.ReleaseDate
		if date == "" {
			date = "unknown"
		}
		r.writePlain("%8d  %s (%s)\n", res.ID, res.Title, date)
	}
	return nil
}

// MoviesAdd imports movies by TMDB id. Several ids run through the bulk importer.
func (r *Runner) MoviesAdd(ctx context.Context, cmd *cli.Command) error {
	ids, err := parseIDs(cmd.Args().Slice())
	if err != nil {
		return err
	}

	lib, err := r.movieLibrary(ctx, true)
	if err != nil {
		return err
	}

	if len(ids) == 1 {
		movie, err := lib.Import(ctx, ids[0])
		if err != nil {
			return err
		}
		return r.writePlain("✓ Added %s with id %d\n", movie, movie.ID)
	}

	prog := make(chan tasks.ProgressUpdate, len(ids)*2+1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range prog {
			r.logger.Debug(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
		}
	}()

	result, err := lib.BulkImport(ctx, prog, ids, tasks.BulkImportOpts{
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
	})
	close(prog)
	<-done
	if err != nil {
		return err
	}

	for _, res := range result.Results {
		if res.Error != nil {
			r.writePlain("✗ %d: %v\n", res.ExternalID, res.Error)
			continue
		}
		r.writePlain("✓ Added %s with id %d\n", res.Movie, res.Movie.ID)
	}
	r.writePlain("Imported %d of %d\n", result.Imported, len(ids))

	if result.Failed > 0 && result.Imported == 0 {
		return fmt.Errorf("%w: no movies imported", shared.ErrAPIRequest)
	}
	return nil
}

// MoviesRate sets the rating and review of a stored movie.
func (r *Runner) MoviesRate(ctx context.Context, cmd *cli.Command) error {
	review := strings.TrimSpace(cmd.String("review"))
	if review == "" {
		return fmt.Errorf("%w: review", shared.ErrMissingArgument)
	}

	lib, err := r.movieLibrary(ctx, false)
	if err != nil {
		return err
	}

	movie, err := lib.Review(ctx, cmd.Int64("id"), cmd.Float("rating"), review)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Updated %s: %s/10\n", movie, movie.RatingText())
}

// MoviesDelete removes a stored movie.
func (r *Runner) MoviesDelete(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.movieLibrary(ctx, false)
	if err != nil {
		return err
	}

	movie, err := lib.Remove(ctx, cmd.Int64("id"))
	if err != nil {
		return err
	}
	return r.writePlain("✓ Removed %s\n", movie)
}

// MoviesExport writes the ranked list to stdout, a file, or a Markdown directory with posters.
func (r *Runner) MoviesExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	output := cmd.String("output")
	posters := cmd.Bool("posters")

	if posters && format != formatter.Markdown {
		return fmt.Errorf("%w: --posters requires --format md", shared.ErrInvalidFlag)
	}

	lib, err := r.movieLibrary(ctx, false)
	if err != nil {
		return err
	}

	if output == "" && !posters {
		return lib.Export(ctx, r.output, format)
	}

	ranked, err := lib.Ranked(ctx)
	if err != nil {
		return err
	}

	if posters {
		result, err := formatter.WriteMarkdownExport(ctx, ranked, output, true, r.httpClient)
		if err != nil {
			return err
		}
		for _, w := range result.Warnings {
			r.logger.Warn("poster skipped", "error", w)
		}
		return r.writePlain("✓ Exported %d movies and %d posters to %s\n", len(ranked), result.Posters, result.Directory)
	}

	if err := formatter.WriteFile(ranked, format, output); err != nil {
		return err
	}
	return r.writePlain("✓ Exported %d movies to %s\n", len(ranked), output)
}

func parseIDs(args []string) ([]int64, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: at least one TMDB id", shared.ErrMissingArgument)
	}

	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%w: %q is not a TMDB id", shared.ErrInvalidArgument, arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
