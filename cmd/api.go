package main

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/desertthunder/topten/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIGet makes an authenticated GET request to TMDB and prints the response.
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}

	params := url.Values{}
	for _, kv := range cmd.StringSlice("query") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return fmt.Errorf("%w: --query %q must be key=value", shared.ErrInvalidFlag, kv)
		}
		params.Add(k, v)
	}

	svc, err := r.tmdbService(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("GET request", "path", path)

	resp, err := svc.API().Get(ctx, path, params)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if !resp.OK() {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, cmd.Bool("pretty"))
	}

	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}
