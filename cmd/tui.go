package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/topten/internal/shared"
	"github.com/desertthunder/topten/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI. Without TMDB credentials the list can still be
// browsed, rated and pruned.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	logPath := filepath.Join(os.TempDir(), "topten", "tui.log")
	fileLogger, closer, err := shared.NewFileLogger(logPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer closer.Close()
	fileLogger.SetLevel(r.logger.GetLevel())
	r.logger = fileLogger

	lib, err := r.movieLibrary(ctx, false)
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, lib)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return model.Err()
}
