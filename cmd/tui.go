package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/shelf/internal/shared"
	"github.com/desertthunder/shelf/internal/ui"
)

// TUI launches the interactive shelf.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	logPath := r.config.Log.File
	if logPath == "" {
		logPath = "./tmp/shelf-tui.log"
	}
	fileLogger, err := shared.NewFileLogger(logPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, shared.ParseLogLevel(r.config.Log.Level))
	r.SetLogger(fileLogger)

	s, err := r.open(ctx)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := ui.NewModel(ctx, ui.Options{
		Shelf:    s,
		Rack:     r.rackController(),
		Debounce: r.config.Timing.SearchDebounce.Duration,
		Logger:   fileLogger,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	s.Pipeline().Wait()
	return nil
}
