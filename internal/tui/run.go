package tui

import (
	"context"
	"fmt"
	"io"

	"github.com/Veraticus/smsledger/internal/model"
	tea "github.com/charmbracelet/bubbletea"
)

// RunOptions configures the terminal the review runs on.
type RunOptions struct {
	Input     io.Reader
	Output    io.Writer
	AltScreen bool
}

// Run shows the review screen and returns the decisions the user made,
// which may be fewer than items if they quit early.
func Run(ctx context.Context, items []Item, categories []model.Category, opts RunOptions) ([]Decision, error) {
	if len(items) == 0 {
		return nil, nil
	}

	progOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.Input != nil {
		progOpts = append(progOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		progOpts = append(progOpts, tea.WithOutput(opts.Output))
	}
	if opts.AltScreen {
		progOpts = append(progOpts, tea.WithAltScreen())
	}

	final, err := tea.NewProgram(NewModel(items, categories), progOpts...).Run()
	if err != nil {
		return nil, fmt.Errorf("review failed: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return nil, fmt.Errorf("unexpected model type %T", final)
	}
	return m.Decisions(), nil
}
