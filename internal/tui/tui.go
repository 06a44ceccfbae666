package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the desk until the agent quits or ctx is cancelled.
func Run(ctx context.Context, deps Deps) error {
	if deps.Browser == nil || deps.Admin == nil || deps.Notices == nil {
		return errors.New("tui: browser, admin and notices are required")
	}

	events, unsubscribe := deps.Notices.Subscribe(16)
	defer unsubscribe()

	model := NewModel(ctx, deps, events)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
