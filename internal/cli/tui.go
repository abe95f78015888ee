package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/ponto/internal/tui"
)

// runTUI runs the interactive view and flushes whatever punches it still
// holds once the program exits.
func runTUI(s *session) error {
	m := tui.NewApp(s.engine)
	if s.reset {
		m = m.WithStatus(resetNotice)
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}

	if app, ok := final.(tui.App); ok {
		if err := app.Flush(); err != nil {
			return fmt.Errorf("saving punches: %w", err)
		}
	}
	return nil
}
