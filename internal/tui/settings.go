package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/ponto/internal/bank"
	"github.com/sadopc/ponto/internal/store"
)

type settingsModel struct {
	engine *bank.Engine
	width  int
	height int

	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	resetDate *string
}

func newSettingsModel(e *bank.Engine) settingsModel {
	rd := ""
	return settingsModel{
		engine:    e,
		resetDate: &rd,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.resetDate = ""
	if d, ok := s.engine.ResetDate(); ok {
		*s.resetDate = d.Format(store.DateLayout)
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Reset time bank on (YYYY-MM-DD)").
				Description("Leave empty to cancel a scheduled reset.").
				Placeholder("2026-12-31").
				Validate(validateDate).
				Value(s.resetDate),
		).Title("Time bank"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.form = nil
		return s, s.saveResetDate()
	}

	return s, cmd
}

func (s settingsModel) saveResetDate() tea.Cmd {
	v := strings.TrimSpace(*s.resetDate)
	if v == "" {
		err := s.engine.ClearResetDate()
		return func() tea.Msg { return resetDateMsg{cleared: true, err: err} }
	}

	d, err := store.ParseDate(v)
	if err == nil {
		err = s.engine.SetResetDate(d)
	}
	return func() tea.Msg { return resetDateMsg{date: d, err: err} }
}

func validateDate(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	if _, err := store.ParseDate(v); err != nil {
		return errors.New("use YYYY-MM-DD")
	}
	return nil
}

func resetDateStatus(msg resetDateMsg) statusMsg {
	switch {
	case msg.err != nil:
		return statusMsg{text: "Error: " + msg.err.Error(), isError: true}
	case msg.cleared:
		return statusMsg{text: "Scheduled reset cancelled"}
	default:
		return statusMsg{text: "Time bank will reset on " + msg.date.Format(store.DateLayout)}
	}
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	label := func(text string) string { return lipgloss.NewStyle().Width(24).Render(text) }

	reset := "not scheduled"
	if d, ok := s.engine.ResetDate(); ok {
		reset = d.Format(store.DateLayout)
	}

	rows := []string{
		title,
		"",
		"  " + label("Expected per day") + " " + highlightStyle.Render(bank.FormatDuration(s.engine.Expected())),
		"  " + label("Reset date") + " " + highlightStyle.Render(reset),
		"",
		mutedStyle.Render("Press enter to schedule a reset"),
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
