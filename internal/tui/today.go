package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/ponto/internal/bank"
	"github.com/sadopc/ponto/internal/store"
)

type todayModel struct {
	engine *bank.Engine
	width  int
	height int

	record store.DailyRecord
	last   *bank.Result

	formActive bool
	form       *huh.Form

	// Punch values as pointers (survive value copies). They also hold what
	// was typed into an unfinished form, for the shutdown flush.
	morningIn    *string
	morningOut   *string
	afternoonIn  *string
	afternoonOut *string
}

func newTodayModel(e *bank.Engine) todayModel {
	mi, mo, ai, ao := "", "", "", ""
	t := todayModel{
		engine:       e,
		morningIn:    &mi,
		morningOut:   &mo,
		afternoonIn:  &ai,
		afternoonOut: &ao,
	}
	t.load()
	return t
}

func (t *todayModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

// load copies today's stored punches into the held values.
func (t *todayModel) load() {
	t.record = t.engine.Today()
	*t.morningIn = t.record.MorningIn
	*t.morningOut = t.record.MorningOut
	*t.afternoonIn = t.record.AfternoonIn
	*t.afternoonOut = t.record.AfternoonOut
}

func (t todayModel) held() bank.Punches {
	return bank.Punches{
		MorningIn:    *t.morningIn,
		MorningOut:   *t.morningOut,
		AfternoonIn:  *t.afternoonIn,
		AfternoonOut: *t.afternoonOut,
	}
}

func (t todayModel) update(msg tea.Msg) (todayModel, tea.Cmd) {
	if t.formActive && t.form != nil {
		return t.updateForm(msg)
	}

	switch msg := msg.(type) {
	case registeredMsg:
		t.load()
		if msg.err == nil {
			res := msg.result
			t.last = &res
		}
		return t, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Punch), key.Matches(msg, keys.Enter):
			return t.showForm()
		}
	}
	return t, nil
}

func (t todayModel) showForm() (todayModel, tea.Cmd) {
	t.load()
	if t.record.Worked != "" {
		return t, func() tea.Msg {
			return statusMsg{text: "All four punches are already registered for today."}
		}
	}
	// Four valid punches that were never accounted (e.g. flushed on quit).
	if t.record.Complete() && locked(t.record.MorningIn) && locked(t.record.MorningOut) &&
		locked(t.record.AfternoonIn) && locked(t.record.AfternoonOut) {
		return t, t.register()
	}

	slots := []struct {
		title string
		value *string
	}{
		{"Morning in (HH:MM)", t.morningIn},
		{"Morning out (HH:MM)", t.morningOut},
		{"Afternoon in (HH:MM)", t.afternoonIn},
		{"Afternoon out (HH:MM)", t.afternoonOut},
	}

	// Valid punches already saved are locked: shown, not editable. An
	// invalid one comes back as an input so it can be corrected.
	var fields []huh.Field
	for _, s := range slots {
		if locked(*s.value) {
			fields = append(fields, huh.NewNote().Title(s.title).Description(*s.value+"  (locked)"))
			continue
		}
		fields = append(fields, huh.NewInput().
			Title(s.title).
			Placeholder("08:00").
			Validate(validatePunch).
			Value(s.value))
	}

	t.form = huh.NewForm(
		huh.NewGroup(fields...).Title("Register punches"),
	).WithShowHelp(true).WithShowErrors(true)

	t.formActive = true
	return t, t.form.Init()
}

func (t todayModel) updateForm(msg tea.Msg) (todayModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			t.formActive = false
			t.form = nil
			return t, nil
		}
	}

	form, cmd := t.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		t.form = f
	}

	if t.form.State == huh.StateCompleted {
		t.formActive = false
		t.form = nil
		return t, t.register()
	}

	return t, cmd
}

func locked(v string) bool {
	if v == "" {
		return false
	}
	_, err := bank.ParseTimeOfDay(v)
	return err == nil
}

// register runs synchronously so the engine is only ever touched from the
// Update goroutine.
func (t todayModel) register() tea.Cmd {
	res, err := t.engine.Register(t.held())
	return func() tea.Msg { return registeredMsg{result: res, err: err} }
}

// validatePunch is only a hint; the engine decides on submit.
func validatePunch(s string) error {
	if s == "" {
		return nil
	}
	if _, err := bank.ParseTimeOfDay(s); err != nil {
		return errors.New("use HH:MM, e.g. 08:00")
	}
	return nil
}

func registeredStatus(msg registeredMsg) statusMsg {
	var fe *bank.FormatError
	switch {
	case errors.As(msg.err, &fe):
		return statusMsg{text: fmt.Sprintf("Invalid %s %q: use HH:MM. Punches were saved as entered.", fe.Field, fe.Value), isError: true}
	case msg.err != nil:
		return statusMsg{text: fmt.Sprintf("Error: %v", msg.err), isError: true}
	case msg.result.Complete:
		return statusMsg{text: fmt.Sprintf("Day registered, balance %s", bank.FormatBalance(msg.result.Balance))}
	default:
		return statusMsg{text: "Partial punches saved. The day is accounted once all four are entered."}
	}
}

func (t todayModel) view() string {
	if t.width < 20 {
		return "Terminal too small"
	}
	w := t.width - 4

	if t.formActive && t.form != nil {
		title := titleStyle.Render("Today " + t.record.Date)
		return activePanelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", t.form.View()),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		t.renderPunchPanel(w),
		t.renderBalancePanel(w),
	)
}

func (t todayModel) renderPunchPanel(w int) string {
	title := titleStyle.Render("Today " + t.record.Date)

	slot := func(label, v string) string {
		style := punchEmptyStyle
		if v != "" {
			style = punchSetStyle
		}
		return lipgloss.JoinVertical(lipgloss.Center,
			mutedStyle.Render(label),
			style.Render(orDash(v)),
		)
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top,
		slot("Morning in", t.record.MorningIn), "   ",
		slot("Morning out", t.record.MorningOut), "   ",
		slot("Afternoon in", t.record.AfternoonIn), "   ",
		slot("Afternoon out", t.record.AfternoonOut),
	)

	worked := mutedStyle.Render("Worked: pending")
	if t.record.Worked != "" {
		worked = highlightStyle.Render("Worked: " + t.record.Worked)
	}

	hint := mutedStyle.Render("Press p to register punches")
	switch {
	case t.record.Worked != "":
		hint = successStyle.Render("✓ Day complete")
	case t.record.Complete():
		hint = warningStyle.Render("Press p to correct the punches and account the day")
	}

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, "", row, "", worked, hint),
	)
}

func (t todayModel) renderBalancePanel(w int) string {
	bal := t.engine.Balance()
	rows := []string{
		titleStyle.Render("Time bank"),
		balanceStyle(bal).Render(formatBalance(bal)),
	}

	if d, ok := t.engine.ResetDate(); ok {
		rows = append(rows, mutedStyle.Render("Resets on "+d.Format(store.DateLayout)))
	}

	if t.last != nil && t.last.Complete {
		line := fmt.Sprintf("Last registration: worked %s, delta %s",
			bank.FormatDuration(t.last.Worked), formatDelta(t.last.Delta))
		if t.last.LunchOverage > 0 {
			line += warningStyle.Render(fmt.Sprintf(", long lunch -%d min", bank.Minutes(t.last.LunchOverage)))
		}
		rows = append(rows, "", line)
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
