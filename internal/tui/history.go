package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/ponto/internal/bank"
	"github.com/sadopc/ponto/internal/export"
	"github.com/sadopc/ponto/internal/store"
)

// historyPage is how many days the chart and table show at once.
const historyPage = 14

type historyModel struct {
	engine *bank.Engine
	width  int
	height int

	ledger *store.Ledger
	offset int // pages back from the most recent day

	chart barchart.Model
}

func newHistoryModel(e *bank.Engine) historyModel {
	return historyModel{
		engine: e,
		ledger: e.Snapshot(),
		chart:  barchart.New(60, 12),
	}
}

func (h *historyModel) setSize(w, hgt int) {
	h.width = w
	h.height = hgt
}

type historyDataMsg struct {
	ledger *store.Ledger
}

func (h historyModel) refresh() tea.Cmd {
	snap := h.engine.Snapshot()
	return func() tea.Msg {
		return historyDataMsg{ledger: snap}
	}
}

// page returns the records currently in view, oldest first.
func (h historyModel) page() []store.DailyRecord {
	recs := h.ledger.Records
	end := len(recs) - h.offset*historyPage
	if end <= 0 {
		return nil
	}
	start := max(end-historyPage, 0)
	return recs[start:end]
}

func (h historyModel) update(msg tea.Msg) (historyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case historyDataMsg:
		h.ledger = msg.ledger
		h.buildChart()
		return h, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			if (h.offset+1)*historyPage < len(h.ledger.Records) {
				h.offset++
				h.buildChart()
			}
			return h, nil
		case key.Matches(msg, keys.Right):
			if h.offset > 0 {
				h.offset--
				h.buildChart()
			}
			return h, nil
		}
	}
	return h, nil
}

// workedHours recomputes the day from its punches; the stored text is only
// a display value.
func workedHours(r store.DailyRecord) (float64, bool) {
	if !r.Complete() {
		return 0, false
	}
	acc, err := bank.Compute(bank.PunchesOf(r), 0)
	if err != nil || acc.Worked < 0 {
		return 0, false
	}
	return acc.Worked.Hours(), true
}

func (h *historyModel) buildChart() {
	chartWidth := max(h.width-8, 20)
	chartHeight := 12
	if h.height > 30 {
		chartHeight = 16
	}

	h.chart = barchart.New(chartWidth, chartHeight)

	expected := h.engine.Expected().Hours()
	var bars []barchart.BarData
	for _, r := range h.page() {
		label := r.Date
		if d, err := time.Parse(store.DateLayout, r.Date); err == nil {
			label = d.Format("02/01")
		}

		value := barchart.BarValue{Name: r.Date, Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}
		if hours, ok := workedHours(r); ok {
			color := colorSuccess
			if hours < expected {
				color = colorWarning
			}
			value = barchart.BarValue{Name: r.Date, Value: hours, Style: lipgloss.NewStyle().Foreground(color)}
		}

		bars = append(bars, barchart.BarData{
			Label:  label,
			Values: []barchart.BarValue{value},
		})
	}

	h.chart.PushAll(bars)
	h.chart.Draw()
}

func (h historyModel) view() string {
	w := h.width - 4

	bal := h.ledger.BalanceMinutes
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("History"), "  ",
		balanceStyle(bal).Render(formatBalance(bal)), "  ",
		mutedStyle.Render(export.BalanceHours(bal)+"h"),
	)

	if len(h.ledger.Records) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			header, "", mutedStyle.Render("  No days registered yet"),
		))
	}

	legend := fmt.Sprintf("  %s ≥ %s   %s below",
		successStyle.Render("●"), bank.FormatDuration(h.engine.Expected()),
		warningStyle.Render("●"))
	nav := mutedStyle.Render("  ←/→: older/newer")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", h.chart.View(), legend, "", h.renderTable(w), "", nav,
		),
	)
}

func (h historyModel) renderTable(w int) string {
	page := &store.Ledger{Records: h.page()}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %-8s %-8s %-8s %-8s %10s",
		"Date", "M. in", "M. out", "A. in", "A. out", "Worked")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 60))))

	// Most recent first.
	all := export.Rows(page)
	for i := len(all) - 1; i >= 0; i-- {
		r := all[i]
		rows = append(rows, fmt.Sprintf("  %-12s %-8s %-8s %-8s %-8s %10s",
			r.Date, r.MorningIn, r.MorningOut, r.AfternoonIn, r.AfternoonOut, r.Worked))
	}
	return strings.Join(rows, "\n")
}
