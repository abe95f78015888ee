package tui

import (
	"fmt"
	"time"

	"github.com/sadopc/ponto/internal/bank"
)

// viewState represents the currently active view.
type viewState int

const (
	viewToday viewState = iota
	viewHistory
	viewSettings
)

var viewNames = []string{"Today", "History", "Settings"}

// --- Messages ---

type registeredMsg struct {
	result bank.Result
	err    error
}

type resetDateMsg struct {
	cleared bool
	date    time.Time
	err     error
}

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func formatBalance(minutes int64) string {
	return fmt.Sprintf("%s (%d min)", bank.FormatBalance(minutes), minutes)
}

func formatDelta(d time.Duration) string {
	return bank.FormatBalance(bank.Minutes(d))
}

func orDash(s string) string {
	if s == "" {
		return "--:--"
	}
	return s
}
