package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/sadopc/ponto/internal/bank"
	"github.com/sadopc/ponto/internal/export"
	"github.com/sadopc/ponto/internal/store"
	"github.com/spf13/cobra"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	goodColor   = color.New(color.FgGreen)
	warnColor   = color.New(color.FgYellow)
	badColor    = color.New(color.FgRed)
	labelColor  = color.New(color.Bold)
)

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Aliases: []string{"st"},
		Short:   "Show today's punches and the time bank balance",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open()
			if err != nil {
				return err
			}
			defer s.Close()

			s.notice(cmd.ErrOrStderr())
			return printStatus(cmd.OutOrStdout(), s.engine)
		},
	}
}

func printStatus(out io.Writer, e *bank.Engine) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	rec := e.Today()
	day := rec.Date
	if d, err := store.ParseDate(rec.Date); err == nil {
		day = d.Format("02/01/2006")
	}
	headerColor.Fprintf(w, "Today %s\n", day)

	punch := func(label, v string) {
		if v == "" {
			fmt.Fprintf(w, "  %s:\t%s\n", labelColor.Sprint(label), "--:--")
			return
		}
		fmt.Fprintf(w, "  %s:\t%s\n", labelColor.Sprint(label), v)
	}
	punch("Morning in", rec.MorningIn)
	punch("Morning out", rec.MorningOut)
	punch("Afternoon in", rec.AfternoonIn)
	punch("Afternoon out", rec.AfternoonOut)

	worked := warnColor.Sprint("pending")
	if rec.Worked != "" {
		worked = rec.Worked
	}
	fmt.Fprintf(w, "  %s:\t%s\n", labelColor.Sprint("Worked"), worked)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\t%s\n", labelColor.Sprint("Balance"), balanceText(e.Balance()))

	reset := "not scheduled"
	if d, ok := e.ResetDate(); ok {
		reset = d.Format("02/01/2006")
	}
	fmt.Fprintf(w, "%s:\t%s\n", labelColor.Sprint("Next reset"), reset)

	return w.Flush()
}

func balanceText(minutes int64) string {
	c := goodColor
	if minutes < 0 {
		c = badColor
	}
	return c.Sprintf("%s (%d min, %sh)", bank.FormatBalance(minutes), minutes, export.BalanceHours(minutes))
}
