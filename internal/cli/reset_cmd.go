package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/sadopc/ponto/internal/store"
	"github.com/spf13/cobra"
)

func newResetDateCmd(app *App) *cobra.Command {
	var cancel bool

	cmd := &cobra.Command{
		Use:   "reset-date [YYYY-MM-DD]",
		Short: "Schedule, show or cancel the time bank reset",
		Long: `Schedule the day on which the time bank balance goes back to zero.

The reset is applied the first time ponto runs on or after that day. Without
arguments the scheduled date is printed.`,
		Example: `  ponto reset-date 2026-12-31
  ponto reset-date --clear`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cancel && len(args) > 0 {
				return errors.New("--clear takes no date")
			}

			var date time.Time
			if len(args) == 1 {
				d, err := store.ParseDate(args[0])
				if err != nil {
					return fmt.Errorf("invalid date %q: use YYYY-MM-DD", args[0])
				}
				date = d
			}

			s, err := app.open()
			if err != nil {
				return err
			}
			defer s.Close()
			s.notice(cmd.ErrOrStderr())

			out := cmd.OutOrStdout()
			switch {
			case cancel:
				if err := s.engine.ClearResetDate(); err != nil {
					return err
				}
				fmt.Fprintln(out, "Scheduled reset cancelled.")
			case !date.IsZero():
				if err := s.engine.SetResetDate(date); err != nil {
					return err
				}
				fmt.Fprintf(out, "Time bank will reset on %s.\n", date.Format("02/01/2006"))
			default:
				if d, ok := s.engine.ResetDate(); ok {
					fmt.Fprintf(out, "Next reset: %s\n", d.Format("02/01/2006"))
				} else {
					fmt.Fprintln(out, "No reset scheduled.")
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&cancel, "clear", false, "cancel the scheduled reset")

	return cmd
}
