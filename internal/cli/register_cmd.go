package cli

import (
	"errors"
	"fmt"

	"github.com/sadopc/ponto/internal/bank"
	"github.com/spf13/cobra"
)

func newRegisterCmd(app *App) *cobra.Command {
	var flags bank.Punches

	cmd := &cobra.Command{
		Use:   "register [morning-in [morning-out [afternoon-in [afternoon-out]]]]",
		Short: "Register today's punches",
		Long: `Register one or more of today's punches, as HH:MM.

Punches can be given positionally, in order, or with flags. Punches already
saved for today are kept unless a new value is given. The day is accounted
in the time bank once all four are present.`,
		Example: `  ponto register 08:00 12:00 13:00 17:30
  ponto register 08:00
  ponto register --afternoon-out 18:10`,
		Args: cobra.MaximumNArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := punchesFromArgs(args, flags)
			if p == (bank.Punches{}) {
				return errors.New("no punches given")
			}

			s, err := app.open()
			if err != nil {
				return err
			}
			defer s.Close()
			s.notice(cmd.ErrOrStderr())

			res, err := s.engine.Register(p)
			var fe *bank.FormatError
			if errors.As(err, &fe) {
				return fmt.Errorf("%w (punches were saved as entered; fix it with --%s)", err, flagName(fe.Field))
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !res.Complete {
				fmt.Fprintf(out, "Punches saved for %s. The day is accounted once all four are entered.\n", res.Record.Date)
				return nil
			}

			fmt.Fprintf(out, "Day %s registered: worked %s, delta %s\n",
				res.Record.Date, bank.FormatDuration(res.Worked), bank.FormatBalance(bank.Minutes(res.Delta)))
			if res.LunchOverage > 0 {
				warnColor.Fprintf(out, "Lunch exceeded the minimum break by %d min, charged to the time bank\n",
					bank.Minutes(res.LunchOverage))
			}
			fmt.Fprintf(out, "Balance: %s\n", balanceText(res.Balance))
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.MorningIn, "morning-in", "", "morning entry (HH:MM)")
	cmd.Flags().StringVar(&flags.MorningOut, "morning-out", "", "morning exit (HH:MM)")
	cmd.Flags().StringVar(&flags.AfternoonIn, "afternoon-in", "", "afternoon entry (HH:MM)")
	cmd.Flags().StringVar(&flags.AfternoonOut, "afternoon-out", "", "afternoon exit (HH:MM)")

	return cmd
}

// punchesFromArgs fills the punches positionally, then lets flags override.
func punchesFromArgs(args []string, flags bank.Punches) bank.Punches {
	var p bank.Punches
	slots := []*string{&p.MorningIn, &p.MorningOut, &p.AfternoonIn, &p.AfternoonOut}
	for i, a := range args {
		*slots[i] = a
	}

	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&p.MorningIn, flags.MorningIn)
	override(&p.MorningOut, flags.MorningOut)
	override(&p.AfternoonIn, flags.AfternoonIn)
	override(&p.AfternoonOut, flags.AfternoonOut)
	return p
}

func flagName(field string) string {
	switch field {
	case bank.FieldMorningIn:
		return "morning-in"
	case bank.FieldMorningOut:
		return "morning-out"
	case bank.FieldAfternoonIn:
		return "afternoon-in"
	default:
		return "afternoon-out"
	}
}
