package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/sadopc/ponto/internal/export"
	"github.com/spf13/cobra"
)

func newReportCmd(app *App) *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print or export every registered day",
		Example: `  ponto report
  ponto report --format csv --output ponto.csv
  ponto report --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case "text", "csv", "json":
			default:
				return fmt.Errorf("unknown format %q (want text, csv or json)", format)
			}

			s, err := app.open()
			if err != nil {
				return err
			}
			defer s.Close()
			s.notice(cmd.ErrOrStderr())

			snap := s.engine.Snapshot()
			out := cmd.OutOrStdout()

			if format == "text" {
				if output == "" {
					return export.ToText(out, snap)
				}
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating report: %w", err)
				}
				if err := export.ToText(f, snap); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Fprintf(out, "Report written to %s\n", output)
				return nil
			}

			if output == "" {
				output = fmt.Sprintf("ponto-report-%s.%s", time.Now().Format("2006-01-02"), format)
			}
			if format == "csv" {
				err = export.ToCSV(snap, output)
			} else {
				err = export.ToJSON(snap, output)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Exported %d days to %s\n", len(snap.Records), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, csv or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (csv/json default to ponto-report-DATE.<format>)")

	return cmd
}
