// Package cli wires configuration, storage and the time bank engine behind
// the ponto command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/sadopc/ponto/internal/bank"
	"github.com/sadopc/ponto/internal/config"
	"github.com/sadopc/ponto/internal/logging"
	"github.com/sadopc/ponto/internal/store"
	"github.com/spf13/cobra"
)

const resetNotice = "Reset date reached: time bank balance set to zero."

// App holds what commands need beyond their own flags.
type App struct {
	// IsInteractive reports whether the bare command should start the TUI.
	IsInteractive func() bool
	// Now overrides the engine clock. Nil means time.Now.
	Now func() time.Time

	configPath string
	dataPath   string
	driver     string
	noColor    bool
}

// NewRootCmd creates the top-level "ponto" command and registers all
// subcommands against app.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "ponto",
		Short: "Personal time clock and time bank",
		Long: `ponto records the four daily punches (morning in/out, afternoon in/out),
computes the worked time and keeps a time bank against the expected 8h30 day.

Run without a subcommand to open the interactive view.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if app.noColor {
				color.NoColor = true
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open()
			if err != nil {
				return err
			}
			defer s.Close()

			if app.IsInteractive != nil && app.IsInteractive() {
				return runTUI(s)
			}
			s.notice(cmd.ErrOrStderr())
			return printStatus(cmd.OutOrStdout(), s.engine)
		},
	}

	root.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default is ~/.config/ponto/config.yaml)")
	root.PersistentFlags().StringVar(&app.dataPath, "data", "", "ledger file (overrides storage.path)")
	root.PersistentFlags().StringVar(&app.driver, "driver", "", "storage driver: json or sqlite (overrides storage.driver)")
	root.PersistentFlags().BoolVar(&app.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newRegisterCmd(app),
		newStatusCmd(app),
		newResetDateCmd(app),
		newReportCmd(app),
		newConfigCmd(app),
	)

	return root
}

func (a *App) configFile() (string, error) {
	if a.configPath != "" {
		return a.configPath, nil
	}
	return config.DefaultPath()
}

func (a *App) loadConfig() (config.Config, error) {
	path, err := a.configFile()
	if err != nil {
		return config.Config{}, fmt.Errorf("finding config file: %w", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Apply(a.driver, a.dataPath); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// session is one opened ledger: store, logger and engine, with the start-up
// reset already evaluated.
type session struct {
	engine *bank.Engine
	store  store.Store
	logs   io.Closer
	reset  bool
}

func (a *App) open() (*session, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}

	logger, logs, err := logging.New(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		logs.Close()
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	opts := []bank.Option{
		bank.WithLogger(logger),
		bank.WithExpected(cfg.Workday.Expected()),
		bank.WithMinBreak(cfg.Workday.MinBreak()),
	}
	if a.Now != nil {
		opts = append(opts, bank.WithClock(a.Now))
	}

	s := &session{store: st, logs: logs}
	s.engine, err = bank.New(st, opts...)
	if err != nil {
		s.Close()
		return nil, err
	}

	s.reset, err = s.engine.EvaluateReset()
	if err != nil {
		s.Close()
		return nil, err
	}
	logger.Debug("ledger opened", "driver", cfg.Storage.Driver, "path", cfg.Storage.Path)
	return s, nil
}

func (s *session) notice(w io.Writer) {
	if s.reset {
		warnColor.Fprintln(w, resetNotice)
	}
}

func (s *session) Close() error {
	return errors.Join(s.store.Close(), s.logs.Close())
}
