package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/sadopc/ponto/internal/cli"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	app := &cli.App{
		// The bare command opens the TUI only on a real terminal.
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		},
	}
	return cli.NewRootCmd(app).Execute()
}
