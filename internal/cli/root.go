package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"orcamento/internal/config"
	"orcamento/internal/log"
)

// errReported means the command already told the user what went wrong;
// only the exit code is left to set.
var errReported = errors.New("reported")

// app holds what every command shares once the persistent flags are parsed.
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *log.Logger
}

// NewRootCommand builds the orcamento command tree. Without a subcommand it
// serves the dashboard.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "orcamento",
		Short:         "Painel de orçamento",
		Long:          "Serve the budget dashboard and talk to the budget API from the terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          a.runServe,
	}
	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return a.setup(cmd.ErrOrStderr())
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "TOML config file (default $"+config.FileEnv+")")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	root.AddCommand(
		newServeCommand(a),
		newSummaryCommand(a),
		newAddCommand(a),
		newHistoryCommand(a),
		newExpensesCommand(a),
	)
	return root
}

// setup loads .env and the configuration, then builds the logger. Logs go
// to w so that command output stays clean on stdout.
func (a *app) setup(w io.Writer) error {
	LoadEnvFile()

	cfg, err := LoadAndValidateConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	a.cfg = cfg
	a.logger = SetupLogger(cfg, w).WithComponent(log.ComponentCLI)
	return nil
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
