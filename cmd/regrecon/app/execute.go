package app

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"regrecon/pkg/logging"
)

// Execute runs the CLI with the given arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// ExitOnError prints the error to stderr and exits non-zero.
func ExitOnError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}

// createRootCommand builds the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "regrecon",
		Short:   "Clinical registry reconciliation",
		Version: a.version,
		Long: `Regrecon compares a clinical information system extract against the
stroke registry extract for the same patients and reports, field by field,
where the two disagree.

It aligns records on the shared FID/SSR key, normalizes both raw values per
the field-spec catalog, classifies every comparison, and writes aggregate
statistics plus a per-patient mismatch pivot.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.PersistentFlags().StringVar(&a.config.ConfigFile, "config", "", "config file (default is $HOME/.regrecon.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().BoolVar(&a.config.NoColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVarP(&a.config.Format, "format", "o", "", "output format: table, json, yaml, markdown")
	rootCmd.PersistentFlags().StringVar(&a.config.LogLevel, "log-level", a.config.LogLevel, "log level: trace, debug, info, warn, error (overrides -v/-q)")
	rootCmd.PersistentFlags().StringVar(&a.config.LogFormat, "log-format", a.config.LogFormat, "log format: auto, console, json")

	rootCmd.SetVersionTemplate("regrecon {{.Version}}\n")

	rootCmd.AddCommand(a.newRunCommand())
	rootCmd.AddCommand(a.newValidateCommand())
	rootCmd.AddCommand(a.newVersionCommand())

	return rootCmd
}

// setupCommand reconfigures the logger once flags are parsed.
func (a *App) setupCommand(_ *cobra.Command, _ []string) error {
	level := a.config.LogLevel
	switch {
	case a.config.Verbose:
		level = "debug"
	case a.config.Quiet:
		level = "warn"
	}

	logger := logging.NewLoggerFromConfig(&logging.Config{
		Level:   level,
		Format:  a.config.LogFormat,
		Output:  a.config.LogOutput,
		NoColor: a.config.NoColor,
	})
	a.logger = &logger
	logging.SetDefault(logger)
	return nil
}
