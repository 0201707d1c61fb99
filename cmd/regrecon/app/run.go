package app

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"regrecon/internal/output"
	"regrecon/internal/sources/epic"
	"regrecon/internal/sources/idlog"
	"regrecon/internal/sources/secutrial"
	"regrecon/pkg/errors"
	"regrecon/pkg/fieldspec"
	"regrecon/pkg/reconcile"
)

// newRunCommand builds the run subcommand: the full reconciliation pass.
func (a *App) newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a reconciliation pass",
		Long: `Run loads the field-spec catalog, the identification log, the clinical
export directory, and the registry extract, compares the two datasets, and
writes the result.

The summary is printed to stdout in the selected format. With --out-dir the
full result is additionally archived as a Markdown report plus JSON and YAML
dumps.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runReconciliation(cmd)
		},
	}

	cmd.Flags().StringVar(&a.config.EpicDir, "epic-dir", a.config.EpicDir, "directory with the clinical export CSV files")
	cmd.Flags().StringVar(&a.config.SecutrialFile, "secutrial", a.config.SecutrialFile, "registry extract CSV file")
	cmd.Flags().StringVar(&a.config.IDLogFile, "idlog", a.config.IDLogFile, "identification log CSV file (FID and SSR columns)")
	cmd.Flags().StringVar(&a.config.FieldSpecFile, "fieldspec", a.config.FieldSpecFile, "field-spec catalog YAML file")
	cmd.Flags().StringVar(&a.config.RenameFile, "rename", a.config.RenameFile, "optional YAML map renaming registry headers to catalog field names")
	cmd.Flags().StringVar(&a.config.OutDir, "out-dir", a.config.OutDir, "directory for the archival report and dumps")
	cmd.Flags().StringVar(&a.config.Delimiter, "delimiter", a.config.Delimiter, "CSV field delimiter (default ',')")
	cmd.Flags().BoolVar(&a.config.Latin1, "latin1", a.config.Latin1, "decode input files from Windows-1252")
	cmd.Flags().IntVar(&a.config.Workers, "workers", a.config.Workers, "parallel comparison workers (default: number of CPUs)")
	cmd.Flags().IntVar(&a.config.TopN, "top-n", a.config.TopN, "size of the problematic-variable ranking (default: from the catalog)")

	for _, flag := range []string{"epic-dir", "secutrial", "idlog", "fieldspec"} {
		_ = cmd.MarkFlagRequired(flag)
	}
	return cmd
}

func (a *App) runReconciliation(cmd *cobra.Command) error {
	cfg := a.config
	logger := a.logger

	catalog, err := fieldspec.Load(cfg.FieldSpecFile)
	if err != nil {
		return err
	}

	ids, err := idlog.Load(cfg.IDLogFile, logger)
	if err != nil {
		return err
	}

	delimiter := delimiterRune(cfg.Delimiter)

	source, err := epic.LoadDir(cfg.EpicDir, ids, logger, epic.Options{
		Comma:  delimiter,
		Latin1: cfg.Latin1,
	})
	if err != nil {
		return err
	}

	rename, err := loadRenameMap(cfg.RenameFile)
	if err != nil {
		return err
	}
	destination, err := secutrial.LoadFile(cfg.SecutrialFile, ids, logger, secutrial.Options{
		Comma:     delimiter,
		Latin1:    cfg.Latin1,
		HeaderMap: rename,
	})
	if err != nil {
		return err
	}

	opts := []reconcile.Option{reconcile.WithLogger(logger)}
	if cfg.Workers > 0 {
		opts = append(opts, reconcile.WithWorkers(cfg.Workers))
	}
	if cfg.TopN > 0 {
		opts = append(opts, reconcile.WithTopN(cfg.TopN))
	}

	engine, err := reconcile.New(catalog, opts...)
	if err != nil {
		return err
	}
	result, err := engine.Run(cmd.Context(), source, destination)
	if err != nil {
		return err
	}

	formatter, err := output.New(output.DetectFormat(cfg.Format))
	if err != nil {
		return err
	}
	if err := formatter.Write(cmd.OutOrStdout(), result); err != nil {
		return err
	}

	if cfg.OutDir != "" {
		return writeArtifacts(cfg.OutDir, result)
	}
	return nil
}

// writeArtifacts archives the full result: the Markdown report plus JSON and
// YAML dumps.
func writeArtifacts(dir string, result *reconcile.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.NewIOError("mkdir", dir, err)
	}

	artifacts := []struct {
		name      string
		formatter output.Formatter
	}{
		{"report.md", &output.MarkdownFormatter{}},
		{"result.json", &output.JSONFormatter{Indent: "  "}},
		{"result.yaml", &output.YAMLFormatter{}},
	}

	for _, artifact := range artifacts {
		path := filepath.Join(dir, artifact.name)
		f, err := os.Create(path)
		if err != nil {
			return errors.NewIOError("create", path, err)
		}
		if err := artifact.formatter.Write(f, result); err != nil {
			f.Close()
			return errors.Wrapf(err, "writing %s", path)
		}
		if err := f.Close(); err != nil {
			return errors.NewIOError("close", path, err)
		}
	}
	return nil
}

// loadRenameMap reads the optional registry header rename map.
func loadRenameMap(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIOError("read", path, err)
	}
	rename := make(map[string]string)
	if err := yaml.Unmarshal(data, &rename); err != nil {
		return nil, errors.Wrapf(err, "parsing rename map %s", path)
	}
	return rename, nil
}

// delimiterRune converts the flag value to a rune; empty means the default.
func delimiterRune(s string) rune {
	if s == "" {
		return 0
	}
	if s == `\t` || s == "tab" {
		return '\t'
	}
	return []rune(s)[0]
}
