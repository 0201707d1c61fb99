package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"regrecon/pkg/fieldspec"
)

// newValidateCommand builds the validate subcommand: catalog sanity checking
// without touching any data.
func (a *App) newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <fieldspec.yaml>",
		Short: "Validate a field-spec catalog",
		Long: `Validate parses a field-spec catalog and reports malformed entries:
unknown types, duplicate field names, negative precision or epsilon, empty
value mappings, and reporting-window problems.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := fieldspec.Load(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: OK\n", args[0])
			fmt.Fprintf(out, "  fields:  %d\n", catalog.Len())
			if anchor := catalog.AnchorField(); anchor != "" {
				fmt.Fprintf(out, "  anchor:  %s\n", anchor)
			}
			window := catalog.Window()
			if window.Year != 0 {
				fmt.Fprintf(out, "  window:  %s %d\n", windowRange(window), window.Year)
			}
			fmt.Fprintf(out, "  top-n:   %d\n", catalog.TopN())
			return nil
		},
	}
}

// windowRange renders the reporting window months compactly.
func windowRange(w fieldspec.Window) string {
	if len(w.Months) == 0 {
		return "none"
	}
	if contiguous(w.Months) {
		return fmt.Sprintf("%s-%s", w.Months[0], w.Months[len(w.Months)-1])
	}
	names := make([]string, len(w.Months))
	for i, m := range w.Months {
		names[i] = m.String()
	}
	return strings.Join(names, ", ")
}

func contiguous(months []time.Month) bool {
	for i := 1; i < len(months); i++ {
		if months[i] != months[i-1]+1 {
			return false
		}
	}
	return len(months) > 1
}
