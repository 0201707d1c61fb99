// Package output renders a reconciliation result for people and pipelines:
// terminal tables for interactive review, a Markdown report for the study
// archive, and JSON/YAML dumps of the full result.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"

	"regrecon/pkg/reconcile"
)

// Format selects the rendering.
type Format string

const (
	// FormatTable renders terminal tables.
	FormatTable Format = "table"
	// FormatJSON dumps the full result as JSON.
	FormatJSON Format = "json"
	// FormatYAML dumps the full result as YAML.
	FormatYAML Format = "yaml"
	// FormatMarkdown renders the archival report.
	FormatMarkdown Format = "markdown"
)

// Formatter renders one reconciliation result.
type Formatter interface {
	Write(w io.Writer, result *reconcile.Result) error
}

// New returns the formatter for a format.
func New(format Format) (Formatter, error) {
	switch format {
	case FormatTable, "":
		return &TableFormatter{}, nil
	case FormatJSON:
		return &JSONFormatter{Indent: "  "}, nil
	case FormatYAML:
		return &YAMLFormatter{}, nil
	case FormatMarkdown:
		return &MarkdownFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format: %q", format)
	}
}

// DetectFormat picks the format: the explicit one if given, tables on a
// terminal, JSON for pipes and redirects.
func DetectFormat(explicit string) Format {
	if explicit != "" {
		return Format(strings.ToLower(explicit))
	}
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return FormatTable
	}
	return FormatJSON
}

// JSONFormatter dumps the full result as JSON.
type JSONFormatter struct {
	Indent string
}

// Write implements Formatter.
func (f *JSONFormatter) Write(w io.Writer, result *reconcile.Result) error {
	encoder := json.NewEncoder(w)
	if f.Indent != "" {
		encoder.SetIndent("", f.Indent)
	}
	return encoder.Encode(result)
}

// YAMLFormatter dumps the full result as YAML.
type YAMLFormatter struct{}

// Write implements Formatter.
func (f *YAMLFormatter) Write(w io.Writer, result *reconcile.Result) error {
	data, err := yaml.MarshalWithOptions(result,
		yaml.Indent(2),
		yaml.IndentSequence(false),
	)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
