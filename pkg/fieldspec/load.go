package fieldspec

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"

	"regrecon/pkg/errors"
)

// Document is the on-disk YAML form of a field catalog.
type Document struct {
	// AnchorField names the date field used for monthly bucketing.
	// Empty disables the monthly view.
	AnchorField string `yaml:"anchor_field"`

	// TopN overrides the problematic-variable ranking size.
	TopN int `yaml:"top_n"`

	// ReportingWindow restricts the monthly view. Empty months default to
	// April through December.
	ReportingWindow Window `yaml:"reporting_window"`

	// MissingValues overrides the catalog-wide missing sentinels.
	MissingValues []string `yaml:"missing_values"`

	// Fields lists one specification per comparable column.
	Fields []Spec `yaml:"fields"`
}

// Load reads and validates a field catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIOError("read", path, err)
	}

	catalog, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "loading field catalog %s", path)
	}
	return catalog, nil
}

// Parse validates a YAML field catalog document and builds the immutable
// catalog. All validation happens here so a malformed catalog stops the run
// before any outcome is produced.
func Parse(data []byte) (*Catalog, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewConfigError("fieldspec", "malformed YAML document", err)
	}
	return New(doc)
}

// New builds a catalog from a parsed document, validating every
// specification.
func New(doc Document) (*Catalog, error) {
	if len(doc.Fields) == 0 {
		return nil, errors.NewConfigError("fieldspec", "catalog declares no fields", nil)
	}

	specs := make(map[string]Spec, len(doc.Fields))
	for i, spec := range doc.Fields {
		if spec.Name == "" {
			return nil, errors.NewConfigError("fieldspec",
				fmt.Sprintf("field %d has no name", i), nil)
		}
		if _, exists := specs[spec.Name]; exists {
			return nil, errors.NewConfigError("fieldspec",
				fmt.Sprintf("field %q specified twice", spec.Name), nil)
		}
		if err := validateSpec(spec); err != nil {
			return nil, err
		}
		specs[spec.Name] = spec
	}

	window := doc.ReportingWindow
	if len(window.Months) == 0 {
		window.Months = DefaultWindow(window.Year).Months
	}
	for _, m := range window.Months {
		if m < time.January || m > time.December {
			return nil, errors.NewConfigError("fieldspec",
				fmt.Sprintf("reporting window month %d out of range", m), nil)
		}
	}

	topN := doc.TopN
	switch {
	case topN == 0:
		topN = DefaultTopN
	case topN < 0:
		return nil, errors.NewConfigError("fieldspec",
			fmt.Sprintf("top_n must be positive, got %d", topN), nil)
	}

	if doc.AnchorField != "" {
		if anchor, ok := specs[doc.AnchorField]; ok {
			if anchor.Type != TypeDate && anchor.Type != TypeDateTime {
				return nil, errors.NewConfigError("fieldspec",
					fmt.Sprintf("anchor field %q must be a date, is %s", doc.AnchorField, anchor.Type), nil)
			}
		}
	}

	missing := doc.MissingValues
	if missing == nil {
		missing = DefaultMissing
	}

	return &Catalog{
		specs:       specs,
		fields:      sortedFieldNames(specs),
		anchorField: doc.AnchorField,
		window:      window,
		topN:        topN,
		missing:     missing,
	}, nil
}

// validateSpec checks one field specification.
func validateSpec(spec Spec) error {
	if !spec.Type.Valid() {
		return errors.NewConfigError("fieldspec",
			fmt.Sprintf("field %q has unknown type %q", spec.Name, spec.Type), nil)
	}
	if spec.Precision < 0 {
		return errors.NewConfigError("fieldspec",
			fmt.Sprintf("field %q has negative precision %d", spec.Name, spec.Precision), nil)
	}
	if spec.Epsilon < 0 {
		return errors.NewConfigError("fieldspec",
			fmt.Sprintf("field %q has negative epsilon %g", spec.Name, spec.Epsilon), nil)
	}
	for code, label := range spec.Mapping {
		if code == "" {
			// An empty code would shadow the missing-value sentinel.
			return errors.NewConfigError("fieldspec",
				fmt.Sprintf("field %q maps the empty string to %q", spec.Name, label), nil)
		}
	}
	return nil
}
