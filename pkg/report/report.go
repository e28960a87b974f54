// Package report renders a validation model as a human readable summary.
package report

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/tkestack/paramcheck/pkg/schema"
	"github.com/tkestack/paramcheck/pkg/validator"
)

//go:embed templates/*.tpl
var embedded embed.FS

// Format selects the report template.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
)

// ParseFormat resolves a format name; unknown names are an error.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatText:
		return FormatText, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("report: unknown format %q", raw)
	}
}

// Row is one validated key as exposed to templates.
type Row struct {
	Key     string
	Label   string
	Status  validator.Status
	Message string
	Failed  bool
	// Mark is a short status marker for the text format.
	Mark string
	// Cell is Message escaped for a markdown table cell.
	Cell string
}

type config struct {
	title        string
	format       Format
	failuresOnly bool
	templates    fs.FS
}

// Option configures rendering.
type Option func(*config)

// WithTitle sets the report heading.
func WithTitle(title string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(title); trimmed != "" {
			cfg.title = trimmed
		}
	}
}

// WithFormat selects the template.
func WithFormat(format Format) Option {
	return func(cfg *config) {
		if format != "" {
			cfg.format = format
		}
	}
}

// WithFailuresOnly omits passing keys from the row list. Totals still count
// every key.
func WithFailuresOnly(enabled bool) Option {
	return func(cfg *config) {
		cfg.failuresOnly = enabled
	}
}

// WithTemplates replaces the bundled templates. The filesystem must provide
// text.tpl and markdown.tpl at its root.
func WithTemplates(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// Render writes the report for model to w. fields supply display labels;
// keys without a schema entry fall back to a label derived from the key.
func Render(w io.Writer, fields []schema.FieldSchema, model validator.Model, options ...Option) error {
	if w == nil {
		return errors.New("report: writer is nil")
	}
	cfg := config{title: "Validation report", format: FormatText}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	files := cfg.templates
	if files == nil {
		sub, err := fs.Sub(embedded, "templates")
		if err != nil {
			return fmt.Errorf("report: templates: %w", err)
		}
		files = sub
	}

	set := pongo2.NewSet("report", pongo2.NewFSLoader(files))
	tmpl, err := set.FromFile(string(cfg.format) + ".tpl")
	if err != nil {
		return fmt.Errorf("report: load %s template: %w", cfg.format, err)
	}

	rows, failed := buildRows(fields, model)
	visible := rows
	if cfg.failuresOnly {
		visible = visible[:0:0]
		for _, row := range rows {
			if row.Failed {
				visible = append(visible, row)
			}
		}
	}

	ctx := pongo2.Context{
		"title":   cfg.title,
		"rows":    visible,
		"checked": len(rows),
		"failed":  failed,
		"valid":   failed == 0,
	}
	if err := tmpl.ExecuteWriter(ctx, w); err != nil {
		return fmt.Errorf("report: render: %w", err)
	}
	return nil
}

func buildRows(fields []schema.FieldSchema, model validator.Model) ([]Row, int) {
	labels := make(map[string]string, len(fields))
	for _, field := range fields {
		labels[field.Name] = field.DisplayLabel()
	}

	rows := make([]Row, 0, model.Len())
	failed := 0
	for _, key := range model.Order {
		result := model.Results[key]
		label, ok := labels[key]
		if !ok {
			label = schema.DefaultLabeler(key)
		}
		row := Row{
			Key:     key,
			Label:   label,
			Status:  result.Status,
			Message: result.Message,
			Failed:  !result.OK(),
			Mark:    "ok",
			Cell:    strings.ReplaceAll(result.Message, "|", `\|`),
		}
		if row.Failed {
			row.Mark = "FAIL"
			failed++
		}
		rows = append(rows, row)
	}
	return rows, failed
}
