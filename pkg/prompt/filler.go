// Package prompt fills a parameter form interactively, validating every
// answer with the field validator and asking again until it passes.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tkestack/paramcheck/internal/coerce"
	"github.com/tkestack/paramcheck/pkg/schema"
	"github.com/tkestack/paramcheck/pkg/submission"
	"github.com/tkestack/paramcheck/pkg/units"
	"github.com/tkestack/paramcheck/pkg/validator"
)

// ErrTooManyAttempts is returned when a field is still invalid after the
// configured number of answers.
var ErrTooManyAttempts = errors.New("prompt: too many invalid answers")

const defaultMaxAttempts = 3

// Filler asks for each active field of a schema through a Driver.
type Filler struct {
	driver      Driver
	validator   *validator.Validator
	context     validator.Context
	maxAttempts int
}

// Option configures a Filler.
type Option func(*Filler)

// WithValidator sets the validator answers are checked with.
func WithValidator(v *validator.Validator) Option {
	return func(f *Filler) {
		if v != nil {
			f.validator = v
		}
	}
}

// WithContext supplies the service and instance hints rules depend on.
func WithContext(ctx validator.Context) Option {
	return func(f *Filler) {
		f.context = ctx
	}
}

// WithMaxAttempts caps how often one field is asked. Values below one are
// ignored.
func WithMaxAttempts(n int) Option {
	return func(f *Filler) {
		if n > 0 {
			f.maxAttempts = n
		}
	}
}

// New returns a Filler using driver.
func New(driver Driver, opts ...Option) (*Filler, error) {
	if driver == nil {
		return nil, errors.New("prompt: driver is required")
	}
	f := &Filler{
		driver:      driver,
		validator:   validator.New(),
		maxAttempts: defaultMaxAttempts,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f, nil
}

// Fill asks for every active field in declaration order, starting from the
// values in initial. Fields gated off by an earlier answer are skipped. The
// partially filled form is returned alongside any error.
func (f *Filler) Fill(ctx context.Context, fields []schema.FieldSchema, initial schema.FormValue) (schema.FormValue, error) {
	form := cloneForm(initial)

	for _, field := range fields {
		if !f.validator.Active(field, form, f.context) {
			continue
		}
		for attempt := 1; ; attempt++ {
			if err := f.ask(ctx, field, &form); err != nil {
				return form, err
			}
			result := f.validator.ValidateField(field, form, f.context)
			if result.OK() {
				break
			}
			if attempt >= f.maxAttempts {
				return form, fmt.Errorf("%w: %s: %s", ErrTooManyAttempts, field.Name, result.Message)
			}
			if err := f.driver.Info(ctx, result.Message); err != nil {
				return form, err
			}
		}
	}
	return form, nil
}

func (f *Filler) ask(ctx context.Context, field schema.FieldSchema, form *schema.FormValue) error {
	class := schema.Classify(field)
	label := field.DisplayLabel()
	current, hasCurrent := form.Value(field.Name)
	if !hasCurrent || coerce.IsEmpty(current) {
		current = field.Default
	}

	switch {
	case field.Kind == schema.KindBoolean:
		answer, err := f.driver.Confirm(ctx, ConfirmConfig{
			Message: label,
			Default: isTrue(current),
			Help:    field.Description,
		})
		if err != nil {
			return err
		}
		form.FormData[field.Name] = answer

	case field.HasCandidates():
		idx, err := f.driver.Select(ctx, SelectConfig{
			Message:      label,
			Options:      field.Candidates,
			DefaultIndex: indexOf(field.Candidates, coerce.String(current)),
			Help:         field.Description,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(field.Candidates) {
			form.FormData[field.Name] = ""
			return nil
		}
		form.FormData[field.Name] = field.Candidates[idx]

	case class.HasUnits():
		return f.askQuantity(ctx, field, class, label, current, form)

	case field.Kind == schema.KindMap:
		answer, err := f.driver.TextArea(ctx, TextAreaConfig{
			Message: label + " (one key=value per line)",
			Default: formatRows(current),
			Help:    field.Description,
		})
		if err != nil {
			return err
		}
		form.FormData[field.Name] = parseRows(answer)

	case isSecret(field.Name):
		answer, err := f.driver.Password(ctx, InputConfig{
			Message: label,
			Default: coerce.String(current),
			Help:    field.Description,
		})
		if err != nil {
			return err
		}
		form.FormData[field.Name] = answer

	default:
		answer, err := f.driver.Input(ctx, InputConfig{
			Message: label,
			Default: coerce.String(current),
			Help:    field.Description,
		})
		if err != nil {
			return err
		}
		form.FormData[field.Name] = strings.TrimSpace(answer)
	}
	return nil
}

func (f *Filler) askQuantity(ctx context.Context, field schema.FieldSchema, class schema.Class, label string, current any, form *schema.FormValue) error {
	magnitude, unit := submission.SplitUnit(field, coerce.String(current))
	if selected, ok := form.UnitMap[field.Name]; ok {
		unit = selected
	}

	answer, err := f.driver.Input(ctx, InputConfig{
		Message: label,
		Default: magnitude,
		Help:    field.Description,
	})
	if err != nil {
		return err
	}
	answer = strings.TrimSpace(answer)
	form.FormData[field.Name] = answer

	if match := units.ParseValue(answer); !match.Empty() && match.Unit != "" {
		delete(form.UnitMap, field.Name)
		return nil
	}

	catalog := units.CatalogFor(class)
	options := make([]string, 0, len(catalog.Options))
	defaultIndex := 0
	for i, opt := range catalog.Options {
		options = append(options, opt.Label)
		if opt.Value == unit {
			defaultIndex = i
		}
	}
	idx, err := f.driver.Select(ctx, SelectConfig{
		Message:      label + " unit",
		Options:      options,
		DefaultIndex: defaultIndex,
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(catalog.Options) {
		idx = defaultIndex
	}
	form.UnitMap[field.Name] = catalog.Options[idx].Value
	return nil
}

func cloneForm(in schema.FormValue) schema.FormValue {
	out := schema.FormValue{
		FormData: make(map[string]any, len(in.FormData)),
		UnitMap:  make(map[string]string, len(in.UnitMap)),
	}
	for k, v := range in.FormData {
		out.FormData[k] = v
	}
	for k, v := range in.UnitMap {
		out.UnitMap[k] = v
	}
	return out
}

func isTrue(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(strings.TrimSpace(v), "true")
	default:
		return false
	}
}

func isSecret(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "password") || strings.Contains(lower, "secret")
}

func formatRows(value any) string {
	var lines []string
	switch v := value.(type) {
	case []schema.MapRow:
		for _, row := range v {
			lines = append(lines, row.Key+"="+row.Value)
		}
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			lines = append(lines, key+"="+coerce.String(v[key]))
		}
	}
	return strings.Join(lines, "\n")
}

func parseRows(text string) []schema.MapRow {
	rows := []schema.MapRow{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, _ := strings.Cut(line, "=")
		rows = append(rows, schema.MapRow{Key: strings.TrimSpace(key), Value: strings.TrimSpace(value)})
	}
	return rows
}
