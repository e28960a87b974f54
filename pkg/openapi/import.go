package openapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/tkestack/paramcheck/internal/coerce"
	"github.com/tkestack/paramcheck/pkg/schema"
)

// Extension keys recognised on property schemas.
const (
	ExtensionKind             = "x-kind"
	ExtensionUnit             = "x-unit"
	ExtensionEnabledCondition = "x-enabled-condition"
	ExtensionOrder            = "x-order"
	ExtensionLabel            = "x-label"
)

// ErrNoSchema is returned when a document holds no usable parameter schema.
var ErrNoSchema = errors.New("openapi: document does not contain a parameter schema")

// Options configures FieldsFromSchema.
type Options struct {
	// SchemaName selects an entry of components.schemas in an OpenAPI
	// document. Empty means the document must declare exactly one schema.
	SchemaName string
	// ValidateDocument runs kin-openapi document validation before import.
	ValidateDocument bool
}

// Option mutates Options.
type Option func(*Options)

// WithSchemaName selects the component schema to import.
func WithSchemaName(name string) Option {
	return func(o *Options) {
		o.SchemaName = strings.TrimSpace(name)
	}
}

// WithDocumentValidation toggles full document validation.
func WithDocumentValidation(enabled bool) Option {
	return func(o *Options) {
		o.ValidateDocument = enabled
	}
}

// FieldsFromSchema converts the properties of an object schema into field
// schemas. raw may be JSON or YAML.
func FieldsFromSchema(ctx context.Context, raw []byte, options ...Option) ([]schema.FieldSchema, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var opts Options
	for _, opt := range options {
		if opt != nil {
			opt(&opts)
		}
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}

	var probe map[string]any
	if err := yaml.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("openapi: decode document: %w", err)
	}
	if probe == nil {
		return nil, ErrNoSchema
	}

	var (
		root *openapi3.Schema
		err  error
	)
	if _, isDocument := probe["openapi"]; isDocument {
		root, err = componentSchema(ctx, raw, opts)
	} else {
		root, err = bareSchema(ctx, probe)
	}
	if err != nil {
		return nil, err
	}
	return convertProperties(root)
}

func componentSchema(ctx context.Context, raw []byte, opts Options) (*openapi3.Schema, error) {
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if opts.ValidateDocument {
		if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate: %w", err)
		}
	}
	if doc.Components == nil || len(doc.Components.Schemas) == 0 {
		return nil, ErrNoSchema
	}

	schemas := doc.Components.Schemas
	if opts.SchemaName != "" {
		ref, ok := schemas[opts.SchemaName]
		if !ok || ref == nil || ref.Value == nil {
			return nil, fmt.Errorf("openapi: schema %q not found (available: %s)", opts.SchemaName, strings.Join(schemaNames(schemas), ", "))
		}
		return ref.Value, nil
	}
	if len(schemas) > 1 {
		return nil, fmt.Errorf("openapi: document declares %d schemas, select one of: %s", len(schemas), strings.Join(schemaNames(schemas), ", "))
	}
	for _, ref := range schemas {
		if ref != nil && ref.Value != nil {
			return ref.Value, nil
		}
	}
	return nil, ErrNoSchema
}

func bareSchema(ctx context.Context, probe map[string]any) (*openapi3.Schema, error) {
	data, err := json.Marshal(probe)
	if err != nil {
		return nil, fmt.Errorf("openapi: encode schema: %w", err)
	}
	root := &openapi3.Schema{}
	if err := root.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("openapi: decode schema: %w", err)
	}
	if err := root.Validate(ctx, openapi3.AllowExtraSiblingFields("$schema", "$id")); err != nil {
		return nil, fmt.Errorf("openapi: validate schema: %w", err)
	}
	return root, nil
}

func schemaNames(schemas openapi3.Schemas) []string {
	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type orderedField struct {
	field schema.FieldSchema
	order float64
}

func convertProperties(root *openapi3.Schema) ([]schema.FieldSchema, error) {
	if root == nil || len(root.Properties) == 0 {
		return nil, ErrNoSchema
	}

	required := make(map[string]struct{}, len(root.Required))
	for _, name := range root.Required {
		required[name] = struct{}{}
	}

	ordered := make([]orderedField, 0, len(root.Properties))
	for name, ref := range root.Properties {
		if ref == nil || ref.Value == nil {
			continue
		}
		_, isRequired := required[name]
		field := convertProperty(name, ref.Value, isRequired)
		order, ok := coerce.Number(ref.Value.Extensions[ExtensionOrder])
		if !ok {
			order = math.Inf(1)
		}
		ordered = append(ordered, orderedField{field: field, order: order})
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].order != ordered[j].order {
			return ordered[i].order < ordered[j].order
		}
		return ordered[i].field.Name < ordered[j].field.Name
	})

	fields := make([]schema.FieldSchema, 0, len(ordered))
	for _, entry := range ordered {
		fields = append(fields, schema.Sanitize(entry.field))
	}
	if _, err := schema.NewFields(fields); err != nil {
		return nil, fmt.Errorf("openapi: %w", err)
	}
	return fields, nil
}

func convertProperty(name string, src *openapi3.Schema, required bool) schema.FieldSchema {
	field := schema.FieldSchema{
		Name:        name,
		Label:       src.Title,
		Kind:        kindOf(src),
		Optional:    !required,
		Description: src.Description,
		Default:     src.Default,
	}
	if label := extensionString(src.Extensions, ExtensionLabel); label != "" {
		field.Label = label
	}
	if len(src.Enum) > 0 {
		field.Candidates = make([]string, 0, len(src.Enum))
		for _, value := range src.Enum {
			field.Candidates = append(field.Candidates, coerce.String(value))
		}
	}
	field.EnabledCondition = extensionString(src.Extensions, ExtensionEnabledCondition)
	field.Unit = extensionString(src.Extensions, ExtensionUnit)

	// Unitless CPU and storage bounds read as cores and GiB, so bounds are
	// written in the declared unit.
	var boundUnit string
	if schema.Classify(field).HasUnits() {
		boundUnit = field.Unit
	}
	field.Validator = boundsExpression(src, boundUnit)
	return field
}

func kindOf(src *openapi3.Schema) schema.Kind {
	if declared := extensionString(src.Extensions, ExtensionKind); declared != "" {
		return schema.ParseKind(declared)
	}
	if len(src.Enum) > 0 {
		return schema.KindSelect
	}
	switch firstSchemaType(src.Type) {
	case openapi3.TypeInteger:
		return schema.KindInteger
	case openapi3.TypeBoolean:
		return schema.KindBoolean
	case openapi3.TypeArray:
		return schema.KindList
	case openapi3.TypeObject:
		return schema.KindMap
	case openapi3.TypeNumber, openapi3.TypeString:
		return schema.KindString
	default:
		return schema.KindCustom
	}
}

func firstSchemaType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	for _, value := range types.Slice() {
		if value != openapi3.TypeNull {
			return value
		}
	}
	return ""
}

func boundsExpression(src *openapi3.Schema, unit string) string {
	var clauses []string
	if src.Min != nil {
		op := ">="
		if src.ExclusiveMin {
			op = ">"
		}
		clauses = append(clauses, op+formatBound(*src.Min)+unit)
	}
	if src.Max != nil {
		op := "<="
		if src.ExclusiveMax {
			op = "<"
		}
		clauses = append(clauses, op+formatBound(*src.Max)+unit)
	}
	return strings.Join(clauses, "&")
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func extensionString(extensions map[string]any, key string) string {
	if len(extensions) == 0 {
		return ""
	}
	value, ok := extensions[key]
	if !ok || value == nil {
		return ""
	}
	return strings.TrimSpace(coerce.String(value))
}
