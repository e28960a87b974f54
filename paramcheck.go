// Package paramcheck validates and normalises the dynamic parameters of
// managed middleware resources (instances, plans and bindings). The
// functions here are the entry points the surrounding form layer calls; the
// packages under pkg/ expose the individual stages.
package paramcheck

import (
	"context"
	"io/fs"

	"github.com/tkestack/paramcheck/pkg/catalog"
	"github.com/tkestack/paramcheck/pkg/openapi"
	"github.com/tkestack/paramcheck/pkg/schema"
	"github.com/tkestack/paramcheck/pkg/submission"
	"github.com/tkestack/paramcheck/pkg/validator"
)

// FieldSchema aliases schema.FieldSchema for callers that only import the
// root package.
type FieldSchema = schema.FieldSchema

// FormValue aliases schema.FormValue.
type FormValue = schema.FormValue

// Result aliases validator.Result.
type Result = validator.Result

// ValidationModel aliases validator.Model.
type ValidationModel = validator.Model

// Context aliases validator.Context, the optional service and instance hints.
type Context = validator.Context

// ExistingInstance aliases validator.ExistingInstance.
type ExistingInstance = validator.ExistingInstance

// ValidateAllFields validates every key of the form, checking keys that name
// a schema field against it. Schema fields are always checked; use validator.ValidateAll directly for
// base-key modes or to honour a "set parameters" toggle.
func ValidateAllFields(form FormValue, fields []FieldSchema, options ...validator.Option) ValidationModel {
	return validator.New(options...).ValidateAll(form, fields, validator.Request{
		Mode:          validator.ModeParameters,
		SetParameters: true,
	})
}

// ValidateSingleField validates one field against the current form values.
func ValidateSingleField(field FieldSchema, form FormValue, ctx Context, options ...validator.Option) Result {
	return validator.New(options...).ValidateField(field, form, ctx)
}

// FormatForSubmission converts a raw form value into the literal sent to the
// backend.
func FormatForSubmission(field FieldSchema, raw any, unit string) any {
	return submission.Format(field, raw, unit)
}

// StripUnitForDisplay removes a stored unit suffix from CPU and storage
// values so an edit form shows the bare number.
func StripUnitForDisplay(field FieldSchema, literal string) string {
	return submission.StripUnit(field, literal)
}

// LoadCatalog loads service schemas from fsys, or the bundled schemas when
// fsys is nil.
func LoadCatalog(fsys fs.FS) (*catalog.Store, error) {
	if fsys == nil {
		return catalog.LoadEmbedded()
	}
	return catalog.LoadFS(fsys)
}

// FieldsFromPlanSchema derives field schemas from a plan's OpenAPI or JSON
// schema document.
func FieldsFromPlanSchema(ctx context.Context, raw []byte, options ...openapi.Option) ([]FieldSchema, error) {
	return openapi.FieldsFromSchema(ctx, raw, options...)
}
