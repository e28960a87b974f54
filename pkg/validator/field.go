package validator

import (
	"math"
	"strings"

	"github.com/tkestack/paramcheck/internal/coerce"
	"github.com/tkestack/paramcheck/pkg/expression"
	"github.com/tkestack/paramcheck/pkg/messages"
	"github.com/tkestack/paramcheck/pkg/schema"
	"github.com/tkestack/paramcheck/pkg/units"
	"github.com/tkestack/paramcheck/pkg/visibility"
)

// ValidateField runs the per-field checks in order: enabled condition,
// required value, sign, then the comparison expression. The first failing
// check decides the result.
func (v *Validator) ValidateField(field schema.FieldSchema, form schema.FormValue, ctx Context) Result {
	return v.validateField(field, schema.Classify(field), form, ctx, v.localizer())
}

func (v *Validator) validateField(field schema.FieldSchema, class schema.Class, form schema.FormValue, ctx Context, loc messages.Localizer) Result {
	if !visibility.Active(v.conditions, field, conditionContext(form, ctx), v.log) {
		return Success()
	}

	label := field.DisplayLabel()
	value, _ := form.Value(field.Name)

	if !field.Optional && field.Kind != schema.KindBoolean && coerce.IsEmpty(value) {
		return Failed(loc.Text(emptyMessageKey(field, class), messages.Params{"label": label}))
	}

	if class.Quantity() && !coerce.IsEmpty(value) && negativeOrNaN(class, coerce.String(value)) {
		return Failed(loc.Text(messages.KeyFieldQuantity, messages.Params{"label": label}))
	}

	if result, applies := adminUsernameRule(field, value, ctx, loc); applies {
		return result
	}

	return v.checkExpression(field, class, value, form, loc)
}

// Active reports whether field's enabled condition holds for form.
func (v *Validator) Active(field schema.FieldSchema, form schema.FormValue, ctx Context) bool {
	return visibility.Active(v.conditions, field, conditionContext(form, ctx), v.log)
}

func conditionContext(form schema.FormValue, ctx Context) visibility.Context {
	vctx := visibility.FromForm(form)
	if ctx.ServiceName != "" {
		vctx.Extras = map[string]any{"service": ctx.ServiceName}
	}
	return vctx
}

func emptyMessageKey(field schema.FieldSchema, class schema.Class) string {
	switch {
	case class.Quantity():
		return messages.KeyFieldQuantity
	case field.Kind == schema.KindBoolean:
		return messages.KeyFieldEnabled
	default:
		return messages.KeyFieldRequired
	}
}

func negativeOrNaN(class schema.Class, raw string) bool {
	value, ok := units.NormalizeValue(class, raw)
	return !ok || math.IsNaN(value) || value < 0
}

// subject returns the value the expression is checked against: the raw value
// with the selected unit appended when the value carries none.
func subject(field schema.FieldSchema, value any, form schema.FormValue) string {
	raw := strings.TrimSpace(coerce.String(value))
	unit := form.Unit(field.Name)
	if raw == "" || unit == "" {
		return raw
	}
	if match := units.ParseValue(raw); !match.Empty() && match.Unit == "" {
		return raw + unit
	}
	return raw
}

func (v *Validator) checkExpression(field schema.FieldSchema, class schema.Class, value any, form schema.FormValue, loc messages.Localizer) Result {
	expr := expression.Parse(field.Validator)
	if expr.Empty() {
		return Success()
	}

	outcome := expr.Evaluate(subject(field, value, form), class)
	if outcome.Passed {
		return Success()
	}

	descriptions := make([]string, 0, len(outcome.Clauses))
	for _, clause := range outcome.Clauses {
		if !clause.Clause.Valid() {
			v.log.V(1).Info("validator clause not parsed", "field", field.Name, "clause", clause.Clause.Raw)
		}
		descriptions = append(descriptions, describeClause(loc, class, clause.Clause))
	}

	word := messages.KeyWordAnd
	if outcome.Combinator == expression.Or {
		word = messages.KeyWordOr
	}
	return Failed(loc.Text(messages.KeyFieldNeeds, messages.Params{
		"label":      field.DisplayLabel(),
		"conditions": loc.Join(descriptions, word),
	}))
}

// describeClause renders "greater than or equal to 500 millicores". Clauses
// that did not parse are shown as written.
func describeClause(loc messages.Localizer, class schema.Class, clause expression.Clause) string {
	if !clause.Valid() {
		return clause.Raw
	}
	label := units.UnitLabel(class, clause.Unit)
	unit := label.Text
	if label.Key != "" {
		unit = loc.Text(label.Key, nil)
	}
	return loc.Text(messages.KeyOperatorPrefix+clause.Operator.Key(), messages.Params{
		"value": clause.Bound,
		"unit":  unit,
	})
}
