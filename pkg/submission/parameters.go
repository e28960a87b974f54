package submission

import (
	"fmt"

	"github.com/go-logr/logr"
	corev1 "k8s.io/api/core/v1"

	"github.com/tkestack/paramcheck/internal/coerce"
	"github.com/tkestack/paramcheck/pkg/schema"
	"github.com/tkestack/paramcheck/pkg/units"
	"github.com/tkestack/paramcheck/pkg/visibility"
	"github.com/tkestack/paramcheck/pkg/visibility/expr"
)

// BuildParameters formats every active field of form into the outbound
// parameter map. Fields the user never touched fall back to their default;
// fields without a value or default are left out. A nil evaluator uses the
// standard enabled-condition evaluator.
func BuildParameters(fields []schema.FieldSchema, form schema.FormValue, evaluator visibility.Evaluator) (map[string]any, error) {
	index, err := schema.NewFields(fields)
	if err != nil {
		return nil, fmt.Errorf("submission: %w", err)
	}
	if evaluator == nil {
		evaluator = expr.New()
	}

	ctx := visibility.FromForm(form)
	params := make(map[string]any, index.Len())
	for i := 0; i < index.Len(); i++ {
		field, class := index.At(i)
		if !visibility.Active(evaluator, field, ctx, logr.Discard()) {
			continue
		}

		value, touched := form.Value(field.Name)
		if !touched {
			if field.Default == nil {
				continue
			}
			value = field.Default
		}

		params[field.Name] = Format(field, value, submittedUnit(field, class, value, form))
	}
	return params, nil
}

// submittedUnit is the unit appended to a quantity literal: the one selected
// in the form, else the field's default unit. Values that already carry a
// unit get none.
func submittedUnit(field schema.FieldSchema, class schema.Class, value any, form schema.FormValue) string {
	if !class.HasUnits() {
		return form.Unit(field.Name)
	}
	if match := units.ParseValue(coerce.String(value)); !match.Empty() && match.Unit != "" {
		return ""
	}
	if unit, selected := form.UnitMap[field.Name]; selected {
		return unit
	}
	return units.DefaultUnit(field, class)
}

// ResourceList converts the CPU and storage entries of a parameter map into a
// Kubernetes resource list keyed by field name.
func ResourceList(fields []schema.FieldSchema, params map[string]any) (corev1.ResourceList, error) {
	list := corev1.ResourceList{}
	for _, field := range fields {
		class := schema.Classify(field)
		if !class.HasUnits() {
			continue
		}
		value, ok := params[field.Name]
		if !ok {
			continue
		}
		q, err := units.ParseQuantity(class, coerce.String(value))
		if err != nil {
			return nil, fmt.Errorf("submission: %s: %w", field.Name, err)
		}
		list[corev1.ResourceName(field.Name)] = q
	}
	return list, nil
}
