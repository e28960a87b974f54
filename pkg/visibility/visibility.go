package visibility

import (
	"strings"

	"github.com/go-logr/logr"

	"github.com/tkestack/paramcheck/pkg/schema"
)

// Evaluator decides whether a field is active based on its enabled
// condition and the current form values.
type Evaluator interface {
	Eval(fieldPath, rule string, ctx Context) (bool, error)
}

// Context provides inputs to an Evaluator. Values holds the form's current
// raw values while Extras allows callers to inject arbitrary context such as
// the service name.
type Context struct {
	Values map[string]any
	Extras map[string]any
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(fieldPath, rule string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(fieldPath, rule string, ctx Context) (bool, error) {
	return fn(fieldPath, rule, ctx)
}

// FromForm builds an evaluation context over a form's current values.
func FromForm(form schema.FormValue) Context {
	return Context{Values: form.FormData}
}

// Active reports whether field is active for ctx. Fields without a condition
// are always active. A rule that fails to evaluate leaves the field active so
// it is still validated; the error is logged at V(1).
func Active(evaluator Evaluator, field schema.FieldSchema, ctx Context, log logr.Logger) bool {
	rule := strings.TrimSpace(field.EnabledCondition)
	if rule == "" || evaluator == nil {
		return true
	}
	ok, err := evaluator.Eval(field.Name, rule, ctx)
	if err != nil {
		log.V(1).Info("enabled condition not evaluated", "field", field.Name, "rule", rule, "error", err.Error())
		return true
	}
	return ok
}
