// Package scheduling models the node-scheduling editor of the creation form
// and validates its rows the way the API server validates node selector
// requirements.
package scheduling

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/util/validation"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

// Requirement is one row of the selector or affinity table.
type Requirement struct {
	Key      string                      `json:"key" yaml:"key"`
	Operator corev1.NodeSelectorOperator `json:"operator" yaml:"operator"`
	Values   []string                    `json:"values,omitempty" yaml:"values,omitempty"`
}

// Populated reports whether the row was filled in. Blank rows left by the
// table editor are ignored.
func (r Requirement) Populated() bool {
	if strings.TrimSpace(r.Key) != "" || r.Operator != "" {
		return true
	}
	for _, v := range r.Values {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

// Spec is the node-scheduling composite value.
type Spec struct {
	Enabled      bool          `json:"enabled" yaml:"enabled"`
	NodeSelector []Requirement `json:"nodeSelector,omitempty" yaml:"nodeSelector,omitempty"`
	Affinity     []Requirement `json:"affinity,omitempty" yaml:"affinity,omitempty"`
}

var supportedOperators = []corev1.NodeSelectorOperator{
	corev1.NodeSelectorOpIn,
	corev1.NodeSelectorOpNotIn,
	corev1.NodeSelectorOpExists,
	corev1.NodeSelectorOpDoesNotExist,
	corev1.NodeSelectorOpGt,
	corev1.NodeSelectorOpLt,
}

// Decode reads a Spec from a raw form value: a Spec, a pointer to one, or
// any JSON-compatible structure such as a decoded map. Nil decodes to the
// zero Spec.
func Decode(value any) (Spec, error) {
	switch v := value.(type) {
	case nil:
		return Spec{}, nil
	case Spec:
		return v, nil
	case *Spec:
		if v == nil {
			return Spec{}, nil
		}
		return *v, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return Spec{}, nil
		}
		var spec Spec
		if err := json.Unmarshal([]byte(v), &spec); err != nil {
			return Spec{}, fmt.Errorf("scheduling: decode: %w", err)
		}
		return spec, nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return Spec{}, fmt.Errorf("scheduling: encode: %w", err)
	}
	var spec Spec
	if err := json.Unmarshal(raw, &spec); err != nil {
		return Spec{}, fmt.Errorf("scheduling: decode: %w", err)
	}
	return spec, nil
}

// Validate checks every populated row of an enabled spec. A disabled spec
// is always valid.
func Validate(spec Spec, fldPath *field.Path) field.ErrorList {
	allErrs := field.ErrorList{}
	if !spec.Enabled {
		return allErrs
	}

	for i, req := range spec.NodeSelector {
		if !req.Populated() {
			continue
		}
		allErrs = append(allErrs, validateRequirement(req, fldPath.Child("nodeSelector").Index(i))...)
	}
	for i, req := range spec.Affinity {
		if !req.Populated() {
			continue
		}
		allErrs = append(allErrs, validateRequirement(req, fldPath.Child("affinity").Index(i))...)
	}
	return allErrs
}

func validateRequirement(req Requirement, fldPath *field.Path) field.ErrorList {
	allErrs := field.ErrorList{}

	keyPath := fldPath.Child("key")
	if strings.TrimSpace(req.Key) == "" {
		allErrs = append(allErrs, field.Required(keyPath, "key is required"))
	} else {
		for _, msg := range validation.IsQualifiedName(req.Key) {
			allErrs = append(allErrs, field.Invalid(keyPath, req.Key, msg))
		}
	}

	valuesPath := fldPath.Child("values")
	switch req.Operator {
	case corev1.NodeSelectorOpIn, corev1.NodeSelectorOpNotIn:
		if len(req.Values) == 0 {
			allErrs = append(allErrs, field.Required(valuesPath, "must be specified when operator is In or NotIn"))
		}
	case corev1.NodeSelectorOpExists, corev1.NodeSelectorOpDoesNotExist:
		if len(req.Values) > 0 {
			allErrs = append(allErrs, field.Forbidden(valuesPath, "may not be specified when operator is Exists or DoesNotExist"))
		}
	case corev1.NodeSelectorOpGt, corev1.NodeSelectorOpLt:
		if len(req.Values) != 1 {
			allErrs = append(allErrs, field.Required(valuesPath, "must be specified single value when operator is Gt or Lt"))
		} else if _, err := strconv.ParseInt(req.Values[0], 10, 64); err != nil {
			allErrs = append(allErrs, field.Invalid(valuesPath.Index(0), req.Values[0], "must be an integer when operator is Gt or Lt"))
		}
	default:
		allErrs = append(allErrs, field.NotSupported(fldPath.Child("operator"), req.Operator, supportedOperators))
	}

	for i, v := range req.Values {
		for _, msg := range validation.IsValidLabelValue(v) {
			allErrs = append(allErrs, field.Invalid(valuesPath.Index(i), v, msg))
		}
	}
	return allErrs
}

// NodeSelectorTerms converts an enabled spec into the node affinity terms
// submitted with the resource. Selector rows become one required term;
// affinity rows become a second.
func (s Spec) NodeSelectorTerms() []corev1.NodeSelectorTerm {
	if !s.Enabled {
		return nil
	}
	var terms []corev1.NodeSelectorTerm
	for _, rows := range [][]Requirement{s.NodeSelector, s.Affinity} {
		var exprs []corev1.NodeSelectorRequirement
		for _, req := range rows {
			if !req.Populated() {
				continue
			}
			exprs = append(exprs, corev1.NodeSelectorRequirement{
				Key:      req.Key,
				Operator: req.Operator,
				Values:   append([]string(nil), req.Values...),
			})
		}
		if len(exprs) > 0 {
			terms = append(terms, corev1.NodeSelectorTerm{MatchExpressions: exprs})
		}
	}
	return terms
}
