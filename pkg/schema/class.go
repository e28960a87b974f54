package schema

import "strings"

// Class is the semantic classification of a field, computed once from its
// kind and name. It replaces ad-hoc kind/name checks scattered across the
// validator and formatter.
type Class int

const (
	// ClassPlain fields compare by their literal numeric value, if any.
	ClassPlain Class = iota
	// ClassInteger fields are unitless quantities that must not be negative.
	ClassInteger
	// ClassCPU fields carry cores or millicores; the canonical basis is
	// millicores.
	ClassCPU
	// ClassStorage fields carry storage or memory sizes; the canonical basis
	// is MiB.
	ClassStorage
)

// String implements fmt.Stringer.
func (c Class) String() string {
	switch c {
	case ClassInteger:
		return "integer"
	case ClassCPU:
		return "cpu"
	case ClassStorage:
		return "storage"
	default:
		return "plain"
	}
}

// Quantity reports whether values of this class are non-negative numbers.
func (c Class) Quantity() bool {
	return c == ClassInteger || c == ClassCPU || c == ClassStorage
}

// HasUnits reports whether values of this class carry a unit suffix.
func (c Class) HasUnits() bool {
	return c == ClassCPU || c == ClassStorage
}

// Classify derives the class of a field. Declared CPU/Storage kinds win; the
// name heuristic then matches the lower-case substrings "cpu", "storage" and
// "memory" (case-sensitive, as the backend names them). Boolean, list and map
// fields never become quantities through their name.
func Classify(field FieldSchema) Class {
	switch field.Kind {
	case KindCPU:
		return ClassCPU
	case KindStorage:
		return ClassStorage
	case KindBoolean, KindList, KindMap:
		return ClassPlain
	}

	switch {
	case strings.Contains(field.Name, "cpu"):
		return ClassCPU
	case strings.Contains(field.Name, "storage"), strings.Contains(field.Name, "memory"):
		return ClassStorage
	}

	if field.Kind == KindInteger {
		return ClassInteger
	}
	return ClassPlain
}
