package units

import (
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/tkestack/paramcheck/pkg/schema"
)

// ToQuantity converts a submitted magnitude/unit pair into a Kubernetes
// quantity. Storage units are emitted with decimal suffixes to stay
// consistent with the ×1000 comparisons made by Normalize.
func ToQuantity(class schema.Class, magnitude, unit string) (resource.Quantity, error) {
	magnitude = strings.TrimSpace(magnitude)
	if magnitude == "" {
		return resource.Quantity{}, fmt.Errorf("units: empty magnitude")
	}

	var literal string
	switch class {
	case schema.ClassCPU:
		if isBaseUnit(unit) {
			literal = magnitude + "m"
		} else {
			literal = magnitude
		}
	case schema.ClassStorage:
		if isBaseUnit(unit) {
			literal = magnitude + "M"
		} else {
			literal = magnitude + "G"
		}
	default:
		literal = magnitude + unit
	}

	q, err := resource.ParseQuantity(literal)
	if err != nil {
		return resource.Quantity{}, fmt.Errorf("units: parse quantity %q: %w", literal, err)
	}
	return q, nil
}

// ParseQuantity parses a submitted literal such as "500m" or "10G" into a
// quantity for the class.
func ParseQuantity(class schema.Class, literal string) (resource.Quantity, error) {
	match := ParseValue(literal)
	if match.Empty() {
		return resource.Quantity{}, fmt.Errorf("units: %q is not a quantity", literal)
	}
	return ToQuantity(class, match.Magnitude, match.Unit)
}
