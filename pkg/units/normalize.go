package units

import (
	"math"
	"strconv"
	"strings"

	"github.com/tkestack/paramcheck/pkg/schema"
)

// Normalize converts a magnitude entered in unit into the canonical basis of
// the class: millicores for CPU, MiB for storage, the literal value
// otherwise. A non-numeric magnitude normalizes to NaN.
func Normalize(class schema.Class, magnitude, unit string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(magnitude), 64)
	if err != nil {
		return math.NaN()
	}

	if !class.HasUnits() {
		return value
	}
	if isBaseUnit(unit) {
		return value
	}
	return value * Factor
}

// NormalizeValue parses raw with the value grammar and normalizes it. The
// boolean is false for the empty match.
func NormalizeValue(class schema.Class, raw string) (float64, bool) {
	match := ParseValue(raw)
	if match.Empty() {
		return math.NaN(), false
	}
	return Normalize(class, match.Magnitude, match.Unit), true
}
