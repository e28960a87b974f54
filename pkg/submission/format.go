// Package submission converts validated form values into the literals the
// backend schema expects, and reverses the unit suffixing when a stored
// resource is loaded back into an edit form.
package submission

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/tkestack/paramcheck/internal/coerce"
	"github.com/tkestack/paramcheck/pkg/schema"
	"github.com/tkestack/paramcheck/pkg/units"
)

// ListSeparator splits List field values.
const ListSeparator = ","

// Format converts a raw form value into its submitted literal by the field's
// declared kind:
//   - Integer: the leading integer of the value, nil when there is none
//   - Boolean: unchanged
//   - List: the value split on ","
//   - Map: a JSON object with integer and boolean strings coerced, "" when
//     the value is not a JSON object
//   - anything else: the value as a string followed by unit
func Format(field schema.FieldSchema, raw any, unit string) any {
	switch field.Kind {
	case schema.KindInteger:
		return formatInteger(raw)
	case schema.KindBoolean:
		return raw
	case schema.KindList:
		return formatList(raw)
	case schema.KindMap:
		return formatMap(raw)
	default:
		return coerce.String(raw) + unit
	}
}

func formatInteger(raw any) any {
	switch v := raw.(type) {
	case int, int32, int64:
		return v
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return int64(v)
	}
	n, ok := coerce.ParseIntPrefix(coerce.String(raw))
	if !ok {
		return nil
	}
	return n
}

func formatList(raw any) any {
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, coerce.String(item))
		}
		return out
	}
	return strings.Split(coerce.String(raw), ListSeparator)
}

func formatMap(raw any) any {
	var decoded map[string]any
	switch v := raw.(type) {
	case map[string]any:
		decoded = v
	case map[string]string:
		decoded = make(map[string]any, len(v))
		for key, value := range v {
			decoded[key] = value
		}
	case []schema.MapRow:
		decoded = make(map[string]any, len(v))
		for _, row := range v {
			if strings.TrimSpace(row.Key) == "" {
				continue
			}
			decoded[row.Key] = row.Value
		}
	default:
		if err := json.Unmarshal([]byte(coerce.String(raw)), &decoded); err != nil || decoded == nil {
			return ""
		}
	}

	out := make(map[string]any, len(decoded))
	for key, value := range decoded {
		out[key] = coerceMapValue(value)
	}
	return out
}

// coerceMapValue turns integer strings into integers and "true"/"false" into
// booleans. Other values are kept.
func coerceMapValue(value any) any {
	switch v := value.(type) {
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return n
		}
		switch v {
		case "true":
			return true
		case "false":
			return false
		}
		return v
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return int64(v)
		}
		return v
	default:
		return value
	}
}

// displaySuffixes are stripped from stored quantity literals, longest first.
// Matching is case-sensitive.
var displaySuffixes = func() []string {
	suffixes := []string{"m", "mi", "mib", "M", "Mi", "MiB", "g", "G", "Gi"}
	sort.SliceStable(suffixes, func(i, j int) bool { return len(suffixes[i]) > len(suffixes[j]) })
	return suffixes
}()

// StripUnit removes a known unit suffix from a stored CPU or storage literal
// so the edit form shows the bare number. Other fields are returned
// unchanged.
func StripUnit(field schema.FieldSchema, literal string) string {
	value, _ := splitSuffix(schema.Classify(field), literal)
	return value
}

// SplitUnit splits a stored literal into the bare number and the unit option
// the edit form should preselect.
func SplitUnit(field schema.FieldSchema, literal string) (string, string) {
	class := schema.Classify(field)
	value, suffix := splitSuffix(class, literal)
	if !class.HasUnits() {
		return value, ""
	}
	if suffix != "" {
		if option, ok := units.CanonicalOption(class, suffix); ok {
			return value, option
		}
	}
	return value, units.DefaultUnit(field, class)
}

func splitSuffix(class schema.Class, literal string) (string, string) {
	if !class.HasUnits() {
		return literal, ""
	}
	for _, suffix := range displaySuffixes {
		if len(literal) > len(suffix) && strings.HasSuffix(literal, suffix) {
			return strings.TrimSuffix(literal, suffix), suffix
		}
	}
	return literal, ""
}
