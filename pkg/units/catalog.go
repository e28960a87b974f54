package units

import (
	"strings"

	"github.com/tkestack/paramcheck/pkg/schema"
)

// Factor converts the large unit of a class into its canonical base unit.
const Factor = 1000

// Option is one selectable unit for a quantity field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Catalog lists the units a field may be entered in.
type Catalog struct {
	Options []Option `json:"options,omitempty"`
	Default string   `json:"default"`
	// Base names the canonical unit comparisons are made in.
	Base string `json:"base,omitempty"`
}

// Label keys for unit display names; messages translate them.
const (
	LabelCores      = "unit.cores"
	LabelMillicores = "unit.millicores"
	LabelGiB        = "unit.gib"
	LabelMiB        = "unit.mib"
)

var (
	cpuCatalog = Catalog{
		Options: []Option{
			{Value: "", Label: "cores"},
			{Value: "m", Label: "millicores"},
		},
		Default: "",
		Base:    "m",
	}
	storageCatalog = Catalog{
		Options: []Option{
			{Value: "G", Label: "GiB"},
			{Value: "M", Label: "MiB"},
		},
		Default: "G",
		Base:    "M",
	}
)

// CatalogFor returns the unit catalog of a field class. Classes without units
// return an empty catalog.
func CatalogFor(class schema.Class) Catalog {
	switch class {
	case schema.ClassCPU:
		return cloneCatalog(cpuCatalog)
	case schema.ClassStorage:
		return cloneCatalog(storageCatalog)
	default:
		return Catalog{}
	}
}

// DefaultUnit returns the unit preselected for a field: its declared unit
// when that is a catalog option, otherwise the catalog default.
func DefaultUnit(field schema.FieldSchema, class schema.Class) string {
	catalog := CatalogFor(class)
	for _, opt := range catalog.Options {
		if opt.Value == field.Unit {
			return field.Unit
		}
	}
	return catalog.Default
}

// Label is a unit display name. Key is empty when Text should be shown as is.
type Label struct {
	Key  string
	Text string
}

// UnitLabel describes how a unit is shown in messages for the given class.
func UnitLabel(class schema.Class, unit string) Label {
	switch class {
	case schema.ClassCPU:
		if isBaseUnit(unit) {
			return Label{Key: LabelMillicores, Text: "millicores"}
		}
		if unit == "" {
			return Label{Key: LabelCores, Text: "cores"}
		}
	case schema.ClassStorage:
		if isBaseUnit(unit) {
			return Label{Key: LabelMiB, Text: "MiB"}
		}
		switch unit {
		case "", "G", "g", "Gi":
			return Label{Key: LabelGiB, Text: "GiB"}
		}
	}
	return Label{Text: unit}
}

// isBaseUnit reports whether a unit is already the canonical base unit
// (millicores or MiB). The check is case-insensitive.
func isBaseUnit(unit string) bool {
	switch strings.ToLower(unit) {
	case "m", "mi":
		return true
	default:
		return false
	}
}

// CanonicalOption maps a free-form unit onto the catalog option it denotes,
// e.g. "Gi" onto "G" and "mi" onto "m" for CPU. Unknown units report false.
func CanonicalOption(class schema.Class, unit string) (string, bool) {
	switch class {
	case schema.ClassCPU:
		if unit == "" {
			return "", true
		}
		if isBaseUnit(unit) {
			return "m", true
		}
	case schema.ClassStorage:
		switch unit {
		case "G", "g", "Gi", "GiB":
			return "G", true
		case "M", "Mi", "MiB", "m", "mi", "mib":
			return "M", true
		}
	}
	return "", false
}

func cloneCatalog(in Catalog) Catalog {
	out := in
	out.Options = append([]Option(nil), in.Options...)
	return out
}
