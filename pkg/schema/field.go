package schema

import "strings"

// Kind is the declared type of a parameter. It drives parsing, unit
// eligibility, and submission coercion.
type Kind string

const (
	KindInteger Kind = "Integer"
	KindString  Kind = "String"
	KindSelect  Kind = "Select"
	KindBoolean Kind = "Boolean"
	KindCPU     Kind = "CPU"
	KindStorage Kind = "Storage"
	KindList    Kind = "List"
	KindMap     Kind = "Map"
	KindCustom  Kind = "Custom"
)

var knownKinds = map[string]Kind{
	"integer": KindInteger,
	"int":     KindInteger,
	"string":  KindString,
	"select":  KindSelect,
	"boolean": KindBoolean,
	"bool":    KindBoolean,
	"cpu":     KindCPU,
	"storage": KindStorage,
	"memory":  KindStorage,
	"list":    KindList,
	"map":     KindMap,
	"custom":  KindCustom,
}

// ParseKind resolves a kind name case-insensitively. Unknown names map to
// KindCustom so new backend kinds degrade to plain string handling.
func ParseKind(raw string) Kind {
	if kind, ok := knownKinds[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return kind
	}
	return KindCustom
}

// UnmarshalText lets JSON and YAML schema documents spell kinds in any case.
func (k *Kind) UnmarshalText(text []byte) error {
	*k = ParseKind(string(text))
	return nil
}

// FieldSchema is one parameter definition supplied by the backend.
type FieldSchema struct {
	// Name is the unique key of the field within one schema.
	Name  string `json:"name" yaml:"name"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
	Kind  Kind   `json:"kind" yaml:"kind"`
	// Optional fields may be left empty. Boolean fields are always considered
	// present regardless of this flag.
	Optional bool `json:"optional,omitempty" yaml:"optional,omitempty"`
	// Candidates lists the allowed discrete values. Presence renders and
	// validates the field as a selection independent of Kind.
	Candidates []string `json:"candidates,omitempty" yaml:"candidates,omitempty"`
	// Validator is a comparison expression such as ">=1&<=32" or "==3|==5".
	Validator string `json:"validator,omitempty" yaml:"validator,omitempty"`
	// EnabledCondition gates the field on a sibling value, e.g. "mode==cluster".
	EnabledCondition string `json:"enabledCondition,omitempty" yaml:"enabledCondition,omitempty"`
	Default          any    `json:"default,omitempty" yaml:"default,omitempty"`
	Description      string `json:"description,omitempty" yaml:"description,omitempty"`
	// Unit is the unit preselected for quantity fields when the form has not
	// chosen one yet.
	Unit string `json:"unit,omitempty" yaml:"unit,omitempty"`
}

// DisplayLabel returns the label used in messages, falling back to a label
// derived from the field name.
func (f FieldSchema) DisplayLabel() string {
	if label := strings.TrimSpace(f.Label); label != "" {
		return label
	}
	return DefaultLabeler(f.Name)
}

// HasCandidates reports whether the field is constrained to a discrete set.
func (f FieldSchema) HasCandidates() bool {
	return len(f.Candidates) > 0
}
