package schema

// MapRow is one key/value row produced by the map editor for Map fields.
type MapRow struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// FormValue is the snapshot of what the user has entered: raw values keyed by
// field name plus the unit currently selected for each quantity field.
type FormValue struct {
	FormData map[string]any    `json:"formData" yaml:"formData"`
	UnitMap  map[string]string `json:"unitMap,omitempty" yaml:"unitMap,omitempty"`
}

// Value returns the raw value of the named field.
func (f FormValue) Value(name string) (any, bool) {
	if f.FormData == nil {
		return nil, false
	}
	value, ok := f.FormData[name]
	return value, ok
}

// Unit returns the unit selected for the named field, or "" when none.
func (f FormValue) Unit(name string) string {
	if f.UnitMap == nil {
		return ""
	}
	return f.UnitMap[name]
}

// Values exposes FormData for rule evaluation. The returned map must not be
// mutated.
func (f FormValue) Values() map[string]any {
	return f.FormData
}
