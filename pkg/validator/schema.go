package validator

import (
	"sort"

	"github.com/tkestack/paramcheck/pkg/schema"
)

// Mode selects the base keys checked alongside the dynamic schema.
type Mode int

const (
	// ModeParameters validates the dynamic schema only.
	ModeParameters Mode = iota
	// ModeInstance adds instance name, cluster, version and plan.
	ModeInstance
	// ModePlan adds instance name and cluster.
	ModePlan
	// ModeBinding adds nothing.
	ModeBinding
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeInstance:
		return "instance"
	case ModePlan:
		return "plan"
	case ModeBinding:
		return "binding"
	default:
		return "parameters"
	}
}

// ParseMode maps a mode name onto a Mode; unknown names report false.
func ParseMode(name string) (Mode, bool) {
	for _, m := range []Mode{ModeParameters, ModeInstance, ModePlan, ModeBinding} {
		if m.String() == name {
			return m, true
		}
	}
	return ModeParameters, false
}

// Request configures a whole-form validation pass.
type Request struct {
	Mode Mode
	// SetParameters enables validation of the dynamic schema fields. When
	// false every schema field passes.
	SetParameters bool
	Context       Context
}

// ValidateAll validates every key present in the form. Keys are reported in
// this order: base keys of the mode, the node-scheduling key, backup keys,
// schema fields in declaration order, then the remaining form keys sorted by
// name. Schema fields and base keys missing from the form are not reported.
func (v *Validator) ValidateAll(form schema.FormValue, fields []schema.FieldSchema, req Request) Model {
	index, err := schema.NewFields(fields)
	if err != nil {
		v.log.V(1).Info("schema has invalid fields", "error", err.Error())
	}

	loc := v.localizer()
	model := newModel()
	present := func(key string) bool {
		_, ok := form.Value(key)
		return ok
	}

	for _, key := range baseKeys(req.Mode) {
		if present(key) {
			model.set(key, baseRule(key, form, loc))
		}
	}

	if present(KeyNodeSchedule) {
		model.set(KeyNodeSchedule, schedulingRule(form, loc))
	}

	for _, key := range backupKeys(form) {
		if _, done := model.Results[key]; done {
			continue
		}
		model.set(key, backupRule(key, form, loc))
	}

	for i := 0; i < index.Len(); i++ {
		field, class := index.At(i)
		if _, done := model.Results[field.Name]; done || !present(field.Name) {
			continue
		}
		if !req.SetParameters {
			model.set(field.Name, Success())
			continue
		}
		model.set(field.Name, v.validateField(field, class, form, req.Context, loc))
	}

	for _, key := range sortedKeys(form.FormData) {
		if _, done := model.Results[key]; done {
			continue
		}
		model.set(key, Success())
	}

	return model
}

// backupKeys returns the backup keys present in the form: the fixed ones
// first, then any other backup key sorted by name.
func backupKeys(form schema.FormValue) []string {
	fixed := []string{KeyBackup, KeyBackupDate, KeyBackupTime, KeyBackupReserveDays}
	seen := make(map[string]struct{}, len(fixed))
	var keys []string
	for _, key := range fixed {
		seen[key] = struct{}{}
		if _, ok := form.Value(key); ok {
			keys = append(keys, key)
		}
	}
	for _, key := range sortedKeys(form.FormData) {
		if _, ok := seen[key]; ok || !isBackupKey(key) {
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

func sortedKeys(values map[string]any) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
