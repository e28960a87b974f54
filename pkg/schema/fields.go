package schema

import (
	"fmt"
	"strings"
)

// Fields indexes a schema's field list by name and caches each field's Class.
type Fields struct {
	list    []FieldSchema
	classes []Class
	index   map[string]int
}

// NewFields indexes the supplied list. Duplicate or empty names are reported
// in the returned error; the first occurrence of a duplicate wins and the
// returned Fields is always usable.
func NewFields(list []FieldSchema) (*Fields, error) {
	fields := &Fields{
		list:    make([]FieldSchema, 0, len(list)),
		classes: make([]Class, 0, len(list)),
		index:   make(map[string]int, len(list)),
	}

	var problems []string
	for _, field := range list {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			problems = append(problems, "field with empty name")
			continue
		}
		if _, exists := fields.index[name]; exists {
			problems = append(problems, fmt.Sprintf("duplicate field %q", name))
			continue
		}
		field.Name = name
		fields.index[name] = len(fields.list)
		fields.list = append(fields.list, field)
		fields.classes = append(fields.classes, Classify(field))
	}

	if len(problems) > 0 {
		return fields, fmt.Errorf("schema: %s", strings.Join(problems, "; "))
	}
	return fields, nil
}

// Len returns the number of indexed fields.
func (f *Fields) Len() int {
	if f == nil {
		return 0
	}
	return len(f.list)
}

// All returns the indexed fields in declaration order.
func (f *Fields) All() []FieldSchema {
	if f == nil {
		return nil
	}
	return f.list
}

// At returns the field and class at position i.
func (f *Fields) At(i int) (FieldSchema, Class) {
	return f.list[i], f.classes[i]
}

// Lookup returns the named field and its class.
func (f *Fields) Lookup(name string) (FieldSchema, Class, bool) {
	if f == nil {
		return FieldSchema{}, ClassPlain, false
	}
	idx, ok := f.index[name]
	if !ok {
		return FieldSchema{}, ClassPlain, false
	}
	return f.list[idx], f.classes[idx], true
}

// Has reports whether the schema declares the named field.
func (f *Fields) Has(name string) bool {
	_, _, ok := f.Lookup(name)
	return ok
}
