package schema

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	labelPolicyOnce sync.Once
	labelPolicy     *bluemonday.Policy
)

// SanitizeText strips markup from backend-supplied labels and descriptions so
// they can be embedded in plain-text validation messages.
func SanitizeText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	cleaned := labelSanitizer().Sanitize(trimmed)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

// Sanitize returns a copy of the field with its label and description
// sanitised and the label defaulted from the name when empty.
func Sanitize(field FieldSchema) FieldSchema {
	field.Name = strings.TrimSpace(field.Name)
	field.Label = SanitizeText(field.Label)
	if field.Label == "" {
		field.Label = DefaultLabeler(field.Name)
	}
	field.Description = SanitizeText(field.Description)
	return field
}

func labelSanitizer() *bluemonday.Policy {
	labelPolicyOnce.Do(func() {
		labelPolicy = bluemonday.StrictPolicy()
	})
	return labelPolicy
}
