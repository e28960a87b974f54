// Package messages renders the localized validation messages reported by the
// validator. Messages are pongo2 templates keyed by a stable message key and
// selected by locale.
package messages

import (
	"errors"
	"strings"
)

// Message keys.
const (
	KeyFieldQuantity = "field.quantity"
	KeyFieldEnabled  = "field.enabled"
	KeyFieldRequired = "field.required"
	KeyFieldNeeds    = "field.needs"

	KeyWordAnd = "word.and"
	KeyWordOr  = "word.or"

	// KeyOperatorPrefix prefixes the operator descriptions: op.lt, op.ge, ...
	KeyOperatorPrefix = "op."

	KeyBaseInstanceName = "base.instanceName"
	KeyBaseRequired     = "base.required"
	// KeyLabelPrefix prefixes the display labels of the base fields.
	KeyLabelPrefix = "label."

	KeyBackupSchedule    = "backup.schedule"
	KeyBackupReserveDays = "backup.reserveDays"

	KeyBindingAdminUser  = "binding.adminUser"
	KeySchedulingInvalid = "scheduling.invalid"
)

var (
	// ErrMissingTranslator is reported to a MissingTranslationHandler when no
	// Translator is configured.
	ErrMissingTranslator = errors.New("messages: translator not configured")
	// ErrMissingKey is returned when a catalog has no message for a key.
	ErrMissingKey = errors.New("messages: missing message")
)

// Translator resolves a message key for a locale. Args optionally carries a
// map[string]any of template parameters as its first element.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// TranslatorFunc adapts a function into a Translator.
type TranslatorFunc func(locale, key string, args ...any) (string, error)

// Translate delegates to the underlying function.
func (fn TranslatorFunc) Translate(locale, key string, args ...any) (string, error) {
	return fn(locale, key, args...)
}

// MissingTranslationHandler produces the text shown when a translation is
// missing or fails.
type MissingTranslationHandler func(locale, key string, args []any, err error) string

// Params is the template parameter map passed as the first Translate arg.
type Params = map[string]any

// Localizer binds a Translator to a locale and a missing-translation policy.
type Localizer struct {
	translator Translator
	locale     string
	onMissing  MissingTranslationHandler
}

// NewLocalizer returns a Localizer. A nil translator uses Default(); a nil
// handler falls back to the built-in English catalog and then the key.
func NewLocalizer(t Translator, locale string, onMissing MissingTranslationHandler) Localizer {
	if t == nil {
		t = Default()
	}
	if onMissing == nil {
		onMissing = EnglishFallback
	}
	return Localizer{translator: t, locale: locale, onMissing: onMissing}
}

// Locale returns the locale the localizer renders for.
func (l Localizer) Locale() string {
	return l.locale
}

// Text renders key with params.
func (l Localizer) Text(key string, params Params) string {
	args := []any{params}
	if l.translator == nil {
		return l.missing(key, args, ErrMissingTranslator)
	}
	msg, err := l.translator.Translate(l.locale, key, args...)
	if err != nil || strings.TrimSpace(msg) == "" {
		return l.missing(key, args, err)
	}
	return msg
}

func (l Localizer) missing(key string, args []any, err error) string {
	if l.onMissing == nil {
		return key
	}
	return l.onMissing(l.locale, key, args, err)
}

// Join joins parts with the localized combinator word (KeyWordAnd or
// KeyWordOr).
func (l Localizer) Join(parts []string, wordKey string) string {
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, l.Text(wordKey, nil))
}

// EnglishFallback renders the key from the built-in English catalog, and
// returns the key itself when even that fails.
func EnglishFallback(_, key string, args []any, _ error) string {
	msg, fbErr := Default().Translate("en", key, args...)
	if fbErr != nil || strings.TrimSpace(msg) == "" {
		return key
	}
	return msg
}
