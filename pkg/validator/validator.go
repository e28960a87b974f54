// Package validator validates form values against a dynamic parameter
// schema. Every call computes a fresh result from its inputs; a Validator
// holds configuration only and is safe for concurrent use.
package validator

import (
	"encoding/json"

	"github.com/go-logr/logr"

	"github.com/tkestack/paramcheck/pkg/messages"
	"github.com/tkestack/paramcheck/pkg/visibility"
	"github.com/tkestack/paramcheck/pkg/visibility/expr"
)

// Status is the terminal state of a field validation.
type Status string

const (
	StatusSuccess Status = "Success"
	StatusFailed  Status = "Failed"
)

// Result is the verdict on one field.
type Result struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// Success returns a passing result.
func Success() Result {
	return Result{Status: StatusSuccess}
}

// Failed returns a failing result carrying msg.
func Failed(msg string) Result {
	return Result{Status: StatusFailed, Message: msg}
}

// OK reports whether the result passed.
func (r Result) OK() bool {
	return r.Status == StatusSuccess
}

// Model holds the per-key results of one validation pass in the order the
// keys were validated.
type Model struct {
	Order   []string
	Results map[string]Result
}

func newModel() Model {
	return Model{Results: make(map[string]Result)}
}

func (m *Model) set(key string, result Result) {
	if _, exists := m.Results[key]; !exists {
		m.Order = append(m.Order, key)
	}
	m.Results[key] = result
}

// Get returns the result of key.
func (m Model) Get(key string) (Result, bool) {
	result, ok := m.Results[key]
	return result, ok
}

// Len returns the number of validated keys.
func (m Model) Len() int {
	return len(m.Order)
}

// Valid reports whether every key passed.
func (m Model) Valid() bool {
	for _, result := range m.Results {
		if !result.OK() {
			return false
		}
	}
	return true
}

// FirstFailure returns the first failing key in validation order.
func (m Model) FirstFailure() (string, Result, bool) {
	for _, key := range m.Order {
		if result := m.Results[key]; !result.OK() {
			return key, result, true
		}
	}
	return "", Result{}, false
}

// Failures returns the failing keys in validation order.
func (m Model) Failures() []string {
	var out []string
	for _, key := range m.Order {
		if !m.Results[key].OK() {
			out = append(out, key)
		}
	}
	return out
}

// MarshalJSON encodes the model as an object keyed by field name.
func (m Model) MarshalJSON() ([]byte, error) {
	if m.Results == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m.Results)
}

// ExistingInstance describes the resource a binding is created against.
type ExistingInstance struct {
	Name          string `json:"name,omitempty" yaml:"name,omitempty"`
	AdminUsername string `json:"adminUsername,omitempty" yaml:"adminUsername,omitempty"`
}

// Context carries the optional hints some rules depend on.
type Context struct {
	ServiceName string
	Instance    *ExistingInstance
}

// Validator validates fields and whole forms.
type Validator struct {
	translator messages.Translator
	locale     string
	onMissing  messages.MissingTranslationHandler
	conditions visibility.Evaluator
	log        logr.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithTranslator sets the message translator. Defaults to the built-in
// catalog.
func WithTranslator(t messages.Translator) Option {
	return func(v *Validator) {
		if t != nil {
			v.translator = t
		}
	}
}

// WithLocale sets the locale messages are rendered in.
func WithLocale(locale string) Option {
	return func(v *Validator) {
		v.locale = locale
	}
}

// WithMissingTranslationHandler controls the text used when a message is
// missing from the translator.
func WithMissingTranslationHandler(h messages.MissingTranslationHandler) Option {
	return func(v *Validator) {
		v.onMissing = h
	}
}

// WithConditionEvaluator replaces the enabled-condition evaluator.
func WithConditionEvaluator(e visibility.Evaluator) Option {
	return func(v *Validator) {
		if e != nil {
			v.conditions = e
		}
	}
}

// WithLogger sets the logger used for degraded rules.
func WithLogger(log logr.Logger) Option {
	return func(v *Validator) {
		v.log = log
	}
}

// New returns a Validator with the supplied options applied.
func New(opts ...Option) *Validator {
	v := &Validator{
		translator: messages.Default(),
		locale:     "en",
		conditions: expr.New(),
		log:        logr.Discard(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(v)
	}
	return v
}

func (v *Validator) localizer() messages.Localizer {
	return messages.NewLocalizer(v.translator, v.locale, v.onMissing)
}
