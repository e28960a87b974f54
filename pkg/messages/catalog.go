package messages

import (
	"fmt"
	"sort"
	"sync"

	"github.com/flosch/pongo2/v6"
	"golang.org/x/text/language"
)

// Catalog is the default Translator: a set of compiled pongo2 message
// templates per supported language. English is always supported and is the
// fallback for locales no other language matches.
type Catalog struct {
	tags      []language.Tag
	matcher   language.Matcher
	templates map[language.Tag]map[string]*pongo2.Template
}

var _ Translator = (*Catalog)(nil)

type config struct {
	messages map[language.Tag]map[string]string
}

// Option configures a Catalog.
type Option func(*config)

// WithMessages adds or overrides the messages of a language.
func WithMessages(tag language.Tag, messages map[string]string) Option {
	return func(cfg *config) {
		current := cfg.messages[tag]
		if current == nil {
			current = make(map[string]string, len(messages))
			cfg.messages[tag] = current
		}
		for key, text := range messages {
			current[key] = text
		}
	}
}

// NewCatalog compiles the built-in English and Chinese messages together
// with any messages supplied through options.
func NewCatalog(opts ...Option) (*Catalog, error) {
	cfg := &config{messages: make(map[language.Tag]map[string]string)}
	for tag, msgs := range builtinMessages() {
		WithMessages(tag, msgs)(cfg)
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	catalog := &Catalog{
		templates: make(map[language.Tag]map[string]*pongo2.Template, len(cfg.messages)),
	}

	catalog.tags = append(catalog.tags, language.English)
	var others []language.Tag
	for tag := range cfg.messages {
		if tag != language.English {
			others = append(others, tag)
		}
	}
	sort.Slice(others, func(i, j int) bool { return others[i].String() < others[j].String() })
	catalog.tags = append(catalog.tags, others...)
	catalog.matcher = language.NewMatcher(catalog.tags)

	for tag, msgs := range cfg.messages {
		compiled := make(map[string]*pongo2.Template, len(msgs))
		for key, text := range msgs {
			tmpl, err := pongo2.FromString("{% autoescape off %}" + text + "{% endautoescape %}")
			if err != nil {
				return nil, fmt.Errorf("messages: compile %s %q: %w", tag, key, err)
			}
			compiled[key] = tmpl
		}
		catalog.templates[tag] = compiled
	}

	return catalog, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the shared catalog of built-in messages.
func Default() *Catalog {
	defaultOnce.Do(func() {
		catalog, err := NewCatalog()
		if err != nil {
			panic(err)
		}
		defaultCatalog = catalog
	})
	return defaultCatalog
}

// Resolve maps a locale such as "zh-CN" onto the best supported language.
// Empty and unknown locales resolve to English.
func (c *Catalog) Resolve(locale string) language.Tag {
	tag, err := language.Parse(locale)
	if err != nil {
		return language.English
	}
	_, index, confidence := c.matcher.Match(tag)
	if confidence == language.No {
		return language.English
	}
	return c.tags[index]
}

// Languages returns the supported languages, English first.
func (c *Catalog) Languages() []language.Tag {
	return append([]language.Tag(nil), c.tags...)
}

// Translate renders key for locale. The first arg, when it is a
// map[string]any, supplies the template parameters.
func (c *Catalog) Translate(locale, key string, args ...any) (string, error) {
	tag := c.Resolve(locale)
	tmpl, ok := c.templates[tag][key]
	if !ok {
		return "", fmt.Errorf("%w %q for %s", ErrMissingKey, key, tag)
	}

	ctx := pongo2.Context{}
	if len(args) > 0 {
		if params, ok := args[0].(map[string]any); ok {
			for k, v := range params {
				ctx[k] = v
			}
		}
	}

	out, err := tmpl.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("messages: render %q: %w", key, err)
	}
	return out, nil
}
