// Package catalog loads the parameter schemas of each managed service from
// JSON or YAML documents.
package catalog

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tkestack/paramcheck/pkg/schema"
)

// Sections of a service document.
const (
	SectionInstance = "instance"
	SectionPlan     = "plan"
	SectionBinding  = "binding"
)

// Service holds the parameter schemas of one service.
type Service struct {
	Name     string
	Source   string
	Instance []schema.FieldSchema
	Plan     []schema.FieldSchema
	Binding  []schema.FieldSchema
}

// Fields returns the schema of a section; unknown sections report false.
func (s Service) Fields(section string) ([]schema.FieldSchema, bool) {
	switch section {
	case SectionInstance:
		return s.Instance, true
	case SectionPlan:
		return s.Plan, true
	case SectionBinding:
		return s.Binding, true
	default:
		return nil, false
	}
}

// Store is a loaded set of service schemas.
type Store struct {
	services map[string]Service
}

// LoadFS walks fsys and parses every JSON/YAML service document. A nil fsys
// yields an empty store.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{services: make(map[string]Service)}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isSchemaFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("catalog: read %s: %w", path, err)
		}

		doc, err := parseDocument(data, path)
		if err != nil {
			return err
		}

		for rawName, raw := range doc.Services {
			name := strings.TrimSpace(rawName)
			if name == "" {
				return fmt.Errorf("catalog: file %s defines an empty service name", path)
			}
			if existing, exists := store.services[name]; exists {
				return fmt.Errorf("catalog: duplicate service %q (files %s and %s)", name, existing.Source, path)
			}

			svc, err := normaliseService(raw, name, path)
			if err != nil {
				return err
			}
			store.services[name] = svc
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return store, nil
}

// Service returns the named service.
func (s *Store) Service(name string) (Service, bool) {
	if s == nil {
		return Service{}, false
	}
	svc, ok := s.services[name]
	return svc, ok
}

// Names returns the service names in sorted order.
func (s *Store) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.services))
	for name := range s.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Empty reports whether the store holds any services.
func (s *Store) Empty() bool {
	return s == nil || len(s.services) == 0
}

type documentFile struct {
	Services map[string]serviceFile `json:"services" yaml:"services"`
}

type serviceFile struct {
	Instance []schema.FieldSchema `json:"instance" yaml:"instance"`
	Plan     []schema.FieldSchema `json:"plan" yaml:"plan"`
	Binding  []schema.FieldSchema `json:"binding" yaml:"binding"`
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("catalog: file %s is empty", source)
	}

	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	doc = documentFile{}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	return documentFile{}, fmt.Errorf("catalog: parse %s: invalid JSON or YAML", source)
}

func normaliseService(raw serviceFile, name, source string) (Service, error) {
	svc := Service{Name: name, Source: source}
	sections := []struct {
		name   string
		fields []schema.FieldSchema
		dest   *[]schema.FieldSchema
	}{
		{SectionInstance, raw.Instance, &svc.Instance},
		{SectionPlan, raw.Plan, &svc.Plan},
		{SectionBinding, raw.Binding, &svc.Binding},
	}

	for _, section := range sections {
		fields := make([]schema.FieldSchema, 0, len(section.fields))
		for _, field := range section.fields {
			fields = append(fields, schema.Sanitize(field))
		}
		if _, err := schema.NewFields(fields); err != nil {
			return Service{}, fmt.Errorf("catalog: service %q (file %s) section %s: %w", name, source, section.name, err)
		}
		*section.dest = fields
	}
	return svc, nil
}

func isSchemaFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
