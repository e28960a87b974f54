package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tkestack/paramcheck/pkg/catalog"
	"github.com/tkestack/paramcheck/pkg/openapi"
	"github.com/tkestack/paramcheck/pkg/schema"
	"github.com/tkestack/paramcheck/pkg/validator"
)

// httpClient fetches schema documents given as URLs.
var httpClient = &http.Client{Timeout: 30 * time.Second}

// valuesFile is the on-disk form of a parameter submission. Command line
// flags take precedence over the service, section and mode it names.
type valuesFile struct {
	Service       string                      `json:"service,omitempty" yaml:"service,omitempty"`
	Section       string                      `json:"section,omitempty" yaml:"section,omitempty"`
	Mode          string                      `json:"mode,omitempty" yaml:"mode,omitempty"`
	SetParameters *bool                       `json:"setParameters,omitempty" yaml:"setParameters,omitempty"`
	Instance      *validator.ExistingInstance `json:"instance,omitempty" yaml:"instance,omitempty"`
	FormData      map[string]any              `json:"formData" yaml:"formData"`
	UnitMap       map[string]string           `json:"unitMap,omitempty" yaml:"unitMap,omitempty"`
}

func (f valuesFile) form() schema.FormValue {
	form := schema.FormValue{FormData: f.FormData, UnitMap: f.UnitMap}
	if form.FormData == nil {
		form.FormData = map[string]any{}
	}
	return form
}

// readValues decodes a YAML or JSON values file; "-" reads stdin.
func readValues(path string, stdin io.Reader) (valuesFile, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return valuesFile{}, fmt.Errorf("read values %s: %w", path, err)
	}

	var file valuesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return valuesFile{}, fmt.Errorf("parse values %s: %w", path, err)
	}
	return file, nil
}

// target names the schema a command works against.
type target struct {
	service string
	section string
}

func resolveTarget(v *viper.Viper, file valuesFile) target {
	t := target{service: v.GetString("service"), section: v.GetString("section")}
	if t.service == "" {
		t.service = file.Service
	}
	if t.section == "" {
		t.section = file.Section
	}
	if t.section == "" {
		t.section = catalog.SectionInstance
	}
	return t
}

func loadStore(v *viper.Viper) (*catalog.Store, error) {
	dir := v.GetString("catalog")
	if dir == "" {
		return catalog.LoadEmbedded()
	}
	return catalog.LoadFS(os.DirFS(dir))
}

// resolveFields returns the field schemas of t, importing them from the plan
// schema document when --plan-schema is set.
func resolveFields(ctx context.Context, v *viper.Viper, t target) ([]schema.FieldSchema, error) {
	if location := v.GetString("plan-schema"); location != "" {
		src, err := openapi.ParseSource(location)
		if err != nil {
			return nil, err
		}
		reader := openapi.NewReader(openapi.WithHTTPClient(httpClient))
		return reader.Import(ctx, src, openapi.WithSchemaName(v.GetString("schema-name")))
	}

	store, err := loadStore(v)
	if err != nil {
		return nil, err
	}
	if t.service == "" {
		return nil, fmt.Errorf("no service selected (available: %s)", strings.Join(store.Names(), ", "))
	}
	svc, ok := store.Service(t.service)
	if !ok {
		return nil, fmt.Errorf("unknown service %q (available: %s)", t.service, strings.Join(store.Names(), ", "))
	}
	fields, ok := svc.Fields(t.section)
	if !ok {
		return nil, fmt.Errorf("unknown section %q (use %s, %s or %s)", t.section, catalog.SectionInstance, catalog.SectionPlan, catalog.SectionBinding)
	}
	return fields, nil
}
