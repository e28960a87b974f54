// Package testsupport loads schema and form fixtures and manages golden files
// for package tests. Set UPDATE_GOLDENS=1 to rewrite goldens from the current
// output.
package testsupport

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/tkestack/paramcheck/pkg/schema"
)

// LoadFields reads a YAML or JSON list of field schemas.
func LoadFields(t *testing.T, path string) []schema.FieldSchema {
	t.Helper()

	var fields []schema.FieldSchema
	if err := decodeFixture(path, &fields); err != nil {
		t.Fatalf("load fields: %v", err)
	}
	return fields
}

// LoadForm reads a YAML or JSON form snapshot.
func LoadForm(t *testing.T, path string) schema.FormValue {
	t.Helper()

	var form schema.FormValue
	if err := decodeFixture(path, &form); err != nil {
		t.Fatalf("load form: %v", err)
	}
	if form.FormData == nil {
		form.FormData = map[string]any{}
	}
	return form
}

func decodeFixture(path string, out any) error {
	if path == "" {
		return errors.New("testsupport: fixture path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("testsupport: read fixture: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("testsupport: decode %s: %w", path, err)
	}
	return nil
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// CompareGolden compares got with the golden at path, rewriting the golden
// instead when UPDATE_GOLDENS is set.
func CompareGolden(t *testing.T, path string, got []byte) {
	t.Helper()
	if WriteMaybeGolden(t, path, got) {
		return
	}
	want := MustReadGolden(t, path)
	if diff := cmp.Diff(string(want), string(got)); diff != "" {
		t.Fatalf("golden %s mismatch (-want +got):\n%s", path, diff)
	}
}
