package prompt

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tkestack/paramcheck/pkg/schema"
)

type stubDriver struct {
	inputs    []string
	passwords []string
	confirms  []bool
	selects   []int
	textAreas []string
	infos     []string
	asked     []string
	failWith  error
}

func (s *stubDriver) next(kind, message string) error {
	s.asked = append(s.asked, kind+":"+message)
	return s.failWith
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	if err := s.next("input", cfg.Message); err != nil {
		return "", err
	}
	if len(s.inputs) == 0 {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[0]
	s.inputs = s.inputs[1:]
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, cfg InputConfig) (string, error) {
	if err := s.next("password", cfg.Message); err != nil {
		return "", err
	}
	if len(s.passwords) == 0 {
		return "", errors.New("no password scripted")
	}
	val := s.passwords[0]
	s.passwords = s.passwords[1:]
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	if err := s.next("confirm", cfg.Message); err != nil {
		return false, err
	}
	if len(s.confirms) == 0 {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirms[0]
	s.confirms = s.confirms[1:]
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	if err := s.next("select", cfg.Message); err != nil {
		return -1, err
	}
	if len(s.selects) == 0 {
		return -1, errors.New("no select scripted")
	}
	val := s.selects[0]
	s.selects = s.selects[1:]
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	if err := s.next("textarea", cfg.Message); err != nil {
		return "", err
	}
	if len(s.textAreas) == 0 {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[0]
	s.textAreas = s.textAreas[1:]
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infos = append(s.infos, msg)
	return nil
}

func clusterFields() []schema.FieldSchema {
	return []schema.FieldSchema{
		{Name: "mode", Label: "Mode", Kind: schema.KindSelect, Candidates: []string{"standalone", "cluster"}},
		{Name: "replicas", Label: "Replicas", Kind: schema.KindInteger, Validator: "==3|==5", EnabledCondition: "mode==cluster"},
		{Name: "cpu", Label: "CPU", Kind: schema.KindCPU, Validator: ">=500m&<=16"},
		{Name: "memory", Label: "Memory", Kind: schema.KindStorage, Validator: ">=1G"},
		{Name: "backup", Label: "Backup", Kind: schema.KindBoolean},
		{Name: "parameters", Label: "Parameters", Kind: schema.KindMap, Optional: true},
		{Name: "password", Label: "Password", Kind: schema.KindString},
	}
}

func TestFillResumesFromPartialForm(t *testing.T) {
	t.Parallel()

	driver := &stubDriver{
		selects:   []int{1, 0},
		inputs:    []string{"4", "5", "2", "512Mi"},
		confirms:  []bool{true},
		textAreas: []string{"max_connections = 100\n\nsql_mode=STRICT"},
		passwords: []string{"s3cret"},
	}
	filler, err := New(driver)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	form, err := filler.Fill(context.Background(), clusterFields(), schema.FormValue{})
	if err == nil {
		t.Fatalf("expected memory below 1G to exhaust answers")
	}

	driver.inputs = []string{"2"}
	driver.selects = []int{0}
	driver.infos = nil
	form, err = filler.Fill(context.Background(), clusterFields()[3:], form)
	if err != nil {
		t.Fatalf("Fill returned error: %v", err)
	}

	want := schema.FormValue{
		FormData: map[string]any{
			"mode":       "cluster",
			"replicas":   "5",
			"cpu":        "2",
			"memory":     "2",
			"backup":     true,
			"parameters": []schema.MapRow{{Key: "max_connections", Value: "100"}, {Key: "sql_mode", Value: "STRICT"}},
			"password":   "s3cret",
		},
		UnitMap: map[string]string{"cpu": "", "memory": "G"},
	}
	if diff := cmp.Diff(want, form); diff != "" {
		t.Fatalf("form mismatch (-want +got):\n%s", diff)
	}
}

func TestFillRetriesInvalidAnswer(t *testing.T) {
	t.Parallel()

	driver := &stubDriver{
		selects: []int{1},
		inputs:  []string{"4", "5"},
	}
	filler, err := New(driver)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	form, err := filler.Fill(context.Background(), clusterFields()[:2], schema.FormValue{})
	if err != nil {
		t.Fatalf("Fill returned error: %v", err)
	}
	if form.FormData["replicas"] != "5" {
		t.Fatalf("replicas = %v", form.FormData["replicas"])
	}
	if len(driver.infos) != 1 || !strings.Contains(driver.infos[0], "Replicas") {
		t.Fatalf("expected one failure message naming the field, got %q", driver.infos)
	}
}

func TestFillSkipsInactiveFields(t *testing.T) {
	t.Parallel()

	driver := &stubDriver{selects: []int{0}}
	filler, err := New(driver)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	form, err := filler.Fill(context.Background(), clusterFields()[:2], schema.FormValue{})
	if err != nil {
		t.Fatalf("Fill returned error: %v", err)
	}
	if _, ok := form.FormData["replicas"]; ok {
		t.Fatalf("inactive field must not be asked")
	}
	if diff := cmp.Diff([]string{"select:Mode"}, driver.asked); diff != "" {
		t.Fatalf("asked mismatch (-want +got):\n%s", diff)
	}
}

func TestFillGivesUp(t *testing.T) {
	t.Parallel()

	driver := &stubDriver{inputs: []string{"1", "2"}}
	filler, err := New(driver, WithMaxAttempts(2))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	fields := []schema.FieldSchema{{Name: "replicas", Kind: schema.KindInteger, Validator: "==3"}}
	_, err = filler.Fill(context.Background(), fields, schema.FormValue{})
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
	if len(driver.infos) != 1 {
		t.Fatalf("expected one retry message, got %d", len(driver.infos))
	}
}

func TestFillPropagatesDriverErrors(t *testing.T) {
	t.Parallel()

	driver := &stubDriver{failWith: ErrAborted}
	filler, err := New(driver)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := filler.Fill(context.Background(), clusterFields(), schema.FormValue{}); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	if _, err := New(nil); err == nil {
		t.Fatalf("expected error for nil driver")
	}
}

func TestQuantityWithExplicitUnitSkipsUnitSelection(t *testing.T) {
	t.Parallel()

	driver := &stubDriver{inputs: []string{"1500m"}}
	filler, err := New(driver)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	initial := schema.FormValue{UnitMap: map[string]string{"cpu": ""}}
	form, err := filler.Fill(context.Background(), clusterFields()[2:3], initial)
	if err != nil {
		t.Fatalf("Fill returned error: %v", err)
	}
	if _, ok := form.UnitMap["cpu"]; ok {
		t.Fatalf("unit selection must be cleared when the value carries a unit")
	}
	if diff := cmp.Diff([]string{"input:CPU"}, driver.asked); diff != "" {
		t.Fatalf("asked mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRows(t *testing.T) {
	t.Parallel()

	got := parseRows(" a = 1 \n\nb=\nc")
	want := []schema.MapRow{{Key: "a", Value: "1"}, {Key: "b"}, {Key: "c"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
	if formatRows(want) != "a=1\nb=\nc=" {
		t.Fatalf("unexpected format %q", formatRows(want))
	}
}
