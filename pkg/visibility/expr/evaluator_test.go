package expr

import (
	"testing"

	"github.com/tkestack/paramcheck/pkg/visibility"
)

func TestEvaluatorSimpleEquality(t *testing.T) {
	t.Parallel()

	eval := New()
	cases := []struct {
		name   string
		rule   string
		values map[string]any
		want   bool
	}{
		{name: "string match", rule: "mode==yes", values: map[string]any{"mode": "yes"}, want: true},
		{name: "string mismatch", rule: "mode==yes", values: map[string]any{"mode": "no"}, want: false},
		{name: "bool stringified", rule: "backup==true", values: map[string]any{"backup": true}, want: true},
		{name: "bool false", rule: "backup==true", values: map[string]any{"backup": false}, want: false},
		{name: "number stringified", rule: "replicas==3", values: map[string]any{"replicas": float64(3)}, want: true},
		{name: "literal with spaces", rule: "label==hello world", values: map[string]any{"label": "hello world"}, want: true},
		{name: "missing sibling", rule: "mode==yes", values: map[string]any{}, want: false},
		{name: "empty literal matches missing", rule: "mode==", values: map[string]any{}, want: true},
		{name: "empty literal matches empty", rule: "mode==", values: map[string]any{"mode": ""}, want: true},
		{name: "spaces around operator", rule: " mode == yes ", values: map[string]any{"mode": "yes"}, want: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := eval.Eval("target", tc.rule, visibility.Context{Values: tc.values})
			if err != nil {
				t.Fatalf("Eval returned error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("Eval(%q) = %v, want %v", tc.rule, got, tc.want)
			}
		})
	}
}

func TestEvaluatorEmptyRule(t *testing.T) {
	t.Parallel()

	ok, err := New().Eval("target", "   ", visibility.Context{})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected empty rule to be active")
	}
}

func TestEvaluatorTruthyAndNot(t *testing.T) {
	t.Parallel()

	eval := New()

	ok, err := eval.Eval("target", "enabled", visibility.Context{
		Values: map[string]any{"enabled": true},
	})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected true")
	}

	ok, err = eval.Eval("target", "!enabled", visibility.Context{
		Values: map[string]any{"enabled": "false"},
	})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected true for !\"false\"")
	}
}

func TestEvaluatorComposition(t *testing.T) {
	t.Parallel()

	eval := New()
	values := map[string]any{"backup": true, "engine": "mysql", "tier": "gold"}

	cases := map[string]bool{
		`backup == true && engine == "mysql"`:      true,
		`backup == true && engine != "mysql"`:      false,
		`backup == false || tier == 'gold'`:        true,
		`!(backup == true) || engine == redis`:     false,
		`(engine == mysql && tier == gold) || x`:   true,
		`engine == && backup == true`:              false,
		`missing == null && engine != null`:        true,
		`extras.service == rabbitmq`:               false,
		`backup == "tr\"ue"`:                       false,
		`engine == 'it\'s'`:                        false,
	}

	for rule, want := range cases {
		got, err := eval.Eval("target", rule, visibility.Context{Values: values})
		if err != nil {
			t.Fatalf("Eval(%q) returned error: %v", rule, err)
		}
		if got != want {
			t.Fatalf("Eval(%q) = %v, want %v", rule, got, want)
		}
	}
}

func TestEvaluatorDotLookupAndExtras(t *testing.T) {
	t.Parallel()

	eval := New()

	ok, err := eval.Eval("target", `backup.policy == "daily"`, visibility.Context{
		Values: map[string]any{"backup.policy": "daily"},
	})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected true for flattened dotted key")
	}

	ok, err = eval.Eval("target", `backup.policy == "daily"`, visibility.Context{
		Values: map[string]any{"backup": map[string]any{"policy": "daily"}},
	})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected true for nested map lookup")
	}

	ok, err = eval.Eval("target", `extras.service == "rabbitmq"`, visibility.Context{
		Extras: map[string]any{"service": "rabbitmq"},
	})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected true for extras lookup")
	}
}

func TestEvaluatorMalformedRules(t *testing.T) {
	t.Parallel()

	eval := New()
	for _, rule := range []string{
		"mode = yes",
		"a & b",
		"a | b",
		`mode == "open`,
		"(mode == yes",
		"mode == yes)",
		"== yes",
		"a == b == c",
	} {
		if _, err := eval.Eval("target", rule, visibility.Context{}); err == nil {
			t.Fatalf("Eval(%q) expected error", rule)
		}
	}
}
