package validator

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tkestack/paramcheck/pkg/messages"
	"github.com/tkestack/paramcheck/pkg/schema"
	"github.com/tkestack/paramcheck/pkg/visibility"
)

func form(values map[string]any) schema.FormValue {
	return schema.FormValue{FormData: values}
}

func TestValidateFieldExpressionAnd(t *testing.T) {
	t.Parallel()

	v := New()
	field := schema.FieldSchema{Name: "count", Kind: schema.KindInteger, Validator: ">=1&<=10"}

	if got := v.ValidateField(field, form(map[string]any{"count": "5"}), Context{}); !got.OK() {
		t.Fatalf("expected success for 5, got %+v", got)
	}

	got := v.ValidateField(field, form(map[string]any{"count": "15"}), Context{})
	want := Failed("Count needs greater than or equal to 1 and less than or equal to 10")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateFieldExpressionOr(t *testing.T) {
	t.Parallel()

	v := New()
	field := schema.FieldSchema{Name: "replicas", Kind: schema.KindInteger, Validator: "==3|==5"}

	got := v.ValidateField(field, form(map[string]any{"replicas": "4"}), Context{})
	if diff := cmp.Diff(Failed("Replicas needs equal to 3 or equal to 5"), got); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}

	if got := v.ValidateField(field, form(map[string]any{"replicas": float64(5)}), Context{}); !got.OK() {
		t.Fatalf("expected success for 5, got %+v", got)
	}
}

func TestValidateFieldConditionalGate(t *testing.T) {
	t.Parallel()

	v := New()
	field := schema.FieldSchema{Name: "B", Kind: schema.KindString, EnabledCondition: "A==yes", Validator: "==1"}

	for _, b := range []any{nil, "", "anything"} {
		got := v.ValidateField(field, form(map[string]any{"A": "no", "B": b}), Context{})
		if !got.OK() || got.Message != "" {
			t.Fatalf("inactive field must succeed silently for B=%v, got %+v", b, got)
		}
	}

	got := v.ValidateField(field, form(map[string]any{"A": "yes"}), Context{})
	if got.OK() {
		t.Fatalf("active empty field must fail")
	}
}

func TestValidateFieldRequiredMatrix(t *testing.T) {
	t.Parallel()

	v := New()
	cases := []struct {
		kind schema.Kind
		want Result
	}{
		{kind: schema.KindInteger, want: Failed("Field must be a number ≥ 0")},
		{kind: schema.KindString, want: Failed("Field must not be empty")},
		{kind: schema.KindSelect, want: Failed("Field must not be empty")},
		{kind: schema.KindCPU, want: Failed("Field must be a number ≥ 0")},
		{kind: schema.KindStorage, want: Failed("Field must be a number ≥ 0")},
		{kind: schema.KindBoolean, want: Success()},
	}

	for _, tc := range cases {
		for _, empty := range []any{nil, "", []any{}, map[string]any{}} {
			values := map[string]any{}
			if empty != nil {
				values["value"] = empty
			}
			field := schema.FieldSchema{Name: "value", Label: "Field", Kind: tc.kind}
			got := v.ValidateField(field, form(values), Context{})
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("kind %s value %#v mismatch (-want +got):\n%s", tc.kind, empty, diff)
			}
		}
	}

	boolField := schema.FieldSchema{Name: "flag", Kind: schema.KindBoolean}
	if got := v.ValidateField(boolField, form(map[string]any{"flag": false}), Context{}); !got.OK() {
		t.Fatalf("boolean false must not be flagged, got %+v", got)
	}

	optional := schema.FieldSchema{Name: "notes", Kind: schema.KindString, Optional: true}
	if got := v.ValidateField(optional, form(nil), Context{}); !got.OK() {
		t.Fatalf("optional empty field must pass, got %+v", got)
	}

	zero := schema.FieldSchema{Name: "port", Kind: schema.KindInteger}
	if got := v.ValidateField(zero, form(map[string]any{"port": 0}), Context{}); !got.OK() {
		t.Fatalf("numeric zero is a value, got %+v", got)
	}
}

func TestValidateFieldSignCheck(t *testing.T) {
	t.Parallel()

	v := New()
	cpu := schema.FieldSchema{Name: "cpu", Kind: schema.KindCPU}

	got := v.ValidateField(cpu, form(map[string]any{"cpu": "-1"}), Context{})
	if diff := cmp.Diff(Failed("CPU must be a number ≥ 0"), got); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}

	if got := v.ValidateField(cpu, form(map[string]any{"cpu": "lots"}), Context{}); got.OK() {
		t.Fatalf("non-numeric cpu must fail")
	}

	byName := schema.FieldSchema{Name: "memory_limit", Kind: schema.KindString, Optional: true}
	if got := v.ValidateField(byName, form(map[string]any{"memory_limit": "-2G"}), Context{}); got.OK() {
		t.Fatalf("name heuristic must apply the sign check")
	}
	if got := v.ValidateField(byName, form(map[string]any{}), Context{}); !got.OK() {
		t.Fatalf("optional empty quantity must pass, got %+v", got)
	}
}

func TestValidateFieldUsesSelectedUnit(t *testing.T) {
	t.Parallel()

	v := New()
	field := schema.FieldSchema{Name: "storage", Kind: schema.KindStorage, Validator: "<=100G"}

	mib := schema.FormValue{FormData: map[string]any{"storage": "512"}, UnitMap: map[string]string{"storage": "M"}}
	if got := v.ValidateField(field, mib, Context{}); !got.OK() {
		t.Fatalf("512M must pass <=100G, got %+v", got)
	}

	gib := schema.FormValue{FormData: map[string]any{"storage": "512"}, UnitMap: map[string]string{"storage": "G"}}
	got := v.ValidateField(field, gib, Context{})
	if diff := cmp.Diff(Failed("Storage needs less than or equal to 100 GiB"), got); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}

	explicit := schema.FormValue{FormData: map[string]any{"storage": "512M"}, UnitMap: map[string]string{"storage": "G"}}
	if got := v.ValidateField(field, explicit, Context{}); !got.OK() {
		t.Fatalf("unit written in the value wins, got %+v", got)
	}
}

func TestValidateFieldUnparseableClause(t *testing.T) {
	t.Parallel()

	v := New()
	field := schema.FieldSchema{Name: "size", Kind: schema.KindInteger, Validator: ">=1&about 5"}
	got := v.ValidateField(field, form(map[string]any{"size": "3"}), Context{})
	if diff := cmp.Diff(Failed("Size needs greater than or equal to 1 and about 5"), got); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateFieldChinese(t *testing.T) {
	t.Parallel()

	v := New(WithLocale("zh-CN"))
	field := schema.FieldSchema{Name: "cpu", Kind: schema.KindCPU, Validator: ">=500m&<=4000m"}
	got := v.ValidateField(field, form(map[string]any{"cpu": "10"}), Context{})
	if diff := cmp.Diff(Failed("CPU需要大于等于500毫核且小于等于4000毫核"), got); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateFieldCustomTranslator(t *testing.T) {
	t.Parallel()

	translator := messages.TranslatorFunc(func(locale, key string, args ...any) (string, error) {
		if key == messages.KeyFieldRequired {
			return "required!", nil
		}
		return "", errors.New("nope")
	})
	v := New(WithTranslator(translator), WithMissingTranslationHandler(func(locale, key string, args []any, err error) string {
		return "missing:" + key
	}))

	got := v.ValidateField(schema.FieldSchema{Name: "name", Kind: schema.KindString}, form(nil), Context{})
	if got.Message != "required!" {
		t.Fatalf("unexpected message %q", got.Message)
	}
	got = v.ValidateField(schema.FieldSchema{Name: "port", Kind: schema.KindInteger}, form(nil), Context{})
	if got.Message != "missing:"+messages.KeyFieldQuantity {
		t.Fatalf("unexpected message %q", got.Message)
	}
}

func TestValidateFieldErroringCondition(t *testing.T) {
	t.Parallel()

	broken := visibility.EvaluatorFunc(func(string, string, visibility.Context) (bool, error) {
		return false, errors.New("broken rule")
	})
	v := New(WithConditionEvaluator(broken))
	field := schema.FieldSchema{Name: "name", Kind: schema.KindString, EnabledCondition: "x==("}
	if got := v.ValidateField(field, form(nil), Context{}); got.OK() {
		t.Fatalf("erroring condition must keep the field active")
	}
}

func TestValidateFieldRabbitMQAdmin(t *testing.T) {
	t.Parallel()

	v := New()
	field := schema.FieldSchema{Name: "username", Kind: schema.KindString}
	ctx := Context{ServiceName: ServiceRabbitMQ, Instance: &ExistingInstance{AdminUsername: "admin"}}

	got := v.ValidateField(field, form(map[string]any{"username": "admin"}), ctx)
	if diff := cmp.Diff(Failed("Username must differ from the instance administrator admin"), got); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}

	if got := v.ValidateField(field, form(map[string]any{"username": "app"}), ctx); !got.OK() {
		t.Fatalf("other usernames must pass, got %+v", got)
	}

	redis := Context{ServiceName: "redis", Instance: ctx.Instance}
	if got := v.ValidateField(field, form(map[string]any{"username": "admin"}), redis); !got.OK() {
		t.Fatalf("rule applies to rabbitmq only, got %+v", got)
	}
}

func endToEndSchema() []schema.FieldSchema {
	return []schema.FieldSchema{
		{Name: "version", Kind: schema.KindSelect, Candidates: []string{"5.7", "8.0"}},
		{Name: "cpu", Kind: schema.KindCPU, Validator: ">=500m&<=4000m"},
	}
}

func TestValidateAllEndToEnd(t *testing.T) {
	t.Parallel()

	v := New()
	req := Request{SetParameters: true}

	ok := v.ValidateAll(schema.FormValue{
		FormData: map[string]any{"version": "8.0", "cpu": "2"},
		UnitMap:  map[string]string{"cpu": ""},
	}, endToEndSchema(), req)
	if !ok.Valid() {
		t.Fatalf("expected valid model, got %+v", ok.Results)
	}
	if diff := cmp.Diff([]string{"version", "cpu"}, ok.Order); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}

	bad := v.ValidateAll(schema.FormValue{
		FormData: map[string]any{"version": "8.0", "cpu": "10"},
		UnitMap:  map[string]string{"cpu": ""},
	}, endToEndSchema(), req)
	key, result, failed := bad.FirstFailure()
	if !failed || key != "cpu" {
		t.Fatalf("expected cpu to fail, got %q %+v", key, result)
	}
	want := "CPU needs greater than or equal to 500 millicores and less than or equal to 4000 millicores"
	if result.Message != want {
		t.Fatalf("message = %q, want %q", result.Message, want)
	}
	if got, _ := bad.Get("version"); !got.OK() {
		t.Fatalf("version should still pass")
	}
}

func TestValidateAllIdempotent(t *testing.T) {
	t.Parallel()

	v := New()
	fv := schema.FormValue{FormData: map[string]any{"version": "", "cpu": "-3", "extra": "x"}}
	req := Request{Mode: ModeInstance, SetParameters: true}

	first := v.ValidateAll(fv, endToEndSchema(), req)
	second := v.ValidateAll(fv, endToEndSchema(), req)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("validation is not idempotent (-first +second):\n%s", diff)
	}
}

func TestValidateAllSetParametersOff(t *testing.T) {
	t.Parallel()

	model := New().ValidateAll(form(map[string]any{"cpu": "-5"}), endToEndSchema(), Request{})
	if !model.Valid() {
		t.Fatalf("schema fields must pass while parameters are not set, got %+v", model.Results)
	}
	if model.Len() != 1 {
		t.Fatalf("expected 1 key, got %d", model.Len())
	}
}

func TestValidateAllSkipsAbsentFields(t *testing.T) {
	t.Parallel()

	fields := append(endToEndSchema(), schema.FieldSchema{Name: "replicas", Label: "Replicas", Kind: schema.KindInteger})
	model := New().ValidateAll(schema.FormValue{
		FormData: map[string]any{"version": "8.0", "cpu": "2"},
		UnitMap:  map[string]string{"cpu": ""},
	}, fields, Request{Mode: ModeInstance, SetParameters: true})

	if !model.Valid() {
		t.Fatalf("absent keys must not be validated, got %+v", model.Results)
	}
	if diff := cmp.Diff([]string{"version", "cpu"}, model.Order); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if _, ok := model.Get("replicas"); ok {
		t.Fatalf("replicas is not a form key and must not be reported")
	}
}

func TestValidateAllBaseKeys(t *testing.T) {
	t.Parallel()

	v := New()
	fv := form(map[string]any{
		"instanceName": "1-bad",
		"clusterId":    "cls-1",
		"version":      "8.0",
		"plan":         "",
	})

	model := v.ValidateAll(fv, nil, Request{Mode: ModeInstance})
	want := Model{
		Order: []string{KeyInstanceName, KeyClusterID, KeyVersion, KeyPlan},
		Results: map[string]Result{
			KeyInstanceName: Failed("Instance name must start with a lowercase letter and contain 2 to 63 lowercase letters, digits or hyphens"),
			KeyClusterID:    Success(),
			KeyVersion:      Success(),
			KeyPlan:         Failed("Plan must not be empty"),
		},
	}
	if diff := cmp.Diff(want, model); diff != "" {
		t.Fatalf("model mismatch (-want +got):\n%s", diff)
	}

	plan := v.ValidateAll(form(map[string]any{"instanceName": "my-plan", "clusterId": ""}), nil, Request{Mode: ModePlan})
	if diff := cmp.Diff([]string{"clusterId"}, plan.Failures()); diff != "" {
		t.Fatalf("failures mismatch (-want +got):\n%s", diff)
	}

	binding := v.ValidateAll(form(nil), nil, Request{Mode: ModeBinding})
	if binding.Len() != 0 || !binding.Valid() {
		t.Fatalf("binding mode has no base keys, got %+v", binding)
	}
}

func TestValidateAllBackup(t *testing.T) {
	t.Parallel()

	v := New()

	off := v.ValidateAll(form(map[string]any{"backup": false}), nil, Request{})
	if !off.Valid() {
		t.Fatalf("backup rules apply only when enabled, got %+v", off.Results)
	}

	on := v.ValidateAll(form(map[string]any{
		"backupPolicy":      "full",
		"backupReserveDays": "",
		"backupTime":        "",
		"backup":            true,
	}), nil, Request{})
	want := Model{
		Order: []string{KeyBackup, KeyBackupTime, KeyBackupReserveDays, "backupPolicy"},
		Results: map[string]Result{
			KeyBackup:            Success(),
			KeyBackupTime:        Failed("Backup date or backup time must be set"),
			KeyBackupReserveDays: Failed("Backup retention days must not be empty"),
			"backupPolicy":       Success(),
		},
	}
	if diff := cmp.Diff(want, on); diff != "" {
		t.Fatalf("model mismatch (-want +got):\n%s", diff)
	}

	filled := v.ValidateAll(form(map[string]any{
		"backup":            "true",
		"backupTime":        "02:00",
		"backupReserveDays": 7,
	}), nil, Request{})
	if !filled.Valid() {
		t.Fatalf("expected valid backup settings, got %+v", filled.Results)
	}
}

func TestValidateAllNodeSchedule(t *testing.T) {
	t.Parallel()

	v := New()
	valid := form(map[string]any{KeyNodeSchedule: map[string]any{
		"enabled":      true,
		"nodeSelector": []any{map[string]any{"key": "zone", "operator": "In", "values": []any{"a"}}},
	}})
	if model := v.ValidateAll(valid, nil, Request{}); !model.Valid() {
		t.Fatalf("expected valid scheduling, got %+v", model.Results)
	}

	invalid := form(map[string]any{KeyNodeSchedule: map[string]any{
		"enabled":  true,
		"affinity": []any{map[string]any{"key": "bad key", "operator": "Exists"}},
	}})
	model := v.ValidateAll(invalid, nil, Request{})
	result, _ := model.Get(KeyNodeSchedule)
	if result.OK() {
		t.Fatalf("expected scheduling failure")
	}
	if len(result.Message) <= len("Node scheduling is invalid: ") {
		t.Fatalf("expected detail in message, got %q", result.Message)
	}
}

func TestModelJSON(t *testing.T) {
	t.Parallel()

	model := newModel()
	model.set("cpu", Failed("bad"))
	model.set("version", Success())

	raw, err := json.Marshal(model)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	want := `{"cpu":{"status":"Failed","message":"bad"},"version":{"status":"Success"}}`
	if string(raw) != want {
		t.Fatalf("json = %s, want %s", raw, want)
	}

	empty, _ := json.Marshal(Model{})
	if string(empty) != "{}" {
		t.Fatalf("empty model json = %s", empty)
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	for _, m := range []Mode{ModeParameters, ModeInstance, ModePlan, ModeBinding} {
		got, ok := ParseMode(m.String())
		if !ok || got != m {
			t.Fatalf("ParseMode(%q) = %v, %v", m.String(), got, ok)
		}
	}
	if _, ok := ParseMode("cluster"); ok {
		t.Fatalf("unknown mode must not parse")
	}
}
