package validator

import (
	"regexp"
	"strings"

	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/tkestack/paramcheck/internal/coerce"
	"github.com/tkestack/paramcheck/pkg/messages"
	"github.com/tkestack/paramcheck/pkg/scheduling"
	"github.com/tkestack/paramcheck/pkg/schema"
)

// Base keys validated outside the dynamic schema.
const (
	KeyInstanceName = "instanceName"
	KeyClusterID    = "clusterId"
	KeyVersion      = "version"
	KeyPlan         = "plan"
)

// Backup keys.
const (
	KeyBackup            = "backup"
	KeyBackupDate        = "backupDate"
	KeyBackupTime        = "backupTime"
	KeyBackupReserveDays = "backupReserveDays"
)

// KeyNodeSchedule is the node-scheduling composite key.
const KeyNodeSchedule = "nodeSchedule"

// ServiceRabbitMQ names the service whose bindings may not reuse the
// instance administrator.
const ServiceRabbitMQ = "rabbitmq"

var instanceNamePattern = regexp.MustCompile(`^[a-z][0-9a-z-]{1,62}$`)

func baseKeys(mode Mode) []string {
	switch mode {
	case ModeInstance:
		return []string{KeyInstanceName, KeyClusterID, KeyVersion, KeyPlan}
	case ModePlan:
		return []string{KeyInstanceName, KeyClusterID}
	default:
		return nil
	}
}

func baseRule(key string, form schema.FormValue, loc messages.Localizer) Result {
	value, _ := form.Value(key)
	label := loc.Text(messages.KeyLabelPrefix+key, nil)
	if coerce.IsEmpty(value) {
		return Failed(loc.Text(messages.KeyBaseRequired, messages.Params{"label": label}))
	}
	if key == KeyInstanceName && !instanceNamePattern.MatchString(coerce.String(value)) {
		return Failed(loc.Text(messages.KeyBaseInstanceName, messages.Params{"label": label}))
	}
	return Success()
}

func isBackupKey(key string) bool {
	return strings.HasPrefix(key, KeyBackup)
}

func backupEnabled(form schema.FormValue) bool {
	value, _ := form.Value(KeyBackup)
	switch v := value.(type) {
	case bool:
		return v
	default:
		return strings.EqualFold(strings.TrimSpace(coerce.String(v)), "true")
	}
}

// backupRule checks the scheduled-backup keys. They only apply while the
// backup toggle is on; a date or a time must be set, and the retention days.
func backupRule(key string, form schema.FormValue, loc messages.Localizer) Result {
	if key == KeyBackup || !backupEnabled(form) {
		return Success()
	}

	filled := func(name string) bool {
		value, _ := form.Value(name)
		return !coerce.IsEmpty(value)
	}

	switch key {
	case KeyBackupDate, KeyBackupTime:
		if !filled(KeyBackupDate) && !filled(KeyBackupTime) {
			return Failed(loc.Text(messages.KeyBackupSchedule, nil))
		}
	case KeyBackupReserveDays:
		if !filled(KeyBackupReserveDays) {
			return Failed(loc.Text(messages.KeyBackupReserveDays, nil))
		}
	}
	return Success()
}

func schedulingRule(form schema.FormValue, loc messages.Localizer) Result {
	value, _ := form.Value(KeyNodeSchedule)
	spec, err := scheduling.Decode(value)
	if err != nil {
		return Failed(loc.Text(messages.KeySchedulingInvalid, messages.Params{"detail": err.Error()}))
	}
	if errs := scheduling.Validate(spec, field.NewPath(KeyNodeSchedule)); len(errs) > 0 {
		return Failed(loc.Text(messages.KeySchedulingInvalid, messages.Params{"detail": errs.ToAggregate().Error()}))
	}
	return Success()
}

// adminUsernameRule rejects a rabbitmq binding whose username is the
// instance administrator. It applies only to credential fields with a value.
func adminUsernameRule(fs schema.FieldSchema, value any, ctx Context, loc messages.Localizer) (Result, bool) {
	if ctx.ServiceName != ServiceRabbitMQ || ctx.Instance == nil || ctx.Instance.AdminUsername == "" {
		return Result{}, false
	}
	switch strings.ToLower(fs.Name) {
	case "username", "user":
	default:
		return Result{}, false
	}
	if coerce.String(value) != ctx.Instance.AdminUsername {
		return Result{}, false
	}
	return Failed(loc.Text(messages.KeyBindingAdminUser, messages.Params{
		"label": fs.DisplayLabel(),
		"admin": ctx.Instance.AdminUsername,
	})), true
}
