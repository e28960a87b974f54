package messages

import "golang.org/x/text/language"

var english = map[string]string{
	KeyFieldQuantity: "{{ label }} must be a number ≥ 0",
	KeyFieldEnabled:  "{{ label }} must be enabled",
	KeyFieldRequired: "{{ label }} must not be empty",
	KeyFieldNeeds:    "{{ label }} needs {{ conditions }}",

	KeyWordAnd: " and ",
	KeyWordOr:  " or ",

	"op.lt": "less than {{ value }}{% if unit %} {{ unit }}{% endif %}",
	"op.gt": "greater than {{ value }}{% if unit %} {{ unit }}{% endif %}",
	"op.le": "less than or equal to {{ value }}{% if unit %} {{ unit }}{% endif %}",
	"op.ge": "greater than or equal to {{ value }}{% if unit %} {{ unit }}{% endif %}",
	"op.eq": "equal to {{ value }}{% if unit %} {{ unit }}{% endif %}",

	"unit.cores":      "cores",
	"unit.millicores": "millicores",
	"unit.gib":        "GiB",
	"unit.mib":        "MiB",

	KeyBaseInstanceName: "{{ label }} must start with a lowercase letter and contain 2 to 63 lowercase letters, digits or hyphens",
	KeyBaseRequired:     "{{ label }} must not be empty",
	"label.instanceName": "Instance name",
	"label.clusterId":    "Cluster",
	"label.version":      "Version",
	"label.plan":         "Plan",

	KeyBackupSchedule:    "Backup date or backup time must be set",
	KeyBackupReserveDays: "Backup retention days must not be empty",

	KeyBindingAdminUser:  "{{ label }} must differ from the instance administrator {{ admin }}",
	KeySchedulingInvalid: "Node scheduling is invalid: {{ detail }}",
}

var chinese = map[string]string{
	KeyFieldQuantity: "{{ label }}必须为大于等于0的数字",
	KeyFieldEnabled:  "{{ label }}必须开启",
	KeyFieldRequired: "{{ label }}不能为空",
	KeyFieldNeeds:    "{{ label }}需要{{ conditions }}",

	KeyWordAnd: "且",
	KeyWordOr:  "或",

	"op.lt": "小于{{ value }}{{ unit }}",
	"op.gt": "大于{{ value }}{{ unit }}",
	"op.le": "小于等于{{ value }}{{ unit }}",
	"op.ge": "大于等于{{ value }}{{ unit }}",
	"op.eq": "等于{{ value }}{{ unit }}",

	"unit.cores":      "核",
	"unit.millicores": "毫核",
	"unit.gib":        "GiB",
	"unit.mib":        "MiB",

	KeyBaseInstanceName: "{{ label }}须以小写字母开头，由2到63位小写字母、数字或中划线组成",
	KeyBaseRequired:     "{{ label }}不能为空",
	"label.instanceName": "实例名称",
	"label.clusterId":    "集群",
	"label.version":      "版本",
	"label.plan":         "规格",

	KeyBackupSchedule:    "备份日期或备份时间至少填写一项",
	KeyBackupReserveDays: "备份保留天数不能为空",

	KeyBindingAdminUser:  "{{ label }}不能与实例管理员{{ admin }}相同",
	KeySchedulingInvalid: "节点调度配置无效：{{ detail }}",
}

func builtinMessages() map[language.Tag]map[string]string {
	return map[language.Tag]map[string]string{
		language.English: english,
		language.Chinese: chinese,
	}
}
