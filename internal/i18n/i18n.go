// Package i18n 表格列标题、表单提示等界面文案的多语言表
package i18n

import (
	"golang.org/x/text/language"
)

// Translator 按键取文案，找不到时返回键本身
type Translator interface {
	T(key string) string
}

var supported = []language.Tag{
	language.SimplifiedChinese, // 第一个为默认语言
	language.English,
}

var matcher = language.NewMatcher(supported)

// Catalog 某一种语言的文案表
type Catalog struct {
	tag      language.Tag
	messages map[string]string
}

// New 按 Accept-Language 风格的语言串选择文案表，例如 "zh-CN"、"en-US,en;q=0.9"
func New(lang string) *Catalog {
	tags, _, err := language.ParseAcceptLanguage(lang)
	if err != nil || len(tags) == 0 {
		tags = []language.Tag{supported[0]}
	}
	_, idx, conf := matcher.Match(tags...)
	tag := supported[idx]
	if conf == language.No {
		tag = supported[0]
	}

	messages := zhCN
	if tag == language.English {
		messages = en
	}
	return &Catalog{tag: tag, messages: messages}
}

// Language 实际使用的语言
func (c *Catalog) Language() language.Tag { return c.tag }

// T 实现 Translator
func (c *Catalog) T(key string) string {
	if msg, ok := c.messages[key]; ok {
		return msg
	}
	return key
}

var zhCN = map[string]string{
	"employee.id":              "ID",
	"employee.avatar":          "头像",
	"employee.employee_id":     "工号",
	"employee.name":            "姓名",
	"employee.gender":          "性别",
	"employee.mobile":          "手机号",
	"employee.email":           "邮箱",
	"employee.department":      "部门",
	"employee.position":        "职位",
	"employee.hire_date":       "入职日期",
	"employee.status":          "状态",
	"employee.remark":          "备注",
	"employee.create_datetime": "创建时间",

	"rule.required":      "请输入%s",
	"rule.select":        "请选择%s",
	"rule.mobile":        "请输入正确的手机号",
	"rule.email":         "请输入正确的邮箱地址",
	"placeholder.input":  "请输入%s",
	"placeholder.select": "请选择%s",
}

var en = map[string]string{
	"employee.id":              "ID",
	"employee.avatar":          "Avatar",
	"employee.employee_id":     "Employee No.",
	"employee.name":            "Name",
	"employee.gender":          "Gender",
	"employee.mobile":          "Mobile",
	"employee.email":           "Email",
	"employee.department":      "Department",
	"employee.position":        "Position",
	"employee.hire_date":       "Hire Date",
	"employee.status":          "Status",
	"employee.remark":          "Remark",
	"employee.create_datetime": "Created At",

	"rule.required":      "Please enter %s",
	"rule.select":        "Please select %s",
	"rule.mobile":        "Please enter a valid mobile number",
	"rule.email":         "Please enter a valid email address",
	"placeholder.input":  "Enter %s",
	"placeholder.select": "Select %s",
}
