package crud

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"hrms-admin-go/internal/dictionary"
)

// MobilePattern 中国大陆手机号
const MobilePattern = `^1[3-9]\d{9}$`

var (
	validate = validator.New()

	patternMu    sync.Mutex
	patternCache = map[string]*regexp.Regexp{}
)

// Rule 表单项的一条校验规则
type Rule struct {
	Required bool   `json:"required,omitempty"`
	Pattern  string `json:"pattern,omitempty"`
	Type     string `json:"type,omitempty"` // email | date
	Message  string `json:"message"`
}

// Check 校验单个值，通过返回 nil。非必填的空值不做其余检查。
func (r Rule) Check(value any) error {
	s, present := normalize(value)
	if !present {
		if r.Required {
			return fmt.Errorf("%s", r.Message)
		}
		return nil
	}
	if s == nil {
		// 数字等非字符串值只做必填检查
		return nil
	}
	if r.Pattern != "" {
		re, err := compile(r.Pattern)
		if err != nil {
			return fmt.Errorf("校验规则 %q 无效: %w", r.Pattern, err)
		}
		if !re.MatchString(*s) {
			return fmt.Errorf("%s", r.Message)
		}
	}
	switch r.Type {
	case "email":
		if err := validate.Var(*s, "email"); err != nil {
			return fmt.Errorf("%s", r.Message)
		}
	case "date":
		if err := validate.Var(*s, "datetime=2006-01-02"); err != nil {
			return fmt.Errorf("%s", r.Message)
		}
	}
	return nil
}

// normalize 返回原样提交的字符串值；全空白视为缺失，present=false
func normalize(value any) (s *string, present bool) {
	switch v := value.(type) {
	case nil:
		return nil, false
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, false
		}
		return &v, true
	case fmt.Stringer:
		t := v.String()
		if strings.TrimSpace(t) == "" {
			return nil, false
		}
		return &t, true
	default:
		return nil, true
	}
}

func compile(pattern string) (*regexp.Regexp, error) {
	patternMu.Lock()
	defer patternMu.Unlock()
	if re, ok := patternCache[pattern]; ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	patternCache[pattern] = re
	return re, nil
}

// FieldError 某个字段的校验失败
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors 一次表单校验的全部失败项，按列顺序排列
type ValidationErrors []FieldError

func (e ValidationErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "表单校验失败: " + strings.Join(parts, "; ")
}

// Fields 失败字段名，按字母序
func (e ValidationErrors) Fields() []string {
	out := make([]string, 0, len(e))
	for _, fe := range e {
		out = append(out, fe.Field)
	}
	sort.Strings(out)
	return out
}

// ValidateForm 按列的表单规则校验一份表单值。隐藏的表单项跳过；
// 字典列的值必须是字典里的某一项。每个字段只报告第一条失败的规则。
func ValidateForm(columns []Column, values map[string]any) error {
	var errs ValidationErrors
	for _, col := range columns {
		if col.Form.Hidden {
			continue
		}
		value := values[col.Key]
		if msg, ok := checkColumn(col, value); !ok {
			errs = append(errs, FieldError{Field: col.Key, Message: msg})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func checkColumn(col Column, value any) (string, bool) {
	for _, rule := range col.Form.Rules {
		if err := rule.Check(value); err != nil {
			return err.Error(), false
		}
	}
	if col.Type != TypeDictSelect || len(col.Dict) == 0 {
		return "", true
	}
	if _, present := normalize(value); !present {
		return "", true
	}
	if dictionary.LabelOf(col.Dict, value) != "" {
		return "", true
	}
	msg := fmt.Sprintf("%v 不是有效的选项", value)
	for _, rule := range col.Form.Rules {
		if rule.Required {
			msg = rule.Message
			break
		}
	}
	return msg, false
}
