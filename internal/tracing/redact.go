package tracing

import (
	"fmt"
	"strings"
)

// 属性值的长度上限(按字符计)
const (
	DefaultMaxLength = 200
	MaxSQLLength     = 500
	MaxRedisLength   = 100
	MaxBodyLength    = 200
)

// 字段名包含这些片段时视为个人信息。员工与候选人的姓名、联系方式都在其中。
var piiFields = []string{
	"name", "姓名", "candidate",
	"mobile", "phone", "手机", "电话",
	"email", "邮箱",
	"id_card", "身份证", "address", "地址",
	"password", "secret", "token", "authorization",
}

// IsSensitiveField 字段是否需要掩码
func IsSensitiveField(name string) bool {
	lower := strings.ToLower(name)
	for _, f := range piiFields {
		if strings.Contains(lower, f) {
			return true
		}
	}
	return false
}

// SafeAttributeValue 个人信息掩码，其余按 maxLength 截断(<=0 时用默认长度)
func SafeAttributeValue(name, value string, maxLength int) string {
	if IsSensitiveField(name) {
		return MaskPII(value)
	}
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	return TruncateString(value, maxLength)
}

// MaskPII 掩码个人信息：
// 手机号 13812345678 -> 138****5678，邮箱 hr@example.com -> h*@example.com，
// 姓名等其他值只保留首尾字符。
func MaskPII(value string) string {
	if value == "" {
		return ""
	}
	if at := strings.LastIndex(value, "@"); at > 0 {
		return maskMiddle(value[:at], 1, 0) + value[at:]
	}
	if isMobile(value) {
		return maskMiddle(value, 3, 4)
	}
	runes := []rune(value)
	if len(runes) == 2 {
		return maskMiddle(value, 1, 0)
	}
	return maskMiddle(value, 1, 1)
}

// maskMiddle 保留前 head 个和后 tail 个字符，其余替换为 *
func maskMiddle(s string, head, tail int) string {
	runes := []rune(s)
	n := len(runes)
	if n <= head+tail {
		if n <= 1 {
			return "*"
		}
		return string(runes[0]) + strings.Repeat("*", n-1)
	}
	return string(runes[:head]) + strings.Repeat("*", n-head-tail) + string(runes[n-tail:])
}

func isMobile(s string) bool {
	if len(s) != 11 || s[0] != '1' {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// TruncateString 超过 maxLength 个字符时截断，并注明省略了多少字符
func TruncateString(s string, maxLength int) string {
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}
	if maxLength <= 0 {
		return ""
	}
	return fmt.Sprintf("%s...(+%d)", string(runes[:maxLength]), len(runes)-maxLength)
}

// SafeSQL 截断SQL语句
func SafeSQL(sql string) string { return TruncateString(sql, MaxSQLLength) }

// SafeRedisKey 截断Redis键
func SafeRedisKey(key string) string { return TruncateString(key, MaxRedisLength) }
