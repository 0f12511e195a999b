package types

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Envelope 后端统一响应信封 {code, data, msg}
type Envelope[T any] struct {
	Code int    `json:"code"`
	Data T      `json:"data"`
	Msg  string `json:"msg"`
}

// Page 分页列表响应。后端把分页信息与 data 平铺在同一层。
type Page[T any] struct {
	Code  int    `json:"code"`
	Msg   string `json:"msg"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Total int    `json:"total"`
	Data  []T    `json:"data"`
}

// ID 服务端分配的不透明记录标识。后端可能返回数字也可能返回字符串。
type ID string

// String 实现 fmt.Stringer
func (id ID) String() string { return string(id) }

// IsZero 是否未设置
func (id ID) IsZero() bool { return id == "" }

// UnmarshalJSON 同时接受数字和字符串形式
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON 规范十进制整数形式的ID按数字输出，其余（如 "007"、"+5"）按字符串输出
func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Identifiable 所有资源记录都带有 id
type Identifiable interface {
	GetID() ID
}
