// Package dictionary 读取后端的数据字典(性别、状态、部门等下拉选项)，并按需缓存。
// 缓存的生命周期由 Service 显式管理，没有包级状态。
package dictionary

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"hrms-admin-go/internal/constants"
	"hrms-admin-go/internal/request"
)

// ErrUnknownDictionary 后端没有这个字典
var ErrUnknownDictionary = errors.New("字典不存在")

// Option 字典中的一项
type Option struct {
	Label string `json:"label"`
	Value any    `json:"value"`
	Color string `json:"color,omitempty"`
}

// Lookup 按字典键取选项列表
type Lookup interface {
	Options(ctx context.Context, key string) ([]Option, error)
}

// HTTPSource 从后端字典接口读取
type HTTPSource struct {
	doer request.Doer
	path string
}

// NewHTTPSource 创建字典源，path 为空时使用默认的字典接口
func NewHTTPSource(doer request.Doer, path string) *HTTPSource {
	if path == "" {
		path = constants.DefaultDictionaryPath
	}
	return &HTTPSource{doer: doer, path: path}
}

// Options 实现 Lookup。接口返回空列表时视为字典不存在。
func (s *HTTPSource) Options(ctx context.Context, key string) ([]Option, error) {
	if key == "" {
		return nil, fmt.Errorf("字典键不能为空")
	}
	out, err := request.Call[[]Option](ctx, s.doer, &request.Request{
		Method: consts.MethodGet,
		Path:   s.path,
		Params: map[string]any{"dictionary_key": key},
	})
	if err != nil {
		if request.IsNotFound(err) {
			return nil, fmt.Errorf("%s: %w", key, ErrUnknownDictionary)
		}
		return nil, fmt.Errorf("读取字典 %s 失败: %w", key, err)
	}
	if len(*out) == 0 {
		return nil, fmt.Errorf("%s: %w", key, ErrUnknownDictionary)
	}
	return *out, nil
}

// LabelOf 按值查找显示文本，找不到时返回空串
func LabelOf(options []Option, value any) string {
	want := fmt.Sprint(value)
	for _, o := range options {
		if fmt.Sprint(o.Value) == want {
			return o.Label
		}
	}
	return ""
}
