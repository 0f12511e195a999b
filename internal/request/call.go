package request

import (
	"bytes"
	"context"
	stdjson "encoding/json"
	"fmt"

	"github.com/cloudwego/hertz/pkg/common/json"

	"hrms-admin-go/internal/types"
)

// Call 发送请求并把响应解码为 T。
// 带 code 的信封取 data 字段；没有信封的响应(例如DRF原生返回)整体解码。
func Call[T any](ctx context.Context, d Doer, r *Request) (*T, error) {
	resp, err := d.Do(ctx, r)
	if err != nil {
		return nil, err
	}
	out := new(T)
	if len(resp.Body) == 0 {
		return out, nil
	}

	body := resp.Body
	if p, isJSON := probe(resp.Body); isJSON && p.Code != nil {
		var env types.Envelope[stdjson.RawMessage]
		if err := json.Unmarshal(resp.Body, &env); err != nil {
			return nil, fmt.Errorf("解析 %s %s 响应失败: %w", r.Method, r.Path, err)
		}
		body = bytes.TrimSpace(env.Data)
		if len(body) == 0 || bytes.Equal(body, []byte("null")) {
			return out, nil
		}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return nil, fmt.Errorf("解析 %s %s 响应失败: %w", r.Method, r.Path, err)
	}
	return out, nil
}

// CallPage 发送列表请求，解码平铺的分页信封
func CallPage[T any](ctx context.Context, d Doer, r *Request) (*types.Page[T], error) {
	resp, err := d.Do(ctx, r)
	if err != nil {
		return nil, err
	}
	page := &types.Page[T]{}
	if len(resp.Body) == 0 {
		return page, nil
	}
	if err := json.Unmarshal(resp.Body, page); err != nil {
		return nil, fmt.Errorf("解析 %s %s 分页响应失败: %w", r.Method, r.Path, err)
	}
	if page.Data == nil {
		page.Data = []T{}
	}
	return page, nil
}

// Raw 发送请求并返回原始响应体，用于导出这类非JSON接口
func Raw(ctx context.Context, d Doer, r *Request) (*Response, error) {
	return d.Do(ctx, r)
}
