// Package resource 提供按 REST 约定访问后端资源的通用客户端。
// 每个资源挂在一个以 / 结尾的路径前缀下，单条记录的路径为 {prefix}{id}/。
package resource

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"hrms-admin-go/internal/request"
	"hrms-admin-go/internal/types"
)

// ErrMissingID 更新时记录没有 id，不会发出请求
var ErrMissingID = errors.New("记录缺少 id")

// Client 单个资源的增删改查
type Client[T types.Identifiable] struct {
	doer   request.Doer
	prefix string
}

// New 创建资源客户端，prefix 形如 /api/hrms/employee/
func New[T types.Identifiable](doer request.Doer, prefix string) *Client[T] {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Client[T]{doer: doer, prefix: prefix}
}

// Prefix 资源路径前缀
func (c *Client[T]) Prefix() string { return c.prefix }

// Doer 底层请求执行器，供扩展接口复用
func (c *Client[T]) Doer() request.Doer { return c.doer }

// ItemPath 单条记录的路径，Get/Update/Delete 共用
func (c *Client[T]) ItemPath(id types.ID) string {
	return c.prefix + id.String() + "/"
}

// ActionPath 单条记录上的自定义动作路径，例如 {prefix}{id}/increment_view/
func (c *Client[T]) ActionPath(id types.ID, action string) string {
	return c.ItemPath(id) + strings.TrimPrefix(action, "/")
}

// List 分页查询，查询条件原样透传
func (c *Client[T]) List(ctx context.Context, query types.PageQuery) (*types.Page[T], error) {
	return request.CallPage[T](ctx, c.doer, &request.Request{
		Method: consts.MethodGet,
		Path:   c.prefix,
		Params: query.Params(),
	})
}

// Get 按 id 查询单条记录
func (c *Client[T]) Get(ctx context.Context, id types.ID) (*T, error) {
	if id.IsZero() {
		return nil, ErrMissingID
	}
	return request.Call[T](ctx, c.doer, &request.Request{
		Method: consts.MethodGet,
		Path:   c.ItemPath(id),
	})
}

// Add 新增记录，id 由服务端分配
func (c *Client[T]) Add(ctx context.Context, record T) (*T, error) {
	return request.Call[T](ctx, c.doer, &request.Request{
		Method: consts.MethodPost,
		Path:   c.prefix,
		Data:   record,
	})
}

// Update 整条更新，请求体包含 id
func (c *Client[T]) Update(ctx context.Context, record T) (*T, error) {
	id := record.GetID()
	if id.IsZero() {
		return nil, fmt.Errorf("更新 %s: %w", c.prefix, ErrMissingID)
	}
	return request.Call[T](ctx, c.doer, &request.Request{
		Method: consts.MethodPut,
		Path:   c.ItemPath(id),
		Data:   record,
	})
}

// Delete 删除记录。请求体同时带上 {"id": id}，与后端约定保持一致。
func (c *Client[T]) Delete(ctx context.Context, id types.ID) error {
	if id.IsZero() {
		return ErrMissingID
	}
	_, err := c.doer.Do(ctx, &request.Request{
		Method: consts.MethodDelete,
		Path:   c.ItemPath(id),
		Data:   map[string]types.ID{"id": id},
	})
	return err
}
