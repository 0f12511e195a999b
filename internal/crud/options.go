// Package crud 管理后台表格/表单的声明式描述：列、搜索项、表单校验规则以及绑定的增删改查操作。
// 描述只是数据，渲染由前端完成。
package crud

import (
	"context"

	"hrms-admin-go/internal/dictionary"
	"hrms-admin-go/internal/types"
)

// FieldType 字段的展示/编辑类型
type FieldType string

const (
	TypeNumber       FieldType = "number"
	TypeText         FieldType = "text"
	TypeTextarea     FieldType = "textarea"
	TypeDictSelect   FieldType = "dict-select"
	TypeFileUploader FieldType = "file-uploader"
	TypeDate         FieldType = "date"
	TypeDatetime     FieldType = "datetime"
)

// ColumnView 表格列的展示设置
type ColumnView struct {
	Hidden    bool   `json:"hidden,omitempty"`
	Width     int    `json:"width,omitempty"`
	Component string `json:"component,omitempty"`
}

// FormView 表单项设置
type FormView struct {
	Hidden    bool           `json:"hidden,omitempty"`
	Default   any            `json:"default,omitempty"`
	Rules     []Rule         `json:"rules,omitempty"`
	Component map[string]any `json:"component,omitempty"`
}

// SearchView 搜索栏设置
type SearchView struct {
	Show bool `json:"show"`
}

// Column 一个字段的完整描述
type Column struct {
	Key    string              `json:"key"`
	Title  string              `json:"title"`
	Type   FieldType           `json:"type"`
	Dict   []dictionary.Option `json:"dict,omitempty"`
	Column ColumnView          `json:"column"`
	Form   FormView            `json:"form"`
	Search SearchView          `json:"search"`
}

// Button 操作按钮及其权限标识
type Button struct {
	Show bool   `json:"show"`
	Auth string `json:"auth,omitempty"`
}

// ActionBar 表格上方的操作栏
type ActionBar struct {
	Add Button `json:"add"`
}

// RowHandle 每行的操作列
type RowHandle struct {
	Width  int    `json:"width"`
	Edit   Button `json:"edit"`
	Remove Button `json:"remove"`
}

// Service 表格绑定的后端操作
type Service[T types.Identifiable] interface {
	List(ctx context.Context, query types.PageQuery) (*types.Page[T], error)
	Get(ctx context.Context, id types.ID) (*T, error)
	Add(ctx context.Context, record T) (*T, error)
	Update(ctx context.Context, record T) (*T, error)
	Delete(ctx context.Context, id types.ID) error
}

// Requests 表格的分页/新增/编辑/删除/详情操作
type Requests[T types.Identifiable] struct {
	Page func(ctx context.Context, query types.PageQuery) (*types.Page[T], error)
	Add  func(ctx context.Context, record T) (*T, error)
	Edit func(ctx context.Context, record T) (*T, error)
	Del  func(ctx context.Context, id types.ID) error
	Info func(ctx context.Context, id types.ID) (*T, error)
}

// BindRequests 把一个资源服务绑定为表格操作
func BindRequests[T types.Identifiable](svc Service[T]) Requests[T] {
	return Requests[T]{
		Page: svc.List,
		Add:  svc.Add,
		Edit: svc.Update,
		Del:  svc.Delete,
		Info: svc.Get,
	}
}

// Options 一张管理表格的完整描述
type Options[T types.Identifiable] struct {
	Request   Requests[T] `json:"-"`
	ActionBar ActionBar   `json:"actionbar"`
	RowHandle RowHandle   `json:"rowHandle"`
	Columns   []Column    `json:"columns"`
}

// Column 按键查找列
func (o *Options[T]) Column(key string) (Column, bool) {
	for _, c := range o.Columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

// SearchKeys 开启了搜索的字段
func (o *Options[T]) SearchKeys() []string {
	var keys []string
	for _, c := range o.Columns {
		if c.Search.Show {
			keys = append(keys, c.Key)
		}
	}
	return keys
}
