// Package kb 知识库模块接口
package kb

import (
	"context"
	"fmt"

	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"hrms-admin-go/internal/constants"
	"hrms-admin-go/internal/request"
	"hrms-admin-go/internal/resource"
	"hrms-admin-go/internal/types"
)

// DocumentAPI 文档接口，附带分类和标签列表
type DocumentAPI struct {
	*resource.Client[types.Document]
	categories *resource.Client[types.Category]
	tags       *resource.Client[types.Tag]
}

// NewDocumentAPI 创建文档接口
func NewDocumentAPI(doer request.Doer) *DocumentAPI {
	return &DocumentAPI{
		Client:     resource.New[types.Document](doer, constants.DocumentPrefix),
		categories: NewCategoryAPI(doer),
		tags:       NewTagAPI(doer),
	}
}

// NewCategoryAPI 文档分类接口
func NewCategoryAPI(doer request.Doer) *resource.Client[types.Category] {
	return resource.New[types.Category](doer, constants.CategoryPrefix)
}

// NewTagAPI 文档标签接口
func NewTagAPI(doer request.Doer) *resource.Client[types.Tag] {
	return resource.New[types.Tag](doer, constants.TagPrefix)
}

// CategoryList 分类列表，不带分页参数
func (a *DocumentAPI) CategoryList(ctx context.Context) (*types.Page[types.Category], error) {
	return a.categories.List(ctx, types.PageQuery{})
}

// TagList 标签列表，不带分页参数
func (a *DocumentAPI) TagList(ctx context.Context) (*types.Page[types.Tag], error) {
	return a.tags.List(ctx, types.PageQuery{})
}

// IncrementView 浏览次数加一
func (a *DocumentAPI) IncrementView(ctx context.Context, id types.ID) error {
	_, err := a.action(ctx, id, constants.DocumentIncrementViewAction, nil)
	return err
}

// RollbackVersion 把文档回滚到指定版本
func (a *DocumentAPI) RollbackVersion(ctx context.Context, id types.ID, versionID types.ID) error {
	if versionID.IsZero() {
		return fmt.Errorf("回滚文档 %s: 缺少 version_id", id)
	}
	_, err := a.action(ctx, id, constants.DocumentRollbackVersionAction, map[string]types.ID{"version_id": versionID})
	return err
}

func (a *DocumentAPI) action(ctx context.Context, id types.ID, action string, data any) (*types.ActionStatus, error) {
	if id.IsZero() {
		return nil, resource.ErrMissingID
	}
	status, err := request.Call[types.ActionStatus](ctx, a.Doer(), &request.Request{
		Method: consts.MethodPost,
		Path:   a.ActionPath(id, action),
		Data:   data,
	})
	if err != nil {
		return nil, err
	}
	if status.Error != "" {
		return status, fmt.Errorf("文档 %s 执行 %s 失败: %s", id, action, status.Error)
	}
	return status, nil
}
