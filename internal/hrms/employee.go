// Package hrms 人事模块接口：员工、简历、考勤、请假
package hrms

import (
	"context"
	"fmt"

	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"hrms-admin-go/internal/constants"
	"hrms-admin-go/internal/request"
	"hrms-admin-go/internal/resource"
	"hrms-admin-go/internal/types"
)

// EmployeeAPI 员工接口
type EmployeeAPI struct {
	*resource.Client[types.Employee]
}

// NewEmployeeAPI 创建员工接口
func NewEmployeeAPI(doer request.Doer) *EmployeeAPI {
	return &EmployeeAPI{Client: resource.New[types.Employee](doer, constants.EmployeePrefix)}
}

// Permission 当前用户在员工表上的列权限
func (a *EmployeeAPI) Permission(ctx context.Context) ([]types.FieldPermission, error) {
	out, err := request.Call[[]types.FieldPermission](ctx, a.Doer(), &request.Request{
		Method: consts.MethodGet,
		Path:   constants.EmployeeFieldPermissionPath,
	})
	if err != nil {
		return nil, err
	}
	return *out, nil
}

// Count 员工统计：总数、在职、试用、离职
func (a *EmployeeAPI) Count(ctx context.Context) (*types.EmployeeCount, error) {
	return request.Call[types.EmployeeCount](ctx, a.Doer(), &request.Request{
		Method: consts.MethodGet,
		Path:   constants.EmployeeCountPath,
	})
}

// Export 按查询条件导出员工表，返回文件原始内容
func (a *EmployeeAPI) Export(ctx context.Context, query types.PageQuery) ([]byte, error) {
	resp, err := request.Raw(ctx, a.Doer(), &request.Request{
		Method: consts.MethodPost,
		Path:   constants.EmployeeExportPath,
		Data:   query.Params(),
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// ImportTemplate 下载员工导入模板
func (a *EmployeeAPI) ImportTemplate(ctx context.Context) ([]byte, error) {
	resp, err := request.Raw(ctx, a.Doer(), &request.Request{
		Method: consts.MethodGet,
		Path:   constants.EmployeeImportPath,
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Import 按已上传表格的地址批量导入员工。表格需先通过文件上传接口拿到 url。
func (a *EmployeeAPI) Import(ctx context.Context, fileURL string) error {
	if fileURL == "" {
		return fmt.Errorf("导入文件地址不能为空")
	}
	_, err := a.Doer().Do(ctx, &request.Request{
		Method: consts.MethodPost,
		Path:   constants.EmployeeImportPath,
		Data:   map[string]string{"url": fileURL},
	})
	return err
}
