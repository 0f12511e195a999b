package hrms

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"hrms-admin-go/internal/constants"
	"hrms-admin-go/internal/request"
	"hrms-admin-go/internal/resource"
	"hrms-admin-go/internal/types"
)

// 请假审批结果
const (
	LeaveApproved = 1
	LeaveRejected = 2
)

// ErrInvalidApproval 审批状态只能是批准或拒绝
var ErrInvalidApproval = errors.New("审批状态无效")

// AttendanceAPI 考勤记录接口
type AttendanceAPI struct {
	*resource.Client[types.Attendance]
}

// NewAttendanceAPI 创建考勤接口
func NewAttendanceAPI(doer request.Doer) *AttendanceAPI {
	return &AttendanceAPI{Client: resource.New[types.Attendance](doer, constants.AttendancePrefix)}
}

// CheckIn 员工当日签到，返回当日考勤记录。重复签到由后端拒绝。
func (a *AttendanceAPI) CheckIn(ctx context.Context, employee types.ID) (*types.Attendance, error) {
	return a.clock(ctx, constants.AttendanceCheckInPath, employee)
}

// CheckOut 员工当日签退
func (a *AttendanceAPI) CheckOut(ctx context.Context, employee types.ID) (*types.Attendance, error) {
	return a.clock(ctx, constants.AttendanceCheckOutPath, employee)
}

func (a *AttendanceAPI) clock(ctx context.Context, path string, employee types.ID) (*types.Attendance, error) {
	if employee.IsZero() {
		return nil, fmt.Errorf("%s: %w", path, resource.ErrMissingID)
	}
	return request.Call[types.Attendance](ctx, a.Doer(), &request.Request{
		Method: consts.MethodPost,
		Path:   path,
		Data:   map[string]types.ID{"employee_id": employee},
	})
}

// LeaveAPI 请假申请接口
type LeaveAPI struct {
	*resource.Client[types.Leave]
}

// NewLeaveAPI 创建请假接口
func NewLeaveAPI(doer request.Doer) *LeaveAPI {
	return &LeaveAPI{Client: resource.New[types.Leave](doer, constants.LeavePrefix)}
}

// Approve 审批一条待审批的申请，status 取 LeaveApproved 或 LeaveRejected
func (a *LeaveAPI) Approve(ctx context.Context, id types.ID, status int, remark string) (*types.Leave, error) {
	if id.IsZero() {
		return nil, resource.ErrMissingID
	}
	if status != LeaveApproved && status != LeaveRejected {
		return nil, fmt.Errorf("%w: %d", ErrInvalidApproval, status)
	}
	return request.Call[types.Leave](ctx, a.Doer(), &request.Request{
		Method: consts.MethodPost,
		Path:   a.ActionPath(id, constants.LeaveApproveAction),
		Data:   map[string]any{"status": status, "remark": remark},
	})
}

// MyLeaves 当前登录用户的请假记录。找不到对应员工时后端返回空列表。
func (a *LeaveAPI) MyLeaves(ctx context.Context, query types.PageQuery) (*types.Page[types.Leave], error) {
	return request.CallPage[types.Leave](ctx, a.Doer(), &request.Request{
		Method: consts.MethodGet,
		Path:   constants.LeaveMyLeavesPath,
		Params: query.Params(),
	})
}
