package hrms

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrms-admin-go/internal/config"
	"hrms-admin-go/internal/request"
	"hrms-admin-go/internal/request/requesttest"
	"hrms-admin-go/internal/resource"
	"hrms-admin-go/internal/types"
)

func TestUploadUsesMultipartAndUploadTimeout(t *testing.T) {
	rec := requesttest.New().ReplyJSON(map[string]any{"id": 31, "name": "cv.pdf", "status": 0})
	api := NewResumeAPI(rec, 0)

	uploaded, err := api.Upload(context.Background(), types.ResumeUpload{
		FileName:      "cv.pdf",
		Reader:        strings.NewReader("%PDF"),
		CandidateName: "张三",
		Position:      "后端工程师",
	})
	require.NoError(t, err)
	assert.Equal(t, "31", uploaded.FileID)

	req := rec.Last()
	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, "/api/hrms/resume/upload/", req.Path)
	assert.Equal(t, config.DefaultUploadTimeoutMS*time.Millisecond, req.Timeout)
	require.NotNil(t, req.Multipart)
	assert.Equal(t, "file", req.Multipart.FieldName)
	assert.Equal(t, "cv.pdf", req.Multipart.FileName)
	assert.Equal(t, map[string]string{"candidate_name": "张三", "position": "后端工程师"}, req.Multipart.Fields)
	assert.Nil(t, req.Data)
}

func TestUploadRejectsEmptyInput(t *testing.T) {
	rec := requesttest.New()
	api := NewResumeAPI(rec, time.Second)

	_, err := api.Upload(context.Background(), types.ResumeUpload{FileName: "cv.pdf"})
	assert.ErrorIs(t, err, ErrEmptyUpload)
	assert.Zero(t, rec.Count())
}

func TestUploadWithoutFileIDInResponse(t *testing.T) {
	rec := requesttest.New().ReplyJSON(map[string]any{"name": "cv.pdf"})
	api := NewResumeAPI(rec, time.Second)

	_, err := api.Upload(context.Background(), types.ResumeUpload{FileName: "cv.pdf", Reader: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrMissingFileID)
}

func TestUploadFailurePropagatesAPIError(t *testing.T) {
	rec := requesttest.New().ReplyWith(requesttest.Reply{Err: &request.APIError{StatusCode: 200, Code: 400, Msg: "未获取到上传文件"}})
	api := NewResumeAPI(rec, time.Second)

	_, err := api.Upload(context.Background(), types.ResumeUpload{FileName: "cv.pdf", Reader: strings.NewReader("x")})
	var apiErr *request.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 400, apiErr.Code)
}

func TestAnalyzeSubmitsExactFileID(t *testing.T) {
	rec := requesttest.New().ReplyJSON(map[string]any{
		"name":   "张三",
		"skills": []string{"Go", "MySQL"},
		"score":  88,
	})
	api := NewResumeAPI(rec, time.Second)

	res, err := api.Analyze(context.Background(), types.AnalyzeRequest{FileID: "f-123", JobDescription: "Go 后端"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "MySQL"}, res.Skills)
	require.NotNil(t, res.Score)
	assert.InDelta(t, 88, *res.Score, 0.001)

	req := rec.Last()
	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, "/api/hrms/resume/analyze", req.Path)
	assert.Equal(t, types.AnalyzeRequest{FileID: "f-123", JobDescription: "Go 后端"}, req.Data)
	assert.Zero(t, req.Timeout, "分析使用默认超时")
}

func TestAnalyzeWithoutFileIDSendsNothing(t *testing.T) {
	rec := requesttest.New()
	api := NewResumeAPI(rec, time.Second)

	_, err := api.Analyze(context.Background(), types.AnalyzeRequest{})
	assert.ErrorIs(t, err, ErrMissingFileID)
	assert.Zero(t, rec.Count())
}

func TestSendChatMessage(t *testing.T) {
	rec := requesttest.New().ReplyJSON(map[string]any{"reply": "你好"})
	api := NewResumeAPI(rec, time.Second)

	reply, err := api.SendChatMessage(context.Background(), "介绍一下候选人")
	require.NoError(t, err)
	assert.Equal(t, "你好", reply.Reply)
	assert.Equal(t, "/api/hrms/resume/chat/", rec.Last().Path)
	assert.Equal(t, types.ChatRequest{Message: "介绍一下候选人"}, rec.Last().Data)

	_, err = api.SendChatMessage(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestResumeFileCRUDUsesResumePrefix(t *testing.T) {
	rec := requesttest.New()
	api := NewResumeAPI(rec, time.Second)

	_, err := api.List(context.Background(), types.NewPageQuery(1, 10).With("status", 0))
	require.NoError(t, err)
	assert.Equal(t, "/api/hrms/resume/", rec.Last().Path)
	assert.Equal(t, map[string]any{"page": 1, "limit": 10, "status": 0}, rec.Last().Params)
}

func TestEmployeeExtras(t *testing.T) {
	rec := requesttest.New().
		ReplyJSON(map[string]any{"total": 12, "active": 9, "trial": 2, "departed": 1}).
		ReplyJSON([]map[string]any{{"field_name": "mobile", "is_query": true, "is_create": true, "is_update": false}}).
		ReplyWith(requesttest.Reply{Status: 200, Body: []byte("PK\x03\x04xlsx")})
	api := NewEmployeeAPI(rec)
	ctx := context.Background()

	count, err := api.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.EmployeeCount{Total: 12, Active: 9, Trial: 2, Departed: 1}, *count)
	assert.Equal(t, "/api/hrms/employee/get_employee_count/", rec.Last().Path)

	perms, err := api.Permission(ctx)
	require.NoError(t, err)
	require.Len(t, perms, 1)
	assert.Equal(t, "mobile", perms[0].FieldName)
	assert.False(t, perms[0].IsUpdate)
	assert.Equal(t, "/api/hrms/employee/field_permission/", rec.Last().Path)

	data, err := api.Export(ctx, types.PageQuery{}.With("status", 0))
	require.NoError(t, err)
	assert.Equal(t, []byte("PK\x03\x04xlsx"), data)
	assert.Equal(t, "POST", rec.Last().Method)
	assert.Equal(t, "/api/hrms/employee/export/", rec.Last().Path)
	assert.Equal(t, map[string]any{"status": 0}, rec.Last().Data)
}

func TestAttendanceAndLeavePrefixes(t *testing.T) {
	rec := requesttest.New()
	ctx := context.Background()

	require.NoError(t, NewAttendanceAPI(rec).Delete(ctx, "4"))
	assert.Equal(t, "/api/hrms/attendance/4/", rec.Last().Path)

	_, err := NewLeaveAPI(rec).Update(ctx, types.Leave{ID: "8", Reason: "年假"})
	require.NoError(t, err)
	assert.Equal(t, "/api/hrms/leave/8/", rec.Last().Path)
}

func TestAttendanceCheckInAndOut(t *testing.T) {
	rec := requesttest.New().
		ReplyJSON(map[string]any{"id": 11, "employee": 3, "date": "2026-10-19", "check_in": "2026-10-19T09:12:00", "status": 1}).
		ReplyJSON(map[string]any{"id": 11, "employee": 3, "date": "2026-10-19", "check_out": "2026-10-19T18:05:00", "status": 1})
	api := NewAttendanceAPI(rec)
	ctx := context.Background()

	in, err := api.CheckIn(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, 1, in.Status)
	assert.Equal(t, "POST", rec.Last().Method)
	assert.Equal(t, "/api/hrms/attendance/check_in/", rec.Last().Path)
	assert.Equal(t, map[string]types.ID{"employee_id": "3"}, rec.Last().Data)

	out, err := api.CheckOut(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-19T18:05:00", out.CheckOut)
	assert.Equal(t, "/api/hrms/attendance/check_out/", rec.Last().Path)

	_, err = api.CheckIn(ctx, "")
	assert.ErrorIs(t, err, resource.ErrMissingID)
	assert.Equal(t, 2, rec.Count())
}

func TestLeaveApprove(t *testing.T) {
	rec := requesttest.New().ReplyJSON(map[string]any{"id": 8, "status": 1, "approve_remark": "同意"})
	api := NewLeaveAPI(rec)
	ctx := context.Background()

	leave, err := api.Approve(ctx, "8", LeaveApproved, "同意")
	require.NoError(t, err)
	assert.Equal(t, LeaveApproved, leave.Status)
	assert.Equal(t, "同意", leave.ApproveRemark)
	assert.Equal(t, "POST", rec.Last().Method)
	assert.Equal(t, "/api/hrms/leave/8/approve/", rec.Last().Path)
	assert.Equal(t, map[string]any{"status": 1, "remark": "同意"}, rec.Last().Data)

	_, err = api.Approve(ctx, "8", 0, "")
	assert.ErrorIs(t, err, ErrInvalidApproval)
	_, err = api.Approve(ctx, "", LeaveRejected, "")
	assert.ErrorIs(t, err, resource.ErrMissingID)
	assert.Equal(t, 1, rec.Count())
}

func TestLeaveMyLeaves(t *testing.T) {
	rec := requesttest.New().
		Reply(`{"code":2000,"msg":"success","page":1,"limit":10,"total":1,"data":[{"id":2,"reason":"病假","status":0}]}`).
		Reply(`{"code":2000,"msg":"未找到员工信息","data":[]}`)
	api := NewLeaveAPI(rec)
	ctx := context.Background()

	page, err := api.MyLeaves(ctx, types.NewPageQuery(1, 10))
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "病假", page.Data[0].Reason)
	assert.Equal(t, "GET", rec.Last().Method)
	assert.Equal(t, "/api/hrms/leave/my_leaves/", rec.Last().Path)
	assert.Equal(t, map[string]any{"page": 1, "limit": 10}, rec.Last().Params)

	page, err = api.MyLeaves(ctx, types.PageQuery{})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
}

func TestEmployeeImport(t *testing.T) {
	rec := requesttest.New().ReplyWith(requesttest.Reply{Status: 200, Body: []byte("PK\x03\x04tpl")})
	api := NewEmployeeAPI(rec)
	ctx := context.Background()

	tpl, err := api.ImportTemplate(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("PK\x03\x04tpl"), tpl)
	assert.Equal(t, "GET", rec.Last().Method)
	assert.Equal(t, "/api/hrms/employee/import/", rec.Last().Path)

	require.NoError(t, api.Import(ctx, "/media/files/employees.xlsx"))
	assert.Equal(t, "POST", rec.Last().Method)
	assert.Equal(t, map[string]string{"url": "/media/files/employees.xlsx"}, rec.Last().Data)

	assert.Error(t, api.Import(ctx, ""))
	assert.Equal(t, 2, rec.Count())
}
