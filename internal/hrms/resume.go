package hrms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/rs/zerolog"

	"hrms-admin-go/internal/config"
	"hrms-admin-go/internal/constants"
	"hrms-admin-go/internal/logger"
	"hrms-admin-go/internal/request"
	"hrms-admin-go/internal/resource"
	"hrms-admin-go/internal/tracing"
	"hrms-admin-go/internal/types"
)

var (
	// ErrEmptyUpload 上传时没有文件名或文件内容
	ErrEmptyUpload = errors.New("上传内容为空")
	// ErrMissingFileID 分析时没有文件引用，或上传响应里没有文件引用
	ErrMissingFileID = errors.New("缺少 file_id")
	// ErrEmptyMessage 对话内容为空
	ErrEmptyMessage = errors.New("对话内容为空")
)

// ResumeAPI 简历接口：上传、分析、单轮对话，以及简历文件记录的增删改查
type ResumeAPI struct {
	*resource.Client[types.ResumeFile]
	uploadTimeout time.Duration
	log           zerolog.Logger
}

// NewResumeAPI 创建简历接口。uploadTimeout<=0 时使用默认的上传超时。
func NewResumeAPI(doer request.Doer, uploadTimeout time.Duration) *ResumeAPI {
	if uploadTimeout <= 0 {
		uploadTimeout = config.DefaultUploadTimeoutMS * time.Millisecond
	}
	return &ResumeAPI{
		Client:        resource.New[types.ResumeFile](doer, constants.ResumePrefix),
		uploadTimeout: uploadTimeout,
		log:           logger.Named("resume"),
	}
}

// Upload 以 multipart 表单上传一份简历，文件放在 file 字段。
// 使用上传专用的超时，不受普通请求超时限制。
func (a *ResumeAPI) Upload(ctx context.Context, up types.ResumeUpload) (*types.UploadedFile, error) {
	if up.FileName == "" || up.Reader == nil {
		return nil, ErrEmptyUpload
	}

	fields := map[string]string{}
	if up.CandidateName != "" {
		fields["candidate_name"] = up.CandidateName
	}
	if up.Position != "" {
		fields["position"] = up.Position
	}

	uploaded, err := request.Call[types.UploadedFile](ctx, a.Doer(), &request.Request{
		Method:  consts.MethodPost,
		Path:    constants.ResumeUploadPath,
		Timeout: a.uploadTimeout,
		Multipart: &request.Multipart{
			FieldName: "file",
			FileName:  up.FileName,
			Reader:    up.Reader,
			Fields:    fields,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("上传简历 %s 失败: %w", up.FileName, err)
	}
	if uploaded.FileID == "" {
		return nil, fmt.Errorf("上传简历 %s: %w", up.FileName, ErrMissingFileID)
	}

	a.log.Info().
		Str("file", up.FileName).
		Str("file_id", uploaded.FileID).
		Str("candidate_name", tracing.SafeAttributeValue("candidate_name", up.CandidateName, 0)).
		Msg("简历上传成功")
	return uploaded, nil
}

// Analyze 请求服务端分析已上传的简历。只提交给定的 file_id，不重试也不重新上传。
func (a *ResumeAPI) Analyze(ctx context.Context, req types.AnalyzeRequest) (*types.AnalysisResult, error) {
	if req.FileID == "" {
		return nil, ErrMissingFileID
	}
	result, err := request.Call[types.AnalysisResult](ctx, a.Doer(), &request.Request{
		Method: consts.MethodPost,
		Path:   constants.ResumeAnalyzePath,
		Data:   req,
	})
	if err != nil {
		return nil, fmt.Errorf("分析简历 %s 失败: %w", req.FileID, err)
	}
	return result, nil
}

// SendChatMessage 发送一条对话消息，服务端不保留会话状态
func (a *ResumeAPI) SendChatMessage(ctx context.Context, message string) (*types.ChatReply, error) {
	if message == "" {
		return nil, ErrEmptyMessage
	}
	return request.Call[types.ChatReply](ctx, a.Doer(), &request.Request{
		Method: consts.MethodPost,
		Path:   constants.ResumeChatPath,
		Data:   types.ChatRequest{Message: message},
	})
}
