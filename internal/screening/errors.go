package screening

import (
	"errors"
	"fmt"
)

// Stage 单个文件处理的阶段
type Stage string

const (
	StageOpen    Stage = "open"
	StageUpload  Stage = "upload"
	StageAnalyze Stage = "analyze"
)

// 阶段对应的基础错误
var (
	ErrOpenFailed    = errors.New("读取简历失败")
	ErrUploadFailed  = errors.New("上传简历失败")
	ErrAnalyzeFailed = errors.New("分析简历失败")
)

// StageError 某个文件在某个阶段失败
type StageError struct {
	BatchID string
	Key     string
	Stage   Stage
	BaseErr error
	Err     error // 下层返回的原始错误
}

func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (阶段:%s, 文件:%s): %v", e.BaseErr, e.Stage, e.Key, e.Err)
	}
	return fmt.Sprintf("%s (阶段:%s, 文件:%s)", e.BaseErr, e.Stage, e.Key)
}

// Unwrap 暴露原始错误，便于 errors.As 取出 *request.APIError
func (e *StageError) Unwrap() error {
	return e.Err
}

// Is 让 errors.Is 能匹配阶段的基础错误
func (e *StageError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

func newStageError(batchID, key string, stage Stage, cause error) *StageError {
	base := ErrOpenFailed
	switch stage {
	case StageUpload:
		base = ErrUploadFailed
	case StageAnalyze:
		base = ErrAnalyzeFailed
	}
	return &StageError{BatchID: batchID, Key: key, Stage: stage, BaseErr: base, Err: cause}
}
