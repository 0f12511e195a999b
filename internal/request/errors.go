package request

import (
	"errors"
	"fmt"

	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// APIError 后端返回的失败响应：HTTP状态码非2xx，或信封code不在成功码之内
type APIError struct {
	Method     string
	Path       string
	StatusCode int    // HTTP状态码
	Code       int    // 信封中的code，没有信封时为0
	Msg        string // 后端给出的提示信息
}

func (e *APIError) Error() string {
	if e.Code != 0 && e.Code != e.StatusCode {
		return fmt.Sprintf("%s %s: status=%d code=%d msg=%s", e.Method, e.Path, e.StatusCode, e.Code, e.Msg)
	}
	return fmt.Sprintf("%s %s: status=%d msg=%s", e.Method, e.Path, e.StatusCode, e.Msg)
}

// Is 让 errors.Is(err, ErrNotFound) 对404生效
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.notFound()
}

func (e *APIError) notFound() bool {
	return e.StatusCode == consts.StatusNotFound || e.Code == consts.StatusNotFound
}

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("记录不存在")

// IsNotFound 判断错误是否表示服务端找不到该记录
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StatusCode 取出错误中的HTTP状态码，非 APIError 返回0
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
