package tracing

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrorType 写入 span 的 error.type
type ErrorType string

const (
	ErrorTypeHTTP        ErrorType = "http"            // 后端返回失败响应
	ErrorTypeDB          ErrorType = "db"              // 筛选记录库
	ErrorTypeRedis       ErrorType = "redis"           // 字典缓存
	ErrorTypeRabbitMQ    ErrorType = "rabbitmq"        // 筛选事件
	ErrorTypeObjectStore ErrorType = "object_store"    // 简历对象存储
	ErrorTypeValidation  ErrorType = "validation"      // 请求在发出前就不合法
	ErrorTypeExternal    ErrorType = "external_system" // 网络等
	ErrorTypeTimeout     ErrorType = "timeout"
)

var errNotConfirmed = errors.New("broker did not confirm the message")

// RecordError 把错误记到 span 上并标记失败。超时一律归为 timeout。
func RecordError(span trace.Span, err error, errorType ErrorType, attrs ...attribute.KeyValue) {
	if span == nil || err == nil {
		return
	}
	if errors.Is(err, context.DeadlineExceeded) {
		errorType = ErrorTypeTimeout
	}

	msg := TruncateString(err.Error(), DefaultMaxLength)
	span.RecordError(err)
	span.SetAttributes(append([]attribute.KeyValue{
		attribute.String("error.type", string(errorType)),
		attribute.String("error.message", msg),
	}, attrs...)...)
	span.SetStatus(codes.Error, msg)
}

// RecordHTTPError 记录后端的失败响应。envelopeCode 为 0 表示响应里没有 code。
func RecordHTTPError(span trace.Span, err error, statusCode, envelopeCode int) {
	attrs := []attribute.KeyValue{
		attribute.Int("http.status_code", statusCode),
		attribute.String("error.category", httpCategory(statusCode)),
	}
	if envelopeCode != 0 {
		attrs = append(attrs, attribute.Int("hrms.envelope_code", envelopeCode))
	}
	RecordError(span, err, ErrorTypeHTTP, attrs...)
}

func httpCategory(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		// HTTP 成功但信封 code 不是成功码
		return "envelope_error"
	case statusCode >= 400 && statusCode < 500:
		return "client_error"
	case statusCode >= 500:
		return "server_error"
	}
	return "unknown"
}

// RecordPublishFailure 记录事件没有被 broker 确认。err 为 nil 表示收到了 nack。
func RecordPublishFailure(span trace.Span, err error) {
	if err == nil {
		err = errNotConfirmed
	}
	RecordError(span, err, ErrorTypeRabbitMQ, attribute.Bool("messaging.rabbitmq.confirmed", false))
}
