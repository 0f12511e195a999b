package request

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app/client"
	hconfig "github.com/cloudwego/hertz/pkg/common/config"
	"github.com/cloudwego/hertz/pkg/common/json"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/google/uuid"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"hrms-admin-go/internal/config"
	"hrms-admin-go/internal/constants"
	"hrms-admin-go/internal/logger"
	"hrms-admin-go/internal/tracing"
)

const tracerName = "hrms-admin-go/request"

// Multipart 描述一次multipart表单上传
type Multipart struct {
	FieldName string            // 文件字段名，默认 "file"
	FileName  string            // 上传的文件名
	Reader    io.Reader         // 文件内容
	Fields    map[string]string // 其余表单字段
}

// Request 一次接口调用的描述
type Request struct {
	Method    string
	Path      string         // 以 / 开头，拼接在 base url 之后
	Params    map[string]any // URL查询参数，原样透传
	Data      any            // JSON请求体
	Headers   map[string]string
	Timeout   time.Duration // 0 表示使用客户端默认超时
	Multipart *Multipart
}

// Response 原始响应
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Doer 执行请求，资源客户端只依赖这个接口
type Doer interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// Client 基于hertz客户端的后端接口访问器
type Client struct {
	hc           *client.Client
	baseURL      string
	token        string
	tokenPrefix  string
	language     string
	timeout      time.Duration
	successCodes map[int]struct{}
	log          zerolog.Logger
	tracer       trace.Tracer
}

// Option 客户端选项
type Option func(*clientOptions)

type clientOptions struct {
	tracing     bool
	dialTimeout time.Duration
	middlewares []client.Middleware
}

// WithTracing 为hertz客户端挂上OpenTelemetry中间件
func WithTracing(enabled bool) Option {
	return func(o *clientOptions) { o.tracing = enabled }
}

// WithDialTimeout 设置建连超时
func WithDialTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.dialTimeout = d }
}

// WithMiddleware 追加hertz客户端中间件
func WithMiddleware(mw ...client.Middleware) Option {
	return func(o *clientOptions) { o.middlewares = append(o.middlewares, mw...) }
}

// NewClient 根据API配置创建客户端
func NewClient(cfg config.APIConfig, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("api.base_url 不能为空")
	}
	o := clientOptions{dialTimeout: 5 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}

	clientOpts := []hconfig.ClientOption{client.WithDialTimeout(o.dialTimeout)}
	if cfg.MaxConnsPerHost > 0 {
		clientOpts = append(clientOpts, client.WithMaxConnsPerHost(cfg.MaxConnsPerHost))
	}
	hc, err := client.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("创建hertz客户端失败: %w", err)
	}
	if o.tracing {
		hc.Use(hertztracing.ClientMiddleware())
	}
	if len(o.middlewares) > 0 {
		hc.Use(o.middlewares...)
	}

	codes := cfg.SuccessCodes
	if len(codes) == 0 {
		codes = []int{config.DefaultSuccessCode}
	}
	successCodes := make(map[int]struct{}, len(codes))
	for _, c := range codes {
		successCodes[c] = struct{}{}
	}

	return &Client{
		hc:           hc,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		token:        cfg.Token,
		tokenPrefix:  cfg.TokenPrefix,
		language:     cfg.Language,
		timeout:      cfg.Timeout(),
		successCodes: successCodes,
		log:          logger.Named("request"),
		tracer:       otel.Tracer(tracerName),
	}, nil
}

// Do 发送请求并做统一的响应检查
func (c *Client) Do(ctx context.Context, r *Request) (*Response, error) {
	if r == nil {
		return nil, fmt.Errorf("request 不能为空")
	}
	method := r.Method
	if method == "" {
		method = consts.MethodGet
	}

	ctx, span := c.tracer.Start(ctx, "HTTP "+method+" "+r.Path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer protocol.ReleaseRequest(req)
	defer protocol.ReleaseResponse(resp)

	fullURL := c.buildURL(r.Path, r.Params)
	req.SetRequestURI(fullURL)
	req.SetMethod(method)

	requestID := uuid.NewString()
	req.Header.Set(constants.HeaderRequestID, requestID)
	if c.token != "" {
		req.Header.Set(constants.HeaderAuthorization, c.authorization())
	}
	if c.language != "" {
		req.Header.Set(constants.HeaderAcceptLanguage, c.language)
	}

	if err := c.setBody(req, r); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return nil, err
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}

	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.path", r.Path),
		attribute.String("http.request_id", requestID),
	)

	start := time.Now()
	if err := c.hc.DoTimeout(ctx, req, resp, timeout); err != nil {
		c.log.Error().Err(err).
			Str("method", method).
			Str("path", r.Path).
			Dur("timeout", timeout).
			Msg("请求发送失败")
		tracing.RecordError(span, err, tracing.ErrorTypeExternal)
		return nil, fmt.Errorf("%s %s 请求失败: %w", method, r.Path, err)
	}

	out := &Response{
		StatusCode:  resp.StatusCode(),
		ContentType: string(resp.Header.ContentType()),
		Body:        append([]byte(nil), resp.Body()...),
	}
	span.SetAttributes(attribute.Int("http.status_code", out.StatusCode))

	c.log.Debug().
		Str("method", method).
		Str("path", r.Path).
		Int("status", out.StatusCode).
		Dur("elapsed", time.Since(start)).
		Str("request_id", requestID).
		Msg("请求完成")

	if apiErr := c.check(method, r.Path, out); apiErr != nil {
		tracing.RecordHTTPError(span, apiErr, apiErr.StatusCode, apiErr.Code)
		return nil, apiErr
	}
	return out, nil
}

func (c *Client) authorization() string {
	if c.tokenPrefix == "" {
		return c.token
	}
	return c.tokenPrefix + " " + c.token
}

func (c *Client) buildURL(path string, params map[string]any) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := c.baseURL + path
	if qs := EncodeParams(params); qs != "" {
		if strings.Contains(u, "?") {
			return u + "&" + qs
		}
		return u + "?" + qs
	}
	return u
}

func (c *Client) setBody(req *protocol.Request, r *Request) error {
	if mp := r.Multipart; mp != nil {
		if mp.Reader == nil {
			return fmt.Errorf("multipart 文件内容不能为空")
		}
		field := mp.FieldName
		if field == "" {
			field = "file"
		}
		req.SetFileReader(field, mp.FileName, mp.Reader)
		if len(mp.Fields) > 0 {
			req.SetMultipartFormData(mp.Fields)
		}
		return nil
	}
	if r.Data == nil {
		return nil
	}
	body, err := json.Marshal(r.Data)
	if err != nil {
		return fmt.Errorf("序列化请求体失败: %w", err)
	}
	req.Header.SetContentTypeBytes([]byte(consts.MIMEApplicationJSON))
	req.SetBody(body)
	return nil
}

// check 非2xx状态或信封code不在成功码内时返回 APIError。没有code字段的JSON体视为成功。
func (c *Client) check(method, path string, resp *Response) *APIError {
	p, isJSON := probe(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Method: method, Path: path, StatusCode: resp.StatusCode}
		if isJSON {
			apiErr.Msg = p.message()
			if p.Code != nil {
				apiErr.Code = *p.Code
			}
		} else {
			apiErr.Msg = tracing.TruncateString(string(resp.Body), tracing.MaxBodyLength)
		}
		return apiErr
	}
	if !isJSON || p.Code == nil {
		return nil
	}
	if _, ok := c.successCodes[*p.Code]; ok {
		return nil
	}
	return &APIError{
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode,
		Code:       *p.Code,
		Msg:        p.message(),
	}
}

// envelopeProbe 只解析信封的公共字段，用来判断成功与否
type envelopeProbe struct {
	Code   *int   `json:"code"`
	Msg    string `json:"msg"`
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

func (p envelopeProbe) message() string {
	switch {
	case p.Msg != "":
		return p.Msg
	case p.Error != "":
		return p.Error
	default:
		return p.Detail
	}
}

func probe(body []byte) (envelopeProbe, bool) {
	var p envelopeProbe
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return p, false
	}
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return p, false
	}
	return p, true
}

// EncodeParams 把查询参数编码为query string。键按字典序输出，切片展开为重复键。
func EncodeParams(params map[string]any) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := url.Values{}
	for _, k := range keys {
		switch v := params[k].(type) {
		case nil:
			continue
		case []string:
			for _, item := range v {
				values.Add(k, item)
			}
		case []any:
			for _, item := range v {
				values.Add(k, fmt.Sprint(item))
			}
		case []int:
			for _, item := range v {
				values.Add(k, fmt.Sprint(item))
			}
		default:
			values.Add(k, fmt.Sprint(v))
		}
	}
	return values.Encode()
}
