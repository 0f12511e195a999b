// Package requesttest 提供记录请求、返回预设响应的 request.Doer，用于测试各接口客户端。
package requesttest

import (
	"context"
	"sync"

	"github.com/cloudwego/hertz/pkg/common/json"

	"hrms-admin-go/internal/request"
)

// Reply 一次预设的响应
type Reply struct {
	Status int
	Body   []byte
	Err    error
}

// Recorder 按顺序记录收到的请求。未预设响应时返回 {"code":2000,"msg":"ok","data":null}。
type Recorder struct {
	mu       sync.Mutex
	requests []request.Request
	replies  []Reply
	byPath   map[string]Reply
}

// New 创建 Recorder
func New() *Recorder {
	return &Recorder{byPath: map[string]Reply{}}
}

// Reply 追加一个按顺序消费的响应
func (r *Recorder) Reply(body string) *Recorder {
	return r.ReplyWith(Reply{Status: 200, Body: []byte(body)})
}

// ReplyWith 追加一个完整的预设响应
func (r *Recorder) ReplyWith(reply Reply) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, reply)
	return r
}

// ReplyJSON 把 data 包进成功信封后作为下一个响应
func (r *Recorder) ReplyJSON(data any) *Recorder {
	body, err := json.Marshal(map[string]any{"code": 2000, "msg": "ok", "data": data})
	if err != nil {
		panic(err)
	}
	return r.ReplyWith(Reply{Status: 200, Body: body})
}

// OnPath 为某个路径设置固定响应，优先于顺序响应
func (r *Recorder) OnPath(path string, reply Reply) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byPath[path] = reply
	return r
}

// Do 实现 request.Doer
func (r *Recorder) Do(_ context.Context, req *request.Request) (*request.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, *req)

	reply, ok := r.byPath[req.Path]
	if !ok {
		if len(r.replies) > 0 {
			reply, r.replies = r.replies[0], r.replies[1:]
		} else {
			reply = Reply{Status: 200, Body: []byte(`{"code":2000,"msg":"ok","data":null}`)}
		}
	}
	if reply.Err != nil {
		return nil, reply.Err
	}
	return &request.Response{StatusCode: reply.Status, Body: reply.Body}, nil
}

// Requests 返回已记录的请求副本
func (r *Recorder) Requests() []request.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]request.Request(nil), r.requests...)
}

// Last 最后一个请求，没有时返回零值
func (r *Recorder) Last() request.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.requests) == 0 {
		return request.Request{}
	}
	return r.requests[len(r.requests)-1]
}

// Count 已记录的请求数
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}
