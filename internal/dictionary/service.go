package dictionary

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"hrms-admin-go/internal/logger"
)

// DefaultLoadTimeout 共享加载的默认超时
const DefaultLoadTimeout = 30 * time.Second

// Service 字典源加缓存。cache 为 nil 时每次都请求后端。
type Service struct {
	source      Lookup
	cache       Cache
	log         zerolog.Logger
	group       singleflight.Group // 同一个键的并发请求只打一次后端
	closed      atomic.Bool
	loadTimeout time.Duration
}

// ServiceOption 字典服务选项
type ServiceOption func(*Service)

// WithLoadTimeout 设置共享加载的超时，一般取接口的默认超时
func WithLoadTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.loadTimeout = d
		}
	}
}

// NewService 创建字典服务
func NewService(source Lookup, cache Cache, opts ...ServiceOption) *Service {
	s := &Service{
		source:      source,
		cache:       cache,
		log:         logger.Named("dictionary"),
		loadTimeout: DefaultLoadTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Options 实现 Lookup，先查缓存，未命中再请求后端并回填
func (s *Service) Options(ctx context.Context, key string) ([]Option, error) {
	if s.cache != nil && !s.closed.Load() {
		options, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("读取字典缓存失败，直接请求后端")
		} else if ok {
			return options, nil
		}
	}
	return s.load(ctx, key)
}

// Refresh 跳过缓存重新拉取并覆盖缓存
func (s *Service) Refresh(ctx context.Context, key string) ([]Option, error) {
	s.group.Forget(key)
	return s.load(ctx, key)
}

// Invalidate 删除某个字典的缓存
func (s *Service) Invalidate(ctx context.Context, key string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, key)
}

// Close 清空缓存并停止回填，之后的查询都直接请求后端
func (s *Service) Close(ctx context.Context) error {
	s.closed.Store(true)
	if s.cache == nil {
		return nil
	}
	return s.cache.Clear(ctx)
}

// load 同一个键只加载一次。共享的加载不随发起者取消，只受 loadTimeout 约束；
// 每个调用方各自按自己的 ctx 放弃等待。
func (s *Service) load(ctx context.Context, key string) ([]Option, error) {
	ch := s.group.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.loadTimeout)
		defer cancel()

		options, err := s.source.Options(loadCtx, key)
		if err != nil {
			return nil, err
		}
		if s.cache != nil && !s.closed.Load() {
			if err := s.cache.Set(loadCtx, key, options); err != nil {
				s.log.Warn().Err(err).Str("key", key).Msg("写入字典缓存失败")
			}
		}
		return options, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		options := res.Val.([]Option)
		s.log.Debug().Str("key", key).Int("count", len(options)).Bool("shared", res.Shared).Msg("字典已加载")
		return cloneOptions(options), nil
	}
}
