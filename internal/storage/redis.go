package storage

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"hrms-admin-go/internal/config"
	"hrms-admin-go/internal/constants"
	"hrms-admin-go/internal/tracing"
)

var (
	// ErrNotFound 键不存在
	ErrNotFound = redis.Nil

	errRedisNotInitialized = errors.New("redis客户端未初始化")
)

var redisTracer = otel.Tracer("hrms-admin-go/storage/redis")

// 按键前缀决定是否额外创建业务span，redisotel 已经为每条命令记录了span
var redisKeySamplingRates = map[string]float64{
	constants.AppPrefix + ":dict:": 0.1,
}

var (
	rnd      = rand.New(rand.NewSource(time.Now().UnixNano()))
	rndMutex sync.Mutex
)

func shouldSampleRedisOp(key string) bool {
	if key == "" {
		return false
	}
	for prefix, rate := range redisKeySamplingRates {
		if strings.HasPrefix(key, prefix) {
			return randFloat() < rate
		}
	}
	return randFloat() < 0.05
}

func randFloat() float64 {
	rndMutex.Lock()
	defer rndMutex.Unlock()
	return rnd.Float64()
}

// Redis 封装 go-redis 客户端
type Redis struct {
	Client *redis.Client
}

// NewRedisAdapter 按配置连接Redis并挂上OpenTelemetry钩子
func NewRedisAdapter(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,

		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,

		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
		MaxRetries:   cfg.MaxRetries,
	})

	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("failed to instrument Redis with OpenTelemetry: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	return &Redis{Client: client}, nil
}

// NewRedisFromClient 包装一个已有的客户端
func NewRedisFromClient(client *redis.Client) *Redis {
	return &Redis{Client: client}
}

// Close 关闭连接
func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

// Ping 检查连接
func (r *Redis) Ping(ctx context.Context) error {
	if r.Client == nil {
		return errRedisNotInitialized
	}
	return r.Client.Ping(ctx).Err()
}

// startKeySpan 按键前缀采样创建业务span，未采样时返回 nil
func startKeySpan(ctx context.Context, op, key string) (context.Context, trace.Span) {
	if !shouldSampleRedisOp(key) {
		return ctx, nil
	}
	ctx, span := redisTracer.Start(ctx, "Redis."+op, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String("db.system", "redis"),
		attribute.String("db.operation", strings.ToUpper(op)),
		attribute.String("db.redis.key", tracing.SafeRedisKey(key)),
	)
	return ctx, span
}

func endSpan(span trace.Span) {
	if span != nil {
		span.End()
	}
}

// Get 获取键的值，键不存在时返回 ErrNotFound
func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	if r.Client == nil {
		return "", errRedisNotInitialized
	}
	ctx, span := startKeySpan(ctx, "Get", key)
	defer endSpan(span)

	val, err := r.Client.Get(ctx, key).Result()
	switch {
	case errors.Is(err, redis.Nil):
		// 未命中不算错误
		if span != nil {
			span.SetAttributes(attribute.Bool("db.redis.key_exists", false))
		}
		return "", ErrNotFound
	case err != nil:
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return "", err
	}
	if span != nil {
		span.SetAttributes(attribute.Int("db.redis.value_length", len(val)))
	}
	return val, nil
}

// Set 设置键的值，expiration<=0 表示不过期
func (r *Redis) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	if r.Client == nil {
		return errRedisNotInitialized
	}
	if expiration < 0 {
		expiration = 0
	}
	ctx, span := startKeySpan(ctx, "Set", key)
	defer endSpan(span)
	if span != nil {
		span.SetAttributes(
			attribute.Int("db.redis.value_length", len(value)),
			attribute.Int64("db.redis.expiration_ms", expiration.Milliseconds()),
		)
	}

	if err := r.Client.Set(ctx, key, value, expiration).Err(); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return err
	}
	return nil
}

// Del 删除若干键
func (r *Redis) Del(ctx context.Context, keys ...string) error {
	if r.Client == nil {
		return errRedisNotInitialized
	}
	if len(keys) == 0 {
		return nil
	}
	return r.Client.Del(ctx, keys...).Err()
}

// DeleteByPattern 用 SCAN 找出匹配的键并删除，返回删除的数量
func (r *Redis) DeleteByPattern(ctx context.Context, pattern string) (int, error) {
	if r.Client == nil {
		return 0, errRedisNotInitialized
	}

	ctx, span := redisTracer.Start(ctx, "Redis.DeleteByPattern", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("db.redis.pattern", tracing.SafeRedisKey(pattern)))

	deleted := 0
	iter := r.Client.Scan(ctx, 0, pattern, 100).Iterator()
	batch := make([]string, 0, 100)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := r.Client.Del(ctx, batch...).Err(); err != nil {
				tracing.RecordError(span, err, tracing.ErrorTypeRedis)
				return deleted, err
			}
			deleted += len(batch)
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return deleted, err
	}
	if len(batch) > 0 {
		if err := r.Client.Del(ctx, batch...).Err(); err != nil {
			tracing.RecordError(span, err, tracing.ErrorTypeRedis)
			return deleted, err
		}
		deleted += len(batch)
	}
	span.SetAttributes(attribute.Int("db.redis.deleted", deleted))
	return deleted, nil
}
