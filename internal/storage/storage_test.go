package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"

	"hrms-admin-go/internal/config"
	"hrms-admin-go/internal/storage/models"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	r := NewRedisFromClient(client)
	t.Cleanup(func() { _ = r.Close() })
	return r, mr
}

func TestRedisGetSet(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()

	_, err := r.Get(ctx, "app:dict:option:gender")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, r.Set(ctx, "app:dict:option:gender", `[{"label":"男","value":1}]`, time.Minute))
	val, err := r.Get(ctx, "app:dict:option:gender")
	require.NoError(t, err)
	assert.Equal(t, `[{"label":"男","value":1}]`, val)
	assert.Equal(t, time.Minute, mr.TTL("app:dict:option:gender"))

	require.NoError(t, r.Set(ctx, "plain", "v", 0))
	assert.Equal(t, time.Duration(0), mr.TTL("plain"))

	require.NoError(t, r.Del(ctx, "plain"))
	assert.False(t, mr.Exists("plain"))
	assert.NoError(t, r.Del(ctx))
	assert.NoError(t, r.Ping(ctx))
}

func TestRedisDeleteByPattern(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()
	for _, k := range []string{"app:dict:option:a", "app:dict:option:b", "app:dict:option:c"} {
		require.NoError(t, mr.Set(k, "x"))
	}
	require.NoError(t, mr.Set("app:other", "keep"))

	n, err := r.DeleteByPattern(ctx, "app:dict:option:*")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.True(t, mr.Exists("app:other"))
}

func TestRedisUninitialised(t *testing.T) {
	r := &Redis{}
	_, err := r.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.Error(t, r.Set(context.Background(), "k", "v", 0))
	assert.NoError(t, r.Close())
}

func TestNewRedisAdapterValidatesConfig(t *testing.T) {
	_, err := NewRedisAdapter(nil)
	assert.Error(t, err)
	_, err = NewRedisAdapter(&config.RedisConfig{})
	assert.Error(t, err)
}

func TestIsResumeKey(t *testing.T) {
	assert.True(t, IsResumeKey("2026/10/张三.PDF"))
	assert.True(t, IsResumeKey("a/b.docx"))
	assert.False(t, IsResumeKey("a/b.png"))
	assert.False(t, IsResumeKey("folder.pdf/"))

	assert.Equal(t, "application/pdf", ContentTypeOf("x.pdf"))
	assert.Equal(t, "application/octet-stream", ContentTypeOf("x.txt"))
	assert.Equal(t, "张三.pdf", ResumeObject{Key: "2026/10/张三.pdf"}.Name())
}

func TestBuildDSN(t *testing.T) {
	cfg := config.DefaultConfig().MySQL
	cfg.Host, cfg.Username, cfg.Password, cfg.Database = "db.local", "hr", "secret", "hrms"

	dsn := BuildDSN(&cfg)
	assert.Equal(t, "hr:secret@tcp(db.local:3306)/hrms?charset=utf8mb4&parseTime=True&loc=Local&timeout=10s", dsn)
}

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, gormLogLevel(1))
	assert.Equal(t, gormlogger.Info, gormLogLevel(4))
	assert.Equal(t, gormlogger.Warn, gormLogLevel(0))
}

func TestTableCarrier(t *testing.T) {
	headers := amqp.Table{"n": 1}
	c := tableCarrier(headers)
	c.Set("traceparent", "00-abc-def-01")

	assert.Equal(t, "00-abc-def-01", headers["traceparent"])
	assert.Equal(t, "", c.Get("n"), "非字符串的头不参与传播")
	assert.ElementsMatch(t, []string{"n", "traceparent"}, c.Keys())
}

func TestScreeningRecordTable(t *testing.T) {
	assert.Equal(t, "resume_screenings", models.ScreeningRecord{}.TableName())
}

func TestNewStorageWithNothingConfigured(t *testing.T) {
	s, err := NewStorage(context.Background(), config.DefaultConfig())
	require.NoError(t, err)
	assert.Nil(t, s.MinIO)
	assert.Nil(t, s.Redis)
	s.Close()
}

func TestNewStorageOnlyRequestedKinds(t *testing.T) {
	cfg := config.DefaultConfig()
	mr := miniredis.RunT(t)
	cfg.Redis.Address = mr.Addr()
	cfg.MySQL.Host = "127.0.0.1" // 未请求，不会尝试连接

	s, err := NewStorage(context.Background(), cfg, KindRedis)
	require.NoError(t, err)
	require.NotNil(t, s.Redis)
	assert.Nil(t, s.MySQL)
	s.Close()

	// 请求了但没有配置的组件直接跳过
	s, err = NewStorage(context.Background(), config.DefaultConfig(), KindMinIO)
	require.NoError(t, err)
	assert.Nil(t, s.MinIO)
}
