package storage

import (
	"context"
	"fmt"
	"strings"

	"hrms-admin-go/internal/config"
	"hrms-admin-go/internal/logger"
)

// Kind 外部存储组件
type Kind string

const (
	KindMinIO    Kind = "minio"
	KindRabbitMQ Kind = "rabbitmq"
	KindMySQL    Kind = "mysql"
	KindRedis    Kind = "redis"
)

// Storage 命令行用到的外部存储，没有连接的组件为 nil
type Storage struct {
	MinIO    *MinIO
	RabbitMQ *RabbitMQ
	MySQL    *MySQL
	Redis    *Redis
}

// configured 返回配置里填写了地址的组件
func configured(cfg *config.Config) map[Kind]bool {
	return map[Kind]bool{
		KindMinIO:    cfg.MinIO.Endpoint != "",
		KindRabbitMQ: cfg.RabbitMQ.URL != "",
		KindMySQL:    cfg.MySQL.Host != "",
		KindRedis:    cfg.Redis.Address != "",
	}
}

// NewStorage 连接 kinds 中已配置的组件，kinds 为空时连接全部已配置的组件。
// 筛选记录与事件是可选的，单个组件失败只记录警告；请求的组件全部失败时返回错误。
func NewStorage(ctx context.Context, cfg *config.Config, kinds ...Kind) (*Storage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}
	log := logger.Named("storage")

	want := configured(cfg)
	if len(kinds) > 0 {
		requested := map[Kind]bool{}
		for _, k := range kinds {
			requested[k] = want[k]
		}
		want = requested
	}

	s := &Storage{}
	var (
		attempted  int
		initErrors []string
	)
	connect := func(kind Kind, fn func() error) {
		if !want[kind] {
			return
		}
		attempted++
		if err := fn(); err != nil {
			initErrors = append(initErrors, fmt.Sprintf("%s: %v", kind, err))
		}
	}

	connect(KindMinIO, func() (err error) { s.MinIO, err = NewMinIO(ctx, &cfg.MinIO); return })
	connect(KindRabbitMQ, func() (err error) { s.RabbitMQ, err = NewRabbitMQ(&cfg.RabbitMQ); return })
	connect(KindMySQL, func() (err error) { s.MySQL, err = NewMySQL(&cfg.MySQL); return })
	connect(KindRedis, func() (err error) { s.Redis, err = NewRedisAdapter(&cfg.Redis); return })

	if attempted > 0 && len(initErrors) == attempted {
		return nil, fmt.Errorf("存储组件全部连接失败: %s", strings.Join(initErrors, "; "))
	}
	if len(initErrors) > 0 {
		log.Warn().Strs("errors", initErrors).Msg("部分存储组件连接失败，相关功能跳过")
	}
	return s, nil
}

// Close 关闭已连接的组件。MinIO 客户端无需关闭。
func (s *Storage) Close() {
	log := logger.Named("storage")
	warn := func(kind Kind, err error) {
		if err != nil {
			log.Warn().Err(err).Str("kind", string(kind)).Msg("关闭连接失败")
		}
	}
	if s.RabbitMQ != nil {
		warn(KindRabbitMQ, s.RabbitMQ.Close())
	}
	if s.MySQL != nil {
		warn(KindMySQL, s.MySQL.Close())
	}
	if s.Redis != nil {
		warn(KindRedis, s.Redis.Close())
	}
}
