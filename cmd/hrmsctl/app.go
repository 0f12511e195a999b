package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"hrms-admin-go/internal/config"
	"hrms-admin-go/internal/dictionary"
	"hrms-admin-go/internal/hrms"
	"hrms-admin-go/internal/kb"
	"hrms-admin-go/internal/logger"
	"hrms-admin-go/internal/request"
	"hrms-admin-go/internal/storage"
)

// app 一次命令执行用到的全部依赖，外部存储按需连接
type app struct {
	cfg   *config.Config
	flags *flags
	out   io.Writer

	client    *request.Client
	employees *hrms.EmployeeAPI
	attends   *hrms.AttendanceAPI
	leaves    *hrms.LeaveAPI
	resumes   *hrms.ResumeAPI
	documents *kb.DocumentAPI
	dict      *dictionary.Service

	store *storage.Storage
	redis *storage.Redis
}

func newApp(cfg *config.Config, f *flags) (*app, error) {
	client, err := request.NewClient(cfg.API, request.WithTracing(cfg.Tracing.Enabled))
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:       cfg,
		flags:     f,
		out:       os.Stdout,
		client:    client,
		employees: hrms.NewEmployeeAPI(client),
		attends:   hrms.NewAttendanceAPI(client),
		leaves:    hrms.NewLeaveAPI(client),
		resumes:   hrms.NewResumeAPI(client, cfg.API.UploadTimeout()),
		documents: kb.NewDocumentAPI(client),
	}

	cache, err := a.dictionaryCache()
	if err != nil {
		return nil, err
	}
	a.dict = dictionary.NewService(dictionary.NewHTTPSource(client, cfg.Dictionary.Path), cache,
		dictionary.WithLoadTimeout(cfg.API.Timeout()))
	return a, nil
}

func (a *app) dictionaryCache() (dictionary.Cache, error) {
	switch strings.ToLower(a.cfg.Dictionary.Cache) {
	case "", "memory":
		return dictionary.NewMemoryCache(a.cfg.Dictionary.TTL()), nil
	case "none":
		return nil, nil
	case "redis":
		r, err := storage.NewRedisAdapter(&a.cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("字典缓存使用redis，但连接失败: %w", err)
		}
		a.redis = r
		return dictionary.NewRedisCache(r, a.cfg.Dictionary.TTL()), nil
	default:
		return nil, fmt.Errorf("未知的字典缓存类型: %s", a.cfg.Dictionary.Cache)
	}
}

// storage 第一次调用时连接配置过的外部存储
func (a *app) storage(ctx context.Context) (*storage.Storage, error) {
	if a.store != nil {
		return a.store, nil
	}
	s, err := storage.NewStorage(ctx, a.cfg, storage.KindMinIO, storage.KindMySQL, storage.KindRabbitMQ)
	if err != nil {
		return nil, err
	}
	a.store = s
	return s, nil
}

func (a *app) close(ctx context.Context) {
	if err := a.dict.Close(ctx); err != nil {
		logger.Warn().Err(err).Msg("关闭字典服务失败")
	}
	if a.store != nil {
		a.store.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			logger.Warn().Err(err).Msg("关闭Redis连接失败")
		}
	}
}
