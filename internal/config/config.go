package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultTimeoutMS 普通请求的默认超时(毫秒)
	DefaultTimeoutMS = 30_000
	// DefaultUploadTimeoutMS 简历上传的超时(毫秒)，大文件/慢网络需要远大于默认值
	DefaultUploadTimeoutMS = 1_000_000
	// DefaultSuccessCode 后端响应信封中表示成功的code
	DefaultSuccessCode = 2000
)

// APIConfig 后端管理接口的访问配置
type APIConfig struct {
	BaseURL         string `yaml:"base_url"`          // 例如 "http://127.0.0.1:8000"
	Token           string `yaml:"token"`             // 访问令牌，原样放入Authorization头
	TokenPrefix     string `yaml:"token_prefix"`      // 令牌前缀，默认 "JWT"
	TimeoutMS       int    `yaml:"timeout_ms"`        // 普通请求超时(毫秒)
	UploadTimeoutMS int    `yaml:"upload_timeout_ms"` // 上传请求超时(毫秒)
	SuccessCodes    []int  `yaml:"success_codes"`     // 信封成功码，默认 [2000]
	Language        string `yaml:"language"`          // Accept-Language，例如 "zh-CN"
	MaxConnsPerHost int    `yaml:"max_conns_per_host"`
}

// Timeout 返回普通请求超时
func (a APIConfig) Timeout() time.Duration {
	if a.TimeoutMS <= 0 {
		return DefaultTimeoutMS * time.Millisecond
	}
	return time.Duration(a.TimeoutMS) * time.Millisecond
}

// UploadTimeout 返回上传请求超时
func (a APIConfig) UploadTimeout() time.Duration {
	if a.UploadTimeoutMS <= 0 {
		return DefaultUploadTimeoutMS * time.Millisecond
	}
	return time.Duration(a.UploadTimeoutMS) * time.Millisecond
}

// DictionaryConfig 字典服务配置
type DictionaryConfig struct {
	Path       string `yaml:"path"`        // 字典接口路径
	Cache      string `yaml:"cache"`       // memory, redis, none
	TTLSeconds int    `yaml:"ttl_seconds"` // 缓存有效期(秒)
}

// TTL 返回字典缓存有效期
func (d DictionaryConfig) TTL() time.Duration {
	if d.TTLSeconds <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(d.TTLSeconds) * time.Second
}

// RedisConfig holds configuration for Redis
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// 连接池设置
	PoolSize     int `yaml:"pool_size"`
	MinIdleConns int `yaml:"min_idle_conns"`
	// 超时设置
	DialTimeoutSeconds  int `yaml:"dial_timeout_seconds"`
	ReadTimeoutSeconds  int `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds"`
	MaxRetries          int `yaml:"max_retries"`
}

// MinIOConfig MinIO配置结构，批量筛选时从这里读取简历原件
type MinIOConfig struct {
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"accessKeyID"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	UseSSL          bool   `yaml:"useSSL"`
	ResumeBucket    string `yaml:"resumeBucket"`
	Location        string `yaml:"location"`
}

// MySQLConfig MySQL配置结构，保存筛选记录
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	// 连接池设置
	MaxIdleConns           int `yaml:"max_idle_conns"`
	MaxOpenConns           int `yaml:"max_open_conns"`
	ConnMaxLifetimeMinutes int `yaml:"conn_max_lifetime_minutes"`
	ConnectTimeoutSeconds  int `yaml:"connect_timeout_seconds"`
	// 日志级别(1-4)
	LogLevel int `yaml:"log_level"`
}

// RabbitMQConfig RabbitMQ配置结构，发布筛选完成事件
type RabbitMQConfig struct {
	URL               string `yaml:"url"`
	ScreeningExchange string `yaml:"screening_exchange"`
	ScreenedRouting   string `yaml:"screened_routing_key"`
}

// TracingConfig OpenTelemetry配置
type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"` // OTLP gRPC 地址，例如 "localhost:4317"
	ServiceName string `yaml:"service_name"`
	Insecure    bool   `yaml:"insecure"`
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level        string `yaml:"level"`         // debug, info, warn, error
	Format       string `yaml:"format"`        // json, pretty
	TimeFormat   string `yaml:"time_format"`   // 时间格式
	ReportCaller bool   `yaml:"report_caller"` // 是否报告调用位置
}

// ScreeningConfig 批量简历筛选配置
type ScreeningConfig struct {
	Workers        int    `yaml:"workers"`
	Prefix         string `yaml:"prefix"`          // MinIO对象前缀
	JobDescription string `yaml:"job_description"` // 比对用的岗位描述
	// 每分钟最多提交的分析请求数，0 表示不限制
	AnalyzePerMinute int `yaml:"analyze_per_minute"`
}

// Config 应用程序配置
type Config struct {
	API        APIConfig        `yaml:"api"`
	Dictionary DictionaryConfig `yaml:"dictionary"`
	Redis      RedisConfig      `yaml:"redis"`
	MinIO      MinIOConfig      `yaml:"minio"`
	MySQL      MySQLConfig      `yaml:"mysql"`
	RabbitMQ   RabbitMQConfig   `yaml:"rabbitmq"`
	Tracing    TracingConfig    `yaml:"tracing"`
	Logger     LoggerConfig     `yaml:"logger"`
	Screening  ScreeningConfig  `yaml:"screening"`
}

// LoadConfig 从文件加载配置，并用环境变量覆盖访问地址和令牌
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		searchPaths := []string{
			"config.yaml",
			"../config.yaml",
			filepath.Join(os.Getenv("HOME"), ".hrmsctl", "config.yaml"),
		}
		if execPath, err := os.Executable(); err == nil {
			searchPaths = append(searchPaths, filepath.Join(filepath.Dir(execPath), "config.yaml"))
		}
		for _, path := range searchPaths {
			if _, err := os.Stat(path); err == nil {
				configPath = path
				break
			}
		}
		// 找不到配置文件时直接使用默认配置
		if configPath == "" {
			cfg := DefaultConfig()
			applyEnv(cfg)
			return cfg, nil
		}
	}

	cfg, err := LoadConfigFromFileOnly(configPath)
	if err != nil {
		return nil, err
	}
	applyEnv(cfg)
	return cfg, nil
}

// LoadConfigFromFileOnly 从文件加载配置，不尝试从环境变量覆盖
func LoadConfigFromFileOnly(configPath string) (*Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("必须提供配置文件路径")
	}

	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("配置文件不存在: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	// 先填入默认值，YAML中出现的字段再覆盖
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
	if len(cfg.API.SuccessCodes) == 0 {
		cfg.API.SuccessCodes = []int{DefaultSuccessCode}
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("HRMS_API_BASE_URL"); v != "" {
		cfg.API.BaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("HRMS_API_TOKEN"); v != "" {
		cfg.API.Token = v
	}
}

// DefaultConfig 返回一份可直接使用的默认配置
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.API.BaseURL = "http://127.0.0.1:8000"
	cfg.API.TokenPrefix = "JWT"
	cfg.API.TimeoutMS = DefaultTimeoutMS
	cfg.API.UploadTimeoutMS = DefaultUploadTimeoutMS
	cfg.API.SuccessCodes = []int{DefaultSuccessCode}
	cfg.API.Language = "zh-CN"
	cfg.API.MaxConnsPerHost = 16

	cfg.Dictionary.Path = "/api/init/dictionary/"
	cfg.Dictionary.Cache = "memory"
	cfg.Dictionary.TTLSeconds = 600

	// Redis默认配置，地址为空时不启用
	cfg.Redis.PoolSize = 10
	cfg.Redis.MinIdleConns = 2
	cfg.Redis.DialTimeoutSeconds = 5
	cfg.Redis.ReadTimeoutSeconds = 3
	cfg.Redis.WriteTimeoutSeconds = 3
	cfg.Redis.MaxRetries = 3

	cfg.MinIO.ResumeBucket = "resumes"

	cfg.MySQL.Port = 3306
	cfg.MySQL.MaxIdleConns = 10
	cfg.MySQL.MaxOpenConns = 50
	cfg.MySQL.ConnMaxLifetimeMinutes = 60
	cfg.MySQL.ConnectTimeoutSeconds = 10
	cfg.MySQL.LogLevel = 2

	cfg.RabbitMQ.ScreeningExchange = "hrms.screening.exchange"
	cfg.RabbitMQ.ScreenedRouting = "resume.screened"

	cfg.Tracing.ServiceName = "hrmsctl"
	cfg.Tracing.Endpoint = "localhost:4317"
	cfg.Tracing.Insecure = true

	cfg.Logger.Level = "info"
	cfg.Logger.Format = "pretty"
	cfg.Logger.TimeFormat = "2006-01-02 15:04:05"

	cfg.Screening.Workers = 4

	return cfg
}

// CreateSampleConfig 创建一个示例配置文件
func CreateSampleConfig(filePath string) error {
	if _, err := os.Stat(filePath); err == nil {
		return fmt.Errorf("文件 '%s' 已存在，不会覆盖", filePath)
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("写入示例配置文件 '%s' 失败: %w", filePath, err)
	}
	return nil
}

// GetDuration utility to parse duration strings from config
func GetDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	if durationStr == "" {
		return defaultDuration
	}
	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return defaultDuration
	}
	return d
}
