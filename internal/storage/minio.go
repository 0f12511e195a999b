package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"hrms-admin-go/internal/config"
	"hrms-admin-go/internal/logger"
	"hrms-admin-go/internal/tracing"
)

var minioTracer = otel.Tracer("hrms-admin-go/storage/minio")

// resumeExtensions 可以提交给后端的简历格式
var resumeExtensions = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// ResumeObject 存储桶中的一份简历原件
type ResumeObject struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// Name 对象的文件名部分，用作上传时的文件名
func (o ResumeObject) Name() string {
	return path.Base(o.Key)
}

// IsResumeKey 按扩展名判断对象是不是简历文件
func IsResumeKey(key string) bool {
	if strings.HasSuffix(key, "/") {
		return false
	}
	_, ok := resumeExtensions[strings.ToLower(path.Ext(key))]
	return ok
}

// ContentTypeOf 按扩展名推断内容类型
func ContentTypeOf(key string) string {
	if ct, ok := resumeExtensions[strings.ToLower(path.Ext(key))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// MinIO 简历原件所在的对象存储，批量筛选从这里读取
type MinIO struct {
	client *minio.Client
	bucket string
	log    zerolog.Logger
}

// NewMinIO 创建MinIO客户端并确认简历桶存在
func NewMinIO(ctx context.Context, cfg *config.MinIOConfig) (*MinIO, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MinIO配置不能为空")
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("MinIO endpoint 不能为空")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Location,
	})
	if err != nil {
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	m := &MinIO{client: client, bucket: cfg.ResumeBucket, log: logger.Named("minio")}
	exists, err := client.BucketExists(ctx, m.bucket)
	if err != nil {
		return nil, fmt.Errorf("检查存储桶 %s 是否存在时出错: %w", m.bucket, err)
	}
	if !exists {
		return nil, fmt.Errorf("存储桶 %s 不存在", m.bucket)
	}

	m.log.Info().Str("endpoint", cfg.Endpoint).Str("bucket", m.bucket).Msg("MinIO客户端初始化成功")
	return m, nil
}

// Bucket 简历桶名
func (m *MinIO) Bucket() string { return m.bucket }

// ListResumes 列出前缀下的所有简历文件，非简历格式的对象会被跳过
func (m *MinIO) ListResumes(ctx context.Context, prefix string) ([]ResumeObject, error) {
	ctx, span := minioTracer.Start(ctx, "MinIO.ListResumes", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("minio.bucket", m.bucket),
		attribute.String("minio.prefix", prefix),
	)

	var out []ResumeObject
	skipped := 0
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			tracing.RecordError(span, obj.Err, tracing.ErrorTypeObjectStore)
			return nil, fmt.Errorf("列出 %s/%s 失败: %w", m.bucket, prefix, obj.Err)
		}
		if !IsResumeKey(obj.Key) {
			skipped++
			continue
		}
		ct := obj.ContentType
		if ct == "" {
			ct = ContentTypeOf(obj.Key)
		}
		out = append(out, ResumeObject{
			Key:          obj.Key,
			Size:         obj.Size,
			ContentType:  ct,
			LastModified: obj.LastModified,
		})
	}

	span.SetAttributes(attribute.Int("minio.objects", len(out)), attribute.Int("minio.skipped", skipped))
	m.log.Debug().Str("prefix", prefix).Int("count", len(out)).Int("skipped", skipped).Msg("列出简历对象")
	return out, nil
}

// OpenResume 打开一个简历对象，调用方负责关闭
func (m *MinIO) OpenResume(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("读取 %s/%s 失败: %w", m.bucket, key, err)
	}
	return obj, nil
}

// PutResume 把一份简历放进桶里，命令行导入本地文件时使用
func (m *MinIO) PutResume(ctx context.Context, key string, r io.Reader, size int64) error {
	ctx, span := minioTracer.Start(ctx, "MinIO.PutResume", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	_, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{ContentType: ContentTypeOf(key)})
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStore)
		return fmt.Errorf("上传 %s/%s 失败: %w", m.bucket, key, err)
	}
	return nil
}
