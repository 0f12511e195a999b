// Package screening 批量筛选简历：逐个上传到后端，上传成功后再请求分析，
// 结果可以落库并通过消息队列通知下游。
package screening

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cloudwego/hertz/pkg/common/json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"gorm.io/datatypes"

	"hrms-admin-go/internal/logger"
	"hrms-admin-go/internal/storage"
	"hrms-admin-go/internal/storage/models"
	"hrms-admin-go/internal/tracing"
	"hrms-admin-go/internal/types"
)

var tracer = otel.Tracer("hrms-admin-go/screening")

// Uploader 上传简历，*hrms.ResumeAPI 实现了它
type Uploader interface {
	Upload(ctx context.Context, up types.ResumeUpload) (*types.UploadedFile, error)
}

// Analyzer 分析已上传的简历，*hrms.ResumeAPI 实现了它
type Analyzer interface {
	Analyze(ctx context.Context, req types.AnalyzeRequest) (*types.AnalysisResult, error)
}

// Recorder 保存筛选记录，*storage.MySQL 实现了它
type Recorder interface {
	SaveScreening(ctx context.Context, rec *models.ScreeningRecord) error
}

// Components 流水线依赖的组件。Recorder 与 Publisher 可以为空。
type Components struct {
	Source    Source
	Uploader  Uploader
	Analyzer  Analyzer
	Recorder  Recorder
	Publisher storage.Publisher
}

// Settings 流水线配置
type Settings struct {
	Workers        int    // 同时处理的文件数，<=0 时为 4
	JobDescription string // 随分析请求一起提交的岗位描述
	Position       string // 上传时附带的应聘岗位
	Exchange       string // 筛选完成事件的exchange
	RoutingKey     string // 默认 resume.screened

	// AnalyzePerMinute 每分钟最多提交的分析请求数，<=0 不限制。
	// 分析在后端调用大模型，批量筛选时需要控制速率。
	AnalyzePerMinute int
}

// Option 流水线选项
type Option func(*Pipeline)

// WithRecorder 保存每个文件的筛选记录
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) { p.comp.Recorder = r }
}

// WithPublisher 每个文件处理完后发布事件
func WithPublisher(pub storage.Publisher, exchange, routingKey string) Option {
	return func(p *Pipeline) {
		p.comp.Publisher = pub
		p.settings.Exchange = exchange
		if routingKey != "" {
			p.settings.RoutingKey = routingKey
		}
	}
}

// WithNow 替换时钟，测试用
func WithNow(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// DefaultRoutingKey 筛选完成事件的路由键
const DefaultRoutingKey = "resume.screened"

// Pipeline 批量筛选流水线
type Pipeline struct {
	comp     Components
	settings Settings
	limiter  *rate.Limiter // 为 nil 时不限速
	now      func() time.Time
	log      zerolog.Logger
}

// New 创建流水线
func New(comp Components, settings Settings, opts ...Option) (*Pipeline, error) {
	if comp.Source == nil || comp.Uploader == nil || comp.Analyzer == nil {
		return nil, fmt.Errorf("筛选流水线需要来源、上传与分析组件")
	}
	if settings.Workers <= 0 {
		settings.Workers = 4
	}
	if settings.RoutingKey == "" {
		settings.RoutingKey = DefaultRoutingKey
	}
	p := &Pipeline{
		comp:     comp,
		settings: settings,
		now:      time.Now,
		log:      logger.Named("screening"),
	}
	if settings.AnalyzePerMinute > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(float64(settings.AnalyzePerMinute)/60), 1)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Outcome 单个文件的处理结果
type Outcome struct {
	Key         string                `json:"key"`
	FileName    string                `json:"file_name"`
	FileID      string                `json:"file_id,omitempty"`
	Result      *types.AnalysisResult `json:"result,omitempty"`
	FailedStage Stage                 `json:"failed_stage,omitempty"`
	Error       string                `json:"error,omitempty"`
	Warnings    []string              `json:"warnings,omitempty"` // 落库/发布失败不影响结果
	Duration    time.Duration         `json:"duration"`

	Err error `json:"-"`
}

// Failed 是否在某个阶段失败
func (o Outcome) Failed() bool { return o.Err != nil }

// Report 一个批次的结果，Outcomes 与来源列出的顺序一致
type Report struct {
	BatchID   string    `json:"batch_id"`
	Total     int       `json:"total"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Outcomes  []Outcome `json:"outcomes"`
}

// ScreenedEvent 发布到消息队列的事件
type ScreenedEvent struct {
	BatchID       string    `json:"batch_id"`
	ObjectKey     string    `json:"object_key"`
	FileName      string    `json:"file_name"`
	FileID        string    `json:"file_id,omitempty"`
	Status        string    `json:"status"`
	FailedStage   string    `json:"failed_stage,omitempty"`
	Error         string    `json:"error,omitempty"`
	CandidateName string    `json:"candidate_name,omitempty"`
	Score         *float64  `json:"score,omitempty"`
	ScreenedAt    time.Time `json:"screened_at"`
}

// Run 处理来源中的全部简历。只有列出来源失败时返回错误，单个文件的失败记录在 Outcome 里。
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	batchID := uuid.NewString()
	ctx, span := tracer.Start(ctx, "Screening.Run")
	defer span.End()
	span.SetAttributes(attribute.String("screening.batch_id", batchID))

	items, err := p.comp.Source.List(ctx)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStore)
		return nil, fmt.Errorf("列出简历失败: %w", err)
	}

	log := p.log.With().Str("batch_id", batchID).Logger()
	log.Info().Int("files", len(items)).Int("workers", p.settings.Workers).Msg("开始批量筛选")

	report := &Report{BatchID: batchID, Total: len(items), Outcomes: make([]Outcome, len(items))}
	var failed atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(p.settings.Workers)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			out := p.process(ctx, batchID, item)
			if out.Failed() {
				failed.Add(1)
			}
			report.Outcomes[i] = out
			return nil
		})
	}
	_ = g.Wait()

	report.Failed = int(failed.Load())
	report.Succeeded = report.Total - report.Failed
	span.SetAttributes(
		attribute.Int("screening.total", report.Total),
		attribute.Int("screening.failed", report.Failed),
	)
	log.Info().Int("succeeded", report.Succeeded).Int("failed", report.Failed).Msg("批量筛选完成")
	return report, nil
}

// process 处理单个文件：打开 -> 上传 -> 分析。上传失败时不会请求分析。
func (p *Pipeline) process(ctx context.Context, batchID string, item Item) Outcome {
	start := p.now()
	ctx, span := tracer.Start(ctx, "Screening.File", trace.WithAttributes(
		attribute.String("screening.key", tracing.TruncateString(item.Key, tracing.DefaultMaxLength)),
	))
	defer span.End()

	out := Outcome{Key: item.Key, FileName: item.Name}
	if out.FileName == "" {
		out.FileName = item.Key
	}

	fail := func(stage Stage, cause error) Outcome {
		serr := newStageError(batchID, item.Key, stage, cause)
		out.FailedStage = stage
		out.Err = serr
		out.Error = serr.Error()
		tracing.RecordError(span, serr, tracing.ErrorTypeExternal)
		p.log.Warn().Err(cause).Str("batch_id", batchID).Str("key", item.Key).Str("stage", string(stage)).Msg("简历筛选失败")
		return out
	}

	result, failure := p.uploadAndAnalyze(ctx, item, &out)
	if failure != nil {
		out = fail(failure.stage, failure.cause)
	} else {
		out.Result = result
	}
	out.Duration = p.now().Sub(start)

	p.record(ctx, batchID, &out)
	p.publish(ctx, batchID, &out)
	return out
}

type stageFailure struct {
	stage Stage
	cause error
}

func (p *Pipeline) uploadAndAnalyze(ctx context.Context, item Item, out *Outcome) (*types.AnalysisResult, *stageFailure) {
	if err := ctx.Err(); err != nil {
		return nil, &stageFailure{StageOpen, err}
	}
	rc, err := p.comp.Source.Open(ctx, item.Key)
	if err != nil {
		return nil, &stageFailure{StageOpen, err}
	}
	defer rc.Close()

	uploaded, err := p.comp.Uploader.Upload(ctx, types.ResumeUpload{
		FileName: out.FileName,
		Reader:   rc,
		Position: p.settings.Position,
	})
	if err != nil {
		return nil, &stageFailure{StageUpload, err}
	}
	if uploaded == nil || uploaded.FileID == "" {
		return nil, &stageFailure{StageUpload, fmt.Errorf("上传响应缺少 file_id")}
	}
	out.FileID = uploaded.FileID

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, &stageFailure{StageAnalyze, err}
		}
	}
	result, err := p.comp.Analyzer.Analyze(ctx, types.AnalyzeRequest{
		FileID:         uploaded.FileID,
		JobDescription: p.settings.JobDescription,
	})
	if err != nil {
		return nil, &stageFailure{StageAnalyze, err}
	}
	return result, nil
}

func (p *Pipeline) record(ctx context.Context, batchID string, out *Outcome) {
	if p.comp.Recorder == nil {
		return
	}
	rec := &models.ScreeningRecord{
		BatchID:        batchID,
		ObjectKey:      out.Key,
		FileName:       out.FileName,
		FileID:         out.FileID,
		Status:         models.ScreeningStatusSuccess,
		FailedStage:    string(out.FailedStage),
		ErrorMessage:   out.Error,
		JobDescription: p.settings.JobDescription,
		DurationMS:     out.Duration.Milliseconds(),
	}
	if out.Failed() {
		rec.Status = models.ScreeningStatusFailed
	}
	if out.Result != nil {
		rec.CandidateName = out.Result.Name
		rec.Score = out.Result.Score
		if raw, err := json.Marshal(out.Result); err == nil {
			rec.ResultJSON = datatypes.JSON(raw)
		}
	}
	if err := p.comp.Recorder.SaveScreening(ctx, rec); err != nil {
		p.log.Warn().Err(err).Str("key", out.Key).Msg("保存筛选记录失败")
		out.Warnings = append(out.Warnings, err.Error())
	}
}

func (p *Pipeline) publish(ctx context.Context, batchID string, out *Outcome) {
	if p.comp.Publisher == nil {
		return
	}
	evt := ScreenedEvent{
		BatchID:     batchID,
		ObjectKey:   out.Key,
		FileName:    out.FileName,
		FileID:      out.FileID,
		Status:      models.ScreeningStatusSuccess,
		FailedStage: string(out.FailedStage),
		Error:       out.Error,
		ScreenedAt:  p.now(),
	}
	if out.Failed() {
		evt.Status = models.ScreeningStatusFailed
	}
	if out.Result != nil {
		evt.CandidateName = out.Result.Name
		evt.Score = out.Result.Score
	}
	if err := p.comp.Publisher.PublishJSON(ctx, p.settings.Exchange, p.settings.RoutingKey, evt); err != nil {
		p.log.Warn().Err(err).Str("key", out.Key).Msg("发布筛选事件失败")
		out.Warnings = append(out.Warnings, err.Error())
	}
}
