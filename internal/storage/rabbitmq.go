package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/common/json"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"hrms-admin-go/internal/config"
	"hrms-admin-go/internal/logger"
	"hrms-admin-go/internal/tracing"
)

var mqTracer = otel.Tracer("hrms-admin-go/storage/rabbitmq")

// Publisher 事件发布接口
type Publisher interface {
	PublishJSON(ctx context.Context, exchange, routingKey string, data any) error
}

var _ Publisher = (*RabbitMQ)(nil)

// RabbitMQ 筛选事件发布者。只发布不消费。
type RabbitMQ struct {
	conn      *amqp.Connection
	ch        *amqp.Channel
	mu        sync.Mutex // amqp.Channel 不是并发安全的
	exchanges map[string]bool
	log       zerolog.Logger
}

// NewRabbitMQ 连接RabbitMQ并打开发布通道
func NewRabbitMQ(cfg *config.RabbitMQConfig) (*RabbitMQ, error) {
	if cfg == nil {
		return nil, fmt.Errorf("RabbitMQ配置不能为空")
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("RabbitMQ URL配置不能为空")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("无法连接到RabbitMQ服务器: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("无法创建RabbitMQ通道: %w", err)
	}
	if err := ch.Confirm(false); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("开启发布确认失败: %w", err)
	}

	mq := &RabbitMQ{
		conn:      conn,
		ch:        ch,
		exchanges: map[string]bool{},
		log:       logger.Named("rabbitmq"),
	}
	if cfg.ScreeningExchange != "" {
		if err := mq.EnsureExchange(cfg.ScreeningExchange, amqp.ExchangeTopic); err != nil {
			_ = mq.Close()
			return nil, err
		}
	}
	return mq, nil
}

// Close 关闭通道和连接
func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ch != nil {
		_ = r.ch.Close()
	}
	return r.conn.Close()
}

// EnsureExchange 声明持久化的交换机，已声明过的跳过
func (r *RabbitMQ) EnsureExchange(name, kind string) error {
	if name == "" {
		return fmt.Errorf("exchange名称不能为空")
	}
	if name == "amq.default" || name == "default" {
		return fmt.Errorf("不能声明默认交换机 '%s'", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.exchanges[name] {
		return nil
	}
	if err := r.ch.ExchangeDeclare(name, kind, true, false, false, false, nil); err != nil {
		return fmt.Errorf("声明exchange %s 失败: %w", name, err)
	}
	r.exchanges[name] = true
	r.log.Debug().Str("exchange", name).Str("type", kind).Msg("已确保exchange存在")
	return nil
}

// PublishJSON 以持久化消息发布JSON，并等待broker确认
func (r *RabbitMQ) PublishJSON(ctx context.Context, exchange, routingKey string, data any) error {
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("JSON序列化失败: %w", err)
	}

	messageID := uuid.NewString()
	ctx, span := mqTracer.Start(ctx, "RabbitMQ.Publish "+routingKey, trace.WithSpanKind(trace.SpanKindProducer))
	defer span.End()
	span.SetAttributes(
		attribute.String("messaging.system", "rabbitmq"),
		attribute.String("messaging.destination", exchange),
		attribute.String("messaging.rabbitmq.routing_key", routingKey),
		attribute.String("messaging.message_id", messageID),
	)

	headers := amqp.Table{}
	otel.GetTextMapPropagator().Inject(ctx, tableCarrier(headers))

	r.mu.Lock()
	confirm, err := r.ch.PublishWithDeferredConfirmWithContext(ctx, exchange, routingKey, false, false, amqp.Publishing{
		Headers:      headers,
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    messageID,
		Timestamp:    time.Now(),
		Body:         body,
	})
	r.mu.Unlock()
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRabbitMQ)
		return fmt.Errorf("发布消息到 %s/%s 失败: %w", exchange, routingKey, err)
	}

	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		tracing.RecordPublishFailure(span, err)
		return fmt.Errorf("等待消息 %s 确认失败: %w", messageID, err)
	}
	if !acked {
		tracing.RecordPublishFailure(span, nil)
		return fmt.Errorf("消息 %s 未被broker确认", messageID)
	}
	return nil
}

// tableCarrier 让 otel 传播器读写 amqp 消息头
type tableCarrier amqp.Table

func (c tableCarrier) Get(key string) string {
	if v, ok := c[key].(string); ok {
		return v
	}
	return ""
}

func (c tableCarrier) Set(key, value string) { c[key] = value }

func (c tableCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}
