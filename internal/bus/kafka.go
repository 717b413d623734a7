package bus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	kafka "github.com/segmentio/kafka-go"

	"github.com/rickgao/marketdepth/internal/router"
)

// KafkaConsumer polls a single input topic, grounded on
// pkg/mq/kafka.go's KafkaConsumer.
type KafkaConsumer struct {
	reader *kafka.Reader
	logger *slog.Logger
}

// NewKafkaConsumer subscribes to topic under cfg.GroupID.
func NewKafkaConsumer(cfg Config, topic string, logger *slog.Logger) *KafkaConsumer {
	if logger == nil {
		logger = slog.Default()
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          topic,
		GroupID:        cfg.GroupID,
		SessionTimeout: cfg.SessionTimeout,
		CommitInterval: time.Second,
		StartOffset:    kafka.LastOffset,
		MaxBytes:       10e6,
	})
	logger.Info("kafka consumer created", "brokers", cfg.Brokers, "topic", topic, "group_id", cfg.GroupID)
	return &KafkaConsumer{reader: reader, logger: logger}
}

// Poll implements Consumer. A deadline exceeded or io.EOF is reported
// as (nil, nil), the benign "no message available" case.
func (c *KafkaConsumer) Poll(ctx context.Context, timeout time.Duration) (*Message, error) {
	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	msg, err := c.reader.ReadMessage(pollCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("bus: poll: %w", err)
	}

	return &Message{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Key:       string(msg.Key),
		Value:     msg.Value,
		Time:      msg.Time,
	}, nil
}

// Close implements Consumer.
func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}

// KafkaProducer publishes messages at an explicit, router-computed
// partition, grounded on pkg/mq/kafka.go's KafkaProducer.
//
// kafka-go only honours Message.Partition when the Writer's Balancer
// is nil; this producer leaves Balancer unset for that reason. When a
// RoutedMessage carries router.UnspecifiedPartition (partitioning
// disabled), the message is sent to partition 0, a deliberate
// simplification; deployments that need bus-assigned partitioning
// should configure a Balancer and leave UseSymbolPartitioning off only
// when that's acceptable.
type KafkaProducer struct {
	writer *kafka.Writer
	cfg    Config
	logger *slog.Logger
}

// NewKafkaProducer constructs a producer shared across all output topics.
func NewKafkaProducer(cfg Config, logger *slog.Logger) *KafkaProducer {
	if logger == nil {
		logger = slog.Default()
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		AllowAutoTopicCreation: true,
		Compression:            kafka.Gzip,
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            cfg.MaxRetries,
		WriteBackoffMin:        cfg.RetryBackoff,
		WriteBackoffMax:        cfg.RetryBackoff * 10,
	}
	logger.Info("kafka producer created", "brokers", cfg.Brokers)
	return &KafkaProducer{writer: writer, cfg: cfg, logger: logger}
}

// Publish implements Producer.
func (p *KafkaProducer) Publish(ctx context.Context, msg OutboundMessage) error {
	partition := msg.Partition
	if partition == router.UnspecifiedPartition {
		partition = 0
	}

	err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic:     msg.Topic,
		Key:       []byte(msg.Key),
		Value:     msg.Value,
		Partition: partition,
	})
	if err != nil {
		p.logger.Error("kafka publish failed", "topic", msg.Topic, "key", msg.Key, "error", err)
		return fmt.Errorf("bus: publish: %w", err)
	}
	return nil
}

// Flush requests the underlying writer push any buffered messages,
// bounded by ctx.
func (p *KafkaProducer) Flush(ctx context.Context) error {
	// kafka-go's Writer has no explicit flush call; WriteMessages is
	// synchronous per call, so there is nothing buffered to force out.
	// The bounded wait is still honoured via ctx on the caller's side.
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// Close implements Producer.
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
