package bus

import (
	"context"
	"time"
)

// Config holds the bus connection settings.
type Config struct {
	Brokers        []string
	GroupID        string
	SessionTimeout time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Brokers:        []string{"localhost:9092"},
		GroupID:        "marketdepth",
		SessionTimeout: 10 * time.Second,
		MaxRetries:     3,
		RetryBackoff:   100 * time.Millisecond,
	}
}

// Message is a consumed bus record, grounded on the reference
// KafkaConsumer's Message type.
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       string
	Value     []byte
	Time      time.Time
}

// OutboundMessage is a fully-addressed message to publish, the
// Producer-facing counterpart of router.RoutedMessage, decoupling
// internal/bus from internal/router.
type OutboundMessage struct {
	Topic     string
	Key       string
	Partition int
	Value     []byte
}

// Consumer polls the ingress topic. Poll returns (nil, nil) on a
// benign timeout or partition-EOF: "no message, continue", not an
// error.
type Consumer interface {
	Poll(ctx context.Context, timeout time.Duration) (*Message, error)
	Close() error
}

// Producer publishes outbound messages and supports a bounded flush.
type Producer interface {
	Publish(ctx context.Context, msg OutboundMessage) error
	Flush(ctx context.Context) error
	Close() error
}
