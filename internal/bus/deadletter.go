package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// DeadLetter forwards a message the Pipeline failed to process to a
// configured dead-letter topic, grounded on pkg/mq/kafka.go's
// DeadLetterQueue. The core processing loop has no dead-letter queue
// of its own; this is an optional, externally-wired helper.
type DeadLetter struct {
	producer Producer
	topic    string
}

// NewDeadLetter binds a DeadLetter to producer and topic.
func NewDeadLetter(producer Producer, topic string) *DeadLetter {
	return &DeadLetter{producer: producer, topic: topic}
}

type deadLetterRecord struct {
	OriginalTopic    string    `json:"original_topic"`
	OriginalKey      string    `json:"original_key"`
	OriginalOffset   int64     `json:"original_offset"`
	OriginalTime     time.Time `json:"original_time"`
	FailureReason    string    `json:"failure_reason"`
	FailureError     string    `json:"failure_error"`
	FailureTimestamp time.Time `json:"failure_timestamp"`
}

// Send publishes original to the dead-letter topic, annotated with why
// it failed.
func (d *DeadLetter) Send(ctx context.Context, original *Message, reason string, cause error) error {
	causeText := ""
	if cause != nil {
		causeText = cause.Error()
	}
	record := deadLetterRecord{
		OriginalTopic:    original.Topic,
		OriginalKey:      original.Key,
		OriginalOffset:   original.Offset,
		OriginalTime:     original.Time,
		FailureReason:    reason,
		FailureError:     causeText,
		FailureTimestamp: time.Now(),
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("bus: marshal dead-letter record: %w", err)
	}

	return d.producer.Publish(ctx, OutboundMessage{
		Topic: d.topic,
		Key:   original.Key,
		Value: payload,
	})
}
