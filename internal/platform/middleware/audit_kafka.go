package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of *kafka.Writer the recorder uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaAuditRecorder publishes audit entries as JSON to a Kafka topic, keyed
// by user id so one user's trail stays ordered within a partition.
type KafkaAuditRecorder struct {
	writer  messageWriter
	timeout time.Duration
}

// NewKafkaAuditRecorder creates a recorder writing to topic on brokers.
// Writes are asynchronous; delivery failures are reported through errLog.
func NewKafkaAuditRecorder(brokers []string, topic string, errLog func(error)) *KafkaAuditRecorder {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
		Async:        true,
		Completion: func(_ []kafka.Message, err error) {
			if err != nil && errLog != nil {
				errLog(fmt.Errorf("deliver audit messages: %w", err))
			}
		},
	}
	return &KafkaAuditRecorder{writer: w, timeout: 2 * time.Second}
}

func (r *KafkaAuditRecorder) RecordAccess(ctx context.Context, entry AuditEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}
	key := entry.UserID
	if key == "" {
		key = "anonymous"
	}

	// The request context ends with the response; the write must not.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	err = r.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Time:  entry.Timestamp,
		Headers: []kafka.Header{
			{Key: "resource", Value: []byte(entry.Resource)},
			{Key: "action", Value: []byte(entry.Action)},
		},
	})
	if err != nil {
		return fmt.Errorf("publish audit entry: %w", err)
	}
	return nil
}

// Close flushes pending messages and closes the writer.
func (r *KafkaAuditRecorder) Close() error {
	return r.writer.Close()
}
