package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/shady-map-service/internal/config"
	"github.com/couchcryptid/shady-map-service/internal/domain"
)

// messageWriter is the subset of *kafkago.Writer used here.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer mirrors user submissions to a Kafka topic.
// It implements submission.Sink.
type Writer struct {
	writer messageWriter
	topic  string
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured submission topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaSubmissionTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, topic: cfg.KafkaSubmissionTopic, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string {
	return "kafka"
}

// Send publishes one submission keyed by session so a session's
// interactions land on one partition in order.
func (w *Writer) Send(ctx context.Context, sub domain.Submission) error {
	msg, err := serializeToMessage(sub)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write to %s: %w", w.topic, err)
	}
	w.logger.Debug("submission mirrored", "topic", w.topic, "kind", sub.Kind, "session", sub.SessionID)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Submission into a Kafka message.
func serializeToMessage(sub domain.Submission) (kafkago.Message, error) {
	data, err := json.Marshal(sub)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize submission: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(sub.SessionID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "kind", Value: []byte(sub.Kind)},
			{Key: "submitted_at", Value: []byte(sub.SubmittedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
