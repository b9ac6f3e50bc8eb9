package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/rotv/coordinate-validator/internal/config"
	"github.com/rotv/coordinate-validator/internal/domain"
)

// Writer publishes validation results to a Kafka topic.
// It implements pipeline.ResultLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured results topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaResultsTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Load publishes every result of the batch in a single WriteMessages call,
// keyed by destination name so reruns land on the same partition.
func (w *Writer) Load(ctx context.Context, batch domain.ResultBatch) error {
	if len(batch.Results) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(batch.Results))
	for i := range batch.Results {
		msg, err := serializeToMessage(batch, batch.Results[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish results: %w", err)
	}
	w.logger.Info("results published", "topic", w.writer.Topic, "count", len(msgs), "run_id", batch.RunID)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a ValidationResult into a Kafka message.
func serializeToMessage(batch domain.ResultBatch, result domain.ValidationResult) (kafkago.Message, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize result %q: %w", result.Destination.Name, err)
	}
	return kafkago.Message{
		Key:   []byte(result.Destination.Name),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "status", Value: []byte(result.Status)},
			{Key: "run_id", Value: []byte(batch.RunID)},
			{Key: "generated_at", Value: []byte(batch.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
