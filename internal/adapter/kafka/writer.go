package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/nowcast-alerts/internal/config"
	"github.com/couchcryptid/nowcast-alerts/internal/domain"
)

// Writer publishes region states to a Kafka topic, one message per region.
// It implements pipeline.Sink.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "kafka" }

// Publish writes every region state of snap in a single WriteMessages call.
// Messages are keyed by region so a compacted topic keeps the latest state.
func (w *Writer) Publish(ctx context.Context, snap *domain.Snapshot) error {
	if snap == nil || len(snap.States) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(snap.States))
	for i := range snap.States {
		msg, err := serializeToMessage(snap, snap.States[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write region states: %w", err)
	}
	w.logger.Debug("published region states", "topic", w.writer.Topic, "count", len(msgs), "cycle_id", snap.CycleID)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals one region state into a Kafka message.
func serializeToMessage(snap *domain.Snapshot, state domain.RegionState) (kafkago.Message, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize region state: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(state.Region),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "state", Value: []byte(state.State)},
			{Key: "cycle_id", Value: []byte(snap.CycleID)},
			{Key: "updated_at", Value: []byte(snap.UpdatedAt.Format(time.RFC3339))},
		},
	}, nil
}
