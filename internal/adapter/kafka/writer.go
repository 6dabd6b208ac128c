package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/windvane/metplot/internal/config"
	"github.com/windvane/metplot/internal/render"
)

// Writer publishes artifact records to the artifact topic.
// It implements render.BatchSink.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured artifact topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaArtifactTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishBatch serializes and publishes multiple artifacts to the
// artifact topic in a single WriteMessages call.
func (w *Writer) PublishBatch(ctx context.Context, artifacts []render.Artifact) error {
	if len(artifacts) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(artifacts))
	for i := range artifacts {
		msg, err := serializeToMessage(artifacts[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an artifact into a Kafka message keyed by
// request ID, so re-renders of the same request compact together.
func serializeToMessage(art render.Artifact) (kafkago.Message, error) {
	data, err := json.Marshal(art)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize artifact: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(art.RequestID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "chart", Value: []byte(art.Chart)},
			{Key: "rendered_at", Value: []byte(art.RenderedAt.Format(time.RFC3339))},
		},
	}, nil
}
