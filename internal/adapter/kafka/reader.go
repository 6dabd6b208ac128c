package kafka

import (
	"context"
	"errors"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/windvane/metplot/internal/config"
	"github.com/windvane/metplot/internal/render"
)

// Reader consumes chart requests from the request topic as part of a
// consumer group. It implements render.BatchExtractor.
type Reader struct {
	reader        *kafkago.Reader
	flushInterval time.Duration
	logger        *slog.Logger
}

// NewReader creates a consumer-group reader for the configured request topic.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    cfg.KafkaRequestTopic,
		GroupID:  cfg.KafkaGroupID,
		MinBytes: 1,
		MaxBytes: 10 << 20, // grids are large
	})
	return &Reader{
		reader:        r,
		flushInterval: cfg.BatchFlushInterval,
		logger:        logger,
	}
}

// ExtractBatch fetches up to batchSize messages. The first fetch blocks
// until a message arrives or the context is cancelled; the rest are
// collected within the flush interval so a quiet topic still yields
// partial batches promptly.
func (r *Reader) ExtractBatch(ctx context.Context, batchSize int) ([]render.RawJob, error) {
	first, err := r.reader.FetchMessage(ctx)
	if err != nil {
		return nil, err
	}

	jobs := make([]render.RawJob, 0, batchSize)
	jobs = append(jobs, r.mapMessageToJob(first))

	for len(jobs) < batchSize {
		fetchCtx, cancel := context.WithTimeout(ctx, r.flushInterval)
		msg, err := r.reader.FetchMessage(fetchCtx)
		cancel()
		if err != nil {
			if !errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				r.logger.Warn("fetch message failed mid-batch", "error", err)
			}
			break
		}
		jobs = append(jobs, r.mapMessageToJob(msg))
	}

	return jobs, nil
}

func (r *Reader) Close() error {
	return r.reader.Close()
}

// mapMessageToJob converts a Kafka message into a raw job, wiring the
// commit callback to the consumer-group offset commit.
func (r *Reader) mapMessageToJob(msg kafkago.Message) render.RawJob {
	return render.RawJob{
		Key:       msg.Key,
		Value:     msg.Value,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
		Commit: func(ctx context.Context) error {
			return r.reader.CommitMessages(ctx, msg)
		},
	}
}
