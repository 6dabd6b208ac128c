package render

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/windvane/metplot/internal/observability"
)

// BatchExtractor reads up to batchSize raw jobs from the request topic.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]RawJob, error)
}

// JobRenderer produces an artifact from a raw job.
type JobRenderer interface {
	Render(ctx context.Context, raw RawJob) (Artifact, error)
}

// BatchSink publishes completed artifacts.
type BatchSink interface {
	PublishBatch(ctx context.Context, artifacts []Artifact) error
}

// Pipeline orchestrates the extract-render-publish loop.
type Pipeline struct {
	extractor BatchExtractor
	renderer  JobRenderer
	sink      BatchSink
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
	batchSize int
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, r JobRenderer, s BatchSink, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor: e,
		renderer:  r,
		sink:      s,
		logger:    logger,
		metrics:   metrics,
		batchSize: batchSize,
	}
}

// CheckReadiness returns nil once the pipeline has rendered at least one
// chart, or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not rendered any charts yet")
	}
	return nil
}

// Run executes the batch render loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	// Keeps retry storms short while avoiding tight loops during Kafka outages.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !p.processBatch(ctx, &backoff, maxBackoff) {
			return nil
		}
	}
}

// processBatch runs one extract-render-publish cycle. Returns false if the
// pipeline should stop.
func (p *Pipeline) processBatch(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	start := time.Now()

	rawBatch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	if len(rawBatch) == 0 {
		return ctx.Err() == nil
	}

	p.metrics.RequestsConsumed.Add(float64(len(rawBatch)))
	p.metrics.BatchSize.Observe(float64(len(rawBatch)))
	*backoff = 200 * time.Millisecond

	published, ok := p.renderAndPublish(ctx, rawBatch, backoff, maxBackoff)
	if !ok {
		return false
	}

	if published > 0 {
		p.metrics.BatchRenderDuration.Observe(time.Since(start).Seconds())
		p.ready.Store(true)
	}
	return true
}

// renderAndPublish renders each job in the batch, publishes the successes,
// and commits offsets. A job that fails to render is skipped and committed
// so a malformed request cannot wedge the partition. Returns the number of
// published artifacts and false if the pipeline should stop.
func (p *Pipeline) renderAndPublish(ctx context.Context, rawBatch []RawJob, backoff *time.Duration, maxBackoff time.Duration) (int, bool) {
	artifacts := make([]Artifact, 0, len(rawBatch))
	successfulRaws := make([]RawJob, 0, len(rawBatch))

	for _, raw := range rawBatch {
		art, err := p.renderer.Render(ctx, raw)
		if err != nil {
			if ctx.Err() != nil {
				return 0, false
			}
			p.logger.Warn("render failed, skipping request",
				"error", err,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.RenderErrors.Inc()
			p.commitOffset(ctx, raw)
			continue
		}
		artifacts = append(artifacts, art)
		successfulRaws = append(successfulRaws, raw)
	}

	if len(artifacts) == 0 {
		return 0, true
	}

	if err := p.sink.PublishBatch(ctx, artifacts); err != nil {
		p.logger.Error("publish batch failed", "error", err, "batch_size", len(artifacts))
		return 0, p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	p.metrics.ArtifactsProduced.Add(float64(len(artifacts)))

	for _, raw := range successfulRaws {
		p.commitOffset(ctx, raw)
	}

	return len(artifacts), true
}

// backoffOrStop checks for context cancellation, sleeps with the current
// backoff, and advances the backoff. Returns false if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

// commitOffset commits the job offset if a commit function is available.
func (p *Pipeline) commitOffset(ctx context.Context, raw RawJob) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
