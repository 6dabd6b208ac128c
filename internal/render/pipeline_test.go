package render

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windvane/metplot/internal/observability"
)

// --- mocks ---

type mockExtractor struct {
	batches [][]RawJob
	index   atomic.Int64
	err     error
}

func (m *mockExtractor) ExtractBatch(ctx context.Context, _ int) ([]RawJob, error) {
	if m.err != nil {
		return nil, m.err
	}
	i := int(m.index.Add(1) - 1)
	if i >= len(m.batches) {
		// block until context cancelled to simulate waiting for messages
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.batches[i], nil
}

type mockRenderer struct {
	failKeys map[string]error
}

func (m *mockRenderer) Render(_ context.Context, raw RawJob) (Artifact, error) {
	if err, ok := m.failKeys[string(raw.Key)]; ok {
		return Artifact{}, err
	}
	return Artifact{RequestID: string(raw.Key), Chart: ChartPlumes, Path: string(raw.Key) + ".png"}, nil
}

type mockSink struct {
	published []Artifact
	err       error
}

func (m *mockSink) PublishBatch(_ context.Context, artifacts []Artifact) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, artifacts...)
	return nil
}

func job(key string) RawJob {
	return RawJob{Key: []byte(key), Value: []byte(`{"chart":"plumes"}`)}
}

func runPipeline(t *testing.T, p *Pipeline, timeout time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	require.NoError(t, p.Run(ctx))
}

func TestPipelinePublishesRenderedBatch(t *testing.T) {
	extractor := &mockExtractor{batches: [][]RawJob{{job("a"), job("b")}}}
	sink := &mockSink{}
	p := New(extractor, &mockRenderer{}, sink, slog.Default(), observability.NewMetricsForTesting(), 10)

	runPipeline(t, p, 200*time.Millisecond)

	want := []Artifact{
		{RequestID: "a", Chart: ChartPlumes, Path: "a.png"},
		{RequestID: "b", Chart: ChartPlumes, Path: "b.png"},
	}
	if diff := cmp.Diff(want, sink.published); diff != "" {
		t.Errorf("published artifacts mismatch (-want +got):\n%s", diff)
	}
}

func TestPipelineSkipsFailedRenders(t *testing.T) {
	extractor := &mockExtractor{batches: [][]RawJob{{job("good"), job("bad")}}}
	renderer := &mockRenderer{failKeys: map[string]error{"bad": errors.New("malformed grid")}}
	sink := &mockSink{}

	var committed []string
	batch := extractor.batches[0]
	for i := range batch {
		key := string(batch[i].Key)
		batch[i].Commit = func(context.Context) error {
			committed = append(committed, key)
			return nil
		}
	}

	p := New(extractor, renderer, sink, slog.Default(), observability.NewMetricsForTesting(), 10)
	runPipeline(t, p, 200*time.Millisecond)

	require.Len(t, sink.published, 1)
	assert.Equal(t, "good", sink.published[0].RequestID)
	// Failed jobs commit too, so a poison message cannot wedge the partition.
	assert.ElementsMatch(t, []string{"good", "bad"}, committed)
}

func TestPipelineReadiness(t *testing.T) {
	extractor := &mockExtractor{batches: [][]RawJob{{job("a")}}}
	p := New(extractor, &mockRenderer{}, &mockSink{}, slog.Default(), observability.NewMetricsForTesting(), 10)

	require.Error(t, p.CheckReadiness(context.Background()))

	runPipeline(t, p, 200*time.Millisecond)

	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func TestPipelineNotReadyWhenAllRendersFail(t *testing.T) {
	extractor := &mockExtractor{batches: [][]RawJob{{job("bad")}}}
	renderer := &mockRenderer{failKeys: map[string]error{"bad": errors.New("nope")}}
	p := New(extractor, renderer, &mockSink{}, slog.Default(), observability.NewMetricsForTesting(), 10)

	runPipeline(t, p, 200*time.Millisecond)

	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipelineStopsOnContextDuringExtractError(t *testing.T) {
	extractor := &mockExtractor{err: errors.New("broker unavailable")}
	p := New(extractor, &mockRenderer{}, &mockSink{}, slog.Default(), observability.NewMetricsForTesting(), 10)

	start := time.Now()
	runPipeline(t, p, 300*time.Millisecond)
	// Backoff should keep the loop from spinning but still honor cancellation.
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestNextBackoffDoublesAndCaps(t *testing.T) {
	assert.Equal(t, 400*time.Millisecond, nextBackoff(200*time.Millisecond, 5*time.Second))
	assert.Equal(t, 5*time.Second, nextBackoff(4*time.Second, 5*time.Second))
	assert.Equal(t, 5*time.Second, nextBackoff(5*time.Second, 5*time.Second))
}
