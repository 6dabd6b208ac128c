//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	kafkaadapter "github.com/windvane/metplot/internal/adapter/kafka"
	"github.com/windvane/metplot/internal/config"
	"github.com/windvane/metplot/internal/observability"
	"github.com/windvane/metplot/internal/render"
	"github.com/windvane/metplot/internal/synth"
)

const (
	testRequestTopic  = "test-chart-requests"
	testArtifactTopic = "test-chart-artifacts"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node Kafka container and returns its broker address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("metplot-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func testConfig(t *testing.T, broker, suffix string) *config.Config {
	t.Helper()
	return &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaRequestTopic:  testRequestTopic,
		KafkaArtifactTopic: testArtifactTopic,
		KafkaGroupID:       fmt.Sprintf("test-%s-%d", suffix, time.Now().UnixNano()),
		BatchFlushInterval: 5 * time.Second,
	}
}

func newTestRenderer(t *testing.T) *render.Renderer {
	t.Helper()
	r, err := render.NewRenderer(t.TempDir(), "png", 10,
		clockwork.NewRealClock(), discardLogger(), observability.NewMetricsForTesting())
	require.NoError(t, err)
	return r
}

func demoRequest(t *testing.T, id string) []byte {
	t.Helper()
	t2m, mslp := synth.Fields(24, 20)
	body, err := json.Marshal(render.Request{
		ID:       id,
		Chart:    render.ChartTwoVar,
		Family:   "temperature",
		Field:    &render.GridPayload{Lons: t2m.Lons, Lats: t2m.Lats, Values: t2m.Values},
		Isolines: &render.GridPayload{Lons: mslp.Lons, Lats: mslp.Lats, Values: mslp.Values},
	})
	require.NoError(t, err)
	return body
}

// readArtifact reads a single message from the artifact consumer and
// deserializes it.
func readArtifact(ctx context.Context, t *testing.T, consumer *kafkago.Reader) (render.Artifact, map[string]string) {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from artifact topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var art render.Artifact
	require.NoError(t, json.Unmarshal(msg.Value, &art), "unmarshal artifact message")
	return art, headers
}

// TestKafkaReaderWriter verifies the adapter layer: the reader extracts a
// published request and the writer round-trips an artifact record.
func TestKafkaReaderWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testRequestTopic)
	createTopic(t, broker, testArtifactTopic)

	cfg := testConfig(t, broker, "reader")

	payload := demoRequest(t, "int-twovar")
	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testRequestTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	require.NoError(t, producer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte("int-twovar"),
		Value: payload,
	}))

	// Extract via the reader. Retry because the consumer group may need
	// time to rebalance before partitions are assigned.
	reader := kafkaadapter.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	var batch []render.RawJob
	for {
		var err error
		batch, err = reader.ExtractBatch(ctx, 1)
		require.NoError(t, err)
		if len(batch) > 0 {
			break
		}
		if ctx.Err() != nil {
			t.Fatal("timed out waiting for message from request topic")
		}
	}
	require.Len(t, batch, 1)
	raw := batch[0]
	assert.Equal(t, []byte("int-twovar"), raw.Key)
	assert.Equal(t, payload, raw.Value)
	assert.Equal(t, testRequestTopic, raw.Topic)
	require.NotNil(t, raw.Commit, "commit callback should be set")
	require.NoError(t, raw.Commit(ctx))

	// Render and publish the artifact.
	renderer := newTestRenderer(t)
	art, err := renderer.Render(ctx, raw)
	require.NoError(t, err)
	assert.FileExists(t, art.Path)

	writer := kafkaadapter.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })
	require.NoError(t, writer.PublishBatch(ctx, []render.Artifact{art}))

	// Read from the artifact topic and verify headers + value.
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testArtifactTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	got, headers := readArtifact(ctx, t, consumer)
	assert.Equal(t, "int-twovar", got.RequestID)
	assert.Equal(t, render.ChartTwoVar, got.Chart)
	assert.Equal(t, "twovar", headers["chart"])
	_, err = time.Parse(time.RFC3339, headers["rendered_at"])
	assert.NoError(t, err, "rendered_at should be valid RFC3339")
}

// TestPipelineEndToEnd wires the full pipeline against real Kafka: requests
// in, rendered artifacts out, poison messages skipped.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testRequestTopic)
	createTopic(t, broker, testArtifactTopic)

	cfg := testConfig(t, broker, "pipeline")

	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testRequestTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	// Publish: a valid request, a poison pill, then another valid request.
	require.NoError(t, producer.WriteMessages(ctx,
		kafkago.Message{Key: []byte("a"), Value: demoRequest(t, "int-a")},
		kafkago.Message{Key: []byte("bad"), Value: []byte("not-json{{{")},
		kafkago.Message{Key: []byte("b"), Value: demoRequest(t, "int-b")},
	))

	reader := kafkaadapter.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafkaadapter.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	p := render.New(reader, newTestRenderer(t), writer, discardLogger(),
		observability.NewMetricsForTesting(), 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testArtifactTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	ids := make([]string, 0, 2)
	for len(ids) < 2 {
		art, _ := readArtifact(ctx, t, consumer)
		ids = append(ids, art.RequestID)
		assert.FileExists(t, art.Path)
		assert.Greater(t, art.Bytes, 0)
	}
	assert.ElementsMatch(t, []string{"int-a", "int-b"}, ids)

	// Verify no third message arrives (the poison pill was skipped).
	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err := consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no artifact for the poison message")

	pipelineCancel()
	require.NoError(t, <-errCh)
}
