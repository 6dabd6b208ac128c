package kafka

import (
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windvane/metplot/internal/render"
)

func TestMapMessageToJob(t *testing.T) {
	now := time.Now()
	msg := kafkago.Message{
		Key:       []byte("req-1"),
		Value:     []byte(`{"chart":"plumes"}`),
		Topic:     "chart-requests",
		Partition: 2,
		Offset:    42,
		Time:      now,
	}

	r := &Reader{}
	job := r.mapMessageToJob(msg)

	assert.Equal(t, []byte("req-1"), job.Key)
	assert.JSONEq(t, `{"chart":"plumes"}`, string(job.Value))
	assert.Equal(t, "chart-requests", job.Topic)
	assert.Equal(t, 2, job.Partition)
	assert.Equal(t, int64(42), job.Offset)
	assert.Equal(t, now, job.Timestamp)
	assert.NotNil(t, job.Commit)
}

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2026, 8, 30, 15, 10, 0, 0, time.UTC)
	art := render.Artifact{
		RequestID:  "req-1",
		Chart:      "twovar",
		Family:     "temperature",
		Path:       "artifacts/req-1.png",
		Bytes:      2048,
		RenderedAt: now,
	}

	msg, err := serializeToMessage(art)
	require.NoError(t, err)

	assert.Equal(t, []byte("req-1"), msg.Key)
	assert.Contains(t, string(msg.Value), `"chart":"twovar"`)
	assert.Contains(t, string(msg.Value), `"path":"artifacts/req-1.png"`)
	assert.Len(t, msg.Headers, 2)
	assert.Equal(t, "chart", msg.Headers[0].Key)
	assert.Equal(t, []byte("twovar"), msg.Headers[0].Value)
	assert.Equal(t, "rendered_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
}
