package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func newTestProducer(t *testing.T, w *recordingWriter) (*Producer, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	p, err := NewProducer(withWriter(w), WithRegisterer(reg), WithCompression("snappy"))
	require.NoError(t, err)
	return p, reg
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	_, err := NewProducer(WithRegisterer(prometheus.NewRegistry()))
	assert.ErrorIs(t, err, ErrNoBrokers)
}

func TestPublishEncodesValues(t *testing.T) {
	w := &recordingWriter{}
	p, reg := newTestProducer(t, w)

	ctx := context.Background()
	require.NoError(t, p.Publish(ctx, "forecasts", []byte("AAPL"), map[string]string{"direction": "UP"}))
	require.NoError(t, p.Publish(ctx, "forecasts", nil, "raw"))
	require.NoError(t, p.PublishMessage(ctx, "logs", []byte(`{"a":1}`)))

	require.Len(t, w.msgs, 3)
	assert.Equal(t, "forecasts", w.msgs[0].Topic)
	assert.Equal(t, []byte("AAPL"), w.msgs[0].Key)
	assert.JSONEq(t, `{"direction":"UP"}`, string(w.msgs[0].Value))
	assert.Equal(t, "raw", string(w.msgs[1].Value))
	assert.Nil(t, w.msgs[2].Key)
	assert.Equal(t, "logs", w.msgs[2].Topic)

	assert.Equal(t, 2.0, testutil.ToFloat64(p.metrics.msgs.WithLabelValues("forecasts", "snappy", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.metrics.msgs.WithLabelValues("logs", "snappy", "ok")))
	n, err := testutil.GatherAndCount(reg, "stockcast_kafka_producer_publish_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestPublishError(t *testing.T) {
	w := &recordingWriter{err: errors.New("broker down")}
	p, _ := newTestProducer(t, w)

	err := p.Publish(context.Background(), "forecasts", nil, "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	assert.Equal(t, 1.0, testutil.ToFloat64(p.metrics.errs.WithLabelValues("forecasts")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.metrics.msgs.WithLabelValues("forecasts", "snappy", "error")))
}

func TestPublishBatch(t *testing.T) {
	w := &recordingWriter{}
	p, _ := newTestProducer(t, w)

	require.NoError(t, p.PublishBatch(context.Background(), "forecasts", nil))
	assert.Empty(t, w.msgs)

	err := p.PublishBatch(context.Background(), "forecasts", []Message{
		{Key: []byte("A"), Value: 1},
		{Key: []byte("B"), Value: "two"},
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 2)
	assert.Equal(t, "1", string(w.msgs[0].Value))
	assert.Equal(t, "two", string(w.msgs[1].Value))
}

func TestPublishUnmarshalable(t *testing.T) {
	w := &recordingWriter{}
	p, _ := newTestProducer(t, w)

	err := p.Publish(context.Background(), "forecasts", nil, make(chan int))
	assert.Error(t, err)
	assert.Empty(t, w.msgs)
}

func TestMetricsSharedPerRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewProducer(withWriter(&recordingWriter{}), WithRegisterer(reg))
	require.NoError(t, err)
	b, err := NewProducer(withWriter(&recordingWriter{}), WithRegisterer(reg))
	require.NoError(t, err)
	assert.Same(t, a.metrics, b.metrics)
}

func TestClose(t *testing.T) {
	w := &recordingWriter{}
	p, _ := newTestProducer(t, w)
	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestParseCompression(t *testing.T) {
	assert.Equal(t, kafka.Snappy, parseCompression("snappy"))
	assert.Equal(t, kafka.Zstd, parseCompression("zstd"))
	assert.Equal(t, kafka.Gzip, parseCompression("bogus"))
}
