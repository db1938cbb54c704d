package messaging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

type memoryBroker struct {
	mu        sync.Mutex
	messages  []kafka.Message
	committed []int64
	next      int
}

func (b *memoryBroker) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, m := range msgs {
		m.Offset = int64(len(b.messages))
		b.messages = append(b.messages, m)
	}
	return nil
}

func (b *memoryBroker) FetchMessage(ctx context.Context) (kafka.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.next >= len(b.messages) {
		return kafka.Message{}, context.Canceled
	}
	m := b.messages[b.next]
	b.next++
	return m, nil
}

func (b *memoryBroker) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, m := range msgs {
		b.committed = append(b.committed, m.Offset)
	}
	return nil
}

func (b *memoryBroker) Close() error { return nil }

func installTracing(t *testing.T) {
	t.Helper()
	prevTP, prevProp := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	otel.SetTracerProvider(sdktrace.NewTracerProvider())
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})
}

func TestMessageCarrier(t *testing.T) {
	msg := &kafka.Message{}
	c := NewMessageCarrier(msg)

	c.Set("traceparent", "a")
	c.Set("baggage", "b")
	c.Set("traceparent", "c")

	assert.Equal(t, "c", c.Get("traceparent"))
	assert.Equal(t, "", c.Get("missing"))
	assert.Equal(t, []string{"traceparent", "baggage"}, c.Keys())
	assert.Len(t, msg.Headers, 2)
}

func TestProducerConsumer_PropagatesTrace(t *testing.T) {
	installTracing(t)
	broker := &memoryBroker{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, span := otel.Tracer("test").Start(context.Background(), "checkout")
	producer := NewProducerWithWriter(broker, TopicOrderPlaced)
	require.NoError(t, producer.Publish(ctx, "order-1", map[string]string{"order_id": "order-1"}))
	span.End()

	require.Len(t, broker.messages, 1)
	assert.Equal(t, "order-1", string(broker.messages[0].Key))
	assert.JSONEq(t, `{"order_id":"order-1"}`, string(broker.messages[0].Value))
	assert.NotEmpty(t, NewMessageCarrier(&broker.messages[0]).Get("traceparent"))

	var gotTrace trace.TraceID
	var gotPayload string
	consumer := NewConsumerWithReader(broker, TopicOrderPlaced, GroupOrderNotifier, logger)
	err := consumer.Consume(context.Background(), func(ctx context.Context, payload []byte) error {
		gotTrace = trace.SpanContextFromContext(ctx).TraceID()
		gotPayload = string(payload)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, span.SpanContext().TraceID(), gotTrace)
	assert.JSONEq(t, `{"order_id":"order-1"}`, gotPayload)
	assert.Equal(t, []int64{0}, broker.committed)
}

func TestConsumer_CommitsFailedMessages(t *testing.T) {
	broker := &memoryBroker{}
	producer := NewProducerWithWriter(broker, TopicOrderPlaced)
	for _, key := range []string{"a", "b", "c"} {
		require.NoError(t, producer.Publish(context.Background(), key, key))
	}

	var seen []string
	consumer := NewConsumerWithReader(broker, TopicOrderPlaced, GroupOrderNotifier, slog.New(slog.NewTextHandler(io.Discard, nil)))
	err := consumer.Consume(context.Background(), func(_ context.Context, payload []byte) error {
		seen = append(seen, string(payload))
		if string(payload) == `"b"` {
			return errors.New("boom")
		}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{`"a"`, `"b"`, `"c"`}, seen)
	assert.Equal(t, []int64{0, 1, 2}, broker.committed)
}
