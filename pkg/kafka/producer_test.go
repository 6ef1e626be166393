package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu       sync.Mutex
	written  []kafka.Message
	writeErr error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.writeErr != nil {
		return w.writeErr
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func header(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestPublish(t *testing.T) {
	writer := &fakeWriter{}
	p := NewProducerWithWriters(writer, nil, "room-bookings", "")

	msg := NewMessage().
		WithKey("R1").
		WithValue(map[string]string{"booking_id": "B1"}).
		WithEventType("booking.created").
		WithSource("rooms").
		Build()

	require.NoError(t, p.Publish(context.Background(), msg))
	require.Len(t, writer.written, 1)
	assert.Equal(t, "R1", string(writer.written[0].Key))
	assert.JSONEq(t, `{"booking_id":"B1"}`, string(writer.written[0].Value))
	assert.Equal(t, "booking.created", header(writer.written[0], HeaderEventType))
	assert.NotEmpty(t, header(writer.written[0], HeaderEventID))
}

func TestPublish_RejectsInvalidMessages(t *testing.T) {
	p := NewProducerWithWriters(&fakeWriter{}, nil, "room-bookings", "")

	assert.ErrorIs(t, p.Publish(context.Background(), Message{Value: []byte("x")}), ErrEmptyKey)
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "R1"}), ErrEmptyValue)
}

func TestPublish_FailureGoesToDLQ(t *testing.T) {
	writeErr := errors.New("leader not available")
	writer := &fakeWriter{writeErr: writeErr}
	dlq := &fakeWriter{}
	p := NewProducerWithWriters(writer, dlq, "room-bookings", "room-bookings-dlq")

	msg := NewMessage().WithKey("R1").WithRawValue([]byte(`{}`)).Build()
	err := p.Publish(context.Background(), msg)

	assert.ErrorIs(t, err, writeErr)
	require.Len(t, dlq.written, 1)
	assert.Equal(t, "room-bookings", header(dlq.written[0], HeaderOriginalTopic))
	assert.Equal(t, writeErr.Error(), header(dlq.written[0], HeaderDLQError))
	_, touched := msg.Headers[HeaderDLQError]
	assert.False(t, touched, "caller's headers are not modified")
}

func TestPublish_MiddlewareOrder(t *testing.T) {
	p := NewProducerWithWriters(&fakeWriter{}, nil, "room-bookings", "")
	var calls []string
	for _, name := range []string{"outer", "inner"} {
		p.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
			calls = append(calls, name)
			assert.Equal(t, "room-bookings", msg.Topic)
			return next(ctx, msg)
		})
	}

	require.NoError(t, p.Publish(context.Background(), NewMessage().WithKey("R1").WithRawValue([]byte(`{}`)).Build()))
	assert.Equal(t, []string{"outer", "inner"}, calls)
}

func TestClose(t *testing.T) {
	writer, dlq := &fakeWriter{}, &fakeWriter{}
	p := NewProducerWithWriters(writer, dlq, "room-bookings", "room-bookings-dlq")

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	assert.True(t, writer.closed)
	assert.True(t, dlq.closed)
	assert.True(t, p.Closed())
	err := p.Publish(context.Background(), NewMessage().WithKey("R1").WithRawValue([]byte(`{}`)).Build())
	assert.ErrorIs(t, err, ErrProducerClosed)
}

func TestMessageBuilder_BuildE(t *testing.T) {
	_, err := NewMessage().WithKey("R1").WithValue(make(chan int)).BuildE()
	assert.Error(t, err)

	msg, err := NewMessage().WithKey("R1").WithValue(struct {
		ID string `json:"id"`
	}{ID: "B1"}).WithCorrelationID("req-1").BuildE()
	require.NoError(t, err)

	var decoded struct {
		ID string `json:"id"`
	}
	require.NoError(t, msg.DecodeValue(&decoded))
	assert.Equal(t, "B1", decoded.ID)
	assert.Equal(t, "req-1", msg.GetCorrelationID())
	got, ok := msg.GetHeader(HeaderTimestamp)
	assert.True(t, ok)
	assert.NotEmpty(t, got)
}
