package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"roombook/pkg/kafka"
	"roombook/pkg/middleware"
	"roombook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockProducer struct {
	publishFunc func(ctx context.Context, msg kafka.Message) error
	closed      bool
}

func (m *mockProducer) Publish(ctx context.Context, msg kafka.Message) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, msg)
	}
	return nil
}

func (m *mockProducer) Close() error {
	m.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	var got kafka.Message
	producer := &mockProducer{publishFunc: func(_ context.Context, msg kafka.Message) error {
		got = msg
		return nil
	}}
	pub := NewKafkaPublisher(producer, "rooms")
	occurred := time.Date(2030, 1, 7, 9, 0, 0, 0, time.UTC)
	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")

	err := pub.Publish(ctx, Event{
		Type:       EventBookingCreated,
		OccurredAt: occurred,
		Booking:    &model.Booking{ID: "B1", ResourceID: "R1", RequesterID: "U1", Status: model.BookingActive},
	})

	require.NoError(t, err)
	assert.Equal(t, "R1", got.Key)
	assert.Equal(t, EventBookingCreated, got.GetEventType())
	assert.Equal(t, "req-42", got.GetCorrelationID())
	assert.Equal(t, occurred, got.Timestamp)
	assert.NotEmpty(t, got.GetEventID())

	var decoded Event
	require.NoError(t, got.DecodeValue(&decoded))
	assert.Equal(t, "B1", decoded.Booking.ID)
	assert.Equal(t, EventBookingCreated, decoded.Type)
}

func TestKafkaPublisher_PropagatesErrors(t *testing.T) {
	boom := errors.New("broker down")
	producer := &mockProducer{publishFunc: func(context.Context, kafka.Message) error { return boom }}
	pub := NewKafkaPublisher(producer, "rooms")

	err := pub.Publish(context.Background(), Event{Type: EventBookingCancelled, Booking: &model.Booking{ResourceID: "R1"}})

	assert.ErrorIs(t, err, boom)
	require.NoError(t, pub.Close())
	assert.True(t, producer.closed)
}

func TestNoopPublisher(t *testing.T) {
	var pub Publisher = NoopPublisher{}

	assert.NoError(t, pub.Publish(context.Background(), Event{}))
	assert.NoError(t, pub.Close())
}
