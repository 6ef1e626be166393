package checks

import (
	"context"
	"fmt"
	"sync/atomic"

	"roombook/internal/bookings/repository"
	"roombook/pkg/kafka"
	kafka_middleware "roombook/pkg/kafka/middleware"
)

// LedgerChecker reports whether the booking store answers and how big it is.
type LedgerChecker struct {
	repo  repository.BookingRepository
	count atomic.Int64
}

func NewLedgerChecker(repo repository.BookingRepository) *LedgerChecker {
	return &LedgerChecker{repo: repo}
}

func (c *LedgerChecker) Name() string { return "ledger" }

func (c *LedgerChecker) Check(ctx context.Context) error {
	n, err := c.repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count bookings: %w", err)
	}
	c.count.Store(int64(n))
	return nil
}

func (c *LedgerChecker) Details() any {
	return map[string]int64{"bookings": c.count.Load()}
}

// ProducerChecker reports the booking event producer. A closed producer means
// events are being dropped.
type ProducerChecker struct {
	producer *kafka.Producer
	metrics  *kafka_middleware.Metrics
}

func NewProducerChecker(producer *kafka.Producer, metrics *kafka_middleware.Metrics) *ProducerChecker {
	return &ProducerChecker{
		producer: producer,
		metrics:  metrics,
	}
}

func (c *ProducerChecker) Name() string { return "event_producer" }

func (c *ProducerChecker) Check(context.Context) error {
	if c.producer.Closed() {
		return kafka.ErrProducerClosed
	}
	return nil
}

func (c *ProducerChecker) Details() any {
	snapshot := c.metrics.Snapshot()
	return struct {
		Topic string `json:"topic"`
		kafka_middleware.MetricsSnapshot
	}{
		Topic:           c.producer.Topic(),
		MetricsSnapshot: snapshot,
	}
}
