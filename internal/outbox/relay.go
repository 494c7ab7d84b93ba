package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Store is the outbox table.
type Store interface {
	Append(ctx context.Context, event Event) error
	Pending(ctx context.Context, limit int) ([]Event, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

// Producer delivers one message to the broker, blocking until acknowledged.
type Producer interface {
	Produce(ctx context.Context, key string, value []byte, headers map[string]string) error
}

const (
	defaultInterval  = 2 * time.Second
	defaultBatchSize = 100
)

// Relay drains the outbox into the broker in creation order.
type Relay struct {
	store     Store
	producer  Producer
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
	metrics   *Metrics
	now       func() time.Time
}

type Option func(*Relay)

func WithInterval(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		r.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(r *Relay) {
		r.metrics = m
	}
}

func NewRelay(store Store, producer Producer, opts ...Option) *Relay {
	r := &Relay{
		store:     store,
		producer:  producer,
		interval:  defaultInterval,
		batchSize: defaultBatchSize,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run flushes on every tick until ctx is cancelled. Flush failures are logged
// and retried on the next tick.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	r.logger.InfoContext(ctx, "outbox relay started", "interval", r.interval.String())
	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "outbox relay stopped")
			return nil
		case <-ticker.C:
			if _, err := r.Flush(ctx); err != nil && ctx.Err() == nil {
				r.logger.ErrorContext(ctx, "outbox flush failed", "error", err)
			}
		}
	}
}

// Flush publishes one batch. It stops at the first failed event so later
// events are never delivered ahead of it, and marks only what was delivered.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	events, err := r.store.Pending(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}
	delivered := make([]uuid.UUID, 0, len(events))
	var produceErr error
	for _, e := range events {
		headers := map[string]string{
			"event_id":       e.ID.String(),
			"event_type":     e.EventType,
			"aggregate_type": e.AggregateType,
		}
		if produceErr = r.producer.Produce(ctx, e.AggregateID, e.Payload, headers); produceErr != nil {
			r.metrics.IncFailed()
			break
		}
		delivered = append(delivered, e.ID)
	}
	if len(delivered) > 0 {
		if err := r.store.MarkPublished(ctx, delivered, r.now()); err != nil {
			return 0, err
		}
		r.metrics.AddPublished(len(delivered))
	}
	return len(delivered), produceErr
}
