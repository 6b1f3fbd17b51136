package events

import (
	"context"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/donat3/ledger-core/internal/domain"
	"github.com/donat3/ledger-core/internal/logger"
	"github.com/donat3/ledger-core/internal/messaging"
)

// Config holds the configuration for the event dispatcher
type Config struct {
	PoolSize       int
	QueueSize      int
	PublishTimeout time.Duration
	MaxRetryWait   time.Duration
}

// Dispatcher pushes committed ledger events to the broker without blocking
// the request path. Events are already durable in the journal, so a publish
// that exhausts its retries is logged and dropped here, not replayed.
type Dispatcher interface {
	// Dispatch queues an event for publishing
	Dispatch(event *domain.LedgerEvent)
	// Close drains the queue and releases the pool
	Close()
}

type dispatcher struct {
	pool      pond.Pool
	publisher messaging.Publisher
	config    Config
}

// NewDispatcher creates a new event dispatcher backed by a bounded worker pool
func NewDispatcher(cfg Config, pub messaging.Publisher) Dispatcher {
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1024
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 30 * time.Second
	}
	if cfg.MaxRetryWait <= 0 {
		cfg.MaxRetryWait = 5 * time.Second
	}

	return &dispatcher{
		pool:      pond.NewPool(cfg.PoolSize, pond.WithQueueSize(cfg.QueueSize)),
		publisher: pub,
		config:    cfg,
	}
}

// Dispatch queues an event for publishing with retry
func (d *dispatcher) Dispatch(event *domain.LedgerEvent) {
	_, ok := d.pool.TrySubmit(func() {
		d.publish(event)
	})
	if !ok {
		logger.Warn("Event queue full, dropping publish",
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)))
	}
}

func (d *dispatcher) publish(event *domain.LedgerEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), d.config.PublishTimeout)
	defer cancel()

	bo := backoff.NewExponentialBackOff()
	bo.MaxInterval = d.config.MaxRetryWait

	err := backoff.Retry(func() error {
		return d.publisher.PublishEvent(ctx, event)
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		logger.Error(err,
			zap.String("message", "Failed to publish event"),
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)))
	}
}

// Close drains the queue and releases the pool
func (d *dispatcher) Close() {
	d.pool.StopAndWait()
}
