package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"

	"github.com/jwalitptl/care-portal/pkg/logger"
	"github.com/jwalitptl/care-portal/pkg/messaging"
	"github.com/jwalitptl/care-portal/pkg/metrics"
)

type RedisBroker struct {
	client  *redis.Client
	cb      *gobreaker.CircuitBreaker
	logger  *logger.Logger
	metrics *metrics.Metrics
}

type Config struct {
	URL          string
	MaxRetries   int
	RetryBackoff time.Duration
	PoolSize     int
	MinIdleConns int
	// FailureThreshold consecutive failures open the breaker for OpenTimeout.
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

func DefaultConfig(url string) Config {
	return Config{
		URL:              url,
		MaxRetries:       3,
		RetryBackoff:     100 * time.Millisecond,
		PoolSize:         10,
		MinIdleConns:     2,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
	}
}

// NewRedisBroker connects and pings Redis.
func NewRedisBroker(ctx context.Context, config Config, log *logger.Logger, m *metrics.Metrics) (*RedisBroker, error) {
	opts, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.MaxRetries = config.MaxRetries
	opts.MinRetryBackoff = config.RetryBackoff
	if config.PoolSize > 0 {
		opts.PoolSize = config.PoolSize
	}
	opts.MinIdleConns = config.MinIdleConns

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewWithClient(client, config, log, m), nil
}

// NewWithClient wraps an existing client without pinging it.
func NewWithClient(client *redis.Client, config Config, log *logger.Logger, m *metrics.Metrics) *RedisBroker {
	threshold := config.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "redis-broker",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     config.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &RedisBroker{client: client, cb: cb, logger: log, metrics: m}
}

var _ messaging.Broker = (*RedisBroker)(nil)

func (b *RedisBroker) Publish(ctx context.Context, channel string, payload []byte) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.client.Publish(ctx, channel, payload).Err()
	})
	status := "success"
	if err != nil {
		status = "error"
	}
	b.metrics.RedisOperations.WithLabelValues("publish", status).Inc()
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", channel, err)
	}
	return nil
}

func (b *RedisBroker) State() gobreaker.State {
	return b.cb.State()
}

func (b *RedisBroker) Close() error {
	return b.client.Close()
}
