package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
)

// RedisConfig holds connection parameters for the Redis-compatible store.
type RedisConfig struct {
	Addr         string
	Username     string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RedisProvider implements Provider on go-redis with a circuit breaker in
// front of every operation, so a flapping store degrades to cache misses
// instead of stalling requests.
type RedisProvider struct {
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker[any]
	logger  *slog.Logger
}

// NewRedisProvider creates a Provider using the supplied configuration. It
// pings the target to fail fast when connectivity or credentials are wrong.
func NewRedisProvider(cfg RedisConfig, logger *slog.Logger) (*RedisProvider, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis addr is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 2 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "cache-redis",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: readyToTrip,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("cache circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})

	provider := &RedisProvider{client: client, breaker: breaker, logger: logger}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return provider, nil
}

// Get fetches bytes by key, returning ErrCacheMiss when the key is absent.
func (p *RedisProvider) Get(ctx context.Context, key string) ([]byte, error) {
	var miss bool
	out, err := p.breaker.Execute(func() (any, error) {
		data, err := p.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			// A miss is a healthy reply; it must not trip the breaker.
			miss = true
			return nil, nil
		}
		return data, err
	})
	if err != nil {
		return nil, p.wrap("get", err)
	}
	if miss {
		return nil, ErrCacheMiss
	}
	return out.([]byte), nil
}

// Set stores bytes with the provided TTL.
func (p *RedisProvider) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := p.breaker.Execute(func() (any, error) {
		return nil, p.client.Set(ctx, key, value, ttl).Err()
	})
	if err != nil {
		return p.wrap("set", err)
	}
	return nil
}

// SetNX stores the value only if the key does not exist, reporting whether
// the write happened.
func (p *RedisProvider) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	out, err := p.breaker.Execute(func() (any, error) {
		stored, err := p.client.SetNX(ctx, key, value, ttl).Result()
		return stored, err
	})
	if err != nil {
		return false, p.wrap("setnx", err)
	}
	return out.(bool), nil
}

// Del removes a key.
func (p *RedisProvider) Del(ctx context.Context, key string) error {
	_, err := p.breaker.Execute(func() (any, error) {
		return nil, p.client.Del(ctx, key).Err()
	})
	if err != nil {
		return p.wrap("del", err)
	}
	return nil
}

// Close closes the underlying client.
func (p *RedisProvider) Close() error {
	return p.client.Close()
}

// readyToTrip opens the breaker once at least five calls in the rolling
// window have run and 60% or more of them failed.
func readyToTrip(counts gobreaker.Counts) bool {
	return counts.Requests >= 5 &&
		float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
}

func (p *RedisProvider) wrap(op string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("redis %s: %w", op, ErrUnavailable)
	}
	return fmt.Errorf("redis %s: %w", op, err)
}
