package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yndnr/cricket-go/internal/telemetry/logger"
)

const defaultRedisTimeout = 5 * time.Second

// RedisEngine implements KVEngine on a Redis server. Every key is
// namespaced with the configured prefix.
type RedisEngine struct {
	client *redis.Client
	prefix string
	logger logger.Logger
}

// NewRedisEngine connects to Redis and validates connectivity with a ping.
func NewRedisEngine(ctx context.Context, cfg RedisConfig, log logger.Logger) (*RedisEngine, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis: addr is required")
	}
	if log == nil {
		log = logger.Default()
	}

	timeout := defaultRedisTimeout
	if cfg.DialTimeout != "" {
		d, err := time.ParseDuration(cfg.DialTimeout)
		if err != nil {
			return nil, fmt.Errorf("redis: dial_timeout: %w", err)
		}
		if d > 0 {
			timeout = d
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Username:    cfg.Username,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Debug("redis engine connected", "addr", cfg.Addr, "db", cfg.DB)
	return NewRedisEngineFromClient(client, cfg.Prefix, log), nil
}

// NewRedisEngineFromClient wraps an existing client. The engine takes
// ownership and closes it on Close.
func NewRedisEngineFromClient(client *redis.Client, prefix string, log logger.Logger) *RedisEngine {
	if log == nil {
		log = logger.Default()
	}
	return &RedisEngine{client: client, prefix: prefix, logger: log}
}

// Get retrieves a value by key.
func (e *RedisEngine) Get(ctx context.Context, key []byte) ([]byte, error) {
	v, err := e.client.Get(ctx, e.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrKeyNotFound
		}
		return nil, e.mapErr(err)
	}
	return v, nil
}

// Set stores a key-value pair without expiry.
func (e *RedisEngine) Set(ctx context.Context, key, value []byte) error {
	return e.mapErr(e.client.Set(ctx, e.key(key), value, 0).Err())
}

// Delete removes a key.
func (e *RedisEngine) Delete(ctx context.Context, key []byte) error {
	return e.mapErr(e.client.Del(ctx, e.key(key)).Err())
}

// Close closes the client.
func (e *RedisEngine) Close() error {
	return e.client.Close()
}

func (e *RedisEngine) key(key []byte) string {
	return e.prefix + string(key)
}

func (e *RedisEngine) mapErr(err error) error {
	if errors.Is(err, redis.ErrClosed) {
		return ErrClosed
	}
	return err
}
