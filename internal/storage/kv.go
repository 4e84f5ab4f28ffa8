package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/yndnr/cricket-go/internal/telemetry/logger"
)

// Common errors
var (
	ErrKeyNotFound = errors.New("key not found")
	ErrClosed      = errors.New("kv engine closed")
)

// Engine names accepted by KVConfig.Engine.
const (
	EngineBadger = "badger"
	EngineRedis  = "redis"
	EngineMemory = "memory"
)

// KVEngine defines the interface for the key-value backends.
//
// Implementations must be safe for concurrent use. Delete of a missing
// key is not an error.
type KVEngine interface {
	// Get retrieves a value by key.
	// Returns ErrKeyNotFound if key doesn't exist.
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Set stores a key-value pair.
	Set(ctx context.Context, key, value []byte) error

	// Delete removes a key.
	Delete(ctx context.Context, key []byte) error

	// Close releases the engine.
	Close() error
}

// KVConfig configures a KV engine.
type KVConfig struct {
	// Engine specifies the KV engine type ("badger", "redis", "memory").
	// Default: "badger"
	Engine string

	// Dir is the storage directory for badger.
	Dir string

	// Badger-specific configuration
	Badger BadgerConfig

	// Redis-specific configuration
	Redis RedisConfig
}

// BadgerConfig contains Badger-specific tuning parameters.
// The session store holds two small keys, so defaults are tiny.
type BadgerConfig struct {
	// GCThreshold is the GC discard ratio threshold (0.0-1.0).
	// Default: 0.5
	GCThreshold float64

	// CacheSize is the block cache size in bytes.
	// Default: 1MB
	CacheSize int64

	// MemTableSize is the memtable size in bytes. Badger caps a write
	// batch at 15% of it, and that cap must exceed ValueThreshold.
	// Default: 8MB
	MemTableSize int64

	// ValueThreshold is the largest value kept inline in the LSM tree.
	// Session values are small, so they never reach the value log.
	// Default: 1KB
	ValueThreshold int64

	// ValueLogFileSize is the max value log file size in bytes.
	// Default: 16MB
	ValueLogFileSize int64

	// SyncWrites enables sync writes (fsync after each write).
	// Default: true; a sign-in must survive a crash right after it.
	SyncWrites bool
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int

	// Prefix namespaces every key, e.g. "cricket:ann-laptop:".
	// Default: "cricket:"
	Prefix string

	// DialTimeout bounds the startup ping. Default: 5s
	DialTimeout string
}

// DefaultKVConfig returns the default KV configuration.
func DefaultKVConfig(dir string) KVConfig {
	return KVConfig{
		Engine: EngineBadger,
		Dir:    dir,
		Badger: DefaultBadgerConfig(),
		Redis:  DefaultRedisConfig(),
	}
}

// DefaultBadgerConfig returns the default Badger configuration.
func DefaultBadgerConfig() BadgerConfig {
	return BadgerConfig{
		GCThreshold:      0.5,
		CacheSize:        1 << 20,  // 1MB
		MemTableSize:     8 << 20,  // 8MB
		ValueThreshold:   1 << 10,  // 1KB
		ValueLogFileSize: 16 << 20, // 16MB
		SyncWrites:       true,
	}
}

// DefaultRedisConfig returns the default Redis configuration.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:        "localhost:6379",
		Prefix:      "cricket:",
		DialTimeout: "5s",
	}
}

// Open creates the engine named by cfg.Engine.
func Open(ctx context.Context, cfg KVConfig, log logger.Logger) (KVEngine, error) {
	if log == nil {
		log = logger.Default()
	}
	switch cfg.Engine {
	case "", EngineBadger:
		e, err := NewBadgerEngine(cfg, log)
		if err != nil {
			return nil, err
		}
		return e, nil
	case EngineRedis:
		e, err := NewRedisEngine(ctx, cfg.Redis, log)
		if err != nil {
			return nil, err
		}
		return e, nil
	case EngineMemory:
		return NewMemoryEngine(), nil
	default:
		return nil, fmt.Errorf("unknown storage engine %q", cfg.Engine)
	}
}
