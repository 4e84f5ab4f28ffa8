package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/dgraph-io/badger/v3"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/cricket-go/internal/telemetry/logger"
)

// BadgerEngine implements KVEngine using Badger v3.
type BadgerEngine struct {
	db     *badger.DB
	dir    string
	cfg    BadgerConfig
	logger logger.Logger
	closed atomic.Bool

	// Sizes captured at Close, reported by the gauges afterwards.
	lsmSize  atomic.Int64
	vlogSize atomic.Int64
}

// NewBadgerEngine opens (or creates) a Badger store in cfg.Dir.
func NewBadgerEngine(cfg KVConfig, log logger.Logger) (*BadgerEngine, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("badger: dir is required")
	}
	if log == nil {
		log = logger.Default()
	}
	if err := os.MkdirAll(cfg.Dir, 0o700); err != nil {
		return nil, fmt.Errorf("badger: create dir: %w", err)
	}

	badgerCfg := cfg.Badger
	opts := badger.DefaultOptions(cfg.Dir).
		WithLogger(&badgerLogger{logger: log.With("component", "badger")}).
		WithSyncWrites(badgerCfg.SyncWrites).
		WithNumVersionsToKeep(1)
	if badgerCfg.CacheSize > 0 {
		opts = opts.WithBlockCacheSize(badgerCfg.CacheSize)
	}
	if badgerCfg.MemTableSize > 0 {
		opts = opts.WithMemTableSize(badgerCfg.MemTableSize)
	}
	if badgerCfg.ValueThreshold > 0 {
		opts = opts.WithValueThreshold(badgerCfg.ValueThreshold)
	}
	if badgerCfg.ValueLogFileSize > 0 {
		opts = opts.WithValueLogFileSize(badgerCfg.ValueLogFileSize)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}

	log.Debug("badger engine opened", "dir", cfg.Dir, "sync_writes", badgerCfg.SyncWrites)

	return &BadgerEngine{
		db:     db,
		dir:    cfg.Dir,
		cfg:    badgerCfg,
		logger: log,
	}, nil
}

// Get retrieves a value by key.
func (e *BadgerEngine) Get(ctx context.Context, key []byte) ([]byte, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}
	var value []byte

	err := e.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrKeyNotFound
			}
			return err
		}

		value, err = item.ValueCopy(nil)
		return err
	})

	if err != nil {
		return nil, err
	}

	return value, nil
}

// Set stores a key-value pair.
func (e *BadgerEngine) Set(ctx context.Context, key, value []byte) error {
	if e.closed.Load() {
		return ErrClosed
	}
	return e.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

// Delete removes a key.
func (e *BadgerEngine) Delete(ctx context.Context, key []byte) error {
	if e.closed.Load() {
		return ErrClosed
	}
	return e.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// runGC reclaims value log space and returns the number of files rewritten.
func (e *BadgerEngine) runGC(ctx context.Context) (int, error) {
	rewritten := 0
	for ctx.Err() == nil {
		err := e.db.RunValueLogGC(e.cfg.GCThreshold)
		if err != nil {
			if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
				break
			}
			return rewritten, fmt.Errorf("gc: %w", err)
		}
		rewritten++
	}
	if rewritten > 0 {
		e.logger.Debug("badger gc completed", "rewritten", rewritten)
	}
	return rewritten, nil
}

// Close runs one GC pass and closes the DB. Further calls are no-ops.
func (e *BadgerEngine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	if _, err := e.runGC(context.Background()); err != nil {
		e.logger.Warn("badger gc on close failed", "error", err)
	}
	lsm, vlog := e.db.Size()
	e.lsmSize.Store(lsm)
	e.vlogSize.Store(vlog)

	if err := e.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	e.logger.Debug("badger engine closed", "dir", e.dir)
	return nil
}

// size returns the on-disk sizes, or the last ones seen once closed.
func (e *BadgerEngine) size() (lsm, vlog int64) {
	if e.closed.Load() {
		return e.lsmSize.Load(), e.vlogSize.Load()
	}
	return e.db.Size()
}

// RegisterMetrics registers on-disk size gauges.
func (e *BadgerEngine) RegisterMetrics(reg interface {
	Register(prometheus.Collector) error
}) error {
	lsm := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "cricket",
		Subsystem: "badger",
		Name:      "lsm_size_bytes",
		Help:      "Badger LSM tree size in bytes",
	}, func() float64 {
		l, _ := e.size()
		return float64(l)
	})
	vlog := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "cricket",
		Subsystem: "badger",
		Name:      "value_log_size_bytes",
		Help:      "Badger value log size in bytes",
	}, func() float64 {
		_, v := e.size()
		return float64(v)
	})
	if err := reg.Register(lsm); err != nil {
		return err
	}
	return reg.Register(vlog)
}

// badgerLogger adapts logger.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger logger.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
