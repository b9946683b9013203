package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/prometheus/client_golang/prometheus"
)

// BadgerConfig configures the embedded Badger backend.
type BadgerConfig struct {
	// Dir holds the database files. Ignored when InMemory is set.
	Dir string

	// InMemory keeps everything in RAM.
	InMemory bool

	// GCInterval is the time between value-log GC runs. Default: 10m
	GCInterval time.Duration

	// GCThreshold is the discard ratio passed to RunValueLogGC. Default: 0.5
	GCThreshold float64

	// CacheSize is the block cache size in bytes. Default: 8MB
	CacheSize int64

	// ValueLogFileSize caps a single value log file. Default: 16MB
	ValueLogFileSize int64

	// SyncWrites fsyncs after every write.
	SyncWrites bool
}

// DefaultBadgerConfig returns settings sized for a handful of small keys.
func DefaultBadgerConfig(dir string) BadgerConfig {
	return BadgerConfig{
		Dir:              dir,
		GCInterval:       10 * time.Minute,
		GCThreshold:      0.5,
		CacheSize:        8 << 20,
		ValueLogFileSize: 16 << 20,
		SyncWrites:       true,
	}
}

// BadgerBackend stores values in an embedded Badger database.
type BadgerBackend struct {
	db     *badger.DB
	cfg    BadgerConfig
	logger *slog.Logger

	lastGCTime atomic.Int64 // Unix milliseconds
	gcRuns     prometheus.Counter

	closeOnce sync.Once
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewBadgerBackend opens (or creates) a Badger database.
func NewBadgerBackend(cfg BadgerConfig, logger *slog.Logger) (*BadgerBackend, error) {
	if cfg.Dir == "" && !cfg.InMemory {
		return nil, fmt.Errorf("badger: dir is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.GCInterval <= 0 {
		cfg.GCInterval = 10 * time.Minute
	}
	if cfg.GCThreshold <= 0 || cfg.GCThreshold >= 1 {
		cfg.GCThreshold = 0.5
	}

	opts := badger.DefaultOptions(cfg.Dir)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = &badgerLogger{logger: logger}
	if cfg.CacheSize > 0 {
		opts.BlockCacheSize = cfg.CacheSize
	}
	if cfg.ValueLogFileSize > 0 {
		opts.ValueLogFileSize = cfg.ValueLogFileSize
	}
	opts.SyncWrites = cfg.SyncWrites

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}

	b := &BadgerBackend{
		db:     db,
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	go b.gcLoop()

	logger.Debug("badger store opened",
		"dir", cfg.Dir,
		"in_memory", cfg.InMemory,
		"gc_interval", cfg.GCInterval)

	return b, nil
}

// Get retrieves a value by key.
func (b *BadgerBackend) Get(_ context.Context, key string) ([]byte, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrKeyNotFound
			}
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrDBClosed) {
		return nil, ErrClosed
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set stores a key-value pair.
func (b *BadgerBackend) Set(_ context.Context, key string, value []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if errors.Is(err, badger.ErrDBClosed) {
		return ErrClosed
	}
	return err
}

// Delete removes a key.
func (b *BadgerBackend) Delete(_ context.Context, key string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if errors.Is(err, badger.ErrDBClosed) {
		return ErrClosed
	}
	return err
}

// GC runs value-log GC until Badger reports nothing left to rewrite.
func (b *BadgerBackend) GC(ctx context.Context) error {
	if b.cfg.InMemory {
		return nil
	}
	start := time.Now()
	rewrites := 0
	for ctx.Err() == nil {
		err := b.db.RunValueLogGC(b.cfg.GCThreshold)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
			break
		}
		if err != nil {
			return fmt.Errorf("gc: %w", err)
		}
		rewrites++
	}

	b.lastGCTime.Store(time.Now().UnixMilli())
	if b.gcRuns != nil {
		b.gcRuns.Inc()
	}
	b.logger.Debug("badger gc completed",
		"rewrites", rewrites,
		"elapsed", time.Since(start))
	return ctx.Err()
}

// Size returns the LSM and value-log sizes in bytes.
func (b *BadgerBackend) Size() (lsm, vlog int64) {
	return b.db.Size()
}

// LastGC returns the time of the last completed GC, or zero.
func (b *BadgerBackend) LastGC() time.Time {
	ms := b.lastGCTime.Load()
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

// Close stops the GC loop and closes the database. It is safe to call
// more than once.
func (b *BadgerBackend) Close() error {
	var err error
	b.closeOnce.Do(func() {
		close(b.stopCh)
		<-b.doneCh
		if cerr := b.db.Close(); cerr != nil {
			err = fmt.Errorf("close db: %w", cerr)
		}
	})
	return err
}

// RegisterMetrics registers size gauges and a GC counter with reg.
func (b *BadgerBackend) RegisterMetrics(reg prometheus.Registerer) error {
	b.gcRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "complitracker",
		Subsystem: "badger",
		Name:      "gc_runs_total",
		Help:      "Completed Badger value-log GC runs",
	})

	collectors := []prometheus.Collector{
		b.gcRuns,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "complitracker",
			Subsystem: "badger",
			Name:      "lsm_size_bytes",
			Help:      "Badger LSM tree size in bytes",
		}, func() float64 {
			lsm, _ := b.db.Size()
			return float64(lsm)
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "complitracker",
			Subsystem: "badger",
			Name:      "value_log_size_bytes",
			Help:      "Badger value log size in bytes",
		}, func() float64 {
			_, vlog := b.db.Size()
			return float64(vlog)
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "complitracker",
			Subsystem: "badger",
			Name:      "last_gc_timestamp_seconds",
			Help:      "Unix timestamp of the last Badger GC run",
		}, func() float64 {
			return float64(b.lastGCTime.Load()) / 1000.0
		}),
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("register badger metrics: %w", err)
		}
	}
	return nil
}

func (b *BadgerBackend) gcLoop() {
	defer close(b.doneCh)

	ticker := time.NewTicker(b.cfg.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			if err := b.GC(ctx); err != nil {
				b.logger.Warn("badger gc failed", "error", err)
			}
			cancel()
		case <-b.stopCh:
			return
		}
	}
}

// badgerLogger adapts slog.Logger to Badger's Logger interface.
// Badger is chatty at info level, so info is demoted to debug.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...), "component", "badger")
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...), "component", "badger")
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...), "component", "badger")
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...), "component", "badger")
}
