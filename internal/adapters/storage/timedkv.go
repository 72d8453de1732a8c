package storage

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"weekendlog/internal/adapters/http/perf"
)

// DefaultSlowOpMs is the default threshold for slow storage-op warnings.
const DefaultSlowOpMs = 50

var slowOpMs int64
var slowOpOnce sync.Once

// getSlowOpThreshold returns the slow-op threshold in milliseconds.
func getSlowOpThreshold() float64 {
	slowOpOnce.Do(func() {
		ms := DefaultSlowOpMs
		if v := os.Getenv("WEEKENDLOG_SLOW_OP_MS"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				ms = n
			}
		}
		atomic.StoreInt64(&slowOpMs, int64(ms))
	})
	return float64(atomic.LoadInt64(&slowOpMs))
}

// TimedKV wraps a KV to log slow operations and optionally record timings
// to a collector. Satisfies the KV interface so it can be passed to any
// collection store constructor.
type TimedKV struct {
	kv        KV
	collector *perf.Collector
	threshold float64
}

// Compile-time check that *TimedKV satisfies KV.
var _ KV = (*TimedKV)(nil)

// NewTimedKV wraps a KV with timing instrumentation.
// PRE: kv is a valid KV
// POST: Returns a TimedKV that logs slow ops and records to collector
func NewTimedKV(kv KV, collector *perf.Collector) *TimedKV {
	return &TimedKV{
		kv:        kv,
		collector: collector,
		threshold: getSlowOpThreshold(),
	}
}

// logOp logs and optionally records a storage-op timing.
func (t *TimedKV) logOp(op, key string, start time.Time) {
	durationMs := float64(time.Since(start).Microseconds()) / 1000.0

	if durationMs >= t.threshold {
		slog.Warn("slow_storage_op", "op", op, "key", key, "duration_ms", durationMs)
	} else {
		slog.Debug("storage_op", "op", op, "key", key, "duration_ms", durationMs)
	}

	if t.collector != nil {
		t.collector.Record(perf.Entry{
			Kind:       perf.KindStorage,
			Path:       op + " " + key,
			DurationMs: durationMs,
			Timestamp:  start,
		})
	}
}

// Get wraps KV.Get with timing.
// PRE: ctx is valid, key is non-empty
// POST: op executed, timing recorded
func (t *TimedKV) Get(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()
	value, ok, err := t.kv.Get(ctx, key)
	t.logOp("kv.Get", key, start)
	return value, ok, err
}

// Set wraps KV.Set with timing.
// PRE: ctx is valid, key is non-empty
// POST: op executed, timing recorded
func (t *TimedKV) Set(ctx context.Context, key, value string) error {
	start := time.Now()
	err := t.kv.Set(ctx, key, value)
	t.logOp("kv.Set", key, start)
	return err
}

// Delete wraps KV.Delete with timing.
// PRE: ctx is valid, key is non-empty
// POST: op executed, timing recorded
func (t *TimedKV) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := t.kv.Delete(ctx, key)
	t.logOp("kv.Delete", key, start)
	return err
}
