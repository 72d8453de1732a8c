package middleware

import (
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"weekendlog/internal/adapters/http/perf"
)

// DefaultSlowRequestMs is the threshold above which a request logs at WARN.
const DefaultSlowRequestMs = 200

// slowRequestThreshold reads WEEKENDLOG_SLOW_REQUEST_MS once, at middleware
// construction.
func slowRequestThreshold() float64 {
	if v := os.Getenv("WEEKENDLOG_SLOW_REQUEST_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return float64(n)
		}
	}
	return DefaultSlowRequestMs
}

// reqSeq numbers requests for log correlation.
var reqSeq uint64

// responseRecorder captures the status code and body size on the way out.
type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (rr *responseRecorder) WriteHeader(code int) {
	rr.status = code
	rr.ResponseWriter.WriteHeader(code)
}

func (rr *responseRecorder) Write(p []byte) (int, error) {
	n, err := rr.ResponseWriter.Write(p)
	rr.bytes += int64(n)
	return n, err
}

// Timing returns middleware that logs request duration and feeds the perf
// collector. Static assets are not timed. Requests under the threshold log
// at DEBUG, slow ones at WARN; a nil collector disables recording only.
func Timing(collector *perf.Collector) func(http.Handler) http.Handler {
	threshold := slowRequestThreshold()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if strings.HasPrefix(path, "/static/") {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rr := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rr, r)

			elapsedMs := float64(time.Since(start).Microseconds()) / 1000.0
			level := slog.LevelDebug
			event := "request"
			if elapsedMs >= threshold {
				level = slog.LevelWarn
				event = "slow_request"
			}
			slog.Log(r.Context(), level, event,
				"request_id", atomic.AddUint64(&reqSeq, 1),
				"method", r.Method,
				"path", path,
				"status", rr.status,
				"bytes", rr.bytes,
				"duration_ms", elapsedMs,
			)

			if collector != nil {
				collector.Record(perf.Entry{
					Kind:       perf.KindRequest,
					Path:       r.Method + " " + path,
					StatusCode: rr.status,
					DurationMs: elapsedMs,
					Timestamp:  start,
				})
			}
		})
	}
}
