package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tincart",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tincart",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	codecOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tincart",
			Subsystem: "codec",
			Name:      "operations_total",
			Help:      "Cartridge encode and decode operations.",
		},
		[]string{"op", "result"},
	)
	codecBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tincart",
			Subsystem: "codec",
			Name:      "cartridge_bytes",
			Help:      "Encoded cartridge sizes seen by the codec.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
		},
		[]string{"op"},
	)
	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tincart",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Decoded cartridge cache lookups.",
		},
		[]string{"node", "hit"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, codecOperations, codecBytes, cacheLookups)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

// RecordCodec counts one encode or decode. size is ignored on failure.
func RecordCodec(op string, size int, err error) {
	RegisterMetrics()
	result := "ok"
	if err != nil {
		result = "error"
	}
	codecOperations.WithLabelValues(op, result).Inc()
	if err == nil {
		codecBytes.WithLabelValues(op).Observe(float64(size))
	}
}

func RecordCacheLookup(node string, hit bool) {
	RegisterMetrics()
	cacheLookups.WithLabelValues(node, strconv.FormatBool(hit)).Inc()
}
