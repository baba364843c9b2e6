package observability

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/danmuck/ebopctl/internal/infile"
	"github.com/danmuck/ebopctl/internal/params"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels.
const (
	OutcomeOK         = "ok"
	OutcomeValidation = "validation"
	OutcomeEncoding   = "encoding"
	OutcomeParse      = "parse"
	OutcomeError      = "error"
)

var (
	registerOnce sync.Once
	registry     = prometheus.NewRegistry()

	codecOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ebopctl",
			Subsystem: "codec",
			Name:      "operations_total",
			Help:      "Parameter file encode/decode operations.",
		},
		[]string{"op", "task", "outcome"},
	)
	codecDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ebopctl",
			Subsystem: "codec",
			Name:      "duration_seconds",
			Help:      "Parameter file encode/decode duration in seconds.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		},
		[]string{"op", "outcome"},
	)
	codecBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ebopctl",
			Subsystem: "codec",
			Name:      "bytes_total",
			Help:      "Bytes written or read by the codec.",
		},
		[]string{"op"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		registry.MustRegister(codecOps, codecDuration, codecBytes)
	})
}

// Registry is the gatherer holding codec metrics.
func Registry() *prometheus.Registry {
	RegisterMetrics()
	return registry
}

// Outcome classifies a codec error into a metric label.
func Outcome(err error) string {
	var (
		ve params.ValidationError
		ee *infile.EncodingError
		pe *infile.ParseError
	)
	switch {
	case err == nil:
		return OutcomeOK
	case errors.As(err, &pe):
		return OutcomeParse
	case errors.As(err, &ee):
		return OutcomeEncoding
	case errors.As(err, &ve):
		return OutcomeValidation
	default:
		return OutcomeError
	}
}

// RecordCodec counts one encode or decode call. task is 0 when unknown.
func RecordCodec(op string, task int, size int, err error, duration time.Duration) {
	RegisterMetrics()
	outcome := Outcome(err)
	taskLabel := "unknown"
	if task > 0 {
		taskLabel = strconv.Itoa(task)
	}
	codecOps.WithLabelValues(op, taskLabel, outcome).Inc()
	codecDuration.WithLabelValues(op, outcome).Observe(duration.Seconds())
	if err == nil && size > 0 {
		codecBytes.WithLabelValues(op).Add(float64(size))
	}
}

// WriteTextfile writes the codec metrics in text exposition format, for
// node_exporter's textfile collector. The file is replaced atomically.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, Registry()); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
