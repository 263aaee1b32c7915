// Package metrics records the outcome of a snapshot run and pushes it to a
// Prometheus Pushgateway.
//
// A run is a short-lived batch job, so metrics live in a private registry
// and are pushed once at the end instead of being scraped.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Stage names used as label values.
const (
	StageExchange = "exchange"
	StageFetch    = "fetch"
	StageUpload   = "upload"
)

// DefaultJob is the Pushgateway job name.
const DefaultJob = "consul_snapshot"

// Recorder holds the metrics of one run.
type Recorder struct {
	registry *prometheus.Registry

	stageDuration *prometheus.GaugeVec
	sizeBytes     prometheus.Gauge
	lastSuccess   prometheus.Gauge
	failures      *prometheus.CounterVec
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		stageDuration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "consul_snapshot",
				Name:      "stage_duration_seconds",
				Help:      "Duration of each pipeline stage in the last run",
			},
			[]string{"stage"},
		),
		sizeBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "consul_snapshot",
			Name:      "size_bytes",
			Help:      "Size of the last uploaded snapshot",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "consul_snapshot",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful upload",
		}),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "consul_snapshot",
				Name:      "failures_total",
				Help:      "Failed runs by error kind",
			},
			[]string{"kind"},
		),
	}

	r.registry.MustRegister(r.stageDuration, r.sizeBytes, r.lastSuccess, r.failures)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveStage records how long a stage took.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	r.stageDuration.WithLabelValues(stage).Set(d.Seconds())
}

// RecordSuccess records a completed upload of size bytes at t.
func (r *Recorder) RecordSuccess(size int, t time.Time) {
	r.sizeBytes.Set(float64(size))
	r.lastSuccess.Set(float64(t.Unix()))
}

// RecordFailure counts a failed run of the given kind.
func (r *Recorder) RecordFailure(kind string) {
	r.failures.WithLabelValues(kind).Inc()
}

// Push replaces the job's metrics on the Pushgateway at url.
func (r *Recorder) Push(ctx context.Context, url, job string) error {
	if err := push.New(url, job).Gatherer(r.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", url, err)
	}
	return nil
}
